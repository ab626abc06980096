package core

import (
	"net/http"
	"time"

	"github.com/anoixa/image-vault/api/common"
	handlerImages "github.com/anoixa/image-vault/api/handler/images"
	"github.com/anoixa/image-vault/api/handler/maintenance"
	"github.com/anoixa/image-vault/api/middleware"
	"github.com/anoixa/image-vault/cache"
	"github.com/anoixa/image-vault/config"
	"github.com/anoixa/image-vault/database"
	imageSvc "github.com/anoixa/image-vault/internal/services/image"
	"github.com/anoixa/image-vault/internal/services/reconcile"
	"github.com/anoixa/image-vault/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

// ServerDependencies 服务器依赖项
type ServerDependencies struct {
	DatabaseFactory  *database.Factory
	CacheProvider    cache.Provider
	StorageProvider  storage.Provider
	ImageService     *imageSvc.Service
	ReconcileService *reconcile.Service
}

// 启动gin
func setupRouter(deps *ServerDependencies) (*gin.Engine, func()) {
	cfg := config.Get()

	if !config.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// 全局中间件
	if config.IsDevelopment() {
		router.Use(gin.Logger())
	}
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.BaseURL()},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.SetTrustedProxies(nil)

	// 请求ID追踪
	router.Use(middleware.RequestID())

	// 速率限制
	apiRateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitApiRPS, cfg.RateLimitApiBurst, cfg.RateLimitExpireTime)
	cleanup := func() {
		apiRateLimiter.StopCleanup()
	}

	router.GET("/health", func(context *gin.Context) {
		health := gin.H{
			"status":  "ok",
			"uptime":  time.Since(startTime).Round(time.Second).String(),
			"version": config.Version,
			"checks": gin.H{
				"database": checkDatabaseHealth(deps.DatabaseFactory),
				"cache":    checkCacheHealth(deps.CacheProvider),
				"storage":  checkStorageHealth(deps.StorageProvider),
			},
		}
		httpStatus := http.StatusOK
		for _, checkResult := range health["checks"].(gin.H) {
			if result, ok := checkResult.(string); ok && result != "ok" {
				httpStatus = http.StatusServiceUnavailable
				break
			}
		}
		context.JSON(httpStatus, health)
	})
	router.GET("/version", func(context *gin.Context) {
		common.RespondSuccess(context, gin.H{
			"version": config.Version,
			"commit":  config.CommitHash,
		})
	})

	// 创建处理器（依赖注入）
	imageHandler := handlerImages.NewHandler(deps.ImageService)
	maintenanceHandler := maintenance.NewHandler(deps.ReconcileService, deps.StorageProvider)

	apiGroup := router.Group("/api")
	apiGroup.Use(func(context *gin.Context) { // 所有API禁止缓存
		context.Header("Cache-Control", "no-store")
		context.Next()
	})
	{
		v1 := apiGroup.Group("/v1")
		v1.Use(apiRateLimiter.Middleware())
		{
			imagesGroup := v1.Group("/images")
			{
				imagesGroup.POST("", imageHandler.CreateImage)                     // POST /api/v1/images
				imagesGroup.GET("", imageHandler.ListImages)                      // GET /api/v1/images
				imagesGroup.GET("/search", imageHandler.SearchImages)             // GET /api/v1/images/search?q=
				imagesGroup.GET("/:id", imageHandler.GetImage)                    // GET /api/v1/images/{id}
				imagesGroup.GET("/:id/attributes", imageHandler.GetImageAttributes) // GET /api/v1/images/{id}/attributes
				imagesGroup.DELETE("/:id", imageHandler.DeleteImage)              // DELETE /api/v1/images/{id}
				imagesGroup.POST("/delete", imageHandler.DeleteImages)            // POST /api/v1/images/delete
				imagesGroup.POST("/:id/restore", imageHandler.RestoreImage)       // POST /api/v1/images/{id}/restore
				imagesGroup.DELETE("/:id/purge", imageHandler.PurgeImage)         // DELETE /api/v1/images/{id}/purge
				imagesGroup.POST("/:id/favorite", imageHandler.ToggleFavorite)    // POST /api/v1/images/{id}/favorite
				imagesGroup.PATCH("/:id", imageHandler.UpdateAnnotations)         // PATCH /api/v1/images/{id}
			}

			maintenanceGroup := v1.Group("/maintenance")
			{
				maintenanceGroup.POST("/reconcile", maintenanceHandler.Reconcile) // POST /api/v1/maintenance/reconcile
			}
		}
	}

	return router, cleanup
}

// StartServer 创建 http.Server
func StartServer(deps *ServerDependencies) (*http.Server, func()) {
	cfg := config.Get()
	router, clean := setupRouter(deps)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return srv, clean
}
