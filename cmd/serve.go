package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anoixa/image-vault/api/core"
	"github.com/anoixa/image-vault/config"
	"github.com/anoixa/image-vault/internal/app"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start API server",
	Run: func(cmd *cobra.Command, args []string) {
		RunServer()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func RunServer() {
	config.InitConfig()
	cfg := config.Get()

	container := app.NewContainer(cfg)
	if err := container.Init(); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	// 启动时核对存储后端与数据库的一致性
	go runStartupReconcile(container)

	// 创建服务器依赖
	deps := &core.ServerDependencies{
		DatabaseFactory:  container.GetDatabaseFactory(),
		CacheProvider:    container.GetCacheProvider(),
		StorageProvider:  container.GetStorageProvider(),
		ImageService:     container.GetImageService(),
		ReconcileService: container.GetReconcileService(),
	}

	// 启动gin
	server, cleanup := core.StartServer(deps)
	go func() {
		log.Printf("Server started on %s", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// 处理退出signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if cleanup != nil {
		cleanup()
		log.Println("Cleanup tasks finished.")
	}

	// 关闭 DI 容器
	if err := container.Close(); err != nil {
		log.Printf("Error closing container: %v", err)
	}

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited successfully")
}

// runStartupReconcile 启动阶段的一次性核对，失败只记日志不阻断服务
func runStartupReconcile(container *app.Container) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	storageProvider := container.GetStorageProvider()
	reconciler := container.GetReconcileService()
	if storageProvider == nil || reconciler == nil {
		return
	}

	ids, err := storageProvider.ListIdentifiers(ctx)
	if err != nil {
		log.Printf("[Reconcile] Failed to list storage identifiers: %v", err)
		return
	}

	result, err := reconciler.Run(ctx, ids)
	if err != nil {
		log.Printf("[Reconcile] Startup reconciliation failed: %v", err)
		return
	}

	log.Printf("[Reconcile] Startup reconciliation finished: %d missing, %d orphaned", result.MissingCount, result.OrphanCount)
}
