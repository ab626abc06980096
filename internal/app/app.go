// Package app 依赖注入容器，管理所有服务的生命周期
package app

import (
	"fmt"
	"log"
	"time"

	"github.com/anoixa/image-vault/cache"
	"github.com/anoixa/image-vault/config"
	"github.com/anoixa/image-vault/database"
	"github.com/anoixa/image-vault/database/schema"
	"github.com/anoixa/image-vault/internal/repositories"
	imagesvc "github.com/anoixa/image-vault/internal/services/image"
	"github.com/anoixa/image-vault/internal/services/reconcile"
	"github.com/anoixa/image-vault/storage"
)

// Container 依赖注入容器
// 取代"全局惰性单例连接"：所有组件在启动时构造一次，显式传递。
type Container struct {
	config *config.Config

	databaseFactory *database.Factory
	schemaManager   *schema.Manager
	repositories    *repositories.Repositories
	cacheProvider   cache.Provider
	storageProvider storage.Provider

	imageService     *imagesvc.Service
	reconcileService *reconcile.Service
}

// NewContainer 创建新的依赖注入容器
func NewContainer(cfg *config.Config) *Container {
	return &Container{config: cfg}
}

// Init 初始化所有服务
// 任何一步失败都中止启动；schema 迁移失败时绝不能以
// 不一致的 schema 继续运行。
func (c *Container) Init() error {
	log.Println("Initializing container...")

	factory, err := database.NewFactory(c.config)
	if err != nil {
		return fmt.Errorf("failed to initialize database factory: %w", err)
	}
	c.databaseFactory = factory

	provider := factory.GetProvider()
	c.schemaManager = schema.NewManager(provider.DB(), provider.Name())
	applied, err := c.schemaManager.EnsureSchema()
	if err != nil {
		return fmt.Errorf("failed to migrate database schema: %w", err)
	}
	if applied > 0 {
		log.Printf("Applied %d schema migration(s)", applied)
	}

	c.repositories = repositories.NewRepositories(provider)

	cacheProvider, err := cache.NewProvider(c.config)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	c.cacheProvider = cacheProvider

	storageProvider, err := storage.NewProvider(c.config)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	c.storageProvider = storageProvider

	recordTTL := time.Duration(c.config.CacheRecordTTL) * time.Second
	c.imageService = imagesvc.NewService(c.repositories.Images, c.cacheProvider, recordTTL)

	var sidecars reconcile.SidecarSource
	if c.config.SidecarDir != "" {
		sidecars = reconcile.NewDirSidecarSource(c.config.SidecarDir)
	}
	c.reconcileService = reconcile.NewService(c.imageService, c.schemaManager, sidecars)

	log.Println("Container initialized successfully")
	return nil
}

// GetConfig 获取配置
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetDatabaseFactory 获取数据库工厂
func (c *Container) GetDatabaseFactory() *database.Factory {
	return c.databaseFactory
}

// GetSchemaManager 获取 schema 管理器
func (c *Container) GetSchemaManager() *schema.Manager {
	return c.schemaManager
}

// GetRepositories 获取所有仓库
func (c *Container) GetRepositories() *repositories.Repositories {
	return c.repositories
}

// GetCacheProvider 获取缓存提供者
func (c *Container) GetCacheProvider() cache.Provider {
	return c.cacheProvider
}

// GetStorageProvider 获取存储提供者
func (c *Container) GetStorageProvider() storage.Provider {
	return c.storageProvider
}

// GetImageService 获取图片元数据服务
func (c *Container) GetImageService() *imagesvc.Service {
	return c.imageService
}

// GetReconcileService 获取一致性核对服务
func (c *Container) GetReconcileService() *reconcile.Service {
	return c.reconcileService
}

// Close 逆序关闭所有资源
func (c *Container) Close() error {
	var firstErr error

	if c.cacheProvider != nil {
		if err := c.cacheProvider.Close(); err != nil {
			log.Printf("Error closing cache provider: %v", err)
			firstErr = err
		}
	}

	if c.databaseFactory != nil {
		if err := c.databaseFactory.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}
