package cache

import (
	"fmt"
	"log"

	"github.com/anoixa/image-vault/cache/memory"
	"github.com/anoixa/image-vault/cache/redis"
	"github.com/anoixa/image-vault/config"
)

// NewProvider 根据配置创建缓存提供者
// memory 为默认；redis 连接失败直接返回错误而不是静默降级。
func NewProvider(cfg *config.Config) (Provider, error) {
	var provider Provider
	var err error

	switch cfg.CacheType {
	case "memory", "":
		provider, err = memory.NewMemory(memory.Config{
			NumCounters: 100000,
			MaxCost:     64 << 20, // 64MB
			BufferItems: 64,
			Metrics:     false,
		})
	case "redis":
		provider, err = redis.NewRedis(cfg.CacheRedisAddr, cfg.CacheRedisPassword, cfg.CacheRedisDB)
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cfg.CacheType)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	log.Printf("Cache provider '%s' initialized successfully", provider.Name())
	return provider, nil
}
