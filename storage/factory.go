package storage

import (
	"fmt"
	"log"

	"github.com/anoixa/image-vault/config"
)

// NewProvider 根据配置创建存储提供者
func NewProvider(cfg *config.Config) (Provider, error) {
	var provider Provider
	var err error

	switch cfg.StorageType {
	case "local", "":
		provider, err = NewLocalStorage(cfg.StorageLocalPath)
	case "minio":
		provider, err = NewMinioStorage(MinioConfig{
			Endpoint:  cfg.StorageMinioEndpoint,
			AccessKey: cfg.StorageMinioAccessKey,
			SecretKey: cfg.StorageMinioSecretKey,
			Bucket:    cfg.StorageMinioBucket,
			UseSSL:    cfg.StorageMinioUseSSL,
		})
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.StorageType)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	log.Printf("Storage provider '%s' initialized successfully", provider.Name())
	return provider, nil
}
