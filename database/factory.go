package database

import (
	"context"
	"fmt"
	"log"

	"github.com/anoixa/image-vault/config"
	"gorm.io/gorm"
)

// Factory 数据库工厂 - 负责创建和管理数据库提供者
type Factory struct {
	provider Provider
}

// NewFactory 创建新的数据库工厂
func NewFactory(cfg *config.Config) (*Factory, error) {
	log.Println("Initializing database provider...")

	provider, err := NewGormProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database provider: %w", err)
	}

	log.Printf("Database provider '%s' initialized successfully", provider.Name())

	return &Factory{
		provider: provider,
	}, nil
}

// GetProvider 获取数据库提供者
func (f *Factory) GetProvider() Provider {
	return f.provider
}

// DB 返回底层 *gorm.DB 实例
func (f *Factory) DB() *gorm.DB {
	if f.provider == nil {
		return nil
	}
	return f.provider.DB()
}

// WithContext 返回带上下文的 DB
func (f *Factory) WithContext(ctx context.Context) *gorm.DB {
	if f.provider == nil {
		return nil
	}
	return f.provider.WithContext(ctx)
}

// Transaction 在事务中执行函数
func (f *Factory) Transaction(fn TxFunc) error {
	if f.provider == nil {
		return fmt.Errorf("database provider not initialized")
	}
	return f.provider.Transaction(fn)
}

// Ping 检查数据库连接
func (f *Factory) Ping() error {
	if f.provider == nil {
		return fmt.Errorf("database provider not initialized")
	}
	return f.provider.Ping()
}

// Close 关闭数据库连接
func (f *Factory) Close() error {
	if f.provider != nil {
		return f.provider.Close()
	}
	return nil
}
