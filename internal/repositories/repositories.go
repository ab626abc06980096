package repositories

import (
	"github.com/anoixa/image-vault/database"
	"github.com/anoixa/image-vault/database/repo/images"
)

// Repositories 集中管理所有数据库仓库
type Repositories struct {
	Images *images.Repository
}

// NewRepositories 创建所有仓库实例
func NewRepositories(provider database.Provider) *Repositories {
	return &Repositories{
		Images: images.NewRepository(provider.DB(), provider.Name()),
	}
}
