package images

import (
	"context"

	"github.com/anoixa/image-vault/database/models"
)

// RepositoryInterface 图片元数据仓库接口
type RepositoryInterface interface {
	// SaveImage 保存图片记录
	SaveImage(ctx context.Context, image *models.Image) error
	// GetImageByID 通过 ID 获取图片记录
	GetImageByID(ctx context.Context, id string) (*models.Image, error)
	// GetImageByFilename 通过文件名获取图片记录
	GetImageByFilename(ctx context.Context, filename string) (*models.Image, error)
	// ListImages 获取图片列表
	ListImages(ctx context.Context, includeDeleted bool, p Pagination) ([]*models.Image, int64, error)
	// SearchImages 在 prompt 全文索引上做前缀匹配搜索
	SearchImages(ctx context.Context, rawQuery string, includeDeleted bool, p Pagination) ([]*models.Image, int64, error)
	// SoftDeleteImage 软删除图片记录
	SoftDeleteImage(ctx context.Context, id string) (bool, error)
	// RestoreImage 恢复软删除的图片记录
	RestoreImage(ctx context.Context, id string) (bool, error)
	// HardDeleteImage 永久删除图片记录及其派生属性
	HardDeleteImage(ctx context.Context, id string) (bool, error)
	// ToggleFavorite 翻转收藏标记
	ToggleFavorite(ctx context.Context, id string) (bool, error)
	// UpdateAnnotations 更新用户标注
	UpdateAnnotations(ctx context.Context, id string, updates map[string]interface{}) (*models.Image, error)
	// ImageExists 检查记录是否存在
	ImageExists(ctx context.Context, id string) (bool, error)
	// AllImageIDs 返回全部记录 ID
	AllImageIDs(ctx context.Context) ([]string, error)
	// ReplaceAttributes 原子替换属性集
	ReplaceAttributes(ctx context.Context, imageID string, attrs []models.ImageAttribute) error
	// GetAttributesByImageID 获取派生属性
	GetAttributesByImageID(ctx context.Context, imageID string) ([]models.ImageAttribute, error)
}

// 确保 Repository 实现了 RepositoryInterface
var _ RepositoryInterface = (*Repository)(nil)
