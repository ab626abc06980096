package images

import (
	"context"
	"errors"

	"github.com/anoixa/image-vault/database/models"
	"gorm.io/gorm"
)

// DefaultPageSize 未指定分页大小时的固定默认值
const DefaultPageSize = 50

// Pagination 分页参数
type Pagination struct {
	Limit  int
	Offset int
	Sort   string // "asc" 或 "desc"，默认 desc
}

// normalize 返回规范化后的 limit 与排序方向
func (p Pagination) normalize() (int, string) {
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}

	order := "desc"
	if p.Sort == "asc" {
		order = "asc"
	}
	return limit, order
}

// Repository 图片元数据仓库
type Repository struct {
	db      *gorm.DB
	dialect string
}

// NewRepository 创建新的图片元数据仓库
func NewRepository(db *gorm.DB, dialect string) *Repository {
	return &Repository{db: db, dialect: dialect}
}

// SaveImage 保存图片记录
// filename 唯一约束冲突会原样返回，由上层翻译为重复文件名错误。
func (r *Repository) SaveImage(ctx context.Context, image *models.Image) error {
	return r.db.WithContext(ctx).Create(image).Error
}

// GetImageByID 通过 ID 获取图片记录，包含软删除的记录
// 不存在时返回 (nil, nil)，缺失不是错误。
func (r *Repository) GetImageByID(ctx context.Context, id string) (*models.Image, error) {
	var image models.Image
	err := r.db.WithContext(ctx).Unscoped().Where("id = ?", id).First(&image).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &image, nil
}

// GetImageByFilename 通过文件名获取图片记录，包含软删除的记录
func (r *Repository) GetImageByFilename(ctx context.Context, filename string) (*models.Image, error) {
	var image models.Image
	err := r.db.WithContext(ctx).Unscoped().Where("filename = ?", filename).First(&image).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &image, nil
}

// ListImages 获取图片列表
// total 为分页前的完整匹配数，按 created_at 排序，id 做次级排序保证稳定分页。
func (r *Repository) ListImages(ctx context.Context, includeDeleted bool, p Pagination) ([]*models.Image, int64, error) {
	var imageList []*models.Image
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Image{})
	if includeDeleted {
		db = db.Unscoped()
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit, order := p.normalize()
	err := db.Order("created_at " + order + ", id " + order).
		Offset(p.Offset).Limit(limit).Find(&imageList).Error
	return imageList, total, err
}

// SoftDeleteImage 软删除图片记录
// 仅当记录当前未删除时生效，返回是否有行实际变更。
func (r *Repository) SoftDeleteImage(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Image{})
	return result.RowsAffected > 0, result.Error
}

// RestoreImage 恢复软删除的图片记录
// 仅当 deleted_at 非空时生效，返回是否有行实际变更。
func (r *Repository) RestoreImage(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Unscoped().Model(&models.Image{}).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		Update("deleted_at", nil)
	return result.RowsAffected > 0, result.Error
}

// HardDeleteImage 永久删除图片记录及其全部派生属性
func (r *Repository) HardDeleteImage(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("image_id = ?", id).Delete(&models.ImageAttribute{}).Error; err != nil {
			return err
		}

		result := tx.Unscoped().Where("id = ?", id).Delete(&models.Image{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected > 0
		return nil
	})
	return deleted, err
}

// ToggleFavorite 翻转收藏标记，软删除的记录同样可标注
func (r *Repository) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Unscoped().Model(&models.Image{}).
		Where("id = ?", id).
		Update("favorite", gorm.Expr("NOT favorite"))
	return result.RowsAffected > 0, result.Error
}

// UpdateAnnotations 更新用户标注（rating、notes 等）并返回最新记录
func (r *Repository) UpdateAnnotations(ctx context.Context, id string, updates map[string]interface{}) (*models.Image, error) {
	result := r.db.WithContext(ctx).Unscoped().Model(&models.Image{}).
		Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	return r.GetImageByID(ctx, id)
}

// ImageExists 检查记录是否存在，包含软删除的记录
func (r *Repository) ImageExists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().Model(&models.Image{}).
		Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// AllImageIDs 返回存储已知的全部记录 ID，包含软删除的记录
// 供一致性核对使用。
func (r *Repository) AllImageIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Unscoped().Model(&models.Image{}).
		Order("id").Pluck("id", &ids).Error
	return ids, err
}

// DB 返回底层 *gorm.DB 实例
func (r *Repository) DB() *gorm.DB {
	return r.db
}
