package images

import (
	"context"

	"github.com/anoixa/image-vault/database/models"
	"gorm.io/gorm"
)

// ReplaceAttributes 原子地替换一张图片的完整属性集
// 先整组删除再整组插入，部分更新不会留下过期的 key。
func (r *Repository) ReplaceAttributes(ctx context.Context, imageID string, attrs []models.ImageAttribute) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("image_id = ?", imageID).Delete(&models.ImageAttribute{}).Error; err != nil {
			return err
		}

		if len(attrs) == 0 {
			return nil
		}

		for i := range attrs {
			attrs[i].ID = 0
			attrs[i].ImageID = imageID
		}
		return tx.Create(&attrs).Error
	})
}

// GetAttributesByImageID 获取一张图片的全部派生属性
func (r *Repository) GetAttributesByImageID(ctx context.Context, imageID string) ([]models.ImageAttribute, error) {
	var attrs []models.ImageAttribute
	err := r.db.WithContext(ctx).Where("image_id = ?", imageID).
		Order("key").Find(&attrs).Error
	return attrs, err
}
