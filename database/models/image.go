package models

import (
	"time"

	"gorm.io/gorm"
)

// Image 图片元数据记录
// ID 由调用方提供（推荐时间有序 token），filename 全局唯一——
// 无论记录是否处于软删除状态，防止重复导入时静默覆盖。
type Image struct {
	ID       string `gorm:"primaryKey"`
	Filename string `gorm:"uniqueIndex:idx_images_filename;not null"`

	// 已解析的提示词文本，全文索引的数据来源
	Prompt         string `gorm:"not null"`
	NegativePrompt string
	Parameters     string // JSON 序列化的生成参数

	// 来源与尺寸元数据
	WorkflowID string
	Seed       *int64
	Width      int
	Height     int
	FileSize   int64

	// 用户标注，随时可变
	Favorite bool `gorm:"default:false;not null"`
	Rating   *int
	Notes    string

	CreatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	Attributes []ImageAttribute `gorm:"foreignKey:ImageID;constraint:OnDelete:CASCADE"`
}

// IsDeleted 检查记录是否处于软删除状态
func (i *Image) IsDeleted() bool {
	return i.DeletedAt.Valid
}
