package models

// ImageAttribute 从结构化提示词派生的扁平化属性
// 完全由所属 Image 拥有：重建索引时整组删除后重插，
// 调用方不会单独创建属性。
type ImageAttribute struct {
	ID      uint   `gorm:"primaryKey"`
	ImageID string `gorm:"uniqueIndex:idx_image_attr_key,priority:1;not null"`
	Key     string `gorm:"uniqueIndex:idx_image_attr_key,priority:2;not null"`
	Value   string `gorm:"not null"`
}
