package models

import "time"

// MetaEntry 进程级键值元数据，存放 schema_version 等
type MetaEntry struct {
	Key   string `gorm:"primaryKey"`
	Value string `gorm:"not null"`
}

// TableName 指定表名
func (MetaEntry) TableName() string {
	return "_meta"
}

// MigrationRecord 已完成的一次性数据迁移标记，只增不减
type MigrationRecord struct {
	ID          string `gorm:"primaryKey"`
	CompletedAt time.Time
}

// TableName 指定表名
func (MigrationRecord) TableName() string {
	return "_migrations"
}
