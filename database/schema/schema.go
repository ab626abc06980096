// Package schema 管理数据库 schema 版本与前向迁移
package schema

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/anoixa/image-vault/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const schemaVersionKey = "schema_version"

// Manager schema 管理器
// 负责版本跟踪、严格有序的前向迁移以及一次性数据迁移标记
type Manager struct {
	db      *gorm.DB
	dialect string
}

// NewManager 创建 schema 管理器
// dialect 取 database.DialectSQLite 或 database.DialectPostgres
func NewManager(db *gorm.DB, dialect string) *Manager {
	return &Manager{db: db, dialect: dialect}
}

// EnsureSchema 幂等地把 schema 升级到目标版本
// 缺失的迁移严格按版本号顺序执行，每一步与版本号推进在同一事务中提交；
// 任何一步失败都会返回错误，调用方不得以低于目标版本的 schema 继续启动。
// 返回本次实际执行的迁移步数。
func (m *Manager) EnsureSchema() (int, error) {
	// 引导元数据表，IF NOT EXISTS 语义，可安全重复执行
	if err := m.db.AutoMigrate(&models.MetaEntry{}, &models.MigrationRecord{}); err != nil {
		return 0, fmt.Errorf("failed to bootstrap meta tables: %w", err)
	}

	current, err := m.Version()
	if err != nil {
		return 0, err
	}
	if current >= TargetVersion {
		return 0, nil
	}

	applied := 0
	for _, mig := range migrations {
		if mig.Version <= current {
			continue
		}

		err := m.db.Transaction(func(tx *gorm.DB) error {
			if err := mig.Up(tx, m.dialect); err != nil {
				return err
			}
			return writeVersion(tx, mig.Version)
		})
		if err != nil {
			return applied, fmt.Errorf("migration %d (%s): %w", mig.Version, mig.Name, err)
		}

		log.Printf("[Schema] Applied migration %d (%s)", mig.Version, mig.Name)
		applied++
	}

	log.Printf("[Schema] Schema is at version %d", TargetVersion)
	return applied, nil
}

// Version 读取当前存储的 schema 版本，缺失记录视为 0
func (m *Manager) Version() (int, error) {
	var entry models.MetaEntry
	err := m.db.Where("key = ?", schemaVersionKey).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}

	version, err := strconv.Atoi(entry.Value)
	if err != nil {
		return 0, fmt.Errorf("invalid schema version %q: %w", entry.Value, err)
	}
	return version, nil
}

// writeVersion 在事务中推进版本号
func writeVersion(tx *gorm.DB, version int) error {
	entry := models.MetaEntry{Key: schemaVersionKey, Value: strconv.Itoa(version)}
	return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&entry).Error
}

// Completed 检查一次性数据迁移是否已完成
func (m *Manager) Completed(id string) (bool, error) {
	var count int64
	err := m.db.Model(&models.MigrationRecord{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check migration marker %q: %w", id, err)
	}
	return count > 0, nil
}

// MarkCompleted 记录一次性数据迁移已完成，重复标记为 no-op
func (m *Manager) MarkCompleted(id string) error {
	record := models.MigrationRecord{ID: id, CompletedAt: time.Now()}
	err := m.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("failed to mark migration %q completed: %w", id, err)
	}
	return nil
}
