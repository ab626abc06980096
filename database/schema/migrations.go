package schema

import (
	"fmt"
	"strings"

	"github.com/anoixa/image-vault/database"
	"github.com/anoixa/image-vault/database/models"
	"gorm.io/gorm"
)

// TargetVersion 程序编译进的目标 schema 版本
// 新建的库从零开始依次执行全部迁移；已有的库只补缺失的部分。
// 新增迁移时递增此值。
const TargetVersion = 3

// Migration 单个 schema 迁移步骤
// Up 必须自身幂等（IF NOT EXISTS / 缺列检查），
// 进程在迁移中途被杀后可以安全地从该步骤重新执行。
type Migration struct {
	Version int
	Name    string
	Up      func(tx *gorm.DB, dialect string) error
}

// migrations 严格按版本号排序的线性迁移历史
// 不构成 DAG：schema 只有一条历史线，"从版本 N 依次执行 N+1..target"
// 的逻辑因此保持简单可审计。
var migrations = []Migration{
	{
		Version: 1,
		Name:    "core tables",
		Up: func(tx *gorm.DB, dialect string) error {
			// AutoMigrate 建出当前完整的模型结构，
			// 后续迁移只为旧库补齐历史上缺失的部分
			return tx.AutoMigrate(&models.Image{}, &models.ImageAttribute{})
		},
	},
	{
		Version: 2,
		Name:    "full-text prompt index",
		Up:      createPromptIndex,
	},
	{
		Version: 3,
		Name:    "user annotation columns",
		Up:      addAnnotationColumns,
	},
}

// createPromptIndex 建立与 images.prompt 同步的全文索引
// 同步采用写入时触发器：任何未来新增的写入路径都不可能漏掉索引维护。
func createPromptIndex(tx *gorm.DB, dialect string) error {
	switch dialect {
	case database.DialectSQLite:
		statements := []string{
			`CREATE VIRTUAL TABLE IF NOT EXISTS images_fts USING fts5(prompt, content='images')`,
			`CREATE TRIGGER IF NOT EXISTS images_fts_ai AFTER INSERT ON images BEGIN
				INSERT INTO images_fts(rowid, prompt) VALUES (new.rowid, new.prompt);
			END`,
			`CREATE TRIGGER IF NOT EXISTS images_fts_ad AFTER DELETE ON images BEGIN
				INSERT INTO images_fts(images_fts, rowid, prompt) VALUES ('delete', old.rowid, old.prompt);
			END`,
			`CREATE TRIGGER IF NOT EXISTS images_fts_au AFTER UPDATE OF prompt ON images BEGIN
				INSERT INTO images_fts(images_fts, rowid, prompt) VALUES ('delete', old.rowid, old.prompt);
				INSERT INTO images_fts(rowid, prompt) VALUES (new.rowid, new.prompt);
			END`,
			// 回填触发器建立前已存在的行
			`INSERT INTO images_fts(rowid, prompt)
				SELECT rowid, prompt FROM images
				WHERE rowid NOT IN (SELECT rowid FROM images_fts)`,
		}
		for _, stmt := range statements {
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return nil

	case database.DialectPostgres:
		statements := []string{
			`ALTER TABLE images ADD COLUMN IF NOT EXISTS prompt_tsv tsvector`,
			`CREATE INDEX IF NOT EXISTS idx_images_prompt_tsv ON images USING gin (prompt_tsv)`,
			`CREATE OR REPLACE FUNCTION images_prompt_tsv_update() RETURNS trigger AS $$
			BEGIN
				new.prompt_tsv := to_tsvector('simple', coalesce(new.prompt, ''));
				RETURN new;
			END
			$$ LANGUAGE plpgsql`,
			`DROP TRIGGER IF EXISTS images_prompt_tsv ON images`,
			`CREATE TRIGGER images_prompt_tsv BEFORE INSERT OR UPDATE OF prompt ON images
				FOR EACH ROW EXECUTE FUNCTION images_prompt_tsv_update()`,
			`UPDATE images SET prompt_tsv = to_tsvector('simple', coalesce(prompt, '')) WHERE prompt_tsv IS NULL`,
		}
		for _, stmt := range statements {
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("unsupported dialect: %s", dialect)
	}
}

// addAnnotationColumns 为早于用户标注功能建库的存储补列
// 新库在迁移 1 的 AutoMigrate 中已带有这两列，这里会直接跳过。
func addAnnotationColumns(tx *gorm.DB, dialect string) error {
	if dialect == database.DialectPostgres {
		statements := []string{
			`ALTER TABLE images ADD COLUMN IF NOT EXISTS rating bigint`,
			`ALTER TABLE images ADD COLUMN IF NOT EXISTS notes text`,
		}
		for _, stmt := range statements {
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return nil
	}

	// sqlite 没有 ADD COLUMN IF NOT EXISTS，用重复列错误判断
	statements := []string{
		`ALTER TABLE images ADD COLUMN rating integer`,
		`ALTER TABLE images ADD COLUMN notes text`,
	}
	for _, stmt := range statements {
		if err := tx.Exec(stmt).Error; err != nil {
			if !isDuplicateColumnError(err) {
				return err
			}
		}
	}
	return nil
}

// isDuplicateColumnError 检查错误是否因为列已存在
func isDuplicateColumnError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "duplicate column") ||
		strings.Contains(errStr, "already exists")
}
