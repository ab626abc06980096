// Package image 图片元数据存储服务
// 所有对 images 表的写入都经过本服务，全文索引由数据库触发器同步维护，
// 新增写入路径不需要也不可能绕过索引更新。
package image

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/anoixa/image-vault/cache"
	"github.com/anoixa/image-vault/database/models"
	"github.com/anoixa/image-vault/database/repo/images"
	"github.com/anoixa/image-vault/internal/prompt"
	"github.com/anoixa/image-vault/utils"
	"github.com/rs/xid"
	"gorm.io/gorm"
)

// Service 图片元数据存储服务
type Service struct {
	repo      images.RepositoryInterface
	cache     cache.Provider // 可为 nil
	recordTTL time.Duration
}

// NewService 创建图片元数据存储服务
func NewService(repo images.RepositoryInterface, cacheProvider cache.Provider, recordTTL time.Duration) *Service {
	if recordTTL <= 0 {
		recordTTL = time.Hour
	}
	return &Service{
		repo:      repo,
		cache:     cacheProvider,
		recordTTL: recordTTL,
	}
}

// CreateImageInput 创建图片记录的输入
type CreateImageInput struct {
	ID             string                 `json:"id"`
	Filename       string                 `json:"filename"`
	Prompt         string                 `json:"prompt"`
	NegativePrompt string                 `json:"negative_prompt"`
	Parameters     map[string]interface{} `json:"parameters"`
	WorkflowID     string                 `json:"workflow_id"`
	Seed           *int64                 `json:"seed"`
	Width          int                    `json:"width"`
	Height         int                    `json:"height"`
	FileSize       int64                  `json:"file_size"`
}

// Create 创建图片记录并建立派生属性索引
// 提示词无法解析为结构化数据是非致命的：记录照常创建，只跳过属性索引。
// 返回重新读出的记录，保证调用方看到持久化后的默认值。
func (s *Service) Create(ctx context.Context, input *CreateImageInput) (*models.Image, error) {
	if input.Filename == "" {
		return nil, fmt.Errorf("%w: filename is required", ErrInvalidInput)
	}

	id := input.ID
	if id == "" {
		// 时间有序 token，保证按创建顺序排序时 id 可做次级排序键
		id = xid.New().String()
	}

	var parameters string
	if input.Parameters != nil {
		data, err := json.Marshal(input.Parameters)
		if err != nil {
			return nil, fmt.Errorf("%w: parameters not serializable: %v", ErrInvalidInput, err)
		}
		parameters = string(data)
	}

	record := &models.Image{
		ID:             id,
		Filename:       input.Filename,
		Prompt:         input.Prompt,
		NegativePrompt: input.NegativePrompt,
		Parameters:     parameters,
		WorkflowID:     input.WorkflowID,
		Seed:           input.Seed,
		Width:          input.Width,
		Height:         input.Height,
		FileSize:       input.FileSize,
	}

	if err := s.repo.SaveImage(ctx, record); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateFilename, input.Filename)
		}
		return nil, fmt.Errorf("failed to save image record: %w", err)
	}

	if err := s.indexAttributes(ctx, id, input.Prompt); err != nil {
		return nil, err
	}

	return s.repo.GetImageByID(ctx, id)
}

// indexAttributes 解析提示词并重建属性索引
// 解析失败只记日志；属性写入失败是存储错误，照常向上传播。
func (s *Service) indexAttributes(ctx context.Context, id, promptText string) error {
	tree, err := prompt.ParseTree(promptText)
	if err != nil {
		// id 可能来自磁盘上的 sidecar 文件名
		log.Printf("[ImageStore] Prompt of %s is not indexable: %v", utils.SanitizeLogMessage(id), err)
		return nil
	}

	extracted := prompt.Extract(tree)
	attrs := make([]models.ImageAttribute, 0, len(extracted))
	for _, a := range extracted {
		attrs = append(attrs, models.ImageAttribute{Key: a.Key, Value: a.Value})
	}

	if err := s.repo.ReplaceAttributes(ctx, id, attrs); err != nil {
		return fmt.Errorf("failed to save attributes: %w", err)
	}
	return nil
}

// Get 通过 ID 获取图片记录，不存在时返回 (nil, nil)
func (s *Service) Get(ctx context.Context, id string) (*models.Image, error) {
	if s.cache != nil {
		var cached models.Image
		if err := s.cache.Get(ctx, keyImage(id), &cached); err == nil {
			return &cached, nil
		} else if !cache.IsCacheMiss(err) {
			log.Printf("[ImageStore] Cache get failed for %s: %v", id, err)
		}
	}

	record, err := s.repo.GetImageByID(ctx, id)
	if err != nil || record == nil {
		return record, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, keyImage(id), record, s.recordTTL); err != nil {
			log.Printf("[ImageStore] Cache set failed for %s: %v", id, err)
		}
	}
	return record, nil
}

// GetAttributes 获取一张图片的派生属性
func (s *Service) GetAttributes(ctx context.Context, id string) ([]models.ImageAttribute, error) {
	return s.repo.GetAttributesByImageID(ctx, id)
}

// List 分页获取图片列表
func (s *Service) List(ctx context.Context, includeDeleted bool, p images.Pagination) (*PaginatedResult, error) {
	items, total, err := s.repo.ListImages(ctx, includeDeleted, p)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	return buildPage(items, total, p.Offset), nil
}

// Search 在提示词全文索引上做前缀搜索
func (s *Service) Search(ctx context.Context, query string, includeDeleted bool, p images.Pagination) (*PaginatedResult, error) {
	items, total, err := s.repo.SearchImages(ctx, query, includeDeleted, p)
	if err != nil {
		return nil, fmt.Errorf("failed to search images: %w", err)
	}
	return buildPage(items, total, p.Offset), nil
}

// SoftDelete 软删除记录，已删除时返回 false 而不是错误
func (s *Service) SoftDelete(ctx context.Context, id string) (bool, error) {
	changed, err := s.repo.SoftDeleteImage(ctx, id)
	if changed {
		s.invalidate(ctx, id)
	}
	return changed, err
}

// Restore 恢复软删除的记录
func (s *Service) Restore(ctx context.Context, id string) (bool, error) {
	changed, err := s.repo.RestoreImage(ctx, id)
	if changed {
		s.invalidate(ctx, id)
	}
	return changed, err
}

// HardDelete 永久删除记录及其派生属性，无法恢复
func (s *Service) HardDelete(ctx context.Context, id string) (bool, error) {
	deleted, err := s.repo.HardDeleteImage(ctx, id)
	if deleted {
		s.invalidate(ctx, id)
	}
	return deleted, err
}

// BulkSoftDelete 逐条软删除并返回实际变更的行数
// 刻意不放进单个大事务：单行更新各自原子，中途崩溃留下的
// 是部分完成但逐行一致的结果。
func (s *Service) BulkSoftDelete(ctx context.Context, ids []string) (int, error) {
	count := 0
	for _, id := range ids {
		changed, err := s.SoftDelete(ctx, id)
		if err != nil {
			return count, fmt.Errorf("failed to soft delete %s: %w", id, err)
		}
		if changed {
			count++
		}
	}
	return count, nil
}

// ToggleFavorite 翻转收藏标记
func (s *Service) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	changed, err := s.repo.ToggleFavorite(ctx, id)
	if changed {
		s.invalidate(ctx, id)
	}
	return changed, err
}

// UpdateAnnotations 更新 rating/notes 标注，不存在时返回 (nil, nil)
func (s *Service) UpdateAnnotations(ctx context.Context, id string, rating *int, notes *string) (*models.Image, error) {
	updates := map[string]interface{}{}
	if rating != nil {
		updates["rating"] = *rating
	}
	if notes != nil {
		updates["notes"] = *notes
	}
	if len(updates) == 0 {
		return s.repo.GetImageByID(ctx, id)
	}

	record, err := s.repo.UpdateAnnotations(ctx, id, updates)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	s.invalidate(ctx, id)
	return record, nil
}

// Exists 检查记录是否存在，供一致性核对使用
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	return s.repo.ImageExists(ctx, id)
}

// AllIDs 返回全部记录 ID，供一致性核对使用
func (s *Service) AllIDs(ctx context.Context) ([]string, error) {
	return s.repo.AllImageIDs(ctx)
}

// invalidate 清除记录缓存，缓存故障不影响主流程
func (s *Service) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, keyImage(id)); err != nil {
		log.Printf("[ImageStore] Cache invalidation failed for %s: %v", id, err)
	}
}

func keyImage(id string) string {
	return "image:record:" + id
}

// isUniqueViolation 检查错误是否为唯一约束冲突
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key")
}
