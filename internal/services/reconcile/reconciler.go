// Package reconcile 负责数据库记录与实际文件之间的一致性核对
package reconcile

import (
	"context"
	"fmt"
	"log"

	"github.com/anoixa/image-vault/database/models"
	imagesvc "github.com/anoixa/image-vault/internal/services/image"
	"github.com/anoixa/image-vault/utils"
)

// legacyImportID 旧版 sidecar 元数据一次性导入的迁移标识
const legacyImportID = "legacy_sidecar_import_v1"

// Store 核对器需要的图片存储操作
type Store interface {
	Create(ctx context.Context, input *imagesvc.CreateImageInput) (*models.Image, error)
	Exists(ctx context.Context, id string) (bool, error)
	AllIDs(ctx context.Context) ([]string, error)
	SoftDelete(ctx context.Context, id string) (bool, error)
}

// Markers 一次性数据迁移标记
type Markers interface {
	Completed(id string) (bool, error)
	MarkCompleted(id string) error
}

// Result 一次核对的结果，只是诊断信息，不是错误
type Result struct {
	MissingCount int `json:"missing_count"`
	OrphanCount  int `json:"orphan_count"`
}

// Service 一致性核对服务
// 两项职责都幂等，都在启动时执行一次。
type Service struct {
	store    Store
	markers  Markers
	sidecars SidecarSource // 可为 nil
}

// NewService 创建一致性核对服务
func NewService(store Store, markers Markers, sidecars SidecarSource) *Service {
	return &Service{
		store:    store,
		markers:  markers,
		sidecars: sidecars,
	}
}

// Run 执行完整的启动核对：先导入旧版 sidecar，再对账文件集合
func (s *Service) Run(ctx context.Context, fsIDs []string) (Result, error) {
	if _, err := s.ImportLegacySidecars(ctx); err != nil {
		return Result{}, err
	}
	return s.Reconcile(ctx, fsIDs)
}

// Reconcile 对比存储已知的记录集合与实际存在的文件集合
//   - 记录存在而文件消失：逐条软删除（文件在外部被删）
//   - 文件存在而记录缺失：只计数上报，不自动导入——
//     来源不明的文件留给人工处理
func (s *Service) Reconcile(ctx context.Context, fsIDs []string) (Result, error) {
	dbIDs, err := s.store.AllIDs(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load record ids: %w", err)
	}

	fsSet := make(map[string]struct{}, len(fsIDs))
	for _, id := range fsIDs {
		fsSet[id] = struct{}{}
	}
	dbSet := make(map[string]struct{}, len(dbIDs))
	for _, id := range dbIDs {
		dbSet[id] = struct{}{}
	}

	var result Result
	for _, id := range dbIDs {
		if _, ok := fsSet[id]; ok {
			continue
		}
		result.MissingCount++

		changed, err := s.store.SoftDelete(ctx, id)
		if err != nil {
			return result, fmt.Errorf("failed to soft delete missing record %s: %w", id, err)
		}
		if changed {
			log.Printf("[Reconciler] Soft deleted record %s: backing file is gone", id)
		}
	}

	for _, id := range fsIDs {
		if _, ok := dbSet[id]; !ok {
			result.OrphanCount++
			log.Printf("[Reconciler] Orphan file %s has no record", utils.SanitizeLogIdentifier(id))
		}
	}

	log.Printf("[Reconciler] Reconciliation finished: %d missing, %d orphans", result.MissingCount, result.OrphanCount)
	return result, nil
}

// ImportLegacySidecars 一次性导入旧版 sidecar 元数据
// 通过迁移标记保证只执行一次，即使 sidecar 文件之后仍然存在。
// 返回本次实际导入的记录数。
func (s *Service) ImportLegacySidecars(ctx context.Context) (int, error) {
	if s.sidecars == nil {
		return 0, nil
	}

	done, err := s.markers.Completed(legacyImportID)
	if err != nil {
		return 0, err
	}
	if done {
		return 0, nil
	}

	records, err := s.sidecars.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list legacy sidecars: %w", err)
	}

	imported := 0
	for _, rec := range records {
		exists, err := s.store.Exists(ctx, rec.Identifier)
		if err != nil {
			return imported, fmt.Errorf("failed to check record %s: %w", rec.Identifier, err)
		}
		if exists {
			continue
		}

		input := &imagesvc.CreateImageInput{
			ID:             rec.Identifier,
			Filename:       rec.Filename,
			Prompt:         rec.Prompt,
			NegativePrompt: rec.NegativePrompt,
			Parameters:     rec.Parameters,
			WorkflowID:     rec.WorkflowID,
			Seed:           rec.Seed,
			Width:          rec.Width,
			Height:         rec.Height,
			FileSize:       rec.FileSize,
		}
		if _, err := s.store.Create(ctx, input); err != nil {
			// 单个坏 sidecar 不应中断整个导入
			log.Printf("[Reconciler] Failed to import sidecar %s: %v", utils.SanitizeLogIdentifier(rec.Identifier), err)
			continue
		}
		imported++
	}

	if err := s.markers.MarkCompleted(legacyImportID); err != nil {
		return imported, err
	}

	log.Printf("[Reconciler] Legacy sidecar import completed: %d records imported", imported)
	return imported, nil
}
