package reconcile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/anoixa/image-vault/database"
	"github.com/anoixa/image-vault/database/repo/images"
	"github.com/anoixa/image-vault/database/schema"
	imagesvc "github.com/anoixa/image-vault/internal/services/image"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// setupStore 创建带完整 schema 的图片服务与迁移标记管理器
func setupStore(t *testing.T) (*imagesvc.Service, *schema.Manager) {
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)

	manager := schema.NewManager(db, database.DialectSQLite)
	_, err = manager.EnsureSchema()
	assert.NoError(t, err)

	repo := images.NewRepository(db, database.DialectSQLite)
	return imagesvc.NewService(repo, nil, time.Minute), manager
}

func createRecord(t *testing.T, store *imagesvc.Service, id string) {
	_, err := store.Create(context.Background(), &imagesvc.CreateImageInput{
		ID:       id,
		Filename: id + ".png",
		Prompt:   "prompt for " + id,
	})
	assert.NoError(t, err)
}

// --- 测试 Reconcile ---

func TestService_Reconcile(t *testing.T) {
	store, manager := setupStore(t)
	svc := NewService(store, manager, nil)
	ctx := context.Background()

	// 数据库 {A,B,C}，文件系统 {B,C,D}
	createRecord(t, store, "A")
	createRecord(t, store, "B")
	createRecord(t, store, "C")

	result, err := svc.Reconcile(ctx, []string{"B", "C", "D"})
	assert.NoError(t, err)
	assert.Equal(t, 1, result.MissingCount)
	assert.Equal(t, 1, result.OrphanCount)

	// 文件消失的记录被软删除，仍按 ID 可取
	got, err := store.Get(ctx, "A")
	assert.NoError(t, err)
	assert.NotNil(t, got)
	assert.True(t, got.IsDeleted())

	// 其余记录不受影响
	got, err = store.Get(ctx, "B")
	assert.NoError(t, err)
	assert.False(t, got.IsDeleted())

	// 孤儿文件不会被自动导入
	exists, err := store.Exists(ctx, "D")
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestService_Reconcile_Idempotent(t *testing.T) {
	store, manager := setupStore(t)
	svc := NewService(store, manager, nil)
	ctx := context.Background()

	createRecord(t, store, "A")

	result, err := svc.Reconcile(ctx, nil)
	assert.NoError(t, err)
	assert.Equal(t, 1, result.MissingCount)

	// 第二次核对：记录已软删除，计数不变但没有新的变更
	result, err = svc.Reconcile(ctx, nil)
	assert.NoError(t, err)
	assert.Equal(t, 1, result.MissingCount)
	assert.Equal(t, 0, result.OrphanCount)
}

func TestService_Reconcile_InSync(t *testing.T) {
	store, manager := setupStore(t)
	svc := NewService(store, manager, nil)

	createRecord(t, store, "A")
	createRecord(t, store, "B")

	result, err := svc.Reconcile(context.Background(), []string{"A", "B"})
	assert.NoError(t, err)
	assert.Equal(t, 0, result.MissingCount)
	assert.Equal(t, 0, result.OrphanCount)
}

// --- 测试旧版 sidecar 导入 ---

func writeSidecar(t *testing.T, dir, id, content string) {
	err := os.WriteFile(filepath.Join(dir, id+".json"), []byte(content), 0644)
	assert.NoError(t, err)
}

func TestService_ImportLegacySidecars(t *testing.T) {
	store, manager := setupStore(t)
	ctx := context.Background()

	dir := t.TempDir()
	writeSidecar(t, dir, "legacy-1", `{
		"filename": "legacy-1.png",
		"prompt": "subject:\n  animal: fox\n",
		"seed": 42,
		"width": 512,
		"height": 512
	}`)
	writeSidecar(t, dir, "legacy-2", `{"prompt": "plain old prompt"}`)

	svc := NewService(store, manager, NewDirSidecarSource(dir))

	imported, err := svc.ImportLegacySidecars(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 2, imported)

	got, err := store.Get(ctx, "legacy-1")
	assert.NoError(t, err)
	assert.NotNil(t, got)
	assert.Equal(t, "legacy-1.png", got.Filename)
	assert.Equal(t, int64(42), *got.Seed)
	assert.Equal(t, 512, got.Width)

	// 结构化提示词照常进属性索引
	attrs, err := store.GetAttributes(ctx, "legacy-1")
	assert.NoError(t, err)
	assert.Len(t, attrs, 1)
	assert.Equal(t, "subject.animal", attrs[0].Key)

	// 缺 filename 的 sidecar 回退到 "<id>.png"
	got, err = store.Get(ctx, "legacy-2")
	assert.NoError(t, err)
	assert.Equal(t, "legacy-2.png", got.Filename)
}

func TestService_ImportLegacySidecars_OneShot(t *testing.T) {
	store, manager := setupStore(t)
	ctx := context.Background()

	dir := t.TempDir()
	writeSidecar(t, dir, "legacy-1", `{"prompt": "first run"}`)

	svc := NewService(store, manager, NewDirSidecarSource(dir))

	imported, err := svc.ImportLegacySidecars(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, imported)

	// 标记生效后再执行不会重复导入，即使又有新 sidecar 出现
	writeSidecar(t, dir, "legacy-2", `{"prompt": "late arrival"}`)

	imported, err = svc.ImportLegacySidecars(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 0, imported)

	exists, err := store.Exists(ctx, "legacy-2")
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestService_ImportLegacySidecars_SkipsExistingAndMalformed(t *testing.T) {
	store, manager := setupStore(t)
	ctx := context.Background()

	createRecord(t, store, "already-there")

	dir := t.TempDir()
	writeSidecar(t, dir, "already-there", `{"prompt": "should be ignored"}`)
	writeSidecar(t, dir, "broken", `{not json`)
	writeSidecar(t, dir, "fresh", `{"prompt": "new record"}`)

	svc := NewService(store, manager, NewDirSidecarSource(dir))

	imported, err := svc.ImportLegacySidecars(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, imported)

	// 已有记录不被 sidecar 覆盖
	got, err := store.Get(ctx, "already-there")
	assert.NoError(t, err)
	assert.Equal(t, "prompt for already-there", got.Prompt)
}

func TestService_ImportLegacySidecars_NoSource(t *testing.T) {
	store, manager := setupStore(t)

	svc := NewService(store, manager, nil)
	imported, err := svc.ImportLegacySidecars(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, imported)
}

func TestService_ImportLegacySidecars_MissingDir(t *testing.T) {
	store, manager := setupStore(t)

	svc := NewService(store, manager, NewDirSidecarSource("/nonexistent/sidecars"))
	imported, err := svc.ImportLegacySidecars(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, imported)
}

// --- 测试 Run：导入后接核对 ---

func TestService_Run(t *testing.T) {
	store, manager := setupStore(t)
	ctx := context.Background()

	dir := t.TempDir()
	writeSidecar(t, dir, "legacy-1", `{"prompt": "imported"}`)

	createRecord(t, store, "gone")

	svc := NewService(store, manager, NewDirSidecarSource(dir))

	// sidecar 对应的文件仍然在，导入的记录不会被当场删掉
	result, err := svc.Run(ctx, []string{"legacy-1"})
	assert.NoError(t, err)
	assert.Equal(t, 1, result.MissingCount)
	assert.Equal(t, 0, result.OrphanCount)

	got, err := store.Get(ctx, "legacy-1")
	assert.NoError(t, err)
	assert.False(t, got.IsDeleted())

	got, err = store.Get(ctx, "gone")
	assert.NoError(t, err)
	assert.True(t, got.IsDeleted())
}
