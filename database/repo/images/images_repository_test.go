package images

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/anoixa/image-vault/database"
	"github.com/anoixa/image-vault/database/models"
	"github.com/anoixa/image-vault/database/schema"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// setupTestDB 创建测试数据库并完成全部迁移
func setupTestDB(t *testing.T) *gorm.DB {
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)

	_, err = schema.NewManager(db, database.DialectSQLite).EnsureSchema()
	assert.NoError(t, err)

	return db
}

func setupRepo(t *testing.T) *Repository {
	return NewRepository(setupTestDB(t), database.DialectSQLite)
}

func makeImage(id, prompt string) *models.Image {
	return &models.Image{
		ID:       id,
		Filename: id + ".png",
		Prompt:   prompt,
	}
}

// --- 测试基础 CRUD ---

func TestRepository_SaveAndGetImage(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	seed := int64(42)
	image := &models.Image{
		ID:       "img-1",
		Filename: "img-1.png",
		Prompt:   "a red fox in the snow",
		Seed:     &seed,
		Width:    1024,
		Height:   768,
	}
	assert.NoError(t, repo.SaveImage(ctx, image))

	got, err := repo.GetImageByID(ctx, "img-1")
	assert.NoError(t, err)
	assert.NotNil(t, got)
	assert.Equal(t, "img-1.png", got.Filename)
	assert.Equal(t, "a red fox in the snow", got.Prompt)
	assert.Equal(t, int64(42), *got.Seed)
	assert.Equal(t, 1024, got.Width)
	assert.False(t, got.Favorite)
	assert.NotZero(t, got.CreatedAt)
}

func TestRepository_GetImageByID_NotFound(t *testing.T) {
	repo := setupRepo(t)

	got, err := repo.GetImageByID(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestRepository_GetImageByFilename(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	assert.NoError(t, repo.SaveImage(ctx, makeImage("img-1", "sunset")))

	got, err := repo.GetImageByFilename(ctx, "img-1.png")
	assert.NoError(t, err)
	assert.NotNil(t, got)
	assert.Equal(t, "img-1", got.ID)

	got, err = repo.GetImageByFilename(ctx, "nope.png")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestRepository_SaveImage_DuplicateFilename(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	assert.NoError(t, repo.SaveImage(ctx, makeImage("img-1", "sunset")))

	dup := makeImage("img-2", "another")
	dup.Filename = "img-1.png"
	assert.Error(t, repo.SaveImage(ctx, dup))
}

func TestRepository_SaveImage_DuplicateFilenameAcrossDeleted(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	assert.NoError(t, repo.SaveImage(ctx, makeImage("img-1", "sunset")))

	// 软删除后文件名仍被占用
	changed, err := repo.SoftDeleteImage(ctx, "img-1")
	assert.NoError(t, err)
	assert.True(t, changed)

	dup := makeImage("img-2", "another")
	dup.Filename = "img-1.png"
	assert.Error(t, repo.SaveImage(ctx, dup))
}

// --- 测试软删除生命周期 ---

func TestRepository_SoftDeleteAndRestore(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	seed := int64(7)
	image := makeImage("img-1", "misty forest")
	image.Seed = &seed
	image.Favorite = true
	assert.NoError(t, repo.SaveImage(ctx, image))

	changed, err := repo.SoftDeleteImage(ctx, "img-1")
	assert.NoError(t, err)
	assert.True(t, changed)

	// 记录仍可按 ID 取到，带删除标记
	got, err := repo.GetImageByID(ctx, "img-1")
	assert.NoError(t, err)
	assert.NotNil(t, got)
	assert.True(t, got.IsDeleted())

	// 重复删除无变更
	changed, err = repo.SoftDeleteImage(ctx, "img-1")
	assert.NoError(t, err)
	assert.False(t, changed)

	changed, err = repo.RestoreImage(ctx, "img-1")
	assert.NoError(t, err)
	assert.True(t, changed)

	// 恢复后其余字段不受影响
	got, err = repo.GetImageByID(ctx, "img-1")
	assert.NoError(t, err)
	assert.False(t, got.IsDeleted())
	assert.Equal(t, "misty forest", got.Prompt)
	assert.Equal(t, int64(7), *got.Seed)
	assert.True(t, got.Favorite)

	// 未删除的记录不可恢复
	changed, err = repo.RestoreImage(ctx, "img-1")
	assert.NoError(t, err)
	assert.False(t, changed)
}

func TestRepository_SoftDeleteImage_Missing(t *testing.T) {
	repo := setupRepo(t)

	changed, err := repo.SoftDeleteImage(context.Background(), "missing")
	assert.NoError(t, err)
	assert.False(t, changed)
}

func TestRepository_HardDeleteImage(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	assert.NoError(t, repo.SaveImage(ctx, makeImage("img-1", "city at night")))
	assert.NoError(t, repo.ReplaceAttributes(ctx, "img-1", []models.ImageAttribute{
		{Key: "style", Value: "noir"},
	}))

	changed, err := repo.HardDeleteImage(ctx, "img-1")
	assert.NoError(t, err)
	assert.True(t, changed)

	got, err := repo.GetImageByID(ctx, "img-1")
	assert.NoError(t, err)
	assert.Nil(t, got)

	// 属性随记录一并删除
	attrs, err := repo.GetAttributesByImageID(ctx, "img-1")
	assert.NoError(t, err)
	assert.Empty(t, attrs)

	// 对已删除记录重复执行无变更
	changed, err = repo.HardDeleteImage(ctx, "img-1")
	assert.NoError(t, err)
	assert.False(t, changed)
}

// --- 测试列表与分页 ---

func TestRepository_ListImages(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		image := makeImage(fmt.Sprintf("img-%d", i), "prompt")
		image.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		assert.NoError(t, repo.SaveImage(ctx, image))
	}

	// 默认按创建时间倒序
	list, total, err := repo.ListImages(ctx, false, Pagination{})
	assert.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, list, 5)
	assert.Equal(t, "img-4", list[0].ID)
	assert.Equal(t, "img-0", list[4].ID)

	// 升序分页，total 仍为完整匹配数
	list, total, err = repo.ListImages(ctx, false, Pagination{Limit: 2, Offset: 2, Sort: "asc"})
	assert.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, list, 2)
	assert.Equal(t, "img-2", list[0].ID)
	assert.Equal(t, "img-3", list[1].ID)
}

func TestRepository_ListImages_IncludeDeleted(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	assert.NoError(t, repo.SaveImage(ctx, makeImage("img-1", "alpha")))
	assert.NoError(t, repo.SaveImage(ctx, makeImage("img-2", "beta")))

	_, err := repo.SoftDeleteImage(ctx, "img-1")
	assert.NoError(t, err)

	list, total, err := repo.ListImages(ctx, false, Pagination{})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, list, 1)
	assert.Equal(t, "img-2", list[0].ID)

	list, total, err = repo.ListImages(ctx, true, Pagination{})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, list, 2)
}

// --- 测试标注 ---

func TestRepository_ToggleFavorite(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	assert.NoError(t, repo.SaveImage(ctx, makeImage("img-1", "prompt")))

	changed, err := repo.ToggleFavorite(ctx, "img-1")
	assert.NoError(t, err)
	assert.True(t, changed)

	got, _ := repo.GetImageByID(ctx, "img-1")
	assert.True(t, got.Favorite)

	changed, err = repo.ToggleFavorite(ctx, "img-1")
	assert.NoError(t, err)
	assert.True(t, changed)

	got, _ = repo.GetImageByID(ctx, "img-1")
	assert.False(t, got.Favorite)

	changed, err = repo.ToggleFavorite(ctx, "missing")
	assert.NoError(t, err)
	assert.False(t, changed)
}

func TestRepository_UpdateAnnotations(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	assert.NoError(t, repo.SaveImage(ctx, makeImage("img-1", "prompt")))

	got, err := repo.UpdateAnnotations(ctx, "img-1", map[string]interface{}{
		"rating": 4,
		"notes":  "keeper",
	})
	assert.NoError(t, err)
	assert.NotNil(t, got)
	assert.Equal(t, 4, *got.Rating)
	assert.Equal(t, "keeper", got.Notes)

	_, err = repo.UpdateAnnotations(ctx, "missing", map[string]interface{}{"notes": "x"})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

// --- 测试存在性与全量 ID ---

func TestRepository_ImageExistsAndAllIDs(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	assert.NoError(t, repo.SaveImage(ctx, makeImage("img-b", "prompt")))
	assert.NoError(t, repo.SaveImage(ctx, makeImage("img-a", "prompt")))

	_, err := repo.SoftDeleteImage(ctx, "img-a")
	assert.NoError(t, err)

	// 软删除的记录在存在性检查与全量 ID 中依然可见
	exists, err := repo.ImageExists(ctx, "img-a")
	assert.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ImageExists(ctx, "missing")
	assert.NoError(t, err)
	assert.False(t, exists)

	ids, err := repo.AllImageIDs(ctx)
	assert.NoError(t, err)
	assert.Equal(t, []string{"img-a", "img-b"}, ids)
}

// --- 测试属性替换 ---

func TestRepository_ReplaceAttributes(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	assert.NoError(t, repo.SaveImage(ctx, makeImage("img-1", "prompt")))

	assert.NoError(t, repo.ReplaceAttributes(ctx, "img-1", []models.ImageAttribute{
		{Key: "style", Value: "noir"},
		{Key: "subject.animal", Value: "fox"},
	}))

	attrs, err := repo.GetAttributesByImageID(ctx, "img-1")
	assert.NoError(t, err)
	assert.Len(t, attrs, 2)
	assert.Equal(t, "style", attrs[0].Key)
	assert.Equal(t, "subject.animal", attrs[1].Key)

	// 替换后旧属性不残留
	assert.NoError(t, repo.ReplaceAttributes(ctx, "img-1", []models.ImageAttribute{
		{Key: "style", Value: "watercolor"},
	}))

	attrs, err = repo.GetAttributesByImageID(ctx, "img-1")
	assert.NoError(t, err)
	assert.Len(t, attrs, 1)
	assert.Equal(t, "watercolor", attrs[0].Value)

	// 空集清空全部属性
	assert.NoError(t, repo.ReplaceAttributes(ctx, "img-1", nil))
	attrs, err = repo.GetAttributesByImageID(ctx, "img-1")
	assert.NoError(t, err)
	assert.Empty(t, attrs)
}
