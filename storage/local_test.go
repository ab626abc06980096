package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func touch(t *testing.T, dir, name string) {
	assert.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
}

func TestLocalStorage_ListIdentifiers(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "img-1.png")
	touch(t, dir, "img-2.webp")
	touch(t, dir, "img-1.json")   // sidecar 元数据不算制品
	touch(t, dir, ".hidden.png")  // 隐藏文件忽略
	assert.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0755))

	s, err := NewLocalStorage(dir)
	assert.NoError(t, err)

	ids, err := s.ListIdentifiers(context.Background())
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"img-1", "img-2"}, ids)
}

func TestLocalStorage_Exists(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "img-1.png")

	s, err := NewLocalStorage(dir)
	assert.NoError(t, err)

	exists, err := s.Exists(context.Background(), "img-1")
	assert.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.Exists(context.Background(), "img-2")
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalStorage_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "store")

	s, err := NewLocalStorage(dir)
	assert.NoError(t, err)
	assert.NoError(t, s.Health(context.Background()))

	ids, err := s.ListIdentifiers(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, ids)
}
