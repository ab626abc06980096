package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage 本地目录存储
type LocalStorage struct {
	basePath string
}

// NewLocalStorage 创建本地目录存储
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// ListIdentifiers 枚举目录中全部制品的标识符
// 忽略子目录、隐藏文件与 sidecar 元数据文件。
func (s *LocalStorage) ListIdentifiers(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read storage directory: %w", err)
	}

	identifiers := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".json") {
			continue
		}
		identifiers = append(identifiers, strings.TrimSuffix(name, filepath.Ext(name)))
	}
	return identifiers, nil
}

// Exists 检查标识符对应的制品是否存在
func (s *LocalStorage) Exists(ctx context.Context, identifier string) (bool, error) {
	matches, err := filepath.Glob(filepath.Join(s.basePath, identifier+".*"))
	if err != nil {
		return false, err
	}
	return len(matches) > 0, nil
}

// Health 检查存储目录可访问
func (s *LocalStorage) Health(ctx context.Context) error {
	info, err := os.Stat(s.basePath)
	if err != nil {
		return fmt.Errorf("storage directory not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("storage path %s is not a directory", s.basePath)
	}
	return nil
}

// Name 返回存储名称
func (s *LocalStorage) Name() string {
	return "local"
}
