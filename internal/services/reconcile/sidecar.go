package reconcile

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/anoixa/image-vault/utils"
)

// SidecarRecord 从一个 sidecar 文件恢复出的元数据
// 缺失字段保持零值，由存储层填默认。
type SidecarRecord struct {
	Identifier     string
	Filename       string
	Prompt         string
	NegativePrompt string
	Parameters     map[string]interface{}
	WorkflowID     string
	Seed           *int64
	Width          int
	Height         int
	FileSize       int64
}

// SidecarSource 旧版 sidecar 元数据来源
type SidecarSource interface {
	List(ctx context.Context) ([]SidecarRecord, error)
}

// DirSidecarSource 本地目录中的 "<id>.json" sidecar 文件
type DirSidecarSource struct {
	dir string
}

// NewDirSidecarSource 创建目录 sidecar 来源
func NewDirSidecarSource(dir string) *DirSidecarSource {
	return &DirSidecarSource{dir: dir}
}

// sidecarFile sidecar JSON 的磁盘格式
type sidecarFile struct {
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

// List 读取目录中全部 sidecar 文件
// 目录不存在视为没有旧数据；单个坏文件跳过并记日志。
func (s *DirSidecarSource) List(ctx context.Context) ([]SidecarRecord, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read sidecar directory: %w", err)
	}

	var records []SidecarRecord
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			log.Printf("[Reconciler] Failed to read sidecar %s: %v", utils.SanitizeLogIdentifier(entry.Name()), err)
			continue
		}

		var file sidecarFile
		if err := json.Unmarshal(data, &file); err != nil {
			log.Printf("[Reconciler] Skipping malformed sidecar %s: %v", utils.SanitizeLogIdentifier(entry.Name()), err)
			continue
		}

		identifier := strings.TrimSuffix(entry.Name(), ".json")
		filename := file.Filename
		if filename == "" {
			filename = identifier + ".png"
		}

		records = append(records, SidecarRecord{
			Identifier:     identifier,
			Filename:       filename,
			Prompt:         file.Prompt,
			NegativePrompt: file.NegativePrompt,
			Parameters:     file.Parameters,
			WorkflowID:     file.WorkflowID,
			Seed:           file.Seed,
			Width:          file.Width,
			Height:         file.Height,
			FileSize:       file.FileSize,
		})
	}
	return records, nil
}
