package image

import (
	"time"

	"github.com/anoixa/image-vault/database/models"
)

// ImageInfo 对外返回的图片记录视图
type ImageInfo struct {
	ID             string     `json:"id"`
	Filename       string     `json:"filename"`
	Prompt         string     `json:"prompt"`
	NegativePrompt string     `json:"negative_prompt,omitempty"`
	Parameters     string     `json:"parameters,omitempty"`
	WorkflowID     string     `json:"workflow_id,omitempty"`
	Seed           *int64     `json:"seed,omitempty"`
	Width          int        `json:"width,omitempty"`
	Height         int        `json:"height,omitempty"`
	FileSize       int64      `json:"file_size,omitempty"`
	Favorite       bool       `json:"favorite"`
	Rating         *int       `json:"rating,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
}

// PaginatedResult 分页结果
// Total 为分页前完整匹配数，HasMore = offset + len(items) < total。
type PaginatedResult struct {
	Items   []*ImageInfo `json:"items"`
	Total   int64        `json:"total"`
	HasMore bool         `json:"has_more"`
}

// ToImageInfo 把存储模型转换为对外视图
func ToImageInfo(m *models.Image) *ImageInfo {
	info := &ImageInfo{
		ID:             m.ID,
		Filename:       m.Filename,
		Prompt:         m.Prompt,
		NegativePrompt: m.NegativePrompt,
		Parameters:     m.Parameters,
		WorkflowID:     m.WorkflowID,
		Seed:           m.Seed,
		Width:          m.Width,
		Height:         m.Height,
		FileSize:       m.FileSize,
		Favorite:       m.Favorite,
		Rating:         m.Rating,
		Notes:          m.Notes,
		CreatedAt:      m.CreatedAt,
	}
	if m.DeletedAt.Valid {
		t := m.DeletedAt.Time
		info.DeletedAt = &t
	}
	return info
}

// buildPage 组装分页结果
func buildPage(items []*models.Image, total int64, offset int) *PaginatedResult {
	infos := make([]*ImageInfo, 0, len(items))
	for _, item := range items {
		infos = append(infos, ToImageInfo(item))
	}
	return &PaginatedResult{
		Items:   infos,
		Total:   total,
		HasMore: int64(offset+len(items)) < total,
	}
}
