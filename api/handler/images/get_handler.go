package images

import (
	"net/http"

	"github.com/anoixa/image-vault/api/common"
	imageSvc "github.com/anoixa/image-vault/internal/services/image"
	"github.com/gin-gonic/gin"
)

// GetImage 获取单条图片记录
func (h *Handler) GetImage(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		common.RespondError(c, http.StatusBadRequest, "Image id is required")
		return
	}

	image, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to load image record")
		return
	}
	if image == nil {
		common.RespondError(c, http.StatusNotFound, "Image not found")
		return
	}

	common.RespondSuccess(c, imageSvc.ToImageInfo(image))
}

// GetImageAttributes 获取图片的派生属性索引
func (h *Handler) GetImageAttributes(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		common.RespondError(c, http.StatusBadRequest, "Image id is required")
		return
	}

	exists, err := h.service.Exists(c.Request.Context(), id)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to load image attributes")
		return
	}
	if !exists {
		common.RespondError(c, http.StatusNotFound, "Image not found")
		return
	}

	attrs, err := h.service.GetAttributes(c.Request.Context(), id)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to load image attributes")
		return
	}

	type attributeDTO struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	out := make([]attributeDTO, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, attributeDTO{Key: a.Key, Value: a.Value})
	}

	common.RespondSuccess(c, gin.H{
		"id":         id,
		"attributes": out,
		"count":      len(out),
	})
}
