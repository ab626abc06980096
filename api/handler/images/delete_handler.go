package images

import (
	"net/http"

	"github.com/anoixa/image-vault/api/common"
	"github.com/gin-gonic/gin"
)

type BulkDeleteRequestBody struct {
	IDs []string `json:"ids" binding:"required"`
}

// DeleteImage 软删除单条图片记录
func (h *Handler) DeleteImage(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		common.RespondError(c, http.StatusBadRequest, "Image id is required")
		return
	}

	changed, err := h.service.SoftDelete(c.Request.Context(), id)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to delete the image due to an internal error")
		return
	}

	common.RespondSuccessMessage(c, "Delete request processed", gin.H{"changed": changed})
}

// DeleteImages 批量软删除图片记录
func (h *Handler) DeleteImages(c *gin.Context) {
	var body BulkDeleteRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid request body. 'ids' field with a list of strings is required.")
		return
	}

	if len(body.IDs) == 0 {
		common.RespondError(c, http.StatusBadRequest, "No image ids provided for deletion")
		return
	}

	affected, err := h.service.BulkSoftDelete(c.Request.Context(), body.IDs)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to delete images due to an internal error")
		return
	}

	common.RespondSuccessMessage(c, "Delete request processed", gin.H{"deleted_count": affected})
}

// RestoreImage 恢复软删除的图片记录
func (h *Handler) RestoreImage(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		common.RespondError(c, http.StatusBadRequest, "Image id is required")
		return
	}

	changed, err := h.service.Restore(c.Request.Context(), id)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to restore the image due to an internal error")
		return
	}

	common.RespondSuccessMessage(c, "Restore request processed", gin.H{"changed": changed})
}

// PurgeImage 物理删除图片记录及其属性索引
func (h *Handler) PurgeImage(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		common.RespondError(c, http.StatusBadRequest, "Image id is required")
		return
	}

	changed, err := h.service.HardDelete(c.Request.Context(), id)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to purge the image due to an internal error")
		return
	}

	common.RespondSuccessMessage(c, "Purge request processed", gin.H{"changed": changed})
}
