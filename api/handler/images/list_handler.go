package images

import (
	"net/http"

	"github.com/anoixa/image-vault/api/common"
	"github.com/gin-gonic/gin"
)

// ListImages 按创建时间分页列出图片记录
func (h *Handler) ListImages(c *gin.Context) {
	result, err := h.service.List(c.Request.Context(), includeDeletedFromQuery(c), paginationFromQuery(c))
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to get image list")
		return
	}

	common.RespondSuccess(c, result)
}

// SearchImages 对提示词全文检索
func (h *Handler) SearchImages(c *gin.Context) {
	query := c.Query("q")

	result, err := h.service.Search(c.Request.Context(), query, includeDeletedFromQuery(c), paginationFromQuery(c))
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Search failed")
		return
	}

	common.RespondSuccess(c, result)
}
