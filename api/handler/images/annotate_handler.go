package images

import (
	"net/http"

	"github.com/anoixa/image-vault/api/common"
	imageSvc "github.com/anoixa/image-vault/internal/services/image"
	"github.com/gin-gonic/gin"
)

type AnnotateRequestBody struct {
	Rating *int    `json:"rating"`
	Notes  *string `json:"notes"`
}

// ToggleFavorite 反转图片的收藏状态
func (h *Handler) ToggleFavorite(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		common.RespondError(c, http.StatusBadRequest, "Image id is required")
		return
	}

	changed, err := h.service.ToggleFavorite(c.Request.Context(), id)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to toggle favorite")
		return
	}
	if !changed {
		common.RespondError(c, http.StatusNotFound, "Image not found")
		return
	}

	common.RespondSuccessMessage(c, "Favorite toggled", nil)
}

// UpdateAnnotations 更新评分与备注
func (h *Handler) UpdateAnnotations(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		common.RespondError(c, http.StatusBadRequest, "Image id is required")
		return
	}

	var body AnnotateRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if body.Rating != nil && (*body.Rating < 0 || *body.Rating > 5) {
		common.RespondError(c, http.StatusBadRequest, "Rating must be between 0 and 5")
		return
	}

	image, err := h.service.UpdateAnnotations(c.Request.Context(), id, body.Rating, body.Notes)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to update annotations")
		return
	}
	if image == nil {
		common.RespondError(c, http.StatusNotFound, "Image not found")
		return
	}

	common.RespondSuccess(c, imageSvc.ToImageInfo(image))
}
