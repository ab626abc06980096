package images

import (
	"errors"
	"net/http"

	"github.com/anoixa/image-vault/api/common"
	imageSvc "github.com/anoixa/image-vault/internal/services/image"
	"github.com/gin-gonic/gin"
)

// CreateImage 创建图片记录
func (h *Handler) CreateImage(c *gin.Context) {
	var input imageSvc.CreateImageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		common.RespondError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	image, err := h.service.Create(c.Request.Context(), &input)
	if err != nil {
		switch {
		case errors.Is(err, imageSvc.ErrDuplicateFilename):
			common.RespondError(c, http.StatusConflict, "An image with this filename already exists")
		case errors.Is(err, imageSvc.ErrInvalidInput):
			common.RespondError(c, http.StatusBadRequest, err.Error())
		default:
			common.RespondError(c, http.StatusInternalServerError, "Failed to create image record")
		}
		return
	}

	c.JSON(http.StatusCreated, common.Response{
		Status: "success",
		Data:   imageSvc.ToImageInfo(image),
	})
}
