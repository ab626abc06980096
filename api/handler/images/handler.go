package images

import (
	"strconv"

	"github.com/anoixa/image-vault/database/repo/images"
	imageSvc "github.com/anoixa/image-vault/internal/services/image"
	"github.com/gin-gonic/gin"
)

// Handler 图片记录处理器
type Handler struct {
	service *imageSvc.Service
}

// NewHandler 创建图片记录处理器
func NewHandler(service *imageSvc.Service) *Handler {
	return &Handler{service: service}
}

// paginationFromQuery 从查询参数解析分页
func paginationFromQuery(c *gin.Context) images.Pagination {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	return images.Pagination{
		Limit:  limit,
		Offset: offset,
		Sort:   c.Query("sort"),
	}
}

func includeDeletedFromQuery(c *gin.Context) bool {
	v, _ := strconv.ParseBool(c.DefaultQuery("include_deleted", "false"))
	return v
}
