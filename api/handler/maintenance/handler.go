package maintenance

import (
	"net/http"

	"github.com/anoixa/image-vault/api/common"
	"github.com/anoixa/image-vault/internal/services/reconcile"
	"github.com/anoixa/image-vault/storage"
	"github.com/gin-gonic/gin"
)

// Handler 维护任务处理器
type Handler struct {
	reconciler *reconcile.Service
	storage    storage.Provider
}

// NewHandler 创建维护任务处理器
func NewHandler(reconciler *reconcile.Service, storageProvider storage.Provider) *Handler {
	return &Handler{
		reconciler: reconciler,
		storage:    storageProvider,
	}
}

// Reconcile 对存储后端与数据库做一次一致性校对
func (h *Handler) Reconcile(c *gin.Context) {
	ctx := c.Request.Context()

	ids, err := h.storage.ListIdentifiers(ctx)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Failed to list storage identifiers")
		return
	}

	result, err := h.reconciler.Run(ctx, ids)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, "Reconciliation failed")
		return
	}

	common.RespondSuccess(c, result)
}
