package accrual

import (
	"net/http"
	"time"

	"leavedesk/internal/cacheview"
	"leavedesk/internal/middleware"
	"leavedesk/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler exposes a manual sweep trigger. The worker runs the sweep on its
// own schedule; this endpoint exists for operational catch-up (e.g. after
// the worker was down over a period boundary) and is idempotent either way.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("accrual.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("accrual.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) RunSweep(c *gin.Context) {
	if err := h.service.RunSweep(c.Request.Context(), time.Now().UTC()); err != nil {
		h.logger.Error("manual accrual sweep failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "accrual sweep failed")
		return
	}
	response.SuccessMessage(c, http.StatusOK, "accrual sweep completed", nil)
}

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	accruals := r.Group("/accruals")
	accruals.Use(middleware.AuthMiddleware(), middleware.RequireRole(cacheview.RoleAdmin))
	{
		accruals.POST("/sweep", handler.RunSweep)
	}
}
