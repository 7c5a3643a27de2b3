package leave

import (
	"leavedesk/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	leaves := r.Group("/leaves")
	leaves.Use(middleware.AuthMiddleware())
	{
		leaves.GET("", handler.GetAll)
		leaves.GET("/:id", handler.GetByID)
		leaves.POST("", handler.Apply)
		leaves.PATCH("/:id/approve", handler.Approve)
		leaves.PATCH("/:id/reject", handler.Reject)
		leaves.DELETE("/:id", handler.Delete)
	}
}
