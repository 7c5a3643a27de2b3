package holiday

import (
	"leavedesk/internal/cacheview"
	"leavedesk/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	holidays := r.Group("/holidays")
	holidays.Use(middleware.AuthMiddleware())
	{
		holidays.GET("", handler.GetAll)

		admin := middleware.RequireRole(cacheview.RoleAdmin, cacheview.RoleSubAdmin)

		holidays.POST("", admin, handler.Create)
		holidays.PUT("/:id", admin, handler.Update)
		holidays.DELETE("/:id", admin, handler.Delete)
	}
}
