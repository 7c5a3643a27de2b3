package employee

import (
	"leavedesk/internal/cacheview"
	"leavedesk/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	employees := r.Group("/employees")
	employees.Use(middleware.AuthMiddleware())
	{
		employees.GET("", handler.GetAll)
		employees.GET("/:id", handler.GetByID)

		admin := middleware.RequireRole(cacheview.RoleAdmin)
		adminOrSub := middleware.RequireRole(cacheview.RoleAdmin, cacheview.RoleSubAdmin)

		employees.POST("", admin, handler.Create)
		employees.PATCH("/:id/role", admin, handler.ChangeRole)
		employees.PATCH("/:id/status", admin, handler.ChangeStatus)
		employees.POST("/:id/members", adminOrSub, handler.AssignMembers)
		employees.DELETE("/:id/members/:memberId", adminOrSub, handler.UnassignMember)
	}
}
