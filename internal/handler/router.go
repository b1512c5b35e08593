package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/bravoform/bravoform-api/internal/middleware"
	"github.com/bravoform/bravoform-api/internal/models"
)

// Handlers bundles every HTTP handler for route registration.
type Handlers struct {
	Auth          *AuthHandler
	Forms         *FormHandler
	Responses     *ResponseHandler
	Dashboard     *DashboardHandler
	Companies     *CompanyHandler
	Collaborators *CollaboratorHandler
	Metrics       *MetricsHandler
}

// RegisterRoutes mounts the API under /api/v1. The auth middleware guards
// everything except login, password reset and the observability endpoints.
func RegisterRoutes(r *gin.Engine, h Handlers, jwt gin.HandlerFunc) {
	if h.Metrics != nil {
		r.GET("/metrics", h.Metrics.Prometheus)
	}

	v1 := r.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/reset-password", h.Auth.ResetPassword)
		auth.GET("/me", jwt, h.Auth.Me)
	}

	protected := v1.Group("")
	protected.Use(jwt)

	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleLeader)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	forms := protected.Group("/forms")
	{
		forms.GET("", h.Forms.List)
		forms.GET("/field-types", h.Forms.FieldTypes)
		forms.GET("/assigned", h.Forms.Assigned)
		forms.GET("/:id", h.Forms.Get)
		forms.POST("", staff, h.Forms.Create)
		forms.PUT("/:id", staff, h.Forms.Update)
		forms.DELETE("/:id", staff, h.Forms.Delete)
		forms.GET("/:id/export", staff, h.Responses.Export)
	}

	responses := protected.Group("/responses")
	{
		responses.POST("", h.Responses.Submit)
		responses.GET("", h.Responses.List)
		responses.GET("/:id", h.Responses.Detail)
		responses.PUT("/:id", h.Responses.Edit)
	}

	protected.GET("/dashboard", staff, h.Dashboard.Overview)

	if h.Metrics != nil {
		protected.GET("/system/stats", adminOnly, h.Metrics.Stats)
	}

	companies := protected.Group("/companies", adminOnly)
	{
		companies.GET("", h.Companies.List)
		companies.GET("/:id", h.Companies.Get)
		companies.POST("", h.Companies.Create)
		companies.PUT("/:id", h.Companies.Update)
		companies.DELETE("/:id", h.Companies.Delete)
		companies.GET("/:id/departments", h.Companies.ListDepartments)
		companies.POST("/:id/departments", h.Companies.CreateDepartment)
		companies.PUT("/:id/departments/:departmentId", h.Companies.UpdateDepartment)
		companies.DELETE("/:id/departments/:departmentId", h.Companies.DeleteDepartment)
	}

	collaborators := protected.Group("/collaborators")
	{
		collaborators.GET("", staff, h.Collaborators.List)
		collaborators.GET("/:id", middleware.RBAC(string(models.RoleAdmin), string(models.RoleLeader), "SELF"), h.Collaborators.Get)
		collaborators.POST("", staff, h.Collaborators.Create)
		collaborators.PUT("/:id", staff, h.Collaborators.Update)
		collaborators.DELETE("/:id", adminOnly, h.Collaborators.Delete)
	}
}
