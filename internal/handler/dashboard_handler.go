package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bravoform/bravoform-api/internal/models"
	"github.com/bravoform/bravoform-api/internal/service"
	appErrors "github.com/bravoform/bravoform-api/pkg/errors"
	"github.com/bravoform/bravoform-api/pkg/response"
)

type dashboardService interface {
	Build(ctx context.Context, query service.DashboardQuery) (*service.DashboardResult, error)
}

// DashboardHandler wires the dashboard aggregation to HTTP.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Overview godoc
// @Summary Company dashboard
// @Tags Dashboard
// @Produce json
// @Param companyId query string false "Company ID (admins only, defaults to own company)"
// @Param departmentId query string false "Department ID"
// @Param formId query string false "Form ID"
// @Param from query string false "Window start"
// @Param to query string false "Window end"
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Overview(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	companyID := claims.CompanyID
	if claims.Role == models.RoleAdmin {
		if qc := c.Query("companyId"); qc != "" {
			companyID = qc
		}
	}

	from, err := queryTime(c, "from")
	if err != nil {
		response.Error(c, err)
		return
	}
	to, err := queryTime(c, "to")
	if err != nil {
		response.Error(c, err)
		return
	}

	query := service.DashboardQuery{
		CompanyID:    companyID,
		DepartmentID: c.Query("departmentId"),
		FormID:       c.Query("formId"),
	}
	if from != nil {
		query.From = *from
	}
	if to != nil {
		query.To = *to
	}

	start := time.Now()
	result, err := h.service.Build(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	meta := map[string]interface{}{
		"cache_hit":          result.CacheHit,
		"processing_time_ms": time.Since(start).Milliseconds(),
	}
	response.JSON(c, http.StatusOK, result.Data, nil, meta)
}
