package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/bravoform/bravoform-api/internal/dto"
	"github.com/bravoform/bravoform-api/internal/middleware"
	"github.com/bravoform/bravoform-api/internal/models"
	"github.com/bravoform/bravoform-api/internal/service"
)

type fakeDashboardSrv struct {
	result    *service.DashboardResult
	err       error
	lastQuery service.DashboardQuery
}

func (f *fakeDashboardSrv) Build(_ context.Context, query service.DashboardQuery) (*service.DashboardResult, error) {
	f.lastQuery = query
	return f.result, f.err
}

type responseEnvelope struct {
	Data map[string]interface{} `json:"data"`
	Meta map[string]interface{} `json:"meta"`
}

func TestDashboardHandlerRequiresClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeDashboardSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard", nil)

	handler.Overview(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDashboardHandlerScopesToOwnCompany(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fake := &fakeDashboardSrv{result: &service.DashboardResult{
		Data:     dto.DashboardResponse{CompanyID: "co-1"},
		CacheHit: true,
	}}
	handler := NewDashboardHandler(fake)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard?companyId=co-other", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{Role: models.RoleLeader, CompanyID: "co-1"})

	handler.Overview(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "co-1", fake.lastQuery.CompanyID)

	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	assert.Equal(t, "co-1", envelope.Data["company_id"])
}

func TestDashboardHandlerAdminOverridesCompany(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fake := &fakeDashboardSrv{result: &service.DashboardResult{Data: dto.DashboardResponse{}}}
	handler := NewDashboardHandler(fake)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard?companyId=co-other&departmentId=dep-1&from=2026-03-01", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{Role: models.RoleAdmin, CompanyID: "co-1"})

	handler.Overview(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "co-other", fake.lastQuery.CompanyID)
	assert.Equal(t, "dep-1", fake.lastQuery.DepartmentID)
	assert.Equal(t, 2026, fake.lastQuery.From.Year())
}

func TestDashboardHandlerRejectsBadWindow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeDashboardSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard?from=next-tuesday", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{Role: models.RoleLeader, CompanyID: "co-1"})

	handler.Overview(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboardHandlerDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(nil)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{Role: models.RoleAdmin, CompanyID: "co-1"})

	handler.Overview(c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
