package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bravoform/bravoform-api/internal/models"
	appErrors "github.com/bravoform/bravoform-api/pkg/errors"
)

type fakeDashboardForms struct {
	forms []models.Form
	calls int
}

func (f *fakeDashboardForms) ListByCompany(context.Context, string) ([]models.Form, error) {
	f.calls++
	return f.forms, nil
}

type fakeDashboardResponses struct {
	responses   []models.Response
	lastFormIDs []string
}

func (f *fakeDashboardResponses) ListByForms(_ context.Context, formIDs []string) ([]models.Response, error) {
	f.lastFormIDs = formIDs
	return f.responses, nil
}

func TestDashboardBuildRequiresCompany(t *testing.T) {
	svc := NewDashboardService(&fakeDashboardForms{}, &fakeDashboardResponses{}, nil, 0, nil, time.UTC)

	_, err := svc.Build(context.Background(), DashboardQuery{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestDashboardBuildScopesResponsesToFilteredForms(t *testing.T) {
	submitted := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	forms := &fakeDashboardForms{forms: []models.Form{
		{ID: "form-1", Title: "Sales visit", DepartmentID: "dep-1"},
		{ID: "form-2", Title: "Stock check", DepartmentID: "dep-2"},
	}}
	responses := &fakeDashboardResponses{responses: []models.Response{
		{ID: "resp-1", FormID: "form-1", CollaboratorID: "collab-1", CollaboratorUsername: "ana", CreatedAt: submitted, SubmittedAt: &submitted},
	}}
	svc := NewDashboardService(forms, responses, nil, 0, nil, time.UTC)

	result, err := svc.Build(context.Background(), DashboardQuery{CompanyID: "co-1", DepartmentID: "dep-1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"form-1"}, responses.lastFormIDs)
	assert.False(t, result.CacheHit)
	assert.Equal(t, 1, result.Data.Overview.TotalResponses)
	assert.Equal(t, 1, result.Data.Overview.TotalForms)
	require.Len(t, result.Data.ByForm, 1)
	assert.Equal(t, "Sales visit", result.Data.ByForm[0].Label)
}

func TestDashboardCacheKeyEncodesScopeAndWindow(t *testing.T) {
	svc := NewDashboardService(&fakeDashboardForms{}, &fakeDashboardResponses{}, nil, 0, nil, time.UTC)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	key := svc.cacheKey(DashboardQuery{CompanyID: "co-1", DepartmentID: "dep-1", FormID: "form-1", From: from})
	assert.Equal(t, "dashboard:co-1:dep-1:form-1:2026-03-01T00:00:00Z:", key)

	open := svc.cacheKey(DashboardQuery{CompanyID: "co-1"})
	assert.Equal(t, "dashboard:co-1::::", open)
}
