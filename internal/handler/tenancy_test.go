package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bravoform/bravoform-api/internal/middleware"
	"github.com/bravoform/bravoform-api/internal/models"
	"github.com/bravoform/bravoform-api/internal/service"
)

type stubFormRepo struct {
	form *models.Form
}

func (s *stubFormRepo) List(context.Context, models.FormFilter) ([]models.Form, int, error) {
	return nil, 0, nil
}

func (s *stubFormRepo) FindByID(_ context.Context, id string) (*models.Form, error) {
	if s.form == nil || s.form.ID != id {
		return nil, nil
	}
	copied := *s.form
	return &copied, nil
}

func (s *stubFormRepo) Create(context.Context, *models.Form) error { return nil }
func (s *stubFormRepo) Update(context.Context, *models.Form) error { return nil }
func (s *stubFormRepo) Delete(context.Context, string) error       { return nil }

type stubTenantRepo struct{}

func (stubTenantRepo) FindByID(context.Context, string) (*models.Company, error) {
	return &models.Company{}, nil
}

func (stubTenantRepo) FindDepartment(context.Context, string) (*models.Department, error) {
	return &models.Department{}, nil
}

type stubWindowRepo struct{}

func (stubWindowRepo) ListForCollaboratorInWindow(context.Context, string, string, time.Time, time.Time) ([]models.Response, error) {
	return nil, nil
}

type stubResponseRepo struct {
	listed *models.ResponseFilter
}

func (s *stubResponseRepo) List(_ context.Context, filter models.ResponseFilter) ([]models.Response, int, error) {
	s.listed = &filter
	return []models.Response{}, 0, nil
}

func (s *stubResponseRepo) FindByID(context.Context, string) (*models.Response, error) {
	return nil, nil
}

func (s *stubResponseRepo) Create(context.Context, *models.Response) error { return nil }

func (s *stubResponseRepo) UpdateAnswers(context.Context, string, models.AnswerMap) error {
	return nil
}

func (s *stubResponseRepo) ListForCollaboratorInWindow(context.Context, string, string, time.Time, time.Time) ([]models.Response, error) {
	return nil, nil
}

type stubFormLoader struct {
	form *models.Form
}

func (s *stubFormLoader) Get(context.Context, string) (*models.Form, error) {
	copied := *s.form
	return &copied, nil
}

type stubCollaboratorRepo struct{}

func (stubCollaboratorRepo) FindByID(context.Context, string) (*models.Collaborator, error) {
	return &models.Collaborator{}, nil
}

func tenancyForm() *models.Form {
	return &models.Form{
		ID:        "form-2",
		CompanyID: "co-2",
		Title:     "Visit report",
		Fields:    []models.Field{{ID: "name", Type: models.FieldText, Label: "Name"}},
	}
}

func authedContext(rec *httptest.ResponseRecorder, target string, claims *models.JWTClaims) *gin.Context {
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c
}

func TestFormGetHiddenOutsideCompany(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := service.NewFormService(&stubFormRepo{form: tenancyForm()}, stubTenantRepo{}, stubWindowRepo{}, nil, nil, nil, nil, nil)
	handler := NewFormHandler(svc)

	rec := httptest.NewRecorder()
	c := authedContext(rec, "/forms/form-2", &models.JWTClaims{Role: models.RoleLeader, CompanyID: "co-1"})
	c.Params = gin.Params{{Key: "id", Value: "form-2"}}

	handler.Get(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFormGetVisibleToOwnCompanyAndAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := service.NewFormService(&stubFormRepo{form: tenancyForm()}, stubTenantRepo{}, stubWindowRepo{}, nil, nil, nil, nil, nil)
	handler := NewFormHandler(svc)

	for _, claims := range []*models.JWTClaims{
		{Role: models.RoleLeader, CompanyID: "co-2"},
		{Role: models.RoleAdmin, CompanyID: "co-1"},
	} {
		rec := httptest.NewRecorder()
		c := authedContext(rec, "/forms/form-2", claims)
		c.Params = gin.Params{{Key: "id", Value: "form-2"}}

		handler.Get(c)

		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestResponseListLeaderRequiresOwnForm(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &stubResponseRepo{}
	svc := service.NewResponseService(repo, &stubFormLoader{form: tenancyForm()}, stubCollaboratorRepo{}, nil, nil, nil, nil, nil)
	handler := NewResponseHandler(svc, nil)

	rec := httptest.NewRecorder()
	c := authedContext(rec, "/responses", &models.JWTClaims{Role: models.RoleLeader, CompanyID: "co-1"})
	handler.List(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	c = authedContext(rec, "/responses?formId=form-2", &models.JWTClaims{Role: models.RoleLeader, CompanyID: "co-1"})
	handler.List(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Nil(t, repo.listed)

	rec = httptest.NewRecorder()
	c = authedContext(rec, "/responses?formId=form-2", &models.JWTClaims{Role: models.RoleLeader, CompanyID: "co-2"})
	handler.List(c)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, repo.listed)
	assert.Equal(t, "form-2", repo.listed.FormID)
}
