package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bravoform/bravoform-api/internal/dto"
	"github.com/bravoform/bravoform-api/internal/models"
	appErrors "github.com/bravoform/bravoform-api/pkg/errors"
	"github.com/bravoform/bravoform-api/pkg/events"
)

type fakeFormRepo struct {
	forms   map[string]*models.Form
	list    []models.Form
	created *models.Form
	updated *models.Form
	deleted []string
}

func (f *fakeFormRepo) List(context.Context, models.FormFilter) ([]models.Form, int, error) {
	return f.list, len(f.list), nil
}

func (f *fakeFormRepo) FindByID(_ context.Context, id string) (*models.Form, error) {
	if form, ok := f.forms[id]; ok {
		copied := *form
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeFormRepo) Create(_ context.Context, form *models.Form) error {
	form.ID = "form-1"
	f.created = form
	return nil
}

func (f *fakeFormRepo) Update(_ context.Context, form *models.Form) error {
	f.updated = form
	return nil
}

func (f *fakeFormRepo) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeTenantRepo struct {
	company    *models.Company
	department *models.Department
}

func (f *fakeTenantRepo) FindByID(context.Context, string) (*models.Company, error) {
	if f.company == nil {
		return nil, sql.ErrNoRows
	}
	return f.company, nil
}

func (f *fakeTenantRepo) FindDepartment(context.Context, string) (*models.Department, error) {
	if f.department == nil {
		return nil, sql.ErrNoRows
	}
	return f.department, nil
}

type fakeWindowRepo struct {
	responses []models.Response
}

func (f *fakeWindowRepo) ListForCollaboratorInWindow(context.Context, string, string, time.Time, time.Time) ([]models.Response, error) {
	return f.responses, nil
}

func formFixture() (*FormService, *fakeFormRepo) {
	repo := &fakeFormRepo{forms: map[string]*models.Form{}}
	tenants := &fakeTenantRepo{
		company:    &models.Company{ID: "co-1", Name: "Acme"},
		department: &models.Department{ID: "dep-1", CompanyID: "co-1", Name: "Sales"},
	}
	svc := NewFormService(repo, tenants, &fakeWindowRepo{}, nil, nil, nil, nil, time.UTC)
	return svc, repo
}

func TestFormCreateNormalizesAndSyncsAuthorization(t *testing.T) {
	svc, repo := formFixture()

	form, err := svc.Create(context.Background(), dto.SaveFormRequest{
		Title:        "Visit report",
		CompanyID:    "co-1",
		DepartmentID: "dep-1",
		Fields: []models.Field{
			{Type: models.FieldSingleChoice, Label: "Outcome", Options: []string{"ok"}},
		},
		Collaborators: []string{"collab-1", "collab-2"},
	})
	require.NoError(t, err)
	require.NotNil(t, repo.created)

	assert.NotEmpty(t, form.Fields[0].ID)
	assert.Equal(t, models.DisplayRadio, form.Fields[0].DisplayAs)
	assert.Equal(t, DefaultTheme, form.Theme)
	assert.True(t, form.Settings.AllowSave)
	assert.Equal(t, models.StringList{"collab-1", "collab-2"}, form.AuthorizedUsers)
}

func TestFormCreateRejectsUnknownDepartment(t *testing.T) {
	repo := &fakeFormRepo{forms: map[string]*models.Form{}}
	tenants := &fakeTenantRepo{company: &models.Company{ID: "co-1"}}
	svc := NewFormService(repo, tenants, &fakeWindowRepo{}, nil, nil, nil, nil, time.UTC)

	_, err := svc.Create(context.Background(), dto.SaveFormRequest{
		Title: "x", CompanyID: "co-1", DepartmentID: "ghost",
	})
	require.Error(t, err)
	assert.Nil(t, repo.created)
}

func TestFormCreateRejectsForeignDepartment(t *testing.T) {
	repo := &fakeFormRepo{forms: map[string]*models.Form{}}
	tenants := &fakeTenantRepo{
		company:    &models.Company{ID: "co-1"},
		department: &models.Department{ID: "dep-1", CompanyID: "co-other"},
	}
	svc := NewFormService(repo, tenants, &fakeWindowRepo{}, nil, nil, nil, nil, time.UTC)

	_, err := svc.Create(context.Background(), dto.SaveFormRequest{
		Title: "x", CompanyID: "co-1", DepartmentID: "dep-1",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestFormUpdateKeepsTenancy(t *testing.T) {
	svc, repo := formFixture()
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.forms["form-1"] = &models.Form{
		ID: "form-1", Title: "Old", CompanyID: "co-1", DepartmentID: "dep-1", CreatedAt: created,
	}

	form, err := svc.Update(context.Background(), "form-1", dto.SaveFormRequest{
		Title:        "New title",
		CompanyID:    "co-other",
		DepartmentID: "dep-other",
	})
	require.NoError(t, err)
	assert.Equal(t, "co-1", form.CompanyID)
	assert.Equal(t, "dep-1", form.DepartmentID)
	assert.Equal(t, created, form.CreatedAt)
	assert.Equal(t, "New title", form.Title)
}

func TestFormDeletePublishesEvent(t *testing.T) {
	repo := &fakeFormRepo{forms: map[string]*models.Form{
		"form-1": {ID: "form-1", CompanyID: "co-1"},
	}}
	tenants := &fakeTenantRepo{}
	bus := events.NewBus(nil)
	sub := bus.Subscribe(events.TopicFormDeleted)
	defer sub.Close()

	svc := NewFormService(repo, tenants, &fakeWindowRepo{}, nil, bus, nil, nil, time.UTC)
	require.NoError(t, svc.Delete(context.Background(), "form-1"))
	assert.Equal(t, []string{"form-1"}, repo.deleted)

	select {
	case event := <-sub.C():
		assert.Equal(t, events.TopicFormDeleted, event.Topic)
	default:
		t.Fatal("expected a published event")
	}
}

func TestListAssignedAnnotatesLimitState(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	earlier := now.Add(-time.Hour)
	repo := &fakeFormRepo{list: []models.Form{
		{ID: "form-1", Settings: models.Settings{DailyLimitEnabled: true, DailyLimitCount: 1}},
	}}
	windows := &fakeWindowRepo{responses: []models.Response{{CreatedAt: earlier, SubmittedAt: &earlier}}}
	svc := NewFormService(repo, &fakeTenantRepo{}, windows, nil, nil, nil, nil, time.UTC)

	assigned, err := svc.ListAssigned(context.Background(), "collab-1", now)
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, 1, assigned[0].UsedToday)
	assert.True(t, assigned[0].LimitReached)
	assert.False(t, assigned[0].Pending)
	assert.True(t, assigned[0].RespondedToday)
}

func TestFieldTypeRegistryExposesPalette(t *testing.T) {
	svc, _ := formFixture()
	infos := svc.FieldTypeRegistry()
	require.Len(t, infos, 8)

	byType := make(map[models.FieldType]dto.FieldTypeInfo)
	for _, info := range infos {
		byType[info.Type] = info
	}
	assert.False(t, byType[models.FieldHeader].Answerable)
	assert.True(t, byType[models.FieldTable].HasTable)
	assert.True(t, byType[models.FieldCheckboxGroup].HasOptions)
}
