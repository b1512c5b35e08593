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

type fakeResponseRepo struct {
	stored  []models.Response
	today   []models.Response
	byID    map[string]*models.Response
	updated map[string]models.AnswerMap
}

func (f *fakeResponseRepo) List(context.Context, models.ResponseFilter) ([]models.Response, int, error) {
	return f.stored, len(f.stored), nil
}

func (f *fakeResponseRepo) FindByID(_ context.Context, id string) (*models.Response, error) {
	if resp, ok := f.byID[id]; ok {
		return resp, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeResponseRepo) Create(_ context.Context, resp *models.Response) error {
	resp.ID = "resp-1"
	f.stored = append(f.stored, *resp)
	return nil
}

func (f *fakeResponseRepo) UpdateAnswers(_ context.Context, id string, answers models.AnswerMap) error {
	if f.updated == nil {
		f.updated = make(map[string]models.AnswerMap)
	}
	f.updated[id] = answers
	return nil
}

func (f *fakeResponseRepo) ListForCollaboratorInWindow(context.Context, string, string, time.Time, time.Time) ([]models.Response, error) {
	return f.today, nil
}

type fakeFormLoader struct {
	form *models.Form
}

func (f *fakeFormLoader) Get(context.Context, string) (*models.Form, error) {
	if f.form == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "form not found")
	}
	return f.form, nil
}

type fakeCollaboratorRepo struct {
	collaborator *models.Collaborator
}

func (f *fakeCollaboratorRepo) FindByID(context.Context, string) (*models.Collaborator, error) {
	return f.collaborator, nil
}

func submitFixture(settings models.Settings) (*ResponseService, *fakeResponseRepo, *models.Form) {
	form := &models.Form{
		ID:        "form-1",
		Title:     "Visit report",
		CompanyID: "co-1",
		Fields: models.FieldList{
			{ID: "name", Type: models.FieldText, Label: "Name", Required: true},
		},
		Settings:        settings,
		AuthorizedUsers: models.StringList{"collab-1"},
	}
	repo := &fakeResponseRepo{}
	svc := NewResponseService(
		repo,
		&fakeFormLoader{form: form},
		&fakeCollaboratorRepo{collaborator: &models.Collaborator{ID: "collab-1", Username: "ana"}},
		nil, nil, nil, nil, time.UTC,
	)
	return svc, repo, form
}

func TestSubmitStoresResponse(t *testing.T) {
	svc, repo, _ := submitFixture(models.Settings{})
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

	resp, err := svc.Submit(context.Background(), "collab-1", dto.SubmitResponseRequest{
		FormID:  "form-1",
		Answers: models.AnswerMap{"name": "Ana"},
	}, now)
	require.NoError(t, err)
	assert.Equal(t, "resp-1", resp.ID)
	assert.Equal(t, "ana", resp.CollaboratorUsername)
	require.NotNil(t, resp.SubmittedAt)
	assert.Len(t, repo.stored, 1)
}

func TestSubmitRejectsMalformedOptionalAnswer(t *testing.T) {
	svc, repo, form := submitFixture(models.Settings{})
	form.Fields = append(form.Fields,
		models.Field{ID: "visited", Type: models.FieldDate, Label: "Visited"},
		models.Field{ID: "photos", Type: models.FieldAttachment, Label: "Photos"},
	)
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

	_, err := svc.Submit(context.Background(), "collab-1", dto.SubmitResponseRequest{
		FormID:  "form-1",
		Answers: models.AnswerMap{"name": "Ana", "visited": 20260301},
	}, now)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Submit(context.Background(), "collab-1", dto.SubmitResponseRequest{
		FormID:  "form-1",
		Answers: models.AnswerMap{"name": "Ana", "photos": []interface{}{"a.jpg"}},
	}, now)
	require.Error(t, err)
	assert.Empty(t, repo.stored)
}

func TestSubmitRejectsUnauthorizedCollaborator(t *testing.T) {
	svc, _, _ := submitFixture(models.Settings{})

	_, err := svc.Submit(context.Background(), "stranger", dto.SubmitResponseRequest{
		FormID:  "form-1",
		Answers: models.AnswerMap{"name": "x"},
	}, time.Now())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotAuthorizedForm.Code, appErrors.FromError(err).Code)
}

func TestSubmitRejectsWhenDailyLimitReached(t *testing.T) {
	svc, repo, _ := submitFixture(models.Settings{DailyLimitEnabled: true, DailyLimitCount: 1})
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	earlier := now.Add(-time.Hour)
	repo.today = []models.Response{{CreatedAt: earlier, SubmittedAt: &earlier}}

	_, err := svc.Submit(context.Background(), "collab-1", dto.SubmitResponseRequest{
		FormID:  "form-1",
		Answers: models.AnswerMap{"name": "x"},
	}, now)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDailyLimitReached.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.stored)
}

func TestSubmitRejectsMissingRequiredAnswer(t *testing.T) {
	svc, repo, _ := submitFixture(models.Settings{})

	_, err := svc.Submit(context.Background(), "collab-1", dto.SubmitResponseRequest{
		FormID:  "form-1",
		Answers: models.AnswerMap{"name": ""},
	}, time.Now())
	require.Error(t, err)
	assert.Empty(t, repo.stored)
}

func TestSubmitRejectsUnknownFieldKey(t *testing.T) {
	svc, _, _ := submitFixture(models.Settings{})

	_, err := svc.Submit(context.Background(), "collab-1", dto.SubmitResponseRequest{
		FormID:  "form-1",
		Answers: models.AnswerMap{"name": "Ana", "ghost": "x"},
	}, time.Now())
	require.Error(t, err)
}

func TestSubmitPublishesEvent(t *testing.T) {
	form := &models.Form{
		ID:              "form-1",
		CompanyID:       "co-1",
		Fields:          models.FieldList{{ID: "name", Type: models.FieldText, Label: "Name"}},
		AuthorizedUsers: models.StringList{"collab-1"},
	}
	bus := events.NewBus(nil)
	sub := bus.Subscribe(events.TopicResponseCreated)
	defer sub.Close()

	svc := NewResponseService(
		&fakeResponseRepo{},
		&fakeFormLoader{form: form},
		&fakeCollaboratorRepo{collaborator: &models.Collaborator{ID: "collab-1", Username: "ana"}},
		nil, bus, nil, nil, time.UTC,
	)

	_, err := svc.Submit(context.Background(), "collab-1", dto.SubmitResponseRequest{
		FormID:  "form-1",
		Answers: models.AnswerMap{"name": "Ana"},
	}, time.Now())
	require.NoError(t, err)

	select {
	case event := <-sub.C():
		payload, ok := event.Payload.(ResponseEvent)
		require.True(t, ok)
		assert.Equal(t, "form-1", payload.Form.ID)
		assert.Equal(t, "resp-1", payload.Response.ID)
	default:
		t.Fatal("expected a published event")
	}
}

func TestEditAnswersOwnershipEnforced(t *testing.T) {
	svc, repo, form := submitFixture(models.Settings{})
	repo.byID = map[string]*models.Response{
		"resp-9": {ID: "resp-9", FormID: form.ID, CollaboratorID: "collab-1", Answers: models.AnswerMap{"name": "old"}},
	}

	_, err := svc.EditAnswers(context.Background(), "resp-9",
		models.JWTClaims{Role: models.RoleCollaborator, CollaboratorID: "collab-2"},
		dto.EditResponseRequest{Answers: models.AnswerMap{"name": "new"}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestEditAnswersReplacesAnswersOnly(t *testing.T) {
	svc, repo, form := submitFixture(models.Settings{})
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	repo.byID = map[string]*models.Response{
		"resp-9": {ID: "resp-9", FormID: form.ID, CollaboratorID: "collab-1", CreatedAt: created, Answers: models.AnswerMap{"name": "old"}},
	}

	resp, err := svc.EditAnswers(context.Background(), "resp-9",
		models.JWTClaims{Role: models.RoleLeader},
		dto.EditResponseRequest{Answers: models.AnswerMap{"name": "new"}})
	require.NoError(t, err)
	assert.Equal(t, "new", resp.Answers["name"])
	assert.Equal(t, created, resp.CreatedAt)
	assert.Equal(t, models.AnswerMap{"name": "new"}, repo.updated["resp-9"])
}

func TestRenderAnswersSkipsUnknownAndHeaderFields(t *testing.T) {
	form := &models.Form{
		Fields: models.FieldList{
			{ID: "h", Type: models.FieldHeader, Label: "Section"},
			{ID: "name", Type: models.FieldText, Label: "Name"},
			{ID: "date", Type: models.FieldDate, Label: "Visited"},
		},
	}
	rendered := RenderAnswers(form, models.AnswerMap{
		"name":  "Ana",
		"ghost": "legacy",
	})
	require.Len(t, rendered, 2)
	assert.Equal(t, "Name", rendered[0].Label)
	assert.Equal(t, "Ana", rendered[0].Value)
	assert.Equal(t, "", rendered[1].Value)
}
