package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/bravoform/bravoform-api/internal/dto"
	"github.com/bravoform/bravoform-api/internal/models"
	appErrors "github.com/bravoform/bravoform-api/pkg/errors"
	"github.com/bravoform/bravoform-api/pkg/events"
)

type responseRepository interface {
	List(ctx context.Context, filter models.ResponseFilter) ([]models.Response, int, error)
	FindByID(ctx context.Context, id string) (*models.Response, error)
	Create(ctx context.Context, resp *models.Response) error
	UpdateAnswers(ctx context.Context, id string, answers models.AnswerMap) error
	ListForCollaboratorInWindow(ctx context.Context, formID, collaboratorID string, from, to time.Time) ([]models.Response, error)
}

type responseFormLoader interface {
	Get(ctx context.Context, id string) (*models.Form, error)
}

type responseCollaboratorRepository interface {
	FindByID(ctx context.Context, id string) (*models.Collaborator, error)
}

// ResponseService implements submission, listing and the history-edit flow.
// Submission enforces the form's authorization list and daily limit; edits
// replace answers only and leave timestamps and ownership untouched.
type ResponseService struct {
	responses     responseRepository
	forms         responseFormLoader
	collaborators responseCollaboratorRepository
	cache         *CacheService
	bus           *events.Bus
	validator     *validator.Validate
	logger        *zap.Logger
	location      *time.Location
}

// NewResponseService constructs a ResponseService.
func NewResponseService(responses responseRepository, forms responseFormLoader, collaborators responseCollaboratorRepository, cache *CacheService, bus *events.Bus, validate *validator.Validate, logger *zap.Logger, location *time.Location) *ResponseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if location == nil {
		location = time.UTC
	}
	return &ResponseService{
		responses:     responses,
		forms:         forms,
		collaborators: collaborators,
		cache:         cache,
		bus:           bus,
		validator:     validate,
		logger:        logger,
		location:      location,
	}
}

// ResponseEvent is the payload published alongside a created or edited
// response, carrying the form so subscribers need no extra lookups.
type ResponseEvent struct {
	Form     *models.Form
	Response *models.Response
}

// Submit records a new response after checking authorization, the daily limit
// and every answer against the form's field contracts.
func (s *ResponseService) Submit(ctx context.Context, collaboratorID string, req dto.SubmitResponseRequest, now time.Time) (*models.Response, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid response payload")
	}

	form, err := s.forms.Get(ctx, req.FormID)
	if err != nil {
		return nil, err
	}
	if !containsString(form.AuthorizedUsers, collaboratorID) {
		return nil, appErrors.Clone(appErrors.ErrNotAuthorizedForm, "")
	}

	collaborator, err := s.collaborators.FindByID(ctx, collaboratorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "collaborator not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch collaborator")
	}

	if err := s.checkDailyLimit(ctx, form, collaboratorID, now); err != nil {
		return nil, err
	}
	if err := s.validateAnswers(form, req.Answers); err != nil {
		return nil, err
	}

	submitted := now.UTC()
	resp := &models.Response{
		FormID:               form.ID,
		CollaboratorID:       collaborator.ID,
		CollaboratorUsername: collaborator.Username,
		Answers:              req.Answers,
		SubmittedAt:          &submitted,
	}
	if err := s.responses.Create(ctx, resp); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store response")
	}

	s.invalidateDashboards(ctx, form.CompanyID)
	if s.bus != nil {
		s.bus.Publish(events.Event{Topic: events.TopicResponseCreated, Payload: ResponseEvent{Form: form, Response: resp}})
	}
	return resp, nil
}

// EditAnswers replaces the answers of an existing response. Collaborators may
// only edit their own submissions; the effective timestamp never moves, so the
// edit stays attributed to the original day.
func (s *ResponseService) EditAnswers(ctx context.Context, responseID string, actor models.JWTClaims, req dto.EditResponseRequest) (*models.Response, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid response payload")
	}

	resp, err := s.findResponse(ctx, responseID)
	if err != nil {
		return nil, err
	}
	if actor.Role == models.RoleCollaborator && resp.CollaboratorID != actor.CollaboratorID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot edit another collaborator's response")
	}

	form, err := s.forms.Get(ctx, resp.FormID)
	if err != nil {
		return nil, err
	}
	if err := s.validateAnswers(form, req.Answers); err != nil {
		return nil, err
	}

	if err := s.responses.UpdateAnswers(ctx, responseID, req.Answers); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "response not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update response")
	}
	resp.Answers = req.Answers

	s.invalidateDashboards(ctx, form.CompanyID)
	if s.bus != nil {
		s.bus.Publish(events.Event{Topic: events.TopicResponseEdited, Payload: ResponseEvent{Form: form, Response: resp}})
	}
	return resp, nil
}

// List returns responses matching the filter, newest effective time first.
func (s *ResponseService) List(ctx context.Context, filter models.ResponseFilter) ([]models.Response, *models.Pagination, error) {
	responses, total, err := s.responses.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list responses")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 500 {
		size = 50
	}
	return responses, models.NewPagination(page, size, total), nil
}

// FormScope resolves the company owning a form, for tenant checks on
// form-scoped reads.
func (s *ResponseService) FormScope(ctx context.Context, formID string) (string, error) {
	form, err := s.forms.Get(ctx, formID)
	if err != nil {
		return "", err
	}
	return form.CompanyID, nil
}

// Detail returns a response with its answers rendered against the current
// form schema, in field order. Answerable fields with no stored value render
// as empty strings so every row of the form appears.
func (s *ResponseService) Detail(ctx context.Context, responseID string) (*dto.ResponseDetail, error) {
	resp, err := s.findResponse(ctx, responseID)
	if err != nil {
		return nil, err
	}
	form, err := s.forms.Get(ctx, resp.FormID)
	if err != nil {
		return nil, err
	}
	return &dto.ResponseDetail{Response: *resp, Rendered: RenderAnswers(form, resp.Answers)}, nil
}

// RenderAnswers resolves an answer map to display rows in form field order.
// Keys stored under field ids the schema no longer has are skipped.
func RenderAnswers(form *models.Form, answers models.AnswerMap) []dto.RenderedAnswer {
	rendered := make([]dto.RenderedAnswer, 0, len(form.Fields))
	for _, field := range form.Fields {
		desc, known := DescriptorFor(field.Type)
		if !known || !desc.Answerable {
			continue
		}
		rendered = append(rendered, dto.RenderedAnswer{
			FieldID: field.ID,
			Label:   field.Label,
			Value:   DisplayAnswer(field, answers[field.ID]),
		})
	}
	return rendered
}

func (s *ResponseService) findResponse(ctx context.Context, id string) (*models.Response, error) {
	resp, err := s.responses.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "response not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch response")
	}
	return resp, nil
}

func (s *ResponseService) checkDailyLimit(ctx context.Context, form *models.Form, collaboratorID string, now time.Time) error {
	local := now.In(s.location)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.location)
	dayEnd := dayStart.AddDate(0, 0, 1)

	today, err := s.responses.ListForCollaboratorInWindow(ctx, form.ID, collaboratorID, dayStart, dayEnd)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load today's responses")
	}
	status := EvaluateDailyLimit(form.Settings, today, now, s.location)
	if status.Limited && status.Reached {
		return appErrors.Clone(appErrors.ErrDailyLimitReached, "")
	}
	return nil
}

func (s *ResponseService) validateAnswers(form *models.Form, answers models.AnswerMap) error {
	fields := make(map[string]models.Field, len(form.Fields))
	for _, field := range form.Fields {
		fields[field.ID] = field
	}
	for fieldID := range answers {
		field, ok := fields[fieldID]
		if !ok {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("answer references unknown field %q", fieldID))
		}
		if err := ValidateAnswer(field, answers[fieldID]); err != nil {
			return err
		}
	}
	for _, field := range form.Fields {
		if field.Required && !Answered(field, answers[field.ID]) {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("field %q is required", field.Label))
		}
	}
	return nil
}

func (s *ResponseService) invalidateDashboards(ctx context.Context, companyID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("dashboard:%s:*", companyID)); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.String("company_id", companyID), zap.Error(err))
	}
}
