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

type formRepository interface {
	List(ctx context.Context, filter models.FormFilter) ([]models.Form, int, error)
	FindByID(ctx context.Context, id string) (*models.Form, error)
	Create(ctx context.Context, form *models.Form) error
	Update(ctx context.Context, form *models.Form) error
	Delete(ctx context.Context, id string) error
}

type formTenantRepository interface {
	FindByID(ctx context.Context, id string) (*models.Company, error)
	FindDepartment(ctx context.Context, id string) (*models.Department, error)
}

type formResponseRepository interface {
	ListForCollaboratorInWindow(ctx context.Context, formID, collaboratorID string, from, to time.Time) ([]models.Response, error)
}

// FormService implements the form builder use cases: create, update, list,
// delete and the collaborator-facing assigned list. Every form passes through
// the normalizer on the way in and on the way out, so callers always see
// structurally complete documents.
type FormService struct {
	forms     formRepository
	tenants   formTenantRepository
	responses formResponseRepository
	cache     *CacheService
	bus       *events.Bus
	validator *validator.Validate
	logger    *zap.Logger
	location  *time.Location
}

// NewFormService constructs a FormService.
func NewFormService(forms formRepository, tenants formTenantRepository, responses formResponseRepository, cache *CacheService, bus *events.Bus, validate *validator.Validate, logger *zap.Logger, location *time.Location) *FormService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if location == nil {
		location = time.UTC
	}
	return &FormService{
		forms:     forms,
		tenants:   tenants,
		responses: responses,
		cache:     cache,
		bus:       bus,
		validator: validate,
		logger:    logger,
		location:  location,
	}
}

// List returns forms matching the filter together with pagination info.
func (s *FormService) List(ctx context.Context, filter models.FormFilter) ([]models.Form, *models.Pagination, error) {
	forms, total, err := s.forms.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list forms")
	}
	for i := range forms {
		NormalizeForm(&forms[i])
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return forms, models.NewPagination(page, size, total), nil
}

// Get fetches a single form by id.
func (s *FormService) Get(ctx context.Context, id string) (*models.Form, error) {
	form, err := s.forms.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "form not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch form")
	}
	NormalizeForm(form)
	return form, nil
}

// Create validates the tenancy references, normalizes the document and
// persists it. The enforced authorization list is synced from the builder's
// collaborator selection on every save.
func (s *FormService) Create(ctx context.Context, req dto.SaveFormRequest) (*models.Form, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid form payload")
	}
	if err := s.checkTenancy(ctx, req.CompanyID, req.DepartmentID); err != nil {
		return nil, err
	}

	form := buildForm(req)
	NormalizeForm(form)

	if err := s.forms.Create(ctx, form); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create form")
	}

	s.afterSave(ctx, form)
	return form, nil
}

// Update replaces the mutable parts of an existing form. Company and
// department assignments are immutable after creation.
func (s *FormService) Update(ctx context.Context, id string, req dto.SaveFormRequest) (*models.Form, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid form payload")
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	form := buildForm(req)
	form.ID = existing.ID
	form.CompanyID = existing.CompanyID
	form.DepartmentID = existing.DepartmentID
	form.CreatedAt = existing.CreatedAt
	NormalizeForm(form)

	if err := s.forms.Update(ctx, form); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "form not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update form")
	}

	s.afterSave(ctx, form)
	return form, nil
}

// Delete removes a form. Existing responses stay untouched for history.
func (s *FormService) Delete(ctx context.Context, id string) error {
	form, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.forms.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "form not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete form")
	}
	s.invalidateCaches(ctx, form.CompanyID)
	if s.bus != nil {
		s.bus.Publish(events.Event{Topic: events.TopicFormDeleted, Payload: form})
	}
	return nil
}

// ListAssigned returns the forms a collaborator is authorized for, each
// annotated with today's daily-limit state.
func (s *FormService) ListAssigned(ctx context.Context, collaboratorID string, now time.Time) ([]dto.AssignedForm, error) {
	forms, _, err := s.forms.List(ctx, models.FormFilter{CollaboratorID: collaboratorID, PageSize: 100})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assigned forms")
	}

	local := now.In(s.location)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.location)
	dayEnd := dayStart.AddDate(0, 0, 1)

	assigned := make([]dto.AssignedForm, 0, len(forms))
	for i := range forms {
		NormalizeForm(&forms[i])
		responses, err := s.responses.ListForCollaboratorInWindow(ctx, forms[i].ID, collaboratorID, dayStart, dayEnd)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load today's responses")
		}
		status := EvaluateDailyLimit(forms[i].Settings, responses, now, s.location)
		assigned = append(assigned, dto.AssignedForm{
			Form:           forms[i],
			Pending:        status.Pending,
			UsedToday:      status.UsedToday,
			Limit:          status.Limit,
			LimitReached:   status.Reached,
			RespondedToday: status.RespondedToday,
		})
	}
	return assigned, nil
}

// FieldTypeRegistry returns the builder palette entries.
func (s *FormService) FieldTypeRegistry() []dto.FieldTypeInfo {
	descriptors := FieldTypes()
	out := make([]dto.FieldTypeInfo, 0, len(descriptors))
	for _, desc := range descriptors {
		out = append(out, dto.FieldTypeInfo{
			Type:        desc.Type,
			Label:       desc.Label,
			Icon:        desc.Icon,
			Description: desc.Description,
			Answerable:  desc.Answerable,
			HasOptions:  desc.HasOptions,
			HasTable:    desc.HasTable,
		})
	}
	return out
}

func (s *FormService) checkTenancy(ctx context.Context, companyID, departmentID string) error {
	if _, err := s.tenants.FindByID(ctx, companyID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "company does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify company")
	}
	department, err := s.tenants.FindDepartment(ctx, departmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "department does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify department")
	}
	if department.CompanyID != companyID {
		return appErrors.Clone(appErrors.ErrValidation, "department does not belong to the company")
	}
	return nil
}

func (s *FormService) afterSave(ctx context.Context, form *models.Form) {
	s.invalidateCaches(ctx, form.CompanyID)
	if s.bus != nil {
		s.bus.Publish(events.Event{Topic: events.TopicFormSaved, Payload: form})
	}
}

func (s *FormService) invalidateCaches(ctx context.Context, companyID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("dashboard:%s:*", companyID)); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.String("company_id", companyID), zap.Error(err))
	}
}

func buildForm(req dto.SaveFormRequest) *models.Form {
	settings := DefaultSettings
	if req.Settings != nil {
		settings = *req.Settings
	}
	theme := models.Theme{}
	if req.Theme != nil {
		theme = *req.Theme
	}
	return &models.Form{
		Title:           req.Title,
		Description:     req.Description,
		CompanyID:       req.CompanyID,
		DepartmentID:    req.DepartmentID,
		Fields:          req.Fields,
		Theme:           theme,
		Settings:        settings,
		Automation:      req.Automation,
		Collaborators:   req.Collaborators,
		AuthorizedUsers: append(models.StringList{}, req.Collaborators...),
	}
}
