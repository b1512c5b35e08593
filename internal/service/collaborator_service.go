package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/bravoform/bravoform-api/internal/dto"
	"github.com/bravoform/bravoform-api/internal/models"
	appErrors "github.com/bravoform/bravoform-api/pkg/errors"
)

type collaboratorRepository interface {
	List(ctx context.Context, filter models.CollaboratorFilter) ([]models.Collaborator, int, error)
	FindByID(ctx context.Context, id string) (*models.Collaborator, error)
	ExistsByUsername(ctx context.Context, username string, excludeID string) (bool, error)
	Create(ctx context.Context, collaborator *models.Collaborator) error
	Update(ctx context.Context, collaborator *models.Collaborator) error
	Delete(ctx context.Context, id string) error
}

type collaboratorDepartmentRepository interface {
	FindDepartment(ctx context.Context, id string) (*models.Department, error)
}

// CollaboratorService manages the people who fill forms. Usernames are unique
// across the installation; deleting a collaborator leaves their responses in
// place.
type CollaboratorService struct {
	repo        collaboratorRepository
	departments collaboratorDepartmentRepository
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewCollaboratorService constructs a CollaboratorService.
func NewCollaboratorService(repo collaboratorRepository, departments collaboratorDepartmentRepository, validate *validator.Validate, logger *zap.Logger) *CollaboratorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CollaboratorService{repo: repo, departments: departments, validator: validate, logger: logger}
}

// List returns collaborators matching the filter with pagination info.
func (s *CollaboratorService) List(ctx context.Context, filter models.CollaboratorFilter) ([]models.Collaborator, *models.Pagination, error) {
	collaborators, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list collaborators")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return collaborators, models.NewPagination(page, size, total), nil
}

// Get fetches a single collaborator.
func (s *CollaboratorService) Get(ctx context.Context, id string) (*models.Collaborator, error) {
	collaborator, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "collaborator not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch collaborator")
	}
	return collaborator, nil
}

// Create registers a collaborator after checking the department and the
// username uniqueness.
func (s *CollaboratorService) Create(ctx context.Context, req dto.SaveCollaboratorRequest) (*models.Collaborator, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid collaborator payload")
	}
	if err := s.checkDepartment(ctx, req.DepartmentID); err != nil {
		return nil, err
	}
	if err := s.checkUsername(ctx, req.Username, ""); err != nil {
		return nil, err
	}

	collaborator := &models.Collaborator{
		DepartmentID: req.DepartmentID,
		Username:     req.Username,
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		Active:       true,
	}
	if req.Active != nil {
		collaborator.Active = *req.Active
	}
	if err := s.repo.Create(ctx, collaborator); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create collaborator")
	}
	return collaborator, nil
}

// Update modifies an existing collaborator.
func (s *CollaboratorService) Update(ctx context.Context, id string, req dto.SaveCollaboratorRequest) (*models.Collaborator, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid collaborator payload")
	}
	collaborator, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkDepartment(ctx, req.DepartmentID); err != nil {
		return nil, err
	}
	if err := s.checkUsername(ctx, req.Username, id); err != nil {
		return nil, err
	}

	collaborator.DepartmentID = req.DepartmentID
	collaborator.Username = req.Username
	collaborator.FullName = req.FullName
	collaborator.Email = req.Email
	collaborator.Phone = req.Phone
	if req.Active != nil {
		collaborator.Active = *req.Active
	}
	if err := s.repo.Update(ctx, collaborator); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "collaborator not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update collaborator")
	}
	return collaborator, nil
}

// Delete removes a collaborator. Their past responses stay attributed by the
// stored username snapshot.
func (s *CollaboratorService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "collaborator not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete collaborator")
	}
	return nil
}

func (s *CollaboratorService) checkDepartment(ctx context.Context, departmentID string) error {
	if _, err := s.departments.FindDepartment(ctx, departmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "department does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify department")
	}
	return nil
}

func (s *CollaboratorService) checkUsername(ctx context.Context, username, excludeID string) error {
	taken, err := s.repo.ExistsByUsername(ctx, username, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify username")
	}
	if taken {
		return appErrors.Clone(appErrors.ErrConflict, "username is already taken")
	}
	return nil
}
