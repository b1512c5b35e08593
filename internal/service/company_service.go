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

type companyRepository interface {
	List(ctx context.Context) ([]models.Company, error)
	FindByID(ctx context.Context, id string) (*models.Company, error)
	Create(ctx context.Context, company *models.Company) error
	Update(ctx context.Context, company *models.Company) error
	Delete(ctx context.Context, id string) error
	ListDepartments(ctx context.Context, companyID string) ([]models.Department, error)
	FindDepartment(ctx context.Context, id string) (*models.Department, error)
	CreateDepartment(ctx context.Context, department *models.Department) error
	UpdateDepartment(ctx context.Context, department *models.Department) error
	DeleteDepartment(ctx context.Context, id string) error
}

// CompanyService implements tenant administration: companies and their
// departments. Deleting either never cascades into forms or responses.
type CompanyService struct {
	repo      companyRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCompanyService constructs a CompanyService.
func NewCompanyService(repo companyRepository, validate *validator.Validate, logger *zap.Logger) *CompanyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CompanyService{repo: repo, validator: validate, logger: logger}
}

// List returns every company.
func (s *CompanyService) List(ctx context.Context) ([]models.Company, error) {
	companies, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list companies")
	}
	return companies, nil
}

// Get returns one company with its departments.
func (s *CompanyService) Get(ctx context.Context, id string) (*dto.CompanyDetail, error) {
	company, err := s.findCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	departments, err := s.repo.ListDepartments(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list departments")
	}
	return &dto.CompanyDetail{Company: *company, Departments: departments}, nil
}

// Create registers a new company.
func (s *CompanyService) Create(ctx context.Context, req dto.SaveCompanyRequest) (*models.Company, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid company payload")
	}
	company := &models.Company{Name: req.Name, Active: true}
	if req.Active != nil {
		company.Active = *req.Active
	}
	if err := s.repo.Create(ctx, company); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create company")
	}
	return company, nil
}

// Update renames or toggles a company.
func (s *CompanyService) Update(ctx context.Context, id string, req dto.SaveCompanyRequest) (*models.Company, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid company payload")
	}
	company, err := s.findCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	company.Name = req.Name
	if req.Active != nil {
		company.Active = *req.Active
	}
	if err := s.repo.Update(ctx, company); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "company not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update company")
	}
	return company, nil
}

// Delete removes a company.
func (s *CompanyService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "company not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete company")
	}
	return nil
}

// ListDepartments returns the departments of a company.
func (s *CompanyService) ListDepartments(ctx context.Context, companyID string) ([]models.Department, error) {
	if _, err := s.findCompany(ctx, companyID); err != nil {
		return nil, err
	}
	departments, err := s.repo.ListDepartments(ctx, companyID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list departments")
	}
	return departments, nil
}

// CreateDepartment adds a department to a company.
func (s *CompanyService) CreateDepartment(ctx context.Context, companyID string, req dto.SaveDepartmentRequest) (*models.Department, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid department payload")
	}
	if _, err := s.findCompany(ctx, companyID); err != nil {
		return nil, err
	}
	department := &models.Department{CompanyID: companyID, Name: req.Name}
	if err := s.repo.CreateDepartment(ctx, department); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create department")
	}
	return department, nil
}

// UpdateDepartment renames a department.
func (s *CompanyService) UpdateDepartment(ctx context.Context, companyID, departmentID string, req dto.SaveDepartmentRequest) (*models.Department, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid department payload")
	}
	department, err := s.findDepartment(ctx, companyID, departmentID)
	if err != nil {
		return nil, err
	}
	department.Name = req.Name
	if err := s.repo.UpdateDepartment(ctx, department); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "department not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update department")
	}
	return department, nil
}

// DeleteDepartment removes a department.
func (s *CompanyService) DeleteDepartment(ctx context.Context, companyID, departmentID string) error {
	if _, err := s.findDepartment(ctx, companyID, departmentID); err != nil {
		return err
	}
	if err := s.repo.DeleteDepartment(ctx, departmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "department not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete department")
	}
	return nil
}

func (s *CompanyService) findCompany(ctx context.Context, id string) (*models.Company, error) {
	company, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "company not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch company")
	}
	return company, nil
}

func (s *CompanyService) findDepartment(ctx context.Context, companyID, departmentID string) (*models.Department, error) {
	department, err := s.repo.FindDepartment(ctx, departmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "department not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch department")
	}
	if department.CompanyID != companyID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "department not found")
	}
	return department, nil
}
