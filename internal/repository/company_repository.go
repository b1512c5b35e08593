package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bravoform/bravoform-api/internal/models"
)

// CompanyRepository manages persistence for companies and their departments.
type CompanyRepository struct {
	db *sqlx.DB
}

// NewCompanyRepository constructs a CompanyRepository.
func NewCompanyRepository(db *sqlx.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

// List returns all companies ordered by name.
func (r *CompanyRepository) List(ctx context.Context) ([]models.Company, error) {
	var companies []models.Company
	const query = `SELECT id, name, active, created_at, updated_at FROM companies ORDER BY name`
	if err := r.db.SelectContext(ctx, &companies, query); err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	return companies, nil
}

// FindByID fetches a company by id.
func (r *CompanyRepository) FindByID(ctx context.Context, id string) (*models.Company, error) {
	var company models.Company
	const query = `SELECT id, name, active, created_at, updated_at FROM companies WHERE id = $1`
	if err := r.db.GetContext(ctx, &company, query, id); err != nil {
		return nil, err
	}
	return &company, nil
}

// Create inserts a new company.
func (r *CompanyRepository) Create(ctx context.Context, company *models.Company) error {
	if company.ID == "" {
		company.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if company.CreatedAt.IsZero() {
		company.CreatedAt = now
	}
	company.UpdatedAt = now
	const query = `INSERT INTO companies (id, name, active, created_at, updated_at)
        VALUES (:id, :name, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, company); err != nil {
		return fmt.Errorf("create company: %w", err)
	}
	return nil
}

// Update modifies an existing company.
func (r *CompanyRepository) Update(ctx context.Context, company *models.Company) error {
	company.UpdatedAt = time.Now().UTC()
	const query = `UPDATE companies SET name = :name, active = :active, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, company)
	if err != nil {
		return fmt.Errorf("update company: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a company.
func (r *CompanyRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM companies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete company: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListDepartments returns the departments owned by a company.
func (r *CompanyRepository) ListDepartments(ctx context.Context, companyID string) ([]models.Department, error) {
	var departments []models.Department
	const query = `SELECT id, company_id, name, created_at, updated_at FROM departments WHERE company_id = $1 ORDER BY name`
	if err := r.db.SelectContext(ctx, &departments, query, companyID); err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return departments, nil
}

// FindDepartment fetches one department by id.
func (r *CompanyRepository) FindDepartment(ctx context.Context, id string) (*models.Department, error) {
	var department models.Department
	const query = `SELECT id, company_id, name, created_at, updated_at FROM departments WHERE id = $1`
	if err := r.db.GetContext(ctx, &department, query, id); err != nil {
		return nil, err
	}
	return &department, nil
}

// CreateDepartment inserts a department under a company.
func (r *CompanyRepository) CreateDepartment(ctx context.Context, department *models.Department) error {
	if department.ID == "" {
		department.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if department.CreatedAt.IsZero() {
		department.CreatedAt = now
	}
	department.UpdatedAt = now
	const query = `INSERT INTO departments (id, company_id, name, created_at, updated_at)
        VALUES (:id, :company_id, :name, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, department); err != nil {
		return fmt.Errorf("create department: %w", err)
	}
	return nil
}

// UpdateDepartment renames a department.
func (r *CompanyRepository) UpdateDepartment(ctx context.Context, department *models.Department) error {
	department.UpdatedAt = time.Now().UTC()
	const query = `UPDATE departments SET name = :name, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, department)
	if err != nil {
		return fmt.Errorf("update department: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteDepartment removes a department.
func (r *CompanyRepository) DeleteDepartment(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete department: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
