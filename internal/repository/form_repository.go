package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bravoform/bravoform-api/internal/models"
)

// FormRepository manages persistence for form documents. Fields, theme,
// settings, automation and the authorization lists live in JSONB columns so
// the embedded schema travels with the form.
type FormRepository struct {
	db *sqlx.DB
}

// NewFormRepository constructs a FormRepository.
func NewFormRepository(db *sqlx.DB) *FormRepository {
	return &FormRepository{db: db}
}

const formColumns = `id, title, description, company_id, department_id, fields, theme, settings, automation, collaborators, authorized_users, created_at, updated_at`

// List returns forms matching the provided filters.
func (r *FormRepository) List(ctx context.Context, filter models.FormFilter) ([]models.Form, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.CompanyID != "" {
		conditions = append(conditions, fmt.Sprintf("company_id = $%d", len(args)+1))
		args = append(args, filter.CompanyID)
	}
	if filter.DepartmentID != "" {
		conditions = append(conditions, fmt.Sprintf("department_id = $%d", len(args)+1))
		args = append(args, filter.DepartmentID)
	}
	if filter.CollaboratorID != "" {
		conditions = append(conditions, fmt.Sprintf("authorized_users @> $%d::jsonb", len(args)+1))
		member, err := json.Marshal([]string{filter.CollaboratorID})
		if err != nil {
			return nil, 0, fmt.Errorf("encode collaborator filter: %w", err)
		}
		args = append(args, string(member))
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(title) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	where := strings.Join(conditions, " AND ")

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"title":      "title",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "updated_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM forms WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d`,
		formColumns, where, column, order, size, offset)

	var forms []models.Form
	if err := r.db.SelectContext(ctx, &forms, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list forms: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM forms WHERE %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count forms: %w", err)
	}
	return forms, total, nil
}

// FindByID fetches a form by id.
func (r *FormRepository) FindByID(ctx context.Context, id string) (*models.Form, error) {
	query := fmt.Sprintf(`SELECT %s FROM forms WHERE id = $1`, formColumns)
	var form models.Form
	if err := r.db.GetContext(ctx, &form, query, id); err != nil {
		return nil, err
	}
	return &form, nil
}

// Create inserts a new form document.
func (r *FormRepository) Create(ctx context.Context, form *models.Form) error {
	if form.ID == "" {
		form.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if form.CreatedAt.IsZero() {
		form.CreatedAt = now
	}
	form.UpdatedAt = now
	const query = `INSERT INTO forms (id, title, description, company_id, department_id, fields, theme, settings, automation, collaborators, authorized_users, created_at, updated_at)
        VALUES (:id, :title, :description, :company_id, :department_id, :fields, :theme, :settings, :automation, :collaborators, :authorized_users, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, form); err != nil {
		return fmt.Errorf("create form: %w", err)
	}
	return nil
}

// Update replaces the mutable parts of a form document.
func (r *FormRepository) Update(ctx context.Context, form *models.Form) error {
	form.UpdatedAt = time.Now().UTC()
	const query = `UPDATE forms SET title = :title, description = :description, fields = :fields, theme = :theme, settings = :settings, automation = :automation, collaborators = :collaborators, authorized_users = :authorized_users, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, form)
	if err != nil {
		return fmt.Errorf("update form: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a form. Responses are kept for history and audit.
func (r *FormRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM forms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete form: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListByCompany returns every form of a company, used for dashboard scoping.
func (r *FormRepository) ListByCompany(ctx context.Context, companyID string) ([]models.Form, error) {
	query := fmt.Sprintf(`SELECT %s FROM forms WHERE company_id = $1 ORDER BY created_at`, formColumns)
	var forms []models.Form
	if err := r.db.SelectContext(ctx, &forms, query, companyID); err != nil {
		return nil, fmt.Errorf("list forms by company: %w", err)
	}
	return forms, nil
}
