package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bravoform/bravoform-api/internal/models"
)

// CollaboratorRepository manages persistence for collaborators.
type CollaboratorRepository struct {
	db *sqlx.DB
}

// NewCollaboratorRepository constructs a CollaboratorRepository.
func NewCollaboratorRepository(db *sqlx.DB) *CollaboratorRepository {
	return &CollaboratorRepository{db: db}
}

const collaboratorColumns = `id, department_id, username, full_name, email, phone, active, created_at, updated_at`

// List returns collaborators matching the provided filters.
func (r *CollaboratorRepository) List(ctx context.Context, filter models.CollaboratorFilter) ([]models.Collaborator, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.DepartmentID != "" {
		conditions = append(conditions, fmt.Sprintf("department_id = $%d", len(args)+1))
		args = append(args, filter.DepartmentID)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(full_name) LIKE $%d OR LOWER(username) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	where := strings.Join(conditions, " AND ")

	allowedSorts := map[string]string{
		"full_name":  "full_name",
		"username":   "username",
		"created_at": "created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "full_name"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
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

	query := fmt.Sprintf(`SELECT %s FROM collaborators WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d`,
		collaboratorColumns, where, column, order, size, offset)

	var collaborators []models.Collaborator
	if err := r.db.SelectContext(ctx, &collaborators, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list collaborators: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM collaborators WHERE %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count collaborators: %w", err)
	}
	return collaborators, total, nil
}

// FindByID fetches a collaborator by id.
func (r *CollaboratorRepository) FindByID(ctx context.Context, id string) (*models.Collaborator, error) {
	query := fmt.Sprintf(`SELECT %s FROM collaborators WHERE id = $1`, collaboratorColumns)
	var collaborator models.Collaborator
	if err := r.db.GetContext(ctx, &collaborator, query, id); err != nil {
		return nil, err
	}
	return &collaborator, nil
}

// ExistsByUsername checks username uniqueness, optionally excluding an id.
func (r *CollaboratorRepository) ExistsByUsername(ctx context.Context, username string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM collaborators WHERE username = $1"
	args := []interface{}{username}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check username: %w", err)
	}
	return true, nil
}

// Create inserts a new collaborator record.
func (r *CollaboratorRepository) Create(ctx context.Context, collaborator *models.Collaborator) error {
	if collaborator.ID == "" {
		collaborator.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if collaborator.CreatedAt.IsZero() {
		collaborator.CreatedAt = now
	}
	collaborator.UpdatedAt = now
	const query = `INSERT INTO collaborators (id, department_id, username, full_name, email, phone, active, created_at, updated_at)
        VALUES (:id, :department_id, :username, :full_name, :email, :phone, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, collaborator); err != nil {
		return fmt.Errorf("create collaborator: %w", err)
	}
	return nil
}

// Update modifies an existing collaborator.
func (r *CollaboratorRepository) Update(ctx context.Context, collaborator *models.Collaborator) error {
	collaborator.UpdatedAt = time.Now().UTC()
	const query = `UPDATE collaborators SET username = :username, full_name = :full_name, email = :email, phone = :phone, active = :active, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, collaborator)
	if err != nil {
		return fmt.Errorf("update collaborator: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a collaborator. Forms referencing the collaborator keep the
// dangling id; lookups treat it as unknown.
func (r *CollaboratorRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM collaborators WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete collaborator: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
