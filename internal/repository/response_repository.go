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

// ResponseRepository manages persistence for submitted responses. Answers are
// a JSONB column keyed by field id.
type ResponseRepository struct {
	db *sqlx.DB
}

// NewResponseRepository constructs a ResponseRepository.
func NewResponseRepository(db *sqlx.DB) *ResponseRepository {
	return &ResponseRepository{db: db}
}

const responseColumns = `id, form_id, collaborator_id, collaborator_username, answers, created_at, submitted_at`

// List returns responses matching the provided filters, newest first.
func (r *ResponseRepository) List(ctx context.Context, filter models.ResponseFilter) ([]models.Response, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.FormID != "" {
		conditions = append(conditions, fmt.Sprintf("form_id = $%d", len(args)+1))
		args = append(args, filter.FormID)
	}
	if filter.CollaboratorID != "" {
		conditions = append(conditions, fmt.Sprintf("collaborator_id = $%d", len(args)+1))
		args = append(args, filter.CollaboratorID)
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("COALESCE(submitted_at, created_at) >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("COALESCE(submitted_at, created_at) < $%d", len(args)+1))
		args = append(args, *filter.To)
	}

	where := strings.Join(conditions, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 500 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM responses WHERE %s ORDER BY COALESCE(submitted_at, created_at) DESC LIMIT %d OFFSET %d`,
		responseColumns, where, size, offset)

	var responses []models.Response
	if err := r.db.SelectContext(ctx, &responses, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list responses: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM responses WHERE %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count responses: %w", err)
	}
	return responses, total, nil
}

// FindByID fetches a response by id.
func (r *ResponseRepository) FindByID(ctx context.Context, id string) (*models.Response, error) {
	query := fmt.Sprintf(`SELECT %s FROM responses WHERE id = $1`, responseColumns)
	var resp models.Response
	if err := r.db.GetContext(ctx, &resp, query, id); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Create inserts a new response document.
func (r *ResponseRepository) Create(ctx context.Context, resp *models.Response) error {
	if resp.ID == "" {
		resp.ID = uuid.NewString()
	}
	if resp.CreatedAt.IsZero() {
		resp.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO responses (id, form_id, collaborator_id, collaborator_username, answers, created_at, submitted_at)
        VALUES (:id, :form_id, :collaborator_id, :collaborator_username, :answers, :created_at, :submitted_at)`
	if _, err := r.db.NamedExecContext(ctx, query, resp); err != nil {
		return fmt.Errorf("create response: %w", err)
	}
	return nil
}

// UpdateAnswers replaces only the answers of an existing response. This is
// the history-edit path; timestamps and ownership never change.
func (r *ResponseRepository) UpdateAnswers(ctx context.Context, id string, answers models.AnswerMap) error {
	result, err := r.db.ExecContext(ctx, `UPDATE responses SET answers = $2 WHERE id = $1`, id, answers)
	if err != nil {
		return fmt.Errorf("update response answers: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListForCollaboratorInWindow returns a collaborator's responses to one form
// whose effective timestamp falls inside [from, to). Used by the daily-limit
// evaluator.
func (r *ResponseRepository) ListForCollaboratorInWindow(ctx context.Context, formID, collaboratorID string, from, to time.Time) ([]models.Response, error) {
	query := fmt.Sprintf(`SELECT %s FROM responses
        WHERE form_id = $1 AND collaborator_id = $2
        AND COALESCE(submitted_at, created_at) >= $3 AND COALESCE(submitted_at, created_at) < $4`, responseColumns)
	var responses []models.Response
	if err := r.db.SelectContext(ctx, &responses, query, formID, collaboratorID, from, to); err != nil {
		return nil, fmt.Errorf("list responses in window: %w", err)
	}
	return responses, nil
}

// ListByForms returns every response for the given forms, used for dashboard
// aggregation. An empty id list yields an empty slice.
func (r *ResponseRepository) ListByForms(ctx context.Context, formIDs []string) ([]models.Response, error) {
	if len(formIDs) == 0 {
		return []models.Response{}, nil
	}
	query, args, err := sqlx.In(fmt.Sprintf(`SELECT %s FROM responses WHERE form_id IN (?)`, responseColumns), formIDs)
	if err != nil {
		return nil, fmt.Errorf("build responses query: %w", err)
	}
	query = r.db.Rebind(query)
	var responses []models.Response
	if err := r.db.SelectContext(ctx, &responses, query, args...); err != nil {
		return nil, fmt.Errorf("list responses by forms: %w", err)
	}
	return responses, nil
}
