package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/bravoform/bravoform-api/internal/models"
)

func newFormRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func formRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "title", "description", "company_id", "department_id",
		"fields", "theme", "settings", "automation", "collaborators",
		"authorized_users", "created_at", "updated_at",
	})
}

func addFormRow(rows *sqlmock.Rows, id, title string) *sqlmock.Rows {
	return rows.AddRow(
		id, title, "", "co-1", "dep-1",
		[]byte(`[{"id":"f1","type":"text","label":"Name","required":true}]`),
		[]byte(`{}`),
		[]byte(`{"dailyLimitEnabled":true,"dailyLimitCount":"2"}`),
		[]byte(`{}`),
		[]byte(`["collab-1"]`),
		[]byte(`["collab-1"]`),
		time.Now(), time.Now(),
	)
}

func TestFormRepositoryFindByIDDecodesDocuments(t *testing.T) {
	db, mock, cleanup := newFormRepoMock(t)
	defer cleanup()

	repo := NewFormRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+formColumns+" FROM forms WHERE id = $1")).
		WithArgs("form-1").
		WillReturnRows(addFormRow(formRows(), "form-1", "Visit report"))

	form, err := repo.FindByID(context.Background(), "form-1")
	require.NoError(t, err)
	require.Equal(t, "Visit report", form.Title)
	require.Len(t, form.Fields, 1)
	require.Equal(t, models.FieldText, form.Fields[0].Type)
	require.True(t, form.Settings.DailyLimitEnabled)
	require.Equal(t, 2, form.Settings.DailyLimitCount)
	require.Equal(t, models.StringList{"collab-1"}, form.AuthorizedUsers)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFormRepositoryListFiltersByCollaborator(t *testing.T) {
	db, mock, cleanup := newFormRepoMock(t)
	defer cleanup()

	repo := NewFormRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + formColumns + " FROM forms WHERE 1=1 AND authorized_users @> $1::jsonb")).
		WithArgs(`["collab-1"]`).
		WillReturnRows(addFormRow(formRows(), "form-1", "Daily checklist"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM forms WHERE 1=1 AND authorized_users @> $1::jsonb")).
		WithArgs(`["collab-1"]`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	forms, total, err := repo.List(context.Background(), models.FormFilter{CollaboratorID: "collab-1"})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, forms, 1)
	require.Equal(t, "form-1", forms[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFormRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newFormRepoMock(t)
	defer cleanup()

	repo := NewFormRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO forms")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	form := &models.Form{Title: "New form", CompanyID: "co-1", DepartmentID: "dep-1"}
	require.NoError(t, repo.Create(context.Background(), form))
	require.NotEmpty(t, form.ID)
	require.False(t, form.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFormRepositoryUpdateMissingRow(t *testing.T) {
	db, mock, cleanup := newFormRepoMock(t)
	defer cleanup()

	repo := NewFormRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE forms SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Form{ID: "ghost"})
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFormRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newFormRepoMock(t)
	defer cleanup()

	repo := NewFormRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM forms WHERE id = $1")).
		WithArgs("form-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "form-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
