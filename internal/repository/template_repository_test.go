package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uniops-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTemplateRepositoryListBySections(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTemplateRepository(db)
	rows := sqlmock.NewRows([]string{"id", "section_id", "room_id", "period_id", "created_at"}).
		AddRow("ta-1", "sec-1", "room-1", "p-1", time.Now()).
		AddRow("ta-2", "sec-2", "room-2", "p-2", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, section_id, room_id, period_id, created_at FROM template_assignments WHERE section_id IN (?, ?)")).
		WithArgs("sec-1", "sec-2").
		WillReturnRows(rows)

	assignments, err := repo.ListBySections(context.Background(), []string{"sec-1", "sec-2"})
	require.NoError(t, err)
	require.Len(t, assignments, 2)
	require.Equal(t, "ta-1", assignments[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTemplateRepositoryListBySectionsEmpty(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTemplateRepository(db)
	assignments, err := repo.ListBySections(context.Background(), nil)
	require.NoError(t, err)
	require.Nil(t, assignments)
}

func TestTemplateRepositoryReplaceWithinTx(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTemplateRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM template_assignments WHERE section_id IN (?)")).
		WithArgs("sec-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO template_assignments")).
		WithArgs(sqlmock.AnyArg(), "sec-1", "room-1", "p-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteBySections(context.Background(), tx, []string{"sec-1"}))
	require.NoError(t, repo.InsertBatch(context.Background(), tx, []models.TemplateAssignment{
		{SectionID: "sec-1", RoomID: "room-1", PeriodID: "p-1"},
	}))
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTemplateRepositoryInsertAssignsIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTemplateRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO template_assignments")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	assignments := []models.TemplateAssignment{{SectionID: "sec-1", RoomID: "room-1", PeriodID: "p-1"}}
	require.NoError(t, repo.InsertBatch(context.Background(), nil, assignments))
	require.NotEmpty(t, assignments[0].ID)
	require.False(t, assignments[0].CreatedAt.IsZero())
}
