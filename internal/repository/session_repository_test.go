package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uniops-api/internal/models"
)

func TestSessionRepositoryDeleteByTermAndSections(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM scheduled_sessions WHERE term_id = ? AND section_id IN (?, ?)")).
		WithArgs("term-1", "sec-1", "sec-2").
		WillReturnResult(sqlmock.NewResult(0, 20))

	require.NoError(t, repo.DeleteByTermAndSections(context.Background(), nil, "term-1", []string{"sec-1", "sec-2"}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryDeleteNoSectionsIsNoop(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)
	require.NoError(t, repo.DeleteByTermAndSections(context.Background(), nil, "term-1", nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryInsertBatch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO scheduled_sessions")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO scheduled_sessions")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	sessions := []models.ScheduledSession{
		{TermID: "term-1", SectionID: "sec-1", RoomID: "room-1", PeriodID: "p-1", DayOfWeek: 1, WeekNumber: 1, Date: time.Now()},
		{TermID: "term-1", SectionID: "sec-1", RoomID: "room-2", PeriodID: "p-2", DayOfWeek: 4, WeekNumber: 1, Date: time.Now()},
	}
	require.NoError(t, repo.InsertBatch(context.Background(), nil, sessions))
	require.NotEmpty(t, sessions[0].ID)
	require.NotEmpty(t, sessions[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryListByTermWeek(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "term_id", "section_id", "room_id", "period_id", "day_of_week", "week_number", "session_date", "created_at", "updated_at"}).
		AddRow("s-1", "term-1", "sec-1", "room-1", "p-1", 1, 2, now, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM scheduled_sessions WHERE term_id = ? AND week_number = ? AND section_id IN (?)")).
		WithArgs("term-1", 2, "sec-1").
		WillReturnRows(rows)

	sessions, err := repo.ListByTermWeek(context.Background(), "term-1", 2, []string{"sec-1"})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, 2, sessions[0].WeekNumber)
	require.NoError(t, mock.ExpectationsWereMet())
}
