package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestRoomRepositoryListAll(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewRoomRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "capacity", "created_at", "updated_at"}).
		AddRow("room-1", "Lecture Hall A", 120, now, now).
		AddRow("room-2", "Lab 2", 30, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, capacity, created_at, updated_at FROM rooms ORDER BY name ASC")).
		WillReturnRows(rows)

	rooms, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	require.Equal(t, 120, rooms[0].Capacity)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPeriodRepositoryListAll(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewPeriodRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "day_of_week", "number", "start_time", "end_time", "created_at", "updated_at"}).
		AddRow("p-1", "MONDAY", 1, "08:00", "08:45", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM periods ORDER BY day_of_week ASC, number ASC")).
		WillReturnRows(rows)

	periods, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, periods, 1)
	require.Equal(t, "MONDAY", periods[0].DayOfWeek)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTermRepositoryLatest(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTermRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "start_date", "end_date", "week_count", "created_at", "updated_at"}).
		AddRow("term-2", "Fall 2026", now, now.AddDate(0, 4, 0), 14, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM terms ORDER BY start_date DESC LIMIT 1")).
		WillReturnRows(rows)

	term, err := repo.Latest(context.Background())
	require.NoError(t, err)
	require.Equal(t, "term-2", term.ID)
	require.Equal(t, 14, term.WeekCount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProgramRepositoryCourseIDsForTerm(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewProgramRepository(db)
	rows := sqlmock.NewRows([]string{"course_id"}).
		AddRow("course-1").
		AddRow("course-2")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT course_id FROM program_courses WHERE program_id = $1 AND term_code = $2")).
		WithArgs("prog-1", "TERM_1_1").
		WillReturnRows(rows)

	ids, err := repo.CourseIDsForTerm(context.Background(), "prog-1", "TERM_1_1")
	require.NoError(t, err)
	require.Equal(t, []string{"course-1", "course-2"}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepositoryListByCourseIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSectionRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "course_id", "teacher_id", "max_students", "min_students", "credits", "created_at", "updated_at"}).
		AddRow("sec-1", "course-1", "t-1", 30, 10, 3, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("JOIN courses c ON c.id = cs.course_id WHERE cs.course_id IN (?)")).
		WithArgs("course-1").
		WillReturnRows(rows)

	sections, err := repo.ListByCourseIDs(context.Background(), []string{"course-1"})
	require.NoError(t, err)
	require.Len(t, sections, 1)
	require.Equal(t, 3, sections[0].Credits)
	require.Equal(t, 2, sections[0].SessionsNeeded())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepositoryListByCourseIDsEmpty(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSectionRepository(db)
	sections, err := repo.ListByCourseIDs(context.Background(), nil)
	require.NoError(t, err)
	require.Nil(t, sections)
}
