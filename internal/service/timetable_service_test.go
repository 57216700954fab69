package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/uniops-api/internal/dto"
	"github.com/noah-isme/uniops-api/internal/models"
	appErrors "github.com/noah-isme/uniops-api/pkg/errors"
)

func TestAnchorMonday(t *testing.T) {
	cases := []struct {
		name  string
		start time.Time
		want  time.Time
	}{
		{"monday stays", date(2026, 9, 7), date(2026, 9, 7)},
		{"wednesday advances", date(2026, 9, 9), date(2026, 9, 14)},
		{"sunday advances one day", date(2026, 9, 13), date(2026, 9, 14)},
		{"saturday advances two days", date(2026, 9, 12), date(2026, 9, 14)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, anchorMonday(tc.start))
		})
	}
}

func TestReplicateTemplateDatesAndWeeks(t *testing.T) {
	term := &models.Term{ID: "term-1", StartDate: date(2026, 9, 9)} // a Wednesday
	assignments := []models.TemplateAssignment{
		{SectionID: "sec-1", RoomID: "room-1", PeriodID: "p-mon"},
		{SectionID: "sec-1", RoomID: "room-2", PeriodID: "p-thu"},
	}
	dayByPeriod := map[string]int{"p-mon": 1, "p-thu": 4}

	sessions := replicateTemplate(term, assignments, dayByPeriod, 10)
	require.Len(t, sessions, 20)

	anchor := date(2026, 9, 14)
	for _, session := range sessions {
		expected := anchor.AddDate(0, 0, (session.WeekNumber-1)*7+(session.DayOfWeek-1))
		assert.Equal(t, expected, session.Date)
		assert.Equal(t, "term-1", session.TermID)
	}
	assert.Equal(t, 1, sessions[0].WeekNumber)
	assert.Equal(t, 10, sessions[len(sessions)-1].WeekNumber)
}

func TestGenerateTemplateEmptyCurriculum(t *testing.T) {
	fixture := newTimetableFixture(t, timetableFixtureConfig{courseIDs: []string{}})

	resp, err := fixture.service.GenerateTemplate(context.Background(), dto.GenerateTemplateRequest{ProgramID: "prog-1"})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.SectionCount)
	assert.Empty(t, resp.Assignments)
	assert.Empty(t, fixture.templates.inserted)
}

func TestGenerateTemplatePersistsAssignments(t *testing.T) {
	fixture := newTimetableFixture(t, timetableFixtureConfig{})

	fixture.mock.ExpectBegin()
	fixture.mock.ExpectCommit()

	resp, err := fixture.service.GenerateTemplate(context.Background(), dto.GenerateTemplateRequest{ProgramID: "prog-1"})
	require.NoError(t, err)
	assert.Equal(t, "TERM_1_1", resp.TermCode)
	assert.Equal(t, 2, resp.SectionCount)
	// sec-1 carries 3 credits (2 sessions), sec-2 carries 2 credits (1 session).
	assert.Equal(t, 3, resp.PlacedSessions)
	assert.Len(t, fixture.templates.inserted, 3)
	assert.Equal(t, [][]string{{"sec-1", "sec-2"}}, fixture.templates.deleted)
	require.NoError(t, fixture.mock.ExpectationsWereMet())
}

func TestGenerateTemplateUnknownProgram(t *testing.T) {
	fixture := newTimetableFixture(t, timetableFixtureConfig{programErr: sql.ErrNoRows})

	_, err := fixture.service.GenerateTemplate(context.Background(), dto.GenerateTemplateRequest{ProgramID: "missing"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestGenerateTermScheduleReplicatesAcrossWeeks(t *testing.T) {
	fixture := newTimetableFixture(t, timetableFixtureConfig{})

	fixture.mock.ExpectBegin()
	fixture.mock.ExpectCommit()
	fixture.mock.ExpectBegin()
	fixture.mock.ExpectCommit()

	resp, err := fixture.service.GenerateTermSchedule(context.Background(), dto.GenerateTermScheduleRequest{
		ProgramID: "prog-1",
		TermID:    "term-1",
		WeekCount: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 10, resp.WeekCount)
	assert.Equal(t, 3, resp.PlacedSessions)
	assert.Equal(t, 30, resp.SessionsCreated)
	assert.Len(t, fixture.sessions.inserted, 30)
	assert.Equal(t, []string{"term-1"}, fixture.sessions.deletedTerms)
	require.NoError(t, fixture.mock.ExpectationsWereMet())
}

func TestGenerateTermScheduleRejectsOversizedWeekCount(t *testing.T) {
	fixture := newTimetableFixture(t, timetableFixtureConfig{})

	_, err := fixture.service.GenerateTermSchedule(context.Background(), dto.GenerateTermScheduleRequest{
		ProgramID: "prog-1",
		WeekCount: 50,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestGenerateTermScheduleFallsBackToTermWeekCount(t *testing.T) {
	fixture := newTimetableFixture(t, timetableFixtureConfig{termWeeks: 12})

	fixture.mock.ExpectBegin()
	fixture.mock.ExpectCommit()
	fixture.mock.ExpectBegin()
	fixture.mock.ExpectCommit()

	resp, err := fixture.service.GenerateTermSchedule(context.Background(), dto.GenerateTermScheduleRequest{
		ProgramID: "prog-1",
		TermID:    "term-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 12, resp.WeekCount)
	assert.Equal(t, 36, resp.SessionsCreated)
}

func TestSessionsForTermServedFromCache(t *testing.T) {
	cached := []models.ScheduledSession{{ID: "cached", TermID: "term-1"}}
	fixture := newTimetableFixture(t, timetableFixtureConfig{cached: cached})

	sessions, err := fixture.service.SessionsForTerm(context.Background(), dto.SessionQuery{ProgramID: "prog-1", TermID: "term-1"})
	require.NoError(t, err)
	assert.Equal(t, cached, sessions)
	assert.Zero(t, fixture.sessions.listCalls)
}

func TestSessionsForWeekListsAndCaches(t *testing.T) {
	stored := []models.ScheduledSession{{ID: "s-1", TermID: "term-1", WeekNumber: 2}}
	fixture := newTimetableFixture(t, timetableFixtureConfig{stored: stored})

	sessions, err := fixture.service.SessionsForWeek(context.Background(), dto.WeekQuery{ProgramID: "prog-1", TermID: "term-1", Week: 2})
	require.NoError(t, err)
	assert.Equal(t, stored, sessions)
	assert.Equal(t, 1, fixture.sessions.listCalls)
	assert.Contains(t, fixture.cache.setKeys, "timetable:prog-1:term-1:week:2")
}

// --- Fixtures ---

type timetableFixtureConfig struct {
	courseIDs  []string
	programErr error
	termWeeks  int
	cached     []models.ScheduledSession
	stored     []models.ScheduledSession
}

type timetableFixture struct {
	service   *TimetableService
	templates *templateStoreStub
	sessions  *sessionStoreStub
	cache     *viewCacheStub
	mock      sqlmock.Sqlmock
}

func newTimetableFixture(t *testing.T, cfg timetableFixtureConfig) *timetableFixture {
	courseIDs := cfg.courseIDs
	if courseIDs == nil {
		courseIDs = []string{"course-1", "course-2"}
	}

	programs := &programReaderStub{
		program:   &models.Program{ID: "prog-1", Name: "Engineering", CurrentTermCode: "TERM_1_1"},
		courseIDs: courseIDs,
		err:       cfg.programErr,
	}
	terms := &termReaderStub{term: &models.Term{
		ID:        "term-1",
		StartDate: date(2026, 9, 7),
		WeekCount: cfg.termWeeks,
	}}
	sections := &sectionCatalogStub{sections: []models.CourseSection{
		{ID: "sec-1", CourseID: "course-1", TeacherID: "t-1", MaxStudents: 25, Credits: 3},
		{ID: "sec-2", CourseID: "course-2", TeacherID: "t-2", MaxStudents: 25, Credits: 2},
	}}
	templates := &templateStoreStub{}
	sessionStore := &sessionStoreStub{stored: cfg.stored}
	cacheStub := &viewCacheStub{cached: cfg.cached}

	tx, mock := newTimetableTxMock(t)

	svc := NewTimetableService(
		roomCatalogStub{rooms: testRooms(30, 30)},
		periodCatalogStub{periods: testPeriods(5, 4)},
		sections,
		programs,
		terms,
		templates,
		sessionStore,
		tx,
		cacheStub,
		nil,
		validator.New(),
		zap.NewNop(),
		TimetableServiceConfig{DefaultWeekCount: 10, MaxWeekCount: 20, Seed: 99, CacheTTL: time.Minute},
	)

	return &timetableFixture{
		service:   svc,
		templates: templates,
		sessions:  sessionStore,
		cache:     cacheStub,
		mock:      mock,
	}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

type roomCatalogStub struct {
	rooms []models.Room
}

func (s roomCatalogStub) ListAll(ctx context.Context) ([]models.Room, error) {
	return s.rooms, nil
}

type periodCatalogStub struct {
	periods []models.Period
}

func (s periodCatalogStub) ListAll(ctx context.Context) ([]models.Period, error) {
	return s.periods, nil
}

type sectionCatalogStub struct {
	sections []models.CourseSection
}

func (s *sectionCatalogStub) ListByCourseIDs(ctx context.Context, courseIDs []string) ([]models.CourseSection, error) {
	if len(courseIDs) == 0 {
		return nil, nil
	}
	return s.sections, nil
}

type programReaderStub struct {
	program   *models.Program
	courseIDs []string
	err       error
}

func (s *programReaderStub) FindByID(ctx context.Context, id string) (*models.Program, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.program, nil
}

func (s *programReaderStub) CourseIDsForTerm(ctx context.Context, programID, termCode string) ([]string, error) {
	return s.courseIDs, nil
}

type termReaderStub struct {
	term *models.Term
}

func (s *termReaderStub) FindByID(ctx context.Context, id string) (*models.Term, error) {
	if s.term == nil {
		return nil, sql.ErrNoRows
	}
	return s.term, nil
}

func (s *termReaderStub) Latest(ctx context.Context) (*models.Term, error) {
	return s.FindByID(ctx, "")
}

type templateStoreStub struct {
	inserted []models.TemplateAssignment
	deleted  [][]string
}

func (s *templateStoreStub) ListBySections(ctx context.Context, sectionIDs []string) ([]models.TemplateAssignment, error) {
	return s.inserted, nil
}

func (s *templateStoreStub) DeleteBySections(ctx context.Context, exec sqlx.ExtContext, sectionIDs []string) error {
	s.deleted = append(s.deleted, sectionIDs)
	return nil
}

func (s *templateStoreStub) InsertBatch(ctx context.Context, exec sqlx.ExtContext, assignments []models.TemplateAssignment) error {
	s.inserted = append(s.inserted, assignments...)
	return nil
}

type sessionStoreStub struct {
	inserted     []models.ScheduledSession
	deletedTerms []string
	stored       []models.ScheduledSession
	listCalls    int
}

func (s *sessionStoreStub) DeleteByTermAndSections(ctx context.Context, exec sqlx.ExtContext, termID string, sectionIDs []string) error {
	s.deletedTerms = append(s.deletedTerms, termID)
	return nil
}

func (s *sessionStoreStub) InsertBatch(ctx context.Context, exec sqlx.ExtContext, sessions []models.ScheduledSession) error {
	s.inserted = append(s.inserted, sessions...)
	return nil
}

func (s *sessionStoreStub) ListByTermAndSections(ctx context.Context, termID string, sectionIDs []string) ([]models.ScheduledSession, error) {
	s.listCalls++
	return s.stored, nil
}

func (s *sessionStoreStub) ListByTermWeek(ctx context.Context, termID string, week int, sectionIDs []string) ([]models.ScheduledSession, error) {
	s.listCalls++
	return s.stored, nil
}

type viewCacheStub struct {
	cached     []models.ScheduledSession
	setKeys    []string
	deletedPat []string
}

func (s *viewCacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	if s.cached == nil {
		return appErrors.ErrCacheMiss
	}
	target, ok := dest.(*[]models.ScheduledSession)
	if !ok {
		return appErrors.ErrCacheMiss
	}
	*target = s.cached
	return nil
}

func (s *viewCacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	s.setKeys = append(s.setKeys, key)
	return nil
}

func (s *viewCacheStub) DeleteByPattern(ctx context.Context, pattern string) error {
	s.deletedPat = append(s.deletedPat, pattern)
	return nil
}

type timetableTxMock struct {
	db *sqlx.DB
}

func newTimetableTxMock(t *testing.T) (txProvider, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { db.Close() })
	return &timetableTxMock{db: sqlxdb}, mock
}

func (m *timetableTxMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return m.db.BeginTxx(ctx, opts)
}
