package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/uniops-api/internal/dto"
	"github.com/noah-isme/uniops-api/internal/models"
	appErrors "github.com/noah-isme/uniops-api/pkg/errors"
	"github.com/noah-isme/uniops-api/pkg/jobs"
)

// defaultTermCode scopes demand for programs that have no current term code.
const defaultTermCode = "TERM_1_1"

type roomCatalog interface {
	ListAll(ctx context.Context) ([]models.Room, error)
}

type periodCatalog interface {
	ListAll(ctx context.Context) ([]models.Period, error)
}

type sectionCatalog interface {
	ListByCourseIDs(ctx context.Context, courseIDs []string) ([]models.CourseSection, error)
}

type programReader interface {
	FindByID(ctx context.Context, id string) (*models.Program, error)
	CourseIDsForTerm(ctx context.Context, programID, termCode string) ([]string, error)
}

type timetableTermReader interface {
	FindByID(ctx context.Context, id string) (*models.Term, error)
	Latest(ctx context.Context) (*models.Term, error)
}

type templateStore interface {
	ListBySections(ctx context.Context, sectionIDs []string) ([]models.TemplateAssignment, error)
	DeleteBySections(ctx context.Context, exec sqlx.ExtContext, sectionIDs []string) error
	InsertBatch(ctx context.Context, exec sqlx.ExtContext, assignments []models.TemplateAssignment) error
}

type sessionStore interface {
	DeleteByTermAndSections(ctx context.Context, exec sqlx.ExtContext, termID string, sectionIDs []string) error
	InsertBatch(ctx context.Context, exec sqlx.ExtContext, sessions []models.ScheduledSession) error
	ListByTermAndSections(ctx context.Context, termID string, sectionIDs []string) ([]models.ScheduledSession, error)
	ListByTermWeek(ctx context.Context, termID string, week int, sectionIDs []string) ([]models.ScheduledSession, error)
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type viewCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type generationRecorder interface {
	RecordGeneration(outcome string, duration time.Duration)
	RecordCacheOperation(hit bool)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// TimetableService generates the canonical-week template and replicates it
// into dated sessions across a term.
type TimetableService struct {
	rooms     roomCatalog
	periods   periodCatalog
	sections  sectionCatalog
	programs  programReader
	terms     timetableTermReader
	templates templateStore
	sessions  sessionStore
	tx        txProvider
	cache     viewCache
	metrics   generationRecorder
	queue     jobEnqueuer
	validator *validator.Validate
	logger    *zap.Logger
	cfg       TimetableServiceConfig
}

// TimetableServiceConfig governs generation behaviour. Seed zero means a
// time-based seed for each run; any other value makes runs reproducible.
type TimetableServiceConfig struct {
	DefaultWeekCount int
	MaxWeekCount     int
	Seed             int64
	CacheTTL         time.Duration
}

// NewTimetableService wires the timetable dependencies.
func NewTimetableService(
	rooms roomCatalog,
	periods periodCatalog,
	sections sectionCatalog,
	programs programReader,
	terms timetableTermReader,
	templates templateStore,
	sessions sessionStore,
	tx txProvider,
	cache viewCache,
	metrics generationRecorder,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg TimetableServiceConfig,
) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultWeekCount <= 0 {
		cfg.DefaultWeekCount = 10
	}
	if cfg.MaxWeekCount <= 0 {
		cfg.MaxWeekCount = 20
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	return &TimetableService{
		rooms:     rooms,
		periods:   periods,
		sections:  sections,
		programs:  programs,
		terms:     terms,
		templates: templates,
		sessions:  sessions,
		tx:        tx,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// AttachQueue connects the background queue used for async generation. Called
// after construction because the queue's handler points back at this service.
func (s *TimetableService) AttachQueue(queue jobEnqueuer) {
	s.queue = queue
}

func (s *TimetableService) newRand() *rand.Rand {
	seed := s.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// --- Demand resolution ---

type scheduleDemand struct {
	program  *models.Program
	termCode string
	sections []models.CourseSection
}

func (s *TimetableService) resolveDemand(ctx context.Context, programID, termCode string) (*scheduleDemand, error) {
	program, err := s.programs.FindByID(ctx, programID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}

	if termCode == "" {
		termCode = program.CurrentTermCode
	}
	if termCode == "" {
		termCode = defaultTermCode
	}

	courseIDs, err := s.programs.CourseIDsForTerm(ctx, programID, termCode)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program courses")
	}

	sections, err := s.sections.ListByCourseIDs(ctx, courseIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course sections")
	}

	return &scheduleDemand{program: program, termCode: termCode, sections: sections}, nil
}

func (s *TimetableService) resolveTerm(ctx context.Context, termID string) (*models.Term, error) {
	if termID != "" {
		term, err := s.terms.FindByID(ctx, termID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "term not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term")
		}
		return term, nil
	}
	term, err := s.terms.Latest(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no terms defined")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load latest term")
	}
	return term, nil
}

// --- Template generation ---

type templateResult struct {
	assignments []models.TemplateAssignment
	skipped     []models.SectionDiagnostic
}

// GenerateTemplate rebuilds the canonical-week template for the program's
// current term code. An empty curriculum is a successful no-op, not an error.
func (s *TimetableService) GenerateTemplate(ctx context.Context, req dto.GenerateTemplateRequest) (*dto.GenerateTemplateResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid template generation payload")
	}

	started := time.Now()
	demand, err := s.resolveDemand(ctx, req.ProgramID, "")
	if err != nil {
		s.recordGeneration("error", started)
		return nil, err
	}

	resp := &dto.GenerateTemplateResponse{
		ProgramID:    req.ProgramID,
		TermCode:     demand.termCode,
		SectionCount: len(demand.sections),
	}
	if len(demand.sections) == 0 {
		s.logger.Info("nothing to schedule",
			zap.String("program_id", req.ProgramID),
			zap.String("term_code", demand.termCode))
		s.recordGeneration("empty", started)
		return resp, nil
	}

	result, err := s.buildAndStoreTemplate(ctx, demand)
	if err != nil {
		s.recordGeneration("error", started)
		return nil, err
	}

	s.invalidateViews(ctx, req.ProgramID)
	s.recordGeneration("ok", started)

	resp.PlacedSessions = len(result.assignments)
	resp.Assignments = result.assignments
	resp.Skipped = result.skipped
	return resp, nil
}

// buildAndStoreTemplate runs the placement engine over the demand and swaps
// the stored template in one transaction.
func (s *TimetableService) buildAndStoreTemplate(ctx context.Context, demand *scheduleDemand) (*templateResult, error) {
	rooms, err := s.rooms.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	if len(rooms) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no rooms defined")
	}
	periods, err := s.periods.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load periods")
	}
	if len(periods) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no periods defined")
	}

	engine, err := newTimetableEngine(rooms, periods, demand.sections, s.newRand())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "invalid period catalog")
	}

	result := &templateResult{}
	for _, section := range demand.sections {
		assignments, diagnostics := engine.placeSection(section)
		result.assignments = append(result.assignments, assignments...)
		result.skipped = append(result.skipped, diagnostics...)
	}
	for _, diag := range result.skipped {
		s.logger.Warn("section placement incomplete",
			zap.String("section_id", diag.SectionID),
			zap.String("reason", diag.Reason))
	}

	sectionIDs := make([]string, 0, len(demand.sections))
	for _, section := range demand.sections {
		sectionIDs = append(sectionIDs, section.ID)
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.templates.DeleteBySections(ctx, tx, sectionIDs); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear previous template")
		return nil, err
	}
	if err = s.templates.InsertBatch(ctx, tx, result.assignments); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store template")
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit template")
		return nil, err
	}

	s.logger.Info("template regenerated",
		zap.String("program_id", demand.program.ID),
		zap.String("term_code", demand.termCode),
		zap.Int("sections", len(demand.sections)),
		zap.Int("placed", len(result.assignments)),
		zap.Int("skipped", len(result.skipped)))
	return result, nil
}

// Template returns the stored canonical-week template for the program.
func (s *TimetableService) Template(ctx context.Context, query dto.TemplateQuery) ([]models.TemplateAssignment, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid template query")
	}
	demand, err := s.resolveDemand(ctx, query.ProgramID, "")
	if err != nil {
		return nil, err
	}
	sectionIDs := make([]string, 0, len(demand.sections))
	for _, section := range demand.sections {
		sectionIDs = append(sectionIDs, section.ID)
	}
	assignments, err := s.templates.ListBySections(ctx, sectionIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list template")
	}
	return assignments, nil
}

// --- Term replication ---

// GenerateTermSchedule regenerates the template and replicates it into dated
// sessions for every week of the term. With Async set the run is queued and
// only a job reference is returned.
func (s *TimetableService) GenerateTermSchedule(ctx context.Context, req dto.GenerateTermScheduleRequest) (*dto.GenerateTermScheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid term generation payload")
	}
	if req.WeekCount > s.cfg.MaxWeekCount {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("weekCount must not exceed %d", s.cfg.MaxWeekCount))
	}

	if req.Async {
		return s.enqueueGeneration(req)
	}
	return s.generateTermSchedule(ctx, req)
}

func (s *TimetableService) enqueueGeneration(req dto.GenerateTermScheduleRequest) (*dto.GenerateTermScheduleResponse, error) {
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "background queue unavailable")
	}
	req.Async = false
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode generation job")
	}
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    jobTypeTermGeneration,
		Key:     fmt.Sprintf("%s:%s", req.ProgramID, req.TermID),
		Payload: payload,
	}
	if err := s.queue.Enqueue(job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "generation already in progress")
	}
	s.logger.Info("term generation queued",
		zap.String("job_id", job.ID),
		zap.String("program_id", req.ProgramID),
		zap.String("term_id", req.TermID))
	return &dto.GenerateTermScheduleResponse{
		ProgramID: req.ProgramID,
		TermID:    req.TermID,
		Queued:    true,
		JobID:     job.ID,
	}, nil
}

const jobTypeTermGeneration = "timetable.generate_term"

// RunGenerationJob is the queue handler for async term generation.
func (s *TimetableService) RunGenerationJob(ctx context.Context, job jobs.Job) error {
	raw, ok := job.Payload.([]byte)
	if !ok {
		return fmt.Errorf("job %s: unexpected payload type %T", job.ID, job.Payload)
	}
	var req dto.GenerateTermScheduleRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return fmt.Errorf("job %s: decode payload: %w", job.ID, err)
	}
	resp, err := s.generateTermSchedule(ctx, req)
	if err != nil {
		return fmt.Errorf("job %s: %w", job.ID, err)
	}
	s.logger.Info("queued term generation finished",
		zap.String("job_id", job.ID),
		zap.String("program_id", req.ProgramID),
		zap.Int("sessions", resp.SessionsCreated))
	return nil
}

func (s *TimetableService) generateTermSchedule(ctx context.Context, req dto.GenerateTermScheduleRequest) (*dto.GenerateTermScheduleResponse, error) {
	started := time.Now()

	term, err := s.resolveTerm(ctx, req.TermID)
	if err != nil {
		s.recordGeneration("error", started)
		return nil, err
	}
	weeks := s.resolveWeekCount(req.WeekCount, term)

	demand, err := s.resolveDemand(ctx, req.ProgramID, "")
	if err != nil {
		s.recordGeneration("error", started)
		return nil, err
	}

	resp := &dto.GenerateTermScheduleResponse{
		ProgramID: req.ProgramID,
		TermID:    term.ID,
		TermCode:  demand.termCode,
		WeekCount: weeks,
	}
	if len(demand.sections) == 0 {
		s.logger.Info("nothing to schedule",
			zap.String("program_id", req.ProgramID),
			zap.String("term_id", term.ID))
		s.recordGeneration("empty", started)
		return resp, nil
	}

	// The template is always rebuilt so the replicated term reflects current
	// rooms, periods and enrollment.
	result, err := s.buildAndStoreTemplate(ctx, demand)
	if err != nil {
		s.recordGeneration("error", started)
		return nil, err
	}

	periods, err := s.periods.ListAll(ctx)
	if err != nil {
		s.recordGeneration("error", started)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load periods")
	}
	dayByPeriod := make(map[string]int, len(periods))
	for _, period := range periods {
		dayByPeriod[period.ID] = dayStringToIndex(period.DayOfWeek)
	}

	sessions := replicateTemplate(term, result.assignments, dayByPeriod, weeks)

	sectionIDs := make([]string, 0, len(demand.sections))
	for _, section := range demand.sections {
		sectionIDs = append(sectionIDs, section.ID)
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		s.recordGeneration("error", started)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.sessions.DeleteByTermAndSections(ctx, tx, term.ID, sectionIDs); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear previous sessions")
		s.recordGeneration("error", started)
		return nil, err
	}
	if err = s.sessions.InsertBatch(ctx, tx, sessions); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store sessions")
		s.recordGeneration("error", started)
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit sessions")
		s.recordGeneration("error", started)
		return nil, err
	}

	s.invalidateViews(ctx, req.ProgramID)
	s.recordGeneration("ok", started)
	s.logger.Info("term schedule generated",
		zap.String("program_id", req.ProgramID),
		zap.String("term_id", term.ID),
		zap.Int("weeks", weeks),
		zap.Int("sessions", len(sessions)))

	resp.PlacedSessions = len(result.assignments)
	resp.SessionsCreated = len(sessions)
	resp.Skipped = result.skipped
	return resp, nil
}

func (s *TimetableService) resolveWeekCount(requested int, term *models.Term) int {
	weeks := requested
	if weeks <= 0 {
		weeks = term.WeekCount
	}
	if weeks <= 0 {
		weeks = s.cfg.DefaultWeekCount
	}
	if weeks > s.cfg.MaxWeekCount {
		weeks = s.cfg.MaxWeekCount
	}
	return weeks
}

// anchorMonday returns the first Monday on or after the term start date.
func anchorMonday(start time.Time) time.Time {
	offset := (7 + int(time.Monday) - int(start.Weekday())) % 7
	return start.AddDate(0, 0, offset)
}

// replicateTemplate projects each template assignment onto every week of the
// term, dating sessions relative to the first Monday of the term.
func replicateTemplate(term *models.Term, assignments []models.TemplateAssignment, dayByPeriod map[string]int, weeks int) []models.ScheduledSession {
	anchor := anchorMonday(term.StartDate)
	sessions := make([]models.ScheduledSession, 0, len(assignments)*weeks)
	for week := 1; week <= weeks; week++ {
		for _, a := range assignments {
			day := dayByPeriod[a.PeriodID]
			if day == 0 {
				continue
			}
			sessions = append(sessions, models.ScheduledSession{
				TermID:     term.ID,
				SectionID:  a.SectionID,
				RoomID:     a.RoomID,
				PeriodID:   a.PeriodID,
				DayOfWeek:  day,
				WeekNumber: week,
				Date:       anchor.AddDate(0, 0, (week-1)*7+(day-1)),
			})
		}
	}
	return sessions
}

// --- Session queries ---

// SessionsForTerm lists a term's dated sessions for the program, served from
// cache when possible.
func (s *TimetableService) SessionsForTerm(ctx context.Context, query dto.SessionQuery) ([]models.ScheduledSession, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session query")
	}
	term, err := s.resolveTerm(ctx, query.TermID)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("timetable:%s:%s:all", query.ProgramID, term.ID)
	return s.cachedSessions(ctx, key, func() ([]models.ScheduledSession, error) {
		demand, err := s.resolveDemand(ctx, query.ProgramID, "")
		if err != nil {
			return nil, err
		}
		return s.listSessions(ctx, term.ID, 0, demand.sections)
	})
}

// SessionsForWeek lists one week of the term's sessions for the program.
func (s *TimetableService) SessionsForWeek(ctx context.Context, query dto.WeekQuery) ([]models.ScheduledSession, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid week query")
	}
	term, err := s.resolveTerm(ctx, query.TermID)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("timetable:%s:%s:week:%d", query.ProgramID, term.ID, query.Week)
	return s.cachedSessions(ctx, key, func() ([]models.ScheduledSession, error) {
		demand, err := s.resolveDemand(ctx, query.ProgramID, "")
		if err != nil {
			return nil, err
		}
		return s.listSessions(ctx, term.ID, query.Week, demand.sections)
	})
}

// SessionsForTermCode lists sessions for the program's curriculum at an
// explicit term code.
func (s *TimetableService) SessionsForTermCode(ctx context.Context, query dto.TermCodeQuery) ([]models.ScheduledSession, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid term code query")
	}
	term, err := s.resolveTerm(ctx, query.TermID)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("timetable:%s:%s:code:%s", query.ProgramID, term.ID, query.TermCode)
	return s.cachedSessions(ctx, key, func() ([]models.ScheduledSession, error) {
		demand, err := s.resolveDemand(ctx, query.ProgramID, query.TermCode)
		if err != nil {
			return nil, err
		}
		return s.listSessions(ctx, term.ID, 0, demand.sections)
	})
}

func (s *TimetableService) listSessions(ctx context.Context, termID string, week int, sections []models.CourseSection) ([]models.ScheduledSession, error) {
	if len(sections) == 0 {
		return nil, nil
	}
	sectionIDs := make([]string, 0, len(sections))
	for _, section := range sections {
		sectionIDs = append(sectionIDs, section.ID)
	}
	var (
		sessions []models.ScheduledSession
		err      error
	)
	if week > 0 {
		sessions, err = s.sessions.ListByTermWeek(ctx, termID, week, sectionIDs)
	} else {
		sessions, err = s.sessions.ListByTermAndSections(ctx, termID, sectionIDs)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	return sessions, nil
}

func (s *TimetableService) cachedSessions(ctx context.Context, key string, load func() ([]models.ScheduledSession, error)) ([]models.ScheduledSession, error) {
	if s.cache != nil {
		var cached []models.ScheduledSession
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			if s.metrics != nil {
				s.metrics.RecordCacheOperation(true)
			}
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("session cache read failed", zap.String("key", key), zap.Error(err))
		}
		if s.metrics != nil {
			s.metrics.RecordCacheOperation(false)
		}
	}
	sessions, err := load()
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, sessions, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("session cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return sessions, nil
}

func (s *TimetableService) invalidateViews(ctx context.Context, programID string) {
	if s.cache == nil {
		return
	}
	pattern := fmt.Sprintf("timetable:%s:*", programID)
	if err := s.cache.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("cache invalidation failed", zap.String("pattern", pattern), zap.Error(err))
	}
}

func (s *TimetableService) recordGeneration(outcome string, started time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordGeneration(outcome, time.Since(started))
}
