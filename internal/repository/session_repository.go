package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uniops-api/internal/models"
)

// SessionRepository persists dated scheduled sessions for a term.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

const sessionColumns = `id, term_id, section_id, room_id, period_id, day_of_week, week_number, session_date, created_at, updated_at`

// DeleteByTermAndSections removes every prior session of the term scoped to
// the sections being regenerated.
func (r *SessionRepository) DeleteByTermAndSections(ctx context.Context, exec sqlx.ExtContext, termID string, sectionIDs []string) error {
	if len(sectionIDs) == 0 {
		return nil
	}
	target := r.exec(exec)
	query, args, err := sqlx.In(`DELETE FROM scheduled_sessions WHERE term_id = ? AND section_id IN (?)`, termID, sectionIDs)
	if err != nil {
		return fmt.Errorf("build session delete: %w", err)
	}
	query = target.Rebind(query)
	if _, err := target.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete scheduled sessions: %w", err)
	}
	return nil
}

// InsertBatch stores replicated sessions.
func (r *SessionRepository) InsertBatch(ctx context.Context, exec sqlx.ExtContext, sessions []models.ScheduledSession) error {
	target := r.exec(exec)
	const query = `
INSERT INTO scheduled_sessions (id, term_id, section_id, room_id, period_id, day_of_week, week_number, session_date, created_at, updated_at)
VALUES (:id, :term_id, :section_id, :room_id, :period_id, :day_of_week, :week_number, :session_date, :created_at, :updated_at)`
	now := time.Now().UTC()
	for i := range sessions {
		if sessions[i].ID == "" {
			sessions[i].ID = uuid.NewString()
		}
		if sessions[i].CreatedAt.IsZero() {
			sessions[i].CreatedAt = now
		}
		sessions[i].UpdatedAt = now
		if _, err := sqlx.NamedExecContext(ctx, target, query, sessions[i]); err != nil {
			return fmt.Errorf("insert scheduled session: %w", err)
		}
	}
	return nil
}

// ListByTermAndSections returns a term's sessions for the given sections
// ordered by week, day and period.
func (r *SessionRepository) ListByTermAndSections(ctx context.Context, termID string, sectionIDs []string) ([]models.ScheduledSession, error) {
	if len(sectionIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(
		fmt.Sprintf(`SELECT %s FROM scheduled_sessions WHERE term_id = ? AND section_id IN (?) ORDER BY week_number ASC, day_of_week ASC, period_id ASC`, sessionColumns),
		termID, sectionIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("build session query: %w", err)
	}
	query = r.db.Rebind(query)

	var sessions []models.ScheduledSession
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, fmt.Errorf("list scheduled sessions: %w", err)
	}
	return sessions, nil
}

// ListByTermWeek returns one week of a term's sessions for the given sections.
func (r *SessionRepository) ListByTermWeek(ctx context.Context, termID string, week int, sectionIDs []string) ([]models.ScheduledSession, error) {
	if len(sectionIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(
		fmt.Sprintf(`SELECT %s FROM scheduled_sessions WHERE term_id = ? AND week_number = ? AND section_id IN (?) ORDER BY day_of_week ASC, period_id ASC`, sessionColumns),
		termID, week, sectionIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("build session week query: %w", err)
	}
	query = r.db.Rebind(query)

	var sessions []models.ScheduledSession
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, fmt.Errorf("list scheduled sessions for week: %w", err)
	}
	return sessions, nil
}
