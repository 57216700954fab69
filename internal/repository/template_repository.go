package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uniops-api/internal/models"
)

// TemplateRepository persists the canonical-week template assignments.
// Delete and insert take an ExtContext so the service can scope a full
// replace inside one transaction.
type TemplateRepository struct {
	db *sqlx.DB
}

// NewTemplateRepository creates a new template repository.
func NewTemplateRepository(db *sqlx.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

func (r *TemplateRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// ListBySections returns template assignments for the given sections ordered
// by section and period.
func (r *TemplateRepository) ListBySections(ctx context.Context, sectionIDs []string) ([]models.TemplateAssignment, error) {
	if len(sectionIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT id, section_id, room_id, period_id, created_at FROM template_assignments WHERE section_id IN (?) ORDER BY section_id ASC, period_id ASC`, sectionIDs)
	if err != nil {
		return nil, fmt.Errorf("build template query: %w", err)
	}
	query = r.db.Rebind(query)

	var assignments []models.TemplateAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, fmt.Errorf("list template assignments: %w", err)
	}
	return assignments, nil
}

// DeleteBySections removes all template assignments for the given sections.
func (r *TemplateRepository) DeleteBySections(ctx context.Context, exec sqlx.ExtContext, sectionIDs []string) error {
	if len(sectionIDs) == 0 {
		return nil
	}
	target := r.exec(exec)
	query, args, err := sqlx.In(`DELETE FROM template_assignments WHERE section_id IN (?)`, sectionIDs)
	if err != nil {
		return fmt.Errorf("build template delete: %w", err)
	}
	query = target.Rebind(query)
	if _, err := target.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete template assignments: %w", err)
	}
	return nil
}

// InsertBatch stores a set of freshly generated assignments.
func (r *TemplateRepository) InsertBatch(ctx context.Context, exec sqlx.ExtContext, assignments []models.TemplateAssignment) error {
	target := r.exec(exec)
	const query = `
INSERT INTO template_assignments (id, section_id, room_id, period_id, created_at)
VALUES (:id, :section_id, :room_id, :period_id, :created_at)`
	now := time.Now().UTC()
	for i := range assignments {
		if assignments[i].ID == "" {
			assignments[i].ID = uuid.NewString()
		}
		if assignments[i].CreatedAt.IsZero() {
			assignments[i].CreatedAt = now
		}
		if _, err := sqlx.NamedExecContext(ctx, target, query, assignments[i]); err != nil {
			return fmt.Errorf("insert template assignment: %w", err)
		}
	}
	return nil
}
