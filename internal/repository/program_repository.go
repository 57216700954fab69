package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uniops-api/internal/models"
)

// ProgramRepository reads programs and their curriculum membership.
type ProgramRepository struct {
	db *sqlx.DB
}

// NewProgramRepository creates a new program repository.
func NewProgramRepository(db *sqlx.DB) *ProgramRepository {
	return &ProgramRepository{db: db}
}

// FindByID loads a program by id.
func (r *ProgramRepository) FindByID(ctx context.Context, id string) (*models.Program, error) {
	const query = `SELECT id, name, COALESCE(current_term_code, '') AS current_term_code, created_at, updated_at FROM programs WHERE id = $1`
	var program models.Program
	if err := r.db.GetContext(ctx, &program, query, id); err != nil {
		return nil, err
	}
	return &program, nil
}

// CourseIDsForTerm returns the ids of courses a program schedules at the
// given term code.
func (r *ProgramRepository) CourseIDsForTerm(ctx context.Context, programID, termCode string) ([]string, error) {
	const query = `SELECT course_id FROM program_courses WHERE program_id = $1 AND term_code = $2 ORDER BY course_id ASC`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, programID, termCode); err != nil {
		return nil, fmt.Errorf("list program courses for term: %w", err)
	}
	return ids, nil
}
