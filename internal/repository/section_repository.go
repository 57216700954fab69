package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uniops-api/internal/models"
)

// SectionRepository reads course sections with their credit load joined in.
type SectionRepository struct {
	db *sqlx.DB
}

// NewSectionRepository creates a new section repository.
func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

const sectionColumns = `cs.id, cs.course_id, cs.teacher_id, cs.max_students, cs.min_students, c.credits, cs.created_at, cs.updated_at`

// ListByCourseIDs returns every section belonging to the given courses.
func (r *SectionRepository) ListByCourseIDs(ctx context.Context, courseIDs []string) ([]models.CourseSection, error) {
	if len(courseIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(
		fmt.Sprintf(`SELECT %s FROM course_sections cs JOIN courses c ON c.id = cs.course_id WHERE cs.course_id IN (?) ORDER BY c.code ASC, cs.id ASC`, sectionColumns),
		courseIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("build section query: %w", err)
	}
	query = r.db.Rebind(query)

	var sections []models.CourseSection
	if err := r.db.SelectContext(ctx, &sections, query, args...); err != nil {
		return nil, fmt.Errorf("list sections by courses: %w", err)
	}
	return sections, nil
}

// FindByID loads a single section.
func (r *SectionRepository) FindByID(ctx context.Context, id string) (*models.CourseSection, error) {
	query := fmt.Sprintf(`SELECT %s FROM course_sections cs JOIN courses c ON c.id = cs.course_id WHERE cs.id = $1`, sectionColumns)
	var section models.CourseSection
	if err := r.db.GetContext(ctx, &section, query, id); err != nil {
		return nil, err
	}
	return &section, nil
}
