package models

import "time"

// Program is a curriculum whose current term code scopes which courses are
// active in a generation run.
type Program struct {
	ID              string    `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	CurrentTermCode string    `db:"current_term_code" json:"current_term_code"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// ProgramCourse maps a course into a program's curriculum at a term code.
type ProgramCourse struct {
	ID        string    `db:"id" json:"id"`
	ProgramID string    `db:"program_id" json:"program_id"`
	CourseID  string    `db:"course_id" json:"course_id"`
	TermCode  string    `db:"term_code" json:"term_code"`
	Required  bool      `db:"required" json:"required"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
