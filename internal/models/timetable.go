package models

import "time"

// TemplateAssignment places one session of a section into a (room, period)
// slot within the canonical week. Assignments for a section are fully
// regenerated on every run; there is no incremental diffing.
type TemplateAssignment struct {
	ID        string    `db:"id" json:"id"`
	SectionID string    `db:"section_id" json:"section_id"`
	RoomID    string    `db:"room_id" json:"room_id"`
	PeriodID  string    `db:"period_id" json:"period_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ScheduledSession is a template assignment replicated onto a concrete week
// and calendar date within a term.
type ScheduledSession struct {
	ID         string    `db:"id" json:"id"`
	TermID     string    `db:"term_id" json:"term_id"`
	SectionID  string    `db:"section_id" json:"section_id"`
	RoomID     string    `db:"room_id" json:"room_id"`
	PeriodID   string    `db:"period_id" json:"period_id"`
	DayOfWeek  int       `db:"day_of_week" json:"day_of_week"`
	WeekNumber int       `db:"week_number" json:"week_number"`
	Date       time.Time `db:"session_date" json:"date"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// SectionDiagnostic records why a section (or one of its sessions) could not
// be placed. Infeasibility is reported, never fatal to the run.
type SectionDiagnostic struct {
	SectionID string `json:"section_id"`
	Reason    string `json:"reason"`
}
