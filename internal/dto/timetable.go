package dto

import "github.com/noah-isme/uniops-api/internal/models"

// GenerateTemplateRequest rebuilds the canonical-week template for a program.
type GenerateTemplateRequest struct {
	ProgramID string `json:"programId" validate:"required"`
}

// GenerateTemplateResponse reports the regenerated template along with any
// sections or sessions that could not be placed.
type GenerateTemplateResponse struct {
	ProgramID      string                     `json:"programId"`
	TermCode       string                     `json:"termCode"`
	SectionCount   int                        `json:"sectionCount"`
	PlacedSessions int                        `json:"placedSessions"`
	Assignments    []models.TemplateAssignment `json:"assignments"`
	Skipped        []models.SectionDiagnostic  `json:"skipped,omitempty"`
}

// GenerateTermScheduleRequest regenerates the template and replicates it into
// dated sessions across the term. WeekCount zero falls back to the term's own
// week count, then the configured default.
type GenerateTermScheduleRequest struct {
	ProgramID string `json:"programId" validate:"required"`
	TermID    string `json:"termId"`
	WeekCount int    `json:"weekCount" validate:"omitempty,min=1"`
	Async     bool   `json:"async"`
}

// GenerateTermScheduleResponse summarises a term generation run. When the run
// was queued asynchronously only JobID and Queued are populated.
type GenerateTermScheduleResponse struct {
	ProgramID       string                     `json:"programId"`
	TermID          string                     `json:"termId,omitempty"`
	TermCode        string                     `json:"termCode,omitempty"`
	WeekCount       int                        `json:"weekCount,omitempty"`
	PlacedSessions  int                        `json:"placedSessions"`
	SessionsCreated int                        `json:"sessionsCreated"`
	Skipped         []models.SectionDiagnostic `json:"skipped,omitempty"`
	Queued          bool                       `json:"queued"`
	JobID           string                     `json:"jobId,omitempty"`
}

// TemplateQuery filters the stored canonical-week template.
type TemplateQuery struct {
	ProgramID string `form:"programId" json:"programId" validate:"required"`
}

// SessionQuery lists a term's dated sessions for a program.
type SessionQuery struct {
	ProgramID string `form:"programId" json:"programId" validate:"required"`
	TermID    string `form:"termId" json:"termId"`
}

// WeekQuery narrows a session listing to one week of the term.
type WeekQuery struct {
	ProgramID string `form:"programId" json:"programId" validate:"required"`
	TermID    string `form:"termId" json:"termId"`
	Week      int    `form:"week" json:"week" validate:"required,min=1"`
}

// TermCodeQuery lists sessions for the program's curriculum at an explicit
// term code rather than the program's current one.
type TermCodeQuery struct {
	ProgramID string `form:"programId" json:"programId" validate:"required"`
	TermCode  string `form:"termCode" json:"termCode" validate:"required"`
	TermID    string `form:"termId" json:"termId"`
}

// ExportWeekQuery selects one week of sessions for file export.
type ExportWeekQuery struct {
	ProgramID string `form:"programId" json:"programId" validate:"required"`
	TermID    string `form:"termId" json:"termId"`
	Week      int    `form:"week" json:"week" validate:"required,min=1"`
	Format    string `form:"format" json:"format" validate:"omitempty,oneof=csv pdf"`
}
