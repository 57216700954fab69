package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uniops-api/internal/dto"
	"github.com/noah-isme/uniops-api/internal/models"
	"github.com/noah-isme/uniops-api/internal/service"
	appErrors "github.com/noah-isme/uniops-api/pkg/errors"
	"github.com/noah-isme/uniops-api/pkg/response"
)

type timetableGenerator interface {
	GenerateTemplate(ctx context.Context, req dto.GenerateTemplateRequest) (*dto.GenerateTemplateResponse, error)
	GenerateTermSchedule(ctx context.Context, req dto.GenerateTermScheduleRequest) (*dto.GenerateTermScheduleResponse, error)
	Template(ctx context.Context, query dto.TemplateQuery) ([]models.TemplateAssignment, error)
	SessionsForTerm(ctx context.Context, query dto.SessionQuery) ([]models.ScheduledSession, error)
	SessionsForWeek(ctx context.Context, query dto.WeekQuery) ([]models.ScheduledSession, error)
	SessionsForTermCode(ctx context.Context, query dto.TermCodeQuery) ([]models.ScheduledSession, error)
}

// TimetableHandler exposes timetable generation and query endpoints.
type TimetableHandler struct {
	service timetableGenerator
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(svc *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// GenerateTemplate godoc
// @Summary Regenerate the canonical-week template for a program
// @Description Rebuilds every section's template assignments for the program's current term code. Previous assignments are replaced.
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.GenerateTemplateRequest true "Template generation payload"
// @Success 200 {object} response.Envelope
// @Router /timetable/template/generate [post]
func (h *TimetableHandler) GenerateTemplate(c *gin.Context) {
	var req dto.GenerateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid template generation payload"))
		return
	}
	result, err := h.service.GenerateTemplate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Template godoc
// @Summary Get the stored canonical-week template
// @Tags Timetable
// @Produce json
// @Param programId query string true "Program ID"
// @Success 200 {object} response.Envelope
// @Router /timetable/template [get]
func (h *TimetableHandler) Template(c *gin.Context) {
	query := dto.TemplateQuery{ProgramID: c.Query("programId")}
	assignments, err := h.service.Template(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// GenerateTerm godoc
// @Summary Generate the full dated schedule for a term
// @Description Regenerates the template and replicates it across the term's weeks. With async=true the run is queued and a job id returned.
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.GenerateTermScheduleRequest true "Term generation payload"
// @Success 200 {object} response.Envelope
// @Success 202 {object} response.Envelope
// @Router /timetable/generate [post]
func (h *TimetableHandler) GenerateTerm(c *gin.Context) {
	var req dto.GenerateTermScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid term generation payload"))
		return
	}
	result, err := h.service.GenerateTermSchedule(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if result.Queued {
		response.Accepted(c, result)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Sessions godoc
// @Summary List a term's dated sessions for a program
// @Tags Timetable
// @Produce json
// @Param programId query string true "Program ID"
// @Param termId query string false "Term ID, defaults to the latest term"
// @Success 200 {object} response.Envelope
// @Router /timetable/sessions [get]
func (h *TimetableHandler) Sessions(c *gin.Context) {
	query := dto.SessionQuery{
		ProgramID: c.Query("programId"),
		TermID:    c.Query("termId"),
	}
	sessions, err := h.service.SessionsForTerm(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, nil)
}

// SessionsWeek godoc
// @Summary List one week of a term's sessions
// @Tags Timetable
// @Produce json
// @Param programId query string true "Program ID"
// @Param termId query string false "Term ID, defaults to the latest term"
// @Param week query int true "Week number starting at 1"
// @Success 200 {object} response.Envelope
// @Router /timetable/sessions/week [get]
func (h *TimetableHandler) SessionsWeek(c *gin.Context) {
	week, err := strconv.Atoi(c.DefaultQuery("week", "0"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "week must be a number"))
		return
	}
	query := dto.WeekQuery{
		ProgramID: c.Query("programId"),
		TermID:    c.Query("termId"),
		Week:      week,
	}
	sessions, err := h.service.SessionsForWeek(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, nil)
}

// SessionsByTermCode godoc
// @Summary List sessions for a program's curriculum at an explicit term code
// @Tags Timetable
// @Produce json
// @Param programId query string true "Program ID"
// @Param termCode query string true "Curriculum term code, e.g. TERM_1_1"
// @Param termId query string false "Term ID, defaults to the latest term"
// @Success 200 {object} response.Envelope
// @Router /timetable/sessions/by-term-code [get]
func (h *TimetableHandler) SessionsByTermCode(c *gin.Context) {
	query := dto.TermCodeQuery{
		ProgramID: c.Query("programId"),
		TermCode:  c.Query("termCode"),
		TermID:    c.Query("termId"),
	}
	sessions, err := h.service.SessionsForTermCode(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, nil)
}
