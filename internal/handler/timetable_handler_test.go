package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uniops-api/internal/dto"
	"github.com/noah-isme/uniops-api/internal/models"
	appErrors "github.com/noah-isme/uniops-api/pkg/errors"
)

type timetableServiceMock struct {
	templateReq dto.GenerateTemplateRequest
	termReq     dto.GenerateTermScheduleRequest
	weekQuery   dto.WeekQuery
	queued      bool
	err         error
}

func (m *timetableServiceMock) GenerateTemplate(ctx context.Context, req dto.GenerateTemplateRequest) (*dto.GenerateTemplateResponse, error) {
	m.templateReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &dto.GenerateTemplateResponse{ProgramID: req.ProgramID, TermCode: "TERM_1_1", PlacedSessions: 3}, nil
}

func (m *timetableServiceMock) GenerateTermSchedule(ctx context.Context, req dto.GenerateTermScheduleRequest) (*dto.GenerateTermScheduleResponse, error) {
	m.termReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &dto.GenerateTermScheduleResponse{ProgramID: req.ProgramID, SessionsCreated: 30, Queued: m.queued, JobID: "job-1"}, nil
}

func (m *timetableServiceMock) Template(ctx context.Context, query dto.TemplateQuery) ([]models.TemplateAssignment, error) {
	return []models.TemplateAssignment{{ID: "ta-1", SectionID: "sec-1"}}, nil
}

func (m *timetableServiceMock) SessionsForTerm(ctx context.Context, query dto.SessionQuery) ([]models.ScheduledSession, error) {
	return []models.ScheduledSession{{ID: "s-1"}}, nil
}

func (m *timetableServiceMock) SessionsForWeek(ctx context.Context, query dto.WeekQuery) ([]models.ScheduledSession, error) {
	m.weekQuery = query
	return []models.ScheduledSession{{ID: "s-1", WeekNumber: query.Week}}, nil
}

func (m *timetableServiceMock) SessionsForTermCode(ctx context.Context, query dto.TermCodeQuery) ([]models.ScheduledSession, error) {
	return nil, m.err
}

func TestTimetableHandlerGenerateTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &timetableServiceMock{}
	h := &TimetableHandler{service: mockSvc}

	body := []byte(`{"programId":"prog-1"}`)
	req, _ := http.NewRequest(http.MethodPost, "/timetable/template/generate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.GenerateTemplate(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "prog-1", mockSvc.templateReq.ProgramID)
}

func TestTimetableHandlerGenerateTemplateBadJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &TimetableHandler{service: &timetableServiceMock{}}

	req, _ := http.NewRequest(http.MethodPost, "/timetable/template/generate", bytes.NewReader([]byte(`{"programId":`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.GenerateTemplate(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimetableHandlerGenerateTermQueued(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &timetableServiceMock{queued: true}
	h := &TimetableHandler{service: mockSvc}

	body := []byte(`{"programId":"prog-1","termId":"term-1","async":true}`)
	req, _ := http.NewRequest(http.MethodPost, "/timetable/generate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.GenerateTerm(c)

	require.Equal(t, http.StatusAccepted, w.Code)
	require.True(t, mockSvc.termReq.Async)
}

func TestTimetableHandlerSessionsWeek(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &timetableServiceMock{}
	h := &TimetableHandler{service: mockSvc}

	req, _ := http.NewRequest(http.MethodGet, "/timetable/sessions/week?programId=prog-1&termId=term-1&week=4", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.SessionsWeek(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 4, mockSvc.weekQuery.Week)
	require.Equal(t, "prog-1", mockSvc.weekQuery.ProgramID)
}

func TestTimetableHandlerSessionsWeekBadWeek(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &TimetableHandler{service: &timetableServiceMock{}}

	req, _ := http.NewRequest(http.MethodGet, "/timetable/sessions/week?programId=prog-1&week=abc", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.SessionsWeek(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimetableHandlerServiceErrorPropagates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &timetableServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "program not found")}
	h := &TimetableHandler{service: mockSvc}

	body := []byte(`{"programId":"missing"}`)
	req, _ := http.NewRequest(http.MethodPost, "/timetable/template/generate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	h.GenerateTemplate(c)

	require.Equal(t, http.StatusNotFound, w.Code)

	var envelope struct {
		Error *appErrors.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, appErrors.ErrNotFound.Code, envelope.Error.Code)
}
