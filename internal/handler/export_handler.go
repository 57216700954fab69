package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uniops-api/internal/dto"
	"github.com/noah-isme/uniops-api/internal/service"
	appErrors "github.com/noah-isme/uniops-api/pkg/errors"
	"github.com/noah-isme/uniops-api/pkg/response"
)

type weekExporter interface {
	ExportWeek(ctx context.Context, query dto.ExportWeekQuery) (*service.ExportedFile, error)
}

// ExportHandler exposes timetable file export endpoints.
type ExportHandler struct {
	service weekExporter
}

// NewExportHandler constructs the handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// ExportWeek godoc
// @Summary Export one week of the timetable as CSV or PDF
// @Tags Timetable
// @Produce text/csv
// @Produce application/pdf
// @Param programId query string true "Program ID"
// @Param termId query string false "Term ID, defaults to the latest term"
// @Param week query int true "Week number starting at 1"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Router /timetable/export/week [get]
func (h *ExportHandler) ExportWeek(c *gin.Context) {
	week, err := strconv.Atoi(c.DefaultQuery("week", "0"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "week must be a number"))
		return
	}
	query := dto.ExportWeekQuery{
		ProgramID: c.Query("programId"),
		TermID:    c.Query("termId"),
		Week:      week,
		Format:    c.Query("format"),
	}
	file, err := h.service.ExportWeek(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
