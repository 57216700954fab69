package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/uniops-api/internal/dto"
	"github.com/noah-isme/uniops-api/internal/models"
	appErrors "github.com/noah-isme/uniops-api/pkg/errors"
	"github.com/noah-isme/uniops-api/pkg/export"
)

type weekSessionLister interface {
	SessionsForWeek(ctx context.Context, query dto.WeekQuery) ([]models.ScheduledSession, error)
}

// ExportService renders one week of a program's timetable into downloadable
// CSV or PDF files.
type ExportService struct {
	timetable weekSessionLister
	rooms     roomCatalog
	periods   periodCatalog
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewExportService wires export dependencies.
func NewExportService(timetable weekSessionLister, rooms roomCatalog, periods periodCatalog, validate *validator.Validate, logger *zap.Logger) *ExportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		timetable: timetable,
		rooms:     rooms,
		periods:   periods,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(true),
		validator: validate,
		logger:    logger,
	}
}

// ExportedFile is a rendered timetable document ready for download.
type ExportedFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportWeek renders the requested week in the requested format. Format
// defaults to CSV.
func (s *ExportService) ExportWeek(ctx context.Context, query dto.ExportWeekQuery) (*ExportedFile, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export query")
	}

	sessions, err := s.timetable.SessionsForWeek(ctx, dto.WeekQuery{
		ProgramID: query.ProgramID,
		TermID:    query.TermID,
		Week:      query.Week,
	})
	if err != nil {
		return nil, err
	}

	table, err := s.buildWeekTable(ctx, sessions)
	if err != nil {
		return nil, err
	}

	format := query.Format
	if format == "" {
		format = "csv"
	}

	switch format {
	case "csv":
		data, err := s.csv.Render(*table)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportedFile{
			Filename:    fmt.Sprintf("timetable_week_%d.csv", query.Week),
			ContentType: "text/csv",
			Data:        data,
		}, nil
	case "pdf":
		data, err := s.pdf.Render(*table, fmt.Sprintf("Timetable Week %d", query.Week))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportedFile{
			Filename:    fmt.Sprintf("timetable_week_%d.pdf", query.Week),
			ContentType: "application/pdf",
			Data:        data,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

func (s *ExportService) buildWeekTable(ctx context.Context, sessions []models.ScheduledSession) (*export.Table, error) {
	rooms, err := s.rooms.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	roomNames := make(map[string]string, len(rooms))
	for _, room := range rooms {
		roomNames[room.ID] = room.Name
	}

	periods, err := s.periods.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load periods")
	}
	periodByID := make(map[string]models.Period, len(periods))
	for _, period := range periods {
		periodByID[period.ID] = period
	}

	ordered := make([]models.ScheduledSession, len(sessions))
	copy(ordered, sessions)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].DayOfWeek != ordered[j].DayOfWeek {
			return ordered[i].DayOfWeek < ordered[j].DayOfWeek
		}
		return periodByID[ordered[i].PeriodID].Number < periodByID[ordered[j].PeriodID].Number
	})

	table := &export.Table{
		Headers: []string{"Date", "Day", "Period", "Time", "Room", "Section"},
	}
	for _, session := range ordered {
		period := periodByID[session.PeriodID]
		roomName := roomNames[session.RoomID]
		if roomName == "" {
			roomName = session.RoomID
		}
		table.Rows = append(table.Rows, []string{
			session.Date.Format("2006-01-02"),
			dayIndexToName(session.DayOfWeek),
			fmt.Sprintf("%d", period.Number),
			fmt.Sprintf("%s-%s", period.StartTime, period.EndTime),
			roomName,
			session.SectionID,
		})
	}
	return table, nil
}
