package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/districtops/transport-api/internal/models"
	appErrors "github.com/districtops/transport-api/pkg/errors"
	"github.com/districtops/transport-api/pkg/export"
)

type exportActivityReader interface {
	List(ctx context.Context, filter models.ActivityFilter) ([]models.Activity, int, error)
}

// ExportService renders activity schedules as CSV or PDF trip sheets.
type ExportService struct {
	activities exportActivityReader
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	logger     *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(activities exportActivityReader, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		activities: activities,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		logger:     logger,
	}
}

// ExportSchedule renders all activities inside the date range. Format must be
// "csv" or "pdf"; the returned string is the media type.
func (s *ExportService) ExportSchedule(ctx context.Context, from, to time.Time, format string) ([]byte, string, error) {
	filter := models.ActivityFilter{
		DateFrom: &from,
		DateTo:   &to,
		PageSize: 100,
		SortBy:   "activity_date",
	}

	var rows [][]string
	for page := 1; ; page++ {
		filter.Page = page
		activities, total, err := s.activities.List(ctx, filter)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activities for export")
		}
		for _, a := range activities {
			rows = append(rows, []string{
				a.Date.Format("2006-01-02"),
				a.LeaveTime.String(),
				a.ReturnTime.String(),
				a.ActivityType,
				a.Destination,
				formatID(a.DriverID),
				formatID(a.VehicleID),
				fmt.Sprintf("%d", a.ExpectedPassengers),
				string(a.Status),
			})
		}
		if len(rows) >= total || len(activities) == 0 {
			break
		}
	}

	sheet := export.TripSheet{
		Title: fmt.Sprintf("Transport schedule %s to %s", from.Format("2006-01-02"), to.Format("2006-01-02")),
		Columns: []export.Column{
			{Header: "Date", Weight: 1.2},
			{Header: "Leave", Weight: 0.8},
			{Header: "Return", Weight: 0.8},
			{Header: "Type", Weight: 1.2},
			{Header: "Destination", Weight: 2.5},
			{Header: "Driver", Weight: 0.8},
			{Header: "Vehicle", Weight: 0.8},
			{Header: "Passengers", Weight: 1},
			{Header: "Status", Weight: 1.2},
		},
		Rows: rows,
	}

	switch format {
	case "csv":
		payload, err := s.csv.Render(sheet)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return payload, "text/csv", nil
	case "pdf":
		payload, err := s.pdf.Render(sheet)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}

func formatID(id int64) string {
	if id <= 0 {
		return ""
	}
	return fmt.Sprintf("%d", id)
}
