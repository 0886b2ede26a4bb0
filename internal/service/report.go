package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ICMVRD/sb1-hdboxt/internal/clock"
	"github.com/ICMVRD/sb1-hdboxt/internal/domain"
	"github.com/ICMVRD/sb1-hdboxt/internal/repo"
	"github.com/ICMVRD/sb1-hdboxt/internal/report"
)

// Report formats accepted by Render.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

// DisplaySource supplies the display fields printed on the report header.
type DisplaySource interface {
	Display() domain.Settings
}

// ReportUploader stores a rendered report and returns where it went.
type ReportUploader interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// RenderedReport is a report encoded in one of the file formats.
type RenderedReport struct {
	ContentType string
	Filename    string
	Body        []byte
}

// ReportService builds the admin report from the current reservations.
type ReportService struct {
	repo     repo.ReservationRepo
	display  DisplaySource
	clock    clock.Clock
	uploader ReportUploader
	log      *zap.Logger
}

// NewReportService constructs a ReportService. uploader may be nil, in which
// case Archive reports ErrNotConfigured.
func NewReportService(
	r repo.ReservationRepo,
	display DisplaySource,
	clk clock.Clock,
	uploader ReportUploader,
	log *zap.Logger,
) *ReportService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReportService{repo: r, display: display, clock: clk, uploader: uploader, log: log}
}

// Build snapshots the reservations together with the display settings.
func (s *ReportService) Build(ctx context.Context) (domain.Report, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return domain.Report{}, fmt.Errorf("service.ReportService.Build: %w", err)
	}
	if rows == nil {
		rows = []domain.Reservation{}
	}
	return domain.Report{
		Settings:    s.display.Display(),
		GeneratedAt: s.clock.Now(),
		Rows:        rows,
	}, nil
}

// Render builds the report and encodes it as format (csv or pdf).
func (s *ReportService) Render(ctx context.Context, format string) (RenderedReport, error) {
	var encode func(domain.Report) ([]byte, error)
	var contentType string
	switch format {
	case FormatCSV:
		encode, contentType = report.CSV, report.ContentTypeCSV
	case FormatPDF:
		encode, contentType = report.PDF, report.ContentTypePDF
	default:
		return RenderedReport{}, fmt.Errorf("service.ReportService.Render: %w: unknown format %q", domain.ErrValidation, format)
	}

	rep, err := s.Build(ctx)
	if err != nil {
		return RenderedReport{}, fmt.Errorf("service.ReportService.Render: %w", err)
	}

	body, err := encode(rep)
	if err != nil {
		return RenderedReport{}, fmt.Errorf("service.ReportService.Render: %w", err)
	}

	return RenderedReport{
		ContentType: contentType,
		Filename:    "reservations-" + rep.GeneratedAt.UTC().Format("20060102-150405") + "." + format,
		Body:        body,
	}, nil
}

// Archive renders the PDF report and uploads it. It returns the stored
// object location.
func (s *ReportService) Archive(ctx context.Context) (string, error) {
	if s.uploader == nil {
		return "", fmt.Errorf("service.ReportService.Archive: report archive %w", domain.ErrNotConfigured)
	}

	rep, err := s.Build(ctx)
	if err != nil {
		return "", fmt.Errorf("service.ReportService.Archive: %w", err)
	}

	body, err := report.PDF(rep)
	if err != nil {
		return "", fmt.Errorf("service.ReportService.Archive: %w", err)
	}

	location, err := s.uploader.Upload(ctx, report.ObjectKey(rep.GeneratedAt), report.ContentTypePDF, body)
	if err != nil {
		return "", fmt.Errorf("service.ReportService.Archive: %w", err)
	}

	s.log.Info("report archived", zap.String("location", location), zap.Int("rows", len(rep.Rows)))
	return location, nil
}
