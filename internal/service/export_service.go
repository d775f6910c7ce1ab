package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/RubachokBoss/submission-report/internal/metrics"
	"github.com/RubachokBoss/submission-report/internal/models"
	"github.com/RubachokBoss/submission-report/internal/report"
)

const (
	FormatHTML = "html"
	FormatPDF  = "pdf"
)

// Publisher delivers a rendered document and returns where it ended up.
type Publisher interface {
	Publish(ctx context.Context, doc *models.Document) (string, error)
}

// PDFConverter prints an HTML document to PDF.
type PDFConverter interface {
	ConvertHTML(ctx context.Context, html string) ([]byte, error)
}

type ExportNotifier interface {
	PublishReportExported(ctx context.Context, event *models.ReportExportedEvent) error
}

type ExportConfig struct {
	Title      string
	FilePrefix string
	Location   *time.Location
}

type ExportService interface {
	Build(ctx context.Context, format string, printMode bool) (*models.Document, error)
	Publish(ctx context.Context, format string, printMode bool) (*models.PublishResponse, error)
}

type exportService struct {
	pipeline  Pipeline
	converter PDFConverter
	publisher Publisher
	notifier  ExportNotifier
	cfg       ExportConfig
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	now       func() time.Time
}

// NewExportService wires the report renderer to delivery. converter,
// publisher and notifier may each be nil when that delivery path is disabled.
func NewExportService(
	pipeline Pipeline,
	converter PDFConverter,
	publisher Publisher,
	notifier ExportNotifier,
	cfg ExportConfig,
	m *metrics.Metrics,
	logger zerolog.Logger,
) ExportService {
	if cfg.FilePrefix == "" {
		cfg.FilePrefix = "submissions"
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &exportService{
		pipeline:  pipeline,
		converter: converter,
		publisher: publisher,
		notifier:  notifier,
		cfg:       cfg,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *exportService) Build(ctx context.Context, format string, printMode bool) (*models.Document, error) {
	return s.build(ctx, s.pipeline.Snapshot(), format, printMode)
}

// build renders the aggregate held by state, so a document and the event
// describing it come from the same run.
func (s *exportService) build(ctx context.Context, state State, format string, printMode bool) (*models.Document, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatHTML
	}
	if format != FormatHTML && format != FormatPDF {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if format == FormatPDF {
		if s.converter == nil {
			return nil, ErrPDFDisabled
		}
		printMode = true
	}

	generatedAt := s.now()
	html, err := report.Render(state.Students, report.Options{
		PrintMode:   printMode,
		GeneratedAt: generatedAt,
		Location:    s.cfg.Location,
		Title:       s.cfg.Title,
	})
	if err != nil {
		return nil, err
	}

	doc := &models.Document{
		Name:        fmt.Sprintf("%s-%s.%s", s.cfg.FilePrefix, generatedAt.In(s.cfg.Location).Format("2006-01-02"), format),
		Format:      format,
		ContentType: "text/html; charset=utf-8",
		Body:        []byte(html),
	}

	if format == FormatPDF {
		pdf, err := s.converter.ConvertHTML(ctx, html)
		if err != nil {
			return nil, fmt.Errorf("failed to convert report to pdf: %w", err)
		}
		doc.ContentType = "application/pdf"
		doc.Body = pdf
	}

	s.metrics.ObserveExport(format)
	return doc, nil
}

func (s *exportService) Publish(ctx context.Context, format string, printMode bool) (*models.PublishResponse, error) {
	if s.publisher == nil {
		return nil, ErrNoPublisher
	}

	state := s.pipeline.Snapshot()
	doc, err := s.build(ctx, state, format, printMode)
	if err != nil {
		return nil, err
	}

	location, err := s.publisher.Publish(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to publish report: %w", err)
	}

	s.logger.Info().
		Str("location", location).
		Str("format", doc.Format).
		Int("size", len(doc.Body)).
		Msg("Report published")

	if s.notifier != nil {
		event := &models.ReportExportedEvent{
			RunID:       state.DataRunID,
			Format:      doc.Format,
			Location:    location,
			Students:    state.Summary.Students,
			Submissions: state.Summary.Submissions,
			Files:       state.Summary.Files,
			Timestamp:   s.now().Unix(),
		}
		if err := s.notifier.PublishReportExported(ctx, event); err != nil {
			s.logger.Error().Err(err).Str("location", location).Msg("Failed to publish report exported event")
		}
	}

	return &models.PublishResponse{
		Location: location,
		Format:   doc.Format,
		Size:     len(doc.Body),
	}, nil
}
