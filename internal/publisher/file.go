// Package publisher delivers rendered reports: to a local directory, to
// MinIO, as a PDF printed by headless Chrome, and as a RabbitMQ event.
package publisher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/RubachokBoss/submission-report/internal/models"
)

type FilePublisher struct {
	dir    string
	logger zerolog.Logger
}

func NewFilePublisher(dir string, logger zerolog.Logger) *FilePublisher {
	if dir == "" {
		dir = "."
	}
	return &FilePublisher{dir: dir, logger: logger}
}

// Publish writes the document into the output directory and returns its path.
func (p *FilePublisher) Publish(ctx context.Context, doc *models.Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if doc == nil || doc.Name == "" {
		return "", fmt.Errorf("document name is required")
	}

	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(p.dir, filepath.Base(doc.Name))
	tmp, err := os.CreateTemp(p.dir, ".report-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := tmp.Write(doc.Body); err != nil {
		p.cleanup(tmp)
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		p.remove(tmp.Name())
		return "", fmt.Errorf("failed to close report: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		p.remove(tmp.Name())
		return "", fmt.Errorf("failed to move report into place: %w", err)
	}

	p.logger.Info().
		Str("path", path).
		Int("size", len(doc.Body)).
		Msg("Report written")

	return path, nil
}

func (p *FilePublisher) cleanup(f *os.File) {
	if err := f.Close(); err != nil {
		p.logger.Warn().Err(err).Str("file", f.Name()).Msg("Failed to close temp file")
	}
	p.remove(f.Name())
}

func (p *FilePublisher) remove(name string) {
	if err := os.Remove(name); err != nil && !os.IsNotExist(err) {
		p.logger.Warn().Err(err).Str("file", name).Msg("Failed to remove temp file")
	}
}
