package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/specto/internal/common"
	"github.com/ternarybob/specto/internal/models"
)

// Service writes one scrape result out as JSON plus a markdown summary, and
// optionally a PDF rendering of the summary.
type Service struct {
	config common.ReportConfig
	logger arbor.ILogger
}

func NewService(config common.ReportConfig, logger arbor.ILogger) *Service {
	return &Service{
		config: config,
		logger: logger,
	}
}

// Write persists the result to the output directory and returns the paths
// written, in json/markdown/pdf order.
func (s *Service) Write(result *models.AnalyticsResult) ([]string, error) {
	if err := os.MkdirAll(s.config.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report directory %s: %w", s.config.OutputDir, err)
	}

	stamp := result.ScrapedAt.Format("20060102-150405")
	if result.ScrapedAt.IsZero() {
		stamp = time.Now().UTC().Format("20060102-150405")
	}
	base := filepath.Join(s.config.OutputDir, "analytics-"+stamp)

	var paths []string

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	jsonPath := base + ".json"
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", jsonPath, err)
	}
	paths = append(paths, jsonPath)

	markdown := BuildMarkdown(result)
	mdPath := base + ".md"
	if err := os.WriteFile(mdPath, []byte(markdown), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", mdPath, err)
	}
	paths = append(paths, mdPath)

	if s.config.PDF {
		pdfBytes, err := markdownToPDF(markdown)
		if err != nil {
			// The JSON and markdown reports are already on disk; a PDF
			// rendering failure should not discard them.
			s.logger.Warn().Err(err).Msg("PDF rendering failed, keeping JSON and markdown reports")
		} else {
			pdfPath := base + ".pdf"
			if err := os.WriteFile(pdfPath, pdfBytes, 0o644); err != nil {
				s.logger.Warn().Err(err).Str("path", pdfPath).Msg("PDF write failed")
			} else {
				paths = append(paths, pdfPath)
			}
		}
	}

	s.logger.Info().
		Int("files", len(paths)).
		Str("dir", s.config.OutputDir).
		Msg("Report written")

	return paths, nil
}
