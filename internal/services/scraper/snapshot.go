package scraper

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/specto/internal/interfaces"
	"github.com/ternarybob/specto/internal/models"
)

// snapshotWriter captures the rendered page of a failed category as markdown
// so the operator can see what the extractor actually saw. Everything here
// is best-effort: snapshot failures are logged and swallowed.
type snapshotWriter struct {
	dir       string
	converter *md.Converter
	logger    arbor.ILogger
}

func newSnapshotWriter(dir string, logger arbor.ILogger) *snapshotWriter {
	return &snapshotWriter{
		dir:       dir,
		converter: md.NewConverter("", true, nil),
		logger:    logger,
	}
}

func (w *snapshotWriter) capture(ctx context.Context, session interfaces.BrowserSession, category models.Category) {
	if w.dir == "" {
		return
	}

	html, err := session.HTML(ctx)
	if err != nil {
		w.logger.Debug().Err(err).Str("category", string(category)).Msg("Snapshot capture skipped")
		return
	}

	markdown, err := w.converter.ConvertString(html)
	if err != nil {
		w.logger.Debug().Err(err).Str("category", string(category)).Msg("Snapshot conversion failed")
		return
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		w.logger.Warn().Err(err).Str("dir", w.dir).Msg("Snapshot directory not writable")
		return
	}

	name := fmt.Sprintf("%s-%s.md", category, time.Now().UTC().Format("20060102-150405"))
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, []byte(markdown), 0o644); err != nil {
		w.logger.Warn().Err(err).Str("path", path).Msg("Snapshot write failed")
		return
	}

	w.logger.Info().
		Str("category", string(category)).
		Str("path", path).
		Msg("Failure snapshot written")
}
