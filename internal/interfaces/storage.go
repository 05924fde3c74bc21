package interfaces

import (
	"context"

	"github.com/ternarybob/specto/internal/models"
)

// CookieStore loads and persists the on-disk cookie bundle.
type CookieStore interface {
	// Load reads the bundle file, accepting either the flat-object shape or
	// an array of browser cookie export records.
	Load() (*models.CookieBundle, error)

	// SaveJar rewrites the bundle file in full from a live cookie-jar dump.
	SaveJar(cookies []models.BrowserCookie) error
}

// RunStorage persists scrape-run history.
type RunStorage interface {
	SaveRun(ctx context.Context, run *models.ScrapeRun) error
	ListRuns(ctx context.Context, limit int) ([]*models.ScrapeRun, error)
	GetLatest(ctx context.Context) (*models.ScrapeRun, error)
	Close() error
}
