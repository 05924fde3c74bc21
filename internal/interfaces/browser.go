package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/specto/internal/models"
)

// BrowserSession is one isolated, fingerprint-hardened browser context. Each
// scraping task owns its session exclusively for the task's lifetime;
// sessions are never shared across tasks.
type BrowserSession interface {
	// Navigate drives the page to the given URL and waits for the load event.
	Navigate(ctx context.Context, url string) error

	// Location returns the page's current URL, after any redirects.
	Location(ctx context.Context) (string, error)

	// WaitVisible blocks until the selector matches a visible element or the
	// timeout elapses. The caller decides whether a timeout is fatal.
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error

	// Fill types the value into the element matched by selector.
	Fill(ctx context.Context, selector, value string) error

	// Click dispatches a click on the element matched by selector.
	Click(ctx context.Context, selector string) error

	// SetCookies writes cookies into the session's jar.
	SetCookies(ctx context.Context, cookies []models.BrowserCookie) error

	// SetExtraHeaders attaches headers to every subsequent request on the
	// session.
	SetExtraHeaders(ctx context.Context, headers map[string]string) error

	// DumpCookies returns the session's full current cookie jar.
	DumpCookies(ctx context.Context) ([]models.BrowserCookie, error)

	// HTML returns the rendered document's outer HTML.
	HTML(ctx context.Context) (string, error)

	// Close tears the session down. Safe to call multiple times; cleanup
	// errors are swallowed since Close runs on both success and failure
	// paths.
	Close()
}

// SessionFactory creates browser sessions. Launch failures (e.g. a missing
// Chrome binary) propagate unmodified and are fatal.
type SessionFactory interface {
	NewSession(ctx context.Context, headless bool) (BrowserSession, error)
}
