package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/specto/internal/common"
	"github.com/ternarybob/specto/internal/interfaces"
	"github.com/ternarybob/specto/internal/models"
	"github.com/ternarybob/specto/internal/services/linkedin"
)

// ErrSessionBlocked indicates the session was bounced to a login, signup, or
// checkpoint wall instead of the analytics page.
var ErrSessionBlocked = errors.New("session blocked by login wall")

// ExtractionError wraps a category extraction failure with the category it
// belongs to.
type ExtractionError struct {
	Category models.Category
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Category, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// analyticsCardSelector is the rendered marker waited on before parsing. The
// wait is best-effort: charts sometimes render their accessibility labels
// before the card finishes painting.
const analyticsCardSelector = ".artdeco-card"

// openCategoryPage navigates to a category URL, fails fast when the session
// is bounced to a wall, waits best-effort for the rendered marker, applies a
// human-paced delay, and returns the rendered document.
func openCategoryPage(ctx context.Context, session interfaces.BrowserSession, pacer *Pacer, config common.ScraperConfig, logger arbor.ILogger, url string) (*goquery.Document, error) {
	if err := pacer.WaitNav(ctx); err != nil {
		return nil, err
	}

	navCtx := ctx
	if config.PageTimeout > 0 {
		var cancel context.CancelFunc
		navCtx, cancel = context.WithTimeout(ctx, config.PageTimeout)
		defer cancel()
	}
	if err := session.Navigate(navCtx, url); err != nil {
		return nil, fmt.Errorf("navigation to %s failed: %w", url, err)
	}

	loc, err := session.Location(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read page location: %w", err)
	}
	if linkedin.IsWallURL(loc) {
		return nil, fmt.Errorf("%w (redirected to %s)", ErrSessionBlocked, loc)
	}

	if err := session.WaitVisible(ctx, analyticsCardSelector, config.RenderWait); err != nil {
		logger.Debug().
			Str("url", url).
			Err(err).
			Msg("Render marker wait timed out, parsing anyway")
	}

	if err := pacer.HumanDelay(ctx); err != nil {
		return nil, err
	}

	html, err := session.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to capture rendered page: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse rendered page: %w", err)
	}
	return doc, nil
}

// textLines flattens the rendered document into the visible text lines, one
// per leaf element, in document order.
func textLines(doc *goquery.Document) []string {
	var lines []string
	doc.Find("body *").Each(func(_ int, sel *goquery.Selection) {
		if sel.Children().Length() > 0 {
			return
		}
		if text := strings.TrimSpace(sel.Text()); text != "" {
			lines = append(lines, text)
		}
	})
	return lines
}
