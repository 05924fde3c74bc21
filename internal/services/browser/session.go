package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/specto/internal/interfaces"
	"github.com/ternarybob/specto/internal/models"
)

// Session wraps one Chrome browser context. It is owned by a single task;
// Close is idempotent and swallows cleanup errors since it runs on both
// success and failure paths.
type Session struct {
	ctx             context.Context
	browserCancel   context.CancelFunc
	allocatorCancel context.CancelFunc
	logger          arbor.ILogger
	closeOnce       sync.Once
}

// Compile-time assertion
var _ interfaces.BrowserSession = (*Session)(nil)

// Navigate drives the page to the given URL and waits for the load event.
func (s *Session) Navigate(ctx context.Context, url string) error {
	runCtx, cancel := s.boundedCtx(ctx)
	defer cancel()

	if err := chromedp.Run(runCtx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	return nil
}

// Location returns the page's current URL after any redirects.
func (s *Session) Location(ctx context.Context) (string, error) {
	runCtx, cancel := s.boundedCtx(ctx)
	defer cancel()

	var location string
	if err := chromedp.Run(runCtx, chromedp.Location(&location)); err != nil {
		return "", fmt.Errorf("failed to read page location: %w", err)
	}
	return location, nil
}

// WaitVisible blocks until the selector matches a visible element or the
// timeout elapses.
func (s *Session) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-waitCtx.Done():
		}
	}()

	if err := chromedp.Run(waitCtx, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("element %q not visible within %s: %w", selector, timeout, err)
	}
	return nil
}

// Fill types the value into the element matched by selector.
func (s *Session) Fill(ctx context.Context, selector, value string) error {
	runCtx, cancel := s.boundedCtx(ctx)
	defer cancel()

	err := chromedp.Run(runCtx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, value, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("failed to fill %q: %w", selector, err)
	}
	return nil
}

// Click dispatches a click on the element matched by selector.
func (s *Session) Click(ctx context.Context, selector string) error {
	runCtx, cancel := s.boundedCtx(ctx)
	defer cancel()

	if err := chromedp.Run(runCtx, chromedp.Click(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("failed to click %q: %w", selector, err)
	}
	return nil
}

// SetCookies writes cookies into the session's jar. Cookies are set one at a
// time; a single rejected cookie fails the injection since a partial jar
// cannot authenticate.
func (s *Session) SetCookies(ctx context.Context, cookies []models.BrowserCookie) error {
	runCtx, cancel := s.boundedCtx(ctx)
	defer cancel()

	if err := chromedp.Run(runCtx, network.Enable()); err != nil {
		return fmt.Errorf("failed to enable network domain: %w", err)
	}

	return chromedp.Run(runCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		for _, c := range cookies {
			param := network.SetCookie(c.Name, c.Value).
				WithDomain(c.Domain).
				WithPath(c.Path).
				WithSecure(c.Secure).
				WithHTTPOnly(c.HTTPOnly)

			if c.Expires > 0 {
				expiresTime := time.Unix(c.Expires, 0)
				if expiresTime.After(time.Now()) {
					timestamp := cdp.TimeSinceEpoch(expiresTime)
					param = param.WithExpires(&timestamp)
				}
			}

			switch strings.ToLower(c.SameSite) {
			case "strict":
				param = param.WithSameSite(network.CookieSameSiteStrict)
			case "lax":
				param = param.WithSameSite(network.CookieSameSiteLax)
			case "none":
				param = param.WithSameSite(network.CookieSameSiteNone)
			}

			if err := param.Do(ctx); err != nil {
				return fmt.Errorf("failed to set cookie %s: %w", c.Name, err)
			}

			s.logger.Trace().
				Str("cookie_name", c.Name).
				Str("domain", c.Domain).
				Msg("Cookie injected")
		}
		return nil
	}))
}

// SetExtraHeaders attaches headers to every subsequent request on the
// session.
func (s *Session) SetExtraHeaders(ctx context.Context, headers map[string]string) error {
	runCtx, cancel := s.boundedCtx(ctx)
	defer cancel()

	params := make(network.Headers, len(headers))
	for k, v := range headers {
		params[k] = v
	}

	err := chromedp.Run(runCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(params),
	)
	if err != nil {
		return fmt.Errorf("failed to set extra headers: %w", err)
	}
	return nil
}

// DumpCookies returns the session's full current cookie jar.
func (s *Session) DumpCookies(ctx context.Context) ([]models.BrowserCookie, error) {
	runCtx, cancel := s.boundedCtx(ctx)
	defer cancel()

	var dumped []models.BrowserCookie
	err := chromedp.Run(runCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		cookies, err := network.GetCookies().Do(ctx)
		if err != nil {
			return err
		}
		for _, c := range cookies {
			dumped = append(dumped, models.BrowserCookie{
				Name:     c.Name,
				Value:    c.Value,
				Domain:   c.Domain,
				Path:     c.Path,
				Secure:   c.Secure,
				HTTPOnly: c.HTTPOnly,
				Expires:  int64(c.Expires),
				SameSite: string(c.SameSite),
			})
		}
		return nil
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to dump cookie jar: %w", err)
	}
	return dumped, nil
}

// HTML returns the rendered document's outer HTML.
func (s *Session) HTML(ctx context.Context) (string, error) {
	runCtx, cancel := s.boundedCtx(ctx)
	defer cancel()

	var html string
	if err := chromedp.Run(runCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to retrieve rendered HTML: %w", err)
	}
	return html, nil
}

// Close cancels the browser and allocator contexts. Safe to call multiple
// times; never returns an error.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if s.browserCancel != nil {
			s.browserCancel()
		}
		if s.allocatorCancel != nil {
			s.allocatorCancel()
		}
		s.logger.Debug().Msg("Browser session closed")
	})
}

// boundedCtx ties a chromedp run to both the session's browser context and
// the caller's context.
func (s *Session) boundedCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithCancel(s.ctx)
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}
