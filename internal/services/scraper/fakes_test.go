package scraper

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/specto/internal/common"
	"github.com/ternarybob/specto/internal/interfaces"
	"github.com/ternarybob/specto/internal/models"
)

func mustParseHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func createTestLogger() arbor.ILogger {
	return arbor.NewLogger()
}

// fastScraperConfig removes all pacing so tests run instantly.
func fastScraperConfig() common.ScraperConfig {
	return common.ScraperConfig{
		RenderWait:   time.Millisecond,
		PageTimeout:  time.Second,
		MinHumanWait: 0,
		MaxHumanWait: 0,
		NavPerSecond: 1000,
	}
}

// fakePageSession serves a fixed rendered page; onNavigate can redirect the
// session to simulate a login wall.
type fakePageSession struct {
	mu         sync.Mutex
	html       string
	location   string
	navigated  []string
	closed     bool
	onNavigate func(s *fakePageSession, url string)
}

func (s *fakePageSession) Navigate(_ context.Context, url string) error {
	s.mu.Lock()
	s.navigated = append(s.navigated, url)
	s.location = url
	hook := s.onNavigate
	s.mu.Unlock()
	if hook != nil {
		hook(s, url)
	}
	return nil
}

func (s *fakePageSession) Location(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.location, nil
}

func (s *fakePageSession) WaitVisible(_ context.Context, _ string, _ time.Duration) error {
	return nil
}

func (s *fakePageSession) Fill(_ context.Context, _, _ string) error { return nil }

func (s *fakePageSession) Click(_ context.Context, _ string) error { return nil }

func (s *fakePageSession) SetCookies(_ context.Context, _ []models.BrowserCookie) error {
	return nil
}

func (s *fakePageSession) SetExtraHeaders(_ context.Context, _ map[string]string) error {
	return nil
}

func (s *fakePageSession) DumpCookies(_ context.Context) ([]models.BrowserCookie, error) {
	return nil, nil
}

func (s *fakePageSession) HTML(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.html, nil
}

func (s *fakePageSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// fakePageFactory builds one fresh session per launch and remembers them all.
type fakePageFactory struct {
	mu    sync.Mutex
	build func() *fakePageSession
	made  []*fakePageSession
}

func (f *fakePageFactory) NewSession(_ context.Context, _ bool) (interfaces.BrowserSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session := f.build()
	f.made = append(f.made, session)
	return session, nil
}

type staticStore struct {
	bundle *models.CookieBundle
	err    error
}

func (s *staticStore) Load() (*models.CookieBundle, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.bundle, nil
}

func (s *staticStore) SaveJar(_ []models.BrowserCookie) error { return nil }
