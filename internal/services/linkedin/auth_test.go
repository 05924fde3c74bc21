package linkedin

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/specto/internal/common"
	"github.com/ternarybob/specto/internal/interfaces"
	"github.com/ternarybob/specto/internal/models"
)

// fakeSession is a scriptable BrowserSession: tests set its location directly
// or from navigation/click hooks.
type fakeSession struct {
	mu        sync.Mutex
	location  string
	navigated []string
	clicked   []string
	filled    map[string]string
	cookies   []models.BrowserCookie
	headers   map[string]string
	waitErr   error
	closed    bool

	onNavigate func(s *fakeSession, url string)
	onClick    func(s *fakeSession, selector string)
}

func (s *fakeSession) Navigate(_ context.Context, url string) error {
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

func (s *fakeSession) Location(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.location, nil
}

func (s *fakeSession) setLocation(url string) {
	s.mu.Lock()
	s.location = url
	s.mu.Unlock()
}

func (s *fakeSession) WaitVisible(_ context.Context, _ string, _ time.Duration) error {
	return s.waitErr
}

func (s *fakeSession) Fill(_ context.Context, selector, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.filled == nil {
		s.filled = make(map[string]string)
	}
	s.filled[selector] = value
	return nil
}

func (s *fakeSession) Click(_ context.Context, selector string) error {
	s.mu.Lock()
	s.clicked = append(s.clicked, selector)
	hook := s.onClick
	s.mu.Unlock()
	if hook != nil {
		hook(s, selector)
	}
	return nil
}

func (s *fakeSession) SetCookies(_ context.Context, cookies []models.BrowserCookie) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cookies = append(s.cookies, cookies...)
	return nil
}

func (s *fakeSession) SetExtraHeaders(_ context.Context, headers map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.headers = headers
	return nil
}

func (s *fakeSession) DumpCookies(_ context.Context) ([]models.BrowserCookie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cookies, nil
}

func (s *fakeSession) HTML(_ context.Context) (string, error) {
	return "<html></html>", nil
}

func (s *fakeSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// fakeFactory hands out pre-built sessions in order and records the headless
// flag of each launch.
type fakeFactory struct {
	sessions []*fakeSession
	launches []bool
}

func (f *fakeFactory) NewSession(_ context.Context, headless bool) (interfaces.BrowserSession, error) {
	f.launches = append(f.launches, headless)
	if len(f.sessions) == 0 {
		return nil, errors.New("no more fake sessions")
	}
	session := f.sessions[0]
	f.sessions = f.sessions[1:]
	return session, nil
}

type fakeStore struct {
	bundle  *models.CookieBundle
	loadErr error
	saved   [][]models.BrowserCookie
}

func (s *fakeStore) Load() (*models.CookieBundle, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.bundle, nil
}

func (s *fakeStore) SaveJar(jar []models.BrowserCookie) error {
	s.saved = append(s.saved, jar)
	return nil
}

func newTestAuthService(factory *fakeFactory, store *fakeStore, config common.AuthConfig) *AuthService {
	svc := NewAuthService(factory, store, config, true, createTestLogger())
	svc.pollInterval = time.Millisecond
	return svc
}

func visitedState(svc *AuthService, state AuthState) bool {
	for _, s := range svc.history {
		if s == state {
			return true
		}
	}
	return false
}

func TestAuthenticate_CookieRestoreSucceeds(t *testing.T) {
	session := &fakeSession{}
	factory := &fakeFactory{sessions: []*fakeSession{session}}
	store := &fakeStore{bundle: &models.CookieBundle{LiAt: "tok", JSessionID: `"ajax:1"`}}
	svc := newTestAuthService(factory, store, common.AuthConfig{LoginTimeout: time.Second})

	result, err := svc.Authenticate(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Authenticated)
	assert.Equal(t, StateAuthenticated, svc.State())
	assert.False(t, session.closed)
	// Restored cookies are already on disk: no rewrite.
	assert.Empty(t, store.saved)
	// Injected cookies and CSRF header landed on the session.
	assert.NotEmpty(t, session.cookies)
	assert.Equal(t, "ajax:1", session.headers[headerCSRFToken])
	assert.Equal(t, restliProtocolVersion, session.headers[headerRestliProtocol])
}

func TestAuthenticate_RejectedCookiesNoCredentials_GoesInteractive(t *testing.T) {
	// Cookie session bounces to the authwall; the visible manual session
	// never reaches the feed either, so the flow times out interactively.
	cookieSession := &fakeSession{
		onNavigate: func(s *fakeSession, url string) {
			s.setLocation("https://www.linkedin.com/authwall?sessionRedirect=x")
		},
	}
	manualSession := &fakeSession{}
	factory := &fakeFactory{sessions: []*fakeSession{cookieSession, manualSession}}
	store := &fakeStore{bundle: &models.CookieBundle{LiAt: "stale"}}
	svc := newTestAuthService(factory, store, common.AuthConfig{
		LoginTimeout:       10 * time.Millisecond,
		InteractiveTimeout: 20 * time.Millisecond,
	})

	_, err := svc.Authenticate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interactive login not completed")

	assert.True(t, visitedState(svc, StateInteractiveManual))
	assert.False(t, visitedState(svc, StateCredentialLogin))
	assert.False(t, visitedState(svc, StateChallengeDetected))
	assert.True(t, cookieSession.closed)
	assert.True(t, manualSession.closed)
	// The manual fallback must launch visibly.
	require.Len(t, factory.launches, 2)
	assert.False(t, factory.launches[1])
}

func TestAuthenticate_CredentialLoginSucceeds(t *testing.T) {
	session := &fakeSession{
		onClick: func(s *fakeSession, selector string) {
			if selector == submitSelector {
				s.setLocation(FeedURL)
			}
		},
	}
	session.cookies = []models.BrowserCookie{{Name: "li_at", Value: "new-tok"}}
	factory := &fakeFactory{sessions: []*fakeSession{session}}
	store := &fakeStore{loadErr: errors.New("cookie file not found")}
	svc := newTestAuthService(factory, store, common.AuthConfig{
		Username:     "user@example.com",
		Password:     "hunter2",
		LoginTimeout: time.Second,
	})

	result, err := svc.Authenticate(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Authenticated)
	assert.Equal(t, "user@example.com", session.filled[usernameSelector])
	assert.Equal(t, "hunter2", session.filled[passwordSelector])
	// Fresh login rewrites the cookie file.
	require.Len(t, store.saved, 1)
}

func TestAuthenticate_ChallengeEscalatesToVisibleBrowser(t *testing.T) {
	headlessSession := &fakeSession{
		onClick: func(s *fakeSession, selector string) {
			s.setLocation("https://www.linkedin.com/checkpoint/challenge/xyz")
		},
	}
	visibleSession := &fakeSession{
		onClick: func(s *fakeSession, selector string) {
			s.setLocation(FeedURL)
		},
	}
	visibleSession.cookies = []models.BrowserCookie{{Name: "li_at", Value: "cleared"}}
	factory := &fakeFactory{sessions: []*fakeSession{headlessSession, visibleSession}}
	store := &fakeStore{loadErr: errors.New("cookie file not found")}
	svc := newTestAuthService(factory, store, common.AuthConfig{
		Username:     "user@example.com",
		Password:     "hunter2",
		LoginTimeout: 10 * time.Millisecond,
	})

	result, err := svc.Authenticate(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Authenticated)
	assert.True(t, visitedState(svc, StateChallengeDetected))
	assert.True(t, visitedState(svc, StateInteractiveChallenge))
	assert.True(t, headlessSession.closed)
	require.Len(t, factory.launches, 2)
	assert.True(t, factory.launches[0])
	assert.False(t, factory.launches[1])
}

func TestAuthenticate_CredentialsRejected_Fatal(t *testing.T) {
	// Session stays parked on the login page: not a challenge, just rejected.
	session := &fakeSession{}
	factory := &fakeFactory{sessions: []*fakeSession{session}}
	store := &fakeStore{loadErr: errors.New("cookie file not found")}
	svc := newTestAuthService(factory, store, common.AuthConfig{
		Username:     "user@example.com",
		Password:     "wrong",
		LoginTimeout: 10 * time.Millisecond,
	})

	_, err := svc.Authenticate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credential login failed")
	assert.True(t, session.closed)
	assert.NotEqual(t, StateAuthenticated, svc.State())
}
