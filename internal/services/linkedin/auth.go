package linkedin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/specto/internal/common"
	"github.com/ternarybob/specto/internal/interfaces"
)

// AuthState identifies a step of the authentication flow.
type AuthState string

const (
	StateStart                AuthState = "start"
	StateCookieRestore        AuthState = "cookie_restore"
	StateCookiesRejected      AuthState = "cookies_rejected"
	StateCredentialLogin      AuthState = "credential_login"
	StateChallengeDetected    AuthState = "challenge_detected"
	StateInteractiveChallenge AuthState = "interactive_challenge"
	StateInteractiveManual    AuthState = "interactive_manual"
	StateAuthenticated        AuthState = "authenticated"
)

// AuthResult carries the authenticated session back to the caller, who owns
// its lifetime.
type AuthResult struct {
	Session       interfaces.BrowserSession
	Authenticated bool
}

// AuthService drives the login flow against the target site. It escalates
// from the cheapest method to the most manual one: restore a saved cookie
// jar, submit stored credentials, and finally hand the browser to the user.
type AuthService struct {
	factory  interfaces.SessionFactory
	store    interfaces.CookieStore
	config   common.AuthConfig
	headless bool
	logger   arbor.ILogger

	state   AuthState
	history []AuthState

	pollInterval time.Duration
}

func NewAuthService(factory interfaces.SessionFactory, store interfaces.CookieStore, config common.AuthConfig, headless bool, logger arbor.ILogger) *AuthService {
	return &AuthService{
		factory:      factory,
		store:        store,
		config:       config,
		headless:     headless,
		logger:       logger,
		state:        StateStart,
		history:      []AuthState{StateStart},
		pollInterval: time.Second,
	}
}

// State returns the current flow state.
func (s *AuthService) State() AuthState {
	return s.state
}

func (s *AuthService) setState(state AuthState) {
	s.logger.Info().
		Str("from", string(s.state)).
		Str("to", string(state)).
		Msg("Authentication state transition")
	s.state = state
	s.history = append(s.history, state)
}

// Authenticate runs the flow to completion and returns an authenticated
// session, or a fatal error when no path succeeded.
func (s *AuthService) Authenticate(ctx context.Context) (*AuthResult, error) {
	s.setState(StateCookieRestore)
	if session := s.tryCookieRestore(ctx); session != nil {
		// Restored cookies are already on disk; no rewrite.
		return s.finalize(ctx, session, false)
	}
	s.setState(StateCookiesRejected)

	if s.config.Username != "" && s.config.Password != "" {
		return s.credentialFlow(ctx)
	}

	s.setState(StateInteractiveManual)
	session, err := s.manualLogin(ctx)
	if err != nil {
		return nil, err
	}
	return s.finalize(ctx, session, true)
}

// tryCookieRestore loads the saved jar, injects it into a fresh session, and
// validates the session by navigating to the authenticated landing page.
// Every failure here is soft: the flow falls through to the next method.
func (s *AuthService) tryCookieRestore(ctx context.Context) interfaces.BrowserSession {
	bundle, err := s.store.Load()
	if err != nil {
		s.logger.Info().Err(err).Msg("No usable cookie file, skipping cookie restore")
		return nil
	}

	session, err := s.factory.NewSession(ctx, s.headless)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Browser launch failed during cookie restore")
		return nil
	}

	if err := InjectCookieBundle(ctx, session, bundle); err != nil {
		s.logger.Warn().Err(err).Msg("Cookie injection failed")
		session.Close()
		return nil
	}

	if err := s.validateSession(ctx, session); err != nil {
		s.logger.Info().Err(err).Msg("Saved cookies rejected by site")
		session.Close()
		return nil
	}

	s.logger.Info().Msg("Session restored from saved cookies")
	return session
}

// validateSession confirms a session is authenticated: the landing page must
// load without bouncing to a wall, and its main content landmark must render.
func (s *AuthService) validateSession(ctx context.Context, session interfaces.BrowserSession) error {
	if err := session.Navigate(ctx, FeedURL); err != nil {
		return fmt.Errorf("landing page navigation failed: %w", err)
	}

	loc, err := session.Location(ctx)
	if err != nil {
		return fmt.Errorf("failed to read page location: %w", err)
	}
	if IsWallURL(loc) {
		return fmt.Errorf("redirected to wall at %s", loc)
	}

	if err := session.WaitVisible(ctx, mainContentSelector, s.config.LoginTimeout); err != nil {
		return fmt.Errorf("landing page content did not render: %w", err)
	}
	return nil
}

// credentialFlow submits stored credentials, escalating to a visible browser
// when a security challenge blocks the headless attempt.
func (s *AuthService) credentialFlow(ctx context.Context) (*AuthResult, error) {
	s.setState(StateCredentialLogin)

	session, err := s.factory.NewSession(ctx, s.headless)
	if err != nil {
		return nil, fmt.Errorf("browser launch failed for credential login: %w", err)
	}

	if err := s.submitCredentials(ctx, session); err != nil {
		session.Close()
		return nil, fmt.Errorf("credential login failed: %w", err)
	}

	err = s.waitForFeed(ctx, session, s.config.LoginTimeout)
	if err == nil {
		return s.finalize(ctx, session, true)
	}

	loc, locErr := session.Location(ctx)
	session.Close()
	if locErr == nil && IsChallengeURL(loc) {
		s.setState(StateChallengeDetected)
		s.logger.Warn().
			Str("url", loc).
			Msg("Security challenge detected, relaunching visible browser")
		return s.challengeFlow(ctx)
	}

	return nil, fmt.Errorf("credential login failed: landing page not reached within %s (last url: %s)", s.config.LoginTimeout, loc)
}

// challengeFlow re-runs the credential login in a visible browser and waits
// for the user to clear the challenge manually.
func (s *AuthService) challengeFlow(ctx context.Context) (*AuthResult, error) {
	s.setState(StateInteractiveChallenge)

	session, err := s.factory.NewSession(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("browser launch failed for challenge resolution: %w", err)
	}

	if err := s.submitCredentials(ctx, session); err != nil {
		session.Close()
		return nil, fmt.Errorf("challenge resolution failed: %w", err)
	}

	if err := s.waitForFeed(ctx, session, s.config.LoginTimeout); err != nil {
		session.Close()
		return nil, fmt.Errorf("security challenge not cleared within %s: %w", s.config.LoginTimeout, err)
	}

	return s.finalize(ctx, session, true)
}

// manualLogin opens a visible browser on the login form and waits for the
// user to complete the entire login by hand.
func (s *AuthService) manualLogin(ctx context.Context) (interfaces.BrowserSession, error) {
	session, err := s.factory.NewSession(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("browser launch failed for interactive login: %w", err)
	}

	if err := session.Navigate(ctx, LoginURL); err != nil {
		session.Close()
		return nil, fmt.Errorf("failed to open login page: %w", err)
	}

	s.logger.Info().
		Str("timeout", s.config.InteractiveTimeout.String()).
		Msg("Waiting for interactive login in visible browser")

	if err := s.waitForFeed(ctx, session, s.config.InteractiveTimeout); err != nil {
		session.Close()
		return nil, fmt.Errorf("interactive login not completed within %s: %w", s.config.InteractiveTimeout, err)
	}
	return session, nil
}

// submitCredentials fills and submits the login form.
func (s *AuthService) submitCredentials(ctx context.Context, session interfaces.BrowserSession) error {
	if err := session.Navigate(ctx, LoginURL); err != nil {
		return fmt.Errorf("failed to open login page: %w", err)
	}
	if err := session.Fill(ctx, usernameSelector, s.config.Username); err != nil {
		return fmt.Errorf("failed to fill username: %w", err)
	}
	if err := session.Fill(ctx, passwordSelector, s.config.Password); err != nil {
		return fmt.Errorf("failed to fill password: %w", err)
	}
	if err := session.Click(ctx, submitSelector); err != nil {
		return fmt.Errorf("failed to submit login form: %w", err)
	}
	return nil
}

// waitForFeed polls the page location until the authenticated landing page
// is reached or the timeout elapses.
func (s *AuthService) waitForFeed(ctx context.Context, session interfaces.BrowserSession, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	var lastLoc string
	for {
		loc, err := session.Location(ctx)
		if err == nil {
			lastLoc = loc
			if IsFeedURL(loc) {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out at %s", strings.TrimSpace(lastLoc))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// finalize marks the flow authenticated and optionally rewrites the cookie
// file from the live jar so the next run can skip the login entirely.
func (s *AuthService) finalize(ctx context.Context, session interfaces.BrowserSession, persist bool) (*AuthResult, error) {
	s.setState(StateAuthenticated)

	if persist {
		jar, err := session.DumpCookies(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Failed to dump cookies from live session")
		} else if err := s.store.SaveJar(jar); err != nil {
			// Persistence failure is not fatal; the session itself is good.
			s.logger.Warn().Err(err).Msg("Failed to persist cookie jar")
		}
	}

	return &AuthResult{
		Session:       session,
		Authenticated: true,
	}, nil
}
