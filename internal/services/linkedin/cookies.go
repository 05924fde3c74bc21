package linkedin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/specto/internal/interfaces"
	"github.com/ternarybob/specto/internal/models"
)

// Extra request headers sent alongside the injected cookies so that
// background XHR traffic issued by the site's own frontend passes CSRF
// checks.
const (
	headerCSRFToken       = "csrf-token"
	headerRestliProtocol  = "x-restli-protocol-version"
	headerLang            = "x-li-lang"
	restliProtocolVersion = "2.0.0"
	defaultLang           = "en_US"
)

// FileCookieStore loads and persists the session cookie jar as a JSON file
// on disk. Two on-disk shapes are accepted on load: a flat object keyed by
// cookie name, and a full browser-export array of cookie records. Saves
// always write the flat shape.
type FileCookieStore struct {
	path   string
	logger arbor.ILogger
}

var _ interfaces.CookieStore = (*FileCookieStore)(nil)

func NewCookieStore(path string, logger arbor.ILogger) *FileCookieStore {
	return &FileCookieStore{
		path:   path,
		logger: logger,
	}
}

// Load reads the cookie file and extracts the session bundle. It fails when
// the file is missing, is not valid JSON, or carries no li_at session token.
func (s *FileCookieStore) Load() (*models.CookieBundle, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("cookie file not found at %s", s.path)
		}
		return nil, fmt.Errorf("failed to read cookie file %s: %w", s.path, err)
	}

	bundle, err := parseCookieFile(data)
	if err != nil {
		return nil, fmt.Errorf("cookie file %s is not valid: %w", s.path, err)
	}
	if !bundle.Valid() {
		return nil, fmt.Errorf("cookie file %s is missing required session token (%s)", s.path, models.CookieSessionToken)
	}

	s.logger.Debug().
		Str("path", s.path).
		Bool("has_csrf_carrier", bundle.JSessionID != "").
		Msg("Cookie bundle loaded")

	return bundle, nil
}

// SaveJar rewrites the cookie file in full from a live browser jar, keeping
// only the cookies the next restore needs.
func (s *FileCookieStore) SaveJar(jar []models.BrowserCookie) error {
	bundle := models.BundleFromCookies(jar)
	if !bundle.Valid() {
		return fmt.Errorf("refusing to persist cookie jar without session token (%s)", models.CookieSessionToken)
	}

	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cookie bundle: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create cookie directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write cookie file %s: %w", s.path, err)
	}

	s.logger.Info().
		Str("path", s.path).
		Int("jar_size", len(jar)).
		Msg("Cookie file rewritten from live session")

	return nil
}

// parseCookieFile detects which of the two accepted shapes the file uses and
// decodes it into a bundle.
func parseCookieFile(data []byte) (*models.CookieBundle, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("file is empty")
	}

	if trimmed[0] == '[' {
		var jar []models.BrowserCookie
		if err := json.Unmarshal(trimmed, &jar); err != nil {
			return nil, fmt.Errorf("invalid cookie array: %w", err)
		}
		return models.BundleFromCookies(jar), nil
	}

	var bundle models.CookieBundle
	if err := json.Unmarshal(trimmed, &bundle); err != nil {
		return nil, fmt.Errorf("invalid cookie object: %w", err)
	}
	return &bundle, nil
}

// ExtractCSRFToken derives the csrf-token header value from the raw
// JSESSIONID cookie value. The cookie value is stored with surrounding
// double quotes which the header must not carry; stripping is idempotent so
// an already-bare value passes through unchanged.
func ExtractCSRFToken(raw string) string {
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		return raw[1 : len(raw)-1]
	}
	return raw
}

// InjectCookieBundle installs the bundle's cookies into a live session and
// registers the matching CSRF and protocol headers on all subsequent
// requests.
func InjectCookieBundle(ctx context.Context, session interfaces.BrowserSession, bundle *models.CookieBundle) error {
	if err := session.SetCookies(ctx, bundle.Cookies(CookieDomain)); err != nil {
		return fmt.Errorf("failed to inject session cookies: %w", err)
	}

	if bundle.JSessionID == "" {
		return nil
	}

	headers := map[string]string{
		headerCSRFToken:      ExtractCSRFToken(bundle.JSessionID),
		headerRestliProtocol: restliProtocolVersion,
		headerLang:           defaultLang,
	}
	if err := session.SetExtraHeaders(ctx, headers); err != nil {
		return fmt.Errorf("failed to set request headers: %w", err)
	}
	return nil
}
