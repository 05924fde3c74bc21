package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/specto/internal/common"
	"github.com/ternarybob/specto/internal/interfaces"
)

// Factory creates isolated, fingerprint-hardened Chrome sessions.
type Factory struct {
	config common.BrowserConfig
	logger arbor.ILogger
}

// NewFactory creates a new session factory.
func NewFactory(config common.BrowserConfig, logger arbor.ILogger) *Factory {
	return &Factory{
		config: config,
		logger: logger,
	}
}

// Compile-time assertion
var _ interfaces.SessionFactory = (*Factory)(nil)

// NewSession launches a Chrome instance with a fixed realistic fingerprint
// and automation detection suppressed. Launch failures propagate unmodified;
// there is no retry, a missing browser binary is fatal.
func (f *Factory) NewSession(ctx context.Context, headless bool) (interfaces.BrowserSession, error) {
	opts := f.buildAllocatorOptions(headless)

	// Sessions own their lifetime; teardown happens via Close, not via the
	// caller's context.
	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx,
		chromedp.WithLogf(func(s string, i ...interface{}) {
			f.logger.Debug().Msgf("chromedp: "+s, i...)
		}),
	)

	session := &Session{
		ctx:             browserCtx,
		browserCancel:   browserCancel,
		allocatorCancel: allocatorCancel,
		logger:          f.logger,
	}

	testTimeout := f.config.LaunchRetry
	if testTimeout <= 0 {
		testTimeout = 30 * time.Second
	}
	testCtx, testCancel := context.WithTimeout(browserCtx, testTimeout)
	defer testCancel()

	startTime := time.Now()
	err := chromedp.Run(testCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			// Suppress navigator.webdriver and friends before any page
			// script runs.
			_, err := page.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx)
			return err
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return emulation.SetTimezoneOverride(f.config.TimezoneID).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			return emulation.SetLocaleOverride().WithLocale(f.config.Locale).Do(ctx)
		}),
		chromedp.EmulateViewport(int64(f.config.ViewportW), int64(f.config.ViewportH)),
		chromedp.Navigate("about:blank"),
	)
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("browser failed startup test: %w", err)
	}

	f.logger.Debug().
		Bool("headless", headless).
		Str("startup_time", time.Since(startTime).Round(time.Millisecond).String()).
		Msg("Browser session created")

	return session, nil
}

// buildAllocatorOptions creates Chrome allocator options with the fixed
// fingerprint and stealth flags.
func (f *Factory) buildAllocatorOptions(headless bool) []chromedp.ExecAllocatorOption {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,

		chromedp.UserAgent(f.config.UserAgent),
		chromedp.Flag("lang", f.config.Locale),

		// Bot-detection countermeasures
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("excludeSwitches", "enable-automation"),
		chromedp.Flag("useAutomationExtension", false),
		chromedp.Flag("disable-infobars", true),

		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-popup-blocking", true),
		chromedp.Flag("disable-background-networking", false),

		chromedp.WindowSize(f.config.WindowWidth, f.config.WindowHeight),
	}

	if f.config.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(f.config.ChromePath))
	}
	if f.config.DisableGPU {
		opts = append(opts, chromedp.Flag("disable-gpu", true))
	}
	if f.config.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}
	if headless {
		// New headless mode is less detectable than the legacy one.
		opts = append(opts, chromedp.Flag("headless", "new"))
	}

	return opts
}
