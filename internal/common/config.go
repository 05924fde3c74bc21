package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration. It is loaded once at
// startup, validated, and passed by value into each component.
type Config struct {
	Auth     AuthConfig     `toml:"auth"`
	Browser  BrowserConfig  `toml:"browser"`
	Scraper  ScraperConfig  `toml:"scraper"`
	Storage  StorageConfig  `toml:"storage"`
	Report   ReportConfig   `toml:"report"`
	Schedule ScheduleConfig `toml:"schedule"`
	Logging  LoggingConfig  `toml:"logging"`
}

// AuthConfig contains credentials and authentication timeouts.
type AuthConfig struct {
	CookiePath         string        `toml:"cookie_path" validate:"required"` // Path to the cookie bundle file (JSON, flat or cookie-array shape)
	Username           string        `toml:"username"`                        // Account email; empty disables credential login
	Password           string        `toml:"password"`                        // Account password; empty disables credential login
	LoginTimeout       time.Duration `toml:"login_timeout"`                   // Bounded wait for post-submit navigation to the feed
	InteractiveTimeout time.Duration `toml:"interactive_timeout"`             // Wait for the operator to complete a fully manual login
}

// BrowserConfig contains Chrome launch settings.
type BrowserConfig struct {
	Headless     bool          `toml:"headless"`      // Headless for unattended runs; interactive fallbacks always relaunch visible
	UserAgent    string        `toml:"user_agent"`    // Fixed realistic fingerprint user agent
	LaunchRetry  time.Duration `toml:"launch_retry"`  // Startup test timeout per instance
	Locale       string        `toml:"locale"`        // Accept-Language / navigator locale
	TimezoneID   string        `toml:"timezone_id"`   // Emulated IANA timezone
	ViewportW    int           `toml:"viewport_w"`    // Viewport width
	ViewportH    int           `toml:"viewport_h"`    // Viewport height
	ChromePath   string        `toml:"chrome_path"`   // Optional explicit Chrome binary path
	DisableGPU   bool          `toml:"disable_gpu"`   //
	NoSandbox    bool          `toml:"no_sandbox"`    // Required inside most containers
	WindowHeight int           `toml:"window_height"` // Outer window size for visible sessions
	WindowWidth  int           `toml:"window_width"`  //
}

// ScraperConfig contains extraction pacing and wait bounds.
type ScraperConfig struct {
	RenderWait   time.Duration `toml:"render_wait"`    // Best-effort wait for rendered markers; timeout is not fatal
	PageTimeout  time.Duration `toml:"page_timeout"`   // Hard bound on a single navigation
	MinHumanWait time.Duration `toml:"min_human_wait"` // Lower bound of the randomized human-pacing delay
	MaxHumanWait time.Duration `toml:"max_human_wait"` // Upper bound of the randomized human-pacing delay
	NavPerSecond float64       `toml:"nav_per_second"` // Cross-task navigation rate cap
	SnapshotDir  string        `toml:"snapshot_dir"`   // Where failed-page markdown snapshots land; empty disables
}

// StorageConfig contains the run history store settings.
type StorageConfig struct {
	Path string `toml:"path" validate:"required"` // Badger database directory
}

// ReportConfig contains output settings for scrape results.
type ReportConfig struct {
	OutputDir string `toml:"output_dir" validate:"required"` // Directory for JSON results and PDF summaries
	PDF       bool   `toml:"pdf"`                            // Render a PDF summary per run
}

// ScheduleConfig enables periodic scraping.
type ScheduleConfig struct {
	Enabled bool   `toml:"enabled"`
	Cron    string `toml:"cron"` // robfig/cron expression, e.g. "0 6 * * *"
}

// LoggingConfig controls the arbor logger.
type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` //
}

// NewDefaultConfig creates a configuration with default values. Technical
// parameters are hardcoded here; only user-facing settings belong in
// specto.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Auth: AuthConfig{
			CookiePath:         "./cookies.json",
			LoginTimeout:       45 * time.Second,
			InteractiveTimeout: 3 * time.Minute,
		},
		Browser: BrowserConfig{
			Headless:     true,
			UserAgent:    "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			LaunchRetry:  30 * time.Second,
			Locale:       "en-US",
			TimezoneID:   "America/New_York",
			ViewportW:    1680,
			ViewportH:    989,
			DisableGPU:   true,
			NoSandbox:    false,
			WindowWidth:  1680,
			WindowHeight: 1050,
		},
		Scraper: ScraperConfig{
			RenderWait:   10 * time.Second,
			PageTimeout:  60 * time.Second,
			MinHumanWait: 1500 * time.Millisecond,
			MaxHumanWait: 4 * time.Second,
			NavPerSecond: 0.5,
			SnapshotDir:  "./data/snapshots",
		},
		Storage: StorageConfig{
			Path: "./data/runs",
		},
		Report: ReportConfig{
			OutputDir: "./results",
			PDF:       false,
		},
		Schedule: ScheduleConfig{
			Enabled: false,
			Cron:    "0 6 * * *",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout", "file"},
			TimeFormat: "15:04:05",
		},
	}
}

// LoadFromFiles loads configuration with priority:
// defaults -> file1 -> file2 -> ... -> env -> CLI flag overrides.
// Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks required fields, pacing bounds, and the cron expression.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Scraper.MinHumanWait > c.Scraper.MaxHumanWait {
		return fmt.Errorf("invalid configuration: min_human_wait (%s) exceeds max_human_wait (%s)",
			c.Scraper.MinHumanWait, c.Scraper.MaxHumanWait)
	}

	if c.Schedule.Enabled {
		if _, err := cron.ParseStandard(c.Schedule.Cron); err != nil {
			return fmt.Errorf("invalid schedule cron expression %q: %w", c.Schedule.Cron, err)
		}
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	if path := os.Getenv("SPECTO_COOKIE_PATH"); path != "" {
		config.Auth.CookiePath = path
	}
	if user := os.Getenv("SPECTO_USERNAME"); user != "" {
		config.Auth.Username = user
	}
	if pass := os.Getenv("SPECTO_PASSWORD"); pass != "" {
		config.Auth.Password = pass
	}
	if timeout := os.Getenv("SPECTO_INTERACTIVE_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			config.Auth.InteractiveTimeout = d
		}
	}
	if headless := os.Getenv("SPECTO_HEADLESS"); headless != "" {
		if h, err := strconv.ParseBool(headless); err == nil {
			config.Browser.Headless = h
		}
	}
	if userAgent := os.Getenv("SPECTO_USER_AGENT"); userAgent != "" {
		config.Browser.UserAgent = userAgent
	}
	if noSandbox := os.Getenv("SPECTO_NO_SANDBOX"); noSandbox != "" {
		if ns, err := strconv.ParseBool(noSandbox); err == nil {
			config.Browser.NoSandbox = ns
		}
	}
	if path := os.Getenv("SPECTO_STORAGE_PATH"); path != "" {
		config.Storage.Path = path
	}
	if dir := os.Getenv("SPECTO_OUTPUT_DIR"); dir != "" {
		config.Report.OutputDir = dir
	}
	if level := os.Getenv("SPECTO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority).
// Zero values mean "not set".
func ApplyFlagOverrides(config *Config, cookiePath string, headless *bool) {
	if cookiePath != "" {
		config.Auth.CookiePath = cookiePath
	}
	if headless != nil {
		config.Browser.Headless = *headless
	}
}
