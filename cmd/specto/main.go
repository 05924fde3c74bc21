package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/specto/internal/common"
	"github.com/ternarybob/specto/internal/interfaces"
	"github.com/ternarybob/specto/internal/models"
	"github.com/ternarybob/specto/internal/services/browser"
	"github.com/ternarybob/specto/internal/services/linkedin"
	"github.com/ternarybob/specto/internal/services/report"
	"github.com/ternarybob/specto/internal/services/scheduler"
	"github.com/ternarybob/specto/internal/services/scraper"
	badgerstore "github.com/ternarybob/specto/internal/storage/badger"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	// Command-line flags
	configFiles  configPaths
	cookiePath   = flag.String("cookies", "", "Cookie file path (overrides config)")
	headless     = flag.Bool("headless", true, "Run the browser headless (overrides config)")
	historyLimit = flag.Int("history", 0, "Print the last N scrape runs and exit")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")

	// Global state
	config *common.Config
	logger arbor.ILogger
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("Specto version %s\n", common.GetVersion())
		os.Exit(0)
	}

	// Startup sequence (REQUIRED ORDER):
	// 1. Load config (defaults -> file1 -> file2 -> ... -> env)
	// 2. Apply CLI overrides (highest priority)
	// 3. Initialize logger
	// 4. Print banner

	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("specto.toml"); err == nil {
			configFiles = append(configFiles, "specto.toml")
		}
	}

	var err error
	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	// The headless flag only overrides config when explicitly set.
	var headlessOverride *bool
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "headless" {
			headlessOverride = headless
		}
	})
	common.ApplyFlagOverrides(config, *cookiePath, headlessOverride)

	logger = common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	logger.Info().
		Strs("config_files", configFiles).
		Str("cookie_path", config.Auth.CookiePath).
		Bool("headless", config.Browser.Headless).
		Msg("Configuration loaded")

	db, err := badgerstore.NewBadgerDB(logger, config.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open run-history database")
		os.Exit(1)
	}
	runStorage := badgerstore.NewRunStorage(db, logger)
	defer runStorage.Close()

	if *historyLimit > 0 {
		printHistory(runStorage, *historyLimit)
		return
	}

	factory := browser.NewFactory(config.Browser, logger)
	cookieStore := linkedin.NewCookieStore(config.Auth.CookiePath, logger)
	scrapeService := scraper.NewService(factory, cookieStore, config.Scraper, config.Browser.Headless, logger)
	reportService := report.NewService(config.Report, logger)

	cycle := func(ctx context.Context) error {
		return runCycle(ctx, factory, cookieStore, scrapeService, reportService, runStorage)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if !config.Schedule.Enabled {
		if err := cycle(ctx); err != nil {
			logger.Fatal().Err(err).Msg("Scrape cycle failed")
			os.Exit(1)
		}
		return
	}

	sched := scheduler.NewService(config.Schedule, cycle, logger)
	if err := sched.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start scheduler")
		os.Exit(1)
	}

	logger.Info().Str("cron", config.Schedule.Cron).Msg("Running on schedule - Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("Interrupt signal received, shutting down")
	cancel()
	sched.Stop()
	logger.Info().Msg("Stopped")
}

// runCycle authenticates, scrapes all categories, persists the run, and
// writes reports. Authentication and scraping never share a browser
// session: the scraper re-authenticates each of its sessions from the
// cookie bundle the authenticator persisted.
func runCycle(ctx context.Context, factory interfaces.SessionFactory, cookieStore interfaces.CookieStore, scrapeService *scraper.Service, reportService *report.Service, runStorage interfaces.RunStorage) error {
	started := time.Now()

	authService := linkedin.NewAuthService(factory, cookieStore, config.Auth, config.Browser.Headless, logger)
	authResult, err := authService.Authenticate(ctx)
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}
	authResult.Session.Close()

	result, err := scrapeService.ScrapeAll(ctx)
	if err != nil {
		return fmt.Errorf("scrape failed: %w", err)
	}

	run := &models.ScrapeRun{
		ID:          uuid.New().String(),
		StartedAt:   started.UTC(),
		CompletedAt: time.Now().UTC(),
		DurationMS:  time.Since(started).Milliseconds(),
		Result:      result,
		ErrorCount:  len(result.Errors),
	}
	if err := runStorage.SaveRun(ctx, run); err != nil {
		logger.Warn().Err(err).Msg("Failed to persist run history")
	}

	paths, err := reportService.Write(result)
	if err != nil {
		return fmt.Errorf("report writing failed: %w", err)
	}

	logger.Info().
		Strs("reports", paths).
		Int("failed_categories", len(result.Errors)).
		Msg("Run complete")
	for _, msg := range result.Errors {
		logger.Warn().Str("failure", msg).Msg("Category not captured")
	}
	return nil
}

func printHistory(runStorage interfaces.RunStorage, limit int) {
	runs, err := runStorage.ListRuns(context.Background(), limit)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to list run history")
		os.Exit(1)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded")
		return
	}
	for _, run := range runs {
		status := "ok"
		if run.ErrorCount > 0 {
			status = fmt.Sprintf("%d failed", run.ErrorCount)
		}
		fmt.Printf("%s  %s  %6dms  %s\n", run.StartedAt.Format(time.RFC3339), run.ID, run.DurationMS, status)
	}
}
