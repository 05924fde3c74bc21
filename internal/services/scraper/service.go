package scraper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/specto/internal/common"
	"github.com/ternarybob/specto/internal/interfaces"
	"github.com/ternarybob/specto/internal/models"
	"github.com/ternarybob/specto/internal/services/linkedin"
)

// Service runs one scrape cycle: it fans out one browser session plus one
// extractor per analytics category, runs them concurrently, and joins with
// partial-failure tolerance. One category failing never cancels or blocks
// the others.
type Service struct {
	factory  interfaces.SessionFactory
	store    interfaces.CookieStore
	config   common.ScraperConfig
	headless bool
	logger   arbor.ILogger

	pacer     *Pacer
	snapshots *snapshotWriter

	content      *ContentExtractor
	audience     *AudienceExtractor
	demographics *DemographicExtractor
}

func NewService(factory interfaces.SessionFactory, store interfaces.CookieStore, config common.ScraperConfig, headless bool, logger arbor.ILogger) *Service {
	pacer := NewPacer(config)
	return &Service{
		factory:      factory,
		store:        store,
		config:       config,
		headless:     headless,
		logger:       logger,
		pacer:        pacer,
		snapshots:    newSnapshotWriter(config.SnapshotDir, logger),
		content:      NewContentExtractor(pacer, config, logger),
		audience:     NewAudienceExtractor(pacer, config, logger),
		demographics: NewDemographicExtractor(pacer, config, logger),
	}
}

// ScrapeAll loads the cookie bundle once up front, then scrapes all three
// categories concurrently. The returned result is complete even when
// categories failed; the caller inspects Errors to tell.
func (s *Service) ScrapeAll(ctx context.Context) (*models.AnalyticsResult, error) {
	bundle, err := s.store.Load()
	if err != nil {
		return nil, fmt.Errorf("cannot scrape without a valid cookie bundle: %w", err)
	}

	started := time.Now()
	result := &models.AnalyticsResult{ScrapedAt: started.UTC()}

	var mu sync.Mutex
	failures := make(map[models.Category]error, 3)

	var wg sync.WaitGroup
	run := func(category models.Category, task func(context.Context, interfaces.BrowserSession) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.runCategory(ctx, bundle, category, task); err != nil {
				s.logger.Warn().Err(err).Str("category", string(category)).Msg("Category extraction failed")
				mu.Lock()
				failures[category] = err
				mu.Unlock()
			}
		}()
	}

	run(models.CategoryContent, func(ctx context.Context, session interfaces.BrowserSession) error {
		data, err := s.content.Extract(ctx, session)
		if err != nil {
			return err
		}
		mu.Lock()
		result.Content = data
		mu.Unlock()
		return nil
	})
	run(models.CategoryAudience, func(ctx context.Context, session interfaces.BrowserSession) error {
		data, err := s.audience.Extract(ctx, session)
		if err != nil {
			return err
		}
		mu.Lock()
		result.Audience = data
		mu.Unlock()
		return nil
	})
	run(models.CategoryDemographics, func(ctx context.Context, session interfaces.BrowserSession) error {
		data, err := s.demographics.Extract(ctx, session)
		if err != nil {
			return err
		}
		mu.Lock()
		result.Demographics = data
		mu.Unlock()
		return nil
	})

	wg.Wait()

	// Errors are assembled in fixed category order so runs are comparable.
	for _, category := range models.Categories() {
		if err, ok := failures[category]; ok {
			result.Errors = append(result.Errors, (&ExtractionError{Category: category, Err: err}).Error())
		}
	}

	s.logger.Info().
		Int("failed_categories", len(result.Errors)).
		Str("duration", time.Since(started).Round(time.Millisecond).String()).
		Msg("Scrape cycle complete")

	return result, nil
}

// runCategory owns the full lifecycle of one category task: its own session,
// cookie injection, extraction, and guaranteed teardown.
func (s *Service) runCategory(ctx context.Context, bundle *models.CookieBundle, category models.Category, task func(context.Context, interfaces.BrowserSession) error) error {
	session, err := s.factory.NewSession(ctx, s.headless)
	if err != nil {
		return fmt.Errorf("session launch failed: %w", err)
	}
	defer session.Close()

	if err := linkedin.InjectCookieBundle(ctx, session, bundle); err != nil {
		return err
	}

	if err := task(ctx, session); err != nil {
		s.snapshots.capture(ctx, session, category)
		return err
	}
	return nil
}
