package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/specto/internal/common"
	"github.com/ternarybob/specto/internal/interfaces"
	"github.com/ternarybob/specto/internal/models"
	"github.com/ternarybob/specto/internal/services/linkedin"
)

// metricFollowers matches follower-growth chart labels; the chart emits
// "New followers" as the metric name.
const metricFollowers = "followers"

// AudienceExtractor pulls the daily follower-growth series and the lifetime
// follower count from the audience chart page.
type AudienceExtractor struct {
	pacer  *Pacer
	config common.ScraperConfig
	logger arbor.ILogger
}

func NewAudienceExtractor(pacer *Pacer, config common.ScraperConfig, logger arbor.ILogger) *AudienceExtractor {
	return &AudienceExtractor{
		pacer:  pacer,
		config: config,
		logger: logger,
	}
}

func (e *AudienceExtractor) Extract(ctx context.Context, session interfaces.BrowserSession) (*models.AudienceAnalytics, error) {
	doc, err := openCategoryPage(ctx, session, e.pacer, e.config, e.logger, linkedin.AudienceAnalyticsURL)
	if err != nil {
		return nil, fmt.Errorf("audience page visit failed: %w", err)
	}

	growth := parseSeries(collectChartLabels(doc), metricFollowers)
	lifetime := findLifetimeFollowerCount(doc)

	e.logger.Debug().
		Int("points", len(growth)).
		Int64("lifetime_followers", lifetime).
		Msg("Audience chart parsed")

	return &models.AudienceAnalytics{
		FollowerGrowth:    growth,
		LifetimeFollowers: lifetime,
		CapturedAt:        time.Now().UTC(),
	}, nil
}

// findLifetimeFollowerCount scans paragraph-like text nodes for values that
// are purely formatted integers and returns the largest. The lifetime total
// is the most prominent number on the page but carries no distinguishing
// markup, so magnitude is the only usable signal. A larger incidental number
// on the page would be misattributed.
func findLifetimeFollowerCount(doc *goquery.Document) int64 {
	var largest int64
	for _, line := range textLines(doc) {
		if value, ok := parseFormattedInt(line); ok && value > largest {
			largest = value
		}
	}
	return largest
}
