package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/specto/internal/common"
	"github.com/ternarybob/specto/internal/interfaces"
	"github.com/ternarybob/specto/internal/models"
	"github.com/ternarybob/specto/internal/services/linkedin"
)

// Metric names as they appear verbatim inside chart accessibility labels.
const (
	metricImpressions = "Impressions"
	metricEngagements = "Engagements"
)

// ContentExtractor pulls the daily impression and engagement series from the
// post-performance chart page.
type ContentExtractor struct {
	pacer  *Pacer
	config common.ScraperConfig
	logger arbor.ILogger
}

func NewContentExtractor(pacer *Pacer, config common.ScraperConfig, logger arbor.ILogger) *ContentExtractor {
	return &ContentExtractor{
		pacer:  pacer,
		config: config,
		logger: logger,
	}
}

// Extract visits the chart page once per metric dimension. The chart does
// not re-render client-side under automation, so a fresh navigation per
// metric is the only way to capture both series.
func (e *ContentExtractor) Extract(ctx context.Context, session interfaces.BrowserSession) (*models.ContentAnalytics, error) {
	series := make(map[string][]models.DailyMetric, 2)
	for _, metric := range []string{metricImpressions, metricEngagements} {
		doc, err := openCategoryPage(ctx, session, e.pacer, e.config, e.logger, linkedin.ContentAnalyticsURL)
		if err != nil {
			return nil, fmt.Errorf("content page visit for %s failed: %w", metric, err)
		}

		labels := collectChartLabels(doc)
		series[metric] = parseSeries(labels, metric)
		e.logger.Debug().
			Str("metric", metric).
			Int("labels", len(labels)).
			Int("points", len(series[metric])).
			Msg("Content chart parsed")
	}

	result := &models.ContentAnalytics{
		Impressions: series[metricImpressions],
		Engagements: series[metricEngagements],
		CapturedAt:  time.Now().UTC(),
	}
	result.TotalImpressions = models.SumMetrics(result.Impressions)
	result.TotalEngagements = models.SumMetrics(result.Engagements)
	result.EngagementRate = models.EngagementRate(result.TotalEngagements, result.TotalImpressions)
	return result, nil
}
