package scraper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/specto/internal/models"
)

const audiencePageHTML = `<html><body>
<div class="artdeco-card">
  <img alt="1. Monday, Jan 1, 2024, New followers, 5"/>
  <img alt="2. Tuesday, Jan 2, 2024, New followers, 8"/>
  <img alt="1. Monday, Jan 1, 2024, Impressions, 900"/>
  <h1>Audience</h1>
  <p>12,345</p>
  <p>678</p>
  <p>Followers in the last 30 days</p>
</div>
</body></html>`

func TestAudienceExtractor_GrowthAndLifetimeCount(t *testing.T) {
	session := &fakePageSession{html: audiencePageHTML}
	config := fastScraperConfig()
	extractor := NewAudienceExtractor(NewPacer(config), config, createTestLogger())

	result, err := extractor.Extract(context.Background(), session)
	require.NoError(t, err)

	// Only labels containing "followers" feed the growth series; the
	// impressions label on the same page is ignored.
	assert.Equal(t, []models.DailyMetric{
		{Date: "2024-01-01", Value: 5},
		{Date: "2024-01-02", Value: 8},
	}, result.FollowerGrowth)

	// The largest purely-numeric text node wins.
	assert.Equal(t, int64(12345), result.LifetimeFollowers)
}

func TestFindLifetimeFollowerCount_NoNumericNodes(t *testing.T) {
	doc := mustParseHTML(t, `<html><body><p>No numbers here</p></body></html>`)
	assert.Equal(t, int64(0), findLifetimeFollowerCount(doc))
}
