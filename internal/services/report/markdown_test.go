package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/specto/internal/models"
)

func sampleResult() *models.AnalyticsResult {
	return &models.AnalyticsResult{
		Content: &models.ContentAnalytics{
			Impressions:      []models.DailyMetric{{Date: "2024-01-01", Value: 100}},
			Engagements:      []models.DailyMetric{{Date: "2024-01-01", Value: 10}},
			TotalImpressions: 100,
			TotalEngagements: 10,
			EngagementRate:   10,
		},
		Audience: &models.AudienceAnalytics{
			FollowerGrowth:    []models.DailyMetric{{Date: "2024-01-01", Value: 5}},
			LifetimeFollowers: 4200,
		},
		Demographics: &models.DemographicAnalytics{
			JobTitles: []models.DemographicEntry{{Label: "Engineer", Percentage: 19.2}},
		},
		ScrapedAt: time.Date(2024, 1, 2, 6, 0, 0, 0, time.UTC),
	}
}

func TestBuildMarkdown_FullResult(t *testing.T) {
	markdown := BuildMarkdown(sampleResult())

	assert.Contains(t, markdown, "# Analytics Report")
	assert.Contains(t, markdown, "| Total impressions | 100 |")
	assert.Contains(t, markdown, "| Engagement rate | 10.00% |")
	assert.Contains(t, markdown, "Lifetime followers: **4200**")
	assert.Contains(t, markdown, "| Engineer | 19.2% |")
	assert.NotContains(t, markdown, "## Failures")
}

func TestBuildMarkdown_FailedCategory(t *testing.T) {
	result := sampleResult()
	result.Audience = nil
	result.Errors = []string{"audience: session blocked by login wall"}

	markdown := BuildMarkdown(result)

	// The audience section reports the gap instead of vanishing.
	audienceIdx := strings.Index(markdown, "## Audience")
	require.Greater(t, audienceIdx, 0)
	assert.Contains(t, markdown[audienceIdx:], "Not captured.")
	assert.Contains(t, markdown, "## Failures")
	assert.Contains(t, markdown, "- audience: session blocked by login wall")
}

func TestMarkdownToPDF_ProducesDocument(t *testing.T) {
	markdown := BuildMarkdown(sampleResult())

	pdfBytes, err := markdownToPDF(markdown)
	require.NoError(t, err)
	require.NotEmpty(t, pdfBytes)
	assert.True(t, strings.HasPrefix(string(pdfBytes), "%PDF"))
}
