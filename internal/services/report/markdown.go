package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/specto/internal/models"
)

// BuildMarkdown renders one scrape result as a human-readable summary. The
// same markdown feeds the PDF renderer.
func BuildMarkdown(result *models.AnalyticsResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Analytics Report\n\n")
	fmt.Fprintf(&b, "Scraped at %s\n\n", result.ScrapedAt.Format(time.RFC3339))

	writeContentSection(&b, result.Content)
	writeAudienceSection(&b, result.Audience)
	writeDemographicsSection(&b, result.Demographics)

	if len(result.Errors) > 0 {
		fmt.Fprintf(&b, "## Failures\n\n")
		for _, msg := range result.Errors {
			fmt.Fprintf(&b, "- %s\n", msg)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func writeContentSection(b *strings.Builder, content *models.ContentAnalytics) {
	fmt.Fprintf(b, "## Content\n\n")
	if content == nil {
		fmt.Fprintf(b, "Not captured.\n\n")
		return
	}

	fmt.Fprintf(b, "| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(b, "| Total impressions | %d |\n", content.TotalImpressions)
	fmt.Fprintf(b, "| Total engagements | %d |\n", content.TotalEngagements)
	fmt.Fprintf(b, "| Engagement rate | %.2f%% |\n\n", content.EngagementRate)

	writeSeriesTable(b, "Daily impressions", content.Impressions)
	writeSeriesTable(b, "Daily engagements", content.Engagements)
}

func writeAudienceSection(b *strings.Builder, audience *models.AudienceAnalytics) {
	fmt.Fprintf(b, "## Audience\n\n")
	if audience == nil {
		fmt.Fprintf(b, "Not captured.\n\n")
		return
	}

	fmt.Fprintf(b, "Lifetime followers: **%d**\n\n", audience.LifetimeFollowers)
	writeSeriesTable(b, "Daily follower growth", audience.FollowerGrowth)
}

func writeDemographicsSection(b *strings.Builder, demographics *models.DemographicAnalytics) {
	fmt.Fprintf(b, "## Demographics\n\n")
	if demographics == nil {
		fmt.Fprintf(b, "Not captured.\n\n")
		return
	}

	writeBucketTable(b, "Industries", demographics.Industries)
	writeBucketTable(b, "Job titles", demographics.JobTitles)
	writeBucketTable(b, "Locations", demographics.Locations)
	writeBucketTable(b, "Seniorities", demographics.Seniorities)
}

func writeSeriesTable(b *strings.Builder, title string, series []models.DailyMetric) {
	if len(series) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n\n", title)
	fmt.Fprintf(b, "| Date | Value |\n|---|---|\n")
	for _, point := range series {
		fmt.Fprintf(b, "| %s | %d |\n", point.Date, point.Value)
	}
	b.WriteString("\n")
}

func writeBucketTable(b *strings.Builder, title string, entries []models.DemographicEntry) {
	if len(entries) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n\n", title)
	fmt.Fprintf(b, "| Label | Share |\n|---|---|\n")
	for _, entry := range entries {
		fmt.Fprintf(b, "| %s | %.1f%% |\n", entry.Label, entry.Percentage)
	}
	b.WriteString("\n")
}
