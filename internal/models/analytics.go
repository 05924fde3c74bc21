package models

import (
	"math"
	"time"
)

// Category identifies one of the three independent analytics extractions.
type Category string

const (
	CategoryContent      Category = "content"
	CategoryAudience     Category = "audience"
	CategoryDemographics Category = "demographics"
)

// Categories returns the fixed category order used when assembling results.
func Categories() []Category {
	return []Category{CategoryContent, CategoryAudience, CategoryDemographics}
}

// DailyMetric is a single data point parsed from a chart's accessibility
// labels: one entry per calendar day observed in the source chart.
type DailyMetric struct {
	Date  string `json:"date"` // ISO-8601 calendar date (2006-01-02)
	Value int64  `json:"value"`
}

// DemographicEntry is one labeled slice of a demographic breakdown.
// Count is not exposed by the rendered page; Percentage is the
// authoritative figure.
type DemographicEntry struct {
	Label      string  `json:"label"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// ContentAnalytics holds post-performance metrics for the captured window.
type ContentAnalytics struct {
	Impressions      []DailyMetric `json:"impressions"`
	Engagements      []DailyMetric `json:"engagements"`
	TotalImpressions int64         `json:"total_impressions"`
	TotalEngagements int64         `json:"total_engagements"`
	EngagementRate   float64       `json:"engagement_rate"`
	CapturedAt       time.Time     `json:"captured_at"`
}

// AudienceAnalytics holds follower-growth metrics. LifetimeFollowers is a
// single scalar, not a series.
type AudienceAnalytics struct {
	FollowerGrowth    []DailyMetric `json:"follower_growth"`
	LifetimeFollowers int64         `json:"lifetime_followers"`
	CapturedAt        time.Time     `json:"captured_at"`
}

// DemographicAnalytics holds the five follower-demographic buckets.
// Functions is currently never populated: the rendered audience page exposes
// no section header that maps to it.
type DemographicAnalytics struct {
	Industries  []DemographicEntry `json:"industries"`
	JobTitles   []DemographicEntry `json:"job_titles"`
	Locations   []DemographicEntry `json:"locations"`
	Functions   []DemographicEntry `json:"functions"`
	Seniorities []DemographicEntry `json:"seniorities"`
	CapturedAt  time.Time          `json:"captured_at"`
}

// AnalyticsResult is the aggregate produced by one scrape cycle. A nil
// category means that category's extraction failed; Errors carries one
// "category: message" string per failure, in fixed category order. The value
// is immutable after assembly.
type AnalyticsResult struct {
	Content      *ContentAnalytics     `json:"content"`
	Audience     *AudienceAnalytics    `json:"audience"`
	Demographics *DemographicAnalytics `json:"demographics"`
	ScrapedAt    time.Time             `json:"scraped_at"`
	Errors       []string              `json:"errors"`
}

// EngagementRate computes engagements/impressions as a percentage rounded to
// two decimals. Returns 0 when impressions is 0.
func EngagementRate(engagements, impressions int64) float64 {
	if impressions == 0 {
		return 0
	}
	rate := float64(engagements) / float64(impressions) * 100
	return math.Round(rate*100) / 100
}

// SumMetrics totals a daily series.
func SumMetrics(series []DailyMetric) int64 {
	var total int64
	for _, m := range series {
		total += m.Value
	}
	return total
}
