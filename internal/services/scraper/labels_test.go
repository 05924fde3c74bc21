package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/specto/internal/models"
)

func TestParseMetricLabel(t *testing.T) {
	tests := []struct {
		name     string
		label    string
		metric   string
		expected models.DailyMetric
		ok       bool
	}{
		{
			name:     "abbreviated month",
			label:    "1. Monday, Jan 1, 2024, Impressions, 100",
			metric:   "Impressions",
			expected: models.DailyMetric{Date: "2024-01-01", Value: 100},
			ok:       true,
		},
		{
			name:     "full month name",
			label:    "14. Sunday, February 18, 2024, Impressions, 2,451",
			metric:   "Impressions",
			expected: models.DailyMetric{Date: "2024-02-18", Value: 2451},
			ok:       true,
		},
		{
			name:     "metric embedded in longer field",
			label:    "3. Wednesday, Jan 3, 2024, New followers, 12, of 340 total",
			metric:   "followers",
			expected: models.DailyMetric{Date: "2024-01-03", Value: 12},
			ok:       true,
		},
		{
			name:   "wrong metric is skipped",
			label:  "1. Monday, Jan 1, 2024, Impressions, 100",
			metric: "Engagements",
		},
		{
			name:   "no index prefix",
			label:  "Monday, Jan 1, 2024, Impressions, 100",
			metric: "Impressions",
		},
		{
			name:   "too few fields",
			label:  "1. Monday, Jan 1, Impressions",
			metric: "Impressions",
		},
		{
			name:   "unparseable date",
			label:  "1. Monday, Febtober 1, 2024, Impressions, 100",
			metric: "Impressions",
		},
		{
			name:   "non-numeric value",
			label:  "1. Monday, Jan 1, 2024, Impressions, lots",
			metric: "Impressions",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			point, ok := parseMetricLabel(tt.label, tt.metric)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.expected, point)
			}
		})
	}
}

func TestParseSeries_SkipsNonMatchingLabels(t *testing.T) {
	labels := []string{
		"1. Monday, Jan 1, 2024, Impressions, 100",
		"Chart of post impressions over time",
		"2. Tuesday, Jan 2, 2024, Impressions, 200",
		"2. Tuesday, Jan 2, 2024, Engagements, 20",
	}

	series := parseSeries(labels, "Impressions")
	require.Len(t, series, 2)
	assert.Equal(t, models.DailyMetric{Date: "2024-01-01", Value: 100}, series[0])
	assert.Equal(t, models.DailyMetric{Date: "2024-01-02", Value: 200}, series[1])
}

func TestParseFormattedInt(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
		ok       bool
	}{
		{"87", 87, true},
		{"1,234", 1234, true},
		{"12,345,678", 12345678, true},
		{"12.345", 12345, true},
		{"1 234", 1234, true},
		{"1234,5", 0, false},
		{"12.5", 0, false},
		{"4 impressions", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			value, ok := parseFormattedInt(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, value)
		})
	}
}
