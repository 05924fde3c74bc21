package scraper

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/ternarybob/specto/internal/models"
)

// Chart data points are published only through accessibility labels of the
// form "<n>. <weekday>, <month> <day>, <year>, <metric>, <value>[, ...]",
// e.g. "1. Monday, Jan 1, 2024, Impressions, 100".

// dateLayouts covers both the abbreviated and full month names the charts
// emit.
var dateLayouts = []string{"Jan 2 2006", "January 2 2006"}

// formattedIntPattern matches a value that is purely a formatted integer:
// digits with optional group separators (comma, period, space, or
// non-breaking space), nothing else.
var formattedIntPattern = regexp.MustCompile(`^\d{1,3}(?:[,.\x{00A0} ]\d{3})*$|^\d+$`)

var groupSeparators = strings.NewReplacer(",", "", ".", "", " ", "", " ", "")

// collectChartLabels gathers every accessibility label attached to chart
// elements: image alt text and aria-labels, in document order.
func collectChartLabels(doc *goquery.Document) []string {
	var labels []string
	seen := make(map[string]bool)

	add := func(label string) {
		label = strings.TrimSpace(label)
		if label == "" || seen[label] {
			return
		}
		seen[label] = true
		labels = append(labels, label)
	}

	doc.Find("img[alt]").Each(func(_ int, sel *goquery.Selection) {
		alt, _ := sel.Attr("alt")
		add(alt)
	})
	doc.Find("[aria-label]").Each(func(_ int, sel *goquery.Selection) {
		label, _ := sel.Attr("aria-label")
		add(label)
	})
	return labels
}

// parseMetricLabel parses one accessibility label into a daily metric. The
// label is attributed to the metric only when the metric name appears
// verbatim in one of its fields; anything that does not fit the grammar is
// skipped, not errored.
func parseMetricLabel(label, metric string) (models.DailyMetric, bool) {
	parts := strings.Split(label, ", ")
	if len(parts) < 5 {
		return models.DailyMetric{}, false
	}

	// "<n>. <weekday>" prefix
	if !strings.Contains(parts[0], ". ") {
		return models.DailyMetric{}, false
	}

	date, ok := parseLabelDate(parts[1], parts[2])
	if !ok {
		return models.DailyMetric{}, false
	}

	lowerMetric := strings.ToLower(metric)
	for i := 3; i < len(parts)-1; i++ {
		if !strings.Contains(strings.ToLower(parts[i]), lowerMetric) {
			continue
		}
		value, ok := parseFormattedInt(parts[i+1])
		if !ok {
			return models.DailyMetric{}, false
		}
		return models.DailyMetric{Date: date, Value: value}, true
	}
	return models.DailyMetric{}, false
}

// parseSeries applies parseMetricLabel across all labels, keeping document
// order.
func parseSeries(labels []string, metric string) []models.DailyMetric {
	var series []models.DailyMetric
	for _, label := range labels {
		if point, ok := parseMetricLabel(label, metric); ok {
			series = append(series, point)
		}
	}
	return series
}

// parseLabelDate combines the "<month> <day>" and "<year>" fields into an
// ISO-8601 calendar date.
func parseLabelDate(monthDay, year string) (string, bool) {
	raw := strings.TrimSpace(monthDay) + " " + strings.TrimSpace(year)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}

// parseFormattedInt parses a value like "1,234" or "87" into an integer.
func parseFormattedInt(raw string) (int64, bool) {
	raw = strings.TrimSpace(raw)
	if !formattedIntPattern.MatchString(raw) {
		return 0, false
	}
	value, err := strconv.ParseInt(groupSeparators.Replace(raw), 10, 64)
	if err != nil || value < 0 {
		return 0, false
	}
	return value, true
}
