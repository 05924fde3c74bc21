package scraper

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/specto/internal/common"
	"github.com/ternarybob/specto/internal/interfaces"
	"github.com/ternarybob/specto/internal/models"
	"github.com/ternarybob/specto/internal/services/linkedin"
)

// demographicBucket identifies which result slice a tracked section feeds.
type demographicBucket int

const (
	bucketNone demographicBucket = iota
	bucketIndustries
	bucketJobTitles
	bucketLocations
	bucketSeniorities
)

// sectionKeywords map section-header lines to buckets by case-insensitive
// substring match. No keyword feeds the functions bucket: the site stopped
// exposing that section and the bucket stays empty until it returns.
var sectionKeywords = []struct {
	keyword string
	bucket  demographicBucket
}{
	{"job title", bucketJobTitles},
	{"industr", bucketIndustries},
	{"location", bucketLocations},
	{"countr", bucketLocations},
	{"seniorit", bucketSeniorities},
}

// stopKeywords are section headers that are not tracked; hitting one closes
// the current section so its rows are not misattributed.
var stopKeywords = []string{
	"company size",
	"employment type",
	"employers",
	"interests",
}

// percentagePattern matches a value line like "19.2%".
var percentagePattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)%$`)

// DemographicExtractor parses the follower-demographics page into the
// tracked percentage buckets.
type DemographicExtractor struct {
	pacer  *Pacer
	config common.ScraperConfig
	logger arbor.ILogger
}

func NewDemographicExtractor(pacer *Pacer, config common.ScraperConfig, logger arbor.ILogger) *DemographicExtractor {
	return &DemographicExtractor{
		pacer:  pacer,
		config: config,
		logger: logger,
	}
}

func (e *DemographicExtractor) Extract(ctx context.Context, session interfaces.BrowserSession) (*models.DemographicAnalytics, error) {
	doc, err := openCategoryPage(ctx, session, e.pacer, e.config, e.logger, linkedin.DemographicsURL)
	if err != nil {
		return nil, fmt.Errorf("demographics page visit failed: %w", err)
	}

	result := parseDemographicLines(textLines(doc))
	result.CapturedAt = time.Now().UTC()

	e.logger.Debug().
		Int("industries", len(result.Industries)).
		Int("job_titles", len(result.JobTitles)).
		Int("locations", len(result.Locations)).
		Int("seniorities", len(result.Seniorities)).
		Msg("Demographics parsed")

	return result, nil
}

// parseDemographicLines scans the rendered text as a line sequence. Inside a
// tracked section, a line immediately followed by a "<number>%" line is
// recorded as a label/percentage pair. On a miss the scan advances one line,
// not two, so a single malformed line cannot desynchronize the rest of the
// section.
func parseDemographicLines(lines []string) *models.DemographicAnalytics {
	result := &models.DemographicAnalytics{}
	current := bucketNone

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if bucket, ok := matchSectionHeader(line); ok {
			current = bucket
			continue
		}
		if matchStopKeyword(line) {
			current = bucketNone
			continue
		}
		if current == bucketNone || i+1 >= len(lines) {
			continue
		}

		pct, ok := parsePercentage(lines[i+1])
		if !ok {
			continue
		}
		entry := models.DemographicEntry{Label: line, Percentage: pct}
		switch current {
		case bucketIndustries:
			result.Industries = append(result.Industries, entry)
		case bucketJobTitles:
			result.JobTitles = append(result.JobTitles, entry)
		case bucketLocations:
			result.Locations = append(result.Locations, entry)
		case bucketSeniorities:
			result.Seniorities = append(result.Seniorities, entry)
		}
		i++ // value line consumed
	}
	return result
}

func matchSectionHeader(line string) (demographicBucket, bool) {
	lower := strings.ToLower(line)
	for _, section := range sectionKeywords {
		if strings.Contains(lower, section.keyword) {
			return section.bucket, true
		}
	}
	return bucketNone, false
}

func matchStopKeyword(line string) bool {
	lower := strings.ToLower(line)
	for _, keyword := range stopKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

func parsePercentage(line string) (float64, bool) {
	match := percentagePattern.FindStringSubmatch(strings.TrimSpace(line))
	if match == nil {
		return 0, false
	}
	pct, err := strconv.ParseFloat(match[1], 64)
	if err != nil || pct < 0 || pct > 100 {
		return 0, false
	}
	return pct, true
}
