package models

import "time"

// ScrapeRun is the persisted record of one scrape cycle, kept in the run
// history store so consecutive captures can be compared.
type ScrapeRun struct {
	ID          string           `json:"id" badgerhold:"key"`
	StartedAt   time.Time        `json:"started_at"`
	CompletedAt time.Time        `json:"completed_at"`
	DurationMS  int64            `json:"duration_ms"`
	Result      *AnalyticsResult `json:"result"`
	ErrorCount  int              `json:"error_count"`
}
