package badger

import (
	"context"
	"testing"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/specto/internal/models"
)

func newTestRunStorage(t *testing.T) *RunStorage {
	t.Helper()

	options := badgerhold.DefaultOptions
	options.Dir = t.TempDir()
	options.ValueDir = options.Dir
	options.Logger = nil

	store, err := badgerhold.Open(options)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	db := &BadgerDB{store: store, logger: arbor.NewLogger()}
	return &RunStorage{db: db, logger: arbor.NewLogger()}
}

func TestRunStorage_SaveAndListRuns(t *testing.T) {
	storage := newTestRunStorage(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		run := &models.ScrapeRun{
			StartedAt:   base.Add(time.Duration(i) * time.Hour),
			CompletedAt: base.Add(time.Duration(i)*time.Hour + time.Minute),
			DurationMS:  60000,
			Result:      &models.AnalyticsResult{ScrapedAt: base},
			ErrorCount:  i,
		}
		if err := storage.SaveRun(ctx, run); err != nil {
			t.Fatalf("Failed to save run %d: %v", i, err)
		}
		if run.ID == "" {
			t.Fatal("SaveRun did not assign an ID")
		}
	}

	runs, err := storage.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("Failed to list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Expected 2 runs, got %d", len(runs))
	}
	// Newest first.
	if !runs[0].StartedAt.After(runs[1].StartedAt) {
		t.Errorf("Runs not sorted newest-first: %v then %v", runs[0].StartedAt, runs[1].StartedAt)
	}
}

func TestRunStorage_GetLatest(t *testing.T) {
	storage := newTestRunStorage(t)
	ctx := context.Background()

	if _, err := storage.GetLatest(ctx); err == nil {
		t.Fatal("Expected error when no runs recorded")
	}

	newest := &models.ScrapeRun{
		StartedAt:  time.Date(2024, 2, 1, 6, 0, 0, 0, time.UTC),
		ErrorCount: 1,
	}
	older := &models.ScrapeRun{
		StartedAt: time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC),
	}
	if err := storage.SaveRun(ctx, older); err != nil {
		t.Fatal(err)
	}
	if err := storage.SaveRun(ctx, newest); err != nil {
		t.Fatal(err)
	}

	latest, err := storage.GetLatest(ctx)
	if err != nil {
		t.Fatalf("Failed to get latest run: %v", err)
	}
	if latest.ID != newest.ID {
		t.Errorf("Expected latest run %s, got %s", newest.ID, latest.ID)
	}
}
