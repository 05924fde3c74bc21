package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/specto/internal/common"
)

// Service runs the scrape cycle on a cron schedule. Cycles never overlap: a
// tick that fires while a cycle is still running is skipped.
type Service struct {
	config common.ScheduleConfig
	logger arbor.ILogger
	cycle  func(context.Context) error

	cron    *cron.Cron
	cronID  cron.EntryID
	running bool
	cycleMu sync.Mutex
	stateMu sync.Mutex
}

// NewService wraps a scrape-cycle function in a cron schedule.
func NewService(config common.ScheduleConfig, cycle func(context.Context) error, logger arbor.ILogger) *Service {
	return &Service{
		config: config,
		logger: logger,
		cycle:  cycle,
		cron:   cron.New(),
	}
}

// Start registers the schedule and begins firing ticks.
func (s *Service) Start(ctx context.Context) error {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	id, err := s.cron.AddFunc(s.config.Cron, func() { s.runCycle(ctx) })
	if err != nil {
		return fmt.Errorf("failed to register schedule %q: %w", s.config.Cron, err)
	}
	s.cronID = id
	s.cron.Start()
	s.running = true

	s.logger.Info().
		Str("cron", s.config.Cron).
		Msg("Scrape schedule started")
	return nil
}

// Stop halts the schedule and waits for a cycle in flight to finish.
func (s *Service) Stop() {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if !s.running {
		return
	}

	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.running = false
	s.logger.Info().Msg("Scrape schedule stopped")
}

// IsRunning reports whether the schedule is active.
func (s *Service) IsRunning() bool {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.running
}

func (s *Service) runCycle(ctx context.Context) {
	if !s.cycleMu.TryLock() {
		s.logger.Warn().Msg("Previous scrape cycle still running, skipping tick")
		return
	}
	defer s.cycleMu.Unlock()

	if err := s.cycle(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Scheduled scrape cycle failed")
	}
}
