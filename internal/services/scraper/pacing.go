package scraper

import (
	"context"
	"math/rand/v2"
	"time"

	"golang.org/x/time/rate"

	"github.com/ternarybob/specto/internal/common"
)

// Pacer throttles page navigations and inserts randomized human-like pauses
// between navigation and parsing.
type Pacer struct {
	limiter *rate.Limiter
	minWait time.Duration
	maxWait time.Duration
}

func NewPacer(config common.ScraperConfig) *Pacer {
	perSecond := config.NavPerSecond
	if perSecond <= 0 {
		perSecond = 1
	}
	return &Pacer{
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
		minWait: config.MinHumanWait,
		maxWait: config.MaxHumanWait,
	}
}

// WaitNav blocks until the navigation rate limit admits another page load.
func (p *Pacer) WaitNav(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

// HumanDelay sleeps for a random duration within the configured window.
func (p *Pacer) HumanDelay(ctx context.Context) error {
	delay := p.minWait
	if span := p.maxWait - p.minWait; span > 0 {
		delay += rand.N(span)
	}
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
