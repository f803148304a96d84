// Package ratelimit provides the shared gate that spaces outbound API calls.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultInterval is the minimum spacing between calls to one endpoint family.
const DefaultInterval = 350 * time.Millisecond

// Gate enforces a minimum interval between successive calls per endpoint family.
// Each family is a leaky bucket of one: no burst beyond a single call.
// A Gate is safe for concurrent use and is meant to be shared by every client.
type Gate struct {
	interval time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewGate creates a gate with the given interval. Non-positive values use DefaultInterval.
func NewGate(interval time.Duration) *Gate {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Gate{
		interval: interval,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Interval returns the configured minimum spacing.
func (g *Gate) Interval() time.Duration {
	return g.interval
}

// Wait blocks until a call to family is eligible. It only fails when ctx is done.
func (g *Gate) Wait(ctx context.Context, family string) error {
	if err := g.limiter(family).Wait(ctx); err != nil {
		return fmt.Errorf("waiting for %s rate limit: %w", family, err)
	}
	return nil
}

func (g *Gate) limiter(family string) *rate.Limiter {
	g.mu.Lock()
	defer g.mu.Unlock()

	l, ok := g.limiters[family]
	if !ok {
		l = rate.NewLimiter(rate.Every(g.interval), 1)
		g.limiters[family] = l
	}
	return l
}
