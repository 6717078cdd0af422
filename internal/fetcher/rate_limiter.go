package fetcher

import (
	"context"
	"sync"
	"time"
)

// RateLimiter spaces requests to the same host evenly across a minute.
type RateLimiter struct {
	interval time.Duration
	last     map[string]time.Time
	mu       sync.Mutex
}

// NewRateLimiter with rpm <= 0 returns a limiter that never waits.
func NewRateLimiter(rpm int) *RateLimiter {
	rl := &RateLimiter{last: make(map[string]time.Time)}
	if rpm > 0 {
		rl.interval = time.Minute / time.Duration(rpm)
	}
	return rl
}

func (rl *RateLimiter) Wait(ctx context.Context, host string) error {
	if rl.interval == 0 {
		return nil
	}

	rl.mu.Lock()
	now := time.Now()
	next := rl.last[host].Add(rl.interval)
	if next.Before(now) {
		next = now
	}
	rl.last[host] = next
	rl.mu.Unlock()

	wait := time.Until(next)
	if wait <= 0 {
		return nil
	}

	select {
	case <-time.After(wait):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
