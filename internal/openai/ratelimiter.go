package openai

import (
	"context"
	"sync"
	"time"
)

// bucket is a fixed-window request budget
type bucket struct {
	capacity   int
	window     time.Duration
	tokens     int
	lastRefill time.Time
}

func (b *bucket) refill(now time.Time) {
	if now.Sub(b.lastRefill) >= b.window {
		b.tokens = b.capacity
		b.lastRefill = now
	}
}

func (b *bucket) wait(now time.Time) time.Duration {
	if b.tokens > 0 {
		return 0
	}
	return b.window - now.Sub(b.lastRefill)
}

// RateLimiter enforces per-minute and per-day request budgets for model calls
type RateLimiter struct {
	mu     sync.Mutex
	now    func() time.Time
	minute bucket
	day    bucket
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(requestsPerMinute, requestsPerDay int) *RateLimiter {
	return newRateLimiter(requestsPerMinute, requestsPerDay, time.Now)
}

func newRateLimiter(requestsPerMinute, requestsPerDay int, now func() time.Time) *RateLimiter {
	start := now()
	return &RateLimiter{
		now:    now,
		minute: bucket{capacity: requestsPerMinute, window: time.Minute, tokens: requestsPerMinute, lastRefill: start},
		day:    bucket{capacity: requestsPerDay, window: 24 * time.Hour, tokens: requestsPerDay, lastRefill: start},
	}
}

// Wait blocks until a request can be made according to rate limits
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		waitTime, ok := rl.tryAcquire()
		if ok {
			return nil
		}

		// Wait or return if context is cancelled
		timer := time.NewTimer(waitTime)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// tryAcquire consumes one token from both buckets when available, otherwise
// it reports how long to wait before trying again.
func (rl *RateLimiter) tryAcquire() (time.Duration, bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.minute.refill(now)
	rl.day.refill(now)

	if rl.minute.tokens > 0 && rl.day.tokens > 0 {
		rl.minute.tokens--
		rl.day.tokens--
		return 0, true
	}

	// Return the maximum wait time needed
	waitTime := rl.minute.wait(now)
	if dayWait := rl.day.wait(now); dayWait > waitTime {
		waitTime = dayWait
	}
	if waitTime <= 0 {
		waitTime = time.Millisecond
	}
	return waitTime, false
}

// GetStats returns current rate limiter statistics
func (rl *RateLimiter) GetStats() (minuteTokens, dayTokens int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.minute.refill(now)
	rl.day.refill(now)
	return rl.minute.tokens, rl.day.tokens
}
