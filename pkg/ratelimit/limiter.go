package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// Limiter defines the interface for rate limiting
type Limiter interface {
	// Allow checks if a request is allowed under the current rate limit
	Allow() bool
	// Wait blocks until the rate limit allows another request
	Wait()
	// Reset resets the rate limiter state
	Reset()
}

// Strategy selects a limiter implementation.
type Strategy string

const (
	// StrategyInterval spaces request starts evenly; this is the default.
	StrategyInterval Strategy = "interval"
	// StrategyBurst allows a full minute's budget up front, then refills.
	StrategyBurst Strategy = "burst"
	// StrategyWindow counts requests inside a sliding one-minute window.
	StrategyWindow Strategy = "window"
)

// New builds a limiter for the given strategy and per-minute budget.
func New(strategy Strategy, requestsPerMinute int) (Limiter, error) {
	switch strategy {
	case StrategyInterval, "":
		return NewInterval(requestsPerMinute), nil
	case StrategyBurst:
		return NewTokenBucket(requestsPerMinute, time.Minute), nil
	case StrategyWindow:
		return NewSlidingWindow(requestsPerMinute, time.Minute), nil
	default:
		return nil, fmt.Errorf("unknown rate limit strategy: %q", strategy)
	}
}

// Interval enforces a minimum wall-clock gap between the start of
// successive requests, shared by every worker holding a reference to it.
type Interval struct {
	interval time.Duration
	last     time.Time // start time of the most recently granted request
	mu       sync.Mutex
}

// NewInterval creates an Interval limiter spacing request starts
// 60s/requestsPerMinute apart.
func NewInterval(requestsPerMinute int) *Interval {
	if requestsPerMinute < 1 {
		requestsPerMinute = 1
	}
	return &Interval{
		interval: time.Minute / time.Duration(requestsPerMinute),
	}
}

// Allow grants a request only if the interval has already elapsed.
func (iv *Interval) Allow() bool {
	iv.mu.Lock()
	defer iv.mu.Unlock()

	now := time.Now()
	if now.Sub(iv.last) < iv.interval {
		return false
	}
	iv.last = now
	return true
}

// Wait blocks the caller until the interval since the previous grant has
// elapsed, then records the new grant. The slot is reserved while the
// lock is held, so two callers can never observe the same stale
// timestamp and proceed together; the sleep itself happens outside the
// critical section.
func (iv *Interval) Wait() {
	iv.mu.Lock()
	now := time.Now()
	target := iv.last.Add(iv.interval)
	if target.Before(now) {
		target = now
	}
	iv.last = target
	iv.mu.Unlock()

	if d := time.Until(target); d > 0 {
		time.Sleep(d)
	}
}

// Reset forgets the previous grant so the next request proceeds at once.
func (iv *Interval) Reset() {
	iv.mu.Lock()
	defer iv.mu.Unlock()

	iv.last = time.Time{}
}

// TokenBucket implements a token bucket rate limiter
type TokenBucket struct {
	capacity     int           // Maximum number of tokens
	tokens       int           // Current number of tokens
	refillPeriod time.Duration // Period after which bucket is refilled
	lastRefill   time.Time     // Last time the bucket was refilled
	mu           sync.Mutex
}

// NewTokenBucket creates a new token bucket rate limiter
func NewTokenBucket(capacity int, refillPeriod time.Duration) *TokenBucket {
	return &TokenBucket{
		capacity:     capacity,
		tokens:       capacity,
		refillPeriod: refillPeriod,
		lastRefill:   time.Now(),
	}
}

// Allow checks if a request can proceed
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()

	if tb.tokens > 0 {
		tb.tokens--
		return true
	}

	return false
}

// Wait blocks until a token is available
func (tb *TokenBucket) Wait() {
	for !tb.Allow() {
		tb.mu.Lock()
		timeUntilRefill := tb.refillPeriod - time.Since(tb.lastRefill)
		tb.mu.Unlock()

		if timeUntilRefill > 0 {
			time.Sleep(timeUntilRefill)
		} else {
			// Small sleep to prevent busy waiting
			time.Sleep(100 * time.Millisecond)
		}
	}
}

// Reset resets the token bucket to full capacity
func (tb *TokenBucket) Reset() {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.tokens = tb.capacity
	tb.lastRefill = time.Now()
}

// refill adds tokens based on elapsed time
func (tb *TokenBucket) refill() {
	now := time.Now()
	elapsed := now.Sub(tb.lastRefill)

	if elapsed >= tb.refillPeriod {
		tb.tokens = tb.capacity
		tb.lastRefill = now
	}
}

// SlidingWindow implements a sliding window rate limiter
type SlidingWindow struct {
	windowSize  time.Duration
	maxRequests int
	requests    []time.Time
	mu          sync.Mutex
}

// NewSlidingWindow creates a new sliding window rate limiter
func NewSlidingWindow(maxRequests int, windowSize time.Duration) *SlidingWindow {
	return &SlidingWindow{
		windowSize:  windowSize,
		maxRequests: maxRequests,
		requests:    make([]time.Time, 0, maxRequests),
	}
}

// Allow checks if a request can proceed
func (sw *SlidingWindow) Allow() bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	now := time.Now()
	sw.cleanOldRequests(now)

	if len(sw.requests) < sw.maxRequests {
		sw.requests = append(sw.requests, now)
		return true
	}

	return false
}

// Wait blocks until a request is allowed
func (sw *SlidingWindow) Wait() {
	for !sw.Allow() {
		sw.mu.Lock()
		if len(sw.requests) > 0 {
			oldestRequest := sw.requests[0]
			timeToWait := sw.windowSize - time.Since(oldestRequest)
			sw.mu.Unlock()

			if timeToWait > 0 {
				time.Sleep(timeToWait)
			}
		} else {
			sw.mu.Unlock()
			time.Sleep(100 * time.Millisecond)
		}
	}
}

// Reset clears all recorded requests
func (sw *SlidingWindow) Reset() {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	sw.requests = sw.requests[:0]
}

// cleanOldRequests removes requests outside the sliding window
func (sw *SlidingWindow) cleanOldRequests(now time.Time) {
	cutoff := now.Add(-sw.windowSize)

	// Find the first request that's within the window
	i := 0
	for i < len(sw.requests) && sw.requests[i].Before(cutoff) {
		i++
	}

	// Keep only requests within the window
	if i > 0 {
		copy(sw.requests, sw.requests[i:])
		sw.requests = sw.requests[:len(sw.requests)-i]
	}
}
