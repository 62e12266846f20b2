package webhook

import (
	"sync"
	"time"
)

const rateLimitWindow = time.Minute

// RateLimiter applies a sliding-window per-IP request limit.
type RateLimiter struct {
	requests        map[string][]time.Time
	maxPerWindow    int
	mu              sync.Mutex
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once
}

// NewRateLimiter creates a rate limiter allowing maxPerMinute requests per IP.
func NewRateLimiter(maxPerMinute int) *RateLimiter {
	rl := &RateLimiter{
		requests:        make(map[string][]time.Time),
		maxPerWindow:    maxPerMinute,
		cleanupInterval: 5 * time.Minute,
		stopCleanup:     make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Allow reports whether a request from ip is within the limit, recording it
// when allowed.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	recent := pruneOld(rl.requests[ip], now)

	if len(recent) >= rl.maxPerWindow {
		rl.requests[ip] = recent
		return false
	}

	rl.requests[ip] = append(recent, now)
	return true
}

// RetryAfter returns the seconds until the oldest recorded request for ip
// leaves the window. Returns 0 when the IP is not limited.
func (rl *RateLimiter) RetryAfter(ip string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	recent := rl.requests[ip]
	if len(recent) == 0 {
		return 0
	}

	remaining := rateLimitWindow - time.Since(recent[0])
	if remaining <= 0 {
		return 0
	}
	return int((remaining + time.Second - 1) / time.Second)
}

// Stop terminates the background cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCleanup:
			return
		}
	}
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for ip, times := range rl.requests {
		recent := pruneOld(times, now)
		if len(recent) == 0 {
			delete(rl.requests, ip)
		} else {
			rl.requests[ip] = recent
		}
	}
}

// pruneOld drops timestamps that have left the sliding window.
func pruneOld(times []time.Time, now time.Time) []time.Time {
	recent := times[:0]
	for _, ts := range times {
		if now.Sub(ts) < rateLimitWindow {
			recent = append(recent, ts)
		}
	}
	return recent
}
