// Package memory provides in-memory implementations of outbound ports.
package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/thevickypedia/fbgate/internal/domain/ratelimit"
)

// bucket tracks one fixed-window's count and start time for a key.
type bucket struct {
	count int
	start time.Time
}

// FixedWindowLimiter implements ratelimit.Limiter with a simple fixed
// window per spec.md §4.5: when now-start exceeds the rule's window the
// bucket resets to count 1 and start is now; otherwise the bucket
// increments and is rejected once the count would exceed MaxRequests.
// Keys are hashed to a fixed-size uint64 so the hot path never grows the
// map's string-comparison cost with long identifier+path keys.
type FixedWindowLimiter struct {
	mu      sync.Mutex
	buckets map[uint64]*bucket

	stopChan        chan struct{}
	wg              sync.WaitGroup
	once            sync.Once
	cleanupInterval time.Duration
	maxAge          time.Duration
}

// NewFixedWindowLimiter creates a limiter with default cleanup settings:
// sweep every 5 minutes, evict buckets idle for more than 1 hour.
func NewFixedWindowLimiter() *FixedWindowLimiter {
	return NewFixedWindowLimiterWithConfig(5*time.Minute, time.Hour)
}

// NewFixedWindowLimiterWithConfig creates a limiter with custom cleanup settings.
func NewFixedWindowLimiterWithConfig(cleanupInterval, maxAge time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		buckets:         make(map[uint64]*bucket),
		stopChan:        make(chan struct{}),
		cleanupInterval: cleanupInterval,
		maxAge:          maxAge,
	}
}

// Allow records one request against key under rule.
func (l *FixedWindowLimiter) Allow(_ context.Context, key string, rule ratelimit.Rule) (ratelimit.Result, error) {
	h := xxhash.Sum64String(key)
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, exists := l.buckets[h]
	if !exists || now.Sub(b.start) > time.Duration(rule.Seconds)*time.Second {
		l.buckets[h] = &bucket{count: 1, start: now}
		return ratelimit.Result{Allowed: true}, nil
	}

	if b.count+1 > rule.MaxRequests {
		retryAfter := rule.Seconds - int(now.Sub(b.start).Seconds())
		if retryAfter < 0 {
			retryAfter = 0
		}
		return ratelimit.Result{Allowed: false, RetryAfter: retryAfter}, nil
	}

	b.count++
	return ratelimit.Result{Allowed: true}, nil
}

// StartCleanup starts the background sweep goroutine; it stops when ctx
// is cancelled or Stop is called.
func (l *FixedWindowLimiter) StartCleanup(ctx context.Context) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		ticker := time.NewTicker(l.cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-l.stopChan:
				return
			case <-ticker.C:
				l.cleanup()
			}
		}
	}()
}

func (l *FixedWindowLimiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-l.maxAge)
	cleaned := 0
	for key, b := range l.buckets {
		if b.start.Before(cutoff) {
			delete(l.buckets, key)
			cleaned++
		}
	}
	if cleaned > 0 {
		slog.Debug("rate limiter cleanup completed", "cleaned_keys", cleaned, "remaining_keys", len(l.buckets))
	}
}

// Stop gracefully stops the cleanup goroutine. Safe to call multiple times.
func (l *FixedWindowLimiter) Stop() {
	l.once.Do(func() {
		close(l.stopChan)
	})
	l.wg.Wait()
}

// Size returns the current number of tracked keys.
func (l *FixedWindowLimiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

var _ ratelimit.Limiter = (*FixedWindowLimiter)(nil)
