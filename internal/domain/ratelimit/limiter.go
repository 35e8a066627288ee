package ratelimit

import "context"

// Limiter is the storage-agnostic rate limiter interface the proxy engine
// calls against. Implementations apply a simple fixed window: when
// now-start exceeds rule.Seconds the bucket resets to count 1; otherwise
// the bucket increments and is rejected once the count would exceed
// rule.MaxRequests.
type Limiter interface {
	// Allow checks and records one request against key under rule. The
	// key should be built with FormatKey.
	Allow(ctx context.Context, key string, rule Rule) (Result, error)
}
