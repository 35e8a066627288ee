package originfirewall

import (
	"context"
	"log/slog"
	"time"
)

// SwapFunc atomically replaces the proxy's live allowed-origin set, e.g.
// session.Session.SwapAllowedOrigins combined with the static origin list.
type SwapFunc func(next map[string]struct{})

// SnapshotFunc returns the currently active allowed-origin set, used to
// diff against a freshly resolved set before swapping.
type SnapshotFunc func() map[string]struct{}

// Refresher periodically recomputes the origin set and swaps it in,
// logging additions and removals. It only needs to run when an interval
// is configured AND at least one dynamic source is enabled — a purely
// static origin list never changes, so spec.md requires callers to skip
// starting the refresher in that case.
type Refresher struct {
	cfg      Config
	interval time.Duration
	snapshot SnapshotFunc
	swap     SwapFunc
	logger   *slog.Logger
}

// NewRefresher builds a Refresher. Run must be launched in its own
// goroutine and stops when ctx is cancelled.
func NewRefresher(cfg Config, interval time.Duration, snapshot SnapshotFunc, swap SwapFunc, logger *slog.Logger) *Refresher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{cfg: cfg, interval: interval, snapshot: snapshot, swap: swap, logger: logger}
}

// ShouldRun reports whether the refresher has any work to do: spec.md
// §4.6 requires origin_refresh to be set AND at least one dynamic
// source enabled.
func ShouldRun(interval time.Duration, cfg Config) bool {
	return interval > 0 && (cfg.AllowPrivateIP || cfg.AllowPublicIP)
}

// Run blocks, re-resolving the origin set every interval until ctx is
// cancelled. Cancellation is guaranteed to stop the loop promptly.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.refreshOnce(ctx)
		}
	}
}

func (r *Refresher) refreshOnce(ctx context.Context) {
	next, err := Resolve(ctx, r.cfg)
	if err != nil {
		r.logger.Warn("origin refresh failed", "error", err)
		return
	}
	current := r.snapshot()
	for origin := range next {
		if _, ok := current[origin]; !ok {
			r.logger.Info("origin added", "origin", origin)
		}
	}
	for origin := range current {
		if _, ok := next[origin]; !ok {
			r.logger.Info("origin removed", "origin", origin)
		}
	}
	r.swap(next)
}
