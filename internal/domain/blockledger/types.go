// Package blockledger implements the auth-failure escalation state
// machine and defines the Store contract for the durable host→block-until
// ledger that backs it across proxy restarts.
package blockledger

import (
	"context"
	"time"
)

// Store is the durable host -> block_until ledger. Implementations must
// be safe for concurrent use by request handlers.
type Store interface {
	// Get returns the latest block_until epoch seconds for host, and
	// whether a row exists at all.
	Get(ctx context.Context, host string) (blockUntil int64, ok bool, err error)
	// Put inserts a new row. Callers must Remove first to avoid
	// accumulation; readers tolerate duplicate rows by using the latest.
	Put(ctx context.Context, host string, blockUntil int64) error
	// Remove deletes all rows for host.
	Remove(ctx context.Context, host string) error
	// Close releases the underlying connection.
	Close() error
}

// blockMinutes is the counter->minutes escalation table from spec.md §4.9.
var blockMinutes = map[int]int{
	4: 5,
	5: 10,
	6: 20,
	7: 40,
	8: 80,
	9: 160,
	10: 220,
}

// ThirtyDayBlock is the duration applied once the counter reaches 10 or
// more; it replaces the table's 220-minute entry for counter 10.
const ThirtyDayBlock = 30 * 24 * time.Hour

// Escalate returns the block duration for the given failure counter, and
// whether this counter should trigger a block at all (counters 1-3 never
// block). Counters 4-9 use the table; 10+ uses the 30-day ceiling.
func Escalate(counter int) (time.Duration, bool) {
	if counter < 4 {
		return 0, false
	}
	if counter == 10 {
		return ThirtyDayBlock, true
	}
	if counter > 10 {
		return ThirtyDayBlock, true
	}
	minutes, ok := blockMinutes[counter]
	if !ok {
		return 0, false
	}
	return time.Duration(minutes) * time.Minute, true
}
