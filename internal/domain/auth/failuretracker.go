package auth

import (
	"context"
	"time"

	"github.com/thevickypedia/fbgate/internal/domain/blockledger"
	"github.com/thevickypedia/fbgate/internal/domain/session"
)

// now is overridable in tests; avoids depending on the wall clock directly.
var now = time.Now

// FailureTracker implements the per-host auth-failure state machine from
// spec.md §4.9, combining the process-local Session counters with the
// durable block ledger.
type FailureTracker struct {
	sess  *session.Session
	store blockledger.Store
}

// NewFailureTracker builds a FailureTracker over the given session and
// block store.
func NewFailureTracker(sess *session.Session, store blockledger.Store) *FailureTracker {
	return &FailureTracker{sess: sess, store: store}
}

// RecordFailure accounts for a login 403 from host. Counters 1-3 never
// block; counters 4 and up add host to the forbid set and escalate the
// block duration per blockledger.Escalate.
func (t *FailureTracker) RecordFailure(ctx context.Context, host string) error {
	counter := t.sess.IncrementCounter(host)
	duration, blocks := blockledger.Escalate(counter)
	if !blocks {
		return nil
	}
	t.sess.Forbid(host)
	if err := t.store.Remove(ctx, host); err != nil {
		return err
	}
	return t.store.Put(ctx, host, now().Add(duration).Unix())
}

// RecordSuccess clears host's failure state after a non-403 login response,
// per spec.md §4.9 and the §8 invariant that a successful login leaves no
// active ledger row.
func (t *FailureTracker) RecordSuccess(ctx context.Context, host string) error {
	if t.sess.Counter(host) == 0 && !t.sess.IsForbidden(host) {
		return nil
	}
	t.sess.ResetCounter(host)
	t.sess.Unforbid(host)
	return t.store.Remove(ctx, host)
}

// IsBlocked reports whether host is currently serving an active block. It
// only consults the ledger when the fast-path forbid set flags the host,
// per spec.md §4.8 step 3.
func (t *FailureTracker) IsBlocked(ctx context.Context, host string) (bool, error) {
	if !t.sess.IsForbidden(host) {
		return false, nil
	}
	blockUntil, ok, err := t.store.Get(ctx, host)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return blockUntil > now().Unix(), nil
}
