// Package session holds the proxy's process-local mutable state: per-host
// auth failure counters, the forbid fast-path set, last-logged-path info,
// and the allowed-origins set. Rate-limit buckets are kept by the limiter
// (internal/adapter/outbound/memory), not here. Each field is
// guarded by its own lock so independent handlers never contend on
// unrelated state (spec.md §5: "one mutex per field suffices").
package session

import (
	"sync"
	"sync/atomic"
)

// Session is created once at proxy start and discarded at process exit.
type Session struct {
	counterMu sync.Mutex
	counter   map[string]int

	forbidMu sync.Mutex
	forbid   map[string]struct{}

	infoMu sync.Mutex
	info   map[string]string

	origins atomic.Pointer[map[string]struct{}]
}

// New builds an empty Session seeded with the given static allowed origins.
func New(staticOrigins []string) *Session {
	s := &Session{
		counter: make(map[string]int),
		forbid:  make(map[string]struct{}),
		info:    make(map[string]string),
	}
	set := make(map[string]struct{}, len(staticOrigins))
	for _, o := range staticOrigins {
		if o != "" {
			set[o] = struct{}{}
		}
	}
	s.origins.Store(&set)
	return s
}

// IncrementCounter increments and returns the auth-failure counter for host.
func (s *Session) IncrementCounter(host string) int {
	s.counterMu.Lock()
	defer s.counterMu.Unlock()
	s.counter[host]++
	return s.counter[host]
}

// ResetCounter removes the auth-failure counter for host.
func (s *Session) ResetCounter(host string) {
	s.counterMu.Lock()
	defer s.counterMu.Unlock()
	delete(s.counter, host)
}

// Counter returns the current auth-failure counter for host.
func (s *Session) Counter(host string) int {
	s.counterMu.Lock()
	defer s.counterMu.Unlock()
	return s.counter[host]
}

// Forbid adds host to the fast-path forbid set.
func (s *Session) Forbid(host string) {
	s.forbidMu.Lock()
	defer s.forbidMu.Unlock()
	s.forbid[host] = struct{}{}
}

// Unforbid removes host from the forbid set.
func (s *Session) Unforbid(host string) {
	s.forbidMu.Lock()
	defer s.forbidMu.Unlock()
	delete(s.forbid, host)
}

// IsForbidden reports whether host is currently in the forbid set.
func (s *Session) IsForbidden(host string) bool {
	s.forbidMu.Lock()
	defer s.forbidMu.Unlock()
	_, ok := s.forbid[host]
	return ok
}

// ForbidCount reports the current size of the forbid set, for metrics.
func (s *Session) ForbidCount() int {
	s.forbidMu.Lock()
	defer s.forbidMu.Unlock()
	return len(s.forbid)
}

// MarkSeen records host as seen (with an empty last-logged path if it is
// new) and reports whether this is the first time host has been seen this
// process (the caller uses this to de-duplicate connection logging).
func (s *Session) MarkSeen(host string) (firstContact bool) {
	s.infoMu.Lock()
	defer s.infoMu.Unlock()
	_, seen := s.info[host]
	if !seen {
		s.info[host] = ""
	}
	return !seen
}

// LastLoggedPath returns the last "METHOD PATH" logged for host.
func (s *Session) LastLoggedPath(host string) string {
	s.infoMu.Lock()
	defer s.infoMu.Unlock()
	return s.info[host]
}

// SetLastLoggedPath records the most recently logged "METHOD PATH" for host.
func (s *Session) SetLastLoggedPath(host, methodPath string) {
	s.infoMu.Lock()
	defer s.infoMu.Unlock()
	s.info[host] = methodPath
}

// AllowedOrigins returns a snapshot of the current allowed-origin set.
// Safe to call concurrently with SwapAllowedOrigins.
func (s *Session) AllowedOrigins() map[string]struct{} {
	return *s.origins.Load()
}

// IsAllowedOrigin reports whether host is currently an allowed origin.
func (s *Session) IsAllowedOrigin(host string) bool {
	set := *s.origins.Load()
	_, ok := set[host]
	return ok
}

// SwapAllowedOrigins atomically replaces the allowed-origin set. Used by
// the periodic refresher; readers always see a complete set, never a
// partially-updated one.
func (s *Session) SwapAllowedOrigins(next map[string]struct{}) {
	s.origins.Store(&next)
}
