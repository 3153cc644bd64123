// Package ratelimit spaces outbound calls per remote host and lets a host
// that answered "too many requests" be paused.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HostLimiter keeps one token bucket and one pause deadline per host.
type HostLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	hosts    map[string]*hostState
	now      func() time.Time
}

type hostState struct {
	bucket      *rate.Limiter
	pausedUntil time.Time
}

// NewHostLimiter allows one call per interval to each host. A non-positive
// interval disables spacing; pauses still apply.
func NewHostLimiter(interval time.Duration) *HostLimiter {
	return &HostLimiter{
		interval: interval,
		hosts:    make(map[string]*hostState),
		now:      time.Now,
	}
}

// Wait blocks until a call to host may proceed or ctx is done.
func (l *HostLimiter) Wait(ctx context.Context, host string) error {
	st, pausedFor := l.state(host)
	if pausedFor > 0 {
		t := time.NewTimer(pausedFor)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	return st.bucket.Wait(ctx)
}

// Pause holds every call to host for d. A shorter pause never cuts an
// existing one short.
func (l *HostLimiter) Pause(host string, d time.Duration) {
	if d <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	st := l.lookup(host)
	if until := l.now().Add(d); until.After(st.pausedUntil) {
		st.pausedUntil = until
	}
}

// PausedFor returns how long host remains paused.
func (l *HostLimiter) PausedFor(host string) time.Duration {
	_, d := l.state(host)
	return d
}

func (l *HostLimiter) state(host string) (*hostState, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	st := l.lookup(host)
	return st, max(st.pausedUntil.Sub(l.now()), 0)
}

// lookup must be called with mu held.
func (l *HostLimiter) lookup(host string) *hostState {
	st, ok := l.hosts[host]
	if !ok {
		limit := rate.Inf
		if l.interval > 0 {
			limit = rate.Every(l.interval)
		}
		st = &hostState{bucket: rate.NewLimiter(limit, 1)}
		l.hosts[host] = st
	}
	return st
}
