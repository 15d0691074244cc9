package ratelimit

import (
	"sync"
	"time"
)

// Default gate sizes for the review pipeline.
const (
	UploadLimit    = 10
	UploadWindow   = time.Minute
	AnalysisLimit  = 5
	AnalysisWindow = 5 * time.Minute
)

// Limiter is a per-user sliding-window counter. Allow is an atomic
// check-and-record: two concurrent calls can never both pass a boundary
// check, so it is safe to gate resource creation on its result alone.
type Limiter struct {
	mu     sync.Mutex
	events map[string][]time.Time
	limit  int
	window time.Duration
	now    func() time.Time
}

// New constructs a Limiter allowing limit events per window per key.
func New(limit int, window time.Duration) *Limiter {
	return NewWithClock(limit, window, nil)
}

// NewWithClock constructs a Limiter with an injectable clock for tests.
func NewWithClock(limit int, window time.Duration, now func() time.Time) *Limiter {
	if now == nil {
		now = time.Now
	}
	return &Limiter{
		events: make(map[string][]time.Time),
		limit:  limit,
		window: window,
		now:    now,
	}
}

// Allow records one event for key if it fits the window and reports whether
// it was admitted. On rejection it returns how long the caller should wait
// before the oldest event leaves the window. Rejected attempts are not
// recorded; a throttled client does not push its own window forward.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	if l == nil || l.limit <= 0 || l.window <= 0 {
		return true, 0
	}
	now := l.now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	kept := pruneBefore(l.events[key], cutoff)
	if len(kept) >= l.limit {
		l.events[key] = kept
		return false, kept[0].Sub(cutoff)
	}
	l.events[key] = append(kept, now)
	return true, 0
}

// Remaining reports how many events key may still record in the current window.
func (l *Limiter) Remaining(key string) int {
	if l == nil || l.limit <= 0 {
		return 0
	}
	cutoff := l.now().Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	kept := pruneBefore(l.events[key], cutoff)
	l.events[key] = kept
	return l.limit - len(kept)
}

func pruneBefore(events []time.Time, cutoff time.Time) []time.Time {
	idx := 0
	for idx < len(events) && !events[idx].After(cutoff) {
		idx++
	}
	if idx == 0 {
		return events
	}
	return append([]time.Time(nil), events[idx:]...)
}
