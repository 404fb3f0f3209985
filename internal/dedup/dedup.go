// Package dedup suppresses repeated reports of an identity that stays in view.
package dedup

import "time"

// Window is a per-identity cool-down gate. It is not safe for concurrent use;
// the frame loop owns it.
type Window struct {
	interval time.Duration
	last     map[string]time.Time
}

// New creates a window that allows one report per identity every interval.
func New(interval time.Duration) *Window {
	return &Window{
		interval: interval,
		last:     make(map[string]time.Time),
	}
}

// Interval returns the cool-down duration.
func (w *Window) Interval() time.Duration {
	return w.interval
}

// ShouldReport returns true and records now if name was never reported or was
// last reported at least one interval ago. Otherwise it returns false and
// leaves the state untouched.
func (w *Window) ShouldReport(name string, now time.Time) bool {
	if last, ok := w.last[name]; ok && now.Sub(last) < w.interval {
		return false
	}
	w.last[name] = now
	return true
}

// LastReported returns when name was last reported.
func (w *Window) LastReported(name string) (time.Time, bool) {
	t, ok := w.last[name]
	return t, ok
}

// Forget drops the state for name so its next sighting is reported.
func (w *Window) Forget(name string) {
	delete(w.last, name)
}

// Prune drops entries whose cool-down has fully elapsed at now.
// Pruned names would be reported on their next sighting anyway.
func (w *Window) Prune(now time.Time) int {
	removed := 0
	for name, last := range w.last {
		if now.Sub(last) >= w.interval {
			delete(w.last, name)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked identities.
func (w *Window) Len() int {
	return len(w.last)
}
