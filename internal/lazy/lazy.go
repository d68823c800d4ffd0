// Package lazy drives deferred portrait loading. Each below-the-fold
// portrait starts as a placeholder; a load begins when the placeholder nears
// the viewport (or when the whole loader is force-enabled by the fallback
// timer), and the placeholder stays on screen for a minimum display time
// even when the load finishes near-instantly, so fast loads don't flicker.
package lazy

import "time"

type Status int

const (
	// StatusPlaceholder: registered, load not started.
	StatusPlaceholder Status = iota
	// StatusLoading: load in flight, or finished but still inside the
	// minimum display window.
	StatusLoading
	StatusLoaded
	StatusFailed
)

type entry struct {
	status    Status
	startedAt time.Time
	// done holds the load outcome while we wait out the display window.
	done   bool
	failed bool
}

// Loader tracks placeholder lifecycles. It is driven by the event loop:
// StartNear when proximity triggers (ForceEnable when the fallback timer
// fires first), Complete when the load callback fires, Swap when the
// returned delay elapses.
type Loader struct {
	minDisplay time.Duration
	enabled    bool
	entries    map[string]*entry
	now        func() time.Time
}

func NewLoader(minDisplay time.Duration, now func() time.Time) *Loader {
	if now == nil {
		now = time.Now
	}
	return &Loader{
		minDisplay: minDisplay,
		entries:    map[string]*entry{},
		now:        now,
	}
}

// Register adds a placeholder for src. Re-registering a known src is a
// no-op, so render passes can call this unconditionally.
func (l *Loader) Register(src string) {
	if src == "" {
		return
	}
	if _, ok := l.entries[src]; ok {
		return
	}
	l.entries[src] = &entry{status: StatusPlaceholder}
}

// ForceEnabled reports whether the fallback timer has fired.
func (l *Loader) ForceEnabled() bool { return l.enabled }

// ForceEnable starts every pending load regardless of proximity and returns
// the srcs started. This is the fallback path for when proximity tracking
// never fires; calling it again is harmless.
func (l *Loader) ForceEnable() []string {
	l.enabled = true
	var starts []string
	for src, en := range l.entries {
		if en.status == StatusPlaceholder {
			starts = append(starts, src)
		}
	}
	for _, src := range starts {
		l.markStarted(src)
	}
	return starts
}

// StartNear begins loads for placeholders that have come near the viewport,
// returning the ones actually started.
func (l *Loader) StartNear(srcs []string) []string {
	var starts []string
	for _, src := range srcs {
		if en, ok := l.entries[src]; ok && en.status == StatusPlaceholder {
			starts = append(starts, src)
			l.markStarted(src)
		}
	}
	return starts
}

func (l *Loader) markStarted(src string) {
	en := l.entries[src]
	en.status = StatusLoading
	en.startedAt = l.now()
}

// Complete records a load outcome and returns how long the placeholder must
// remain before the swap (zero when the minimum display time has already
// passed). The caller schedules Swap after that delay.
func (l *Loader) Complete(src string, ok bool) time.Duration {
	en, known := l.entries[src]
	if !known || en.status != StatusLoading || en.done {
		return 0
	}
	en.done = true
	en.failed = !ok
	elapsed := l.now().Sub(en.startedAt)
	if elapsed >= l.minDisplay {
		return 0
	}
	return l.minDisplay - elapsed
}

// Swap finalizes a completed entry, replacing the placeholder with the
// loaded image or the error placeholder.
func (l *Loader) Swap(src string) Status {
	en, known := l.entries[src]
	if !known || !en.done {
		return l.Status(src)
	}
	if en.failed {
		en.status = StatusFailed
	} else {
		en.status = StatusLoaded
	}
	return en.status
}

func (l *Loader) Status(src string) Status {
	if en, ok := l.entries[src]; ok {
		return en.status
	}
	return StatusPlaceholder
}
