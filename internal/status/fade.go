package status

import (
	"sync"
	"time"
)

// FadeDelay is how long the previous status stays on screen after a change is
// detected, so the exit transition can play before the swap.
const FadeDelay = 300 * time.Millisecond

// Fader schedules the timed cross-fade on the customer tracking view. When a
// refresh carries a changed status the swap is delayed by FadeDelay; an
// unchanged status renders immediately with no transition. The render callback
// must not call back into the Fader.
type Fader struct {
	render func(Status, Projection)
	delay  time.Duration

	mu       sync.Mutex
	current  Status
	started  bool
	pending  *time.Timer
	disposed bool
}

// NewFader wires a render callback.
func NewFader(render func(Status, Projection)) *Fader {
	return &Fader{render: render, delay: FadeDelay}
}

// SetDelay overrides the swap delay. Tests use tiny values.
func (f *Fader) SetDelay(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d > 0 {
		f.delay = d
	}
}

// Observe takes the status from the latest refresh and decides how to render
// it. The first observation renders immediately.
func (f *Fader) Observe(raw string) {
	s := Parse(raw)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.disposed {
		return
	}

	if f.started && s == f.current {
		// Unchanged between refreshes: silent update.
		f.render(s, Project(raw))
		return
	}

	if !f.started {
		f.started = true
		f.current = s
		f.render(s, Project(raw))
		return
	}

	// Status changed: hold the old content for the exit transition, then swap.
	if f.pending != nil {
		f.pending.Stop()
	}
	f.current = s
	proj := Project(raw)
	f.pending = time.AfterFunc(f.delay, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.disposed || f.current != s {
			return
		}
		f.render(s, proj)
	})
}

// Dispose cancels any pending swap. No render runs after Dispose returns.
func (f *Fader) Dispose() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disposed = true
	if f.pending != nil {
		f.pending.Stop()
		f.pending = nil
	}
}
