// Package watch composes the live-view plumbing shared by tracking, cashier
// and production screens: an initial fetch, an SSE subscription whose events
// trigger the same fetch, and an optional fixed-interval poll that masks
// missed events. All paths converge on one idempotent refresh.
package watch

import (
	"context"
	"sync"
	"time"

	"github.com/caffe-tetangga/pos-client/internal/stream"
)

// Config parameterizes a Watcher.
type Config[T any] struct {
	// Fetch returns the full current state. Called once per trigger; results
	// replace the snapshot wholesale (no deltas).
	Fetch func(ctx context.Context) (T, error)
	// OnUpdate receives each applied snapshot, in apply order. It runs under
	// the watcher's lock and must not call back into the Watcher.
	OnUpdate func(T)
	// OnError receives fetch errors (network problems, server rejections).
	OnError func(error)
	// Stream configures the SSE channel; OnEvent is wired by the watcher
	// itself. Leave URL empty for a poll-only view.
	Stream stream.Config
	// PollInterval adds a supplementary refresh timer. Zero disables polling.
	PollInterval time.Duration
	// FetchTimeout bounds each fetch. Zero means 10s.
	FetchTimeout time.Duration
}

// Watcher keeps one screen's state fresh until Stop.
type Watcher[T any] struct {
	cfg    Config[T]
	ctx    context.Context
	cancel context.CancelFunc
	str    *stream.Stream

	trigger chan struct{}

	mu      sync.Mutex
	started bool
	snap    T
	hasSnap bool
	gen     uint64 // generation of the latest started fetch
	applied uint64 // generation of the latest applied result
}

func New[T any](cfg Config[T]) *Watcher[T] {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 10 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher[T]{
		cfg:     cfg,
		ctx:     ctx,
		cancel:  cancel,
		trigger: make(chan struct{}, 1),
	}
	if cfg.Stream.URL != "" {
		sc := cfg.Stream
		sc.OnEvent = w.Refresh
		w.str = stream.New(sc)
	}
	return w
}

// Stream exposes the underlying SSE subscription, mainly for state inspection.
func (w *Watcher[T]) Stream() *stream.Stream { return w.str }

// Start mounts the view: initial fetch, stream connect, poll ticker.
func (w *Watcher[T]) Start() {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.mu.Unlock()

	go w.loop()
	w.Refresh()
	if w.str != nil {
		w.str.Start()
	}
}

// Stop unmounts the view: the stream is disposed, the poll ticker stops and
// in-flight fetch results are discarded.
func (w *Watcher[T]) Stop() {
	w.cancel()
	if w.str != nil {
		w.str.Dispose()
	}
}

// Refresh requests a fetch. Coalesces while one is already queued.
func (w *Watcher[T]) Refresh() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// Snapshot returns the latest applied state.
func (w *Watcher[T]) Snapshot() (T, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snap, w.hasSnap
}

func (w *Watcher[T]) loop() {
	var tick <-chan time.Time
	if w.cfg.PollInterval > 0 {
		ticker := time.NewTicker(w.cfg.PollInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.trigger:
			go w.fetchOnce()
		case <-tick:
			go w.fetchOnce()
		}
	}
}

// fetchOnce runs one fetch and applies it last-write-wins: completions may
// arrive out of order, so a result is dropped when a later-started fetch has
// already been applied. The stop check and the delivery happen inside the
// same critical section as the ordering decision, so a Stop cannot slip in
// between them and two completions cannot deliver out of apply order.
func (w *Watcher[T]) fetchOnce() {
	w.mu.Lock()
	w.gen++
	gen := w.gen
	w.mu.Unlock()

	ctx, cancel := context.WithTimeout(w.ctx, w.cfg.FetchTimeout)
	defer cancel()

	snap, err := w.cfg.Fetch(ctx)
	if err != nil {
		if w.ctx.Err() == nil && w.cfg.OnError != nil {
			w.cfg.OnError(err)
		}
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ctx.Err() != nil {
		// Unmounted while fetching: discard, never render stale data.
		return
	}
	if gen < w.applied {
		return
	}
	w.applied = gen
	w.snap = snap
	w.hasSnap = true
	if w.cfg.OnUpdate != nil {
		w.cfg.OnUpdate(snap)
	}
}
