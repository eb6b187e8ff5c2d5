package watch_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/caffe-tetangga/pos-client/internal/stream"
	"github.com/caffe-tetangga/pos-client/internal/watch"
)

func TestStartPerformsInitialFetch(t *testing.T) {
	var fetches int32
	updated := make(chan int, 8)
	w := watch.New(watch.Config[int]{
		Fetch: func(ctx context.Context) (int, error) {
			return int(atomic.AddInt32(&fetches, 1)), nil
		},
		OnUpdate: func(v int) { updated <- v },
	})
	w.Start()
	defer w.Stop()

	select {
	case v := <-updated:
		if v != 1 {
			t.Fatalf("first snapshot = %d, want 1", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("initial fetch never applied")
	}

	if snap, ok := w.Snapshot(); !ok || snap != 1 {
		t.Fatalf("Snapshot() = %d, %v", snap, ok)
	}
}

func TestLastWriteWins(t *testing.T) {
	// First fetch is slow and returns stale data; the second is fast. The
	// slow result completes last but must not clobber the fresher snapshot.
	release := make(chan struct{})
	var calls int32
	updates := make(chan string, 8)

	w := watch.New(watch.Config[string]{
		Fetch: func(ctx context.Context) (string, error) {
			if atomic.AddInt32(&calls, 1) == 1 {
				<-release
				return "stale", nil
			}
			return "fresh", nil
		},
		OnUpdate: func(v string) { updates <- v },
	})
	w.Start()
	defer w.Stop()

	// Wait until the slow fetch is in flight, then trigger the fast one.
	deadline := time.After(2 * time.Second)
	for atomic.LoadInt32(&calls) == 0 {
		select {
		case <-deadline:
			t.Fatal("fetch never started")
		case <-time.After(time.Millisecond):
		}
	}
	w.Refresh()

	select {
	case v := <-updates:
		if v != "fresh" {
			t.Fatalf("first applied = %q, want fresh", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("fast fetch never applied")
	}

	close(release)
	time.Sleep(30 * time.Millisecond)

	if snap, _ := w.Snapshot(); snap != "fresh" {
		t.Fatalf("snapshot = %q; stale result overwrote a fresher one", snap)
	}
	// The dropped result must not have been delivered either.
	select {
	case v := <-updates:
		t.Fatalf("late result delivered to OnUpdate: %q", v)
	default:
	}
}

func TestRefreshNeverBlocks(t *testing.T) {
	// No loop is draining the trigger channel yet; a burst of refreshes must
	// still return immediately.
	w := watch.New(watch.Config[int]{
		Fetch: func(ctx context.Context) (int, error) { return 0, nil },
	})
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			w.Refresh()
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Refresh blocked")
	}
	w.Stop()
}

func TestFetchErrorsReachOnError(t *testing.T) {
	boom := errors.New("kitchen on fire")
	errs := make(chan error, 1)
	w := watch.New(watch.Config[int]{
		Fetch:   func(ctx context.Context) (int, error) { return 0, boom },
		OnError: func(err error) { errs <- err },
	})
	w.Start()
	defer w.Stop()

	select {
	case err := <-errs:
		if !errors.Is(err, boom) {
			t.Fatalf("err = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("error never surfaced")
	}
	if _, ok := w.Snapshot(); ok {
		t.Fatal("failed fetch produced a snapshot")
	}
}

func TestStopDiscardsInFlightFetch(t *testing.T) {
	fetching := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	var applied []int

	w := watch.New(watch.Config[int]{
		Fetch: func(ctx context.Context) (int, error) {
			close(fetching)
			<-release
			return 42, nil
		},
		OnUpdate: func(v int) {
			mu.Lock()
			applied = append(applied, v)
			mu.Unlock()
		},
	})
	w.Start()

	select {
	case <-fetching:
	case <-time.After(2 * time.Second):
		t.Fatal("fetch never started")
	}
	w.Stop()
	close(release)
	time.Sleep(30 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(applied) != 0 {
		t.Fatalf("applied after Stop: %v", applied)
	}
}

func TestPollTriggersPeriodicFetches(t *testing.T) {
	var fetches int32
	w := watch.New(watch.Config[int]{
		Fetch: func(ctx context.Context) (int, error) {
			return int(atomic.AddInt32(&fetches, 1)), nil
		},
		PollInterval: 10 * time.Millisecond,
	})
	w.Start()
	defer w.Stop()

	deadline := time.After(2 * time.Second)
	for atomic.LoadInt32(&fetches) < 3 {
		select {
		case <-deadline:
			t.Fatalf("only %d fetches; poll ticker not firing", atomic.LoadInt32(&fetches))
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestStreamEventTriggersRefetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		for i := 0; i < 3; i++ {
			fmt.Fprint(w, "data: {\"type\":\"order.status_changed\"}\n\n")
			w.(http.Flusher).Flush()
			time.Sleep(10 * time.Millisecond)
		}
		<-r.Context().Done()
	}))
	defer srv.Close()

	var fetches int32
	w := watch.New(watch.Config[int]{
		Fetch: func(ctx context.Context) (int, error) {
			return int(atomic.AddInt32(&fetches, 1)), nil
		},
		Stream: stream.Config{URL: srv.URL, BaseDelay: time.Millisecond},
	})
	w.Start()
	defer w.Stop()

	// One initial fetch plus at least one event-driven refetch.
	deadline := time.After(2 * time.Second)
	for atomic.LoadInt32(&fetches) < 2 {
		select {
		case <-deadline:
			t.Fatalf("fetches = %d; stream events not wired to refresh", atomic.LoadInt32(&fetches))
		case <-time.After(5 * time.Millisecond):
		}
	}
}
