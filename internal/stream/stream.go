// Package stream implements the reconnecting Server-Sent-Events consumer
// shared by the production queue, the cashier queue and the customer tracking
// view. Each inbound data event is only a "something changed" signal: the
// payload is discarded and a refresh callback fires instead.
package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"
)

// State is the lifecycle of one Stream.
type State int

const (
	Idle State = iota
	Connecting
	Streaming
	ReconnectScheduled
	Failed   // gave up after MaxAttempts consecutive failures; terminal
	Disposed // explicitly cancelled; terminal
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Connecting:
		return "connecting"
	case Streaming:
		return "streaming"
	case ReconnectScheduled:
		return "reconnect-scheduled"
	case Failed:
		return "failed"
	case Disposed:
		return "disposed"
	}
	return "unknown"
}

const (
	// DefaultBaseDelay seeds the exponential backoff.
	DefaultBaseDelay = 1 * time.Second
	// DefaultMaxDelay caps any single reconnect delay.
	DefaultMaxDelay = 30 * time.Second
	// DefaultMaxAttempts bounds consecutive reconnects per mount lifetime.
	DefaultMaxAttempts = 5
)

// ReconnectDelay computes the backoff before reconnect attempt n (1-based):
// min(base x 2^(n-1), max). With the defaults attempts 1..5 wait
// 1s, 2s, 4s, 8s and 16s.
func ReconnectDelay(attempt int, base, max time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := base << (attempt - 1)
	if d > max || d <= 0 { // <=0 guards shift overflow
		return max
	}
	return d
}

// TokenSource supplies the bearer credential for authenticated channels.
// *session.Store satisfies it.
type TokenSource interface {
	Token() string
}

// Config parameterizes one channel subscription.
type Config struct {
	// URL is the SSE endpoint.
	URL string
	// Tokens is nil for public channels. When set, a connection is only ever
	// attempted while a token is available; without one the stream stays inert.
	Tokens TokenSource
	// OnEvent fires once per parsed data event. It must not call back into
	// the Stream.
	OnEvent func()
	// HTTPClient must have no timeout; the stream relies on reconnects, not
	// read deadlines. Defaults to a fresh client.
	HTTPClient *http.Client

	// Backoff knobs; zero values take the defaults. Tests shrink them.
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	MaxAttempts int
}

// Stream is a resilient subscription to one SSE channel.
type Stream struct {
	cfg    Config
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	state   State
	started bool
	done    chan struct{}
}

// New prepares a stream in the Idle state. Call Start to connect.
func New(cfg Config) *Stream {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultBaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = DefaultMaxDelay
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Stream{
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// State reports the current lifecycle state.
func (s *Stream) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start launches the connect/consume/reconnect loop. An authenticated stream
// with no credential never connects: it stays Idle and callers may Start again
// after login.
func (s *Stream) Start() {
	if s.cfg.Tokens != nil && s.cfg.Tokens.Token() == "" {
		// No credential: silently inert, no connection attempt.
		return
	}
	s.mu.Lock()
	if s.state != Idle {
		s.mu.Unlock()
		return
	}
	s.state = Connecting
	s.started = true
	s.mu.Unlock()

	go s.run()
}

// Dispose aborts any in-flight connection and cancels any pending reconnect
// timer. Idempotent; no OnEvent runs after it returns.
func (s *Stream) Dispose() {
	s.mu.Lock()
	already := s.state == Disposed
	started := s.started
	s.state = Disposed
	s.mu.Unlock()
	s.cancel()
	if started && !already {
		// Wait for the loop goroutine so no callback can outlive disposal.
		// The loop exits promptly: cancellation aborts the in-flight request
		// and any pending reconnect timer.
		<-s.done
	}
}

// Done is closed when the loop goroutine has exited.
func (s *Stream) Done() <-chan struct{} { return s.done }

func (s *Stream) run() {
	defer close(s.done)

	attempt := 0
	for {
		if s.ctx.Err() != nil {
			return
		}

		streamed, err := s.consume()
		if s.ctx.Err() != nil {
			// Explicit cancellation: stop immediately, no retry.
			return
		}

		if streamed {
			// The connection reached Streaming, so the failure run is over.
			attempt = 0
		}
		if err != nil {
			log.Printf("stream: %s: %v", s.cfg.URL, err)
		}

		attempt++
		if attempt > s.cfg.MaxAttempts {
			s.setState(Failed)
			return
		}

		delay := ReconnectDelay(attempt, s.cfg.BaseDelay, s.cfg.MaxDelay)
		if !s.setStateLive(ReconnectScheduled) {
			return
		}
		timer := time.NewTimer(delay)
		select {
		case <-s.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// consume performs one connection attempt and, on success, reads the stream
// until it ends. streamed reports whether the Streaming state was reached.
func (s *Stream) consume() (streamed bool, err error) {
	if !s.setStateLive(Connecting) {
		return false, nil
	}

	req, err := http.NewRequestWithContext(s.ctx, http.MethodGet, s.cfg.URL, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if s.cfg.Tokens != nil {
		token := s.cfg.Tokens.Token()
		if token == "" {
			// Credential vanished mid-lifetime (logout); behave as inert.
			return false, errors.New("no credential")
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.cfg.HTTPClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, errors.New("unexpected status " + resp.Status)
	}

	if !s.setStateLive(Streaming) {
		return false, nil
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		s.handleLine(scanner.Text())
	}
	// Server closed or the read failed; either way we reconnect.
	return true, scanner.Err()
}

// handleLine parses one stream line. Only data lines with a JSON payload count
// as events; heartbeats, comments and event/id/retry fields are skipped.
func (s *Stream) handleLine(line string) {
	if !strings.HasPrefix(line, "data:") {
		return
	}
	payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
	if payload == "" || !json.Valid([]byte(payload)) {
		return
	}

	s.mu.Lock()
	disposed := s.state == Disposed
	s.mu.Unlock()
	if disposed {
		return
	}
	s.cfg.OnEvent()
}

func (s *Stream) setState(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Disposed {
		return
	}
	s.state = st
}

// setStateLive sets the state unless the stream is already disposed, and
// reports whether the stream is still live.
func (s *Stream) setStateLive(st State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Disposed {
		return false
	}
	s.state = st
	return true
}
