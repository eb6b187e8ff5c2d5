package stub

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// keepaliveInterval paces the comment lines that keep idle connections open.
const keepaliveInterval = 30 * time.Second

// serveSSE streams one hub channel to the response until the client goes
// away. Events are written as data lines; keepalives as comments.
func (s *Server) serveSSE(w http.ResponseWriter, r *http.Request, channel string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	feed := s.hub.Subscribe(channel)
	defer s.hub.Unsubscribe(channel, feed)

	fmt.Fprintf(w, ": connected\n\n")
	fmt.Fprintf(w, "retry: 2000\n\n")
	flusher.Flush()

	ticker := time.NewTicker(keepaliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			fmt.Fprintf(w, ": keepalive\n\n")
			flusher.Flush()
		case message, ok := <-feed:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", message)
			flusher.Flush()
		}
	}
}

func (s *Server) handleOrderStream(w http.ResponseWriter, r *http.Request) {
	s.serveSSE(w, r, "order:"+chi.URLParam(r, "id"))
}

func (s *Server) handleCashierStream(w http.ResponseWriter, r *http.Request) {
	s.serveSSE(w, r, "cashier")
}

func (s *Server) handleProductionStream(w http.ResponseWriter, r *http.Request) {
	s.serveSSE(w, r, "production")
}
