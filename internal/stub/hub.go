package stub

import (
	"encoding/json"
	"sync"
)

// Event is the opaque change notification pushed to SSE subscribers. Clients
// treat the payload purely as a refresh trigger.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Hub routes events to channel-keyed rooms of SSE subscribers. Channels are
// "production", "cashier" and "order:<id>".
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[chan []byte]bool
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[chan []byte]bool)}
}

// Subscribe joins a channel and returns the subscriber's buffered feed.
func (h *Hub) Subscribe(channel string) chan []byte {
	ch := make(chan []byte, 64)
	h.mu.Lock()
	if h.rooms[channel] == nil {
		h.rooms[channel] = make(map[chan []byte]bool)
	}
	h.rooms[channel][ch] = true
	h.mu.Unlock()
	return ch
}

// Unsubscribe leaves a channel and closes the feed.
func (h *Hub) Unsubscribe(channel string, ch chan []byte) {
	h.mu.Lock()
	if subs, ok := h.rooms[channel]; ok {
		if subs[ch] {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(h.rooms, channel)
			}
		}
	}
	h.mu.Unlock()
}

// Broadcast marshals the event once and fans it out to every subscriber of
// each named channel. Slow subscribers drop events rather than block.
func (h *Hub) Broadcast(event Event, channels ...string) {
	message, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, channel := range channels {
		for ch := range h.rooms[channel] {
			select {
			case ch <- message:
			default:
				// Buffer full; the poll fallback covers the gap.
			}
		}
	}
}
