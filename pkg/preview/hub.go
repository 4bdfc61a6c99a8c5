package preview

import (
	"sync"

	"github.com/google/uuid"
)

// Command types sent to browsers.
const (
	CommandContent  = "content"
	CommandScrollTo = "scroll_to"
	CommandReveal   = "reveal"
	CommandZoom     = "zoom"
)

// clientBuffer is the number of commands a client may lag behind before it is dropped.
const clientBuffer = 32

// Command is one instruction for the browser viewport.
type Command struct {
	Type   string   `json:"type"`
	HTML   string   `json:"html,omitempty"`
	Offset *float64 `json:"offset,omitempty"`
	Anchor string   `json:"anchor,omitempty"`
	Zoom   float64  `json:"zoom,omitempty"`
}

// Hub fans commands out to connected browsers.
type Hub struct {
	mu      sync.Mutex
	clients map[string]chan Command
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[string]chan Command)}
}

// Subscribe registers a client. The returned channel is closed when the client is
// removed, either by cancel or because it fell too far behind.
func (h *Hub) Subscribe() (string, <-chan Command, func()) {
	id := uuid.NewString()
	ch := make(chan Command, clientBuffer)

	h.mu.Lock()
	h.clients[id] = ch
	h.mu.Unlock()

	return id, ch, func() { h.remove(id) }
}

// Broadcast delivers cmd to every client without blocking. Clients whose buffer is
// full are disconnected; they reconnect and receive fresh content.
func (h *Hub) Broadcast(cmd Command) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	delivered := 0
	for id, ch := range h.clients {
		select {
		case ch <- cmd:
			delivered++
		default:
			delete(h.clients, id)
			close(ch)
		}
	}
	return delivered
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, ch := range h.clients {
		delete(h.clients, id)
		close(ch)
	}
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.clients[id]; ok {
		delete(h.clients, id)
		close(ch)
	}
}
