package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"hatchery-monitor/internal/readings/application"
)

type streamMessage struct {
	id      string
	payload []byte
}

// SSEBroker fans out tick events to connected clients.
type SSEBroker struct {
	mu      sync.Mutex
	clients map[chan streamMessage]struct{}
}

// NewSSEBroker constructs a broker.
func NewSSEBroker() *SSEBroker {
	return &SSEBroker{clients: make(map[chan streamMessage]struct{})}
}

// ObserveTick implements application.TickObserver.
func (b *SSEBroker) ObserveTick(_ context.Context, event application.TickEvent) {
	if b == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	b.broadcast(streamMessage{id: event.Status.SnapshotID, payload: payload})
}

// Subscribe registers a new client channel.
func (b *SSEBroker) Subscribe() chan streamMessage {
	if b == nil {
		return nil
	}
	ch := make(chan streamMessage, 16)
	b.mu.Lock()
	b.clients[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a client channel.
func (b *SSEBroker) Unsubscribe(ch chan streamMessage) {
	if b == nil || ch == nil {
		return
	}
	b.mu.Lock()
	delete(b.clients, ch)
	b.mu.Unlock()
	close(ch)
}

// Clients returns the number of connected clients.
func (b *SSEBroker) Clients() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

func (b *SSEBroker) broadcast(msg streamMessage) {
	b.mu.Lock()
	clients := make([]chan streamMessage, 0, len(b.clients))
	for ch := range b.clients {
		clients = append(clients, ch)
	}
	b.mu.Unlock()
	for _, ch := range clients {
		select {
		case ch <- msg:
		default:
		}
	}
}

// StreamHandler serves the SSE tick stream.
type StreamHandler struct {
	broker    *SSEBroker
	dashboard *application.Dashboard
}

// NewStreamHandler constructs a stream handler. When dashboard is set, the current status
// is sent right after the ready event.
func NewStreamHandler(broker *SSEBroker, dashboard *application.Dashboard) *StreamHandler {
	return &StreamHandler{broker: broker, dashboard: dashboard}
}

// ServeHTTP handles GET /api/v1/stream.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.broker == nil {
		http.Error(w, "stream not ready", http.StatusServiceUnavailable)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "stream unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := h.broker.Subscribe()
	if ch == nil {
		http.Error(w, "stream not ready", http.StatusServiceUnavailable)
		return
	}
	defer h.broker.Unsubscribe(ch)

	_, _ = w.Write([]byte("event: ready\ndata: {}\n\n"))
	if h.dashboard != nil {
		status := h.dashboard.Status()
		if payload, err := json.Marshal(application.TickEvent{OK: status.Ready && !status.Stale, Status: status}); err == nil {
			writeEvent(w, streamMessage{id: status.SnapshotID, payload: payload})
		}
	}
	flusher.Flush()

	notify := r.Context().Done()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			writeEvent(w, msg)
			flusher.Flush()
		case <-notify:
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, msg streamMessage) {
	if msg.id != "" {
		_, _ = w.Write([]byte("id: " + msg.id + "\n"))
	}
	_, _ = w.Write([]byte("event: tick\n"))
	_, _ = w.Write([]byte("data: "))
	_, _ = w.Write(msg.payload)
	_, _ = w.Write([]byte("\n\n"))
}
