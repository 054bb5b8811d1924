package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pollfish/pollfish-bridge/internal/events"
)

// DefaultHistorySize is how many envelopes a new client gets replayed.
const DefaultHistorySize = 100

// Envelope is the message sent to clients for every event.
type Envelope struct {
	ID   string           `json:"id"`
	Type events.EventType `json:"type"`
	Data json.RawMessage  `json:"data,omitempty"`
	At   time.Time        `json:"at"`
}

// Hub fans events out to every connected client. It implements
// registry.Handler so it can be registered for each event type.
type Hub struct {
	mu      sync.RWMutex
	clients map[WSClient]struct{}
	seq     uint64
	history *lru.Cache[uint64, []byte]
	logger  *slog.Logger
}

func NewHub(historySize int, logger *slog.Logger) *Hub {
	if historySize <= 0 {
		historySize = DefaultHistorySize
	}
	if logger == nil {
		logger = slog.Default()
	}
	history, _ := lru.New[uint64, []byte](historySize)
	return &Hub{
		clients: make(map[WSClient]struct{}),
		history: history,
		logger:  logger,
	}
}

// Register adds c and queues the recent history on it, oldest first.
func (h *Hub) Register(c WSClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c] = struct{}{}
	for _, msg := range h.history.Values() {
		select {
		case c.GetSend() <- msg:
		default:
		}
	}
	h.logger.Debug("ws register", "clients", len(h.clients))
}

func (h *Hub) Unregister(c WSClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.GetSend())
	h.logger.Debug("ws unregister", "clients", len(h.clients))
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleEvent wraps e in an envelope, records it and broadcasts it.
func (h *Hub) HandleEvent(e events.Event) {
	data, err := json.Marshal(Envelope{
		ID:   uuid.NewString(),
		Type: e.Type,
		Data: e.Data,
		At:   e.ReceivedAt,
	})
	if err != nil {
		h.logger.Error("ws envelope marshal failed", "event", e.Type, "err", err)
		return
	}
	h.Broadcast(data)
}

func (h *Hub) Broadcast(data []byte) {
	if data == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.seq++
	h.history.Add(h.seq, data)

	sent := 0
	for c := range h.clients {
		select {
		case c.GetSend() <- data:
			sent++
		default:
			h.logger.Warn("ws dropped message")
		}
	}
	h.logger.Debug("ws broadcast", "recipients", sent)
}

// History returns the retained envelopes, oldest first.
func (h *Hub) History() [][]byte {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.history.Values()
}
