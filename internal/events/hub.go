package events

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/efreitasn/stockserver/internal/domain"
)

const subscriberBuffer = 128

// Hub fans out events to in-process subscribers. A subscriber whose
// buffer is full is dropped and its channel closed.
type Hub struct {
	mu     sync.RWMutex
	subs   map[int64]chan Event
	seq    atomic.Int64
	logger *slog.Logger
}

// NewHub creates an empty Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		subs:   make(map[int64]chan Event),
		logger: logger,
	}
}

// Subscribe registers a new subscriber and returns its id and channel.
func (h *Hub) Subscribe() (int64, <-chan Event) {
	id := h.seq.Add(1)
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	h.subs[id] = ch
	h.mu.Unlock()

	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel. Unknown ids
// are ignored.
func (h *Hub) Unsubscribe(id int64) {
	h.mu.Lock()
	ch, ok := h.subs[id]
	if ok {
		delete(h.subs, id)
		close(ch)
	}
	h.mu.Unlock()
}

// Subscribers returns the number of live subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Broadcast delivers ev to every subscriber without blocking.
func (h *Hub) Broadcast(ev Event) {
	var lagging []int64

	h.mu.RLock()
	for id, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			lagging = append(lagging, id)
		}
	}
	h.mu.RUnlock()

	if len(lagging) == 0 {
		return
	}
	h.mu.Lock()
	for _, id := range lagging {
		if ch, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(ch)
			h.logger.Warn("dropped lagging event subscriber", slog.Int64("subscriber", id))
		}
	}
	h.mu.Unlock()
}

// Record broadcasts rec to subscribers.
func (h *Hub) Record(_ context.Context, rec domain.TransactionRecord) error {
	h.Broadcast(FromRecord(rec))
	return nil
}
