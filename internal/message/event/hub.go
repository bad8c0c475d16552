package event

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// ErrHubClosed indicates a publish after Close.
var ErrHubClosed = errors.New("event hub closed")

type subscriber struct {
	channelID string
	stream    chan Event
}

// Hub is an in-process fan-out of channel events. Delivery is best-effort: a
// subscriber whose buffer is full misses the event rather than blocking the
// publisher.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]*subscriber
	closed      bool
	logger      *slog.Logger
}

// NewHub creates an event hub.
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		subscribers: make(map[string]*subscriber),
		logger:      log.With(slog.String("component", "event_hub")),
	}
}

// Publish delivers the event to every subscriber of its channel.
func (h *Hub) Publish(event Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return ErrHubClosed
	}
	for id, sub := range h.subscribers {
		if sub.channelID != event.ChannelID {
			continue
		}
		select {
		case sub.stream <- event:
		default:
			h.logger.Warn("subscriber buffer full, dropping event",
				slog.String("subscriber_id", id),
				slog.String("channel_id", event.ChannelID))
		}
	}
	return nil
}

// Subscribe attaches a buffered stream for one channel. cancel is idempotent
// and must be called when the consumer goes away.
func (h *Hub) Subscribe(channelID string, buffer int) (string, <-chan Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	sub := &subscriber{
		channelID: channelID,
		stream:    make(chan Event, buffer),
	}
	id := uuid.NewString()

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(sub.stream)
		return id, sub.stream, func() {}
	}
	h.subscribers[id] = sub
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			if _, ok := h.subscribers[id]; ok {
				delete(h.subscribers, id)
				close(sub.stream)
			}
			h.mu.Unlock()
		})
	}
	return id, sub.stream, cancel
}

// Close drops all subscribers and rejects further publishes.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, sub := range h.subscribers {
		delete(h.subscribers, id)
		close(sub.stream)
	}
}
