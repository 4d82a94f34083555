package realtime

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/mkarlin/chatdeck-backend/internal/logger"
)

// Subscriber is one open SSE connection. Events are delivered on
// Outbound; a full buffer drops the event rather than blocking the hub.
type Subscriber struct {
	ID       uuid.UUID
	Channel  string
	Outbound chan Event
	done     chan struct{}
	once     sync.Once
}

func (s *Subscriber) Done() <-chan struct{} {
	return s.done
}

func (s *Subscriber) close() {
	s.once.Do(func() { close(s.done) })
}

// Hub fans stream-part events out to per-channel subscribers. It only
// ever sees local connections; cross-instance delivery is the bus's job.
type Hub struct {
	mu            sync.RWMutex
	log           *logger.Logger
	subscriptions map[string]map[*Subscriber]bool
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		log:           log.With("component", "RealtimeHub"),
		subscriptions: make(map[string]map[*Subscriber]bool),
	}
}

func (h *Hub) Subscribe(channel string) *Subscriber {
	channel = strings.TrimSpace(channel)
	sub := &Subscriber{
		ID:       uuid.New(),
		Channel:  channel,
		Outbound: make(chan Event, 16),
		done:     make(chan struct{}),
	}
	if channel == "" {
		return sub
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	subs, exists := h.subscriptions[channel]
	if !exists {
		subs = make(map[*Subscriber]bool)
		h.subscriptions[channel] = subs
	}
	subs[sub] = true
	h.log.Debug("Subscriber added", "subscriber_id", sub.ID, "channel", channel)
	return sub
}

func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs, exists := h.subscriptions[sub.Channel]; exists {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(h.subscriptions, sub.Channel)
		}
	}
	sub.close()
	h.log.Debug("Subscriber removed", "subscriber_id", sub.ID, "channel", sub.Channel)
}

// Broadcast delivers the event to local subscribers of its channel.
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subscriptions[event.Channel] {
		select {
		case sub.Outbound <- event:
		default:
			h.log.Warn("Dropping event for slow subscriber",
				"subscriber_id", sub.ID, "channel", event.Channel)
		}
	}
}
