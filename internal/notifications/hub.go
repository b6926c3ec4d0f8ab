package notifications

import (
	"sync"
	"time"
)

const (
	EventProfileCreated   = "profile.created"
	EventProfileActivated = "profile.activated"
	EventSalesRecorded    = "ledger.sales_recorded"
	EventPendingCreated   = "ledger.pending_created"
	EventPendingResolved  = "ledger.pending_resolved"
	EventDailyRegistered  = "ledger.daily_registered"
	EventFeeChanged       = "fees.changed"
	EventGoalChanged      = "goals.changed"
)

type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
}

// NewHub создает хаб для SSE-подписок.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe подписывает на события профиля и возвращает канал и функцию отписки.
func (h *Hub) Subscribe(profileID string) (<-chan Event, func()) {
	ch := make(chan Event, 10)

	h.mu.Lock()
	defer h.mu.Unlock()

	profileSubs, ok := h.subscribers[profileID]
	if !ok {
		profileSubs = make(map[chan Event]struct{})
		h.subscribers[profileID] = profileSubs
	}
	profileSubs[ch] = struct{}{}

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		if subs, exists := h.subscribers[profileID]; exists {
			delete(subs, ch)
			if len(subs) == 0 {
				delete(h.subscribers, profileID)
			}
		}
		close(ch)
	}
}

// Publish отправляет событие всем подписчикам профиля.
func (h *Hub) Publish(profileID string, event Event) {
	event.Timestamp = time.Now().UTC()

	h.mu.RLock()
	defer h.mu.RUnlock()

	subs, ok := h.subscribers[profileID]
	if !ok {
		return
	}

	for ch := range subs {
		select {
		case ch <- event:
		default:
		}
	}
}
