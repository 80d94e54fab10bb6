package sse

import (
	"sync"
)

// Event is a view-refresh notification sent to subscribers after an
// attendance transition. Delivery is best-effort; the session log is the
// source of truth.
type Event struct {
	SubjectID string
	Event     string
	Data      interface{}
}

// Hub manages SSE subscribers and event broadcasting
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
}

// NewHub creates a new SSE Hub instance
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe registers a new subscriber for a subject and returns the event
// channel and cleanup function
func (h *Hub) Subscribe(subjectID string) (chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, 10)

	if h.subscribers[subjectID] == nil {
		h.subscribers[subjectID] = make(map[chan Event]struct{})
	}
	h.subscribers[subjectID][ch] = struct{}{}

	cleanup := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subscribers[subjectID], ch)
		close(ch)
		if len(h.subscribers[subjectID]) == 0 {
			delete(h.subscribers, subjectID)
		}
	}

	return ch, cleanup
}

// Publish sends an event to all subscribers of a specific subject
func (h *Hub) Publish(subjectID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if subs, ok := h.subscribers[subjectID]; ok {
		for ch := range subs {
			select {
			case ch <- event:
			default:
				// Skip if channel is full (non-blocking to prevent deadlock)
			}
		}
	}
}

// SubscriberCount returns the number of active subscribers for a subject
func (h *Hub) SubscriberCount(subjectID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if subs, ok := h.subscribers[subjectID]; ok {
		return len(subs)
	}
	return 0
}
