package notification

import (
	"sync"
	"sync/atomic"

	"github.com/example/kanban-task-service/events"
)

// Stats counts hub activity since start.
type Stats struct {
	Subscribers int    `json:"subscribers"`
	Published   uint64 `json:"published"`
	Delivered   uint64 `json:"delivered"`
	Dropped     uint64 `json:"dropped"`
}

// Hub fans task events out to every live subscription.
//
// Delivery is best effort and at most once: Publish never blocks, and an event
// that does not fit in a subscription's buffer is dropped for that
// subscription only. Events published before a subscription exists are never
// delivered to it.
type Hub struct {
	mu     sync.RWMutex
	subs   map[uint64]*Subscription
	nextID uint64
	buffer int
	closed bool

	published, delivered, dropped atomic.Uint64
}

// NewHub creates a hub whose subscriptions buffer up to buffer events.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 1
	}
	return &Hub{
		subs:   make(map[uint64]*Subscription),
		buffer: buffer,
	}
}

// Subscription is one registered observer.
type Subscription struct {
	id   uint64
	ch   chan events.TaskEvent
	hub  *Hub
	once sync.Once
}

// Events yields delivered events in publish order. The channel is closed
// when the subscription or the hub is closed.
func (s *Subscription) Events() <-chan events.TaskEvent {
	return s.ch
}

// Close unregisters the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	s.hub.remove(s)
}

// Subscribe registers a new observer using the hub's buffer size.
func (h *Hub) Subscribe() *Subscription {
	return h.SubscribeBuffered(h.buffer)
}

// SubscribeBuffered registers a new observer with its own buffer size.
// Subscribing to a closed hub returns an already-closed subscription.
func (h *Hub) SubscribeBuffered(buffer int) *Subscription {
	if buffer <= 0 {
		buffer = h.buffer
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &Subscription{
		id:  h.nextID,
		ch:  make(chan events.TaskEvent, buffer),
		hub: h,
	}
	if h.closed {
		sub.once.Do(func() { close(sub.ch) })
		return sub
	}
	h.subs[sub.id] = sub
	return sub
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.subs, s.id)
	s.once.Do(func() { close(s.ch) })
}

// Publish hands evt to every current subscription without waiting.
// Sends happen under the read lock, so a subscription cannot be closed
// mid-delivery.
func (h *Hub) Publish(evt events.TaskEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}
	h.published.Add(1)
	for _, sub := range h.subs {
		select {
		case sub.ch <- evt:
			h.delivered.Add(1)
		default:
			h.dropped.Add(1)
		}
	}
}

// SubscriberCount returns the number of live subscriptions.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Stats returns a snapshot of the counters.
func (h *Hub) Stats() Stats {
	return Stats{
		Subscribers: h.SubscriberCount(),
		Published:   h.published.Load(),
		Delivered:   h.delivered.Load(),
		Dropped:     h.dropped.Load(),
	}
}

// Close closes every subscription and rejects later publishes.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, sub := range h.subs {
		delete(h.subs, id)
		sub.once.Do(func() { close(sub.ch) })
	}
}
