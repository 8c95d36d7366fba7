// Package eventbus is an in-memory, process-local publish/subscribe bus for
// agent lifecycle events, with bounded history and replay-on-subscribe.
package eventbus

import (
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/crossroads-cli/crossroads/pkg/models"
)

// historyCap is the FIFO cap on retained events.
const historyCap = 100

// subscriberBufferSize bounds per-subscriber delivery buffering. A
// subscriber that falls behind drops its newest event rather than blocking
// the publisher.
const subscriberBufferSize = 64

// DefaultRecentEventsLimit is the limit RecentEvents callers use unless
// they need a different window.
const DefaultRecentEventsLimit = 20

// Bus serializes publication and subscriber management behind a single
// mutex, matching the rest of crossroads' actor-style components: a single
// logical thread of execution per instance.
type Bus struct {
	mu          sync.Mutex
	history     []models.AgentEvent
	subscribers map[string]*subscriber
}

type subscriber struct {
	ch     chan models.AgentEvent
	cancel chan struct{}
	closed bool
}

// New returns an empty event bus.
func New() *Bus {
	return &Bus{subscribers: make(map[string]*subscriber)}
}

// Publish appends event to history (dropping the oldest entries past
// historyCap) and delivers it to every live subscriber. Delivery is
// best-effort: a subscriber whose buffer is full has the event dropped for
// it alone, logged, and publication proceeds.
func (b *Bus) Publish(event models.AgentEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.history = append(b.history, event)
	if len(b.history) > historyCap {
		b.history = b.history[len(b.history)-historyCap:]
	}

	for token, sub := range b.subscribers {
		select {
		case sub.ch <- event:
		default:
			log.Printf("[eventbus] subscriber %s buffer full, dropping event %s", token, event.ID)
		}
	}
}

// Subscription is a cancellable, replayed stream of events.
type Subscription struct {
	Events <-chan models.AgentEvent
	token  string
	bus    *Bus
}

// Cancel removes the subscription from the bus and stops further delivery.
func (s *Subscription) Cancel() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	if sub, ok := s.bus.subscribers[s.token]; ok && !sub.closed {
		sub.closed = true
		close(sub.ch)
		delete(s.bus.subscribers, s.token)
	}
}

// Subscribe registers a new subscriber keyed by a fresh token and
// immediately replays the full current history into its stream in
// insertion order, before any newly published event. agentID is currently
// unused for filtering (callers filter the merged monitoring stream
// themselves) but is accepted to key future per-agent diagnostics.
func (b *Bus) Subscribe(agentID string) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	token := uuid.NewString()
	sub := &subscriber{
		ch:     make(chan models.AgentEvent, subscriberBufferSize+len(b.history)),
		cancel: make(chan struct{}),
	}
	for _, e := range b.history {
		sub.ch <- e
	}
	b.subscribers[token] = sub

	return &Subscription{Events: sub.ch, token: token, bus: b}
}

// RecentEvents returns the last limit events, oldest first.
func (b *Bus) RecentEvents(limit int) []models.AgentEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	if limit <= 0 || limit > len(b.history) {
		limit = len(b.history)
	}
	start := len(b.history) - limit
	out := make([]models.AgentEvent, limit)
	copy(out, b.history[start:])
	return out
}
