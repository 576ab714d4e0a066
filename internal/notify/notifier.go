// Package notify fans mutation events out to currently connected observers.
// Delivery is single-process, in-memory, and best-effort per subscriber.
package notify

import (
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/daxreyes/bushfire-beacon/internal/metrics"
)

// DefaultBuffer is the per-subscriber queue depth.
const DefaultBuffer = 64

// Event is one published mutation, constructed fresh per publish and not
// retained after delivery.
type Event struct {
	ID   string      `json:"id"`
	Name string      `json:"event"`
	Data interface{} `json:"data"`
}

// Subscriber is the receive end of one registration. Owned by the connection
// handler that created it; the notifier holds only set membership.
type Subscriber struct {
	ch chan Event
}

// Events returns the channel the subscriber's deliveries arrive on. The
// channel is closed when the subscriber is unregistered.
func (s *Subscriber) Events() <-chan Event {
	return s.ch
}

// Notifier maintains the registry of active subscribers and publishes named
// events to all of them. Create one at process start and pass it by
// reference to whatever needs to publish or manage subscriptions.
type Notifier struct {
	mu     sync.Mutex
	subs   map[*Subscriber]struct{}
	buffer int
	logger zerolog.Logger
}

func New(buffer int, logger zerolog.Logger) *Notifier {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Notifier{
		subs:   make(map[*Subscriber]struct{}),
		buffer: buffer,
		logger: logger.With().Str("component", "notify").Logger(),
	}
}

// Subscribe registers a new subscriber. It observes only events published
// after this call returns; there is no replay.
func (n *Notifier) Subscribe() *Subscriber {
	sub := &Subscriber{ch: make(chan Event, n.buffer)}

	n.mu.Lock()
	n.subs[sub] = struct{}{}
	n.mu.Unlock()

	metrics.Subscribers.Inc()
	return sub
}

// Unsubscribe removes sub from the registry and closes its channel.
// Idempotent: unsubscribing an already-removed handle is a no-op.
func (n *Notifier) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.subs[sub]; !ok {
		return
	}
	delete(n.subs, sub)
	close(sub.ch)
	metrics.Subscribers.Dec()
}

// Publish delivers {event, data} to every subscriber registered at the
// moment of the call. Sends never block: when a subscriber's queue is full
// the oldest queued event is dropped so the newest always lands. A delivery
// failure is local to that subscriber and never surfaces to the caller.
func (n *Notifier) Publish(name string, data interface{}) {
	event := Event{
		ID:   ulid.Make().String(),
		Name: name,
		Data: data,
	}
	metrics.EventsPublished.WithLabelValues(name).Inc()

	n.mu.Lock()
	defer n.mu.Unlock()

	for sub := range n.subs {
		select {
		case sub.ch <- event:
			continue
		default:
		}

		// Queue full: drop the oldest entry to make room. Sends and closes
		// both happen under n.mu, so the channel cannot close mid-publish.
		select {
		case <-sub.ch:
		default:
		}
		select {
		case sub.ch <- event:
		default:
		}

		metrics.DeliveriesDropped.Inc()
		n.logger.Warn().
			Str("event", name).
			Str("event_id", event.ID).
			Msg("subscriber queue full, dropped oldest event")
	}
}

// Close unregisters every subscriber and closes their channels. Used during
// shutdown so connection handlers observe end-of-stream.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	for sub := range n.subs {
		delete(n.subs, sub)
		close(sub.ch)
		metrics.Subscribers.Dec()
	}
}

// Len reports the number of currently registered subscribers.
func (n *Notifier) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}
