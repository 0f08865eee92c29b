//
//
package telemetry

import (
	"sync"

	"github.com/google/uuid"

	"github.com/fleet-control/vdagw/internal/metrics"
	"github.com/fleet-control/vdagw/internal/vda"
)

// Filter selects which robots a subscription receives.
type Filter struct {
	identity vda.Identity
	all      bool
}

// AllRobots matches every record.
func AllRobots() Filter {
	return Filter{all: true}
}

// OneRobot matches records from a single identity.
func OneRobot(id vda.Identity) Filter {
	return Filter{identity: id}
}

// Matches reports whether a record for the given identity passes.
func (f Filter) Matches(id vda.Identity) bool {
	return f.all || f.identity == id
}

// Subscription is one consumer's registration with the hub. The hub owns
// the sending side of the queue; the owning session owns the receiving
// side. Records matching the filter arrive in acceptance order; when the
// queue is full the oldest queued record is displaced by the newest.
type Subscription struct {
	id     string
	filter Filter
	queue  chan vda.Record
	once   sync.Once
}

// ID returns the opaque subscription identifier.
func (s *Subscription) ID() string {
	return s.id
}

// Records returns the subscription's delivery queue.
func (s *Subscription) Records() <-chan vda.Record {
	return s.queue
}

func (s *Subscription) close() {
	s.once.Do(func() {
		close(s.queue)
	})
}

// Hub maintains the live subscription registry and fans out records.
//
// LOCK DISCIPLINE: h.mu guards the registry. Publish iterates under the
// read lock with strictly non-blocking sends, so holding it costs the
// ingest path nothing. Register and Unregister take the write lock;
// because fan-out never runs concurrently with the write lock, a
// subscription removed by Unregister can never be delivered to after
// Unregister returns, and closing its queue there is safe.
type Hub struct {
	mu        sync.RWMutex
	subs      map[string]*Subscription
	queueSize int
	metrics   *metrics.Metrics
	stopped   bool
}

// NewHub creates a hub whose subscriptions buffer up to queueSize
// records each.
func NewHub(queueSize int, m *metrics.Metrics) *Hub {
	if queueSize <= 0 {
		queueSize = 100
	}
	return &Hub{
		subs:      make(map[string]*Subscription),
		queueSize: queueSize,
		metrics:   m,
	}
}

// Register creates a subscription for the filter and adds it to the
// registry. The caller must eventually pass it to Unregister.
func (h *Hub) Register(filter Filter) *Subscription {
	sub := &Subscription{
		id:     uuid.NewString(),
		filter: filter,
		queue:  make(chan vda.Record, h.queueSize),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stopped {
		sub.close()
		return sub
	}

	h.subs[sub.id] = sub
	h.metrics.SetSubscribers(len(h.subs))
	return sub
}

// Unregister removes a subscription and closes its queue. Calling it
// twice, or with a subscription the hub does not know, is a no-op.
func (h *Hub) Unregister(sub *Subscription) {
	if sub == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.subs[sub.id]; !exists {
		return
	}
	delete(h.subs, sub.id)
	sub.close()
	h.metrics.SetSubscribers(len(h.subs))
}

// Publish enqueues the record onto every matching subscription without
// ever blocking. A full queue drops its oldest record in favor of the
// new one: this is a live feed, so staleness is worse than a gap.
func (h *Hub) Publish(rec vda.Record) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs {
		if !sub.filter.Matches(rec.Identity) {
			continue
		}

		select {
		case sub.queue <- rec:
			continue
		default:
		}

		// Queue full: displace the oldest entry. The session may drain
		// concurrently, so both steps stay non-blocking.
		select {
		case <-sub.queue:
			h.metrics.QueueDrop()
		default:
		}
		select {
		case sub.queue <- rec:
		default:
			h.metrics.QueueDrop()
		}
	}
}

// SubscriberCount returns the number of registered subscriptions.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Stop closes every subscription and rejects future registrations.
// Sessions observe their queue closing and exit.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.stopped = true
	for id, sub := range h.subs {
		delete(h.subs, id)
		sub.close()
	}
	h.metrics.SetSubscribers(0)
}
