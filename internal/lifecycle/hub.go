// Package lifecycle reports the progress of store operations to observers.
//
// Every asynchronous operation publishes a started event, then exactly one
// succeeded or failed event once the owning store has applied its reducer
// step. Events carry a monotonically increasing sequence number and the hub
// keeps a bounded history so late subscribers can replay what they missed.
package lifecycle

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Phase string

const (
	Started   Phase = "started"
	Succeeded Phase = "succeeded"
	Failed    Phase = "failed"
)

type Event struct {
	Seq       int64
	Store     string
	Action    string
	Phase     Phase
	Value     any
	Err       error
	Timestamp time.Time
}

func (e Event) Name() string {
	return e.Store + "/" + e.Action + "/" + string(e.Phase)
}

// Hub sequences events, keeps the most recent ones and hands them to
// subscribers. A nil *Hub accepts publishes and has no history.
type Hub struct {
	mu      sync.Mutex
	nextSeq int64
	limit   int
	history []Event
	subs    map[*Subscription]struct{}
	actions *prometheus.CounterVec
}

type Option func(*Hub)

// WithRegisterer counts published events per store, action and phase.
func WithRegisterer(reg prometheus.Registerer, namespace string) Option {
	return func(h *Hub) {
		h.actions = promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "actions_total",
			Help:      "Store operation lifecycle events by phase.",
		}, []string{"store", "action", "phase"})
	}
}

func NewHub(limit int, opts ...Option) *Hub {
	if limit < 1 {
		limit = 1
	}
	h := &Hub{
		limit: limit,
		subs:  make(map[*Subscription]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Subscription receives live events for the stores it was opened for.
// Events that do not fit the buffer are skipped and counted; Seq gaps show
// where.
type Subscription struct {
	// Replay holds the retained events newer than the requested sequence.
	Replay []Event

	hub    *Hub
	stores map[string]struct{}
	events chan Event
	missed int64
	closed bool
}

func (s *Subscription) Events() <-chan Event { return s.events }

// Missed reports how many live events were skipped because the buffer was full.
func (s *Subscription) Missed() int64 {
	if s.hub == nil {
		return 0
	}
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	return s.missed
}

// Close stops delivery and closes Events. It is safe to call more than once.
func (s *Subscription) Close() {
	if s.hub == nil {
		return
	}
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	s.closeLocked()
}

func (s *Subscription) closeLocked() {
	if s.closed {
		return
	}
	s.closed = true
	delete(s.hub.subs, s)
	close(s.events)
}

func (s *Subscription) wants(store string) bool {
	if len(s.stores) == 0 {
		return true
	}
	_, ok := s.stores[store]
	return ok
}

// Publish stamps the event with the next sequence number, retains it and
// offers it to every matching subscriber without blocking.
func (h *Hub) Publish(event Event) Event {
	if h == nil {
		return event
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextSeq++
	event.Seq = h.nextSeq
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if len(h.history) == h.limit {
		copy(h.history, h.history[1:])
		h.history[len(h.history)-1] = event
	} else {
		h.history = append(h.history, event)
	}
	if h.actions != nil {
		h.actions.WithLabelValues(event.Store, event.Action, string(event.Phase)).Inc()
	}

	for sub := range h.subs {
		if !sub.wants(event.Store) {
			continue
		}
		select {
		case sub.events <- event:
		default:
			sub.missed++
		}
	}
	return event
}

// Subscribe opens a subscription for the named stores, or for all stores when
// none are named. Replay carries the retained events after fromSeq. On a nil
// hub the subscription is already closed.
func (h *Hub) Subscribe(fromSeq int64, stores ...string) *Subscription {
	sub := &Subscription{hub: h, events: make(chan Event, 128)}
	if len(stores) > 0 {
		sub.stores = make(map[string]struct{}, len(stores))
		for _, store := range stores {
			sub.stores[store] = struct{}{}
		}
	}
	if h == nil {
		sub.closed = true
		close(sub.events)
		return sub
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, event := range h.history {
		if event.Seq > fromSeq && sub.wants(event.Store) {
			sub.Replay = append(sub.Replay, event)
		}
	}
	h.subs[sub] = struct{}{}
	return sub
}

func (h *Hub) History() []Event {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Event(nil), h.history...)
}

func (h *Hub) LastSeq() int64 {
	if h == nil {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.nextSeq
}

// Run wraps one store operation in started/succeeded/failed events. fn must
// apply its reducer step before returning so observers never see stale state.
func Run[T any](ctx context.Context, hub *Hub, store, action string, fn func(context.Context) (T, error)) (T, error) {
	hub.Publish(Event{Store: store, Action: action, Phase: Started})
	value, err := fn(ctx)
	if err != nil {
		hub.Publish(Event{Store: store, Action: action, Phase: Failed, Err: err})
		return value, err
	}
	hub.Publish(Event{Store: store, Action: action, Phase: Succeeded, Value: value})
	return value, nil
}

// Changed reports a synchronous local mutation that has already been applied.
func Changed(hub *Hub, store, action string, value any) {
	hub.Publish(Event{Store: store, Action: action, Phase: Succeeded, Value: value})
}
