package events

import (
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pollfish/pollfish-bridge/internal/metrics"
	"github.com/puzpuzpuz/xsync/v4"
	"github.com/tidwall/btree"
)

// Emitter is the Go side of the native event emitter. Native code calls
// Emit for every SDK event; listeners attached with AddListener are invoked
// in the order they were added.
type Emitter struct {
	seq      atomic.Uint64
	channels *xsync.Map[EventType, *channel]
	logger   *slog.Logger
	now      func() time.Time
}

type channel struct {
	mu        sync.Mutex
	listeners *btree.BTreeG[*Subscription]
}

// Subscription is one active listener-to-event binding.
type Subscription struct {
	id        uint64
	eventType EventType
	listener  Listener
	active    atomic.Bool
	emitter   *Emitter
}

func bySeq(a, b *Subscription) bool {
	return a.id < b.id
}

func NewEmitter(logger *slog.Logger) *Emitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Emitter{
		channels: xsync.NewMap[EventType, *channel](),
		logger:   logger,
		now:      time.Now,
	}
}

func (e *Emitter) channel(t EventType) *channel {
	ch, _ := e.channels.LoadOrStore(t, &channel{
		listeners: btree.NewBTreeG(bySeq),
	})
	return ch
}

// AddListener attaches l to events of type t and returns the subscription
// that detaches it.
func (e *Emitter) AddListener(t EventType, l Listener) *Subscription {
	sub := &Subscription{
		id:        e.seq.Add(1),
		eventType: t,
		listener:  l,
		emitter:   e,
	}
	sub.active.Store(true)

	ch := e.channel(t)
	ch.mu.Lock()
	ch.listeners.Set(sub)
	n := ch.listeners.Len()
	ch.mu.Unlock()

	metrics.ListenersActive.WithLabelValues(string(t)).Set(float64(n))
	e.logger.Debug("emitter listener added", "event", t, "listeners", n)
	return sub
}

// Cancel detaches the subscription. Calling it more than once is safe.
func (s *Subscription) Cancel() {
	if !s.active.CompareAndSwap(true, false) {
		return
	}
	ch := s.emitter.channel(s.eventType)
	ch.mu.Lock()
	ch.listeners.Delete(s)
	n := ch.listeners.Len()
	ch.mu.Unlock()

	metrics.ListenersActive.WithLabelValues(string(s.eventType)).Set(float64(n))
}

// Active reports whether the subscription still receives events.
func (s *Subscription) Active() bool {
	return s.active.Load()
}

func (s *Subscription) EventType() EventType {
	return s.eventType
}

// RemoveAllListeners cancels every subscription for t, whoever created it.
func (e *Emitter) RemoveAllListeners(t EventType) {
	ch := e.channel(t)
	ch.mu.Lock()
	dropped := ch.listeners
	ch.listeners = btree.NewBTreeG(bySeq)
	ch.mu.Unlock()

	dropped.Scan(func(s *Subscription) bool {
		s.active.Store(false)
		return true
	})
	metrics.ListenersActive.WithLabelValues(string(t)).Set(0)
	e.logger.Debug("emitter listeners removed", "event", t, "count", dropped.Len())
}

// ListenerCount returns the number of active subscriptions for t.
func (e *Emitter) ListenerCount(t EventType) int {
	ch, ok := e.channels.Load(t)
	if !ok {
		return 0
	}
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.listeners.Len()
}

// Emit delivers payload to every listener of t, in subscription order.
// Listeners run on the caller's goroutine, outside any emitter lock, so they
// may add or cancel subscriptions. A subscription cancelled before delivery
// reaches it is skipped. Unknown event names are dropped.
func (e *Emitter) Emit(t EventType, payload json.RawMessage) int {
	if !t.Valid() {
		metrics.EventsEmittedTotal.WithLabelValues("unknown").Inc()
		e.logger.Warn("native emitted unknown event", "event", string(t))
		return 0
	}
	metrics.EventsEmittedTotal.WithLabelValues(string(t)).Inc()

	ch, ok := e.channels.Load(t)
	if !ok {
		return 0
	}

	ch.mu.Lock()
	snapshot := make([]*Subscription, 0, ch.listeners.Len())
	ch.listeners.Scan(func(s *Subscription) bool {
		snapshot = append(snapshot, s)
		return true
	})
	ch.mu.Unlock()

	event := Event{
		Type:       t,
		Data:       payload,
		ReceivedAt: e.now(),
	}

	delivered := 0
	for _, s := range snapshot {
		if !s.active.Load() {
			continue
		}
		s.listener(event)
		delivered++
	}

	metrics.EventsDeliveredTotal.WithLabelValues(string(t)).Add(float64(delivered))
	return delivered
}

// EmitString is Emit for native callers that hand over the payload as a
// JSON string. An empty string means no payload; text that is not JSON is
// wrapped as a JSON string.
func (e *Emitter) EmitString(name string, payload string) int {
	var data json.RawMessage
	switch {
	case payload == "":
	case json.Valid([]byte(payload)):
		data = json.RawMessage(payload)
	default:
		data, _ = json.Marshal(payload)
	}
	return e.Emit(EventType(name), data)
}
