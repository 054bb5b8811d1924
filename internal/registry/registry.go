// Package registry keeps track of which application handlers are attached to
// which Pollfish events, and of the emitter subscription behind each one.
package registry

import (
	"log/slog"
	"reflect"
	"sync"

	"github.com/pollfish/pollfish-bridge/internal/events"
	"github.com/pollfish/pollfish-bridge/internal/metrics"
)

// Handler is an application callback for Pollfish events. Handlers are
// matched by identity, so the dynamic type must be comparable. Pointer
// types are the usual choice.
type Handler interface {
	HandleEvent(event events.Event)
}

type funcHandler struct {
	fn func(event events.Event)
}

func (h *funcHandler) HandleEvent(event events.Event) {
	h.fn(event)
}

// HandlerFunc wraps fn in a new Handler. Every call returns a distinct
// handler, even for the same fn; keep the result to remove it later.
func HandlerFunc(fn func(event events.Event)) Handler {
	return &funcHandler{fn: fn}
}

// Emitter is the subscription source the registry attaches handlers to.
type Emitter interface {
	AddListener(t events.EventType, l events.Listener) *events.Subscription
	RemoveAllListeners(t events.EventType)
}

type entry struct {
	handler Handler
	sub     *events.Subscription
}

type bucket struct {
	mu      sync.Mutex
	entries []entry
}

func (b *bucket) indexOf(h Handler) int {
	for i, e := range b.entries {
		if e.handler == h {
			return i
		}
	}
	return -1
}

// Registry maps each event type to its ordered (handler, subscription)
// pairs. There is at most one live subscription per (type, handler).
type Registry struct {
	emitter Emitter
	logger  *slog.Logger
	buckets map[events.EventType]*bucket
}

func New(emitter Emitter, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	buckets := make(map[events.EventType]*bucket)
	for _, t := range events.All() {
		buckets[t] = &bucket{}
	}
	return &Registry{
		emitter: emitter,
		logger:  logger,
		buckets: buckets,
	}
}

// AddEventListener subscribes h to events of type t and reports whether a
// new subscription was made. Unknown types and unusable handlers are logged
// and skipped. Registering the same handler twice for a type keeps the
// first subscription.
func (r *Registry) AddEventListener(t events.EventType, h Handler) bool {
	b, ok := r.buckets[t]
	if !ok {
		metrics.RegistryRejectedTotal.WithLabelValues(metrics.ReasonUnknownType).Inc()
		r.logger.Warn("event type does not exist", "type", string(t))
		return false
	}
	if h == nil || !reflect.TypeOf(h).Comparable() {
		metrics.RegistryRejectedTotal.WithLabelValues(metrics.ReasonInvalidHandler).Inc()
		r.logger.Warn("handler is nil or not comparable", "type", string(t))
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if i := b.indexOf(h); i >= 0 {
		if b.entries[i].sub.Active() {
			metrics.RegistryRejectedTotal.WithLabelValues(metrics.ReasonDuplicate).Inc()
			r.logger.Debug("handler already registered", "type", string(t))
			return false
		}
		// subscription was dropped on the emitter directly
		b.entries = append(b.entries[:i], b.entries[i+1:]...)
	}

	sub := r.emitter.AddListener(t, h.HandleEvent)
	b.entries = append(b.entries, entry{handler: h, sub: sub})
	r.logger.Debug("listener added", "type", string(t), "handlers", len(b.entries))
	return true
}

// RemoveEventListener cancels the subscription of h for type t. Removing a
// handler that is not registered does nothing.
func (r *Registry) RemoveEventListener(t events.EventType, h Handler) {
	b, ok := r.buckets[t]
	if !ok || h == nil || !reflect.TypeOf(h).Comparable() {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(h)
	if i < 0 {
		return
	}
	b.entries[i].sub.Cancel()
	b.entries = append(b.entries[:i], b.entries[i+1:]...)
	r.logger.Debug("listener removed", "type", string(t), "handlers", len(b.entries))
}

// RemoveAllListeners drops every subscription for every event type on the
// emitter, including ones not made through this registry, and clears the
// registry's own entries with it.
func (r *Registry) RemoveAllListeners() {
	for _, t := range events.All() {
		b := r.buckets[t]
		b.mu.Lock()
		r.emitter.RemoveAllListeners(t)
		for _, e := range b.entries {
			e.sub.Cancel()
		}
		b.entries = nil
		b.mu.Unlock()
	}
	r.logger.Debug("all listeners removed")
}

// Len returns the number of handlers registered for t.
func (r *Registry) Len(t events.EventType) int {
	b, ok := r.buckets[t]
	if !ok {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// Handlers returns the handlers registered for t in registration order.
func (r *Registry) Handlers(t events.EventType) []Handler {
	b, ok := r.buckets[t]
	if !ok {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Handler, 0, len(b.entries))
	for _, e := range b.entries {
		out = append(out, e.handler)
	}
	return out
}

// Close releases every subscription held by the registry.
func (r *Registry) Close() {
	r.RemoveAllListeners()
}
