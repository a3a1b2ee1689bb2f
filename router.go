// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package arcana

import (
	"reflect"
	"sync"
)

// Router holds one ticketed collection per event type. The original's
// Router<E1,...,En> fixes its event-type set at compile time via variadic
// templates; Go has no variadic generics, so this module keys the
// per-type collections dynamically by reflect.Type instead. The
// observable contract — one collection per event type, snapshot-then-fire
// reentrancy safety — is unchanged.
type Router struct {
	mu        sync.Mutex
	listeners map[reflect.Type]*TicketedCollection[func(any)]
}

// NewRouter creates a router with no registered event types yet.
func NewRouter() *Router {
	return &Router{listeners: make(map[reflect.Type]*TicketedCollection[func(any)])}
}

func (r *Router) collectionFor(t reflect.Type) *TicketedCollection[func(any)] {
	c, ok := r.listeners[t]
	if !ok {
		c = &TicketedCollection[func(any)]{}
		r.listeners[t] = c
	}
	return c
}

// AddListener appends fn for event type E. Safe to call from inside
// another listener: the new listener will not fire for the event
// currently being dispatched, only for subsequent ones.
func AddListener[E any](r *Router, fn func(E)) Ticket {
	t := reflect.TypeFor[E]()
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.collectionFor(t)
	return c.Insert(&r.mu, func(v any) { fn(v.(E)) })
}

// Fire snapshots the current listener list for E under the router's lock,
// then invokes each listener outside the lock in insertion order.
// Listeners may fire recursively and may drop their own ticket from
// within themselves; the snapshot means the current loop is unaffected
// either way.
func Fire[E any](r *Router, e E) {
	t := reflect.TypeFor[E]()
	r.mu.Lock()
	c := r.collectionFor(t)
	snapshot := c.Snapshot()
	r.mu.Unlock()
	for _, fn := range snapshot {
		fn(e)
	}
}

// Dispatcher is the affinity-checking scheduler capability a Mediator
// posts onto. CheckAffinity reports whether the calling goroutine is
// allowed to register listeners right now (the original checks thread
// affinity; Go has no thread identity to check generically, so concrete
// dispatchers decide their own affinity rule).
type Dispatcher interface {
	Schedule(thunk func())
	CheckAffinity() bool
}

// Mediator owns a router and a reference to a dispatcher. Send posts a
// dispatcher task that fires the event; AddListener enforces the
// dispatcher's affinity check at registration time.
type Mediator struct {
	router     *Router
	dispatcher Dispatcher
}

// NewMediator creates a mediator over a fresh router, posting through d.
func NewMediator(d Dispatcher) *Mediator {
	return &Mediator{router: NewRouter(), dispatcher: d}
}

// MediatorSend posts a dispatcher task that fires e on the mediator's
// router.
func MediatorSend[E any](m *Mediator, e E) {
	m.dispatcher.Schedule(func() { Fire[E](m.router, e) })
}

// MediatorAddListener enforces the dispatcher's affinity check, then
// delegates to the underlying router.
func MediatorAddListener[E any](m *Mediator, fn func(E)) Ticket {
	if !m.dispatcher.CheckAffinity() {
		panic("arcana: mediator: add_listener called off the dispatcher's affinity")
	}
	return AddListener[E](m.router, fn)
}
