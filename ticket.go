// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package arcana

import (
	"container/list"
	"sync"
)

// Ticket is an RAII-style handle that owns a row in a TicketedCollection.
// Release removes the row; it is safe to call more than once.
type Ticket interface {
	Release()
}

// inertTicket is returned by collections that never actually store
// anything, such as NoneCancellation's listener registries.
type inertTicket struct{}

func (inertTicket) Release() {}

// TicketScope aggregates a group of tickets so they can be released
// together, in reverse order of addition (mirroring the LIFO discipline
// the cancellation source uses for its own listeners).
type TicketScope struct {
	mu      sync.Mutex
	tickets []Ticket
}

// Add appends t to the scope.
func (s *TicketScope) Add(t Ticket) {
	s.mu.Lock()
	s.tickets = append(s.tickets, t)
	s.mu.Unlock()
}

// Release releases every ticket added so far, most recently added first,
// and clears the scope.
func (s *TicketScope) Release() {
	s.mu.Lock()
	tickets := s.tickets
	s.tickets = nil
	s.mu.Unlock()
	for i := len(tickets) - 1; i >= 0; i-- {
		tickets[i].Release()
	}
}

// TicketedCollection is an ordered multiset of T. Insertion returns an
// owning ticket; releasing the ticket removes the row under a
// caller-supplied mutex. Iteration is always by an explicit Snapshot taken
// under that same mutex: the collection itself makes no promise about
// concurrent structural iteration, only that insertion and removal remain
// safe while some other goroutine holds a previously taken snapshot.
type TicketedCollection[T any] struct {
	rows list.List // list.Element.Value is T
}

// Len returns the current number of rows. Caller holds the collection's
// mutex.
func (c *TicketedCollection[T]) Len() int {
	return c.rows.Len()
}

// Insert appends v and returns a ticket owning the new row. The caller
// must already hold mu: Insert itself never locks, mirroring the
// teacher's pattern of inserting while the cancellation source's own
// critical section is already open.
func (c *TicketedCollection[T]) Insert(mu *sync.Mutex, v T) Ticket {
	elem := c.rows.PushBack(v)
	return &collectionTicket[T]{mu: mu, coll: c, elem: elem}
}

// Snapshot copies the current rows, in insertion order. The caller must
// hold the collection's mutex for the duration of the call; the returned
// slice is then safe to iterate without the lock.
func (c *TicketedCollection[T]) Snapshot() []T {
	out := make([]T, 0, c.rows.Len())
	for e := c.rows.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(T))
	}
	return out
}

// SnapshotReverse is Snapshot in reverse insertion order, used for the
// cancellation source's LIFO listener firing.
func (c *TicketedCollection[T]) SnapshotReverse() []T {
	out := make([]T, 0, c.rows.Len())
	for e := c.rows.Back(); e != nil; e = e.Prev() {
		out = append(out, e.Value.(T))
	}
	return out
}

// collectionTicket removes its row from coll, under mu, at most once.
type collectionTicket[T any] struct {
	mu       *sync.Mutex
	coll     *TicketedCollection[T]
	elem     *list.Element
	released bool
}

func (t *collectionTicket[T]) Release() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.released {
		return
	}
	t.released = true
	t.coll.rows.Remove(t.elem)
}
