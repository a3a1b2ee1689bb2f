// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package arcana

import (
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
)

const (
	cancelNotStarted uint32 = iota
	cancelStarted
	cancelFinished
)

// cancellationImpl is the heap-allocated, shared-owned implementation
// behind every non-none Cancellation/CancellationSource pair.
type cancellationImpl struct {
	mu        sync.Mutex
	state     atomix.Uint32
	pins      atomix.Uint32
	requested TicketedCollection[func()]
	completed TicketedCollection[func()]
}

// Cancellation is the observer-facing handle: it can be checked, listened
// to, and pinned, but not cancelled directly.
type Cancellation struct {
	impl *cancellationImpl // nil means the none() source
}

// CancellationSource is the owner-facing handle: it can additionally
// trigger cancel().
type CancellationSource struct {
	impl *cancellationImpl
}

// NewCancellationSource creates a fresh, not-yet-started cancellation
// source.
func NewCancellationSource() *CancellationSource {
	return &CancellationSource{impl: &cancellationImpl{}}
}

var noneSource = Cancellation{impl: nil}

// NoneCancellation returns the process-wide immutable cancellation that
// never reports cancelled; registering a listener on it returns an inert
// ticket and never invokes the listener.
func NoneCancellation() Cancellation {
	return noneSource
}

// Cancellation returns the observer handle bound to this source.
func (s *CancellationSource) Cancellation() Cancellation {
	return Cancellation{impl: s.impl}
}

// Cancelled reports whether cancel() has been requested (the started
// edge), regardless of whether finished has been reached yet.
func (c Cancellation) Cancelled() bool {
	if c.impl == nil {
		return false
	}
	return c.impl.state.Load() != cancelNotStarted
}

// finished reports whether the finished edge has fired.
func (c Cancellation) finished() bool {
	if c.impl == nil {
		return false
	}
	return c.impl.state.Load() == cancelFinished
}

// AddRequestedListener registers f to run when cancel() is first
// requested. If the source is already started, f runs synchronously
// before this call returns. The returned ticket's Release removes f
// under the source's mutex; Release is safe even after f has already run.
func (c Cancellation) AddRequestedListener(f func()) Ticket {
	if c.impl == nil {
		return inertTicket{}
	}
	impl := c.impl
	impl.mu.Lock()
	if impl.state.Load() != cancelNotStarted {
		impl.mu.Unlock()
		f()
		return inertTicket{}
	}
	t := impl.requested.Insert(&impl.mu, f)
	impl.mu.Unlock()
	return t
}

// AddCompletedListener registers f to run when the source reaches
// finished. If already finished, f runs synchronously before this call
// returns.
func (c Cancellation) AddCompletedListener(f func()) Ticket {
	if c.impl == nil {
		return inertTicket{}
	}
	impl := c.impl
	impl.mu.Lock()
	if impl.state.Load() == cancelFinished {
		impl.mu.Unlock()
		f()
		return inertTicket{}
	}
	t := impl.completed.Insert(&impl.mu, f)
	impl.mu.Unlock()
	return t
}

// PinGuard delays a cancellation source's finished edge until Release is
// called on every outstanding guard.
type PinGuard struct {
	impl *cancellationImpl
}

// Release decrements the pin count; if this was the last pin and the
// source has already been started, it transitions to finished and fires
// the completed listeners.
func (g PinGuard) Release() {
	if g.impl == nil {
		return
	}
	remaining := g.impl.pins.Add(^uint32(0)) // atomic decrement
	if remaining != 0 {
		return
	}
	g.impl.tryFinish()
}

// Pin increments the pin count and returns a guard, unless the source has
// already started, in which case it returns ok=false: pinning after
// cancel() has been requested would never prevent anything, since the
// started edge has already fired.
func (c Cancellation) Pin() (guard PinGuard, ok bool) {
	if c.impl == nil {
		return PinGuard{}, false
	}
	if c.impl.state.Load() != cancelNotStarted {
		return PinGuard{}, false
	}
	c.impl.pins.Add(1)
	// Re-check: cancel() may have raced us to started between the load
	// and the increment. If so, the pin is undone (finishing the source if
	// it was the only pin holding it back) and ok=false is returned, as
	// for a source that was already started.
	if c.impl.state.Load() != cancelNotStarted {
		PinGuard{impl: c.impl}.Release()
		return PinGuard{}, false
	}
	return PinGuard{impl: c.impl}, true
}

// Cancel transitions not_started -> started, firing requested listeners
// in LIFO order, then attempts the started -> finished transition if the
// pin count is already zero. Calling Cancel twice has the same effect as
// calling it once.
func (s *CancellationSource) Cancel() {
	impl := s.impl
	if !impl.state.CompareAndSwap(cancelNotStarted, cancelStarted) {
		return
	}
	impl.mu.Lock()
	listeners := impl.requested.SnapshotReverse()
	impl.mu.Unlock()
	for _, f := range listeners {
		f()
	}
	impl.tryFinish()
}

// CancelBlocking requests cancellation and waits for the finished edge,
// backing off adaptively while pins are outstanding.
func (s *CancellationSource) CancelBlocking() {
	s.Cancel()
	impl := s.impl
	var bo iox.Backoff
	for impl.state.Load() != cancelFinished {
		bo.Wait()
	}
}

// tryFinish transitions started -> finished if the pin count is zero,
// firing completed listeners in LIFO order exactly once.
func (impl *cancellationImpl) tryFinish() {
	if impl.pins.Load() != 0 {
		return
	}
	if !impl.state.CompareAndSwap(cancelStarted, cancelFinished) {
		return
	}
	impl.mu.Lock()
	listeners := impl.completed.SnapshotReverse()
	impl.mu.Unlock()
	for _, f := range listeners {
		f()
	}
}

// ThrowIfCancellationRequested returns ErrCancelled if c.Cancelled(),
// nil otherwise.
func ThrowIfCancellationRequested(c Cancellation) error {
	if c.Cancelled() {
		return ErrCancelled
	}
	return nil
}
