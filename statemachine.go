// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package arcana

import "sync"

// StateMachineState is an opaque identity for one state in the
// state-machine coordinator, carrying the type of the payload P observers
// produce for it. Two states are the same state iff they share identity,
// never by structural equality — construct each with NewStateMachineState
// and hold onto the value.
type StateMachineState[P any] struct {
	key *byte
}

// NewStateMachineState allocates a fresh, distinct state identity.
func NewStateMachineState[P any]() StateMachineState[P] {
	return StateMachineState[P]{key: new(byte)}
}

// stateRecord is the per-state-identity record the driver and observer
// rendezvous over. Only the map's value type is shared across different
// P instantiations; the map key is the type-erased *byte identity.
type stateRecord struct {
	entered     *TaskCompletionSource[Void, Code]
	exited      AbstractTaskCompletionSource
	workPending bool
}

// StateMachineDriver owns the shared state-identity -> record map. The
// original only supports error_code for the state machine's error
// channel; this module hardcodes the same restriction (E = Code).
type StateMachineDriver struct {
	mu      sync.Mutex
	records map[*byte]*stateRecord
}

// NewStateMachineDriver creates a driver with no outstanding records.
func NewStateMachineDriver() *StateMachineDriver {
	return &StateMachineDriver{records: make(map[*byte]*stateRecord)}
}

func (d *StateMachineDriver) getOrCreate(key *byte) *stateRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.records[key]
	if !ok {
		r = &stateRecord{
			entered: NewTaskCompletionSource[Void, Code](),
			exited:  NewAbstractTaskCompletionSource(),
		}
		d.records[key] = r
	}
	return r
}

// MoveTo obtains or creates the per-state record, immediately completes
// its entered source (unblocking any waiting observer), and returns a
// task that resolves once an observer's On-callback finishes and the
// driver's Exit for this state has run. A cancellation listener erases
// the record and completes the exited side with cancelled if cancel
// fires before Exit does.
func MoveTo[P any](d *StateMachineDriver, state StateMachineState[P], cancel Cancellation) Task[P, Code] {
	r := d.getOrCreate(state.key)
	_ = r.entered.Complete(Void{})

	ticket := cancel.AddRequestedListener(func() {
		d.mu.Lock()
		rec, ok := d.records[state.key]
		if ok {
			delete(d.records, state.key)
		}
		d.mu.Unlock()
		if ok && !rec.exited.Completed() {
			_ = CompleteAbstract[P, Code](rec.exited, Err[P, Code](CodeCancelled))
		}
	})

	exitTask := AbstractAsTask[P, Code](r.exited)
	return ThenExpected[P, P, Code](exitTask, Inline, NoneCancellation(), func(x Expected[P, Code]) Expected[P, Code] {
		ticket.Release()
		return x
	})
}

// Enter is called on the observer's behalf (see On): it asserts no
// outstanding work for this state, marks work pending, and returns a
// task that resolves once the driver's MoveTo has signaled entered — or
// cancelled, if cancel fires first.
func Enter[P any](d *StateMachineDriver, state StateMachineState[P], cancel Cancellation) Task[Void, Code] {
	r := d.getOrCreate(state.key)
	d.mu.Lock()
	if r.workPending {
		d.mu.Unlock()
		panic(ErrWorkPending)
	}
	r.workPending = true
	d.mu.Unlock()

	ticket := cancel.AddRequestedListener(func() {
		d.mu.Lock()
		rec, ok := d.records[state.key]
		d.mu.Unlock()
		if ok && !rec.entered.Completed() {
			_ = rec.entered.CompleteExpected(Err[Void, Code](CodeCancelled))
		}
	})

	enterTask := r.entered.AsTask()
	return ThenExpected[Void, Void, Code](enterTask, Inline, NoneCancellation(), func(x Expected[Void, Code]) Expected[Void, Code] {
		ticket.Release()
		return x
	})
}

// Exit erases the state's record (so a concurrent MoveTo during this very
// completion creates a fresh one) and then completes the extracted exited
// source with value.
func Exit[P any](d *StateMachineDriver, state StateMachineState[P], value P) {
	d.mu.Lock()
	r, ok := d.records[state.key]
	if ok {
		delete(d.records, state.key)
	}
	d.mu.Unlock()
	if !ok {
		return
	}
	_ = CompleteAbstract[P, Code](r.exited, Ok[P, Code](value))
}

// On is the observer side of the rendezvous: it waits for entered, dispatches fn on
// scheduler with a pointer to a fresh payload, and drives the state's
// Exit with whatever fn wrote into that payload once fn's task settles.
func On[P, R any](d *StateMachineDriver, state StateMachineState[P], scheduler Scheduler, cancel Cancellation, fn func(*P) R) Task[R, Code] {
	enterTask := Enter[P](d, state, cancel)
	return ThenTask[Void, R, Code](enterTask, Inline, NoneCancellation(), func(_ Void) Task[R, Code] {
		payload := new(P)
		work := MakeTask[R, Code](scheduler, cancel, func() Expected[R, Code] {
			return Ok[R, Code](fn(payload))
		})
		return ThenExpected[R, R, Code](work, Inline, NoneCancellation(), func(x Expected[R, Code]) Expected[R, Code] {
			Exit[P](d, state, *payload)
			return x
		})
	})
}

// OnVoid is On specialized to a void-payload state, whose fn takes no
// payload argument.
func OnVoid[R any](d *StateMachineDriver, state StateMachineState[Void], scheduler Scheduler, cancel Cancellation, fn func() R) Task[R, Code] {
	return On[Void, R](d, state, scheduler, cancel, func(_ *Void) R { return fn() })
}
