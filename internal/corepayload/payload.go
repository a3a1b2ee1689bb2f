// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package corepayload implements the untyped task payload engine shared by
// every Task[T,E]/TaskCompletionSource[T,E] instantiation: a run-once work
// closure, a result slot set exactly once, a continuation list, a redirect
// pointer for the unwrap protocol, and the mutex guarding all three. The
// typed Task layer lives one level up and only ever touches this package
// through `any`-typed results, recovering concrete types with its own type
// assertions.
package corepayload

import (
	"sync"
	"weak"
)

// ErrCompletedTwice mirrors the module-level sentinel of the same name; it
// is redeclared here so this package stays importable without a cycle.
var ErrCompletedTwice = errCompletedTwice{}

type errCompletedTwice struct{}

func (errCompletedTwice) Error() string { return "arcana: completed twice" }

// Continuation is the (weak parent, owned child, scheduling closure)
// triple from the completion protocol. Run receives the parent's result
// (an `any` boxing the typed Expected[T,E]) and is responsible for
// producing and installing the child's own result, including any
// error/cancellation short-circuit logic — that policy lives in the typed
// layer, not here.
type Continuation struct {
	parent   weak.Pointer[Payload]
	Child    *Payload
	Run      func(parentResult any)
	Schedule func(thunk func())
}

func newContinuation(parent *Payload, child *Payload, run func(any), schedule func(func())) Continuation {
	return Continuation{parent: weak.Make(parent), Child: child, Run: run, Schedule: schedule}
}

// Parent returns the continuation's parent payload if it is still live.
func (c Continuation) Parent() (*Payload, bool) {
	p := c.parent.Value()
	return p, p != nil
}

func (c Continuation) reparentedTo(target *Payload) Continuation {
	c.parent = weak.Make(target)
	return c
}

// Payload is the heap-allocated, shared-owned task node.
type Payload struct {
	mu        sync.Mutex
	work      func() // run-once; nil for promise-style nodes
	completed bool
	result    any
	hasResult bool
	redirect  *Payload
	conts     []Continuation
}

// New creates a pending payload. work may be nil for a promise-style node
// created by a completion source.
func New(work func()) *Payload {
	return &Payload{work: work}
}

// SetWork installs the run-once work closure. It must be called before
// the payload is published to any other goroutine (typically right after
// New, from the same constructor that returns the payload).
func (p *Payload) SetWork(work func()) {
	p.work = work
}

// Submit hands the payload's work closure to scheduler for execution. It
// is the caller's responsibility to have built work as a closure over this
// same payload that ends by calling Complete.
func (p *Payload) Submit(scheduler func(func())) {
	work := p.work
	if work == nil {
		return
	}
	scheduler(func() { work() })
}

// IsCompleted reports whether Complete has already run, following the
// redirect chain.
func (p *Payload) IsCompleted() bool {
	for {
		p.mu.Lock()
		if p.redirect != nil {
			next := p.redirect
			p.mu.Unlock()
			p = next
			continue
		}
		completed := p.completed
		p.mu.Unlock()
		return completed
	}
}

// Result returns the completed result, following the redirect chain. ok is
// false if not yet completed.
func (p *Payload) Result() (any, bool) {
	for {
		p.mu.Lock()
		if p.redirect != nil {
			next := p.redirect
			p.mu.Unlock()
			p = next
			continue
		}
		result, hasResult := p.result, p.hasResult
		p.mu.Unlock()
		return result, hasResult
	}
}

// Complete runs the completion protocol: the payload is marked completed,
// its continuation list is drained and each continuation scheduled on its
// own scheduler outside the lock. Returns ErrCompletedTwice if already
// completed (a programmer error, per the contract).
func (p *Payload) Complete(result any) error {
	p.mu.Lock()
	if p.completed {
		p.mu.Unlock()
		return ErrCompletedTwice
	}
	conts := p.conts
	p.conts = nil
	p.completed = true
	p.result = result
	p.hasResult = true
	p.mu.Unlock()

	for _, c := range conts {
		c := c
		c.Schedule(func() { c.Run(result) })
	}
	return nil
}

// Attach implements the attachment protocol: it walks any redirect chain,
// then either schedules the continuation immediately (parent already
// completed) or appends it to the parent's continuation list.
func Attach(parent *Payload, child *Payload, run func(any), schedule func(func())) {
	cont := newContinuation(parent, child, run, schedule)
	attach(parent, cont)
}

func attach(parent *Payload, cont Continuation) {
	for {
		parent.mu.Lock()
		if parent.redirect != nil {
			next := parent.redirect
			parent.mu.Unlock()
			parent = next
			continue
		}
		if parent.completed {
			result := parent.result
			parent.mu.Unlock()
			cont.Schedule(func() { cont.Run(result) })
			return
		}
		parent.conts = append(parent.conts, cont)
		parent.mu.Unlock()
		return
	}
}

// Cannibalize implements the unwrap protocol's splice step: source's
// continuation list is atomically taken, source is marked completed with
// its redirect set to target, and each taken continuation is reparented to
// target and (re)attached there. After this call, any lookup on source
// (directly or through an earlier redirect hop into it) forwards to
// target.
func Cannibalize(source *Payload, target *Payload) {
	source.mu.Lock()
	if source.completed {
		source.mu.Unlock()
		return
	}
	conts := source.conts
	source.conts = nil
	source.completed = true
	source.redirect = target
	source.mu.Unlock()

	for _, c := range conts {
		attach(target, c.reparentedTo(target))
	}
}
