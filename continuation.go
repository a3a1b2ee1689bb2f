// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package arcana

import "code.hybscloud.com/arcana/internal/corepayload"

// Then attaches a value-only continuation: fn is invoked with the
// parent's value and is never invoked at all if the parent produced an
// error, or if cancel is cancelled by the time the continuation runs on
// its scheduler — in either case the child short-circuits to the same error, or to
// cancelled. This is the attachment protocol of §4.4 specialized to the
// value-only categorization.
func Then[T, U any, E error](parent Task[T, E], scheduler Scheduler, cancel Cancellation, fn func(T) Expected[U, E]) Task[U, E] {
	child := corepayload.New(nil)
	run := func(parentResult any) {
		pe := parentResult.(Expected[T, E])
		if pe.HasError() {
			errv, _ := pe.Error()
			child.Complete(Err[U, E](errv))
			return
		}
		if cancel.Cancelled() {
			child.Complete(Err[U, E](CancelledAs[E]()))
			return
		}
		v, _ := pe.Value()
		child.Complete(fn(v))
	}
	corepayload.Attach(parent.payload, child, run, scheduler)
	return Task[U, E]{payload: child}
}

// ThenExpected attaches an Expected-handling continuation: fn runs
// unconditionally, even over a parent error, so it can recover. It still
// short-circuits to cancelled if cancel is cancelled by the time the
// continuation runs on its scheduler.
func ThenExpected[T, U any, E error](parent Task[T, E], scheduler Scheduler, cancel Cancellation, fn func(Expected[T, E]) Expected[U, E]) Task[U, E] {
	child := corepayload.New(nil)
	run := func(parentResult any) {
		pe := parentResult.(Expected[T, E])
		if cancel.Cancelled() {
			child.Complete(Err[U, E](CancelledAs[E]()))
			return
		}
		child.Complete(fn(pe))
	}
	corepayload.Attach(parent.payload, child, run, scheduler)
	return Task[U, E]{payload: child}
}

// upgradeError converts an error value from a parent's error domain E1
// into a continuation's error domain E2, enforcing the code <= exception
// ordering: same-type passthrough, and the one blessed Code -> Exception
// upgrade (errorPriority is what orders the two domains; UpgradeToException
// is the conversion itself). A declared downgrade, or any pair with no
// defined conversion, panics rather than silently losing information.
func upgradeError[E1, E2 error](e E1) E2 {
	if v, ok := any(e).(E2); ok {
		return v
	}
	var toZero E2
	if errorPriority(e) > errorPriority(toZero) {
		panic("arcana: then: error channel downgrade is not allowed")
	}
	if c, ok := any(e).(Code); ok {
		if exc, ok := any(UpgradeToException(c)).(E2); ok {
			return exc
		}
	}
	panic("arcana: then: error channel upgrade path is undefined for these types")
}

// ThenUpgrade is Then generalized across two error domains: the parent's
// E1 may be upgraded to the continuation's declared E2, so a Task[T,Code]
// can flow directly into a continuation written over Exception and yield
// a Task[U,Exception]. The reverse direction panics via upgradeError.
func ThenUpgrade[T, U any, E1, E2 error](parent Task[T, E1], scheduler Scheduler, cancel Cancellation, fn func(T) Expected[U, E2]) Task[U, E2] {
	child := corepayload.New(nil)
	run := func(parentResult any) {
		pe := parentResult.(Expected[T, E1])
		if pe.HasError() {
			errv, _ := pe.Error()
			child.Complete(Err[U, E2](upgradeError[E1, E2](errv)))
			return
		}
		if cancel.Cancelled() {
			child.Complete(Err[U, E2](CancelledAs[E2]()))
			return
		}
		v, _ := pe.Value()
		child.Complete(fn(v))
	}
	corepayload.Attach(parent.payload, child, run, scheduler)
	return Task[U, E2]{payload: child}
}

// ThenExpectedUpgrade is ThenExpected generalized across two error
// domains: fn always runs, in the upgraded E2 domain, even over a parent
// error in E1.
func ThenExpectedUpgrade[T, U any, E1, E2 error](parent Task[T, E1], scheduler Scheduler, cancel Cancellation, fn func(Expected[T, E2]) Expected[U, E2]) Task[U, E2] {
	child := corepayload.New(nil)
	run := func(parentResult any) {
		pe := parentResult.(Expected[T, E1])
		if cancel.Cancelled() {
			child.Complete(Err[U, E2](CancelledAs[E2]()))
			return
		}
		var upgraded Expected[T, E2]
		if pe.HasError() {
			errv, _ := pe.Error()
			upgraded = Err[T, E2](upgradeError[E1, E2](errv))
		} else {
			v, _ := pe.Value()
			upgraded = Ok[T, E2](v)
		}
		child.Complete(fn(upgraded))
	}
	corepayload.Attach(parent.payload, child, run, scheduler)
	return Task[U, E2]{payload: child}
}

// ThenTaskUpgrade is ThenTask generalized across two error domains,
// unwrapping an inner Task[U,E2] produced from a Task[T,E1] parent.
func ThenTaskUpgrade[T, U any, E1, E2 error](parent Task[T, E1], scheduler Scheduler, cancel Cancellation, fn func(T) Task[U, E2]) Task[U, E2] {
	s := corepayload.New(nil)
	run := func(parentResult any) {
		pe := parentResult.(Expected[T, E1])
		if pe.HasError() {
			errv, _ := pe.Error()
			s.Complete(Err[U, E2](upgradeError[E1, E2](errv)))
			return
		}
		if cancel.Cancelled() {
			s.Complete(Err[U, E2](CancelledAs[E2]()))
			return
		}
		v, _ := pe.Value()
		inner := fn(v)
		corepayload.Cannibalize(s, inner.payload)
	}
	corepayload.Attach(parent.payload, s, run, scheduler)
	return Task[U, E2]{payload: s}
}

// ThenTask attaches a task-returning continuation and implements the
// unwrap protocol: the visible child (S) is redirected onto the inner
// task the moment fn produces it, via Cannibalize, so that every
// continuation attached to S before or after the inner task's own
// completion observes the inner task's result exactly once, without an
// intervening task-of-task hop.
func ThenTask[T, U any, E error](parent Task[T, E], scheduler Scheduler, cancel Cancellation, fn func(T) Task[U, E]) Task[U, E] {
	s := corepayload.New(nil)
	run := func(parentResult any) {
		pe := parentResult.(Expected[T, E])
		if pe.HasError() {
			errv, _ := pe.Error()
			s.Complete(Err[U, E](errv))
			return
		}
		if cancel.Cancelled() {
			s.Complete(Err[U, E](CancelledAs[E]()))
			return
		}
		v, _ := pe.Value()
		inner := fn(v)
		corepayload.Cannibalize(s, inner.payload)
	}
	corepayload.Attach(parent.payload, s, run, scheduler)
	return Task[U, E]{payload: s}
}
