// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package arcana provides a header-only-style library of concurrency
// primitives for composing asynchronous computations across arbitrary
// execution contexts.
//
// # Architecture
//
//   - Task graph: [Task] and [TaskCompletionSource] are a lazily-chained,
//     scheduler-parametric future/promise pair with continuations, task
//     unwrapping, cancellation propagation and a two-domain error channel
//     ([Code] and [Exception], see [Expected]).
//   - State machine: [StateMachineDriver] with [MoveTo] on the driver side
//     and [On]/[OnVoid] on the observer side is a rendezvous mechanism
//     between a state driver and many observers.
//   - Router: [Router] and [Mediator] provide typed multi-listener fan-out
//     whose listener list is safe against mutation during fire.
//
// # Scheduling
//
// A scheduler is any [Scheduler] value. [Inline] runs continuations on the
// caller; [ManualScheduler] and [BackgroundScheduler] queue work for later,
// the latter backed by [code.hybscloud.com/lfq.SPSC] and drained by
// [code.hybscloud.com/iox.Backoff] on an owned goroutine.
//
// # Example
//
//	var d arcana.ManualScheduler
//	tcs := arcana.NewTaskCompletionSource[int, arcana.Code]()
//	t := arcana.Then(tcs.AsTask(), d.Schedule, arcana.NoneCancellation(), func(v int) arcana.Expected[int, arcana.Code] {
//		return arcana.Ok[int, arcana.Code](v + 1)
//	})
//	tcs.Complete(41)
//	d.Drain()
//	v, _ := t.UnsafeResult().Value()
package arcana
