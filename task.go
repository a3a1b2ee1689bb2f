// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package arcana

import "code.hybscloud.com/arcana/internal/corepayload"

// Task is a cheap-to-copy handle onto a shared payload. Copies observe
// the same eventual result.
type Task[T any, E error] struct {
	payload *corepayload.Payload
}

// Completed reports whether the task's payload has completed, following
// any redirect chain installed by the unwrap protocol.
func (t Task[T, E]) Completed() bool {
	return t.payload.IsCompleted()
}

// UnsafeResult returns the completed result. It panics if the task has
// not completed yet; callers that cannot prove completion should instead
// attach a continuation with Then/ThenExpected.
func (t Task[T, E]) UnsafeResult() Expected[T, E] {
	result, ok := t.payload.Result()
	if !ok {
		panic("arcana: UnsafeResult called before task completed")
	}
	return result.(Expected[T, E])
}

// TaskCompletionSource is a promise-like handle driving a Task to
// completion exactly once.
type TaskCompletionSource[T any, E error] struct {
	payload *corepayload.Payload
}

// NewTaskCompletionSource creates a pending completion source with no
// work closure; only Complete/CompleteExpected/CompleteWithError ever
// settle it.
func NewTaskCompletionSource[T any, E error]() *TaskCompletionSource[T, E] {
	return &TaskCompletionSource[T, E]{payload: corepayload.New(nil)}
}

// AsTask obtains a task handle bound to this completion source.
func (s *TaskCompletionSource[T, E]) AsTask() Task[T, E] {
	return Task[T, E]{payload: s.payload}
}

// Completed observes whether Complete has already run.
func (s *TaskCompletionSource[T, E]) Completed() bool {
	return s.payload.IsCompleted()
}

// CompleteExpected settles the source with x. Returns ErrCompletedTwice if
// already completed.
func (s *TaskCompletionSource[T, E]) CompleteExpected(x Expected[T, E]) error {
	if err := s.payload.Complete(x); err != nil {
		return ErrCompletedTwice
	}
	return nil
}

// Complete settles the source with a value.
func (s *TaskCompletionSource[T, E]) Complete(v T) error {
	return s.CompleteExpected(Ok[T, E](v))
}

// CompleteWithError settles the source with an error.
func (s *TaskCompletionSource[T, E]) CompleteWithError(e E) error {
	return s.CompleteExpected(Err[T, E](e))
}

// AbstractTaskCompletionSource is a type-erased completion-source handle,
// used by the state machine to store per-state exits uniformly without
// knowing each state's payload type at the map's declaration site.
type AbstractTaskCompletionSource struct {
	payload *corepayload.Payload
}

// NewAbstractTaskCompletionSource creates a pending, type-erased
// completion source.
func NewAbstractTaskCompletionSource() AbstractTaskCompletionSource {
	return AbstractTaskCompletionSource{payload: corepayload.New(nil)}
}

// Completed observes whether the source has settled.
func (a AbstractTaskCompletionSource) Completed() bool {
	return a.payload.IsCompleted()
}

// UnsafeCast recovers a typed completion source from an abstract one. The
// caller must be able to prove T and E match the original instantiation;
// there is no runtime tag to check against.
func UnsafeCast[T any, E error](a AbstractTaskCompletionSource) TaskCompletionSource[T, E] {
	return TaskCompletionSource[T, E]{payload: a.payload}
}

// AbstractAsTask is UnsafeCast(a).AsTask() without the intermediate value,
// for call sites that only need the task handle.
func AbstractAsTask[T any, E error](a AbstractTaskCompletionSource) Task[T, E] {
	return Task[T, E]{payload: a.payload}
}

// CompleteAbstract settles an abstract completion source with a concrete
// Expected[T, E], recovering the type at the call site the same way
// UnsafeCast does.
func CompleteAbstract[T any, E error](a AbstractTaskCompletionSource, x Expected[T, E]) error {
	if err := a.payload.Complete(x); err != nil {
		return ErrCompletedTwice
	}
	return nil
}

// MakeTask creates a payload already submitted to scheduler: fn's first
// execution happens when scheduler runs the queued thunk. If cancel is
// already cancelled by the time the thunk runs, fn is never invoked and
// the task completes with a cancelled error instead.
func MakeTask[T any, E error](scheduler Scheduler, cancel Cancellation, fn func() Expected[T, E]) Task[T, E] {
	p := corepayload.New(nil)
	p.SetWork(func() {
		if cancel.Cancelled() {
			p.Complete(Err[T, E](CancelledAs[E]()))
			return
		}
		p.Complete(fn())
	})
	p.Submit(scheduler)
	return Task[T, E]{payload: p}
}

// TaskFromExpected returns an already-completed task.
func TaskFromExpected[T any, E error](x Expected[T, E]) Task[T, E] {
	p := corepayload.New(nil)
	_ = p.Complete(x)
	return Task[T, E]{payload: p}
}

// TaskFromResult returns an already-completed, successful task.
func TaskFromResult[E error, T any](v T) Task[T, E] {
	return TaskFromExpected[T, E](Ok[T, E](v))
}

// TaskFromError returns an already-completed, failed task.
func TaskFromError[T any, E error](err E) Task[T, E] {
	return TaskFromExpected[T, E](Err[T, E](err))
}

// TaskFromCode is TaskFromError specialized to the Code domain.
func TaskFromCode[T any](c Code) Task[T, Code] {
	return TaskFromError[T, Code](c)
}

// TaskFromException is TaskFromError specialized to the Exception domain.
func TaskFromException[T any](exc Exception) Task[T, Exception] {
	return TaskFromError[T, Exception](exc)
}
