// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package arcana

import (
	"sync"

	"code.hybscloud.com/arcana/internal/corepayload"
)

// WhenAll aggregates a homogeneous span of tasks into one task that
// completes when every input completes. On success the result is the
// collected values in input order; on the first observed error, the
// aggregate remembers it (other results are discarded) but still waits
// for every input to finish. The empty case completes synchronously with
// an empty slice.
func WhenAll[T any, E error](tasks []Task[T, E]) Task[[]T, E] {
	agg := corepayload.New(nil)
	if len(tasks) == 0 {
		_ = agg.Complete(Ok[[]T, E]([]T{}))
		return Task[[]T, E]{payload: agg}
	}

	results := make([]T, len(tasks))
	var mu sync.Mutex
	remaining := len(tasks)
	var firstErr E
	hasErr := false

	for i, t := range tasks {
		i := i
		sink := corepayload.New(nil)
		run := func(parentResult any) {
			pe := parentResult.(Expected[T, E])
			mu.Lock()
			if pe.HasError() {
				if !hasErr {
					firstErr, _ = pe.Error()
					hasErr = true
				}
			} else {
				v, _ := pe.Value()
				results[i] = v
			}
			remaining--
			done := remaining == 0
			mu.Unlock()
			if done {
				if hasErr {
					_ = agg.Complete(Err[[]T, E](firstErr))
				} else {
					_ = agg.Complete(Ok[[]T, E](results))
				}
			}
		}
		corepayload.Attach(t.payload, sink, run, func(thunk func()) { thunk() })
	}
	return Task[[]T, E]{payload: agg}
}

// Pair2 is the fixed-arity tuple result of WhenAll2.
type Pair2[A, B any] struct {
	A A
	B B
}

// Pair3 is the fixed-arity tuple result of WhenAll3.
type Pair3[A, B, C any] struct {
	A A
	B B
	C C
}

// Pair4 is the fixed-arity tuple result of WhenAll4.
type Pair4[A, B, C, D any] struct {
	A A
	B B
	C C
	D D
}

// WhenAll2 supplements the original's variadic-tuple when_all overload,
// which Go cannot express generically (no variadic generics): a fixed
// two-slot heterogeneous aggregate, built the same way WhenAll aggregates
// its homogeneous span.
func WhenAll2[A, B any, E error](ta Task[A, E], tb Task[B, E]) Task[Pair2[A, B], E] {
	agg := corepayload.New(nil)
	var mu sync.Mutex
	remaining := 2
	var firstErr E
	hasErr := false
	var result Pair2[A, B]

	settle := func() {
		if hasErr {
			_ = agg.Complete(Err[Pair2[A, B], E](firstErr))
		} else {
			_ = agg.Complete(Ok[Pair2[A, B], E](result))
		}
	}
	observe := func(isErr bool, err E, assign func()) {
		mu.Lock()
		if isErr {
			if !hasErr {
				firstErr = err
				hasErr = true
			}
		} else {
			assign()
		}
		remaining--
		done := remaining == 0
		mu.Unlock()
		if done {
			settle()
		}
	}

	corepayload.Attach(ta.payload, corepayload.New(nil), func(pr any) {
		pe := pr.(Expected[A, E])
		if pe.HasError() {
			e, _ := pe.Error()
			observe(true, e, nil)
		} else {
			v, _ := pe.Value()
			observe(false, firstErr, func() { result.A = v })
		}
	}, func(thunk func()) { thunk() })
	corepayload.Attach(tb.payload, corepayload.New(nil), func(pr any) {
		pe := pr.(Expected[B, E])
		if pe.HasError() {
			e, _ := pe.Error()
			observe(true, e, nil)
		} else {
			v, _ := pe.Value()
			observe(false, firstErr, func() { result.B = v })
		}
	}, func(thunk func()) { thunk() })

	return Task[Pair2[A, B], E]{payload: agg}
}

// WhenAll3 is WhenAll2 extended to three inputs.
func WhenAll3[A, B, C any, E error](ta Task[A, E], tb Task[B, E], tc Task[C, E]) Task[Pair3[A, B, C], E] {
	type abResult = Pair2[A, B]
	ab := WhenAll2[A, B, E](ta, tb)
	return ThenTask[abResult, Pair3[A, B, C], E](ab, Inline, NoneCancellation(), func(p abResult) Task[Pair3[A, B, C], E] {
		return Then[C, Pair3[A, B, C], E](tc, Inline, NoneCancellation(), func(c C) Expected[Pair3[A, B, C], E] {
			return Ok[Pair3[A, B, C], E](Pair3[A, B, C]{A: p.A, B: p.B, C: c})
		})
	})
}

// WhenAll4 is WhenAll2 extended to four inputs.
func WhenAll4[A, B, C, D any, E error](ta Task[A, E], tb Task[B, E], tc Task[C, E], td Task[D, E]) Task[Pair4[A, B, C, D], E] {
	type abcResult = Pair3[A, B, C]
	abc := WhenAll3[A, B, C, E](ta, tb, tc)
	return ThenTask[abcResult, Pair4[A, B, C, D], E](abc, Inline, NoneCancellation(), func(p abcResult) Task[Pair4[A, B, C, D], E] {
		return Then[D, Pair4[A, B, C, D], E](td, Inline, NoneCancellation(), func(d D) Expected[Pair4[A, B, C, D], E] {
			return Ok[Pair4[A, B, C, D], E](Pair4[A, B, C, D]{A: p.A, B: p.B, C: p.C, D: d})
		})
	})
}
