// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package arcana

import "errors"

// ErrCancelled is the error observed by a continuation short-circuited by
// an attached cancellation, and by a state-machine wait whose side was
// cancelled before rendezvous completed.
var ErrCancelled = errors.New("arcana: cancelled")

// ErrBadAccess is returned by Value on an error Expected, and by Error on
// a value Expected.
var ErrBadAccess = errors.New("arcana: bad expected access")

// ErrCompletedTwice is a programmer error: a completion source's Complete
// family of methods was called more than once.
var ErrCompletedTwice = errors.New("arcana: completed twice")

// ErrWorkPending is a programmer error: On (through Enter) was called
// for a state that already has an outstanding, unfinished on-callback.
var ErrWorkPending = errors.New("arcana: work already pending for state")

// CodeCancelled is the Code value short-circuited continuations and
// state-machine waits observe when their error channel is Code.
var CodeCancelled = Code{Category: "arcana", Value: 1}

// CancelledAs builds a cancellation error in the caller's error domain E.
// The two blessed domains (Code, Exception) get a proper cancelled value;
// any other E falls back to ErrCancelled if it happens to be assignable,
// otherwise to E's zero value — Go has no generic way to manufacture an
// arbitrary error-implementing type from nothing, so a custom E must
// itself satisfy one of these two cases to observe a meaningful
// cancelled value.
func CancelledAs[E error]() E {
	var zero E
	switch any(zero).(type) {
	case Code:
		return any(CodeCancelled).(E)
	case Exception:
		return any(Exception{Wrapped: ErrCancelled}).(E)
	default:
		if v, ok := any(ErrCancelled).(E); ok {
			return v
		}
		return zero
	}
}
