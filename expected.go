// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package arcana

import (
	"fmt"

	"code.hybscloud.com/kont"
)

// Code is the lightweight first-class error domain: a category plus an
// integer, analogous to a std::error_code.
type Code struct {
	Category string
	Value    int
}

func (c Code) Error() string {
	return fmt.Sprintf("%s: %d", c.Category, c.Value)
}

// Exception is the second first-class error domain: a dynamically typed,
// rethrowable capsule. Wrapped holds the original error (possibly a Code,
// via UpgradeToException, or any user error).
type Exception struct {
	Wrapped error
}

func (e Exception) Error() string {
	if e.Wrapped == nil {
		return "arcana: exception"
	}
	return e.Wrapped.Error()
}

func (e Exception) Unwrap() error {
	return e.Wrapped
}

// errorPriority orders the two first-class error domains: code < exception.
// A continuation parent's error type must be <= the child's; the only
// automatic upgrade is Code -> Exception.
func errorPriority(e any) int {
	switch e.(type) {
	case Code:
		return 0
	case Exception:
		return 1
	default:
		return 0
	}
}

// UpgradeToException wraps a Code into an Exception, the one automatic
// error-channel upgrade the contract allows. Any other E is wrapped
// verbatim; a live Exception wrapping an Exception is flattened.
func UpgradeToException[E error](e E) Exception {
	var a any = e
	if exc, ok := a.(Exception); ok {
		return exc
	}
	return Exception{Wrapped: e}
}

// Void is the unit placeholder used where the original distinguishes a
// void specialization of Expected.
type Void struct{}

// Expected is a sum of a value T or an error E. It is represented directly
// by kont.Either[E, T]: Left carries the error, Right carries the value,
// mirroring the session package's own Left=error/Right=value convention.
type Expected[T any, E error] struct {
	either kont.Either[E, T]
}

// Ok builds a value-holding Expected.
func Ok[T any, E error](v T) Expected[T, E] {
	return Expected[T, E]{either: kont.Right[E, T](v)}
}

// Err builds an error-holding Expected.
func Err[T any, E error](err E) Expected[T, E] {
	return Expected[T, E]{either: kont.Left[E, T](err)}
}

// MakeValid returns the void-specialization analogue: a successful
// Expected[Void, E].
func MakeValid[E error]() Expected[Void, E] {
	return Ok[Void, E](Void{})
}

// HasValue reports whether this Expected holds a value.
func (x Expected[T, E]) HasValue() bool {
	return x.either.IsRight()
}

// HasError reports whether this Expected holds an error.
func (x Expected[T, E]) HasError() bool {
	return x.either.IsLeft()
}

// Value returns the held value, or fails with ErrBadAccess in error state.
func (x Expected[T, E]) Value() (T, error) {
	v, ok := x.either.GetRight()
	if !ok {
		var zero T
		return zero, ErrBadAccess
	}
	return v, nil
}

// Error returns the held error, or fails with ErrBadAccess in value state.
func (x Expected[T, E]) Error() (E, error) {
	e, ok := x.either.GetLeft()
	if !ok {
		var zero E
		return zero, ErrBadAccess
	}
	return e, nil
}

// ValueOr returns the held value, or def if this Expected holds an error.
func (x Expected[T, E]) ValueOr(def T) T {
	if v, ok := x.either.GetRight(); ok {
		return v
	}
	return def
}

// ExpectedToException converts Expected[T, Code] to Expected[T, Exception],
// wrapping the code into an exception capsule per the code<exception
// ordering. A value-holding Expected is passed through unchanged.
func ExpectedToException[T any](x Expected[T, Code]) Expected[T, Exception] {
	if v, ok := x.either.GetRight(); ok {
		return Ok[T, Exception](v)
	}
	c, _ := x.either.GetLeft()
	return Err[T, Exception](UpgradeToException(c))
}
