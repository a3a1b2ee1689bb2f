// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package arcana_test

import (
	"testing"

	"code.hybscloud.com/arcana"
)

func TestExpectedValue(t *testing.T) {
	x := arcana.Ok[int, arcana.Code](42)
	if !x.HasValue() || x.HasError() {
		t.Fatalf("expected value state")
	}
	v, err := x.Value()
	if err != nil || v != 42 {
		t.Fatalf("Value() = %v, %v; want 42, nil", v, err)
	}
	if _, err := x.Error(); err != arcana.ErrBadAccess {
		t.Fatalf("Error() on value state = %v; want ErrBadAccess", err)
	}
}

func TestExpectedError(t *testing.T) {
	x := arcana.Err[int, arcana.Code](arcana.Code{Category: "test", Value: 7})
	if x.HasValue() || !x.HasError() {
		t.Fatalf("expected error state")
	}
	if _, err := x.Value(); err != arcana.ErrBadAccess {
		t.Fatalf("Value() on error state = %v; want ErrBadAccess", err)
	}
	e, err := x.Error()
	if err != nil || e.Value != 7 {
		t.Fatalf("Error() = %v, %v; want {test 7}, nil", e, err)
	}
}

func TestExpectedValueOr(t *testing.T) {
	ok := arcana.Ok[string, arcana.Code]("hi")
	if ok.ValueOr("default") != "hi" {
		t.Fatalf("ValueOr on value state should return the value")
	}
	bad := arcana.Err[string, arcana.Code](arcana.Code{})
	if bad.ValueOr("default") != "default" {
		t.Fatalf("ValueOr on error state should return the default")
	}
}

func TestExpectedToExceptionRoundTrip(t *testing.T) {
	code := arcana.Code{Category: "io", Value: 2}
	asCode := arcana.Err[int, arcana.Code](code)
	asExc := arcana.ExpectedToException(asCode)
	if !asExc.HasError() {
		t.Fatalf("expected error state after conversion")
	}
	exc, _ := asExc.Error()
	wrapped, ok := exc.Unwrap().(arcana.Code)
	if !ok || wrapped != code {
		t.Fatalf("Unwrap() = %#v; want original code %#v", wrapped, code)
	}
}

func TestExpectedToExceptionPassesValueThrough(t *testing.T) {
	x := arcana.Ok[int, arcana.Code](9)
	conv := arcana.ExpectedToException(x)
	v, err := conv.Value()
	if err != nil || v != 9 {
		t.Fatalf("Value() = %v, %v; want 9, nil", v, err)
	}
}
