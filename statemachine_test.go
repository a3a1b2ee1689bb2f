// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package arcana_test

import (
	"testing"

	"code.hybscloud.com/arcana"
)

// TestStateMachineSchedule is end-to-end scenario 6: an initialization
// worker flips its payload true on the 4th entry to TrackingInit, and a
// tracking worker alternates TrackingRead/TrackingWrite over two
// iterations, folding a running Result the same way each rendezvous
// hands its payload back to the driver's caller.
func TestStateMachineSchedule(t *testing.T) {
	driver := arcana.NewStateMachineDriver()
	none := arcana.NoneCancellation()
	var d arcana.ManualScheduler

	initState := arcana.NewStateMachineState[bool]()
	readState := arcana.NewStateMachineState[int]()
	writeState := arcana.NewStateMachineState[int]()

	initCount := 0
	for i := 0; i < 4; i++ {
		arcana.On[bool, arcana.Void](driver, initState, d.Schedule, none, func(p *bool) arcana.Void {
			initCount++
			*p = initCount >= 4
			return arcana.Void{}
		})
		moveInit := arcana.MoveTo[bool](driver, initState, none)
		d.Drain()
		if !moveInit.Completed() {
			t.Fatalf("init rendezvous %d did not complete", i)
		}
	}
	if initCount != 4 {
		t.Fatalf("initCount = %d; want 4", initCount)
	}

	result := 0
	iterations := 0
	for i := 0; i < 2; i++ {
		arcana.On[int, int](driver, readState, d.Schedule, none, func(p *int) int {
			*p = result + 10
			return *p
		})
		moveRead := arcana.MoveTo[int](driver, readState, none)
		d.Drain()
		value, err := moveRead.UnsafeResult().Value()
		if err != nil {
			t.Fatalf("read rendezvous %d: %v", i, err)
		}
		result += value

		arcana.On[int, arcana.Void](driver, writeState, d.Schedule, none, func(p *int) arcana.Void {
			*p = result + 30
			return arcana.Void{}
		})
		moveWrite := arcana.MoveTo[int](driver, writeState, none)
		d.Drain()
		written, err := moveWrite.UnsafeResult().Value()
		if err != nil {
			t.Fatalf("write rendezvous %d: %v", i, err)
		}
		result = written
		iterations++
	}

	if iterations != 2 {
		t.Fatalf("iterations = %d; want 2", iterations)
	}
	if result != 120 {
		t.Fatalf("result = %d; want 120", result)
	}
}

// TestStateMachineCancelBeforeExitErasesRecord exercises the
// driver-side cancellation edge: cancelling before Exit produces a
// cancelled result and frees the record for a fresh MoveTo.
func TestStateMachineCancelBeforeExitErasesRecord(t *testing.T) {
	driver := arcana.NewStateMachineDriver()
	src := arcana.NewCancellationSource()
	state := arcana.NewStateMachineState[int]()

	move := arcana.MoveTo[int](driver, state, src.Cancellation())
	src.Cancel()

	if !move.Completed() {
		t.Fatalf("expected cancelled MoveTo task to complete")
	}
	_, err := move.UnsafeResult().Error()
	if err != nil {
		t.Fatalf("expected an error result, got none")
	}

	fresh := arcana.MoveTo[int](driver, state, arcana.NoneCancellation())
	if fresh.Completed() {
		t.Fatalf("MoveTo after cancellation reused the cancelled record")
	}
}
