// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package arcana_test

import (
	"testing"

	"code.hybscloud.com/arcana"
)

type routerEventOne struct{}
type routerEventTwo struct{}

// TestRouterReentrantRegistrationDuringFire is end-to-end scenario 7: a
// listener for one event type registers and fires a listener for a
// second event type from within its own callback. The newly-installed
// listener must see that nested Fire, and the outer Fire's own snapshot
// must not be disturbed by the registration happening underneath it.
func TestRouterReentrantRegistrationDuringFire(t *testing.T) {
	r := arcana.NewRouter()
	received := 0

	arcana.AddListener[routerEventOne](r, func(routerEventOne) {
		received++
		arcana.AddListener[routerEventTwo](r, func(routerEventTwo) {
			received *= 2
		})
		arcana.Fire[routerEventTwo](r, routerEventTwo{})
	})

	arcana.Fire[routerEventOne](r, routerEventOne{})

	if received != 2 {
		t.Fatalf("received = %d; want 2", received)
	}
}

func TestRouterMultipleListenersInsertionOrder(t *testing.T) {
	r := arcana.NewRouter()
	var order []int

	arcana.AddListener[routerEventOne](r, func(routerEventOne) { order = append(order, 1) })
	arcana.AddListener[routerEventOne](r, func(routerEventOne) { order = append(order, 2) })
	arcana.AddListener[routerEventOne](r, func(routerEventOne) { order = append(order, 3) })

	arcana.Fire[routerEventOne](r, routerEventOne{})

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Fatalf("order = %v; want [1 2 3]", order)
	}
}

func TestRouterReleasedListenerDoesNotFire(t *testing.T) {
	r := arcana.NewRouter()
	count := 0

	ticket := arcana.AddListener[routerEventOne](r, func(routerEventOne) { count++ })
	ticket.Release()

	arcana.Fire[routerEventOne](r, routerEventOne{})

	if count != 0 {
		t.Fatalf("count = %d; want 0 after release", count)
	}
}

// affinityDispatcher is a Dispatcher stub that queues thunks on a
// ManualScheduler and reports a fixed affinity answer.
type affinityDispatcher struct {
	scheduler *arcana.ManualScheduler
	allow     bool
}

func (d *affinityDispatcher) Schedule(thunk func()) { d.scheduler.Schedule(thunk) }
func (d *affinityDispatcher) CheckAffinity() bool   { return d.allow }

func TestMediatorSendDispatchesThroughScheduler(t *testing.T) {
	var sched arcana.ManualScheduler
	d := &affinityDispatcher{scheduler: &sched, allow: true}
	m := arcana.NewMediator(d)

	received := 0
	arcana.MediatorAddListener[routerEventOne](m, func(routerEventOne) { received++ })
	arcana.MediatorSend[routerEventOne](m, routerEventOne{})

	if received != 0 {
		t.Fatalf("received = %d before drain; want 0", received)
	}
	sched.Drain()
	if received != 1 {
		t.Fatalf("received = %d after drain; want 1", received)
	}
}

func TestMediatorAddListenerPanicsOffAffinity(t *testing.T) {
	var sched arcana.ManualScheduler
	d := &affinityDispatcher{scheduler: &sched, allow: false}
	m := arcana.NewMediator(d)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic when adding a listener off the dispatcher's affinity")
		}
	}()
	arcana.MediatorAddListener[routerEventOne](m, func(routerEventOne) {})
}
