// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package arcana_test

import (
	"sync"
	"testing"

	"code.hybscloud.com/arcana"
)

func TestTicketedCollectionInsertSnapshotRelease(t *testing.T) {
	var mu sync.Mutex
	var coll arcana.TicketedCollection[int]

	mu.Lock()
	t1 := coll.Insert(&mu, 1)
	t2 := coll.Insert(&mu, 2)
	t3 := coll.Insert(&mu, 3)
	snap := coll.Snapshot()
	mu.Unlock()

	if len(snap) != 3 || snap[0] != 1 || snap[1] != 2 || snap[2] != 3 {
		t.Fatalf("snapshot = %v; want [1 2 3]", snap)
	}

	t2.Release()
	mu.Lock()
	snap = coll.Snapshot()
	mu.Unlock()
	if len(snap) != 2 || snap[0] != 1 || snap[1] != 3 {
		t.Fatalf("snapshot after release = %v; want [1 3]", snap)
	}

	t1.Release()
	t3.Release()
	mu.Lock()
	if coll.Len() != 0 {
		t.Fatalf("Len() = %d; want 0", coll.Len())
	}
	mu.Unlock()

	t1.Release() // idempotent
}

func TestTicketedCollectionSnapshotReverse(t *testing.T) {
	var mu sync.Mutex
	var coll arcana.TicketedCollection[int]

	mu.Lock()
	coll.Insert(&mu, 1)
	coll.Insert(&mu, 2)
	coll.Insert(&mu, 3)
	rev := coll.SnapshotReverse()
	mu.Unlock()

	if len(rev) != 3 || rev[0] != 3 || rev[1] != 2 || rev[2] != 1 {
		t.Fatalf("SnapshotReverse() = %v; want [3 2 1]", rev)
	}
}

func TestTicketScopeReleasesInReverseOrder(t *testing.T) {
	var scope arcana.TicketScope
	var order []int

	for i := 1; i <= 3; i++ {
		i := i
		scope.Add(recordingTicket{release: func() { order = append(order, i) }})
	}
	scope.Release()

	if len(order) != 3 || order[0] != 3 || order[1] != 2 || order[2] != 1 {
		t.Fatalf("release order = %v; want [3 2 1]", order)
	}

	// A second Release on an emptied scope must be a no-op, not a panic.
	scope.Release()
	if len(order) != 3 {
		t.Fatalf("release order after second Release = %v; want unchanged", order)
	}
}

type recordingTicket struct {
	release func()
}

func (r recordingTicket) Release() { r.release() }
