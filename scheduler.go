// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package arcana

import (
	"sync"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/lfq"
)

// Scheduler is the capability contract consumed by the task graph: any
// value that can be invoked with a nullary thunk, with exactly-once
// execution of each thunk it is handed.
type Scheduler func(thunk func())

// Inline immediately invokes the thunk on the caller. It is used for
// continuations that must observe results without a context hop:
// completion-source plumbing, state-machine wiring, when_all aggregation.
var Inline Scheduler = func(thunk func()) { thunk() }

// ManualScheduler queues thunks until Drain is called. FIFO order is
// preserved for thunks queued by the same goroutine, which is what the
// ordering tests of a single continuation chain rely on.
type ManualScheduler struct {
	mu sync.Mutex
	q  []func()
}

// Schedule queues thunk. Its method value satisfies Scheduler directly.
func (m *ManualScheduler) Schedule(thunk func()) {
	m.mu.Lock()
	m.q = append(m.q, thunk)
	m.mu.Unlock()
}

// Drain runs every queued thunk, including thunks newly queued by thunks
// already running, until the queue is empty.
func (m *ManualScheduler) Drain() {
	for {
		m.mu.Lock()
		if len(m.q) == 0 {
			m.mu.Unlock()
			return
		}
		thunk := m.q[0]
		m.q = m.q[1:]
		m.mu.Unlock()
		thunk()
	}
}

// Tick runs exactly one queued thunk and reports whether one was
// available to run.
func (m *ManualScheduler) Tick() bool {
	m.mu.Lock()
	if len(m.q) == 0 {
		m.mu.Unlock()
		return false
	}
	thunk := m.q[0]
	m.q = m.q[1:]
	m.mu.Unlock()
	thunk()
	return true
}

// Pending reports the number of thunks currently queued.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.q)
}

// backgroundQueueCapacity bounds the internal lfq.SPSC ring; 64 amortizes
// the producer-side cached-index refresh cost without keeping an
// unbounded amount of scheduled work resident.
const backgroundQueueCapacity = 64

// BackgroundScheduler runs queued thunks on an owned goroutine, backed by
// a bounded lock-free SPSC queue. lfq.SPSC enforces a single-producer
// contract; Schedule funnels arbitrarily many concurrent producer
// goroutines through submitMu down to that single-producer discipline
// before the single consumer goroutine (run) drains it.
type BackgroundScheduler struct {
	submitMu sync.Mutex
	q        lfq.SPSC[func()]
	cancel   *CancellationSource
	wg       sync.WaitGroup
}

// NewBackgroundScheduler starts the worker goroutine and returns the
// scheduler. Cancel must be called to stop it.
func NewBackgroundScheduler() *BackgroundScheduler {
	b := &BackgroundScheduler{cancel: NewCancellationSource()}
	b.q.Init(backgroundQueueCapacity)
	b.wg.Add(1)
	go b.run()
	return b
}

// Schedule enqueues thunk for the worker goroutine, retrying with
// adaptive backoff while the bounded queue is full.
func (b *BackgroundScheduler) Schedule(thunk func()) {
	b.submitMu.Lock()
	defer b.submitMu.Unlock()
	var bo iox.Backoff
	for {
		if err := b.q.Enqueue(&thunk); err == nil {
			return
		}
		bo.Wait()
	}
}

// run is the single consumer goroutine draining the SPSC queue.
func (b *BackgroundScheduler) run() {
	defer b.wg.Done()
	var bo iox.Backoff
	for {
		thunk, err := b.q.Dequeue()
		if err != nil {
			if b.cancel.Cancellation().Cancelled() {
				return
			}
			bo.Wait()
			continue
		}
		bo.Reset()
		thunk()
	}
}

// Cancel signals the worker goroutine to stop and waits for it to exit.
// The worker only checks for cancellation once the queue is empty, so
// thunks already enqueued are still run before it exits; thunks scheduled
// after it has exited are never run.
func (b *BackgroundScheduler) Cancel() {
	b.cancel.Cancel()
	b.wg.Wait()
}
