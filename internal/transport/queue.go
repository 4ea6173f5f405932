package transport

import (
	"sync/atomic"

	"github.com/cockroachdb/errors"
)

// ErrQueueClosed is returned by Enqueue after BroadcastAbort or Close has
// been called.
var ErrQueueClosed = errors.New("transport: queue closed")

// Queue is the single-producer/multi-consumer request-queue transport of
// spec.md §4.2, grounded on kgo's broker.reqs channel plus its
// stopForever drain-then-close sequence (pkg/kgo/broker.go).
//
// Enqueue is safe for one producer (the client-session event-dispatch
// task); Receive is safe for any number of consumers (workers). Abort is
// a distinct channel so a worker blocked in Receive can still observe a
// shutdown signal without racing the work channel's ordering guarantees.
type Queue struct {
	work  chan Envelope
	abort chan Envelope
	dead  int32
}

// NewQueue returns a Queue with the given work-channel capacity. Capacity
// bounds only buffering; spec.md §4.2 states enqueue blocks only on hard
// memory limits, which this channel capacity approximates.
func NewQueue(capacity int) *Queue {
	return &Queue{
		work:  make(chan Envelope, capacity),
		abort: make(chan Envelope, capacity),
	}
}

// Enqueue submits env for processing by exactly one consumer. It blocks
// if the channel is at capacity. Returns ErrQueueClosed if BroadcastAbort
// or Close was already called.
func (q *Queue) Enqueue(env Envelope) error {
	if atomic.LoadInt32(&q.dead) == 1 {
		return ErrQueueClosed
	}
	q.work <- env
	return nil
}

// Receive returns the work channel for consumers to range/select over.
func (q *Queue) Receive() <-chan Envelope {
	return q.work
}

// AbortChan returns the out-of-band channel ABORT envelopes are delivered
// on; a worker observing a value here must exit its run loop.
func (q *Queue) AbortChan() <-chan Envelope {
	return q.abort
}

// BroadcastAbort enqueues exactly one ABORT envelope per worker, per
// spec.md §4.7's shutdown requirement ("enqueue exactly as many ABORTs as
// there are workers, then join").
func (q *Queue) BroadcastAbort(workerCount int) {
	atomic.StoreInt32(&q.dead, 1)
	for i := 0; i < workerCount; i++ {
		q.abort <- AbortEnvelope()
	}
}

// Close releases the queue's channels. Callers must have already joined
// every worker (via BroadcastAbort) before calling Close.
func (q *Queue) Close() {
	atomic.StoreInt32(&q.dead, 1)
	close(q.work)
	close(q.abort)
}
