package framecall

import "sync"

// Queue is a FIFO of deferred work shared between producer goroutines and
// the single render goroutine that drains it.
//
// The implementation is a two-lock linked queue: the head mutex serializes
// consumers and the tail mutex serializes producers, so a producer appending
// mid-frame never contends with the render goroutine popping. The queue
// always holds one sentinel node; head == tail means empty.
//
// Concurrency model: one consumer (the render goroutine), any number of
// producers. It is not a general multi-consumer structure.
type Queue[T any] struct {
	headMu sync.Mutex
	tailMu sync.Mutex
	cond   *sync.Cond // waits on headMu, signalled by Push
	head   *qnode[T]
	tail   *qnode[T]
	closed bool // guarded by headMu
}

// qnode holds one payload and the link to the next node. The node at tail is
// the sentinel and carries no payload.
type qnode[T any] struct {
	data T
	next *qnode[T]
}

// NewQueue creates an empty queue.
func NewQueue[T any]() *Queue[T] {
	sentinel := &qnode[T]{}
	q := &Queue[T]{head: sentinel, tail: sentinel}
	q.cond = sync.NewCond(&q.headMu)
	return q
}

// Push appends v and wakes one waiter. It is O(1) and never blocks on the
// consumer side beyond the brief wakeup handshake.
func (q *Queue[T]) Push(v T) {
	n := &qnode[T]{}

	q.tailMu.Lock()
	q.tail.data = v
	q.tail.next = n
	q.tail = n
	q.tailMu.Unlock()

	// Signal under the head mutex so a waiter between its empty check and
	// cond.Wait cannot miss the wakeup.
	q.headMu.Lock()
	q.cond.Signal()
	q.headMu.Unlock()
}

// TryPop removes and returns the oldest item without blocking.
// Popping an empty queue is not an error; it reports ok=false.
func (q *Queue[T]) TryPop() (T, bool) {
	q.headMu.Lock()
	defer q.headMu.Unlock()
	return q.popLocked()
}

// WaitAndPop blocks the calling goroutine until an item is available or the
// queue is closed. It reports ok=false only when the queue is closed and
// fully drained. Must not be called from the render goroutine's frame drain,
// which may never block.
func (q *Queue[T]) WaitAndPop() (T, bool) {
	q.headMu.Lock()
	defer q.headMu.Unlock()
	for {
		if v, ok := q.popLocked(); ok {
			return v, true
		}
		if q.closed {
			var zero T
			return zero, false
		}
		q.cond.Wait()
	}
}

// Empty reports whether the queue held no items at the moment of the check.
// The snapshot may be stale the instant it returns; it is intended for
// pop-until-empty loops on the sole consumer.
func (q *Queue[T]) Empty() bool {
	q.headMu.Lock()
	defer q.headMu.Unlock()
	return q.head == q.getTail()
}

// Close releases any goroutines blocked in WaitAndPop. Items already queued
// remain poppable; Push after Close is still accepted (the producer cannot
// always observe shutdown first). Idempotent.
func (q *Queue[T]) Close() {
	q.headMu.Lock()
	q.closed = true
	q.cond.Broadcast()
	q.headMu.Unlock()
}

// popLocked removes the head node. Caller holds headMu.
//
// Lock order is head then tail (via getTail); Push never holds both, so the
// two ends cannot deadlock.
func (q *Queue[T]) popLocked() (T, bool) {
	var zero T
	if q.head == q.getTail() {
		return zero, false
	}
	n := q.head
	q.head = n.next
	v := n.data
	n.data = zero // release payload for GC
	n.next = nil
	return v, true
}

func (q *Queue[T]) getTail() *qnode[T] {
	q.tailMu.Lock()
	t := q.tail
	q.tailMu.Unlock()
	return t
}
