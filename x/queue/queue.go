// Package queue provides the bounded one-way mailboxes the tasks talk over.
// Sends and receives never block: a full or closed queue rejects the send and
// an empty queue yields nothing, so a poll loop never stalls on a peer.
package queue

import "sync/atomic"

const defaultLen = 8

type Queue[T any] struct {
	ch     chan T
	closed atomic.Bool
	drops  atomic.Uint32
}

func New[T any](n int) *Queue[T] {
	if n <= 0 {
		n = defaultLen
	}
	return &Queue[T]{ch: make(chan T, n)}
}

// TrySend enqueues v and reports whether it was accepted.
func (q *Queue[T]) TrySend(v T) bool {
	if q.closed.Load() {
		q.drops.Add(1)
		return false
	}
	select {
	case q.ch <- v:
		return true
	default:
		q.drops.Add(1)
		return false
	}
}

// TryRecv returns the oldest queued value, if any.
func (q *Queue[T]) TryRecv() (T, bool) {
	select {
	case v := <-q.ch:
		return v, true
	default:
		var zero T
		return zero, false
	}
}

// Drain hands queued values to fn in FIFO order until the queue is empty or
// fn returns false. It returns the number of values consumed.
func (q *Queue[T]) Drain(fn func(T) bool) int {
	n := 0
	for {
		v, ok := q.TryRecv()
		if !ok {
			return n
		}
		n++
		if !fn(v) {
			return n
		}
	}
}

// Close marks the receiving side gone. Later sends are rejected; values
// already queued stay readable. The channel itself is never closed so racing
// senders cannot panic.
func (q *Queue[T]) Close() { q.closed.Store(true) }

func (q *Queue[T]) Closed() bool { return q.closed.Load() }

func (q *Queue[T]) Len() int { return len(q.ch) }

// Drops counts rejected sends (full or closed).
func (q *Queue[T]) Drops() uint32 { return q.drops.Load() }
