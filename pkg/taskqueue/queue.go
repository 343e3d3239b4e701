package taskqueue

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Put and Get once the queue has been closed
var ErrClosed = errors.New("task queue closed")

// Queue is a concurrency-safe FIFO with a count of unfinished tasks
type Queue[T any] struct {
	mu         sync.Mutex
	notEmpty   *sync.Cond
	allDone    *sync.Cond
	items      []T
	unfinished int
	closed     bool
}

// New creates an empty queue
func New[T any]() *Queue[T] {
	q := &Queue[T]{}
	q.notEmpty = sync.NewCond(&q.mu)
	q.allDone = sync.NewCond(&q.mu)
	return q
}

// Put appends a task to the back of the queue. It never blocks.
func (q *Queue[T]) Put(task T) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}
	q.items = append(q.items, task)
	q.unfinished++
	q.notEmpty.Signal()
	return nil
}

// Get removes and returns the front task, blocking until one is available.
// It returns ctx.Err() once ctx is cancelled, even with tasks pending, and
// ErrClosed once the queue is closed and empty.
func (q *Queue[T]) Get(ctx context.Context) (T, error) {
	var zero T

	// wake this waiter on cancellation; the broadcast takes the lock so it
	// cannot fire between the ctx check and Wait below
	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		q.notEmpty.Broadcast()
	})
	defer stop()

	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		if len(q.items) > 0 {
			break
		}
		if q.closed {
			return zero, ErrClosed
		}
		q.notEmpty.Wait()
	}

	task := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	return task, nil
}

// Done marks one previously dequeued task as complete. It panics if called
// more times than tasks were put.
func (q *Queue[T]) Done() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.unfinished <= 0 {
		panic("taskqueue: Done called more times than tasks were put")
	}
	q.unfinished--
	if q.unfinished == 0 {
		q.allDone.Broadcast()
	}
}

// Join blocks until every task put so far has been marked done
func (q *Queue[T]) Join(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		q.allDone.Broadcast()
	})
	defer stop()

	q.mu.Lock()
	defer q.mu.Unlock()

	for q.unfinished > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		q.allDone.Wait()
	}
	return nil
}

// Close rejects further puts and releases every blocked Get once the
// remaining tasks have been taken
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.notEmpty.Broadcast()
}

// Len returns the number of tasks waiting to be dequeued
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Unfinished returns the number of tasks put but not yet marked done
func (q *Queue[T]) Unfinished() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.unfinished
}
