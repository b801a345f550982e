package queue

import (
	"context"
	"sync"
)

var _ Queue[int] = (*Ring[int])(nil)

// Ring is a bounded blocking queue built as a monitor: a circular buffer of
// exactly capacity slots, one mutex, and two condition variables.
//
// Behavior:
//   - Put waits on notFull while every slot is occupied, then signals notEmpty.
//   - Take waits on notEmpty while no slot is occupied, then signals notFull.
//   - Predicates are re-checked in a loop, so spurious wakeups are harmless.
//   - Removal order equals insertion order.
type Ring[T any] struct {
	mu       sync.Mutex
	notFull  sync.Cond // slot became free
	notEmpty sync.Cond // slot became occupied

	slots  []T
	head   int // index of the oldest item
	count  int // occupied slots, 0 <= count <= len(slots)
	closed bool
}

// NewRing creates a monitor queue holding at most capacity items.
// Capacities below one are raised to one.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}

	r := &Ring[T]{slots: make([]T, capacity)}
	r.notFull.L = &r.mu
	r.notEmpty.L = &r.mu
	return r
}

// Put appends item, blocking while the ring is full.
func (r *Ring[T]) Put(ctx context.Context, item T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.full() && !r.closed {
		stop := r.wakeOnDone(ctx)
		defer stop()
	}

	for r.full() && !r.closed {
		if err := ctx.Err(); err != nil {
			// A Take may have signalled us; hand the free slot to the next waiter.
			if !r.full() {
				r.notFull.Signal()
			}
			return err
		}
		r.notFull.Wait()
	}
	if r.closed {
		return ErrClosed
	}

	r.slots[(r.head+r.count)%len(r.slots)] = item
	r.count++
	r.notEmpty.Signal()
	return nil
}

// Take removes and returns the oldest item, blocking while the ring is empty.
func (r *Ring[T]) Take(ctx context.Context) (T, error) {
	var zero T

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.count == 0 && !r.closed {
		stop := r.wakeOnDone(ctx)
		defer stop()
	}

	for r.count == 0 && !r.closed {
		if err := ctx.Err(); err != nil {
			if r.count > 0 {
				r.notEmpty.Signal()
			}
			return zero, err
		}
		r.notEmpty.Wait()
	}
	if r.count == 0 {
		return zero, ErrClosed
	}

	item := r.slots[r.head]
	r.slots[r.head] = zero
	r.head = (r.head + 1) % len(r.slots)
	r.count--
	r.notFull.Signal()
	return item, nil
}

// Len returns the number of occupied slots.
func (r *Ring[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Capacity returns the number of slots.
func (r *Ring[T]) Capacity() int { return len(r.slots) }

// Close marks the ring closed and wakes all waiters.
func (r *Ring[T]) Close() {
	r.mu.Lock()
	r.closed = true
	r.notFull.Broadcast()
	r.notEmpty.Broadcast()
	r.mu.Unlock()
}

func (r *Ring[T]) full() bool { return r.count == len(r.slots) }

// wakeOnDone broadcasts both conditions once ctx is done so that waiters
// can observe ctx.Err(). The broadcast takes the lock, which rules out a
// lost wakeup between the ctx check and Wait.
func (r *Ring[T]) wakeOnDone(ctx context.Context) func() bool {
	return context.AfterFunc(ctx, func() {
		r.mu.Lock()
		r.notFull.Broadcast()
		r.notEmpty.Broadcast()
		r.mu.Unlock()
	})
}
