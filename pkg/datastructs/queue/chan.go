package queue

import (
	"context"
	"sync"
)

var _ Queue[int] = (*Chan[int])(nil)

// Chan is a bounded blocking queue backed by a buffered Go channel.
// The runtime provides exclusion, blocking and FIFO order.
type Chan[T any] struct {
	items chan T
	done  chan struct{}
	once  sync.Once
}

// NewChan creates a channel queue holding at most capacity items.
// Capacities below one are raised to one.
func NewChan[T any](capacity int) *Chan[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Chan[T]{
		items: make(chan T, capacity),
		done:  make(chan struct{}),
	}
}

// Put appends item, blocking while the channel buffer is full.
func (c *Chan[T]) Put(ctx context.Context, item T) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	select {
	case c.items <- item:
		return nil
	case <-c.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Take removes and returns the oldest item, blocking while none is buffered.
func (c *Chan[T]) Take(ctx context.Context) (T, error) {
	var zero T

	select {
	case item := <-c.items:
		return item, nil
	default:
	}

	select {
	case item := <-c.items:
		return item, nil
	case <-c.done:
		// Drain what was queued before Close.
		select {
		case item := <-c.items:
			return item, nil
		default:
			return zero, ErrClosed
		}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Len returns the number of buffered items.
func (c *Chan[T]) Len() int { return len(c.items) }

// Capacity returns the channel buffer size.
func (c *Chan[T]) Capacity() int { return cap(c.items) }

// Close wakes all waiters. The items channel itself is never closed so a
// racing Put cannot panic.
func (c *Chan[T]) Close() {
	c.once.Do(func() { close(c.done) })
}
