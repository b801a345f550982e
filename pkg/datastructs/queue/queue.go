package queue

import (
	"context"
	"errors"
)

// ErrClosed is returned by Put on a closed queue and by Take once a closed
// queue has been drained.
var ErrClosed = errors.New("queue is closed")

// Queue is a generic interface for bounded, blocking FIFO queues.
//
// Implementations are safe for any number of concurrent producers and
// consumers. Waiting for space or for an item is not an error: both calls
// block until they can proceed, the queue is closed, or ctx is done.
type Queue[T any] interface {
	// Put appends item to the tail, blocking while the queue is full.
	// Returns ctx.Err() if ctx ends while waiting, ErrClosed after Close.
	Put(ctx context.Context, item T) error

	// Take removes and returns the head item, blocking while the queue is empty.
	// Items still queued at Close are handed out before ErrClosed is returned.
	Take(ctx context.Context) (T, error)

	// Len returns a snapshot of the number of queued items.
	Len() int

	// Capacity returns the fixed capacity of the queue.
	Capacity() int

	// Close wakes every blocked caller. It is idempotent.
	Close()
}
