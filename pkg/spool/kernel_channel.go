package spool

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/xid"

	"github.com/huynhanx03/go-spooler/pkg/mq/posixmq"
	"github.com/huynhanx03/go-spooler/pkg/pool/byteslice"
)

const (
	// DefaultMaxMessageSize is the kernel message size used when none is set.
	DefaultMaxMessageSize = 1024
	// DefaultPollInterval bounds a single kernel wait when ctx can be cancelled.
	DefaultPollInterval = 100 * time.Millisecond

	// All frames share one priority so the kernel's priority order is FIFO.
	messagePriority = 0
	queuePerm       = 0o600
	queueNamePrefix = "/spooler-"
)

// KernelOptions configures NewKernelChannel.
type KernelOptions struct {
	// Name of the queue, "/name". Empty picks "/spooler-<xid>".
	Name string
	// Capacity is the kernel's maximum message count.
	Capacity int
	// MaxMessageSize is the kernel's per-message limit and the largest frame
	// Put accepts. Zero selects DefaultMaxMessageSize.
	MaxMessageSize int
	// PollInterval is the longest single kernel wait while ctx can still be
	// cancelled. Zero selects DefaultPollInterval.
	PollInterval time.Duration
}

// KernelChannel is a Channel over a POSIX message queue. The kernel
// provides capacity, blocking and FIFO order; requests cross it as Codec
// frames.
//
// The channel creates the queue exclusively and unlinks it on Close. A Put
// or Take still blocked in the kernel when Close runs is a caller error;
// with a cancellable ctx it notices within one PollInterval.
type KernelChannel struct {
	mq       *posixmq.Queue
	codec    Codec
	frames   *byteslice.Pool
	capacity int
	poll     time.Duration

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// NewKernelChannel creates a fresh kernel queue. Failure to create it is a
// ResourceError.
func NewKernelChannel(opts KernelOptions) (*KernelChannel, error) {
	if opts.Capacity < 1 {
		return nil, errors.Wrapf(ErrInvalidCapacity, "got %d", opts.Capacity)
	}
	if opts.MaxMessageSize <= 0 {
		opts.MaxMessageSize = DefaultMaxMessageSize
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Name == "" {
		opts.Name = queueNamePrefix + xid.New().String()
	}

	mq, err := posixmq.Open(
		opts.Name,
		posixmq.ReadWrite|posixmq.Create|posixmq.Exclusive,
		queuePerm,
		&posixmq.Attr{MaxMsg: opts.Capacity, MsgSize: opts.MaxMessageSize},
	)
	if err != nil {
		return nil, errors.WithStack(&ResourceError{Op: "create queue " + opts.Name, Err: err})
	}

	return &KernelChannel{
		mq:       mq,
		codec:    Codec{MaxFrameSize: opts.MaxMessageSize},
		frames:   byteslice.New(opts.MaxMessageSize),
		capacity: opts.Capacity,
		poll:     opts.PollInterval,
	}, nil
}

// Put encodes req and sends it, blocking while the kernel queue is full.
func (c *KernelChannel) Put(ctx context.Context, req Request) error {
	buf := c.frames.Get()
	defer c.frames.Put(buf)

	frame, err := c.codec.AppendEncode(buf[:0], req)
	if err != nil {
		return err
	}

	err = c.wait(ctx, func(deadline time.Time) error {
		return c.mq.Send(frame, messagePriority, deadline)
	})
	return c.opError("send", err)
}

// Take receives the oldest frame and decodes it, blocking while the kernel
// queue is empty. A frame that does not decode is ErrMalformedFrame.
func (c *KernelChannel) Take(ctx context.Context) (Request, error) {
	buf := c.frames.Get()
	defer c.frames.Put(buf)

	var n int
	err := c.wait(ctx, func(deadline time.Time) error {
		var err error
		n, _, err = c.mq.Receive(buf, deadline)
		return err
	})
	if err != nil {
		return Request{}, c.opError("receive", err)
	}

	return c.codec.Decode(buf[:n])
}

func (c *KernelChannel) Cap() int { return c.capacity }

// Name returns the kernel queue name.
func (c *KernelChannel) Name() string { return c.mq.Name() }

// MaxMessageSize returns the largest frame the queue accepts.
func (c *KernelChannel) MaxMessageSize() int { return c.codec.MaxFrameSize }

// Attr returns the kernel's view of the queue, including the number of
// messages currently queued.
func (c *KernelChannel) Attr() (posixmq.Attr, error) {
	a, err := c.mq.Attr()
	if err != nil {
		return a, errors.WithStack(&ResourceError{Op: "getattr", Err: err})
	}
	return a, nil
}

// Close closes the descriptor and unlinks the queue name. It is idempotent.
func (c *KernelChannel) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		closeErr := c.mq.Close()
		unlinkErr := posixmq.Unlink(c.mq.Name())
		switch {
		case closeErr != nil:
			c.closeErr = errors.WithStack(&ResourceError{Op: "close", Err: closeErr})
		case unlinkErr != nil:
			c.closeErr = errors.WithStack(&ResourceError{Op: "unlink", Err: unlinkErr})
		}
	})
	return c.closeErr
}

// wait runs op until it stops timing out. A ctx without Done blocks in the
// kernel indefinitely; otherwise each call is bounded by the poll interval
// or the ctx deadline, whichever is sooner, and ctx is checked in between.
func (c *KernelChannel) wait(ctx context.Context, op func(deadline time.Time) error) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if ctx.Done() == nil {
		return op(time.Time{})
	}

	ctxDeadline, hasDeadline := ctx.Deadline()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if c.closed.Load() {
			return ErrClosed
		}

		deadline := time.Now().Add(c.poll)
		final := hasDeadline && !ctxDeadline.After(deadline)
		if final {
			deadline = ctxDeadline
		}

		err := op(deadline)
		if err != nil && c.closed.Load() {
			return ErrClosed
		}
		if !errors.Is(err, posixmq.ErrTimeout) {
			return err
		}
		if final {
			return context.DeadlineExceeded
		}
	}
}

func (c *KernelChannel) opError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrClosed),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return errors.Wrap(err, op)
	default:
		return errors.WithStack(&ResourceError{Op: op, Err: err})
	}
}
