package spool

import (
	"context"

	"github.com/pkg/errors"

	"github.com/huynhanx03/go-spooler/pkg/datastructs/queue"
	"github.com/huynhanx03/go-spooler/pkg/settings"
)

//go:generate mockgen -destination mock_channel_test.go -package spool -write_package_comment=false github.com/huynhanx03/go-spooler/pkg/spool Channel

// Channel is a fixed-capacity FIFO of print requests shared by every print
// client and printer.
//
// Put and Take are mutually exclusive with each other and with themselves.
// A full or empty channel is a wait, not an error. ctx bounds the wait: when
// it ends first the call returns an error matching ctx.Err() and the channel
// is unchanged.
//
// Close destroys the channel. The caller must only call it once every actor
// holding the channel has stopped using it.
type Channel interface {
	// Put appends req, blocking while the channel is full.
	Put(ctx context.Context, req Request) error

	// Take removes and returns the oldest request, blocking while the
	// channel is empty.
	Take(ctx context.Context) (Request, error)

	// Cap returns the capacity fixed at creation.
	Cap() int

	Close() error
}

var (
	_ Channel = (*QueueChannel)(nil)
	_ Channel = (*KernelChannel)(nil)
)

// QueueChannel is an in-process Channel over a blocking queue.
type QueueChannel struct {
	q queue.Queue[Request]
}

// NewMemoryChannel creates a Channel backed by a monitor ring buffer: one
// mutex guarding head and count, and "slot freed" / "slot occupied"
// conditions.
func NewMemoryChannel(capacity int) (*QueueChannel, error) {
	if capacity < 1 {
		return nil, errors.Wrapf(ErrInvalidCapacity, "got %d", capacity)
	}
	return &QueueChannel{q: queue.NewRing[Request](capacity)}, nil
}

// NewChanChannel creates a Channel backed by a buffered Go channel.
func NewChanChannel(capacity int) (*QueueChannel, error) {
	if capacity < 1 {
		return nil, errors.Wrapf(ErrInvalidCapacity, "got %d", capacity)
	}
	return &QueueChannel{q: queue.NewChan[Request](capacity)}, nil
}

func (c *QueueChannel) Put(ctx context.Context, req Request) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return translate(c.q.Put(ctx, req), "put")
}

func (c *QueueChannel) Take(ctx context.Context) (Request, error) {
	req, err := c.q.Take(ctx)
	return req, translate(err, "take")
}

func (c *QueueChannel) Cap() int { return c.q.Capacity() }

// Len returns the number of queued requests.
func (c *QueueChannel) Len() int { return c.q.Len() }

// Close wakes blocked callers: Put fails with ErrClosed, Take hands out
// what is left and then fails with ErrClosed.
func (c *QueueChannel) Close() error {
	c.q.Close()
	return nil
}

func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, queue.ErrClosed):
		return ErrClosed
	default:
		return errors.Wrap(err, op)
	}
}

// Open creates the Channel selected by cfg.Backend.
func Open(cfg settings.Spooler) (Channel, error) {
	switch cfg.Backend {
	case settings.BackendMemory, "":
		ch, err := NewMemoryChannel(cfg.Capacity)
		if err != nil {
			return nil, err
		}
		return ch, nil
	case settings.BackendChan:
		ch, err := NewChanChannel(cfg.Capacity)
		if err != nil {
			return nil, err
		}
		return ch, nil
	case settings.BackendMQueue:
		ch, err := NewKernelChannel(KernelOptions{
			Name:           cfg.MQueue.Name,
			Capacity:       cfg.Capacity,
			MaxMessageSize: cfg.MQueue.MaxMessageSize,
			PollInterval:   cfg.MQueue.PollInterval,
		})
		if err != nil {
			return nil, err
		}
		return ch, nil
	default:
		return nil, errors.Errorf("spool: unknown backend %q", cfg.Backend)
	}
}
