package spool

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/huynhanx03/go-spooler/pkg/timer"
)

// DefaultUnitsPerSecond is the print speed in characters per second.
const DefaultUnitsPerSecond = 8000

// Consumer is a printer: it takes requests one at a time and spends time
// proportional to their size printing them.
type Consumer struct {
	id             int64
	ch             Channel
	unitsPerSecond int

	timer  timer.Timer
	log    *zap.Logger
	ledger *Ledger
}

// ConsumerOption configures a Consumer.
type ConsumerOption func(*Consumer)

// WithUnitsPerSecond sets the print speed. A request of size s takes
// s/n whole seconds.
func WithUnitsPerSecond(n int) ConsumerOption {
	return func(c *Consumer) { c.unitsPerSecond = n }
}

func WithConsumerTimer(t timer.Timer) ConsumerOption {
	return func(c *Consumer) { c.timer = t }
}

func WithConsumerLogger(l *zap.Logger) ConsumerOption {
	return func(c *Consumer) { c.log = l }
}

func WithConsumerLedger(l *Ledger) ConsumerOption {
	return func(c *Consumer) { c.ledger = l }
}

// NewConsumer creates printer id. The channel must outlive Run.
func NewConsumer(id int64, ch Channel, opts ...ConsumerOption) *Consumer {
	c := &Consumer{
		id:             id,
		ch:             ch,
		unitsPerSecond: DefaultUnitsPerSecond,
		timer:          timer.System{},
		log:            zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.unitsPerSecond < 1 {
		c.unitsPerSecond = DefaultUnitsPerSecond
	}
	c.log = c.log.With(zap.Int64("printer_id", c.id))
	return c
}

// ID returns the printer identity.
func (c *Consumer) ID() int64 { return c.id }

// Run prints requests until ctx is cancelled or the channel is closed, and
// then returns nil. Resource and malformed-frame failures end the printer
// with an error.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		req, err := c.ch.Take(ctx)
		switch {
		case err == nil:
		case ctx.Err() != nil:
			c.log.Debug("printer stopped")
			return nil
		case errors.Is(err, ErrClosed):
			c.log.Debug("printer stopped, channel closed")
			return nil
		default:
			c.log.Error("take print job", zap.Error(err))
			return errors.Wrapf(err, "printer %d: take", c.id)
		}

		if err := c.print(ctx, req); err != nil {
			// Cancelled mid-job; the request stays in flight.
			c.log.Warn("print job interrupted", zap.String("file", req.Label))
			return nil
		}
		c.ledger.Completed()
	}
}

func (c *Consumer) print(ctx context.Context, req Request) error {
	log := c.log.With(
		zap.Int64("client_id", req.OriginID),
		zap.String("file", req.Label),
		zap.Int("size", req.SizeUnits),
	)

	log.Info("print job started")
	d := time.Duration(req.SizeUnits/c.unitsPerSecond) * time.Second
	if err := c.timer.Sleep(ctx, d); err != nil {
		return err
	}
	log.Info("print job complete")
	return nil
}
