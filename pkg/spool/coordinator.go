package spool

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/huynhanx03/go-spooler/pkg/timer"
)

// DefaultShutdownTimeout bounds the drain after the last client finished.
const DefaultShutdownTimeout = 30 * time.Second

// Coordinator runs Clients producers and Printers consumers around one
// Channel.
//
// Run returns once every producer has finished and every consumer has been
// stopped and joined. With Drain set, consumers are stopped only after all
// submitted requests were printed, ShutdownTimeout passed, or ctx ended.
// The channel is not closed; the caller closes it after Run returns.
type Coordinator struct {
	Channel  Channel
	Clients  int
	Printers int

	ProducerOptions []ProducerOption
	ConsumerOptions []ConsumerOption

	Drain           bool
	ShutdownTimeout time.Duration

	Timer  timer.Timer
	Logger *zap.Logger
}

// Summary reports what happened to the requests of one run.
type Summary struct {
	Submitted int
	Completed int
	Rejected  int
	// Pending requests were submitted but not printed when the printers
	// were stopped.
	Pending int
}

func (c *Coordinator) Run(ctx context.Context) (Summary, error) {
	if c.Clients < 1 || c.Printers < 1 {
		return Summary{}, errors.Wrapf(ErrInvalidActorCount, "clients=%d printers=%d", c.Clients, c.Printers)
	}
	if c.Channel == nil {
		return Summary{}, errors.New("spool: coordinator has no channel")
	}

	log := c.Logger
	if log == nil {
		log = zap.NewNop()
	}
	tm := c.Timer
	if tm == nil {
		tm = timer.System{}
	}
	timeout := c.ShutdownTimeout
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}

	ledger := NewLedger()

	consumerCtx, stopConsumers := context.WithCancel(ctx)
	defer stopConsumers()

	consumers, consumerCtx := errgroup.WithContext(consumerCtx)
	for i := 1; i <= c.Printers; i++ {
		opts := append([]ConsumerOption{
			WithConsumerTimer(tm),
			WithConsumerLogger(log),
		}, c.ConsumerOptions...)
		opts = append(opts, WithConsumerLedger(ledger))
		consumer := NewConsumer(int64(i), c.Channel, opts...)
		consumers.Go(func() error { return consumer.Run(consumerCtx) })
	}
	// consumersDone is closed when every printer has returned, for whatever
	// reason, so the drain below cannot wait on a queue nobody reads.
	consumersDone := make(chan struct{})
	var consumerErr error
	go func() {
		consumerErr = consumers.Wait()
		close(consumersDone)
	}()

	// Without printers nothing drains the channel; release blocked clients.
	producerCtx, stopProducers := context.WithCancel(ctx)
	defer stopProducers()
	go func() {
		select {
		case <-consumersDone:
			stopProducers()
		case <-producerCtx.Done():
		}
	}()

	var producers errgroup.Group
	for i := 1; i <= c.Clients; i++ {
		opts := append([]ProducerOption{
			WithProducerTimer(tm),
			WithProducerLogger(log),
		}, c.ProducerOptions...)
		opts = append(opts, WithProducerLedger(ledger))
		producer := NewProducer(int64(i), c.Channel, opts...)
		producers.Go(func() error { return producer.Run(producerCtx) })
	}
	producerErr := producers.Wait()
	log.Info("all print clients done", zap.Int("clients", c.Clients))

	if c.Drain {
		c.drain(ctx, ledger, consumersDone, timeout, log)
	}

	stopConsumers()
	<-consumersDone

	stats := ledger.Stats()
	summary := Summary{
		Submitted: stats.Submitted,
		Completed: stats.Completed,
		Rejected:  stats.Rejected,
		Pending:   stats.Submitted - stats.Completed,
	}
	log.Info("spooler stopped",
		zap.Int("submitted", summary.Submitted),
		zap.Int("completed", summary.Completed),
		zap.Int("rejected", summary.Rejected),
		zap.Int("pending", summary.Pending),
	)

	return summary, multierr.Combine(producerErr, consumerErr)
}

func (c *Coordinator) drain(
	ctx context.Context,
	ledger *Ledger,
	consumersDone <-chan struct{},
	timeout time.Duration,
	log *zap.Logger,
) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	select {
	case <-ledger.Idle():
		log.Debug("spool drained")
	case <-consumersDone:
		log.Warn("printers exited before the spool drained")
	case <-deadline.C:
		log.Warn("drain timed out", zap.Duration("timeout", timeout))
	case <-ctx.Done():
		log.Warn("drain interrupted", zap.Error(ctx.Err()))
	}
}
