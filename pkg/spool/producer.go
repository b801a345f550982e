package spool

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	pkgRuntime "github.com/huynhanx03/go-spooler/pkg/runtime"
	"github.com/huynhanx03/go-spooler/pkg/timer"
)

const (
	DefaultRequestsPerClient = 6
	DefaultMinPace           = time.Second
	DefaultMaxPace           = 3 * time.Second
)

// Producer is a print client: it submits a fixed number of requests,
// pausing a random time between them.
type Producer struct {
	id       int64
	ch       Channel
	requests int
	workload Workload
	minPace  time.Duration
	maxPace  time.Duration

	timer  timer.Timer
	log    *zap.Logger
	ledger *Ledger
}

// ProducerOption configures a Producer.
type ProducerOption func(*Producer)

// WithRequests sets how many requests the producer submits.
func WithRequests(n int) ProducerOption {
	return func(p *Producer) { p.requests = n }
}

// WithWorkload sets the request generator.
func WithWorkload(w Workload) ProducerOption {
	return func(p *Producer) { p.workload = w }
}

// WithPace sets the range of the pause between two submissions.
func WithPace(lo, hi time.Duration) ProducerOption {
	return func(p *Producer) { p.minPace, p.maxPace = lo, hi }
}

func WithProducerTimer(t timer.Timer) ProducerOption {
	return func(p *Producer) { p.timer = t }
}

func WithProducerLogger(l *zap.Logger) ProducerOption {
	return func(p *Producer) { p.log = l }
}

func WithProducerLedger(l *Ledger) ProducerOption {
	return func(p *Producer) { p.ledger = l }
}

// NewProducer creates print client id. The channel must outlive Run.
func NewProducer(id int64, ch Channel, opts ...ProducerOption) *Producer {
	p := &Producer{
		id:       id,
		ch:       ch,
		requests: DefaultRequestsPerClient,
		workload: DefaultWorkload(),
		minPace:  DefaultMinPace,
		maxPace:  DefaultMaxPace,
		timer:    timer.System{},
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.With(zap.Int64("client_id", p.id))
	return p
}

// ID returns the client identity.
func (p *Producer) ID() int64 { return p.id }

// Run submits every request and returns. Cancelling ctx stops it early
// without error. A failed Put ends the producer with that error; it is not
// retried.
func (p *Producer) Run(ctx context.Context) error {
	for seq := 0; seq < p.requests; seq++ {
		req := p.workload.Next(p.id, seq)

		p.ledger.Submitting()
		if err := p.ch.Put(ctx, req); err != nil {
			p.ledger.Rejected()
			if ctx.Err() != nil {
				p.log.Debug("print client cancelled", zap.Int("submitted", seq))
				return nil
			}
			p.log.Error("submit print job", zap.String("file", req.Label), zap.Error(err))
			return errors.Wrapf(err, "client %d: submit %s", p.id, req.Label)
		}
		p.ledger.Submitted()

		p.log.Info("print job submitted",
			zap.String("file", req.Label),
			zap.Int("size", req.SizeUnits),
		)

		if seq == p.requests-1 {
			break
		}
		if err := p.timer.Sleep(ctx, p.pace()); err != nil {
			p.log.Debug("print client cancelled", zap.Int("submitted", seq+1))
			return nil
		}
	}

	p.log.Info("print client done", zap.Int("submitted", p.requests))
	return nil
}

// pace draws a pause in [minPace, maxPace] with microsecond resolution.
func (p *Producer) pace() time.Duration {
	lo := int(p.minPace / time.Microsecond)
	hi := int(p.maxPace / time.Microsecond)
	next := p.workload.Rand
	if next == nil {
		next = pkgRuntime.Uint32n
	}
	return time.Duration(pkgRuntime.Between(next, lo, hi)) * time.Microsecond
}
