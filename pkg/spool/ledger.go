package spool

import "sync"

// Ledger tracks requests between submission and completion so a
// coordinator can tell when every submitted request has been printed.
// A nil *Ledger ignores every call.
type Ledger struct {
	mu        sync.Mutex
	submitted int
	completed int
	rejected  int
	inFlight  int
	idle      chan struct{} // closed while inFlight == 0
}

// Stats is a point-in-time copy of a Ledger.
type Stats struct {
	Submitted int // Put returned nil
	Completed int // printed by a consumer
	Rejected  int // Put failed
	InFlight  int // submitting, queued or printing
}

var closedChan = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

func NewLedger() *Ledger {
	return &Ledger{idle: closedChan}
}

// Submitting records a request about to be handed to Put. It is counted as
// in flight before Put so a consumer can never complete it first.
func (l *Ledger) Submitting() {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inFlight == 0 {
		l.idle = make(chan struct{})
	}
	l.inFlight++
}

// Submitted records a successful Put.
func (l *Ledger) Submitted() {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.submitted++
	l.mu.Unlock()
}

// Rejected records a failed Put.
func (l *Ledger) Rejected() {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rejected++
	l.done()
}

// Completed records a request a consumer finished printing.
func (l *Ledger) Completed() {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.completed++
	l.done()
}

// Idle returns a channel that is closed while nothing is in flight. The
// channel is replaced once new work is submitted, so call Idle again after
// each wake-up.
func (l *Ledger) Idle() <-chan struct{} {
	if l == nil {
		return closedChan
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.idle
}

func (l *Ledger) Stats() Stats {
	if l == nil {
		return Stats{}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return Stats{
		Submitted: l.submitted,
		Completed: l.completed,
		Rejected:  l.rejected,
		InFlight:  l.inFlight,
	}
}

func (l *Ledger) done() {
	if l.inFlight == 0 {
		return
	}
	l.inFlight--
	if l.inFlight == 0 {
		close(l.idle)
	}
}
