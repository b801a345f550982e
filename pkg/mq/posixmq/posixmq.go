// Package posixmq wraps the Linux POSIX message queue syscalls
// (mq_open, mq_timedsend, mq_timedreceive, mq_getsetattr, mq_unlink).
//
// A Queue is a kernel object with a fixed maximum message count and a fixed
// maximum message size, both chosen when the queue is created. Send blocks
// while the queue is full and Receive blocks while it is empty; messages of
// equal priority are delivered in FIFO order.
//
// Only Linux is supported. On other platforms Open returns ErrUnsupported.
package posixmq

import (
	"errors"
	"strings"
)

var (
	// ErrUnsupported is returned on platforms without POSIX message queues.
	ErrUnsupported = errors.New("posixmq: not supported on this platform")

	// ErrTimeout is returned when a deadline passes before a message could be
	// sent or received.
	ErrTimeout = errors.New("posixmq: timed out")

	// ErrExist is returned by Open with Create|Exclusive when the name is taken.
	ErrExist = errors.New("posixmq: queue already exists")

	// ErrInvalidName is returned for names that are not of the form "/name".
	ErrInvalidName = errors.New("posixmq: name must be \"/\" followed by up to 255 non-slash bytes")
)

const maxNameLen = 255

// Flags for Open. Exactly one of ReadOnly, WriteOnly and ReadWrite must be set.
const (
	ReadOnly = 1 << iota
	WriteOnly
	ReadWrite
	Create    // create the queue if it does not exist
	Exclusive // with Create, fail if the queue already exists
	NonBlock  // Send and Receive fail instead of blocking
)

// Attr mirrors struct mq_attr.
type Attr struct {
	Flags   int // O_NONBLOCK or 0
	MaxMsg  int // maximum number of queued messages
	MsgSize int // maximum message size in bytes
	CurMsgs int // messages currently queued
}

// Queue is an open message queue descriptor.
type Queue struct {
	fd   int
	name string
}

// Name returns the name the queue was opened with.
func (q *Queue) Name() string {
	return q.name
}

func validName(name string) bool {
	if len(name) < 2 || name[0] != '/' {
		return false
	}
	rest := name[1:]
	return len(rest) <= maxNameLen && !strings.Contains(rest, "/")
}
