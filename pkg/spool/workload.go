package spool

import (
	"strconv"

	pkgRuntime "github.com/huynhanx03/go-spooler/pkg/runtime"
)

const (
	DefaultMinFileSize = 200
	DefaultMaxFileSize = 20000
)

// Workload generates the requests of one print client.
type Workload struct {
	MinSize int
	MaxSize int
	// Rand returns a value in [0, n). Nil uses the runtime's fast random source.
	Rand func(n uint32) uint32
}

// DefaultWorkload returns files of DefaultMinFileSize..DefaultMaxFileSize
// characters.
func DefaultWorkload() Workload {
	return Workload{MinSize: DefaultMinFileSize, MaxSize: DefaultMaxFileSize}
}

// Next returns the seq-th (zero based) request of client originID, labelled
// FILE_<origin>_<seq+1>.
func (w Workload) Next(originID int64, seq int) Request {
	next := w.Rand
	if next == nil {
		next = pkgRuntime.Uint32n
	}

	label := make([]byte, 0, 24)
	label = append(label, "FILE_"...)
	label = strconv.AppendInt(label, originID, 10)
	label = append(label, '_')
	label = strconv.AppendInt(label, int64(seq+1), 10)

	size := pkgRuntime.Between(next, w.MinSize, w.MaxSize)
	if size < 1 {
		size = 1
	}

	return Request{OriginID: originID, Label: string(label), SizeUnits: size}
}
