package spool

import (
	"github.com/pkg/errors"
)

// Request is one print job. It is a value type: passing it to Put hands it
// over, and exactly one printer receives it from Take.
type Request struct {
	OriginID  int64  // print client that created the request
	Label     string // file name, e.g. FILE_3_1
	SizeUnits int    // file size in characters, > 0
}

// Validate reports whether r can be queued.
func (r Request) Validate() error {
	if r.SizeUnits <= 0 {
		return errors.Wrapf(ErrInvalidRequest, "size %d is not positive", r.SizeUnits)
	}
	return nil
}
