package spool

import (
	"github.com/pkg/errors"
)

var (
	// ErrClosed is returned by Put after Close, and by Take once a closed
	// channel holds nothing more.
	ErrClosed = errors.New("spool: channel closed")

	// ErrInvalidRequest is returned for requests that fail Request.Validate.
	ErrInvalidRequest = errors.New("spool: invalid request")

	// ErrInvalidCapacity is returned when a channel is created with capacity < 1.
	ErrInvalidCapacity = errors.New("spool: capacity must be positive")

	// ErrFrameTooLarge is returned when an encoded request would not fit the
	// channel's maximum message size.
	ErrFrameTooLarge = errors.New("spool: frame exceeds maximum message size")

	// ErrMalformedFrame is returned when a received frame cannot be decoded.
	ErrMalformedFrame = errors.New("spool: malformed frame")

	// ErrInvalidActorCount is returned by Coordinator.Run when there is not
	// at least one client and one printer.
	ErrInvalidActorCount = errors.New("spool: client and printer counts must be positive")

	// ErrResource marks failures of the underlying kernel primitive other
	// than the expected full/empty wait. Match it with errors.Is.
	ErrResource = errors.New("spool: channel resource failure")
)

// ResourceError reports a failed operation on the kernel primitive.
// errors.Is(err, ErrResource) holds for every ResourceError, and Unwrap
// exposes the underlying cause.
type ResourceError struct {
	Op  string
	Err error
}

func (e *ResourceError) Error() string { return "spool: " + e.Op + ": " + e.Err.Error() }

func (e *ResourceError) Unwrap() error { return e.Err }

func (e *ResourceError) Is(target error) bool { return target == ErrResource }
