package spool

import (
	"bytes"
	"strconv"

	"github.com/pkg/errors"

	"github.com/huynhanx03/go-spooler/pkg/hash"
)

// Codec converts a Request to and from a text frame:
//
//	<origin> <len>:<label> <size> <checksum>
//
// The label is length-prefixed, so it may contain any byte, including the
// space separator and ':'. checksum is the xxhash64 of everything before the
// last space, as 16 lower-case hex digits. A frame from a foreign writer or
// a truncated frame fails the checksum instead of decoding into garbage.
type Codec struct {
	// MaxFrameSize bounds encoded frames; 0 means unbounded.
	MaxFrameSize int
}

// Encode returns the frame for r.
func (c Codec) Encode(r Request) ([]byte, error) {
	return c.AppendEncode(nil, r)
}

// AppendEncode appends the frame for r to dst. On error dst is returned
// unchanged in length.
func (c Codec) AppendEncode(dst []byte, r Request) ([]byte, error) {
	if err := r.Validate(); err != nil {
		return dst, err
	}

	start := len(dst)
	dst = strconv.AppendInt(dst, r.OriginID, 10)
	dst = append(dst, ' ')
	dst = strconv.AppendInt(dst, int64(len(r.Label)), 10)
	dst = append(dst, ':')
	dst = append(dst, r.Label...)
	dst = append(dst, ' ')
	dst = strconv.AppendInt(dst, int64(r.SizeUnits), 10)

	sum := hash.Sum64(dst[start:])
	dst = append(dst, ' ')
	dst = hash.AppendHex(dst, sum)

	if n := len(dst) - start; c.MaxFrameSize > 0 && n > c.MaxFrameSize {
		return dst[:start], errors.Wrapf(ErrFrameTooLarge, "%d > %d bytes", n, c.MaxFrameSize)
	}
	return dst, nil
}

// Decode parses a frame produced by Encode. It never returns a partially
// filled Request: any deviation from the format is ErrMalformedFrame.
// The returned label does not alias frame.
func (c Codec) Decode(frame []byte) (Request, error) {
	if c.MaxFrameSize > 0 && len(frame) > c.MaxFrameSize {
		return Request{}, malformed("frame of %d bytes exceeds %d", len(frame), c.MaxFrameSize)
	}

	sp := bytes.LastIndexByte(frame, ' ')
	if sp < 0 {
		return Request{}, malformed("missing fields")
	}
	body, trailer := frame[:sp], frame[sp+1:]

	want, ok := hash.ParseHex(trailer)
	if !ok {
		return Request{}, malformed("checksum field %q is not %d hex digits", trailer, hash.HexLen)
	}
	if hash.Sum64(body) != want {
		return Request{}, malformed("checksum mismatch")
	}

	i := bytes.IndexByte(body, ' ')
	if i < 0 {
		return Request{}, malformed("missing label field")
	}
	origin, err := strconv.ParseInt(string(body[:i]), 10, 64)
	if err != nil {
		return Request{}, malformed("origin %q is not an integer", body[:i])
	}

	rest := body[i+1:]
	j := bytes.IndexByte(rest, ':')
	if j < 0 {
		return Request{}, malformed("label length prefix missing")
	}
	n, err := strconv.Atoi(string(rest[:j]))
	if err != nil || n < 0 {
		return Request{}, malformed("label length %q is not a non-negative integer", rest[:j])
	}
	rest = rest[j+1:]
	if n > len(rest) {
		return Request{}, malformed("label length %d runs past end of frame", n)
	}
	label := string(rest[:n])
	rest = rest[n:]

	if len(rest) == 0 || rest[0] != ' ' {
		return Request{}, malformed("missing size field")
	}
	size, err := strconv.Atoi(string(rest[1:]))
	if err != nil {
		return Request{}, malformed("size %q is not an integer", rest[1:])
	}
	if size <= 0 {
		return Request{}, malformed("size %d is not positive", size)
	}

	return Request{OriginID: origin, Label: label, SizeUnits: size}, nil
}

func malformed(format string, args ...any) error {
	return errors.Wrapf(ErrMalformedFrame, format, args...)
}
