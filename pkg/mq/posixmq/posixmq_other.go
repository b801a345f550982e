//go:build !linux

package posixmq

import "time"

func Open(name string, flag int, perm uint32, attr *Attr) (*Queue, error) {
	if !validName(name) {
		return nil, ErrInvalidName
	}
	return nil, ErrUnsupported
}

func Unlink(name string) error { return ErrUnsupported }

func (q *Queue) Send(msg []byte, prio uint, deadline time.Time) error { return ErrUnsupported }

func (q *Queue) Receive(buf []byte, deadline time.Time) (int, uint, error) {
	return 0, 0, ErrUnsupported
}

func (q *Queue) Attr() (Attr, error) { return Attr{}, ErrUnsupported }

func (q *Queue) Close() error { return ErrUnsupported }
