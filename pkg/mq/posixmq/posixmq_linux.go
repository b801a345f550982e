//go:build linux

package posixmq

import (
	"time"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// mqAttr is the kernel layout of struct mq_attr; C long is Go int on Linux.
type mqAttr struct {
	flags   int
	maxmsg  int
	msgsize int
	curmsgs int
	_       [4]int
}

// Open opens or creates the queue called name ("/something").
// flag combines the Open flags of this package. attr is only used with
// Create; nil selects the system defaults (/proc/sys/fs/mqueue).
func Open(name string, flag int, perm uint32, attr *Attr) (*Queue, error) {
	if !validName(name) {
		return nil, ErrInvalidName
	}

	// The syscall takes the name without the leading slash.
	p, err := unix.BytePtrFromString(name[1:])
	if err != nil {
		return nil, ErrInvalidName
	}

	var kattr *mqAttr
	if attr != nil {
		kattr = &mqAttr{maxmsg: attr.MaxMsg, msgsize: attr.MsgSize}
	}

	fd, _, errno := unix.Syscall6(
		unix.SYS_MQ_OPEN,
		uintptr(unsafe.Pointer(p)),
		uintptr(osFlags(flag)),
		uintptr(perm),
		uintptr(unsafe.Pointer(kattr)),
		0, 0,
	)
	if errno != 0 {
		return nil, wrapErrno("mq_open "+name, errno)
	}

	return &Queue{fd: int(fd), name: name}, nil
}

// Unlink removes the queue name. Open descriptors stay usable until closed.
func Unlink(name string) error {
	if !validName(name) {
		return ErrInvalidName
	}
	p, err := unix.BytePtrFromString(name[1:])
	if err != nil {
		return ErrInvalidName
	}

	_, _, errno := unix.Syscall(unix.SYS_MQ_UNLINK, uintptr(unsafe.Pointer(p)), 0, 0)
	if errno != 0 {
		return wrapErrno("mq_unlink "+name, errno)
	}
	return nil
}

// Send enqueues msg with the given priority. It blocks while the queue is
// full until deadline; a zero deadline blocks indefinitely.
func (q *Queue) Send(msg []byte, prio uint, deadline time.Time) error {
	ts := absTimeout(deadline)

	for {
		_, _, errno := unix.Syscall6(
			unix.SYS_MQ_TIMEDSEND,
			uintptr(q.fd),
			uintptr(unsafe.Pointer(unsafe.SliceData(msg))),
			uintptr(len(msg)),
			uintptr(prio),
			uintptr(unsafe.Pointer(ts)),
			0,
		)
		switch errno {
		case 0:
			return nil
		case unix.EINTR:
			continue
		default:
			return wrapErrno("mq_timedsend", errno)
		}
	}
}

// Receive dequeues the oldest message of the highest priority into buf and
// returns its length. buf must be at least the queue's MsgSize. It blocks
// while the queue is empty until deadline; a zero deadline blocks
// indefinitely.
func (q *Queue) Receive(buf []byte, deadline time.Time) (int, uint, error) {
	ts := absTimeout(deadline)

	for {
		var prio uint32
		n, _, errno := unix.Syscall6(
			unix.SYS_MQ_TIMEDRECEIVE,
			uintptr(q.fd),
			uintptr(unsafe.Pointer(unsafe.SliceData(buf))),
			uintptr(len(buf)),
			uintptr(unsafe.Pointer(&prio)),
			uintptr(unsafe.Pointer(ts)),
			0,
		)
		switch errno {
		case 0:
			return int(n), uint(prio), nil
		case unix.EINTR:
			continue
		default:
			return 0, 0, wrapErrno("mq_timedreceive", errno)
		}
	}
}

// Attr returns the kernel's current view of the queue.
func (q *Queue) Attr() (Attr, error) {
	var a mqAttr
	_, _, errno := unix.Syscall(
		unix.SYS_MQ_GETSETATTR,
		uintptr(q.fd),
		0,
		uintptr(unsafe.Pointer(&a)),
	)
	if errno != 0 {
		return Attr{}, wrapErrno("mq_getsetattr", errno)
	}
	return Attr{Flags: a.flags, MaxMsg: a.maxmsg, MsgSize: a.msgsize, CurMsgs: a.curmsgs}, nil
}

// Close releases the descriptor. It does not remove the queue name.
func (q *Queue) Close() error {
	if err := unix.Close(q.fd); err != nil {
		return errors.Wrap(err, "posixmq: close")
	}
	return nil
}

func osFlags(flag int) int {
	f := unix.O_CLOEXEC
	switch {
	case flag&ReadWrite != 0:
		f |= unix.O_RDWR
	case flag&WriteOnly != 0:
		f |= unix.O_WRONLY
	default:
		f |= unix.O_RDONLY
	}
	if flag&Create != 0 {
		f |= unix.O_CREAT
	}
	if flag&Exclusive != 0 {
		f |= unix.O_EXCL
	}
	if flag&NonBlock != 0 {
		f |= unix.O_NONBLOCK
	}
	return f
}

func absTimeout(deadline time.Time) *unix.Timespec {
	if deadline.IsZero() {
		return nil
	}
	ts := unix.NsecToTimespec(deadline.UnixNano())
	return &ts
}

func wrapErrno(op string, errno unix.Errno) error {
	switch errno {
	case unix.ETIMEDOUT:
		return ErrTimeout
	case unix.EEXIST:
		return errors.Wrap(ErrExist, op)
	}
	return errors.Wrapf(errno, "posixmq: %s", op)
}
