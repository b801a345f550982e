package byteslice

import "sync"

// Pool hands out byte slices of one fixed length.
//
// Kernel message queues receive into a buffer of exactly the queue's message
// size, so every frame buffer of a channel has the same length and a single
// sync.Pool bucket is enough.
type Pool struct {
	size int
	pool sync.Pool
}

// New creates a pool of slices of the given length.
func New(size int) *Pool {
	if size <= 0 {
		panic("byteslice: size must be positive")
	}
	p := &Pool{size: size}
	p.pool.New = func() any {
		b := make([]byte, size)
		return &b
	}
	return p
}

// Get returns a slice of length Size.
func (p *Pool) Get() []byte {
	b := *p.pool.Get().(*[]byte)
	return b[:p.size]
}

// Put returns a slice to the pool. Slices that did not come from this pool
// (wrong capacity) are dropped.
func (p *Pool) Put(b []byte) {
	if cap(b) != p.size {
		return
	}
	b = b[:p.size]
	p.pool.Put(&b)
}

// Size returns the length of slices handed out by Get.
func (p *Pool) Size() int {
	return p.size
}
