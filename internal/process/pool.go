package process

import (
	"sync"
	"sync/atomic"
)

// Pool hands out reference-counted byte buffers for child-process input
// blocks (spec §5: "Child-process shared-buffer input blocks are
// reference-counted via a pool: producers acquire, share a handle, and
// release; the buffer is reused when the last holder releases"). No package
// outside this one creates a Pool.
type Pool struct {
	mu   sync.Mutex
	free [][]byte
	size int
}

// NewPool returns a Pool that hands out buffers of bufSize bytes.
func NewPool(bufSize int) *Pool {
	return &Pool{size: bufSize}
}

// Handle is a shared reference to one pooled buffer. The zero Handle is
// not valid; obtain one via Pool.Acquire or Handle.Share.
type Handle struct {
	pool *Pool
	buf  []byte
	refs *int32
}

// Acquire checks out a buffer, creating one if the free list is empty.
func (p *Pool) Acquire() *Handle {
	p.mu.Lock()
	var buf []byte
	if n := len(p.free); n > 0 {
		buf = p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
	} else {
		buf = make([]byte, p.size)
	}
	p.mu.Unlock()

	refs := int32(1)
	return &Handle{pool: p, buf: buf, refs: &refs}
}

// Share increments the handle's reference count and returns a second
// handle over the same backing buffer, for a second producer that wants
// to hold the block alive independently.
func (h *Handle) Share() *Handle {
	atomic.AddInt32(h.refs, 1)
	return &Handle{pool: h.pool, buf: h.buf, refs: h.refs}
}

// Bytes returns the handle's backing buffer.
func (h *Handle) Bytes() []byte { return h.buf }

// Release drops this handle's reference. When the last holder releases,
// the buffer returns to the pool's free list for reuse.
func (h *Handle) Release() {
	if atomic.AddInt32(h.refs, -1) == 0 {
		h.pool.mu.Lock()
		h.pool.free = append(h.pool.free, h.buf)
		h.pool.mu.Unlock()
	}
}
