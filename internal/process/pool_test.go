package process

import "testing"

func TestPoolAcquireReusesReleasedBuffer(t *testing.T) {
	p := NewPool(16)
	h1 := p.Acquire()
	if len(h1.Bytes()) != 16 {
		t.Fatalf("len = %d, want 16", len(h1.Bytes()))
	}
	first := &h1.Bytes()[0]
	h1.Release()

	h2 := p.Acquire()
	if len(h2.Bytes()) != 16 {
		t.Fatalf("reused len = %d, want 16", len(h2.Bytes()))
	}
	if &h2.Bytes()[0] != first {
		t.Fatal("Acquire after Release did not reuse the freed buffer")
	}
}

func TestHandleShareDefersReleaseUntilLastHolder(t *testing.T) {
	p := NewPool(8)
	h1 := p.Acquire()
	h2 := h1.Share()

	h1.Release()
	// h2 still holds a reference; the buffer must not be back in the free
	// list yet, so a fresh Acquire should allocate rather than reuse it.
	h3 := p.Acquire()
	if &h3.Bytes()[0] == &h2.Bytes()[0] {
		t.Fatal("buffer was freed while a shared handle was still live")
	}

	h2.Release()
	h4 := p.Acquire()
	if &h4.Bytes()[0] != &h2.Bytes()[0] {
		t.Fatal("buffer was not returned to the pool once the last handle released")
	}
}
