package wire

import "encoding/binary"

// Reader decodes a tagged-union encoding from a byte slice, advancing an
// internal cursor. It never panics: every method reports ErrShortBuffer
// instead of indexing out of range, so a Reader can be handed an arbitrary
// (possibly truncated) prefix of a stream.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps buf for decoding. buf is not copied or retained beyond the
// Reader's lifetime in any way that outlives the caller's slice.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Remaining returns the bytes not yet consumed.
func (r *Reader) Remaining() []byte { return r.buf[r.pos:] }

// Pos returns the current read offset into the original buffer.
func (r *Reader) Pos() int { return r.pos }

// Len returns the number of unconsumed bytes.
func (r *Reader) Len() int { return len(r.buf) - r.pos }

func (r *Reader) take(n int) ([]byte, error) {
	if r.pos+n > len(r.buf) || n < 0 {
		return nil, ErrShortBuffer
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// Uint8 decodes a single byte.
func (r *Reader) Uint8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Bool decodes a one-byte boolean; any non-zero byte is true.
func (r *Reader) Bool() (bool, error) {
	b, err := r.Uint8()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

// Uint16 decodes a little-endian uint16.
func (r *Reader) Uint16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// Uint32 decodes a little-endian uint32.
func (r *Reader) Uint32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// Uint64 decodes a little-endian uint64.
func (r *Reader) Uint64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// Int32 decodes a little-endian int32.
func (r *Reader) Int32() (int32, error) {
	v, err := r.Uint32()
	return int32(v), err
}

// Char decodes a rune from its 4-byte Unicode scalar value.
func (r *Reader) Char() (rune, error) {
	v, err := r.Uint32()
	if err != nil {
		return 0, err
	}
	if v > 0x10FFFF {
		return 0, ErrInvalidChar
	}
	return rune(v), nil
}

// Bytes decodes a uint32-length-prefixed byte slice. The returned slice
// aliases the Reader's backing buffer; callers must copy if they need to
// retain it past the buffer's lifetime.
func (r *Reader) Bytes() ([]byte, error) {
	n, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	return r.take(int(n))
}

// String decodes a uint32-length-prefixed string. As with Bytes, it aliases
// the backing buffer.
func (r *Reader) String() (string, error) {
	b, err := r.Bytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// OptionalUint32 decodes a presence tag followed by an optional value.
func (r *Reader) OptionalUint32() (*uint32, error) {
	tag, err := r.Uint8()
	if err != nil {
		return nil, err
	}
	if tag == 0 {
		return nil, nil
	}
	v, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	return &v, nil
}
