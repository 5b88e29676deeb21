package wire

import "encoding/binary"

// Writer accumulates a little-endian tagged-union encoding into a growable
// byte buffer. The zero value is ready to use.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer with a pre-sized backing buffer.
func NewWriter(sizeHint int) *Writer {
	return &Writer{buf: make([]byte, 0, sizeHint)}
}

// Bytes returns the accumulated buffer. The slice is invalidated by the next
// write call.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// Reset clears the buffer for reuse.
func (w *Writer) Reset() { w.buf = w.buf[:0] }

// PutUint8 appends a single byte.
func (w *Writer) PutUint8(v uint8) { w.buf = append(w.buf, v) }

// PutBool appends a one-byte boolean (0 or 1).
func (w *Writer) PutBool(v bool) {
	if v {
		w.PutUint8(1)
	} else {
		w.PutUint8(0)
	}
}

// PutUint16 appends a little-endian uint16.
func (w *Writer) PutUint16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

// PutUint32 appends a little-endian uint32.
func (w *Writer) PutUint32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

// PutUint64 appends a little-endian uint64.
func (w *Writer) PutUint64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

// PutInt32 appends a little-endian int32.
func (w *Writer) PutInt32(v int32) { w.PutUint32(uint32(v)) }

// PutChar appends a rune as its 4-byte Unicode scalar value.
func (w *Writer) PutChar(r rune) { w.PutUint32(uint32(r)) }

// PutBytes appends a uint32 length prefix followed by the raw bytes.
func (w *Writer) PutBytes(b []byte) {
	w.PutUint32(uint32(len(b)))
	w.buf = append(w.buf, b...)
}

// PutString appends a uint32 length prefix followed by the string's bytes.
func (w *Writer) PutString(s string) {
	w.PutUint32(uint32(len(s)))
	w.buf = append(w.buf, s...)
}

// PutOptionalUint32 appends a presence tag followed by the value if present.
func (w *Writer) PutOptionalUint32(v *uint32) {
	if v == nil {
		w.PutUint8(0)
		return
	}
	w.PutUint8(1)
	w.PutUint32(*v)
}
