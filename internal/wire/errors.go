package wire

import "errors"

// ErrShortBuffer is returned when a Reader does not have enough remaining
// bytes to satisfy a decode of the requested shape.
var ErrShortBuffer = errors.New("wire: short buffer")

// ErrUnknownTag is returned when a tagged-union discriminant does not match
// any declared variant.
var ErrUnknownTag = errors.New("wire: unknown discriminant")

// ErrInvalidChar is returned when a decoded 4-byte scalar exceeds the
// largest Unicode code point (0x10FFFF).
var ErrInvalidChar = errors.New("wire: invalid character scalar")
