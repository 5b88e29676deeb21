// Package wire implements the little-endian, length-prefixed, tagged-union
// binary encoding shared by the client-event and editor-operation codecs.
//
// Every primitive is encoded with a fixed width; strings and byte slices are
// length-prefixed with a uint32; optional values carry a one-byte presence
// tag; tagged unions carry a one-byte discriminant matching the declared
// variant order. Any bounds violation, unknown discriminant or out-of-range
// character scalar collapses to the ErrShortBuffer / ErrUnknownTag /
// ErrInvalidChar error kinds so that a hostile or truncated peer can never
// produce anything but a clean decode failure.
package wire
