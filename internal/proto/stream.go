package proto

import (
	"errors"

	"github.com/dshills/pepperd/internal/wire"
)

// DecodeClientEvents decodes as many complete ClientEvents as are present
// at the front of buf. It returns the events decoded, the number of bytes
// consumed (always a prefix of buf), and an error if a malformed
// discriminant was found (spec §4.F: "the peer is untrusted" — a short
// trailing record is not an error, it is the normal partial-frame case of
// spec property 4).
func DecodeClientEvents(buf []byte) (events []ClientEvent, consumed int, err error) {
	r := wire.NewReader(buf)
	for {
		start := r.Pos()
		ev, derr := DecodeClientEvent(r)
		if derr != nil {
			if errors.Is(derr, wire.ErrShortBuffer) {
				return events, start, nil
			}
			return events, start, derr
		}
		events = append(events, ev)
	}
}

// DecodeEditorOperations decodes as many complete EditorOperations as are
// present at the front of buf, with the same partial-frame semantics as
// DecodeClientEvents.
func DecodeEditorOperations(buf []byte) (ops []EditorOperation, consumed int, err error) {
	r := wire.NewReader(buf)
	for {
		start := r.Pos()
		op, derr := DecodeEditorOperation(r)
		if derr != nil {
			if errors.Is(derr, wire.ErrShortBuffer) {
				return ops, start, nil
			}
			return ops, start, derr
		}
		ops = append(ops, op)
	}
}
