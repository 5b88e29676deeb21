package cursor

import (
	"fmt"

	"github.com/dshills/pepperd/internal/buffer"
)

// Cursor is a (anchor, position) pair per spec §3. Position is where the
// caret currently sits; Anchor is the other end of the selection. A cursor
// with Anchor == Position has no selection.
type Cursor struct {
	Anchor   buffer.Position
	Position buffer.Position
}

// NewCursor returns a cursor with no selection at pos.
func NewCursor(pos buffer.Position) Cursor {
	return Cursor{Anchor: pos, Position: pos}
}

// NewSelection returns a cursor selecting between anchor and pos.
func NewSelection(anchor, pos buffer.Position) Cursor {
	return Cursor{Anchor: anchor, Position: pos}
}

// IsEmpty reports whether the cursor has no selection.
func (c Cursor) IsEmpty() bool { return c.Anchor.Equal(c.Position) }

// Range returns the ordered selection range between Anchor and Position.
func (c Cursor) Range() buffer.Range { return buffer.NewRange(c.Anchor, c.Position) }

// MoveTo returns a cursor collapsed to pos (selection cleared).
func (c Cursor) MoveTo(pos buffer.Position) Cursor { return NewCursor(pos) }

// ExtendTo returns a cursor with Position moved to pos, keeping Anchor.
func (c Cursor) ExtendTo(pos buffer.Position) Cursor {
	return Cursor{Anchor: c.Anchor, Position: pos}
}

// Collapse returns a cursor with no selection at Position.
func (c Cursor) Collapse() Cursor { return NewCursor(c.Position) }

// Equal reports whether c and o have the same anchor and position.
func (c Cursor) Equal(o Cursor) bool {
	return c.Anchor.Equal(o.Anchor) && c.Position.Equal(o.Position)
}

func (c Cursor) String() string {
	if c.IsEmpty() {
		return fmt.Sprintf("Cursor(%d:%d)", c.Position.Line, c.Position.Column)
	}
	return fmt.Sprintf("Cursor(%d:%d-%d:%d)", c.Anchor.Line, c.Anchor.Column, c.Position.Line, c.Position.Column)
}
