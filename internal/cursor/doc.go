// Package cursor implements the Cursor half of spec component I: an
// (anchor, position) pair over buffer.Position, the ordered selection range
// between them, and a Set managing the server's multi-cursor state
// for one buffer view.
//
// Cursor is grounded on the teacher's internal/engine/cursor package (value
// type, sorted/merged CursorSet) but is rebased from a byte-offset rope
// coordinate onto internal/buffer's line/column Position, matching spec §3's
// "(anchor: BufferPosition, position: BufferPosition)".
package cursor
