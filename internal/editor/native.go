package editor

import (
	"strings"

	"github.com/dshills/pepperd/internal/buffer"
	"github.com/dshills/pepperd/internal/cursor"
	"github.com/dshills/pepperd/internal/proto"
)

// nativeHandleKey is the mode's built-in handler for a key that the
// keymap engine did not map to an expansion (spec §4.J: "flush the
// buffered keys one-by-one to the mode's native handler"). It covers the
// minimal set of editing primitives every mode needs: entering/leaving
// Insert, character insertion/deletion, newline, and cursor movement.
// There are no richer Normal-mode verbs (yank, search, multi-cursor add):
// nothing in the server calls keymap.Engine.Bind, so every key reaches
// this handler unexpanded.
func (e *Editor) nativeHandleKey(handle proto.ClientHandle, s *Session, k proto.Key) {
	switch k.Kind {
	case proto.KeyEsc:
		if s.Mode != proto.ModeNormal {
			e.keymaps.Reset()
			s.Mode = proto.ModeNormal
			s.enqueue(proto.NewMode(proto.ModeNormal))
		}
		return
	}

	switch s.Mode {
	case proto.ModeInsert:
		e.nativeHandleInsertMode(s, k)
	case proto.ModeNormal:
		e.nativeHandleNormalMode(s, k)
	default:
		e.nativeHandleNormalMode(s, k)
	}
}

func (e *Editor) nativeHandleNormalMode(s *Session, k proto.Key) {
	switch k.Kind {
	case proto.KeyChar:
		switch k.Char {
		case 'i':
			s.Mode = proto.ModeInsert
			s.enqueue(proto.NewMode(proto.ModeInsert))
			return
		case ':':
			s.Mode = proto.ModeCommand
			s.enqueue(proto.NewMode(proto.ModeCommand))
			return
		}
	}
	e.moveCursor(s, k)
}

func (e *Editor) nativeHandleInsertMode(s *Session, k proto.Key) {
	primary := s.Cursors.Primary()
	switch k.Kind {
	case proto.KeyChar:
		e.insertAt(s, primary.Position, string(k.Char))
	case proto.KeyEnter:
		e.insertAt(s, primary.Position, "\n")
	case proto.KeyBackspace:
		if primary.Position.Line == 0 && primary.Position.Column == 0 {
			return
		}
		from := prevPosition(s.Buffer, primary.Position)
		e.deleteRange(s, buffer.Range{From: from, To: primary.Position})
	case proto.KeyDelete:
		to := nextPosition(s.Buffer, primary.Position)
		e.deleteRange(s, buffer.Range{From: primary.Position, To: to})
	case proto.KeyTab:
		e.insertAt(s, primary.Position, e.tabText())
	default:
		e.moveCursor(s, k)
	}
}

// tabText is what a Tab keypress inserts in Insert mode: InsertSpaces
// spaces wide, or a literal tab character, per the editor.tabSize/
// editor.insertSpaces settings ApplySettings installed (SPEC_FULL §11).
func (e *Editor) tabText() string {
	if !e.settings.InsertSpaces {
		return "\t"
	}
	n := e.settings.TabSize
	if n <= 0 {
		n = 1
	}
	return strings.Repeat(" ", n)
}

func (e *Editor) insertAt(s *Session, pos buffer.Position, text string) {
	r := s.Buffer.Insert(pos, text)
	syn := e.syntaxes.Get(s.SyntaxHandle)
	s.Highlighted.OnInsert(syn, s.Buffer, r)

	s.Cursors.Set(cursor.NewCursor(r.To))
	s.enqueue(proto.NewInsert(pos, text))
	s.enqueue(proto.NewCursorsClear(true))
	s.enqueue(proto.NewCursor(s.Cursors.Primary()))
}

func (e *Editor) deleteRange(s *Session, r buffer.Range) {
	s.Buffer.Delete(r)
	syn := e.syntaxes.Get(s.SyntaxHandle)
	s.Highlighted.OnDelete(syn, s.Buffer, r)

	s.Cursors.Set(cursor.NewCursor(r.From))
	s.enqueue(proto.NewDelete(r))
	s.enqueue(proto.NewCursorsClear(true))
	s.enqueue(proto.NewCursor(s.Cursors.Primary()))
}

func (e *Editor) moveCursor(s *Session, k proto.Key) {
	primary := s.Cursors.Primary()
	pos := primary.Position
	switch k.Kind {
	case proto.KeyLeft:
		pos = prevPosition(s.Buffer, pos)
	case proto.KeyRight:
		pos = nextPosition(s.Buffer, pos)
	case proto.KeyUp:
		if pos.Line > 0 {
			pos.Line--
			pos = clampColumn(s.Buffer, pos)
		}
	case proto.KeyDown:
		if int(pos.Line)+1 < s.Buffer.LineCount() {
			pos.Line++
			pos = clampColumn(s.Buffer, pos)
		}
	case proto.KeyHome:
		pos.Column = 0
	case proto.KeyEnd:
		pos.Column = uint32(len(s.Buffer.Line(pos.Line)))
	default:
		return
	}
	s.Cursors.Set(cursor.NewCursor(pos))
	s.enqueue(proto.NewCursorsClear(true))
	s.enqueue(proto.NewCursor(s.Cursors.Primary()))
}

func clampColumn(b *buffer.Buffer, pos buffer.Position) buffer.Position {
	lineLen := uint32(len(b.Line(pos.Line)))
	if pos.Column > lineLen {
		pos.Column = lineLen
	}
	return pos
}

func prevPosition(b *buffer.Buffer, pos buffer.Position) buffer.Position {
	if pos.Column > 0 {
		return buffer.Position{Line: pos.Line, Column: pos.Column - 1}
	}
	if pos.Line == 0 {
		return pos
	}
	prevLine := pos.Line - 1
	return buffer.Position{Line: prevLine, Column: uint32(len(b.Line(prevLine)))}
}

func nextPosition(b *buffer.Buffer, pos buffer.Position) buffer.Position {
	lineLen := uint32(len(b.Line(pos.Line)))
	if pos.Column < lineLen {
		return buffer.Position{Line: pos.Line, Column: pos.Column + 1}
	}
	if int(pos.Line)+1 >= b.LineCount() {
		return pos
	}
	return buffer.Position{Line: pos.Line + 1, Column: 0}
}
