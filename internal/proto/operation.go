package proto

import (
	"github.com/dshills/pepperd/internal/buffer"
	"github.com/dshills/pepperd/internal/cursor"
	"github.com/dshills/pepperd/internal/wire"
)

// StatusMessageKind distinguishes informational from error status messages
// (spec §3 StatusMessage variant).
type StatusMessageKind uint8

const (
	StatusInfo StatusMessageKind = iota
	StatusError
)

// OperationKind discriminates the EditorOperation tagged union. Order is
// frozen per spec §9 and must only ever be appended to, never reordered.
type OperationKind uint8

const (
	OpFocused OperationKind = iota
	OpBuffer
	OpPath
	OpMode
	OpInsert
	OpDelete
	OpCursorsClear
	OpCursor
	OpInputAppend
	OpInputKeep
	OpSearch
	OpConfigValues
	OpTheme
	OpSyntaxExtension
	OpSyntaxRule
	OpSelectClear
	OpSelectEntry
	OpStatusMessage
	OpStatusMessageAppend
	OpSpawn
	opKindCount
)

// EditorOperation is one server-to-client operation (spec §3). Only the
// fields relevant to Kind are populated; callers should switch on Kind.
type EditorOperation struct {
	Kind OperationKind

	Focused bool   // OpFocused
	Text    string // OpBuffer (full content), OpPath, OpInsert (text), OpSearch name, OpStatusMessage/Append text, OpSpawn stdin text when present
	Mode    Mode   // OpMode

	Position buffer.Position // OpInsert
	Range    buffer.Range    // OpDelete

	Primary bool          // OpCursorsClear
	Cursor  cursor.Cursor // OpCursor

	Char rune   // OpInputAppend
	Keep uint32 // OpInputKeep

	Blob []byte // OpConfigValues, OpTheme, OpSyntaxRule

	MainExtension  string // OpSyntaxExtension
	OtherExtension string // OpSyntaxExtension

	SelectName string // OpSelectEntry

	StatusKind StatusMessageKind // OpStatusMessage

	HasStdin bool // OpSpawn: whether Text carries stdin content
}

// NewFocused builds a Focused operation.
func NewFocused(focused bool) EditorOperation {
	return EditorOperation{Kind: OpFocused, Focused: focused}
}

// NewBuffer builds a full-replace Buffer operation.
func NewBuffer(content string) EditorOperation {
	return EditorOperation{Kind: OpBuffer, Text: content}
}

// NewPath builds a Path operation.
func NewPath(path string) EditorOperation {
	return EditorOperation{Kind: OpPath, Text: path}
}

// NewMode builds a Mode operation.
func NewMode(m Mode) EditorOperation {
	return EditorOperation{Kind: OpMode, Mode: m}
}

// NewInsert builds an Insert operation.
func NewInsert(pos buffer.Position, text string) EditorOperation {
	return EditorOperation{Kind: OpInsert, Position: pos, Text: text}
}

// NewDelete builds a Delete operation.
func NewDelete(r buffer.Range) EditorOperation {
	return EditorOperation{Kind: OpDelete, Range: r}
}

// NewCursorsClear builds a CursorsClear operation.
func NewCursorsClear(primary bool) EditorOperation {
	return EditorOperation{Kind: OpCursorsClear, Primary: primary}
}

// NewCursor builds a Cursor operation.
func NewCursor(c cursor.Cursor) EditorOperation {
	return EditorOperation{Kind: OpCursor, Cursor: c}
}

// NewInputAppend builds an InputAppend operation.
func NewInputAppend(c rune) EditorOperation {
	return EditorOperation{Kind: OpInputAppend, Char: c}
}

// NewInputKeep builds an InputKeep operation.
func NewInputKeep(keep uint32) EditorOperation {
	return EditorOperation{Kind: OpInputKeep, Keep: keep}
}

// NewSearch builds a Search operation.
func NewSearch() EditorOperation {
	return EditorOperation{Kind: OpSearch}
}

// NewConfigValues builds a ConfigValues operation.
func NewConfigValues(blob []byte) EditorOperation {
	return EditorOperation{Kind: OpConfigValues, Blob: blob}
}

// NewTheme builds a Theme operation.
func NewTheme(blob []byte) EditorOperation {
	return EditorOperation{Kind: OpTheme, Blob: blob}
}

// NewSyntaxExtension builds a SyntaxExtension operation.
func NewSyntaxExtension(main, other string) EditorOperation {
	return EditorOperation{Kind: OpSyntaxExtension, MainExtension: main, OtherExtension: other}
}

// NewSyntaxRule builds a SyntaxRule operation.
func NewSyntaxRule(blob []byte) EditorOperation {
	return EditorOperation{Kind: OpSyntaxRule, Blob: blob}
}

// NewSelectClear builds a SelectClear operation.
func NewSelectClear() EditorOperation {
	return EditorOperation{Kind: OpSelectClear}
}

// NewSelectEntry builds a SelectEntry operation.
func NewSelectEntry(name string) EditorOperation {
	return EditorOperation{Kind: OpSelectEntry, SelectName: name}
}

// NewStatusMessage builds a StatusMessage operation.
func NewStatusMessage(kind StatusMessageKind, text string) EditorOperation {
	return EditorOperation{Kind: OpStatusMessage, StatusKind: kind, Text: text}
}

// NewStatusMessageAppend builds a StatusMessageAppend operation.
func NewStatusMessageAppend(text string) EditorOperation {
	return EditorOperation{Kind: OpStatusMessageAppend, Text: text}
}

// NewSpawn builds a Spawn operation. stdinText is empty with hasStdin=false
// when no stdin content should be written to the spawned process.
func NewSpawn(cmd string, stdinText string, hasStdin bool) EditorOperation {
	return EditorOperation{Kind: OpSpawn, Text: cmd, SelectName: stdinText, HasStdin: hasStdin}
}

func putPosition(w *wire.Writer, p buffer.Position) {
	w.PutUint32(p.Line)
	w.PutUint32(p.Column)
}

func getPosition(r *wire.Reader) (buffer.Position, error) {
	line, err := r.Uint32()
	if err != nil {
		return buffer.Position{}, err
	}
	col, err := r.Uint32()
	if err != nil {
		return buffer.Position{}, err
	}
	return buffer.Position{Line: line, Column: col}, nil
}

func putRange(w *wire.Writer, rg buffer.Range) {
	putPosition(w, rg.From)
	putPosition(w, rg.To)
}

func getRange(r *wire.Reader) (buffer.Range, error) {
	from, err := getPosition(r)
	if err != nil {
		return buffer.Range{}, err
	}
	to, err := getPosition(r)
	if err != nil {
		return buffer.Range{}, err
	}
	return buffer.Range{From: from, To: to}, nil
}

func putCursor(w *wire.Writer, c cursor.Cursor) {
	putPosition(w, c.Anchor)
	putPosition(w, c.Position)
}

func getCursor(r *wire.Reader) (cursor.Cursor, error) {
	anchor, err := getPosition(r)
	if err != nil {
		return cursor.Cursor{}, err
	}
	pos, err := getPosition(r)
	if err != nil {
		return cursor.Cursor{}, err
	}
	return cursor.Cursor{Anchor: anchor, Position: pos}, nil
}

// EncodeEditorOperation appends the wire encoding of op to w.
func EncodeEditorOperation(w *wire.Writer, op EditorOperation) {
	w.PutUint8(uint8(op.Kind))
	switch op.Kind {
	case OpFocused:
		w.PutBool(op.Focused)
	case OpBuffer, OpPath:
		w.PutString(op.Text)
	case OpMode:
		w.PutUint8(uint8(op.Mode))
	case OpInsert:
		putPosition(w, op.Position)
		w.PutString(op.Text)
	case OpDelete:
		putRange(w, op.Range)
	case OpCursorsClear:
		w.PutBool(op.Primary)
	case OpCursor:
		putCursor(w, op.Cursor)
	case OpInputAppend:
		w.PutChar(op.Char)
	case OpInputKeep:
		w.PutUint32(op.Keep)
	case OpSearch, OpSelectClear:
		// no payload
	case OpConfigValues, OpTheme, OpSyntaxRule:
		w.PutBytes(op.Blob)
	case OpSyntaxExtension:
		w.PutString(op.MainExtension)
		w.PutString(op.OtherExtension)
	case OpSelectEntry:
		w.PutString(op.SelectName)
	case OpStatusMessage:
		w.PutUint8(uint8(op.StatusKind))
		w.PutString(op.Text)
	case OpStatusMessageAppend:
		w.PutString(op.Text)
	case OpSpawn:
		w.PutString(op.Text)
		w.PutBool(op.HasStdin)
		if op.HasStdin {
			w.PutString(op.SelectName)
		}
	}
}

// DecodeEditorOperation reads one EditorOperation from r.
func DecodeEditorOperation(r *wire.Reader) (EditorOperation, error) {
	disc, err := r.Uint8()
	if err != nil {
		return EditorOperation{}, err
	}
	kind := OperationKind(disc)
	if kind >= opKindCount {
		return EditorOperation{}, wire.ErrUnknownTag
	}
	switch kind {
	case OpFocused:
		v, err := r.Bool()
		if err != nil {
			return EditorOperation{}, err
		}
		return NewFocused(v), nil
	case OpBuffer:
		s, err := r.String()
		if err != nil {
			return EditorOperation{}, err
		}
		return NewBuffer(s), nil
	case OpPath:
		s, err := r.String()
		if err != nil {
			return EditorOperation{}, err
		}
		return NewPath(s), nil
	case OpMode:
		v, err := r.Uint8()
		if err != nil {
			return EditorOperation{}, err
		}
		return NewMode(Mode(v)), nil
	case OpInsert:
		pos, err := getPosition(r)
		if err != nil {
			return EditorOperation{}, err
		}
		s, err := r.String()
		if err != nil {
			return EditorOperation{}, err
		}
		return NewInsert(pos, s), nil
	case OpDelete:
		rg, err := getRange(r)
		if err != nil {
			return EditorOperation{}, err
		}
		return NewDelete(rg), nil
	case OpCursorsClear:
		v, err := r.Bool()
		if err != nil {
			return EditorOperation{}, err
		}
		return NewCursorsClear(v), nil
	case OpCursor:
		c, err := getCursor(r)
		if err != nil {
			return EditorOperation{}, err
		}
		return NewCursor(c), nil
	case OpInputAppend:
		c, err := r.Char()
		if err != nil {
			return EditorOperation{}, err
		}
		return NewInputAppend(c), nil
	case OpInputKeep:
		v, err := r.Uint32()
		if err != nil {
			return EditorOperation{}, err
		}
		return NewInputKeep(v), nil
	case OpSearch:
		return NewSearch(), nil
	case OpConfigValues:
		b, err := r.Bytes()
		if err != nil {
			return EditorOperation{}, err
		}
		return NewConfigValues(b), nil
	case OpTheme:
		b, err := r.Bytes()
		if err != nil {
			return EditorOperation{}, err
		}
		return NewTheme(b), nil
	case OpSyntaxExtension:
		main, err := r.String()
		if err != nil {
			return EditorOperation{}, err
		}
		other, err := r.String()
		if err != nil {
			return EditorOperation{}, err
		}
		return NewSyntaxExtension(main, other), nil
	case OpSyntaxRule:
		b, err := r.Bytes()
		if err != nil {
			return EditorOperation{}, err
		}
		return NewSyntaxRule(b), nil
	case OpSelectClear:
		return NewSelectClear(), nil
	case OpSelectEntry:
		s, err := r.String()
		if err != nil {
			return EditorOperation{}, err
		}
		return NewSelectEntry(s), nil
	case OpStatusMessage:
		k, err := r.Uint8()
		if err != nil {
			return EditorOperation{}, err
		}
		s, err := r.String()
		if err != nil {
			return EditorOperation{}, err
		}
		return NewStatusMessage(StatusMessageKind(k), s), nil
	case OpStatusMessageAppend:
		s, err := r.String()
		if err != nil {
			return EditorOperation{}, err
		}
		return NewStatusMessageAppend(s), nil
	case OpSpawn:
		cmd, err := r.String()
		if err != nil {
			return EditorOperation{}, err
		}
		hasStdin, err := r.Bool()
		if err != nil {
			return EditorOperation{}, err
		}
		var stdin string
		if hasStdin {
			stdin, err = r.String()
			if err != nil {
				return EditorOperation{}, err
			}
		}
		return NewSpawn(cmd, stdin, hasStdin), nil
	default:
		return EditorOperation{}, wire.ErrUnknownTag
	}
}
