package editor

import (
	"github.com/dshills/pepperd/internal/buffer"
	"github.com/dshills/pepperd/internal/cursor"
	"github.com/dshills/pepperd/internal/editor/history"
	"github.com/dshills/pepperd/internal/highlight"
	"github.com/dshills/pepperd/internal/proto"
	"github.com/dshills/pepperd/internal/syntax"
	"github.com/dshills/pepperd/internal/wire"
)

// Session is one connected client's editing state (original's Client
// struct in client.rs).
type Session struct {
	Path          string
	Buffer        *buffer.Buffer
	Cursors       *cursor.Set
	SyntaxHandle  syntax.Handle
	Highlighted   *highlight.Buffer
	Mode          proto.Mode
	HasFocus      bool
	Input         string
	StatusKind    proto.StatusMessageKind
	StatusText    string
	History       *history.History

	out *wire.Writer
}

// NewSession returns a freshly attached client session: an empty buffer,
// one cursor at the origin, Normal mode, focused.
func NewSession() *Session {
	buf := buffer.New()
	hl := highlight.New()
	hl.HighlightAll(syntax.New(), buf)
	return &Session{
		Buffer:      buf,
		Cursors:     cursor.NewSet(buffer.Position{}),
		Highlighted: hl,
		Mode:        proto.ModeNormal,
		HasFocus:    true,
		History:     history.New(),
		out:         wire.NewWriter(256),
	}
}

// enqueue appends op to this session's pending outbound batch.
func (s *Session) enqueue(op proto.EditorOperation) {
	proto.EncodeEditorOperation(s.out, op)
}

// drain returns and clears the pending outbound batch.
func (s *Session) drain() []byte {
	if s.out.Len() == 0 {
		return nil
	}
	data := append([]byte(nil), s.out.Bytes()...)
	s.out.Reset()
	return data
}
