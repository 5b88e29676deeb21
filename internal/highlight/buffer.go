package highlight

import (
	"sort"

	"github.com/dshills/pepperd/internal/buffer"
	"github.com/dshills/pepperd/internal/syntax"
)

// line is the per-line overlay entry: the carry state produced by parsing
// it, and the tokens it parsed into.
type line struct {
	state  syntax.LineState
	tokens []syntax.Token
}

// Buffer is the highlight overlay for one text buffer: one line entry per
// buffer line, kept in lock-step with inserts and deletes.
type Buffer struct {
	lines []line
}

// New returns an empty overlay.
func New() *Buffer {
	return &Buffer{}
}

// Clear discards all overlay state.
func (h *Buffer) Clear() {
	h.lines = nil
}

// HighlightAll rehighlights every line of buf against s. This is the
// canonical full-rehighlight reference that the incremental operations
// below must converge to (spec property 5).
func (h *Buffer) HighlightAll(s *syntax.Syntax, buf *buffer.Buffer) {
	n := buf.LineCount()
	h.lines = make([]line, n)

	prev := syntax.Finished
	for i := 0; i < n; i++ {
		tokens, state := s.ParseLine(buf.Line(uint32(i)), prev)
		h.lines[i] = line{state: state, tokens: tokens}
		prev = state
	}
}

func (h *Buffer) previousLineKindAt(index int) syntax.LineState {
	if index == 0 {
		return syntax.Finished
	}
	return h.lines[index-1].state
}

// OnInsert repairs the overlay after text was inserted spanning r (the
// range Buffer.Insert returned). A = r.From.Line, B = r.To.Line.
func (h *Buffer) OnInsert(s *syntax.Syntax, buf *buffer.Buffer, r buffer.Range) {
	a := int(r.From.Line)
	b := int(r.To.Line)

	prev := h.previousLineKindAt(a)

	insertAt := a + 1
	insertCount := b - a
	if insertCount > 0 {
		grown := make([]line, len(h.lines)+insertCount)
		copy(grown, h.lines[:insertAt])
		copy(grown[insertAt+insertCount:], h.lines[insertAt:])
		h.lines = grown
	}

	for i := a; i <= b; i++ {
		tokens, state := s.ParseLine(buf.Line(uint32(i)), prev)
		h.lines[i] = line{state: state, tokens: tokens}
		prev = state
	}

	h.fixHighlightFrom(s, buf, prev, b+1)
}

// OnDelete repairs the overlay after the text in r was removed. A point
// delete (r.From.Line == r.To.Line) leaves the overlay line count
// unchanged and re-parses that line; as after any edit, fixHighlightFrom
// then re-parses following lines only while the carried state differs.
func (h *Buffer) OnDelete(s *syntax.Syntax, buf *buffer.Buffer, r buffer.Range) {
	from := int(r.From.Line)
	to := int(r.To.Line)

	prev := h.previousLineKindAt(from)

	if to > from {
		h.lines = append(h.lines[:from], h.lines[to:]...)
	}

	tokens, state := s.ParseLine(buf.Line(uint32(from)), prev)
	h.lines[from] = line{state: state, tokens: tokens}
	prev = state

	h.fixHighlightFrom(s, buf, prev, from+1)
}

func (h *Buffer) fixHighlightFrom(s *syntax.Syntax, buf *buffer.Buffer, prev syntax.LineState, fixFrom int) {
	if fixFrom > len(h.lines) {
		return
	}
	for i := fixFrom; i < len(h.lines); i++ {
		if prev.IsFinished() && h.lines[i].state.IsFinished() {
			return
		}
		tokens, state := s.ParseLine(buf.Line(uint32(i)), prev)
		h.lines[i] = line{state: state, tokens: tokens}
		prev = state
	}
}

// FindTokenKindAt returns the TokenKind of the token containing charIndex
// on lineIndex, or TokenText if lineIndex is out of range or no token
// contains charIndex.
func (h *Buffer) FindTokenKindAt(lineIndex, charIndex int) syntax.TokenKind {
	if lineIndex < 0 || lineIndex >= len(h.lines) {
		return syntax.TokenText
	}
	tokens := h.lines[lineIndex].tokens
	i := sort.Search(len(tokens), func(i int) bool { return tokens[i].To > charIndex })
	if i < len(tokens) && tokens[i].From <= charIndex && charIndex < tokens[i].To {
		return tokens[i].Kind
	}
	return syntax.TokenText
}

// LineTokens returns the tokens for lineIndex, or nil if out of range.
func (h *Buffer) LineTokens(lineIndex int) []syntax.Token {
	if lineIndex < 0 || lineIndex >= len(h.lines) {
		return nil
	}
	return h.lines[lineIndex].tokens
}

// LineCount returns the number of overlay lines currently tracked.
func (h *Buffer) LineCount() int { return len(h.lines) }
