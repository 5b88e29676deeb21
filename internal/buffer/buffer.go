package buffer

import "strings"

// Buffer holds the full text content of one open file as a slice of lines.
// A Buffer always has at least one line, even when empty.
type Buffer struct {
	lines []string
}

// New returns an empty Buffer (a single empty line).
func New() *Buffer {
	return &Buffer{lines: []string{""}}
}

// FromText splits text on '\n' into a Buffer's lines. A trailing newline
// does not create a trailing empty line beyond what strings.Split already
// yields, matching the convention that line content never itself contains
// the newline.
func FromText(text string) *Buffer {
	lines := strings.Split(text, "\n")
	if len(lines) == 0 {
		lines = []string{""}
	}
	return &Buffer{lines: lines}
}

// Text joins all lines back into a single '\n'-separated string.
func (b *Buffer) Text() string {
	return strings.Join(b.lines, "\n")
}

// LineCount returns the number of lines in the buffer.
func (b *Buffer) LineCount() int { return len(b.lines) }

// Line returns the content of the line at index, or "" if out of range.
func (b *Buffer) Line(index uint32) string {
	if int(index) >= len(b.lines) {
		return ""
	}
	return b.lines[index]
}

// End returns the position just past the last byte of the buffer.
func (b *Buffer) End() Position {
	last := uint32(len(b.lines) - 1)
	return Position{Line: last, Column: uint32(len(b.lines[last]))}
}

// Insert splices text into the buffer at pos, returning the Range it now
// occupies. text may itself contain embedded newlines, in which case the
// insertion spans multiple lines.
func (b *Buffer) Insert(pos Position, text string) Range {
	line := b.Line(pos.Line)
	col := int(pos.Column)
	if col > len(line) {
		col = len(line)
	}
	before, after := line[:col], line[col:]

	inserted := strings.Split(text, "\n")
	if len(inserted) == 1 {
		b.lines[pos.Line] = before + inserted[0] + after
		end := Position{Line: pos.Line, Column: pos.Column + uint32(len(inserted[0]))}
		return Range{From: pos, To: end}
	}

	newLines := make([]string, 0, len(b.lines)+len(inserted)-1)
	newLines = append(newLines, b.lines[:pos.Line]...)
	newLines = append(newLines, before+inserted[0])
	newLines = append(newLines, inserted[1:len(inserted)-1]...)
	lastInserted := inserted[len(inserted)-1]
	newLines = append(newLines, lastInserted+after)
	newLines = append(newLines, b.lines[pos.Line+1:]...)
	b.lines = newLines

	endLine := pos.Line + uint32(len(inserted)-1)
	end := Position{Line: endLine, Column: uint32(len(lastInserted))}
	return Range{From: pos, To: end}
}

// Delete removes the text in r and returns it.
func (b *Buffer) Delete(r Range) string {
	if r.IsEmpty() {
		return ""
	}
	if r.SingleLine() {
		line := b.Line(r.From.Line)
		from, to := int(r.From.Column), int(r.To.Column)
		removed := line[from:to]
		b.lines[r.From.Line] = line[:from] + line[to:]
		return removed
	}

	firstLine := b.Line(r.From.Line)
	lastLine := b.Line(r.To.Line)
	from, to := int(r.From.Column), int(r.To.Column)

	var removed strings.Builder
	removed.WriteString(firstLine[from:])
	for i := r.From.Line + 1; i < r.To.Line; i++ {
		removed.WriteByte('\n')
		removed.WriteString(b.lines[i])
	}
	removed.WriteByte('\n')
	removed.WriteString(lastLine[:to])

	merged := firstLine[:from] + lastLine[to:]
	newLines := make([]string, 0, len(b.lines)-int(r.To.Line-r.From.Line))
	newLines = append(newLines, b.lines[:r.From.Line]...)
	newLines = append(newLines, merged)
	newLines = append(newLines, b.lines[r.To.Line+1:]...)
	b.lines = newLines

	return removed.String()
}
