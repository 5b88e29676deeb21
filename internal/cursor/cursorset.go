package cursor

import (
	"sort"

	"github.com/dshills/pepperd/internal/buffer"
)

// Set manages the server's multi-cursor state for one buffer view.
// Cursors are kept sorted by range start and merged when overlapping; the
// first cursor is the primary cursor (spec's CursorsClear(primary) and
// Cursor(cursor) operations address it directly).
type Set struct {
	cursors []Cursor
}

// NewSet returns a cursor set with a single cursor at pos.
func NewSet(pos buffer.Position) *Set {
	return &Set{cursors: []Cursor{NewCursor(pos)}}
}

// Primary returns the primary (first) cursor.
func (s *Set) Primary() Cursor {
	if len(s.cursors) == 0 {
		return Cursor{}
	}
	return s.cursors[0]
}

// All returns a copy of every cursor in the set.
func (s *Set) All() []Cursor {
	out := make([]Cursor, len(s.cursors))
	copy(out, s.cursors)
	return out
}

// Count returns the number of cursors in the set.
func (s *Set) Count() int { return len(s.cursors) }

// IsMulti reports whether more than one cursor is active.
func (s *Set) IsMulti() bool { return len(s.cursors) > 1 }

// Set replaces all cursors with a single cursor.
func (s *Set) Set(c Cursor) { s.cursors = []Cursor{c} }

// SetAll replaces every cursor in the set, then normalizes.
func (s *Set) SetAll(cs []Cursor) {
	if len(cs) == 0 {
		s.cursors = []Cursor{NewCursor(buffer.Position{})}
		return
	}
	s.cursors = append([]Cursor(nil), cs...)
	s.normalize()
}

// Add adds a cursor to the set, merging with overlapping ones.
func (s *Set) Add(c Cursor) {
	s.cursors = append(s.cursors, c)
	s.normalize()
}

// Clear removes every cursor but the primary (spec's CursorsClear).
func (s *Set) Clear() {
	if len(s.cursors) > 1 {
		s.cursors = s.cursors[:1]
	}
}

// CollapseAll collapses every cursor to its Position, clearing selections.
func (s *Set) CollapseAll() {
	for i, c := range s.cursors {
		s.cursors[i] = c.Collapse()
	}
	s.normalize()
}

// Ranges returns the selection range of every cursor in the set.
func (s *Set) Ranges() []buffer.Range {
	out := make([]buffer.Range, len(s.cursors))
	for i, c := range s.cursors {
		out[i] = c.Range()
	}
	return out
}

// normalize sorts cursors by range start and merges overlapping or
// touching ones into the earlier cursor; a merge that extends it leaves
// its anchor at the range start and its position at the range end.
func (s *Set) normalize() {
	if len(s.cursors) <= 1 {
		return
	}
	sort.Slice(s.cursors, func(i, j int) bool {
		ri, rj := s.cursors[i].Range(), s.cursors[j].Range()
		if !ri.From.Equal(rj.From) {
			return ri.From.Less(rj.From)
		}
		return rj.To.Less(ri.To)
	})

	merged := s.cursors[:1]
	for _, c := range s.cursors[1:] {
		last := &merged[len(merged)-1]
		lastRange := last.Range()
		cRange := c.Range()
		if cRange.From.Less(lastRange.To) || cRange.From.Equal(lastRange.To) {
			if lastRange.To.Less(cRange.To) {
				*last = Cursor{Anchor: lastRange.From, Position: cRange.To}
			}
			continue
		}
		merged = append(merged, c)
	}
	s.cursors = merged
}
