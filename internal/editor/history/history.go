// Package history implements the per-client navigation jump list supplemented
// from original_source/src/navigation_history.rs (§13 of SPEC_FULL.md): a
// back/forward stack of cursor positions visited by a session, with the
// same insert-vs-iterate state machine as the original so that jumping
// back and then typing starts a fresh forward branch instead of replaying
// stale history.
//
// The original keys each snapshot by buffer handle, since one client could
// switch between several open buffer views. This port gives each Session
// exactly one buffer, so a snapshot only needs a cursor position. Switching
// files (Open) records the position being left and keeps the rest of the
// history; a later jump lands on that line and column in whichever file is
// then open.
package history

import "github.com/dshills/pepperd/internal/buffer"

type state int

const (
	stateIterIndex state = iota
	stateInsert
)

// History is one client's navigation jump list.
type History struct {
	snapshots []buffer.Position
	state     state
	index     int
}

// New returns an empty history, positioned as if nothing had been visited.
func New() *History {
	return &History{state: stateIterIndex, index: 0}
}

// Add records pos as the current location, per original's add_snapshot:
// any forward branch beyond the current iteration point is discarded, and
// a position identical to the last recorded one is not duplicated.
func (h *History) Add(pos buffer.Position) {
	if h.state == stateIterIndex {
		h.snapshots = h.snapshots[:h.index]
	}
	h.state = stateInsert

	if n := len(h.snapshots); n > 0 && h.snapshots[n-1] == pos {
		return
	}
	h.snapshots = append(h.snapshots, pos)
}

// Back moves one step backward in history, returning the position to jump
// to. ok is false if there is nowhere to go. current is the session's
// present cursor position, recorded as the forward anchor the first time
// Back is called after a plain Insert (original_source: "if history_index
// == snapshots.len(), save the current point before stepping back").
func (h *History) Back(current buffer.Position) (buffer.Position, bool) {
	index := h.currentIndex()
	if index == 0 {
		return buffer.Position{}, false
	}
	if index == len(h.snapshots) {
		h.Add(current)
	}
	index--
	h.state = stateIterIndex
	h.index = index
	return h.snapshots[index], true
}

// Forward moves one step forward in history, returning the position to
// jump to. ok is false if there is nowhere to go.
func (h *History) Forward() (buffer.Position, bool) {
	index := h.currentIndex()
	if index+1 >= len(h.snapshots) {
		return buffer.Position{}, false
	}
	index++
	h.state = stateIterIndex
	h.index = index
	return h.snapshots[index], true
}

func (h *History) currentIndex() int {
	if h.state == stateIterIndex {
		return h.index
	}
	return len(h.snapshots)
}

// Reset discards every recorded snapshot, per spec.md §3 Lifecycles: a
// client's navigation history dies with it, so a fresh Session should
// start from an empty History rather than reusing one.
func (h *History) Reset() {
	h.snapshots = nil
	h.state = stateIterIndex
	h.index = 0
}
