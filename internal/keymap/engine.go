package keymap

import (
	"errors"

	"github.com/dshills/pepperd/internal/proto"
)

var (
	// ErrEmptySequence is returned by Engine.Bind for a zero-length key sequence.
	ErrEmptySequence = errors.New("keymap: empty key sequence")
	// ErrAmbiguousBinding is returned by Engine.Bind when seq would make
	// matching ambiguous against an already-bound sequence in the same mode.
	ErrAmbiguousBinding = errors.New("keymap: ambiguous binding")
)

// Outcome classifies the result of feeding one key into the engine.
type Outcome int

const (
	// Pending: seq so far is a strict prefix of some binding; buffered,
	// awaiting more keys.
	Pending Outcome = iota
	// Expand: seq so far is a full match; Keys holds the bound expansion.
	Expand
	// Flush: no binding can still match; Keys holds every key (including
	// any previously buffered ones) to deliver one-by-one to the mode's
	// native handler.
	Flush
)

// Result is the outcome of one Engine.Feed call.
type Result struct {
	Outcome Outcome
	Keys    []proto.Key
}

// Engine holds one trie per mode plus the in-progress match state for
// whichever mode is currently active (spec §4.J).
type Engine struct {
	tries map[proto.Mode]*trie

	active  proto.Mode
	current *node
	buffer  []proto.Key
}

// NewEngine returns an Engine with an empty trie for every mode.
func NewEngine() *Engine {
	e := &Engine{tries: make(map[proto.Mode]*trie)}
	for _, m := range []proto.Mode{proto.ModeNormal, proto.ModeInsert, proto.ModeReadLine, proto.ModePicker, proto.ModeCommand} {
		e.tries[m] = newTrie()
	}
	return e
}

// Bind registers seq -> expansion for mode.
func (e *Engine) Bind(mode proto.Mode, seq, expansion []proto.Key) error {
	t, ok := e.tries[mode]
	if !ok {
		t = newTrie()
		e.tries[mode] = t
	}
	return t.insert(seq, expansion)
}

// Reset discards any buffered prefix without flushing it. Used for Esc
// cancellation (spec §4.J: "pressing Esc ... discards any pending buffered
// prefix"), where the caller also drives the mode transition to Normal
// separately.
func (e *Engine) Reset() {
	e.current = nil
	e.buffer = nil
}

// Feed advances the matcher for mode with one key and returns what the
// caller should do next. mode changes reset any in-progress match from a
// different mode, since a trie's pending state is only meaningful while
// its own mode stays active.
func (e *Engine) Feed(mode proto.Mode, k proto.Key) Result {
	if e.current != nil && mode != e.active {
		e.Reset()
	}
	e.active = mode

	t, ok := e.tries[mode]
	if !ok {
		return Result{Outcome: Flush, Keys: []proto.Key{k}}
	}

	node := e.current
	if node == nil {
		node = t.root
	}

	child, ok := node.children[k]
	if !ok {
		flushed := e.buffer
		e.Reset()
		if len(flushed) == 0 {
			return Result{Outcome: Flush, Keys: []proto.Key{k}}
		}
		return Result{Outcome: Flush, Keys: append(flushed, k)}
	}

	if child.isTerminal() {
		e.Reset()
		return Result{Outcome: Expand, Keys: child.expansion}
	}

	e.buffer = append(e.buffer, k)
	e.current = child
	return Result{Outcome: Pending}
}
