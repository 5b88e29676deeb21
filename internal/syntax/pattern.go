package syntax

import "strings"

// MatchKind discriminates a pattern match attempt's outcome.
type MatchKind uint8

const (
	// MatchOk means the pattern matched len bytes from the start of the
	// input and needs no further lines.
	MatchOk MatchKind = iota
	// MatchErr means the pattern did not match at the start of the input.
	MatchErr
	// MatchPending means the pattern matched a prefix but needs more input
	// from subsequent lines to close; State carries whatever progress the
	// pattern needs to resume on the next line.
	MatchPending
)

// MatchResult is the result of one Pattern match attempt.
type MatchResult struct {
	Kind  MatchKind
	Len   int
	State PatternState
}

func okResult(n int) MatchResult { return MatchResult{Kind: MatchOk, Len: n} }
func errResult() MatchResult     { return MatchResult{Kind: MatchErr} }
func pendingResult(s PatternState) MatchResult {
	return MatchResult{Kind: MatchPending, State: s}
}

// PatternState is opaque progress a Pattern carries across an Unfinished
// line boundary. Concrete patterns decide what, if anything, they need to
// remember.
type PatternState struct {
	data any
}

// Pattern is a black-box matcher per spec §4.G: given a byte slice it either
// matches a prefix fully (Ok), fails outright (Err), or matches a prefix and
// needs the following line's content to finish (Pending).
type Pattern interface {
	// Matches attempts a fresh match at the start of s.
	Matches(s string) MatchResult
	// MatchesWithState resumes a Pending match using state saved from the
	// previous line.
	MatchesWithState(s string, state PatternState) MatchResult
}

// literalPattern matches an exact literal prefix.
type literalPattern struct {
	text string
}

// NewLiteralPattern returns a Pattern matching the exact literal text at
// the start of the input.
func NewLiteralPattern(text string) Pattern {
	return literalPattern{text: text}
}

func (p literalPattern) Matches(s string) MatchResult {
	if strings.HasPrefix(s, p.text) {
		return okResult(len(p.text))
	}
	return errResult()
}

func (p literalPattern) MatchesWithState(s string, _ PatternState) MatchResult {
	return p.Matches(s)
}

// delimitedPattern matches from an opening literal to the next occurrence
// of a closing literal, spanning lines if the closer isn't found before
// end of input (e.g. block comments, multi-line strings). It is grounded
// on the original's "/*{!(*/).$}" and "'{!'.$}" patterns.
type delimitedPattern struct {
	open  string
	close string
}

// NewDelimitedPattern returns a Pattern that matches from open to the next
// close, continuing across lines (as Pending) when close is not found
// before the end of the current line.
func NewDelimitedPattern(open, close string) Pattern {
	return delimitedPattern{open: open, close: close}
}

func (p delimitedPattern) Matches(s string) MatchResult {
	if !strings.HasPrefix(s, p.open) {
		return errResult()
	}
	rest := s[len(p.open):]
	if idx := strings.Index(rest, p.close); idx >= 0 {
		return okResult(len(p.open) + idx + len(p.close))
	}
	return pendingResult(PatternState{})
}

func (p delimitedPattern) MatchesWithState(s string, _ PatternState) MatchResult {
	if idx := strings.Index(s, p.close); idx >= 0 {
		return okResult(idx + len(p.close))
	}
	return pendingResult(PatternState{})
}
