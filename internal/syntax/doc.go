// Package syntax implements spec component G: a per-language rule set and
// the incremental, per-line tokenizer that drives internal/highlight.
//
// The tokenizing algorithm (Syntax.ParseLine) is a direct port of the
// teacher corpus's original_source reference (src/syntax.rs Syntax::parse_line):
// same carry state machine, same max-length-wins-with-first-rule-tiebreak
// rule selection, same char-boundary realignment. Pattern is kept as the
// black-box interface spec §4.G describes; LiteralPattern and
// DelimitedPattern are the two concrete matchers exercised by the tests
// ported from the original's multiline-comment and string-literal cases.
package syntax
