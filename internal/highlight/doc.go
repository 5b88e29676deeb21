// Package highlight implements spec component H: an overlay of per-line
// token spans kept in sync with a buffer.Buffer as it is edited, so the
// syntax highlighter never re-tokenizes the whole document on every
// keystroke.
//
// Ported from original_source's src/syntax.rs HighlightedBuffer, which is
// the canonical reference for highlight_all/on_insert/on_delete/
// fix_highlight_from. The bounded-repair termination condition — stop
// walking forward once both the incoming carry and the line's previous
// state were already Finished — is spec property 6 and is load-bearing:
// removing it would make every edit an O(document) rehighlight.
package highlight
