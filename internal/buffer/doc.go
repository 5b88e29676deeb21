// Package buffer implements spec component I's text storage contract: line
// content, positions, ranges, and the insert/delete edit operations that
// drive the syntax highlighter's incremental repair (internal/highlight).
//
// The spec explicitly scopes component I down to "a minimal contract only"
// (10% of the core budget): callers need line-indexed text and byte-offset
// positions within a line, not a general-purpose rope. Buffer therefore
// stores content as a slice of lines rather than the balanced-tree rope the
// teacher codebase uses elsewhere for large-document editing — see
// DESIGN.md for why that larger structure was not carried over.
package buffer
