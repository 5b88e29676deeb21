// Package keymap implements the modal key-sequence-to-action matcher
// described in spec §4.J: a per-mode trie mapping key sequences to an
// expansion key sequence, with prefix (Pending), full-match (Expand), and
// fall-through (Flush) outcomes.
//
// original_source carries no keymap/binding file of its own (the original
// editor's keymaps are loaded as Lua tables via its script engine, not a
// dedicated Rust module), so this package is grounded on the teacher's
// internal/input/keymap package: Keymap/Registry/PrefixTree there play the
// same role, trading the teacher's string-keyed trie nodes (one entry per
// key.Event.String()) for nodes keyed directly on proto.Key, and trading
// the teacher's priority/condition matching (multiple keymaps can bind the
// same prefix) for the single frozen trie per Mode that spec §4.J
// describes.
package keymap
