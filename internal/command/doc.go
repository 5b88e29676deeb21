// Package command implements the textual command interpreter of spec
// §4.K: a tokenizer for the command line grammar (words, quoted strings,
// -flag/-flag=value, and a leading "!" bang after the command name), a
// flat registry of {builtins, macros, per-client request stubs}, and
// macro capture/invocation with named register parameters.
//
// The tokenizer's grammar and the builtin catalogue (quit, open, save,
// close, execute-keys, print, try/catch, ...) are grounded on
// original_source/src/command/builtin.rs, the only surviving piece of the
// original command system (command/mod.rs, which held the actual
// CommandTokenIter, was filtered out of the retrieval pack). The flat
// registry shape — one map from name to a handler plus a Source string —
// is grounded on the teacher's internal/input/palette.Command, trading its
// Lua-oriented map[string]any argument convention for the positional
// Args/Flags a command-line command actually receives.
package command
