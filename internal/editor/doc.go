// Package editor implements the editor aggregate and main loop of spec
// §4.L: the single mutable context threaded through every dispatch, and
// the reactor-driven loop wiring component E (reactor) to F (transport),
// J (keymap), K (command interpreter), H (highlight overlay), and D
// (operation codec).
//
// Session is grounded on original_source/src/client.rs's Client struct:
// the same per-connection fields (mode, path, buffer, highlighted_buffer,
// main_cursor/cursors, has_focus, input, status_message_kind/text) become
// this package's editor.Session, rebased onto this repo's buffer/cursor/
// highlight packages instead of the original's rope-backed BufferContent.
// The loop body is grounded on the teacher's internal/app/eventloop.go
// dispatch-by-event-kind structure, adapted from tcell backend events to
// the reactor's StreamId-batch Wait result.
//
// The editor/history subpackage supplements the spec with the per-client
// jump list from original_source/src/navigation_history.rs (SPEC_FULL.md
// §13), wired into the command interpreter as jump-back/jump-forward.
package editor
