package pluginscript

import "errors"

// Errors for Lua state operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrExecutionTimeout names an execution timeout. No function in this
	// package returns it, since the execution timeout is not enforced.
	ErrExecutionTimeout = errors.New("lua execution timeout")

	// ErrInstructionLimit names an exceeded instruction limit. No function
	// in this package returns it, since instructions are not counted while
	// Lua code runs.
	ErrInstructionLimit = errors.New("lua instruction limit exceeded")
)
