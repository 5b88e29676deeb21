// Package reactor implements spec component E's event registry with a
// goroutine-per-stream, channel-fan-in Reactor in place of a platform
// multiplexer (kqueue/epoll/WaitForMultipleObjects).
//
// Go has no portable syscall-level equivalent to those APIs without cgo or
// per-OS build files, so this substitutes the pattern the teacher already
// uses at internal/app/eventloop.go's startInputPolling: one blocking-read
// goroutine per registered stream, feeding a single shared channel that
// Wait drains. Registration order is preserved by tagging every delivered
// readiness with the StreamId the caller registered it under and sorting
// one wake-up's batch by registration index before returning, which
// satisfies spec §4.E's ordering guarantee ("ready events for distinct
// streams are processed in registration order; ordering between events of
// the same stream is FIFO") without needing OS-level readiness ordering.
// This substitution is recorded as an explicit Open-Question-style
// resolution in DESIGN.md.
package reactor
