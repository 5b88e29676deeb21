// Package transport implements spec components A and F: the
// framed byte-buffer reader (ReadBuf/ReadGuard) and the server-side
// connection manager that multiplexes many client connections over
// internal/reactor, plus the client-side counterpart that talks to one
// server connection.
//
// Grounded on original_source's src/connection.rs (ReadBuf, ReadGuard,
// ConnectionWithClientCollection, ConnectionWithServer) for algorithm and
// on the teacher's internal/integration/debug/dap/transport.go for the Go
// idiom of a framed net.Conn reader/writer pair.
package transport
