package transport

import (
	"context"
	"errors"
	"io"
	"net"

	"github.com/dshills/pepperd/internal/proto"
	"github.com/dshills/pepperd/internal/reactor"
)

// Transport errors.
var (
	// ErrQuit signals the editor loop should stop processing events for
	// the connection that produced it (spec's EditorLoop::Quit).
	ErrQuit = errors.New("transport: quit requested")

	// ErrMalformedRecord is returned by receive helpers when a connection
	// sent bytes that do not decode as a valid record. Per spec §4.B,
	// this collapses every wire error into one DeserializeError kind.
	ErrMalformedRecord = errors.New("transport: malformed record")
)

// ClientHandle identifies one server-side client connection slot.
type ClientHandle = proto.ClientHandle

type serverConn struct {
	conn    net.Conn
	id      reactor.StreamId
	pending []byte // undecoded tail carried across ReceiveKeys calls
}

// Manager is the server-side connection manager (spec §4.F): a listener, a
// slotted table of client connections reusing the first empty slot, and a
// deferred-close queue drained once per tick.
type Manager struct {
	reactor  *reactor.Reactor
	listener net.Listener

	connections []*serverConn // nil entries are empty slots
	closed      []ClientHandle
}

// Listen binds addr and returns a Manager ready to accept connections.
func Listen(addr Addr) (*Manager, error) {
	ln, err := listenAddr(addr)
	if err != nil {
		return nil, err
	}
	r := reactor.New()
	if err := r.RegisterListener(ln); err != nil {
		ln.Close()
		return nil, err
	}
	return &Manager{reactor: r, listener: ln}, nil
}

// Close shuts down the listener and every open connection.
func (m *Manager) Close() error {
	for _, c := range m.connections {
		if c != nil {
			c.conn.Close()
		}
	}
	return m.listener.Close()
}

// Wait blocks until the listener or some connection is ready, per
// reactor.Reactor.Wait's ordering guarantee.
func (m *Manager) Wait(ctx context.Context) ([]reactor.StreamId, error) {
	return m.reactor.Wait(ctx)
}

// IsListener reports whether id names the listener stream.
func (m *Manager) IsListener(id reactor.StreamId) bool { return id == reactor.ListenerID }

// AcceptReady processes listener readiness, placing each newly accepted
// connection into the first empty slot (or appending), and returns the
// handles assigned.
func (m *Manager) AcceptReady() ([]ClientHandle, error) {
	conns, err := m.reactor.TakeAccepted()
	handles := make([]ClientHandle, 0, len(conns))
	for _, conn := range conns {
		handles = append(handles, m.attach(conn))
	}
	return handles, err
}

// AttachLocal registers conn (one end of an in-memory net.Pipe) as a
// client connection exactly as AcceptReady would a real accepted socket.
// This is how the locally co-located client shares the wire format with
// remote clients (spec §9 Open Question: "yes, through a memory-backed
// stream, so the code path is identical") without going through the OS
// listener.
func (m *Manager) AttachLocal(conn net.Conn) ClientHandle {
	return m.attach(conn)
}

func (m *Manager) attach(conn net.Conn) ClientHandle {
	id := m.reactor.Register(conn)
	sc := &serverConn{conn: conn, id: id}

	for i, slot := range m.connections {
		if slot == nil {
			m.connections[i] = sc
			return ClientHandle(i)
		}
	}
	m.connections = append(m.connections, sc)
	return ClientHandle(len(m.connections) - 1)
}

// HandleForStream maps a reactor.StreamId back to its ClientHandle, if any
// connection is currently registered under it.
func (m *Manager) HandleForStream(id reactor.StreamId) (ClientHandle, bool) {
	for i, c := range m.connections {
		if c != nil && c.id == id {
			return ClientHandle(i), true
		}
	}
	return 0, false
}

// CloseConnection shuts down the connection at handle and enqueues it for
// unregistration on the next UnregisterClosed call (spec §4.F close).
func (m *Manager) CloseConnection(h ClientHandle) {
	if int(h) >= len(m.connections) || m.connections[h] == nil {
		return
	}
	m.connections[h].conn.Close()
	m.closed = append(m.closed, h)
}

// UnregisterClosed drops every connection enqueued by CloseConnection since
// the last call. Must be invoked exactly once per tick.
func (m *Manager) UnregisterClosed() {
	for _, h := range m.closed {
		if int(h) < len(m.connections) && m.connections[h] != nil {
			m.reactor.Unregister(m.connections[h].id)
			m.connections[h] = nil
		}
	}
	m.closed = m.closed[:0]
}

// ReceiveKeys decodes every complete ClientEvent ready on the connection at
// handle and passes each to callback in order. If callback returns ErrQuit,
// ReceiveKeys stops early and returns ErrQuit.
func (m *Manager) ReceiveKeys(h ClientHandle, callback func(proto.ClientEvent) error) error {
	if int(h) >= len(m.connections) || m.connections[h] == nil {
		return nil
	}
	sc := m.connections[h]

	data, streamErr := m.reactor.Take(sc.id)
	if len(sc.pending) > 0 {
		data = append(sc.pending, data...)
	}

	events, consumed, err := proto.DecodeClientEvents(data)
	if err != nil {
		sc.pending = nil
		return ErrMalformedRecord
	}
	sc.pending = append([]byte(nil), data[consumed:]...)

	for _, ev := range events {
		if cbErr := callback(ev); cbErr != nil {
			return cbErr
		}
	}

	if streamErr != nil {
		m.CloseConnection(h)
	}
	return nil
}

// SendOperations writes the pre-serialized operation bytes to the
// connection at handle. On write failure the connection is closed (spec
// §4.F send_serialized_operations).
func (m *Manager) SendOperations(h ClientHandle, data []byte) {
	if len(data) == 0 {
		return
	}
	if int(h) >= len(m.connections) || m.connections[h] == nil {
		return
	}
	sc := m.connections[h]
	if _, err := sc.conn.Write(data); err != nil {
		m.CloseConnection(h)
	}
}

// RegisterChild registers a non-client stream (a spawned child process's
// stdout or stderr pipe) with the same reactor that multiplexes listener
// and client readiness, per spec §4.L's "child stdout/stderr" branch.
func (m *Manager) RegisterChild(r io.Reader) reactor.StreamId {
	return m.reactor.Register(r)
}

// TakeChild drains whatever bytes are ready on a child stream registered
// via RegisterChild.
func (m *Manager) TakeChild(id reactor.StreamId) ([]byte, error) {
	return m.reactor.Take(id)
}

// UnregisterChild removes a child stream once its process has exited and
// its pipes are drained.
func (m *Manager) UnregisterChild(id reactor.StreamId) {
	m.reactor.Unregister(id)
}

// AllHandles returns the handle of every non-empty connection slot.
func (m *Manager) AllHandles() []ClientHandle {
	out := make([]ClientHandle, 0, len(m.connections))
	for i, c := range m.connections {
		if c != nil {
			out = append(out, ClientHandle(i))
		}
	}
	return out
}
