package transport

import (
	"net"
	"time"

	"github.com/dshills/pepperd/internal/proto"
	"github.com/dshills/pepperd/internal/wire"
)

// pollInterval bounds how long ReceiveOperations blocks waiting for data
// before returning control to the caller's own event loop (e.g. to also
// service local terminal input).
const pollInterval = 50 * time.Millisecond

// ServerConn is the client-side connection to the editor server (original's
// ConnectionWithServer): one socket, a ReadBuf for incoming
// EditorOperations, and an outgoing ClientEvent writer.
type ServerConn struct {
	conn    net.Conn
	readBuf *ReadBuf
	out     *wire.Writer
}

// Dial attempts to connect to a running server at addr. Attach fails the
// same way a plain dial failure would; the caller decides whether to fall
// back to starting a server of its own (spec §6).
func Dial(addr Addr) (*ServerConn, error) {
	conn, err := dialAddr(addr)
	if err != nil {
		return nil, err
	}
	return NewConn(conn), nil
}

// NewConn wraps an already-established net.Conn as a ServerConn. This is
// how the locally co-located client attaches over the in-memory net.Pipe
// half Manager.AttachLocal registers server-side, sharing the exact wire
// format and decode path a remote socket client uses (spec §9 Open
// Question).
func NewConn(conn net.Conn) *ServerConn {
	return &ServerConn{conn: conn, readBuf: NewReadBuf(), out: wire.NewWriter(256)}
}

// Close shuts down the connection.
func (c *ServerConn) Close() error {
	return c.conn.Close()
}

// QueueEvent appends ev to the outgoing batch without sending it yet.
func (c *ServerConn) QueueEvent(ev proto.ClientEvent) {
	proto.EncodeClientEvent(c.out, ev)
}

// Flush writes every queued ClientEvent to the server in one write and
// clears the outgoing batch.
func (c *ServerConn) Flush() error {
	if c.out.Len() == 0 {
		return nil
	}
	_, err := c.conn.Write(c.out.Bytes())
	c.out.Reset()
	return err
}

// ReceiveOperations polls the connection for up to pollInterval and
// delivers every complete EditorOperation decoded to callback, in order.
// It returns (false, nil) on a clean timeout (nothing arrived), (true, nil)
// after delivering at least one operation, and a non-nil error if the
// connection failed or sent a malformed record.
func (c *ServerConn) ReceiveOperations(callback func(proto.EditorOperation)) (bool, error) {
	c.conn.SetReadDeadline(time.Now().Add(pollInterval))
	defer c.conn.SetReadDeadline(time.Time{})

	g := c.readBuf.Guard()
	defer g.Release()

	if err := g.ReadFrom(c.conn); err != nil {
		return false, err
	}

	ops, consumed, err := proto.DecodeEditorOperations(g.Bytes())
	g.Consume(consumed)
	if err != nil {
		return false, ErrMalformedRecord
	}
	for _, op := range ops {
		callback(op)
	}
	return len(ops) > 0, nil
}
