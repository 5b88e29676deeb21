//go:build !windows

package transport

import (
	"net"
	"os"
)

// listenAddr binds a UNIX domain socket at addr.Path. If a stale socket
// file exists with nothing listening behind it, it is removed and rebound
// (spec §6: "subsequent instances that find an existing socket attempt to
// connect as clients and fall back to creating a new socket if the
// connect fails" — the fallback-to-bind half of that lives here).
func listenAddr(addr Addr) (net.Listener, error) {
	ln, err := net.Listen("unix", addr.Path)
	if err != nil {
		if _, dialErr := net.Dial("unix", addr.Path); dialErr != nil {
			os.Remove(addr.Path)
			return net.Listen("unix", addr.Path)
		}
		return nil, err
	}
	return ln, nil
}

// dialAddr attempts to connect to an already-running server at addr.Path.
func dialAddr(addr Addr) (net.Conn, error) {
	return net.Dial("unix", addr.Path)
}
