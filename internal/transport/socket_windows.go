//go:build windows

package transport

import (
	"net"
	"path/filepath"

	"github.com/Microsoft/go-winio"
)

// pipeName converts a filesystem-style Addr.Path into a Windows named pipe
// name, since Addr.Path is computed the same way on every platform.
func pipeName(addr Addr) string {
	return `\\.\pipe\` + filepath.Base(addr.Path)
}

// listenAddr creates a named pipe listener at addr.Path's basename.
func listenAddr(addr Addr) (net.Listener, error) {
	return winio.ListenPipe(pipeName(addr), nil)
}

// dialAddr attempts to connect to an already-running server's named pipe.
func dialAddr(addr Addr) (net.Conn, error) {
	return winio.DialPipe(pipeName(addr), nil)
}
