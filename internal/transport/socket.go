package transport

import (
	"fmt"
	"os"
	"path/filepath"
)

// socketEnvVar overrides the socket path (spec §6's EDITOR_SOCKET,
// renamed to match this project's binary name).
const socketEnvVar = "PEPPERD_SOCKET"

// Addr names the local stream transport address: a filesystem path to a
// UNIX domain socket on POSIX, or a pipe name on Windows.
type Addr struct {
	Path string
}

// ResolveAddr returns the socket address to use: explicit (e.g. from
// --socket) if non-empty, else PEPPERD_SOCKET if set, else a per-user
// default path (pepperd-<uid>.sock under XDG_RUNTIME_DIR or the temp dir)
// so editor instances of different users never collide.
func ResolveAddr(explicit string) Addr {
	if explicit != "" {
		return Addr{Path: explicit}
	}
	if env := os.Getenv(socketEnvVar); env != "" {
		return Addr{Path: env}
	}
	return Addr{Path: defaultSocketPath()}
}

func defaultSocketPath() string {
	dir := os.TempDir()
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		dir = runtimeDir
	}
	return filepath.Join(dir, fmt.Sprintf("pepperd-%d.sock", os.Getuid()))
}
