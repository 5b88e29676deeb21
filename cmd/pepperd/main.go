// Command pepperd is the modal text editor's single binary: it plays
// either role described by spec §6, server or client, deciding which by
// trying to attach to an already-running instance first.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/pepperd/internal/client"
	"github.com/dshills/pepperd/internal/client/backend"
	"github.com/dshills/pepperd/internal/config"
	"github.com/dshills/pepperd/internal/editor"
	"github.com/dshills/pepperd/internal/proto"
	"github.com/dshills/pepperd/internal/transport"
)

// logger reports server lifecycle events (bind, shutdown) per
// logging.file/logging.level; silent until loadSettings configures it.
// User-facing CLI errors stay on fmt.Fprintln(os.Stderr, ...) as before —
// this is the separate, optional file-backed event log SPEC_FULL §10's
// logging section describes.
var logger = log.New(io.Discard, "", log.LstdFlags)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	fs := flag.NewFlagSet("pepperd", flag.ContinueOnError)
	asServer := fs.Bool("as-server", false, "never attach to a running instance; always bind a fresh socket")
	configPath := fs.String("config", "", "source a command file before entering the main loop")
	socketPath := fs.String("socket", "", "override the socket path ($PEPPERD_SOCKET, or a per-user default)")
	if err := fs.Parse(argv); err != nil {
		return 1
	}
	paths := fs.Args()

	addr := transport.ResolveAddr(*socketPath)

	if !*asServer {
		if conn, err := transport.Dial(addr); err == nil {
			return runClient(conn, paths)
		}
	}
	return runServer(addr, *configPath, paths)
}

// runServer binds addr, becomes the authoritative editor process, and
// attaches its own terminal as the first client over an in-memory pipe
// (spec §9: the local client shares the wire format through a
// memory-backed stream rather than a special-cased in-process API).
func runServer(addr transport.Addr, configPath string, paths []string) int {
	mgr, err := transport.Listen(addr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "pepperd: bind:", err)
		return 1
	}
	defer mgr.Close()

	ed := editor.New(mgr)
	loadSettings(ed)
	logger.Printf("listening on %s", addr.Path)
	if configPath != "" {
		if err := ed.Source(configPath); err != nil {
			fmt.Fprintln(os.Stderr, "pepperd:", err)
			return 1
		}
	}

	localSide, remoteSide := net.Pipe()
	mgr.AttachLocal(remoteSide)

	done := make(chan error, 1)
	go func() { done <- ed.Run(context.Background()) }()

	exit := runClient(transport.NewConn(localSide), paths)

	// The locally co-located client doubles as this process's reason to
	// keep running; once it quits, tear the whole server down rather than
	// linger as an unreachable daemon. mgr.Close (deferred) stops the
	// listener and every connection, which unblocks ed.Run's Wait with an
	// error that is expected here, not a fault to report.
	mgr.Close()
	<-done
	ed.Shutdown(context.Background())
	logger.Printf("shut down")
	return exit
}

// loadSettings reads the layered TOML settings internal/config manages
// (user + workspace + environment, SPEC_FULL §11's settings layer) and
// applies the parts the editor and client act on at startup: the editor,
// vim, and LSP sections (internal/editor.ApplySettings), the logging
// section (configureLogger), the plugins table (ed.LoadPlugins), and a
// theme document, if the configured theme name resolves to a file under
// the user config directory's themes/ subdirectory. A missing or
// unreadable theme file is not an error — the client falls back to its
// own DefaultTheme until one arrives.
func loadSettings(ed *editor.Editor) {
	cfg := config.New(config.WithWatcher(false))
	if err := cfg.Load(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "pepperd: config:", err)
		return
	}
	defer cfg.Close()

	ed.ApplySettings(cfg.Editor(), cfg.Vim(), cfg.LSP())
	configureLogger(cfg.Logging())
	if err := ed.LoadPlugins(cfg.Plugins()); err != nil {
		fmt.Fprintln(os.Stderr, "pepperd: plugin:", err)
	}

	themeName := cfg.UI().Theme
	if themeName == "" {
		return
	}
	dir := cfg.Paths().ConfigDir
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config", "pepperd")
	}
	blob, err := os.ReadFile(filepath.Join(dir, "themes", themeName+".toml"))
	if err != nil {
		return
	}
	ed.SetTheme(blob)
}

// configureLogger points the lifecycle logger at logging.file (falling
// back to stderr) and silences it entirely for logging.level "off"/"none".
// logging.maxSize/maxBackups have no effect: rotation needs a library
// this codebase doesn't carry, and a single long-lived server process
// doesn't rotate its own log file out from under itself.
func configureLogger(cfg config.LoggingConfig) {
	if strings.EqualFold(cfg.Level, "off") || strings.EqualFold(cfg.Level, "none") {
		logger.SetOutput(io.Discard)
		return
	}
	out := io.Writer(os.Stderr)
	if cfg.File != "" {
		if f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644); err == nil {
			out = f
		}
	}
	logger.SetOutput(out)
	logger.SetPrefix("[" + strings.ToUpper(cfg.Level) + "] ")
}

// runClient drives one terminal session against conn, whether it is a
// socket connection to a remote instance or the local in-memory pipe end
// a freshly started server attached to itself.
func runClient(conn *transport.ServerConn, paths []string) int {
	term, err := backend.NewTerminal()
	if err != nil {
		fmt.Fprintln(os.Stderr, "pepperd: terminal:", err)
		return 1
	}

	for _, p := range paths {
		conn.QueueEvent(proto.NewCommandEvent(nil, "open "+p))
	}
	if err := conn.Flush(); err != nil {
		fmt.Fprintln(os.Stderr, "pepperd:", err)
		return 2
	}

	app := client.NewApp(conn, term)
	if err := app.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "pepperd:", err)
		return 2
	}
	return 0
}
