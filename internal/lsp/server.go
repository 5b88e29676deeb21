package lsp

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/match"
	"github.com/tidwall/sjson"
)

// ServerStatus is a language server's lifecycle state.
type ServerStatus int

const (
	ServerStatusStopped ServerStatus = iota
	ServerStatusStarting
	ServerStatusReady
	ServerStatusShuttingDown
	ServerStatusError
)

func (s ServerStatus) String() string {
	switch s {
	case ServerStatusStopped:
		return "stopped"
	case ServerStatusStarting:
		return "starting"
	case ServerStatusReady:
		return "ready"
	case ServerStatusShuttingDown:
		return "shutting down"
	case ServerStatusError:
		return "error"
	default:
		return "unknown"
	}
}

// ServerConfig names how to launch and match files against one language
// server subprocess.
type ServerConfig struct {
	Command      string
	Args         []string
	Env          map[string]string
	WorkDir      string
	LanguageIDs  []string
	FilePatterns []string
	Timeout      time.Duration
}

// Server is one running language server: its subprocess, its JSON-RPC
// Transport, and the diagnostics it has published — everything else the
// teacher's lsp package exposed (completion, navigation, code actions,
// rename, formatting) is outside SPEC_FULL.md's declared LSP surface
// ("a consumer of editor events and a producer of buffer diagnostics")
// and was dropped rather than carried along unused.
type Server struct {
	mu sync.Mutex

	config     ServerConfig
	languageID string
	instanceID string

	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    io.ReadCloser
	transport *Transport

	status       atomic.Int32
	capabilities ServerCapabilities

	documents   map[DocumentURI]int // uri -> version
	documentsMu sync.RWMutex

	diagnostics *DiagnosticsStore

	cancel context.CancelFunc
	exitCh chan error
}

// NewServer returns a Server not yet started. diagnostics receives every
// publishDiagnostics notification, keyed by native file path.
func NewServer(config ServerConfig, languageID string, diagnostics *DiagnosticsStore) *Server {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	s := &Server{
		config:      config,
		languageID:  languageID,
		instanceID:  uuid.NewString(),
		documents:   make(map[DocumentURI]int),
		diagnostics: diagnostics,
		exitCh:      make(chan error, 1),
	}
	s.status.Store(int32(ServerStatusStopped))
	return s
}

// Status returns the server's current lifecycle state.
func (s *Server) Status() ServerStatus { return ServerStatus(s.status.Load()) }

// InstanceID is this server run's random correlation id (a uuid). It is
// not sent to the language server; JSON-RPC request ids are Transport's
// own sequential integers.
func (s *Server) InstanceID() string { return s.instanceID }

// Start launches the subprocess and completes the initialize handshake.
func (s *Server) Start(ctx context.Context, root string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Status() != ServerStatusStopped {
		return fmt.Errorf("lsp: server %s already started", s.languageID)
	}
	s.status.Store(int32(ServerStatusStarting))

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	if err := s.startProcess(runCtx, root); err != nil {
		s.status.Store(int32(ServerStatusError))
		cancel()
		return err
	}

	s.transport = NewTransport(s.stdout, s.stdin, nil)
	s.transport.OnNotification("textDocument/publishDiagnostics", s.onPublishDiagnostics)
	s.transport.Start(runCtx)
	go s.monitor()

	if err := s.initialize(runCtx, root); err != nil {
		s.status.Store(int32(ServerStatusError))
		s.stopProcess()
		return fmt.Errorf("lsp: initialize %s: %w", s.languageID, err)
	}

	s.status.Store(int32(ServerStatusReady))
	return nil
}

func (s *Server) startProcess(ctx context.Context, root string) error {
	cmd := exec.CommandContext(ctx, s.config.Command, s.config.Args...)
	cmd.Env = os.Environ()
	for k, v := range s.config.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	if s.config.WorkDir != "" {
		cmd.Dir = s.config.WorkDir
	} else {
		cmd.Dir = root
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		stdin.Close()
		stdout.Close()
		return fmt.Errorf("start %s: %w", s.config.Command, err)
	}

	s.cmd = cmd
	s.stdin = stdin
	s.stdout = stdout
	return nil
}

func (s *Server) monitor() {
	if s.cmd == nil {
		return
	}
	err := s.cmd.Wait()
	select {
	case s.exitCh <- err:
	default:
	}
	s.status.Store(int32(ServerStatusStopped))
}

func (s *Server) stopProcess() {
	if s.transport != nil {
		s.transport.Close()
	}
	if s.stdin != nil {
		s.stdin.Close()
	}
	if s.stdout != nil {
		s.stdout.Close()
	}
	if s.cmd != nil && s.cmd.Process != nil {
		s.cmd.Process.Kill()
	}
}

func (s *Server) initialize(ctx context.Context, root string) error {
	rootURI := FilePathToURI(root)
	params, err := sjson.Set("{}", "processId", os.Getpid())
	if err != nil {
		return err
	}
	params, err = sjson.Set(params, "rootUri", string(rootURI))
	if err != nil {
		return err
	}
	params, err = sjson.SetRaw(params, "capabilities", `{"textDocument":{"publishDiagnostics":{}}}`)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	result, err := s.transport.Call(ctx, "initialize", params)
	if err != nil {
		return err
	}
	s.capabilities = ServerCapabilities{
		Name:    result.Get("serverInfo.name").String(),
		Version: result.Get("serverInfo.version").String(),
	}

	return s.transport.Notify("initialized", "{}")
}

func (s *Server) onPublishDiagnostics(_ string, params gjson.Result) {
	if s.diagnostics == nil {
		return
	}
	uri, diags := parseDiagnostics(params)
	s.diagnostics.update(URIToFilePath(uri), diags)
}

// Shutdown performs the LSP shutdown/exit handshake and kills the process.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	status := s.Status()
	if status == ServerStatusStopped || status == ServerStatusShuttingDown {
		return nil
	}
	s.status.Store(int32(ServerStatusShuttingDown))

	if s.transport != nil && !s.transport.IsClosed() {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		_, _ = s.transport.Call(shutdownCtx, "shutdown", "")
		_ = s.transport.Notify("exit", "")
		cancel()
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.stopProcess()
	s.status.Store(int32(ServerStatusStopped))
	return nil
}

// OpenDocument sends textDocument/didOpen.
func (s *Server) OpenDocument(path, languageID, content string) error {
	if s.Status() != ServerStatusReady {
		return ErrServerNotReady
	}
	uri := FilePathToURI(path)
	s.documentsMu.Lock()
	s.documents[uri] = 1
	s.documentsMu.Unlock()

	params, _ := sjson.Set("{}", "textDocument.uri", string(uri))
	params, _ = sjson.Set(params, "textDocument.languageId", languageID)
	params, _ = sjson.Set(params, "textDocument.version", 1)
	params, _ = sjson.Set(params, "textDocument.text", content)
	return s.transport.Notify("textDocument/didOpen", params)
}

// ChangeDocument sends a full-document textDocument/didChange.
func (s *Server) ChangeDocument(path, content string) error {
	if s.Status() != ServerStatusReady {
		return ErrServerNotReady
	}
	uri := FilePathToURI(path)
	s.documentsMu.Lock()
	version := s.documents[uri] + 1
	s.documents[uri] = version
	s.documentsMu.Unlock()

	params, _ := sjson.Set("{}", "textDocument.uri", string(uri))
	params, _ = sjson.Set(params, "textDocument.version", version)
	params, _ = sjson.SetRaw(params, "contentChanges", "[]")
	params, _ = sjson.Set(params, "contentChanges.0.text", content)
	return s.transport.Notify("textDocument/didChange", params)
}

// CloseDocument sends textDocument/didClose.
func (s *Server) CloseDocument(path string) error {
	if s.Status() != ServerStatusReady {
		return ErrServerNotReady
	}
	uri := FilePathToURI(path)
	s.documentsMu.Lock()
	delete(s.documents, uri)
	s.documentsMu.Unlock()
	if s.diagnostics != nil {
		s.diagnostics.Clear(path)
	}

	params, _ := sjson.Set("{}", "textDocument.uri", string(uri))
	return s.transport.Notify("textDocument/didClose", params)
}

// MatchesFile reports whether this server should handle path, by language
// ID or by glob file pattern (tidwall/match, the same glob engine used
// across the retrieval pack's lightweight JSON tooling).
func (s *Server) MatchesFile(path string) bool {
	langID := DetectLanguageID(path)
	for _, id := range s.config.LanguageIDs {
		if id == langID {
			return true
		}
	}
	base := filepath.Base(path)
	for _, pattern := range s.config.FilePatterns {
		if match.Match(base, pattern) {
			return true
		}
	}
	return false
}
