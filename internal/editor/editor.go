package editor

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/dshills/pepperd/internal/buffer"
	"github.com/dshills/pepperd/internal/command"
	"github.com/dshills/pepperd/internal/config"
	"github.com/dshills/pepperd/internal/cursor"
	"github.com/dshills/pepperd/internal/keymap"
	"github.com/dshills/pepperd/internal/lsp"
	"github.com/dshills/pepperd/internal/process"
	"github.com/dshills/pepperd/internal/proto"
	"github.com/dshills/pepperd/internal/reactor"
	"github.com/dshills/pepperd/internal/syntax"
	"github.com/dshills/pepperd/internal/transport"
)

// Settings holds the subset of the layered settings store (SPEC_FULL §11,
// internal/config) that the editor itself acts on: indentation for the Tab
// key, and which mode a freshly attached session starts in. ApplySettings
// installs these once at startup; nothing in this package watches for
// changes mid-run.
type Settings struct {
	TabSize           int
	InsertSpaces      bool
	StartInInsertMode bool
}

// defaultSettings matches config.EditorConfig/VimConfig's own defaults, so
// an Editor that never calls ApplySettings behaves exactly as it did before
// Settings existed.
func defaultSettings() Settings {
	return Settings{TabSize: 4, InsertSpaces: true, StartInInsertMode: false}
}

// systemClient is the pseudo-handle commands sourced from a --config file
// run under (spec's "source a command file before entering the main
// loop"): no client is attached yet, so Host methods that need a live
// session simply no-op against it.
const systemClient = proto.ClientHandle(0)

// childStream is one half (stdout or stderr) of a spawned process,
// forwarded to its owning client's status bar as the bytes arrive (spec
// §4.L: "forward bytes to the initiator ... or status bar").
type childStream struct {
	owner proto.ClientHandle
	proc  *process.Process
	isErr bool
}

// Editor is the single mutable context threaded through every dispatch
// (spec's Design Notes): one per server process, owning every connected
// client's Session, the shared syntax collection, the per-mode keymap
// engine, and the command registry.
type Editor struct {
	mgr      *transport.Manager
	syntaxes *syntax.Collection
	keymaps  *keymap.Engine
	commands *command.Registry

	sessions map[proto.ClientHandle]*Session
	quitAll  bool

	children map[reactor.StreamId]*childStream

	lsp        *lsp.Client
	diagsOut   chan diagEvent
	instanceID string
	themeBlob  []byte

	settings Settings
}

// diagEvent is one path's refreshed diagnostics, handed from the LSP
// client's own goroutine (its Transport reads server notifications
// concurrently) to the single-threaded Run loop, preserving the
// cooperative one-goroutine-touches-state invariant the reactor already
// gives every client stream.
type diagEvent struct {
	path  string
	diags []lsp.Diagnostic
}

// New returns an Editor ready to Run against mgr.
func New(mgr *transport.Manager) *Editor {
	e := &Editor{
		mgr:      mgr,
		syntaxes: syntax.NewCollection(),
		keymaps:  keymap.NewEngine(),
		commands: command.NewRegistry(),
		sessions: make(map[proto.ClientHandle]*Session),
		children: make(map[reactor.StreamId]*childStream),
		diagsOut: make(chan diagEvent, 64),

		instanceID: uuid.NewString(),
		settings:   defaultSettings(),
	}
	root, _ := os.Getwd()
	e.lsp = lsp.NewClient(
		lsp.WithWorkspaceRoot(root),
		lsp.WithAutoDetectServers(true),
		lsp.WithClientDiagnosticsCallback(func(path string, diags []lsp.Diagnostic) {
			select {
			case e.diagsOut <- diagEvent{path: path, diags: diags}:
			default:
			}
		}),
	)
	if err := e.lsp.Start(context.Background()); err != nil {
		e.lsp = nil
	}
	return e
}

// SetTheme stores the server's active theme document (TOML, the shape
// internal/client.ParseTheme expects) and pushes it to every session
// already connected. A session that connects afterward receives it when
// its Session record is created in Run's dispatch loop.
func (e *Editor) SetTheme(blob []byte) {
	e.themeBlob = blob
	for _, s := range e.sessions {
		s.enqueue(proto.NewTheme(blob))
	}
}

// ApplySettings installs the editor/vim/LSP sections of the layered
// settings store this process loaded at startup (SPEC_FULL §11). It must
// be called before Run starts accepting connections: TabSize/InsertSpaces
// and StartInInsertMode only take effect for sessions created afterward,
// and an lspCfg.Enabled=false tears down the LSP client this Editor
// already started in New.
func (e *Editor) ApplySettings(ed config.EditorConfig, vim config.VimConfig, lspCfg config.LSPConfig) {
	e.settings = Settings{
		TabSize:           ed.TabSize,
		InsertSpaces:      ed.InsertSpaces,
		StartInInsertMode: vim.StartInInsertMode,
	}
	if !lspCfg.Enabled && e.lsp != nil {
		e.lsp.Shutdown(context.Background())
		e.lsp = nil
	}
}

// newSession returns a freshly attached client session with this Editor's
// current Settings applied (spec §3's "every connection gets a Session";
// SPEC_FULL §11's vim.startInInsertMode controls its initial Mode).
func (e *Editor) newSession() *Session {
	s := NewSession()
	if e.settings.StartInInsertMode {
		s.Mode = proto.ModeInsert
	}
	return s
}

// Shutdown tears down the editor's LSP servers. Called once, after Run
// returns.
func (e *Editor) Shutdown(ctx context.Context) {
	if e.lsp != nil {
		e.lsp.Shutdown(ctx)
	}
}

// Run drives the main loop of spec §4.L until ctx is cancelled or a
// quit-all command is evaluated.
func (e *Editor) Run(ctx context.Context) error {
	for {
		if e.quitAll {
			return nil
		}
		ids, err := e.mgr.Wait(ctx)
		if err != nil {
			return err
		}

		e.drainDiagnostics()

		for _, id := range ids {
			if e.mgr.IsListener(id) {
				if _, err := e.mgr.AcceptReady(); err != nil {
					return err
				}
				continue
			}
			if cs, ok := e.children[id]; ok {
				e.handleChildReady(id, cs)
				continue
			}
			handle, ok := e.mgr.HandleForStream(id)
			if !ok {
				continue
			}
			if _, ok := e.sessions[handle]; !ok {
				s := e.newSession()
				e.sessions[handle] = s
				if e.themeBlob != nil {
					s.enqueue(proto.NewTheme(e.themeBlob))
				}
			}
			err := e.mgr.ReceiveKeys(handle, func(ev proto.ClientEvent) error {
				return e.handleClientEvent(handle, ev)
			})
			if err == transport.ErrQuit {
				e.closeSession(handle)
			} else if err != nil {
				return err
			}
		}

		for handle, s := range e.sessions {
			if data := s.drain(); data != nil {
				e.mgr.SendOperations(handle, data)
			}
		}
		e.mgr.UnregisterClosed()

		if e.quitAll {
			return nil
		}
	}
}

// Source reads path line by line, evaluating every non-blank, non-comment
// line as a command (spec §6 "--config=PATH ... source a command file
// before entering the main loop"). A bad line is reported with its line
// number rather than aborting the rest of the file.
func (e *Editor) Source(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	ctx := &command.ExecContext{Host: e, Client: systemClient}
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := e.commands.Eval(ctx, line); err != nil {
			return fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
	}
	return scanner.Err()
}

// LoadPlugins sources every enabled plugin's script setting (SPEC_FULL
// §11's [plugins.NAME] tables) through the source-lua builtin, the same
// path a --config file's own "source-lua" line would take. A plugin
// with no "script" setting, or one marked disabled, is skipped rather
// than treated as an error — the plugins table also carries settings
// for plugins this build doesn't ship a Lua script for.
func (e *Editor) LoadPlugins(pm *config.PluginManager) error {
	if pm == nil {
		return nil
	}
	ctx := &command.ExecContext{Host: e, Client: systemClient}
	for _, name := range pm.ListPlugins() {
		if !pm.IsEnabled(name) {
			continue
		}
		script := pm.GetSettingString(name, "script", "")
		if script == "" {
			continue
		}
		line := fmt.Sprintf("source-lua %q", script)
		if err := e.commands.Eval(ctx, line); err != nil {
			return fmt.Errorf("plugin %s: %w", name, err)
		}
	}
	return nil
}

// drainDiagnostics applies every diagnostics refresh the LSP client's
// background goroutine queued since the last tick, reporting a one-line
// summary to whichever session has the affected path open.
func (e *Editor) drainDiagnostics() {
	for {
		select {
		case d := <-e.diagsOut:
			e.reportDiagnostics(d)
		default:
			return
		}
	}
}

func (e *Editor) reportDiagnostics(d diagEvent) {
	for _, s := range e.sessions {
		if s.Path != d.path {
			continue
		}
		if len(d.diags) == 0 {
			continue
		}
		var errs, warns int
		for _, diag := range d.diags {
			switch diag.Severity {
			case lsp.DiagnosticSeverityError:
				errs++
			case lsp.DiagnosticSeverityWarning:
				warns++
			}
		}
		s.enqueue(proto.NewStatusMessage(proto.StatusInfo, fmt.Sprintf("%s: %d error(s), %d warning(s)", d.path, errs, warns)))
	}
}

func (e *Editor) closeSession(handle proto.ClientHandle) {
	delete(e.sessions, handle)
	e.mgr.CloseConnection(handle)
}

// handleClientEvent dispatches one incoming ClientEvent: Key goes through
// J (keymap) then falls to the native per-mode handler; Resize and
// Command are handled directly.
func (e *Editor) handleClientEvent(origin proto.ClientHandle, ev proto.ClientEvent) error {
	target := origin
	if ev.Target != nil {
		target = *ev.Target
	}
	s, ok := e.sessions[target]
	if !ok {
		s = e.newSession()
		e.sessions[target] = s
	}

	switch ev.Kind {
	case proto.EventKey:
		return e.handleKey(target, s, ev.Key)
	case proto.EventResize:
		return nil
	case proto.EventCommand:
		ctx := &command.ExecContext{Host: e, Client: target}
		if err := e.commands.Eval(ctx, ev.Command); err != nil {
			s.StatusKind = proto.StatusError
			s.StatusText = err.Error()
			s.enqueue(proto.NewStatusMessage(proto.StatusError, err.Error()))
			return nil
		}
		if _, stillOpen := e.sessions[origin]; !stillOpen {
			// quit closed origin's session (command.Host.Quit -> closeSession);
			// tell ReceiveKeys's batch loop to stop delivering to this
			// connection instead of letting the next iteration resurrect a
			// fresh Session for the handle it just closed.
			return transport.ErrQuit
		}
		return nil
	}
	return nil
}

func (e *Editor) handleKey(handle proto.ClientHandle, s *Session, k proto.Key) error {
	res := e.keymaps.Feed(s.Mode, k)
	switch res.Outcome {
	case keymap.Pending:
		return nil
	case keymap.Expand:
		for _, expanded := range res.Keys {
			e.nativeHandleKey(handle, s, expanded)
		}
		return nil
	case keymap.Flush:
		for _, flushed := range res.Keys {
			e.nativeHandleKey(handle, s, flushed)
		}
		return nil
	}
	return nil
}

// Quit implements command.Host.
func (e *Editor) Quit(client proto.ClientHandle) error {
	e.closeSession(client)
	return nil
}

// QuitAll implements command.Host.
func (e *Editor) QuitAll() error {
	e.quitAll = true
	return nil
}

// Open implements command.Host: loads path's contents into the client's
// buffer, replacing whatever was open.
func (e *Editor) Open(client proto.ClientHandle, path string) error {
	s, ok := e.sessions[client]
	if !ok {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		s.enqueue(proto.NewStatusMessage(proto.StatusError, err.Error()))
		return nil
	}
	s.History.Add(s.Cursors.Primary().Position)

	s.Path = path
	s.Buffer = buffer.FromText(string(data))
	s.Cursors = cursor.NewSet(buffer.Position{})
	handle, _ := e.syntaxes.FindHandleByPath(path)
	s.SyntaxHandle = handle
	s.Highlighted.HighlightAll(e.syntaxes.Get(handle), s.Buffer)

	s.enqueue(proto.NewPath(path))
	s.enqueue(proto.NewBuffer(s.Buffer.Text()))

	if e.lsp != nil && e.lsp.IsAvailable(path) {
		e.lsp.OpenDocument(context.Background(), path, s.Buffer.Text())
	}
	return nil
}

// Save implements command.Host: writes the client's buffer to path (or
// its existing path if path is empty).
func (e *Editor) Save(client proto.ClientHandle, path string) error {
	s, ok := e.sessions[client]
	if !ok {
		return nil
	}
	target := path
	if target == "" {
		target = s.Path
	}
	if target == "" {
		s.enqueue(proto.NewStatusMessage(proto.StatusError, "no path to save to"))
		return nil
	}
	if err := os.WriteFile(target, []byte(s.Buffer.Text()), 0o644); err != nil {
		s.enqueue(proto.NewStatusMessage(proto.StatusError, err.Error()))
		return nil
	}
	s.Path = target
	s.enqueue(proto.NewStatusMessage(proto.StatusInfo, "buffer saved to "+target))

	if e.lsp != nil && e.lsp.IsAvailable(target) {
		e.lsp.ChangeDocument(context.Background(), target, s.Buffer.Text())
	}
	return nil
}

// Close implements command.Host: resets the client's buffer to empty.
func (e *Editor) Close(client proto.ClientHandle) error {
	s, ok := e.sessions[client]
	if !ok {
		return nil
	}
	s.Path = ""
	s.Buffer = buffer.FromText("")
	s.Cursors = cursor.NewSet(buffer.Position{})
	s.Highlighted.HighlightAll(syntax.New(), s.Buffer)
	s.enqueue(proto.NewPath(""))
	s.enqueue(proto.NewBuffer(""))
	return nil
}

// Print implements command.Host.
func (e *Editor) Print(kind proto.StatusMessageKind, text string) {
	for _, s := range e.sessions {
		if s.HasFocus {
			s.StatusKind = kind
			s.StatusText = text
			s.enqueue(proto.NewStatusMessage(kind, text))
		}
	}
}

// JumpBack implements command.Host: moves the client's cursor to the
// previous position in its navigation history (spec §13 supplement).
func (e *Editor) JumpBack(client proto.ClientHandle) error {
	s, ok := e.sessions[client]
	if !ok {
		return nil
	}
	pos, ok := s.History.Back(s.Cursors.Primary().Position)
	if !ok {
		return nil
	}
	s.Cursors = cursor.NewSet(pos)
	s.enqueue(proto.NewCursorsClear(true))
	s.enqueue(proto.NewCursor(s.Cursors.Primary()))
	return nil
}

// JumpForward implements command.Host: moves the client's cursor forward
// one step in its navigation history.
func (e *Editor) JumpForward(client proto.ClientHandle) error {
	s, ok := e.sessions[client]
	if !ok {
		return nil
	}
	pos, ok := s.History.Forward()
	if !ok {
		return nil
	}
	s.Cursors = cursor.NewSet(pos)
	s.enqueue(proto.NewCursorsClear(true))
	s.enqueue(proto.NewCursor(s.Cursors.Primary()))
	return nil
}

// ExecuteKeys implements command.Host: replays keys against client as if
// they had been typed there (scenario S6's -client=<handle> form).
func (e *Editor) ExecuteKeys(client proto.ClientHandle, keys []proto.Key) error {
	s, ok := e.sessions[client]
	if !ok {
		s = e.newSession()
		e.sessions[client] = s
	}
	for _, k := range keys {
		if err := e.handleKey(client, s, k); err != nil {
			return err
		}
	}
	return nil
}

// Spawn implements command.Host: starts a child command and forwards its
// stdout/stderr to client's status bar as it arrives (spec's Spawn
// operation and §4.L's "child stdout/stderr" loop branch). A spawn error
// is reported as a command error (spec §7 "Process spawn"), not a fatal
// one.
func (e *Editor) Spawn(client proto.ClientHandle, cmdline, stdinText string, hasStdin bool) error {
	proc, err := process.Spawn(context.Background(), cmdline, stdinText, hasStdin, e.instanceID)
	if err != nil {
		return err
	}

	outID := e.mgr.RegisterChild(proc.Stdout)
	errID := e.mgr.RegisterChild(proc.Stderr)
	e.children[outID] = &childStream{owner: client, proc: proc}
	e.children[errID] = &childStream{owner: client, proc: proc, isErr: true}
	return nil
}

// handleChildReady drains whatever bytes a spawned process's stdout or
// stderr produced and appends them to the owning client's status message.
// Once the pipe reports EOF, it is unregistered; the process itself is
// reaped once both halves have closed.
func (e *Editor) handleChildReady(id reactor.StreamId, cs *childStream) {
	data, streamErr := e.mgr.TakeChild(id)
	if len(data) > 0 {
		if s, ok := e.sessions[cs.owner]; ok {
			kind := proto.StatusInfo
			if cs.isErr {
				kind = proto.StatusError
			}
			s.StatusKind = kind
			s.StatusText += string(data)
			s.enqueue(proto.NewStatusMessageAppend(string(data)))
		}
	}
	if streamErr != nil {
		e.mgr.UnregisterChild(id)
		delete(e.children, id)
		if !e.childStillOpen(cs.proc) {
			go cs.proc.Wait()
		}
	}
}

// childStillOpen reports whether proc still has a registered stream (its
// other half, stdout or stderr, not yet at EOF).
func (e *Editor) childStillOpen(proc *process.Process) bool {
	for _, cs := range e.children {
		if cs.proc == proc {
			return true
		}
	}
	return false
}
