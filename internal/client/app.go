// Package client implements the thin terminal front end (spec §4.A): it
// owns no buffer or cursor state of its own beyond what is needed to paint
// the last frame the server described, and turns terminal input into
// ClientEvents over a transport.ServerConn.
package client

import (
	"strings"

	"github.com/dshills/pepperd/internal/client/backend"
	"github.com/dshills/pepperd/internal/client/core"
	"github.com/dshills/pepperd/internal/proto"
	"github.com/dshills/pepperd/internal/transport"
)

// App drives one terminal session against a connected server.
type App struct {
	conn    *transport.ServerConn
	term    backend.Backend
	theme   *Theme
	lines   []string
	path    string
	status  string
	isError bool
	quit    bool
}

// NewApp wires a backend and a connection into a runnable App. term is
// taken un-Init'd; Run calls Init/Shutdown itself.
func NewApp(conn *transport.ServerConn, term backend.Backend) *App {
	return &App{conn: conn, term: term, theme: DefaultTheme(), lines: []string{""}}
}

// Run paints frames and forwards input until the server closes the
// connection or forwarding input or receiving operations fails.
func (a *App) Run() error {
	if err := a.term.Init(); err != nil {
		return err
	}
	defer a.term.Shutdown()

	w, h := a.term.Size()
	a.conn.QueueEvent(proto.NewResizeEvent(nil, uint16(w), uint16(h)))
	if err := a.conn.Flush(); err != nil {
		return err
	}

	events := make(chan backend.Event, 16)
	go a.pollTerminal(events)

	for !a.quit {
		select {
		case ev := <-events:
			if err := a.handleTerminalEvent(ev); err != nil {
				return err
			}
		default:
		}

		_, err := a.conn.ReceiveOperations(a.applyOperation)
		if err != nil {
			return err
		}

		a.paint()
	}
	return nil
}

func (a *App) pollTerminal(out chan<- backend.Event) {
	for {
		out <- a.term.PollEvent()
	}
}

func (a *App) handleTerminalEvent(ev backend.Event) error {
	switch ev.Type {
	case backend.EventResize:
		a.conn.QueueEvent(proto.NewResizeEvent(nil, uint16(ev.Width), uint16(ev.Height)))
	case backend.EventKey:
		k, ok := translateKey(ev)
		if !ok {
			return nil
		}
		a.conn.QueueEvent(proto.NewKeyEvent(nil, k))
	default:
		return nil
	}
	return a.conn.Flush()
}

// applyOperation folds one incoming EditorOperation into the App's local
// render state (spec §3: the client only ever replays what the server
// describes, never computes it independently).
func (a *App) applyOperation(op proto.EditorOperation) {
	switch op.Kind {
	case proto.OpBuffer:
		a.lines = strings.Split(op.Text, "\n")
	case proto.OpPath:
		a.path = op.Text
	case proto.OpStatusMessage:
		a.status = op.Text
		a.isError = op.StatusKind == proto.StatusError
	case proto.OpStatusMessageAppend:
		a.status += op.Text
	case proto.OpTheme:
		if th, err := ParseTheme(op.Blob); err == nil {
			a.theme = th
		}
	}
}

func (a *App) paint() {
	w, h := a.term.Size()
	a.term.Clear()

	rows := h - 1
	for y := 0; y < rows && y < len(a.lines); y++ {
		drawText(a.term, 0, y, w, a.lines[y], core.DefaultStyle())
	}

	statusStyle := a.theme.StatusBar
	if a.isError {
		statusStyle = a.theme.StatusError
	}
	drawText(a.term, 0, h-1, w, a.statusLine(), statusStyle)

	a.term.Show()
}

func (a *App) statusLine() string {
	if a.status != "" {
		return a.status
	}
	return a.path
}

func drawText(term backend.Backend, x, y, width int, text string, style core.Style) {
	col := x
	for _, r := range text {
		if col >= width {
			break
		}
		term.SetCell(col, y, core.Cell{Rune: r, Width: 1, Style: style})
		col++
	}
	for ; col < width; col++ {
		term.SetCell(col, y, core.Cell{Rune: ' ', Width: 1, Style: style})
	}
}

// translateKey maps a backend.Event of type EventKey to a proto.Key. The
// second return is false for events this editor has no wire representation
// for (bare modifier presses, unmapped function keys beyond F12).
func translateKey(ev backend.Event) (proto.Key, bool) {
	switch ev.Key {
	case backend.KeyRune:
		if ev.Mod.Has(backend.ModAlt) {
			return proto.NewKeyAlt(ev.Rune), true
		}
		return proto.NewKeyChar(ev.Rune), true
	case backend.KeyEnter:
		return proto.NewKeyEnter(), true
	case backend.KeyBackspace:
		return proto.NewKeyBackspace(), true
	case backend.KeyTab:
		return proto.NewKeyTab(), true
	case backend.KeyDelete:
		return proto.NewKeyDelete(), true
	case backend.KeyEscape:
		return proto.NewKeyEsc(), true
	case backend.KeyLeft:
		return proto.NewKeyLeft(), true
	case backend.KeyRight:
		return proto.NewKeyRight(), true
	case backend.KeyUp:
		return proto.NewKeyUp(), true
	case backend.KeyDown:
		return proto.NewKeyDown(), true
	case backend.KeyHome:
		return proto.NewKeyHome(), true
	case backend.KeyEnd:
		return proto.NewKeyEnd(), true
	case backend.KeyPageUp:
		return proto.NewKeyPageUp(), true
	case backend.KeyPageDown:
		return proto.NewKeyPageDown(), true
	case backend.KeyF1, backend.KeyF2, backend.KeyF3, backend.KeyF4, backend.KeyF5, backend.KeyF6,
		backend.KeyF7, backend.KeyF8, backend.KeyF9, backend.KeyF10, backend.KeyF11, backend.KeyF12:
		return proto.NewKeyF(uint32(ev.Key - backend.KeyF1 + 1)), true
	case backend.KeyCtrlA, backend.KeyCtrlB, backend.KeyCtrlC, backend.KeyCtrlD, backend.KeyCtrlE,
		backend.KeyCtrlF, backend.KeyCtrlG, backend.KeyCtrlH, backend.KeyCtrlI, backend.KeyCtrlJ,
		backend.KeyCtrlK, backend.KeyCtrlL, backend.KeyCtrlM, backend.KeyCtrlN, backend.KeyCtrlO,
		backend.KeyCtrlP, backend.KeyCtrlQ, backend.KeyCtrlR, backend.KeyCtrlS, backend.KeyCtrlT,
		backend.KeyCtrlU, backend.KeyCtrlV, backend.KeyCtrlW, backend.KeyCtrlX, backend.KeyCtrlY,
		backend.KeyCtrlZ:
		return proto.NewKeyCtrl(rune('a' + (ev.Key - backend.KeyCtrlA))), true
	}
	return proto.Key{}, false
}
