package command

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dshills/pepperd/internal/proto"
)

// Source identifies where a registered command came from (spec §4.K: "a
// flat registry of {builtins, user-defined macros, per-client request
// stubs}").
type Source int

const (
	SourceBuiltin Source = iota
	SourceMacro
	SourceRequest
)

// Host is the mutable editor context a builtin command's handler runs
// against (spec §4.K: "side effects on the editor happen through the
// mutable editor state threaded as the evaluation context"). It is an
// interface so this package never imports the editor package.
type Host interface {
	Quit(client proto.ClientHandle) error
	QuitAll() error
	Open(client proto.ClientHandle, path string) error
	Save(client proto.ClientHandle, path string) error
	Close(client proto.ClientHandle) error
	Print(kind proto.StatusMessageKind, text string)
	ExecuteKeys(client proto.ClientHandle, keys []proto.Key) error
	JumpBack(client proto.ClientHandle) error
	JumpForward(client proto.ClientHandle) error
	Spawn(client proto.ClientHandle, cmdline, stdinText string, hasStdin bool) error
}

// ExecContext is threaded through one command evaluation.
type ExecContext struct {
	Host      Host
	Client    proto.ClientHandle
	Registers map[string]string
}

func (c *ExecContext) register(name string) string {
	if c.Registers == nil {
		return ""
	}
	return c.Registers[name]
}

// HandlerFunc implements one builtin command.
type HandlerFunc func(ctx *ExecContext, line Line) error

type entry struct {
	source  Source
	handler HandlerFunc
	macro   *macro
}

// ErrCommandNotFound is returned by Eval when no registered command matches.
var ErrCommandNotFound = errors.New("command: not found")

// Registry is the flat {builtins, macros, request stubs} table (spec
// §4.K), grounded on the teacher's palette.Command registration shape
// (internal/input/palette/command.go) but keyed by command name instead
// of a Lua-facing command ID, and dispatching a parsed Line rather than a
// map[string]any argument bag.
type Registry struct {
	entries map[string]entry
}

// NewRegistry returns a Registry seeded with the builtin catalogue.
func NewRegistry() *Registry {
	r := &Registry{entries: make(map[string]entry)}
	registerBuiltins(r)
	return r
}

// RegisterBuiltin adds or replaces a builtin command.
func (r *Registry) RegisterBuiltin(name string, h HandlerFunc) {
	r.entries[name] = entry{source: SourceBuiltin, handler: h}
}

// RegisterRequest adds a per-client request stub: a builtin-shaped handler
// that a connected client has installed for itself (spec's "request"
// command, e.g. for LSP-triggered picker entries).
func (r *Registry) RegisterRequest(name string, h HandlerFunc) {
	r.entries[name] = entry{source: SourceRequest, handler: h}
}

// Source reports where name is registered, if at all.
func (r *Registry) Source(name string) (Source, bool) {
	e, ok := r.entries[name]
	return e.source, ok
}

// Eval parses and executes one command line against ctx.
func (r *Registry) Eval(ctx *ExecContext, src string) error {
	line, err := Parse(src)
	if err != nil {
		return err
	}
	return r.EvalLine(ctx, line)
}

// EvalLine executes an already-parsed Line.
func (r *Registry) EvalLine(ctx *ExecContext, line Line) error {
	e, ok := r.entries[line.Name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrCommandNotFound, line.Name)
	}
	if e.macro != nil {
		return r.evalMacro(ctx, e.macro, line)
	}
	return e.handler(ctx, line)
}

// evalMacro binds line's positional args to the macro's named parameters
// as registers, then evaluates every body line in turn.
func (r *Registry) evalMacro(ctx *ExecContext, m *macro, line Line) error {
	sub := &ExecContext{Host: ctx.Host, Client: ctx.Client, Registers: make(map[string]string, len(ctx.Registers)+len(m.params))}
	for k, v := range ctx.Registers {
		sub.Registers[k] = v
	}
	for i, name := range m.params {
		if i < len(line.Args) {
			sub.Registers[name] = line.Args[i].Text
		}
	}

	for _, bodyLine := range m.body {
		expanded := expandRegisters(bodyLine, sub.Registers)
		if err := r.Eval(sub, expanded); err != nil {
			return fmt.Errorf("macro %q: %w", m.name, err)
		}
	}
	return nil
}

// expandRegisters replaces every "%name" occurrence with the bound
// register value, longest names first so "%foobar" isn't cut short by a
// "%foo" binding.
func expandRegisters(line string, registers map[string]string) string {
	if len(registers) == 0 {
		return line
	}
	names := make([]string, 0, len(registers))
	for name := range registers {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })
	for _, name := range names {
		line = strings.ReplaceAll(line, "%"+name, registers[name])
	}
	return line
}
