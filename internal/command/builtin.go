package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/pepperd/internal/proto"
)

// registerBuiltins seeds r with the core catalogue from
// original_source/src/command/builtin.rs: quit, quit-all, open, save,
// close, execute-keys, print, try/catch, source-lua/macro-lua. Buffer/
// LSP/theme/syntax-rule builtins from the original (save-all, reload,
// config, color, syntax, lsp-*, ...) are out of scope for this package's
// Host boundary and live instead as commands the editor package
// registers once it owns buffer/LSP state.
func registerBuiltins(r *Registry) {
	r.RegisterBuiltin("quit", cmdQuit)
	r.RegisterBuiltin("quit-all", cmdQuitAll)
	r.RegisterBuiltin("open", cmdOpen)
	r.RegisterBuiltin("save", cmdSave)
	r.RegisterBuiltin("close", cmdClose)
	r.RegisterBuiltin("execute-keys", cmdExecuteKeys)
	r.RegisterBuiltin("print", cmdPrint)
	r.RegisterBuiltin("jump-back", cmdJumpBack)
	r.RegisterBuiltin("jump-forward", cmdJumpForward)
	r.RegisterBuiltin("spawn", cmdSpawn)
	r.RegisterBuiltin("try", cmdTry(r))
	registerLuaBuiltins(r)
}

func cmdQuit(ctx *ExecContext, line Line) error {
	a := NewArgs(line)
	if err := a.GetFlags(); err != nil {
		return err
	}
	if err := a.AssertEmpty(); err != nil {
		return err
	}
	return ctx.Host.Quit(ctx.Client)
}

func cmdQuitAll(ctx *ExecContext, line Line) error {
	a := NewArgs(line)
	if err := a.GetFlags(); err != nil {
		return err
	}
	if err := a.AssertEmpty(); err != nil {
		return err
	}
	return ctx.Host.QuitAll()
}

func cmdOpen(ctx *ExecContext, line Line) error {
	a := NewArgs(line)
	if err := a.AssertNoBang(); err != nil {
		return err
	}
	if err := a.GetFlags("line", "column", "no-history", "no-save", "no-word-database", "auto-close"); err != nil {
		return err
	}
	path, err := a.Next()
	if err != nil {
		return err
	}
	if err := a.AssertEmpty(); err != nil {
		return err
	}
	return ctx.Host.Open(ctx.Client, path.Text)
}

func cmdSave(ctx *ExecContext, line Line) error {
	a := NewArgs(line)
	if err := a.AssertNoBang(); err != nil {
		return err
	}
	if err := a.GetFlags("buffer"); err != nil {
		return err
	}
	path := ""
	if v := a.TryNext(); v != nil {
		path = v.Text
	}
	if err := a.AssertEmpty(); err != nil {
		return err
	}
	return ctx.Host.Save(ctx.Client, path)
}

func cmdClose(ctx *ExecContext, line Line) error {
	a := NewArgs(line)
	if err := a.GetFlags("buffer", "no-previous-buffer"); err != nil {
		return err
	}
	if err := a.AssertEmpty(); err != nil {
		return err
	}
	return ctx.Host.Close(ctx.Client)
}

func cmdExecuteKeys(ctx *ExecContext, line Line) error {
	a := NewArgs(line)
	if err := a.AssertNoBang(); err != nil {
		return err
	}
	if err := a.GetFlags("client"); err != nil {
		return err
	}

	client := ctx.Client
	if raw, ok := a.Flag("client"); ok {
		n, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return &ParseError{From: line.NameFrom, To: line.NameTo, Msg: "invalid -client handle"}
		}
		client = proto.ClientHandle(n)
	}

	keysArg, err := a.Next()
	if err != nil {
		return err
	}
	if err := a.AssertEmpty(); err != nil {
		return err
	}

	keys, err := proto.ParseAllKeys(keysArg.Text)
	if err != nil {
		return &ParseError{From: keysArg.From, To: keysArg.To, Msg: "invalid key sequence"}
	}
	return ctx.Host.ExecuteKeys(client, keys)
}

func cmdJumpBack(ctx *ExecContext, line Line) error {
	a := NewArgs(line)
	if err := a.GetFlags(); err != nil {
		return err
	}
	if err := a.AssertEmpty(); err != nil {
		return err
	}
	return ctx.Host.JumpBack(ctx.Client)
}

func cmdJumpForward(ctx *ExecContext, line Line) error {
	a := NewArgs(line)
	if err := a.GetFlags(); err != nil {
		return err
	}
	if err := a.AssertEmpty(); err != nil {
		return err
	}
	return ctx.Host.JumpForward(ctx.Client)
}

func cmdPrint(ctx *ExecContext, line Line) error {
	a := NewArgs(line)
	if err := a.AssertNoBang(); err != nil {
		return err
	}
	if err := a.GetFlags("error", "dbg"); err != nil {
		return err
	}
	_, isErr := a.Flag("error")

	kind := proto.StatusInfo
	if isErr {
		kind = proto.StatusError
	}

	text := ""
	for {
		v := a.TryNext()
		if v == nil {
			break
		}
		text += v.Text
	}
	ctx.Host.Print(kind, text)
	return nil
}

// cmdSpawn runs a child command (spec's EditorOperation::Spawn, §4.L
// "child stdout/stderr" branch). Every positional word is part of the
// command line; "-stdin=TEXT" passes TEXT as the child's standard input.
func cmdSpawn(ctx *ExecContext, line Line) error {
	a := NewArgs(line)
	if err := a.AssertNoBang(); err != nil {
		return err
	}
	if err := a.GetFlags("stdin"); err != nil {
		return err
	}

	cmdline := ""
	for {
		v := a.TryNext()
		if v == nil {
			break
		}
		if cmdline != "" {
			cmdline += " "
		}
		cmdline += v.Text
	}
	if cmdline == "" {
		return &ParseError{From: line.NameFrom, To: line.NameTo, Msg: "spawn requires a command"}
	}

	stdinText, hasStdin := a.Flag("stdin")
	return ctx.Host.Spawn(ctx.Client, cmdline, stdinText, hasStdin)
}

// cmdTry builds the "try { … } catch { … }" builtin (spec §7, grounded on
// original_source/src/command/builtin.rs:148-187's "try" handler): the
// try block is evaluated first; if it errors, the catch block (if any)
// runs instead and its own error, if any, is what's returned. A missing
// catch block swallows the try block's error entirely. It is built as a
// closure over r rather than a plain HandlerFunc because, unlike every
// other builtin, it must recursively evaluate command text through the
// same registry it's registered on.
func cmdTry(r *Registry) HandlerFunc {
	return func(ctx *ExecContext, line Line) error {
		a := NewArgs(line)
		if err := a.AssertNoBang(); err != nil {
			return err
		}
		if err := a.GetFlags(); err != nil {
			return err
		}

		tryBody, err := a.Next()
		if err != nil {
			return err
		}

		var catchBody *Value
		if kw := a.TryNext(); kw != nil {
			if kw.Text != "catch" {
				return &ParseError{From: kw.From, To: kw.To, Msg: fmt.Sprintf("expected \"catch\", found %q", kw.Text)}
			}
			cb, err := a.Next()
			if err != nil {
				return err
			}
			catchBody = &cb
		}
		if err := a.AssertEmpty(); err != nil {
			return err
		}

		if err := evalBody(r, ctx, tryBody.Text); err != nil {
			if catchBody != nil {
				return evalBody(r, ctx, catchBody.Text)
			}
		}
		return nil
	}
}

// evalBody evaluates each non-blank line of body in turn against ctx,
// stopping at the first error, the same splitting Editor.Source applies
// to a sourced command file — a try/catch block's braces may contain
// more than one command line.
func evalBody(r *Registry, ctx *ExecContext, body string) error {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if err := r.Eval(ctx, line); err != nil {
			return err
		}
	}
	return nil
}
