package command

import (
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/pepperd/internal/pluginscript"
	"github.com/dshills/pepperd/internal/proto"
)

// registerLuaBuiltins adds the Lua scripting surface (spec §7's one
// scripting mechanism beyond plain-text macros, grounded on the
// pluginscript package): source-lua runs a script file once, macro-lua
// defines a named command whose body is Lua instead of command text.
// Both run the script in a freshly sandboxed pluginscript.State — no
// capability is granted by default, so a macro can only reach the
// editor through the "pepperd" module this file installs, never the
// filesystem or a shell directly.
func registerLuaBuiltins(r *Registry) {
	r.RegisterBuiltin("source-lua", cmdSourceLua(r))
	r.entries["macro-lua"] = entry{source: SourceMacro, handler: cmdMacroLua(r)}
}

func cmdSourceLua(r *Registry) HandlerFunc {
	return func(ctx *ExecContext, line Line) error {
		a := NewArgs(line)
		if err := a.AssertNoBang(); err != nil {
			return err
		}
		if err := a.GetFlags(); err != nil {
			return err
		}
		path, err := a.Next()
		if err != nil {
			return err
		}
		if err := a.AssertEmpty(); err != nil {
			return err
		}

		state, err := pluginscript.NewState()
		if err != nil {
			return err
		}
		defer state.Close()
		installPepperdModule(r, ctx, state)

		if err := state.DoFile(path.Text); err != nil {
			return fmt.Errorf("source-lua %s: %w", path.Text, err)
		}
		return nil
	}
}

// cmdMacroLua builds the "macro-lua name { … }" builtin: name becomes a
// new command whose handler runs the brace-block body as Lua each time
// it's invoked, the same brace-block grammar cmdTry's try/catch uses.
// It is a closure over r for the same reason cmdTry is: the registered
// macro needs to re-enter the registry via pepperd.exec.
func cmdMacroLua(r *Registry) HandlerFunc {
	return func(ctx *ExecContext, line Line) error {
		a := NewArgs(line)
		if err := a.AssertNoBang(); err != nil {
			return err
		}
		if err := a.GetFlags(); err != nil {
			return err
		}
		name, err := a.Next()
		if err != nil {
			return err
		}
		body, err := a.Next()
		if err != nil {
			return err
		}
		if err := a.AssertEmpty(); err != nil {
			return err
		}
		if name.Text == "" {
			return &ParseError{From: line.NameFrom, To: line.NameTo, Msg: "macro-lua requires a name"}
		}

		bodyText := body.Text
		r.entries[name.Text] = entry{source: SourceMacro, handler: func(ctx *ExecContext, line Line) error {
			return runLuaMacro(r, ctx, bodyText, line)
		}}
		return nil
	}
}

func runLuaMacro(r *Registry, ctx *ExecContext, body string, line Line) error {
	state, err := pluginscript.NewState()
	if err != nil {
		return err
	}
	defer state.Close()
	installPepperdModule(r, ctx, state)

	bridge := pluginscript.NewBridge(state.LuaState())
	argTexts := make([]string, len(line.Args))
	for i, v := range line.Args {
		argTexts[i] = v.Text
	}
	state.SetGlobal("args", bridge.ToLuaValue(argTexts))

	if err := state.DoString(body); err != nil {
		return fmt.Errorf("macro-lua %s: %w", line.Name, err)
	}
	return nil
}

// installPepperdModule preloads the "pepperd" module a Lua script reaches
// the editor through: require("pepperd").print(...), .open(path), and so
// on. Every function closes over ctx, so it acts on the client and
// registers the command that invoked the script, exactly as a native
// builtin would.
func installPepperdModule(r *Registry, ctx *ExecContext, state *pluginscript.State) {
	L := state.LuaState()
	bridge := pluginscript.NewBridge(L)

	funcs := map[string]lua.LGFunction{
		"print": bridge.WrapGoFunc(func(args []interface{}) (interface{}, error) {
			ctx.Host.Print(proto.StatusInfo, joinLuaArgs(args))
			return nil, nil
		}),
		"error": bridge.WrapGoFunc(func(args []interface{}) (interface{}, error) {
			ctx.Host.Print(proto.StatusError, joinLuaArgs(args))
			return nil, nil
		}),
		"open": bridge.WrapGoFunc(func(args []interface{}) (interface{}, error) {
			path, ok := firstLuaString(args)
			if !ok {
				return nil, fmt.Errorf("pepperd.open: expected a path string")
			}
			return nil, ctx.Host.Open(ctx.Client, path)
		}),
		"save": bridge.WrapGoFunc(func(args []interface{}) (interface{}, error) {
			path, _ := firstLuaString(args)
			return nil, ctx.Host.Save(ctx.Client, path)
		}),
		"close": bridge.WrapGoFunc(func(args []interface{}) (interface{}, error) {
			return nil, ctx.Host.Close(ctx.Client)
		}),
		"quit": bridge.WrapGoFunc(func(args []interface{}) (interface{}, error) {
			return nil, ctx.Host.Quit(ctx.Client)
		}),
		"exec": bridge.WrapGoFunc(func(args []interface{}) (interface{}, error) {
			cmdline, ok := firstLuaString(args)
			if !ok {
				return nil, fmt.Errorf("pepperd.exec: expected a command string")
			}
			return nil, r.Eval(ctx, cmdline)
		}),
		"keys": bridge.WrapGoFunc(func(args []interface{}) (interface{}, error) {
			seq, ok := firstLuaString(args)
			if !ok {
				return nil, fmt.Errorf("pepperd.keys: expected a key sequence string")
			}
			keys, err := proto.ParseAllKeys(seq)
			if err != nil {
				return nil, err
			}
			return nil, ctx.Host.ExecuteKeys(ctx.Client, keys)
		}),
	}

	L.PreloadModule("pepperd", func(L *lua.LState) int {
		mod := L.SetFuncs(L.NewTable(), funcs)
		L.Push(mod)
		return 1
	})
}

func firstLuaString(args []interface{}) (string, bool) {
	if len(args) == 0 {
		return "", false
	}
	s, ok := args[0].(string)
	return s, ok
}

func joinLuaArgs(args []interface{}) string {
	var b strings.Builder
	for i, a := range args {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprint(&b, a)
	}
	return b.String()
}
