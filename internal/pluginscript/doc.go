// Package pluginscript provides Lua runtime integration for editor macros.
//
// This package wraps the gopher-lua library to provide:
//   - Sandboxed Lua state management
//   - Go-Lua type conversion bridge
//   - Capability-based security
//   - Execution-timeout and instruction-limit settings (stored; neither is
//     enforced while Lua code runs)
//
// # State
//
// The State type manages a Lua runtime with sandboxing:
//
//	state, err := pluginscript.NewState(
//	    pluginscript.WithMemoryLimit(10 * 1024 * 1024),
//	    pluginscript.WithExecutionTimeout(5 * time.Second),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer state.Close()
//
//	if err := state.DoFile("plugin.lua"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Sandbox
//
// The Sandbox restricts Lua code execution by:
//   - Removing dangerous functions (dofile, loadfile, load)
//   - Restricting os module to safe functions only
//   - Keeping an instruction counter (IncrementInstructions); nothing calls
//     it while Lua code runs, so loops are not cut off
//   - Gating capability-specific modules behind Grant
//
// # Bridge
//
// The Bridge provides bidirectional type conversion:
//
//	bridge := pluginscript.NewBridge(state.LuaState())
//
//	// Go to Lua
//	luaVal := bridge.ToLuaValue(map[string]interface{}{
//	    "name": "test",
//	    "count": 42,
//	})
//
//	// Lua to Go
//	goVal := bridge.ToGoValue(luaVal)
//
// # Capabilities
//
// Plugins must be granted capabilities to access restricted functionality:
//
//	state.Sandbox().Grant(pluginscript.CapabilityFileRead)
//	state.Sandbox().Grant(pluginscript.CapabilityNetwork)
//
// Available capabilities:
//   - CapabilityFileRead: io.open in read modes and io.lines
//   - CapabilityFileWrite: io.open in write, append and update modes
//   - CapabilityNetwork: recorded only; no network API is injected
//   - CapabilityShell: a limited os table (getenv, time, clock); os.execute
//     raises an error
//   - CapabilityClipboard: recorded only; no clipboard API is injected
//   - CapabilityProcess: recorded only; it lets require("os") pass the
//     sandboxed require
//   - CapabilityUnsafe: opens the io, os and debug libraries; dofile,
//     loadfile and load stay removed
package pluginscript
