// Package lua provides the gopher-lua runtime that macro scripts run in.
//
// A State is created per run. Compile wraps the script's statements into a
// function whose parameters are the injected names; Run drives that
// function inside a coroutine:
//
//	state, err := lua.NewState()
//	if err != nil {
//	    return err
//	}
//	defer state.Close()
//
//	fn, err := state.Compile("upper.lua", source, "context", "debug", "util")
//	if err != nil {
//	    return err
//	}
//	_, err = state.Run(ctx, fn, contextValue, debugValue, utilValue)
//
// # Sandbox
//
// Scripts run in their own environment table holding a short list of
// builtins plus the string, table, math and coroutine libraries. Loaders
// (load, dofile, require) and environment or raw access helpers are removed
// from the state entirely. io, os and debug are never opened.
//
// # Async calls
//
// State.Async wraps Go work as a Lua function. Calling it suspends the
// script; Run awaits the work with the run's context and resumes the script
// with the result, or raises the error inside the script where pcall can
// catch it.
//
// # Errors
//
// Bindings report failures with RaiseError, which carries the Go error
// through the Lua unwind. Run returns that same error value, so callers can
// use errors.Is and errors.As on it. Other script errors are *RuntimeError;
// syntax errors are *CompileError.
package lua
