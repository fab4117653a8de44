package api

import (
	"context"
	"testing"

	"github.com/dshills/macrorunner/internal/engine"
	plua "github.com/dshills/macrorunner/internal/plugin/lua"
)

// runScript runs source against reg with the standard namespace plus extra.
func runScript(t *testing.T, reg *engine.Registry, source string, extra ...Module) (*DebugModule, error) {
	t.Helper()

	state, err := plua.NewState()
	if err != nil {
		t.Fatalf("NewState failed: %v", err)
	}
	t.Cleanup(func() { _ = state.Close() })

	dbg := NewDebugModule(nil)
	mods := append([]Module{NewContextModule(reg), dbg, NewUtilModule()}, extra...)
	ns, err := NewNamespace(mods...)
	if err != nil {
		t.Fatalf("NewNamespace failed: %v", err)
	}

	fn, err := state.Compile("test", source, ns.Names()...)
	if err != nil {
		return dbg, err
	}
	args, err := ns.Values(state)
	if err != nil {
		t.Fatalf("Values failed: %v", err)
	}
	_, err = state.Run(context.Background(), fn, args...)
	return dbg, err
}

// mustRun runs source and fails the test on error.
func mustRun(t *testing.T, reg *engine.Registry, source string, extra ...Module) *DebugModule {
	t.Helper()
	dbg, err := runScript(t, reg, source, extra...)
	if err != nil {
		t.Fatalf("script failed: %v", err)
	}
	return dbg
}

// messages returns the logged messages in order.
func messages(dbg *DebugModule) []string {
	entries := dbg.Entries()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Message
	}
	return out
}
