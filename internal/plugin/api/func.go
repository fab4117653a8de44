package api

import (
	"context"

	lua "github.com/yuin/gopher-lua"

	plua "github.com/dshills/macrorunner/internal/plugin/lua"
)

// Func is a host function injected into a script as an extra parameter.
//
// Arguments arrive converted with Bridge.ToGoValue and the result is
// converted back with Bridge.ToLuaValue. A returned error is raised in the
// script and keeps its identity if the script does not catch it.
type Func struct {
	// Name is the parameter name the script sees.
	Name string

	// Fn does the work.
	Fn plua.AsyncFunc

	// Async suspends the script while Fn runs. Sync functions run inline
	// on the script's goroutine.
	Async bool
}

// NewFuncModule wraps f as a namespace module.
func NewFuncModule(f Func) Module {
	return &funcModule{f: f}
}

type funcModule struct {
	f Func
}

func (m *funcModule) Name() string {
	return m.f.Name
}

func (m *funcModule) Value(state *plua.State) (lua.LValue, error) {
	if m.f.Async {
		return state.Async(m.f.Name, m.f.Fn)
	}

	bridge := state.Bridge()
	return state.LuaState().NewFunction(func(L *lua.LState) int {
		args := make([]any, L.GetTop())
		for i := range args {
			args[i] = bridge.ToGoValue(L.Get(i + 1))
		}

		ctx := L.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		v, err := m.f.Fn(ctx, args)
		if err != nil {
			plua.RaiseError(L, err)
			return 0
		}
		L.Push(bridge.ToLuaValue(v))
		return 1
	}), nil
}
