package lua

import (
	"testing"

	glua "github.com/yuin/gopher-lua"
)

func TestSandboxInstall(t *testing.T) {
	L := glua.NewState()
	defer L.Close()

	sandbox := NewSandbox(L)
	sandbox.Install()

	for _, name := range strippedGlobals {
		if v := L.GetGlobal(name); v != glua.LNil {
			t.Errorf("%s should be removed, got %T", name, v)
		}
	}
}

func TestSandboxEnvironment(t *testing.T) {
	L := glua.NewState()
	defer L.Close()

	sandbox := NewSandbox(L)
	env := sandbox.Environment()

	if env != sandbox.Environment() {
		t.Error("Environment() should return the same table on every call")
	}
	if env.RawGetString("_G") != env {
		t.Error("_G should point at the environment itself")
	}
	for _, name := range []string{"pairs", "string", "math", "coroutine"} {
		if env.RawGetString(name) == glua.LNil {
			t.Errorf("%s should be in the environment", name)
		}
	}
	for _, name := range []string{"io", "os", "print", "require", "setmetatable"} {
		if env.RawGetString(name) != glua.LNil {
			t.Errorf("%s should not be in the environment", name)
		}
	}
}

func TestScriptCannotReachRestricted(t *testing.T) {
	state := newTestState(t)

	tests := []string{
		"load", "loadstring", "dofile", "loadfile", "require",
		"io", "os", "debug", "package",
		"getfenv", "setfenv", "rawset", "rawget", "collectgarbage",
	}

	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			fn, err := state.Compile("probe.lua", "return "+name+" == nil")
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}
			ret, err := state.Run(t.Context(), fn)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if ret[0] != glua.LTrue {
				t.Errorf("%s should not be reachable", name)
			}
		})
	}
}

func TestScriptGlobalsStayInEnvironment(t *testing.T) {
	state := newTestState(t)

	fn, err := state.Compile("globals.lua", "leaked = 5\nreturn _G.leaked")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	ret, err := state.Run(t.Context(), fn)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if ret[0] != glua.LNumber(5) {
		t.Errorf("_G.leaked = %v, want 5", ret[0])
	}
	if state.LuaState().GetGlobal("leaked") != glua.LNil {
		t.Error("script global leaked into the state's globals")
	}
	if state.Get("leaked") != glua.LNumber(5) {
		t.Error("script global should live in the environment")
	}
}

func TestInnerFunctionsShareEnvironment(t *testing.T) {
	state := newTestState(t)

	src := `local function probe() return io end
return probe() == nil`

	fn, err := state.Compile("inner.lua", src)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	ret, err := state.Run(t.Context(), fn)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if ret[0] != glua.LTrue {
		t.Error("nested functions should use the sandbox environment")
	}
}

func TestStringMethods(t *testing.T) {
	state := newTestState(t)

	fn, err := state.Compile("str.lua", `return ("abc"):upper()`)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	ret, err := state.Run(t.Context(), fn)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if ret[0].String() != "ABC" {
		t.Errorf("got %v, want ABC", ret[0])
	}
}

func TestAllowed(t *testing.T) {
	if !Allowed("pairs") {
		t.Error("pairs should be allowed")
	}
	if Allowed("load") {
		t.Error("load should not be allowed")
	}
}
