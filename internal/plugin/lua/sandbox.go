package lua

import (
	"slices"

	lua "github.com/yuin/gopher-lua"
)

// strippedGlobals are removed from the state's globals after the libraries
// are opened. Scripts never see them, even through _G.
var strippedGlobals = []string{
	"dofile",
	"loadfile",
	"load",
	"loadstring",
	"require",
	"module",
	"getfenv",
	"setfenv",
	"collectgarbage",
	"rawset",
	"rawget",
	"newproxy",
}

// allowedGlobals are copied into every script environment.
var allowedGlobals = []string{
	"assert",
	"error",
	"ipairs",
	"next",
	"pairs",
	"pcall",
	"select",
	"tonumber",
	"tostring",
	"type",
	"unpack",
	"xpcall",
	"_VERSION",
	"string",
	"table",
	"math",
	"coroutine",
}

// Sandbox restricts what a script can reach.
//
// Scripts run with their own environment table instead of the state's
// globals, so anything not copied in by Environment is invisible to them.
// This limits the call scope; it is not a security boundary.
type Sandbox struct {
	L   *lua.LState
	env *lua.LTable
}

// NewSandbox creates a sandbox for the Lua state.
func NewSandbox(L *lua.LState) *Sandbox {
	return &Sandbox{L: L}
}

// Install removes loaders and reflection helpers from the globals.
func (s *Sandbox) Install() {
	for _, name := range strippedGlobals {
		s.L.SetGlobal(name, lua.LNil)
	}
}

// Environment returns the script environment, building it on first use.
// Every State has its own environment.
func (s *Sandbox) Environment() *lua.LTable {
	if s.env != nil {
		return s.env
	}

	env := s.L.NewTable()
	for _, name := range allowedGlobals {
		if v := s.L.GetGlobal(name); v != lua.LNil {
			env.RawSetString(name, v)
		}
	}
	env.RawSetString("_G", env)
	s.env = env
	return env
}

// Set binds name in the script environment.
func (s *Sandbox) Set(name string, value lua.LValue) {
	s.Environment().RawSetString(name, value)
}

// Get returns name from the script environment.
func (s *Sandbox) Get(name string) lua.LValue {
	return s.Environment().RawGetString(name)
}

// Allowed reports whether name is one of the builtins scripts receive.
func Allowed(name string) bool {
	return slices.Contains(allowedGlobals, name)
}
