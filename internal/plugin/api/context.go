package api

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/macrorunner/internal/engine"
	"github.com/dshills/macrorunner/internal/engine/buffer"
	plua "github.com/dshills/macrorunner/internal/plugin/lua"
)

// ContextModule exposes the run's buffer registry as `context`.
//
//	local doc = context:getFile(0)
//	local out = context:getFile(context:fileCount())
type ContextModule struct {
	reg     *engine.Registry
	handles map[*buffer.Buffer]*lua.LUserData
}

// NewContextModule creates the registry handle for reg.
func NewContextModule(reg *engine.Registry) *ContextModule {
	return &ContextModule{
		reg:     reg,
		handles: make(map[*buffer.Buffer]*lua.LUserData),
	}
}

// Name returns the parameter name.
func (m *ContextModule) Name() string {
	return "context"
}

// Registry returns the registry the module exposes.
func (m *ContextModule) Registry() *engine.Registry {
	return m.reg
}

// Value builds the context table.
func (m *ContextModule) Value(state *plua.State) (lua.LValue, error) {
	L := state.LuaState()
	self := L.NewTable()

	L.SetField(self, "getFile", L.NewFunction(func(L *lua.LState) int {
		return m.getFile(L, self, state.Bridge())
	}))
	L.SetField(self, "fileCount", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(m.reg.FileCount()))
		return 1
	}))
	return self, nil
}

// getFile(index) -> buffer
// Returns the buffer at index, creating empty buffers up to it.
func (m *ContextModule) getFile(L *lua.LState, self lua.LValue, bridge *plua.Bridge) int {
	index := L.CheckInt(argBase(L, self))

	b, err := m.reg.File(index)
	if err != nil {
		plua.RaiseError(L, err)
		return 0
	}

	ud, ok := m.handles[b]
	if !ok {
		ud = newBufferHandle(L, b, bridge)
		m.handles[b] = ud
	}
	L.Push(ud)
	return 1
}
