package api

import (
	"errors"
	"fmt"
	"slices"

	lua "github.com/yuin/gopher-lua"

	plua "github.com/dshills/macrorunner/internal/plugin/lua"
)

// Errors returned when assembling a namespace.
var (
	// ErrDuplicateName indicates two modules share a parameter name.
	ErrDuplicateName = errors.New("duplicate injected name")

	// ErrReservedName indicates a module name collides with a Lua keyword
	// or a sandbox builtin.
	ErrReservedName = errors.New("reserved injected name")
)

// luaKeywords cannot be used as parameter names.
var luaKeywords = []string{
	"and", "break", "do", "else", "elseif", "end", "false", "for",
	"function", "if", "in", "local", "nil", "not", "or", "repeat",
	"return", "then", "true", "until", "while",
}

// Module supplies one entry of a script's parameter list.
type Module interface {
	// Name returns the parameter name the script sees.
	Name() string

	// Value builds the Lua value bound to Name for one run.
	Value(state *plua.State) (lua.LValue, error)
}

// Namespace is the ordered list of values injected into a script.
type Namespace struct {
	modules []Module
}

// NewNamespace creates a namespace from modules, in parameter order.
func NewNamespace(modules ...Module) (*Namespace, error) {
	n := &Namespace{}
	for _, mod := range modules {
		if err := n.Add(mod); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// Add appends a module to the parameter list.
func (n *Namespace) Add(mod Module) error {
	name := mod.Name()
	if slices.Contains(luaKeywords, name) || plua.Allowed(name) {
		return fmt.Errorf("%w: %q", ErrReservedName, name)
	}
	if _, ok := n.Get(name); ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	n.modules = append(n.modules, mod)
	return nil
}

// Get returns the module bound to name.
func (n *Namespace) Get(name string) (Module, bool) {
	for _, mod := range n.modules {
		if mod.Name() == name {
			return mod, true
		}
	}
	return nil, false
}

// Names returns the parameter names in order.
func (n *Namespace) Names() []string {
	names := make([]string, len(n.modules))
	for i, mod := range n.modules {
		names[i] = mod.Name()
	}
	return names
}

// Values builds every module's value for state, in parameter order.
func (n *Namespace) Values(state *plua.State) ([]lua.LValue, error) {
	values := make([]lua.LValue, len(n.modules))
	for i, mod := range n.modules {
		v, err := mod.Value(state)
		if err != nil {
			return nil, fmt.Errorf("failed to build %q: %w", mod.Name(), err)
		}
		values[i] = v
	}
	return values, nil
}

// argBase returns the stack index of the first real argument, skipping the
// receiver when a function is called with method syntax on self.
func argBase(L *lua.LState, self lua.LValue) int {
	if L.GetTop() > 0 && L.Get(1) == self {
		return 2
	}
	return 1
}
