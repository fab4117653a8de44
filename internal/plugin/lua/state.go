package lua

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// Default sizes for new states.
const (
	DefaultCallStackSize = 256
	DefaultRegistrySize  = 256 * 20
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// State wraps a gopher-lua state configured for running one macro.
//
// gopher-lua's LState is not goroutine-safe. The mutex serializes Go callers;
// a script and the async work it awaits are driven from the goroutine that
// called Run.
type State struct {
	L *lua.LState

	mu sync.Mutex

	callStackSize int
	registrySize  int

	sandbox *Sandbox
	bridge  *Bridge

	// awaitShim turns a yielding Go function into one that returns its
	// result or raises its error.
	awaitShim *lua.LFunction

	closed bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithCallStackSize sets the maximum Lua call depth.
func WithCallStackSize(n int) StateOption {
	return func(s *State) {
		if n > 0 {
			s.callStackSize = n
		}
	}
}

// WithRegistrySize sets the initial size of the Lua value stack.
func WithRegistrySize(n int) StateOption {
	return func(s *State) {
		if n > 0 {
			s.registrySize = n
		}
	}
}

// NewState creates a new sandboxed Lua state.
func NewState(opts ...StateOption) (*State, error) {
	state := &State{
		callStackSize: DefaultCallStackSize,
		registrySize:  DefaultRegistrySize,
	}
	for _, opt := range opts {
		opt(state)
	}

	L := lua.NewState(lua.Options{
		SkipOpenLibs:  true,
		CallStackSize: state.callStackSize,
		RegistrySize:  state.registrySize,
	})
	state.L = L

	openSafeLibraries(L)

	state.sandbox = NewSandbox(L)
	state.sandbox.Install()
	state.bridge = NewBridge(L)

	if err := state.loadAwaitShim(); err != nil {
		L.Close()
		return nil, err
	}
	return state, nil
}

// openSafeLibraries opens only the libraries scripts may use.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	lua.OpenCoroutine(L)

	// io, os, debug, package and channel stay closed.
}

// Compile turns a block of statements into a function taking params.
//
// The block is wrapped as the body of that function on the same first line,
// so line numbers in errors match the script file. The function runs in the
// sandbox environment. Syntax errors are returned as *CompileError.
func (s *State) Compile(name, source string, params ...string) (*lua.LFunction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStateClosed
	}

	for _, p := range params {
		if !identPattern.MatchString(p) {
			return nil, &CompileError{Name: name, Err: fmt.Errorf("invalid parameter name %q", p)}
		}
	}

	wrapped := "return function(" + strings.Join(params, ", ") + ") " + source + "\nend"
	chunk, err := s.L.Load(strings.NewReader(wrapped), name)
	if err != nil {
		return nil, &CompileError{Name: name, Err: err}
	}
	// Closures inherit the environment of the chunk that creates them.
	s.L.SetFEnv(chunk, s.sandbox.Environment())

	if err := s.L.CallByParam(lua.P{Fn: chunk, NRet: 1, Protect: true}); err != nil {
		return nil, &CompileError{Name: name, Err: unwrapError(err)}
	}
	ret := s.L.Get(-1)
	s.L.Pop(1)

	fn, ok := ret.(*lua.LFunction)
	if !ok {
		return nil, &CompileError{Name: name, Err: ErrNotFunction}
	}
	return fn, nil
}

// Run calls fn with args inside a coroutine and drives it to completion.
//
// Each time the script awaits an async function, Run waits for it with ctx
// and resumes the script with the outcome. Cancelling ctx stops both the
// wait and the script. Errors raised with RaiseError come back unchanged;
// other script errors are *RuntimeError.
func (s *State) Run(ctx context.Context, fn *lua.LFunction, args ...lua.LValue) ([]lua.LValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStateClosed
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if ctx.Done() != nil {
		s.L.SetContext(ctx)
		defer s.L.RemoveContext()
	}

	th, cancel := s.L.NewThread()
	if cancel != nil {
		defer cancel()
	}
	return s.drive(ctx, th, fn, args)
}

// Set binds a value in the script environment.
func (s *State) Set(name string, value lua.LValue) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.sandbox.Set(name, value)
}

// Get returns a value from the script environment.
func (s *State) Get(name string) lua.LValue {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return lua.LNil
	}
	return s.sandbox.Get(name)
}

// LuaState returns the underlying gopher-lua state for building bindings.
// It must only be used from the goroutine that calls Compile and Run.
func (s *State) LuaState() *lua.LState {
	return s.L
}

// Sandbox returns the sandbox holding the script environment.
func (s *State) Sandbox() *Sandbox {
	return s.sandbox
}

// Bridge returns the value converter bound to this state.
func (s *State) Bridge() *Bridge {
	return s.bridge
}

// IsClosed returns true if the state has been closed.
func (s *State) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close releases the Lua state. It is safe to call more than once.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.L.Close()
	s.closed = true
	return nil
}
