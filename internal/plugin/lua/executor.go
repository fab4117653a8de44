package lua

import (
	"context"
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// AsyncFunc is Go work a script can await. args are the script's arguments
// converted with Bridge.ToGoValue; the result is converted back with
// Bridge.ToLuaValue.
type AsyncFunc func(ctx context.Context, args []any) (any, error)

// Awaitable is a pending async call yielded by a script.
type Awaitable struct {
	Name string

	call func(ctx context.Context) (any, error)
}

// NewAwaitable creates an Awaitable that runs call when awaited.
func NewAwaitable(name string, call func(ctx context.Context) (any, error)) *Awaitable {
	return &Awaitable{Name: name, call: call}
}

// Await runs the call and waits for it or for ctx, whichever ends first.
func (a *Awaitable) Await(ctx context.Context) (any, error) {
	type result struct {
		value any
		err   error
	}

	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("%s: panic: %v", a.Name, r)}
			}
		}()
		v, err := a.call(ctx)
		done <- result{value: v, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.value, r.err
	}
}

// awaitShimSource wraps a yielding function: the host resumes it with
// (true, result) or (false, err) and the wrapper returns or raises.
const awaitShimSource = `return function(raw)
	return function(...)
		local ok, value = raw(...)
		if not ok then
			error(value, 2)
		end
		return value
	end
end`

func (s *State) loadAwaitShim() error {
	if err := s.L.DoString(awaitShimSource); err != nil {
		return fmt.Errorf("load await shim: %w", err)
	}
	shim, ok := s.L.Get(-1).(*lua.LFunction)
	s.L.Pop(1)
	if !ok {
		return fmt.Errorf("load await shim: %w", ErrNotFunction)
	}
	s.awaitShim = shim
	return nil
}

// Async returns a Lua function that suspends the script until fn finishes.
// To the script it looks like an ordinary call returning fn's result.
//
// Async functions must be called from the script's own body, not from
// inside pcall or a coroutine the script created.
func (s *State) Async(name string, fn AsyncFunc) (lua.LValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStateClosed
	}

	raw := s.L.NewFunction(func(L *lua.LState) int {
		args := make([]any, L.GetTop())
		for i := range args {
			args[i] = s.bridge.ToGoValue(L.Get(i + 1))
		}
		ud := L.NewUserData()
		ud.Value = NewAwaitable(name, func(ctx context.Context) (any, error) {
			return fn(ctx, args)
		})
		return L.Yield(ud)
	})

	if err := s.L.CallByParam(lua.P{Fn: s.awaitShim, NRet: 1, Protect: true}, raw); err != nil {
		return nil, fmt.Errorf("wrap %s: %w", name, err)
	}
	wrapped := s.L.Get(-1)
	s.L.Pop(1)
	return wrapped, nil
}

// drive resumes th until fn returns or fails, awaiting every Awaitable it
// yields. Other yields are resumed with no values.
func (s *State) drive(ctx context.Context, th *lua.LState, fn *lua.LFunction, args []lua.LValue) (ret []lua.LValue, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()

	state, runErr, values := s.L.Resume(th, fn, args...)
	for {
		switch state {
		case lua.ResumeOK:
			return values, nil
		case lua.ResumeError:
			return nil, s.runError(ctx, runErr)
		}

		next, err := s.await(ctx, values)
		if err != nil {
			return nil, err
		}
		state, runErr, values = s.L.Resume(th, fn, next...)
	}
}

// await resolves a yielded Awaitable into the values the script resumes with.
func (s *State) await(ctx context.Context, values []lua.LValue) ([]lua.LValue, error) {
	if len(values) == 0 {
		return nil, nil
	}
	ud, ok := values[0].(*lua.LUserData)
	if !ok {
		return nil, nil
	}
	a, ok := ud.Value.(*Awaitable)
	if !ok {
		return nil, nil
	}

	v, err := a.Await(ctx)
	if ctx.Err() != nil {
		return nil, s.runError(ctx, err)
	}
	if err != nil {
		return []lua.LValue{lua.LFalse, ErrorValue(s.L, err)}, nil
	}
	return []lua.LValue{lua.LTrue, s.bridge.ToLuaValue(v)}, nil
}

// runError maps a failed run to the error Run returns.
func (s *State) runError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %w", ErrExecutionTimeout, ctxErr)
		}
		return ctxErr
	}
	return unwrapError(err)
}
