package lua

import (
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// Errors for Lua state operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrExecutionTimeout is returned when the run's deadline passes.
	ErrExecutionTimeout = errors.New("lua execution timeout")

	// ErrNotFunction is returned when a compiled chunk does not produce a function.
	ErrNotFunction = errors.New("compiled chunk did not return a function")
)

// goErrorType names the metatable of Go errors raised into Lua.
const goErrorType = "macrorunner.error"

// CompileError reports a script that failed to parse.
type CompileError struct {
	Name string
	Err  error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile %s: %v", e.Name, e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// RuntimeError is a Lua error that did not originate from Go.
type RuntimeError struct {
	Message    string
	StackTrace string
}

func (e *RuntimeError) Error() string {
	return e.Message
}

// RaiseError raises err inside L. The Go value survives the unwind, so the
// caller of State.Run gets err back and errors.As keeps working on it.
//
// Like L.RaiseError it does not return.
func RaiseError(L *lua.LState, err error) {
	L.Error(ErrorValue(L, err), 1)
}

// ErrorValue wraps err as a Lua value that prints as err.Error().
func ErrorValue(L *lua.LState, err error) lua.LValue {
	mt := L.NewTypeMetatable(goErrorType)
	if mt.RawGetString("__tostring") == lua.LNil {
		mt.RawSetString("__tostring", L.NewFunction(func(L *lua.LState) int {
			ud := L.CheckUserData(1)
			if err, ok := ud.Value.(error); ok {
				L.Push(lua.LString(err.Error()))
			} else {
				L.Push(lua.LString("error"))
			}
			return 1
		}))
	}

	ud := L.NewUserData()
	ud.Value = err
	L.SetMetatable(ud, mt)
	return ud
}

// unwrapError converts an error produced by the VM back into the Go error
// that caused it, when there is one.
func unwrapError(err error) error {
	var apiErr *lua.ApiError
	if !errors.As(err, &apiErr) {
		return err
	}
	if ud, ok := apiErr.Object.(*lua.LUserData); ok {
		if goErr, ok := ud.Value.(error); ok {
			return goErr
		}
	}
	msg := ""
	if apiErr.Object != nil {
		msg = apiErr.Object.String()
	}
	if msg == "" {
		msg = apiErr.Error()
	}
	return &RuntimeError{Message: msg, StackTrace: apiErr.StackTrace}
}
