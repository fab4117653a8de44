package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/dshills/macrorunner/internal/config"
	"github.com/dshills/macrorunner/internal/engine/buffer"
	"github.com/dshills/macrorunner/internal/macro"
	"github.com/dshills/macrorunner/internal/plugin"
	plua "github.com/dshills/macrorunner/internal/plugin/lua"
)

// Application errors.
var (
	// ErrInitialization indicates an initialization failure.
	ErrInitialization = errors.New("initialization failed")

	// ErrMacroExists indicates a macro of that name is already saved.
	ErrMacroExists = errors.New("macro already exists")

	// ErrAborted indicates the user declined a confirmation.
	ErrAborted = errors.New("aborted")
)

// Process exit codes.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitConfig      = 2
	ExitValidation  = 3
	ExitScript      = 4
	ExitConflict    = 5
	ExitStorage     = 6
	ExitTimeout     = 7
	ExitInterrupted = 130
)

// ExitCode maps an error to the process exit code reported for it.
func ExitCode(err error) int {
	var (
		conflict   *buffer.RangeConflictError
		validation *macro.ValidationError
		storage    *macro.StorageError
		script     *plugin.ScriptError
		parse      *config.ParseError
		env        *config.EnvError
	)

	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.Is(err, plua.ErrExecutionTimeout):
		return ExitTimeout
	case errors.As(err, &conflict):
		return ExitConflict
	case errors.As(err, &validation):
		return ExitValidation
	case errors.As(err, &script):
		return ExitScript
	case errors.As(err, &storage):
		return ExitStorage
	case errors.As(err, &parse), errors.As(err, &env),
		errors.Is(err, config.ErrValidationFailed), errors.Is(err, config.ErrFileNotFound):
		return ExitConfig
	default:
		return ExitFailure
	}
}

// OperationError represents an error that occurred during a specific operation.
type OperationError struct {
	Op      string // Operation name (e.g., "run", "save", "read")
	Target  string // Target of the operation (e.g., file path, macro name)
	Context string // Additional context
	Err     error  // Underlying error
}

// NewOperationError creates a new OperationError.
func NewOperationError(op, target string, err error) *OperationError {
	return &OperationError{
		Op:     op,
		Target: target,
		Err:    err,
	}
}

// WithContext adds context to the error.
// Safe to call on nil receiver - returns nil.
func (e *OperationError) WithContext(ctx string) *OperationError {
	if e == nil {
		return nil
	}
	e.Context = ctx
	return e
}

func (e *OperationError) Error() string {
	if e == nil {
		return ""
	}

	msg := e.Op
	if e.Target != "" {
		msg = fmt.Sprintf("%s %s", e.Op, e.Target)
	}
	if e.Context != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Context)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// InitError reports a component that failed to start.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrInitialization, e.Component, e.Err)
}

// Unwrap returns both the sentinel and the cause.
func (e *InitError) Unwrap() []error {
	return []error{ErrInitialization, e.Err}
}
