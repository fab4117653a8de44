package macro

import (
	"errors"
	"fmt"
)

// Validation failures.
var (
	// ErrEmptySource indicates the source has no statements.
	ErrEmptySource = errors.New("macro source is empty")

	// ErrMissingMarker indicates the first line does not contain "macro".
	ErrMissingMarker = errors.New(`the first line must contain the word "macro"`)

	// ErrUnboundedLoop indicates the source contains a loop the host refuses to run.
	ErrUnboundedLoop = errors.New("macro contains a possibly unbounded loop")
)

// Storage failures.
var (
	// ErrInvalidName indicates a macro name that cannot be used as a file name.
	ErrInvalidName = errors.New("invalid macro name")

	// ErrNoDir indicates the store has no directory.
	ErrNoDir = errors.New("macros directory is unknown")
)

// ValidationError reports a source rejected before execution.
type ValidationError struct {
	Name string
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Name == "" {
		return "validation failed: " + e.Err.Error()
	}
	return fmt.Sprintf("validation failed for %s: %v", e.Name, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// StorageError reports a failed store operation.
type StorageError struct {
	Op   string
	Name string
	Err  error
}

func (e *StorageError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("macro store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("macro store %s %q: %v", e.Op, e.Name, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
