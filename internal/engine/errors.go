package engine

import "errors"

// Errors returned by registry operations.
var (
	// ErrInvalidIndex indicates a negative buffer index.
	ErrInvalidIndex = errors.New("invalid buffer index")

	// ErrTooManyFiles indicates a lookup would grow the registry past its cap.
	ErrTooManyFiles = errors.New("too many buffers")
)
