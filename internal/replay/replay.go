package replay

import (
	"context"
	"errors"
	"fmt"

	"github.com/dshills/macrorunner/internal/engine"
)

// ErrInvalidRange indicates a surface was asked to replace outside its text.
var ErrInvalidRange = errors.New("replace range outside surface")

// Surface is a place a buffer's text is shown.
type Surface interface {
	// Len returns the length of the surface text in bytes.
	Len() int

	// Replace overwrites [start, end) with text.
	Replace(start, end int, text string) error
}

// Host provides surfaces for a run's buffers.
type Host interface {
	// Primary returns the surface of the targeted document.
	Primary() Surface

	// NewSurface creates an empty surface for buffer index, index >= 1.
	NewSurface(index int) (Surface, error)
}

// Materialize writes every buffer of reg to host in index order. ctx is
// checked between buffers; a cancelled context leaves later buffers
// unwritten.
func Materialize(ctx context.Context, reg *engine.Registry, host Host) error {
	for i, b := range reg.Buffers() {
		if err := ctx.Err(); err != nil {
			return err
		}

		var surface Surface
		if i == 0 {
			surface = host.Primary()
		} else {
			s, err := host.NewSurface(i)
			if err != nil {
				return fmt.Errorf("buffer %d: failed to create surface: %w", i, err)
			}
			surface = s
		}

		if err := Play(surface, b.States()); err != nil {
			return fmt.Errorf("buffer %d: %w", i, err)
		}
	}
	return nil
}

// Play overwrites surface with each state in order.
func Play(surface Surface, states []string) error {
	for n, text := range states {
		if err := surface.Replace(0, surface.Len(), text); err != nil {
			return fmt.Errorf("state %d: %w", n, err)
		}
	}
	return nil
}

// checkRange validates [start, end) against a text of length n.
func checkRange(start, end, n int) error {
	if start < 0 || end < start || end > n {
		return fmt.Errorf("%w: [%d:%d) of %d", ErrInvalidRange, start, end, n)
	}
	return nil
}
