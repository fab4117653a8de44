package engine

import (
	"github.com/dshills/macrorunner/internal/engine/buffer"
)

// DefaultMaxFiles caps how many buffers one run may create.
const DefaultMaxFiles = 64

// Option configures a Registry during creation.
type Option func(*Registry)

// WithMaxFiles limits the number of buffers the registry will create.
// Values below 1 are ignored.
func WithMaxFiles(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.maxFiles = n
		}
	}
}

// WithBufferOptions applies opts to every buffer the registry creates,
// including buffer 0.
func WithBufferOptions(opts ...buffer.Option) Option {
	return func(r *Registry) {
		r.bufOpts = append(r.bufOpts, opts...)
	}
}
