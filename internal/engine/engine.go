package engine

import (
	"fmt"
	"io"
	"sync"

	"github.com/dshills/macrorunner/internal/engine/buffer"
)

// Registry is the ordered set of buffers a script works on.
//
// Buffer 0 holds the host document; further buffers are created empty the
// first time a script asks for them. Indices never change and buffers are
// never removed.
type Registry struct {
	mu sync.RWMutex

	buffers  []*buffer.Buffer
	bufOpts  []buffer.Option
	maxFiles int
}

// NewRegistry creates a registry whose buffer 0 holds hostText.
func NewRegistry(hostText string, opts ...Option) *Registry {
	r := &Registry{maxFiles: DefaultMaxFiles}
	for _, opt := range opts {
		opt(r)
	}
	r.buffers = []*buffer.Buffer{buffer.New(hostText, r.bufOpts...)}
	return r
}

// NewRegistryFromReader creates a registry whose buffer 0 holds the
// contents of rd.
func NewRegistryFromReader(rd io.Reader, opts ...Option) (*Registry, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("read host text: %w", err)
	}
	return NewRegistry(string(data), opts...), nil
}

// File returns the buffer at index, creating empty buffers up to and
// including index when it does not exist yet.
func (r *Registry) File(index int) (*buffer.Buffer, error) {
	if index < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidIndex, index)
	}

	r.mu.RLock()
	if index < len(r.buffers) {
		b := r.buffers[index]
		r.mu.RUnlock()
		return b, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if index >= r.maxFiles {
		return nil, fmt.Errorf("%w: index %d exceeds limit of %d", ErrTooManyFiles, index, r.maxFiles)
	}
	for len(r.buffers) <= index {
		r.buffers = append(r.buffers, buffer.New("", r.bufOpts...))
	}
	return r.buffers[index], nil
}

// Primary returns buffer 0.
func (r *Registry) Primary() *buffer.Buffer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.buffers[0]
}

// FileCount returns the number of buffers, which is always at least 1.
func (r *Registry) FileCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.buffers)
}

// Buffers returns the buffers in index order.
func (r *Registry) Buffers() []*buffer.Buffer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*buffer.Buffer, len(r.buffers))
	copy(out, r.buffers)
	return out
}

// MaxFiles returns the buffer cap.
func (r *Registry) MaxFiles() int {
	return r.maxFiles
}
