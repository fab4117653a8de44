package replay

import "sync"

// MemorySurface keeps its text in memory and records every write.
type MemorySurface struct {
	mu     sync.Mutex
	text   string
	writes []string
}

// NewMemorySurface creates a surface holding text.
func NewMemorySurface(text string) *MemorySurface {
	return &MemorySurface{text: text}
}

// Len returns the text length.
func (s *MemorySurface) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.text)
}

// Replace overwrites [start, end) with text.
func (s *MemorySurface) Replace(start, end int, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := checkRange(start, end, len(s.text)); err != nil {
		return err
	}
	s.text = s.text[:start] + text + s.text[end:]
	s.writes = append(s.writes, s.text)
	return nil
}

// Text returns the current text.
func (s *MemorySurface) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

// Writes returns the text after each write, oldest first.
func (s *MemorySurface) Writes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.writes))
	copy(out, s.writes)
	return out
}

// MemoryHost creates memory surfaces.
type MemoryHost struct {
	mu       sync.Mutex
	primary  *MemorySurface
	surfaces map[int]*MemorySurface
}

// NewMemoryHost creates a host whose primary surface holds text.
func NewMemoryHost(text string) *MemoryHost {
	return &MemoryHost{
		primary:  NewMemorySurface(text),
		surfaces: make(map[int]*MemorySurface),
	}
}

// Primary returns the primary surface.
func (h *MemoryHost) Primary() Surface {
	return h.primary
}

// PrimarySurface returns the primary surface with its concrete type.
func (h *MemoryHost) PrimarySurface() *MemorySurface {
	return h.primary
}

// NewSurface creates an empty surface for index.
func (h *MemoryHost) NewSurface(index int) (Surface, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := NewMemorySurface("")
	h.surfaces[index] = s
	return s, nil
}

// Surface returns the surface created for index, or the primary for 0.
func (h *MemoryHost) Surface(index int) (*MemorySurface, bool) {
	if index == 0 {
		return h.primary, true
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.surfaces[index]
	return s, ok
}

// Count returns the number of surfaces including the primary.
func (h *MemoryHost) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.surfaces) + 1
}
