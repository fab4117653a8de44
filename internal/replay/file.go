package replay

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// FileSurface shows a buffer by writing each state to a file.
type FileSurface struct {
	mu     sync.Mutex
	path   string
	text   string
	writes int
}

// OpenFileSurface creates a surface for path seeded with the file's
// current content. A missing file starts empty.
func OpenFileSurface(path string) (*FileSurface, error) {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return &FileSurface{path: path, text: string(data)}, nil
}

// NewFileSurface creates a surface for path seeded with text. Nothing is
// written until the first Replace.
func NewFileSurface(path, text string) *FileSurface {
	return &FileSurface{path: path, text: text}
}

// Path returns the file path.
func (s *FileSurface) Path() string {
	return s.path
}

// Len returns the text length.
func (s *FileSurface) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.text)
}

// Replace overwrites [start, end) and writes the result to the file.
func (s *FileSurface) Replace(start, end int, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := checkRange(start, end, len(s.text)); err != nil {
		return err
	}
	next := s.text[:start] + text + s.text[end:]
	if err := writeAtomic(s.path, []byte(next)); err != nil {
		return err
	}
	s.text = next
	s.writes++
	return nil
}

// Writes returns how many times the file was written.
func (s *FileSurface) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// writeAtomic writes data to path using a temporary file in the same
// directory and a rename. An existing file keeps its permission bits.
func writeAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Chmod(mode); err != nil {
		return fmt.Errorf("failed to set mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// FileHost writes buffer 0 to the target file, or to an output path, and
// every other buffer to a file derived from the target name.
type FileHost struct {
	mu        sync.Mutex
	target    string
	output    string
	outputDir string
	primary   *FileSurface
	surfaces  []*FileSurface
}

// FileHostOption configures a FileHost.
type FileHostOption func(*FileHost)

// WithOutput writes buffer 0 to path instead of the target.
func WithOutput(path string) FileHostOption {
	return func(h *FileHost) {
		h.output = path
	}
}

// WithOutputDir writes buffers 1 and up into dir instead of next to the target.
func WithOutputDir(dir string) FileHostOption {
	return func(h *FileHost) {
		h.outputDir = dir
	}
}

// NewFileHost creates a host for target whose primary surface is seeded
// with targetText.
func NewFileHost(target, targetText string, opts ...FileHostOption) *FileHost {
	h := &FileHost{target: target}
	for _, opt := range opts {
		opt(h)
	}

	path := target
	if h.output != "" {
		path = h.output
	}
	h.primary = NewFileSurface(path, targetText)
	return h
}

// Primary returns the surface for buffer 0.
func (h *FileHost) Primary() Surface {
	return h.primary
}

// NewSurface creates the file surface for buffer index.
func (h *FileHost) NewSurface(index int) (Surface, error) {
	if index < 1 {
		return nil, fmt.Errorf("invalid surface index %d", index)
	}

	s := NewFileSurface(h.SurfacePath(index), "")
	h.mu.Lock()
	h.surfaces = append(h.surfaces, s)
	h.mu.Unlock()
	return s, nil
}

// SurfacePath returns the file buffer index is written to:
// <stem>.<index><ext>, next to the target or in the output directory.
func (h *FileHost) SurfacePath(index int) string {
	if index == 0 {
		return h.primary.Path()
	}

	base := filepath.Base(h.target)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	name := stem + "." + strconv.Itoa(index) + ext

	dir := filepath.Dir(h.target)
	if h.outputDir != "" {
		dir = h.outputDir
	}
	return filepath.Join(dir, name)
}

// Written returns the paths written so far, primary first.
func (h *FileHost) Written() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	var paths []string
	if h.primary.Writes() > 0 {
		paths = append(paths, h.primary.Path())
	}
	for _, s := range h.surfaces {
		if s.Writes() > 0 {
			paths = append(paths, s.Path())
		}
	}
	return paths
}
