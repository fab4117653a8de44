package macro

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Extension is appended to macro names that lack it.
const Extension = ".lua"

// Store keeps macros as files in a single directory.
type Store struct {
	Dir string
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

// DefaultDir returns the default macros directory.
// On Unix-like systems: ~/.config/macrorunner/macros
// On Windows: %APPDATA%/macrorunner/macros
func DefaultDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(configDir, "macrorunner", "macros"), nil
}

// FileName returns name with the macro extension, appending it when missing.
func FileName(name string) string {
	if strings.HasSuffix(strings.ToLower(name), Extension) {
		return name
	}
	return name + Extension
}

// validName rejects names that would escape the directory.
func validName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: empty", ErrInvalidName)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	case strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, os.PathSeparator):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	}
	return nil
}

// Path returns the file path for name.
func (s *Store) Path(name string) (string, error) {
	if s.Dir == "" {
		return "", &StorageError{Op: "path", Name: name, Err: ErrNoDir}
	}
	if err := validName(name); err != nil {
		return "", &StorageError{Op: "path", Name: name, Err: err}
	}
	return filepath.Join(s.Dir, FileName(name)), nil
}

// EnsureDir creates the macros directory if needed and returns it.
func (s *Store) EnsureDir() (string, error) {
	if s.Dir == "" {
		return "", &StorageError{Op: "mkdir", Err: ErrNoDir}
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", &StorageError{Op: "mkdir", Err: err}
	}
	return s.Dir, nil
}

// Save writes source under name, replacing any existing macro.
// The file is written atomically using a temporary file and rename.
func (s *Store) Save(name, source string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	if _, err := s.EnsureDir(); err != nil {
		return err
	}

	if err := writeAtomic(path, []byte(source)); err != nil {
		return &StorageError{Op: "save", Name: name, Err: err}
	}
	return nil
}

// Load returns the source of the macro called name.
func (s *Store) Load(name string) (string, error) {
	path, err := s.Path(name)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", &StorageError{Op: "load", Name: name, Err: err}
	}
	return string(data), nil
}

// List returns the file names of saved macros in lexical order.
// A missing directory lists as empty.
func (s *Store) List() ([]string, error) {
	if s.Dir == "" {
		return nil, &StorageError{Op: "list", Err: ErrNoDir}
	}

	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &StorageError{Op: "list", Err: err}
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasSuffix(e.Name(), tempSuffix) {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// Delete removes the macro called name.
func (s *Store) Delete(name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		return &StorageError{Op: "delete", Name: name, Err: err}
	}
	return nil
}

// Exists reports whether a macro called name is saved.
func (s *Store) Exists(name string) bool {
	path, err := s.Path(name)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

const tempSuffix = ".tmp"

// writeAtomic writes data to path via a temp file and rename.
func writeAtomic(path string, data []byte) error {
	tempPath := path + tempSuffix
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		// Clean up temp file on failure
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
