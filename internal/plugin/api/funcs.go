package api

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// Errors returned by the built-in host functions.
var (
	// ErrBadArgument indicates a host function was called with the wrong
	// argument types.
	ErrBadArgument = errors.New("bad argument")

	// ErrOutsideDir indicates read_file was asked for a path outside its
	// directory.
	ErrOutsideDir = errors.New("path outside include directory")

	// ErrNoIncludeDir indicates read_file has no directory to read from.
	ErrNoIncludeDir = errors.New("no include directory configured")
)

// Sleep returns the async `sleep(ms)` function.
func Sleep() Func {
	return Func{
		Name:  "sleep",
		Async: true,
		Fn: func(ctx context.Context, args []any) (any, error) {
			ms, err := numberArg("sleep", args, 0)
			if err != nil {
				return nil, err
			}

			t := time.NewTimer(time.Duration(ms * float64(time.Millisecond)))
			defer t.Stop()
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-t.C:
				return nil, nil
			}
		},
	}
}

// ReadFile returns the async `read_file(path)` function. Relative paths
// resolve against dir and may not escape it.
func ReadFile(dir string) Func {
	return Func{
		Name:  "read_file",
		Async: true,
		Fn: func(ctx context.Context, args []any) (any, error) {
			if dir == "" {
				return nil, fmt.Errorf("read_file: %w", ErrNoIncludeDir)
			}
			name, err := stringArg("read_file", args, 0)
			if err != nil {
				return nil, err
			}

			path, err := confine(dir, name)
			if err != nil {
				return nil, fmt.Errorf("read_file: %w", err)
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read_file: %w", err)
			}
			return string(data), nil
		},
	}
}

// Env returns the sync `env(name)` function. Only names in allowed are
// visible; others read as nil.
func Env(allowed []string) Func {
	return Func{
		Name: "env",
		Fn: func(_ context.Context, args []any) (any, error) {
			name, err := stringArg("env", args, 0)
			if err != nil {
				return nil, err
			}
			if !slices.Contains(allowed, name) {
				return nil, nil
			}
			v, ok := os.LookupEnv(name)
			if !ok {
				return nil, nil
			}
			return v, nil
		},
	}
}

// confine resolves name inside dir.
func confine(dir, name string) (string, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	path = filepath.Clean(path)

	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideDir, name)
	}
	return path, nil
}

func stringArg(fn string, args []any, i int) (string, error) {
	if i < len(args) {
		if s, ok := args[i].(string); ok {
			return s, nil
		}
	}
	return "", fmt.Errorf("%s: %w #%d: string expected", fn, ErrBadArgument, i+1)
}

func numberArg(fn string, args []any, i int) (float64, error) {
	if i < len(args) {
		switch v := args[i].(type) {
		case int64:
			return float64(v), nil
		case float64:
			return v, nil
		}
	}
	return 0, fmt.Errorf("%s: %w #%d: number expected", fn, ErrBadArgument, i+1)
}
