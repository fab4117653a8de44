package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "MACRORUNNER_"

// DefaultPath returns the default config file path.
// On Unix-like systems: ~/.config/macrorunner/config.toml
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(configDir, "macrorunner", "config.toml"), nil
}

// Loader layers defaults, a TOML file and environment variables.
// Command-line flags are applied by the caller on top.
type Loader struct {
	path      string
	explicit  bool
	lookupEnv func(string) (string, bool)
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithPath loads path instead of the default file. Unlike the default
// file, an explicit path must exist.
func WithPath(path string) LoaderOption {
	return func(l *Loader) {
		if path != "" {
			l.path = path
			l.explicit = true
		}
	}
}

// WithLookupEnv replaces os.LookupEnv.
func WithLookupEnv(fn func(string) (string, bool)) LoaderOption {
	return func(l *Loader) {
		l.lookupEnv = fn
	}
}

// NewLoader creates a loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{lookupEnv: os.LookupEnv}
	for _, opt := range opts {
		opt(l)
	}
	if l.path == "" {
		if p, err := DefaultPath(); err == nil {
			l.path = p
		}
	}
	return l
}

// Path returns the config file the loader reads.
func (l *Loader) Path() string {
	return l.path
}

// Load builds the configuration. The result is not validated, since flags
// may still override it.
func (l *Loader) Load() (*Config, error) {
	cfg := Default()

	if l.path != "" {
		if err := l.loadFile(cfg); err != nil {
			return nil, err
		}
	}
	if err := ApplyEnv(cfg, l.lookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) loadFile(cfg *Config) error {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if l.explicit {
				return fmt.Errorf("%w: %s", ErrFileNotFound, l.path)
			}
			return nil // File doesn't exist, not an error
		}
		return fmt.Errorf("reading config file %s: %w", l.path, err)
	}
	return Decode(cfg, bytes.NewReader(data), l.path)
}

// Decode reads TOML from r into cfg, keeping values r does not set.
// Unknown keys are errors. source names r in errors.
func Decode(cfg *Config, r io.Reader, source string) error {
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()

	if err := dec.Decode(cfg); err != nil {
		perr := &ParseError{Path: source, Message: err.Error(), Err: err}

		var derr *toml.DecodeError
		var serr *toml.StrictMissingError
		switch {
		case errors.As(err, &derr):
			perr.Line, perr.Column = derr.Position()
		case errors.As(err, &serr) && len(serr.Errors) > 0:
			perr.Line, perr.Column = serr.Errors[0].Position()
			perr.Message = "unknown setting " + strings.Join(serr.Errors[0].Key(), ".")
		}
		return perr
	}
	return nil
}

// Encode writes cfg as TOML.
func (c *Config) Encode(w io.Writer) error {
	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	return enc.Encode(c)
}

// envBinding applies one environment variable.
type envBinding struct {
	name  string
	apply func(c *Config, value string) error
}

var envBindings = []envBinding{
	{"LOG_LEVEL", func(c *Config, v string) error {
		c.Logging.Level = v
		return nil
	}},
	{"MACROS_DIR", func(c *Config, v string) error {
		c.Script.MacrosDir = v
		return nil
	}},
	{"DEBUG_MODE", func(c *Config, v string) error {
		return parseBool(v, &c.Script.DebugMode)
	}},
	{"REJECT_LOOPS", func(c *Config, v string) error {
		return parseBool(v, &c.Script.RejectLoops)
	}},
	{"MAX_FILES", func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		c.Script.MaxFiles = n
		return nil
	}},
	{"INCLUDE_DIR", func(c *Config, v string) error {
		c.Script.IncludeDir = v
		return nil
	}},
	{"ALLOWED_ENV", func(c *Config, v string) error {
		c.Script.AllowedEnv = splitList(v)
		return nil
	}},
	{"TIMEOUT", func(c *Config, v string) error {
		return parseDuration(v, &c.Script.Timeout)
	}},
	{"FRAME_DELAY", func(c *Config, v string) error {
		return parseDuration(v, &c.Replay.FrameDelay)
	}},
	{"PREVIEW", func(c *Config, v string) error {
		return parseBool(v, &c.Replay.Preview)
	}},
	{"WATCH_DEBOUNCE", func(c *Config, v string) error {
		return parseDuration(v, &c.Watch.Debounce)
	}},
}

// EnvVars returns the environment variables ApplyEnv reads.
func EnvVars() []string {
	names := make([]string, len(envBindings))
	for i, b := range envBindings {
		names[i] = EnvPrefix + b.name
	}
	return names
}

// ApplyEnv overrides cfg with MACRORUNNER_* variables found by lookup.
// Empty values are treated as set.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	for _, b := range envBindings {
		name := EnvPrefix + b.name
		value, ok := lookup(name)
		if !ok {
			continue
		}
		if err := b.apply(cfg, value); err != nil {
			return &EnvError{Var: name, Value: value, Err: err}
		}
	}
	return nil
}

func parseBool(s string, dst *bool) error {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "on", "1":
		*dst = true
	case "false", "no", "off", "0", "":
		*dst = false
	default:
		return fmt.Errorf("invalid boolean %q", s)
	}
	return nil
}

func parseDuration(s string, dst *Duration) error {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	*dst = Duration(d)
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
