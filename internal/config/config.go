package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Defaults.
const (
	DefaultLogLevel   = "info"
	DefaultMaxFiles   = 64
	DefaultFrameDelay = 400 * time.Millisecond
	DefaultDebounce   = 200 * time.Millisecond
)

// LogLevels lists the accepted logging.level values.
var LogLevels = []string{"debug", "info", "warn", "error"}

// Config is the complete macrorunner configuration.
type Config struct {
	Logging LoggingConfig `toml:"logging"`
	Script  ScriptConfig  `toml:"script"`
	Replay  ReplayConfig  `toml:"replay"`
	Watch   WatchConfig   `toml:"watch"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// ScriptConfig configures script storage and execution.
type ScriptConfig struct {
	// MacrosDir holds saved macros. Empty means the default directory.
	MacrosDir string `toml:"macros_dir"`

	// DebugMode starts every buffer in debug mode.
	DebugMode bool `toml:"debug_mode"`

	// RejectLoops refuses scripts with while or repeat loops.
	RejectLoops bool `toml:"reject_loops"`

	// MaxFiles bounds the buffers a script may create.
	MaxFiles int `toml:"max_files"`

	// IncludeDir is the directory read_file may read from.
	IncludeDir string `toml:"include_dir"`

	// AllowedEnv lists the variables env may read.
	AllowedEnv []string `toml:"allowed_env"`

	// Timeout bounds a run. Zero means no limit.
	Timeout Duration `toml:"timeout"`
}

// ReplayConfig configures materialization.
type ReplayConfig struct {
	FrameDelay Duration `toml:"frame_delay"`
	Preview    bool     `toml:"preview"`
}

// WatchConfig configures the watch command.
type WatchConfig struct {
	Debounce Duration `toml:"debounce"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: DefaultLogLevel},
		Script: ScriptConfig{
			MaxFiles: DefaultMaxFiles,
		},
		Replay: ReplayConfig{
			FrameDelay: Duration(DefaultFrameDelay),
		},
		Watch: WatchConfig{
			Debounce: Duration(DefaultDebounce),
		},
	}
}

// Validate checks every setting and returns all failures joined.
func (c *Config) Validate() error {
	var errs []error

	if !slices.Contains(LogLevels, strings.ToLower(c.Logging.Level)) {
		errs = append(errs, &ValidationError{
			Path:    "logging.level",
			Message: "must be one of " + strings.Join(LogLevels, ", "),
			Value:   c.Logging.Level,
		})
	}
	if c.Script.MaxFiles < 1 {
		errs = append(errs, &ValidationError{
			Path:    "script.max_files",
			Message: "must be at least 1",
			Value:   c.Script.MaxFiles,
		})
	}
	if c.Script.Timeout < 0 {
		errs = append(errs, &ValidationError{
			Path:    "script.timeout",
			Message: "must not be negative",
			Value:   c.Script.Timeout,
		})
	}
	for _, name := range c.Script.AllowedEnv {
		if name == "" || strings.ContainsAny(name, "= ") {
			errs = append(errs, &ValidationError{
				Path:    "script.allowed_env",
				Message: "invalid variable name",
				Value:   name,
			})
		}
	}
	if c.Replay.FrameDelay < 0 {
		errs = append(errs, &ValidationError{
			Path:    "replay.frame_delay",
			Message: "must not be negative",
			Value:   c.Replay.FrameDelay,
		})
	}
	if c.Watch.Debounce < 0 {
		errs = append(errs, &ValidationError{
			Path:    "watch.debounce",
			Message: "must not be negative",
			Value:   c.Watch.Debounce,
		})
	}

	return errors.Join(errs...)
}

// Duration is a time.Duration written as a string such as "250ms".
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// String formats d like time.Duration.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}
