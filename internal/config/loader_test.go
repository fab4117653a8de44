package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

func noEnv(string) (string, bool) { return "", false }

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoader_File(t *testing.T) {
	path := writeConfig(t, `
[logging]
level = "debug"

[script]
macros_dir = "/tmp/macros"
debug_mode = true
max_files = 8
allowed_env = ["USER", "HOME"]
timeout = "5s"

[replay]
frame_delay = "50ms"
`)

	cfg, err := NewLoader(WithPath(path), WithLookupEnv(noEnv)).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Script.MacrosDir != "/tmp/macros" {
		t.Errorf("Script.MacrosDir = %q", cfg.Script.MacrosDir)
	}
	if !cfg.Script.DebugMode {
		t.Error("Script.DebugMode = false, want true")
	}
	if cfg.Script.MaxFiles != 8 {
		t.Errorf("Script.MaxFiles = %d, want 8", cfg.Script.MaxFiles)
	}
	if !slices.Equal(cfg.Script.AllowedEnv, []string{"USER", "HOME"}) {
		t.Errorf("Script.AllowedEnv = %v", cfg.Script.AllowedEnv)
	}
	if cfg.Script.Timeout.Std() != 5*time.Second {
		t.Errorf("Script.Timeout = %v, want 5s", cfg.Script.Timeout)
	}
	if cfg.Replay.FrameDelay.Std() != 50*time.Millisecond {
		t.Errorf("Replay.FrameDelay = %v, want 50ms", cfg.Replay.FrameDelay)
	}
	// Unset keys keep their defaults.
	if cfg.Watch.Debounce.Std() != DefaultDebounce {
		t.Errorf("Watch.Debounce = %v, want %v", cfg.Watch.Debounce, DefaultDebounce)
	}
}

func TestLoader_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")

	_, err := NewLoader(WithPath(missing), WithLookupEnv(noEnv)).Load()
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("Load() error = %v, want ErrFileNotFound", err)
	}
}

func TestLoader_MissingDefaultFile(t *testing.T) {
	l := &Loader{path: filepath.Join(t.TempDir(), "config.toml"), lookupEnv: noEnv}

	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Script.MaxFiles != DefaultMaxFiles {
		t.Errorf("Script.MaxFiles = %d, want default", cfg.Script.MaxFiles)
	}
}

func TestLoader_ParseError(t *testing.T) {
	tests := []struct {
		name    string
		content string
		line    int
		message string
	}{
		{"syntax", "[script]\nmax_files = = 3\n", 2, ""},
		{"unknown key", "[script]\nmax_file = 3\n", 2, "max_file"},
		{"bad duration", "[script]\ntimeout = \"later\"\n", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)

			_, err := NewLoader(WithPath(path), WithLookupEnv(noEnv)).Load()
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("Load() error = %v, want *ParseError", err)
			}
			if perr.Path != path {
				t.Errorf("Path = %q, want %q", perr.Path, path)
			}
			if tt.line > 0 && perr.Line != tt.line {
				t.Errorf("Line = %d, want %d", perr.Line, tt.line)
			}
			if !strings.Contains(perr.Message, tt.message) {
				t.Errorf("Message = %q, want it to contain %q", perr.Message, tt.message)
			}
		})
	}
}

func TestLoader_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "[script]\nmax_files = 8\n")

	cfg, err := NewLoader(WithPath(path), WithLookupEnv(envMap(map[string]string{
		"MACRORUNNER_MAX_FILES": "12",
	}))).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Script.MaxFiles != 12 {
		t.Errorf("Script.MaxFiles = %d, want 12", cfg.Script.MaxFiles)
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := ApplyEnv(cfg, envMap(map[string]string{
		"MACRORUNNER_LOG_LEVEL":      "warn",
		"MACRORUNNER_MACROS_DIR":     "/m",
		"MACRORUNNER_DEBUG_MODE":     "yes",
		"MACRORUNNER_REJECT_LOOPS":   "on",
		"MACRORUNNER_INCLUDE_DIR":    "/inc",
		"MACRORUNNER_ALLOWED_ENV":    " USER, ,HOME ",
		"MACRORUNNER_TIMEOUT":        "2s",
		"MACRORUNNER_FRAME_DELAY":    "10ms",
		"MACRORUNNER_PREVIEW":        "1",
		"MACRORUNNER_WATCH_DEBOUNCE": "1s",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}

	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
	if cfg.Script.MacrosDir != "/m" || cfg.Script.IncludeDir != "/inc" {
		t.Errorf("dirs = %q, %q", cfg.Script.MacrosDir, cfg.Script.IncludeDir)
	}
	if !cfg.Script.DebugMode || !cfg.Script.RejectLoops || !cfg.Replay.Preview {
		t.Error("expected boolean settings to be enabled")
	}
	if !slices.Equal(cfg.Script.AllowedEnv, []string{"USER", "HOME"}) {
		t.Errorf("Script.AllowedEnv = %v", cfg.Script.AllowedEnv)
	}
	if cfg.Script.Timeout.Std() != 2*time.Second {
		t.Errorf("Script.Timeout = %v", cfg.Script.Timeout)
	}
	if cfg.Replay.FrameDelay.Std() != 10*time.Millisecond {
		t.Errorf("Replay.FrameDelay = %v", cfg.Replay.FrameDelay)
	}
	if cfg.Watch.Debounce.Std() != time.Second {
		t.Errorf("Watch.Debounce = %v", cfg.Watch.Debounce)
	}
}

func TestApplyEnv_Errors(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"MACRORUNNER_MAX_FILES", "many"},
		{"MACRORUNNER_DEBUG_MODE", "maybe"},
		{"MACRORUNNER_TIMEOUT", "forever"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ApplyEnv(Default(), envMap(map[string]string{tt.name: tt.value}))

			var eerr *EnvError
			if !errors.As(err, &eerr) {
				t.Fatalf("ApplyEnv() error = %v, want *EnvError", err)
			}
			if eerr.Var != tt.name || eerr.Value != tt.value {
				t.Errorf("EnvError = %+v", eerr)
			}
		})
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{"true", true, false},
		{"YES", true, false},
		{"on", true, false},
		{"1", true, false},
		{"false", false, false},
		{"no", false, false},
		{"off", false, false},
		{"0", false, false},
		{"", false, false},
		{"2", false, true},
	}

	for _, tt := range tests {
		got := !tt.want
		err := parseBool(tt.in, &got)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseBool(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseBool(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestEnvVars(t *testing.T) {
	vars := EnvVars()
	if len(vars) != len(envBindings) {
		t.Fatalf("EnvVars() returned %d names, want %d", len(vars), len(envBindings))
	}
	for _, v := range vars {
		if !strings.HasPrefix(v, EnvPrefix) {
			t.Errorf("%q lacks prefix %q", v, EnvPrefix)
		}
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Script.AllowedEnv = []string{"USER"}
	cfg.Script.Timeout = Duration(3 * time.Second)

	var buf bytes.Buffer
	if err := cfg.Encode(&buf); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !strings.Contains(buf.String(), `timeout = '3s'`) && !strings.Contains(buf.String(), `timeout = "3s"`) {
		t.Errorf("encoded config lacks timeout:\n%s", buf.String())
	}

	got := Default()
	if err := Decode(got, &buf, "encoded"); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.Script.Timeout != cfg.Script.Timeout || !slices.Equal(got.Script.AllowedEnv, cfg.Script.AllowedEnv) {
		t.Errorf("round trip mismatch: %+v", got.Script)
	}
}
