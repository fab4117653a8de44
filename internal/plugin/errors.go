package plugin

import (
	"fmt"

	"github.com/dshills/macrorunner/internal/plugin/api"
)

// Script phases reported by ScriptError.
const (
	PhaseCompile = "compile"
	PhaseRun     = "run"
)

// ScriptError reports a script that failed to compile or run. No buffer
// state from a failed run is materialized.
type ScriptError struct {
	Name  string
	Phase string
	Err   error

	// Entries holds whatever the script wrote to debug before failing.
	Entries []api.Entry
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("script %s failed to %s: %v", e.Name, e.Phase, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}
