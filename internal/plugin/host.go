package plugin

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/macrorunner/internal/engine"
	"github.com/dshills/macrorunner/internal/engine/buffer"
	"github.com/dshills/macrorunner/internal/macro"
	"github.com/dshills/macrorunner/internal/plugin/api"
	plua "github.com/dshills/macrorunner/internal/plugin/lua"
)

// DefaultScriptName names scripts run without a name.
const DefaultScriptName = "macro"

// Logger is the logging surface the host writes to.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}

// Request describes one script run.
type Request struct {
	// Name identifies the script in errors and logs.
	Name string

	// Source is the script body.
	Source string

	// TargetText seeds buffer 0.
	TargetText string
}

// Result is the outcome of a completed run.
type Result struct {
	RunID    uuid.UUID
	Name     string
	Registry *engine.Registry
	Entries  []api.Entry
	Warnings []string
	Duration time.Duration
}

// Host runs macro scripts. Each run gets a fresh registry and a fresh
// Lua state, so a Host may be shared between goroutines.
type Host struct {
	logger      Logger
	maxFiles    int
	debugMode   bool
	rejectLoops bool
	timeout     time.Duration
	funcs       []api.Func
	stateOpts   []plua.StateOption
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithLogger sets the logger for runs and debug output.
func WithLogger(l Logger) HostOption {
	return func(h *Host) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithMaxFiles bounds how many buffers a script may create.
func WithMaxFiles(n int) HostOption {
	return func(h *Host) {
		h.maxFiles = n
	}
}

// WithDebugMode starts every buffer in debug mode, so each setText
// checkpoints the text it replaces.
func WithDebugMode(on bool) HostOption {
	return func(h *Host) {
		h.debugMode = on
	}
}

// WithRejectLoops turns the loop warning into a validation failure.
func WithRejectLoops(on bool) HostOption {
	return func(h *Host) {
		h.rejectLoops = on
	}
}

// WithTimeout bounds each run. Zero means no limit beyond the caller's context.
func WithTimeout(d time.Duration) HostOption {
	return func(h *Host) {
		h.timeout = d
	}
}

// WithFuncs injects extra functions after context, debug and util.
func WithFuncs(funcs ...api.Func) HostOption {
	return func(h *Host) {
		h.funcs = append(h.funcs, funcs...)
	}
}

// WithStateOptions configures the Lua state of each run.
func WithStateOptions(opts ...plua.StateOption) HostOption {
	return func(h *Host) {
		h.stateOpts = append(h.stateOpts, opts...)
	}
}

// NewHost creates a script host.
func NewHost(opts ...HostOption) *Host {
	h := &Host{
		logger:   nopLogger{},
		maxFiles: engine.DefaultMaxFiles,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Run validates and executes one script against a registry seeded with
// req.TargetText. Validation failures are *macro.ValidationError, script
// failures *ScriptError. On success the registry holds every buffer the
// script touched, ready to be materialized.
func (h *Host) Run(ctx context.Context, req Request) (*Result, error) {
	name := req.Name
	if name == "" {
		name = DefaultScriptName
	}

	warnings, err := macro.Check(name, req.Source, h.rejectLoops)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		h.logger.Warn("%s: %s", name, w)
	}

	runID := uuid.New()
	start := time.Now()
	h.logger.Debug("run %s: starting %s", runID, name)

	reg := engine.NewRegistry(req.TargetText,
		engine.WithMaxFiles(h.maxFiles),
		engine.WithBufferOptions(buffer.WithDebugMode(h.debugMode)),
	)

	state, err := plua.NewState(h.stateOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create script state: %w", err)
	}
	defer state.Close()

	dbg := api.NewDebugModule(h.logger)
	ns, err := h.namespace(reg, dbg)
	if err != nil {
		return nil, err
	}

	fn, err := state.Compile(name, req.Source, ns.Names()...)
	if err != nil {
		return nil, &ScriptError{Name: name, Phase: PhaseCompile, Err: err}
	}

	args, err := ns.Values(state)
	if err != nil {
		return nil, fmt.Errorf("failed to bind script arguments: %w", err)
	}

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	if _, err := state.Run(ctx, fn, args...); err != nil {
		h.logger.Debug("run %s: %s failed: %v", runID, name, err)
		return nil, &ScriptError{Name: name, Phase: PhaseRun, Err: err, Entries: dbg.Entries()}
	}

	duration := time.Since(start)
	h.logger.Info("run %s: %s finished in %v with %d buffer(s)", runID, name, duration, reg.FileCount())

	return &Result{
		RunID:    runID,
		Name:     name,
		Registry: reg,
		Entries:  dbg.Entries(),
		Warnings: warnings,
		Duration: duration,
	}, nil
}

// namespace builds the script parameter list for one run.
func (h *Host) namespace(reg *engine.Registry, dbg *api.DebugModule) (*api.Namespace, error) {
	mods := []api.Module{
		api.NewContextModule(reg),
		dbg,
		api.NewUtilModule(),
	}
	for _, f := range h.funcs {
		mods = append(mods, api.NewFuncModule(f))
	}

	ns, err := api.NewNamespace(mods...)
	if err != nil {
		return nil, fmt.Errorf("failed to build script namespace: %w", err)
	}
	return ns, nil
}
