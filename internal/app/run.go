package app

import (
	"context"
	"os"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/macrorunner/internal/plugin"
	"github.com/dshills/macrorunner/internal/replay"
	"github.com/dshills/macrorunner/internal/watcher"
)

// RunRequest describes one macro run against a target file.
type RunRequest struct {
	// Name identifies the macro in logs and errors.
	Name string

	// Source is the macro body.
	Source string

	// Target is the file whose text seeds buffer 0. Unless Output is set
	// it also receives buffer 0's final text.
	Target string

	// Output receives buffer 0 instead of Target.
	Output string

	// OutputDir receives the extra buffers. Defaults to Target's directory.
	OutputDir string

	// DryRun runs the macro without writing anything.
	DryRun bool

	// Screen shows the replay when preview is enabled. Nil opens the
	// terminal.
	Screen tcell.Screen
}

// RunReport is the outcome of a completed run.
type RunReport struct {
	*plugin.Result

	// Text is buffer 0's final text.
	Text string

	// Written lists the files that were written, buffer 0 first.
	Written []string
}

// Run executes a macro against req.Target and materializes its buffers.
// The target is left untouched unless the script completes.
func (app *Application) Run(ctx context.Context, req RunRequest) (*RunReport, error) {
	data, err := os.ReadFile(req.Target)
	if err != nil {
		return nil, NewOperationError("read", req.Target, err)
	}
	return app.run(ctx, req, string(data))
}

func (app *Application) run(ctx context.Context, req RunRequest, targetText string) (*RunReport, error) {
	timer := StartTimer()
	res, err := app.host.Run(ctx, plugin.Request{
		Name:       req.Name,
		Source:     req.Source,
		TargetText: targetText,
	})
	app.metrics.RecordRun(timer.Elapsed(), err)
	if err != nil {
		return nil, err
	}

	logger := app.logger.WithFields(map[string]any{"component": "replay", "run_id": res.RunID})
	report := &RunReport{
		Result: res,
		Text:   res.Registry.Primary().Text(),
	}
	if req.DryRun {
		logger.Info("dry run of %s produced %d buffers", res.Name, res.Registry.FileCount())
		return report, nil
	}

	var fileOpts []replay.FileHostOption
	if req.Output != "" {
		fileOpts = append(fileOpts, replay.WithOutput(req.Output))
	}
	if req.OutputDir != "" {
		fileOpts = append(fileOpts, replay.WithOutputDir(req.OutputDir))
	}
	files := replay.NewFileHost(req.Target, targetText, fileOpts...)

	var host replay.Host = files
	if app.config.Replay.Preview {
		screen, done, err := openScreen(req.Screen)
		if err != nil {
			return report, NewOperationError("preview", req.Target, err)
		}
		defer done()
		host = replay.Tee(files, replay.NewTerminalHost(screen, res.Name, targetText,
			replay.WithFrameDelay(app.config.Replay.FrameDelay.Std())))
	}

	if err := replay.Materialize(ctx, res.Registry, host); err != nil {
		report.Written = files.Written()
		return report, NewOperationError("materialize", req.Target, err)
	}

	report.Written = files.Written()
	logger.Info("run of %s wrote %d files", res.Name, len(report.Written))
	return report, nil
}

// openScreen returns screen, or an initialized terminal screen when nil.
// done finalizes only a screen it opened.
func openScreen(screen tcell.Screen) (tcell.Screen, func(), error) {
	if screen != nil {
		return screen, func() {}, nil
	}
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, nil, err
	}
	return screen, screen.Fini, nil
}

// Watch runs the macro file at macroPath against req.Target and runs it
// again every time the file changes, until ctx ends. The target's text is
// read once, so each run starts from the same text. onRun receives every
// outcome.
func (app *Application) Watch(ctx context.Context, macroPath string, req RunRequest, onRun func(*RunReport, error)) error {
	data, err := os.ReadFile(req.Target)
	if err != nil {
		return NewOperationError("read", req.Target, err)
	}
	targetText := string(data)

	w, err := watcher.New(watcher.WithDebounce(app.config.Watch.Debounce.Std()))
	if err != nil {
		return NewOperationError("watch", macroPath, err)
	}
	defer w.Close()
	if err := w.Add(macroPath); err != nil {
		return NewOperationError("watch", macroPath, err)
	}

	logger := app.logger.WithComponent("watch")
	runOnce := func() {
		source, err := os.ReadFile(macroPath)
		if err != nil {
			onRun(nil, NewOperationError("read", macroPath, err))
			return
		}
		req.Source = string(source)
		onRun(app.run(ctx, req, targetText))
	}

	runOnce()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			if !ev.Exists() {
				logger.Warn("%s was removed; waiting for it to return", ev.Path)
				continue
			}
			logger.Debug("%s changed (%s)", ev.Path, ev.Op)
			runOnce()
		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			logger.Error("watcher: %v", err)
		}
	}
}
