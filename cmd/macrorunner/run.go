package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/macrorunner/internal/app"
	"github.com/dshills/macrorunner/internal/config"
)

// runFlags are shared by run, run-saved and watch.
type runFlags struct {
	output      string
	outputDir   string
	dryRun      bool
	preview     bool
	debugMode   bool
	rejectLoops bool
	timeout     time.Duration
}

func (f *runFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.output, "output", "o", "", "write buffer 0 here instead of the target")
	fs.StringVar(&f.outputDir, "output-dir", "", "write extra buffers here instead of next to the target")
	fs.BoolVarP(&f.dryRun, "dry-run", "n", false, "run the macro but write nothing; print the buffers")
	fs.BoolVar(&f.preview, "preview", false, "replay every buffer state in the terminal")
	fs.BoolVar(&f.debugMode, "debug-mode", false, "record a checkpoint before every setText")
	fs.BoolVar(&f.rejectLoops, "reject-loops", false, "refuse macros containing while or repeat loops")
	fs.DurationVar(&f.timeout, "timeout", 0, "abort the macro after this long (0 = no limit)")
}

// configure applies the flags the user set on top of the configuration.
func (f *runFlags) configure(cmd *cobra.Command) func(*config.Config) {
	fs := cmd.Flags()
	return func(cfg *config.Config) {
		if fs.Changed("preview") {
			cfg.Replay.Preview = f.preview
		}
		if fs.Changed("debug-mode") {
			cfg.Script.DebugMode = f.debugMode
		}
		if fs.Changed("reject-loops") {
			cfg.Script.RejectLoops = f.rejectLoops
		}
		if fs.Changed("timeout") {
			cfg.Script.Timeout = config.Duration(f.timeout)
		}
	}
}

func (f *runFlags) request(name, source, target string) app.RunRequest {
	return app.RunRequest{
		Name:      name,
		Source:    source,
		Target:    target,
		Output:    f.output,
		OutputDir: f.outputDir,
		DryRun:    f.dryRun,
	}
}

func (c *cli) runCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run <macro> <target>",
		Short: "Run a macro file or saved macro against a file",
		Long: `Run a macro against target. macro is a path to a Lua file or the name of
a saved macro. Buffer 0 starts with the target's text and is written back
to it (or to --output); buffer N is written to <target stem>.N<ext>.

Nothing is written unless the macro completes.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp(flags.configure(cmd))
			if err != nil {
				return err
			}
			name, source, err := a.ResolveMacro(args[0])
			if err != nil {
				return err
			}
			return c.runOnce(cmd.Context(), a, flags.request(name, source, args[1]))
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *cli) runSavedCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run-saved <name> <target>",
		Short: "Run a saved macro against a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp(flags.configure(cmd))
			if err != nil {
				return err
			}
			source, err := a.LoadMacro(args[0])
			if err != nil {
				return err
			}
			return c.runOnce(cmd.Context(), a, flags.request(args[0], source, args[1]))
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *cli) runOnce(ctx context.Context, a *app.Application, req app.RunRequest) error {
	req.Screen = c.screen
	report, err := a.Run(ctx, req)
	if report != nil {
		c.printReport(report, req.DryRun)
	}
	return err
}

// printReport writes the script's debug output to stderr and the outcome to
// stdout: the written paths, or every buffer on a dry run.
func (c *cli) printReport(report *app.RunReport, dryRun bool) {
	for _, w := range report.Warnings {
		fmt.Fprintf(c.errOut, "warning: %s\n", w)
	}
	for _, e := range report.Entries {
		fmt.Fprintf(c.errOut, "%s: %s\n", e.Level, e.Message)
	}

	if !dryRun {
		for _, path := range report.Written {
			fmt.Fprintf(c.out, "wrote %s\n", path)
		}
		return
	}

	buffers := report.Registry.Buffers()
	if len(buffers) == 1 {
		fmt.Fprint(c.out, buffers[0].Text())
		return
	}
	for i, b := range buffers {
		if i > 0 {
			fmt.Fprintln(c.out)
		}
		fmt.Fprintf(c.out, "==> buffer %d <==\n%s\n", i, b.Text())
	}
}

func (c *cli) watchCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "watch <macro> <target>",
		Short: "Re-run a macro every time it changes",
		Long: `Run a macro against target, then run it again whenever the macro file is
saved. Every run starts from the target's text as it was when watch
started. macro is a file path or the name of a saved macro. Stop with
Ctrl-C.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.newApp(flags.configure(cmd))
			if err != nil {
				return err
			}

			path := args[0]
			if _, err := os.Stat(path); err != nil {
				if path, err = a.Store().Path(args[0]); err != nil {
					return err
				}
			}

			req := flags.request(args[0], "", args[1])
			req.Screen = c.screen
			fmt.Fprintf(c.errOut, "watching %s (Ctrl-C to stop)\n", path)

			err = a.Watch(cmd.Context(), path, req, func(report *app.RunReport, err error) {
				if report != nil {
					c.printReport(report, req.DryRun)
				}
				if err != nil {
					fmt.Fprintf(c.errOut, "Error: %v\n", err)
				}
			})

			s := a.Metrics().Snapshot()
			fmt.Fprintf(c.errOut, "%d runs, %d failed, average %s\n", s.Runs, s.Failures, s.Avg().Round(time.Millisecond))
			return err
		},
	}
	flags.register(cmd)
	return cmd
}
