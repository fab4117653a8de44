package main

import (
	"io"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/dshills/macrorunner/internal/app"
	"github.com/dshills/macrorunner/internal/config"
)

// cli holds the streams and global flags shared by every command.
type cli struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	configPath string
	logLevel   string
	macrosDir  string

	// lookupEnv and screen are replaced in tests.
	lookupEnv func(string) (string, bool)
	screen    tcell.Screen
}

func newCLI(in io.Reader, out, errOut io.Writer) *cli {
	return &cli{in: in, out: out, errOut: errOut}
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "macrorunner",
		Short: "Run Lua text macros against files",
		Long: `macrorunner runs small Lua scripts ("macros") that rewrite the text of a
file. A macro receives the target's text as buffer 0, may create further
buffers, and every buffer is written out once the script completes.

The first line of a macro must contain the word "macro", for example:

  -- macro: sort lines
  local doc = context:getFile(0)
  ...`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(c.in)
	root.SetOut(c.out)
	root.SetErr(c.errOut)

	pf := root.PersistentFlags()
	pf.StringVarP(&c.configPath, "config", "c", "", "path to the configuration file")
	pf.StringVar(&c.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&c.macrosDir, "macros-dir", "", "directory of saved macros")

	root.AddCommand(
		c.newCmd(),
		c.runCmd(),
		c.runSavedCmd(),
		c.saveCmd(),
		c.showCmd(),
		c.listCmd(),
		c.removeCmd(),
		c.dirCmd(),
		c.watchCmd(),
		c.configCmd(),
		c.versionCmd(),
	)
	return root
}

// newApp bootstraps the application from the global flags. configure may
// be nil.
func (c *cli) newApp(configure func(*config.Config)) (*app.Application, error) {
	return app.New(app.Options{
		ConfigPath: c.configPath,
		LogLevel:   c.logLevel,
		MacrosDir:  c.macrosDir,
		Configure:  configure,
		LogOutput:  c.errOut,
		LookupEnv:  c.lookupEnv,
	})
}
