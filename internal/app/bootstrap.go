package app

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/macrorunner/internal/config"
	"github.com/dshills/macrorunner/internal/macro"
	"github.com/dshills/macrorunner/internal/plugin"
	"github.com/dshills/macrorunner/internal/plugin/api"
)

// bootstrapper initializes components in dependency order.
type bootstrapper struct {
	app  *Application
	opts Options
}

func newBootstrapper(app *Application, opts Options) *bootstrapper {
	return &bootstrapper{app: app, opts: opts}
}

func (b *bootstrapper) bootstrap() error {
	b.initLogger()
	if err := b.initConfig(); err != nil {
		return err
	}
	b.app.logger.SetLevel(ParseLogLevel(b.app.config.Logging.Level))
	if err := b.initStore(); err != nil {
		return err
	}
	b.initHost()
	return nil
}

// initConfig layers the config file, environment and options, then validates.
func (b *bootstrapper) initConfig() error {
	loader := config.NewLoader(
		config.WithPath(b.opts.ConfigPath),
		config.WithLookupEnv(b.opts.LookupEnv),
	)

	cfg, err := loader.Load()
	if err != nil {
		return &InitError{Component: "config", Err: err}
	}

	if b.opts.LogLevel != "" {
		cfg.Logging.Level = b.opts.LogLevel
	}
	if b.opts.MacrosDir != "" {
		cfg.Script.MacrosDir = b.opts.MacrosDir
	}
	if b.opts.Configure != nil {
		b.opts.Configure(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return &InitError{Component: "config", Err: err}
	}

	b.app.config = cfg
	b.app.configPath = loader.Path()
	b.app.logger.Debug("config path %s", b.app.configPath)
	return nil
}

// initLogger starts logging at the level given on the command line. The
// configured level replaces it once the config is loaded.
func (b *bootstrapper) initLogger() {
	b.app.logger = NewLogger(LoggerConfig{
		Level:  ParseLogLevel(b.opts.LogLevel),
		Output: b.opts.LogOutput,
		Prefix: "macrorunner",
	})
}

func (b *bootstrapper) initStore() error {
	dir := b.app.config.Script.MacrosDir
	if dir == "" {
		var err error
		if dir, err = macro.DefaultDir(); err != nil {
			return &InitError{Component: "macro store", Err: err}
		}
	}
	b.app.store = macro.NewStore(expandHome(dir))
	b.app.logger.Debug("macros directory %s", b.app.store.Dir)
	return nil
}

// initHost builds the script host and the functions scripts may call.
func (b *bootstrapper) initHost() {
	cfg := b.app.config.Script

	funcs := []api.Func{api.Sleep()}
	if cfg.IncludeDir != "" {
		funcs = append(funcs, api.ReadFile(expandHome(cfg.IncludeDir)))
	}
	if len(cfg.AllowedEnv) > 0 {
		funcs = append(funcs, api.Env(cfg.AllowedEnv))
	}
	funcs = append(funcs, b.opts.Funcs...)

	b.app.host = plugin.NewHost(
		plugin.WithLogger(b.app.logger.WithComponent("plugin")),
		plugin.WithMaxFiles(cfg.MaxFiles),
		plugin.WithDebugMode(cfg.DebugMode),
		plugin.WithRejectLoops(cfg.RejectLoops),
		plugin.WithTimeout(cfg.Timeout.Std()),
		plugin.WithFuncs(funcs...),
	)
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
