// Package app wires configuration, logging, macro storage and the script
// host together and exposes the operations of the command line.
package app

import (
	"io"

	"github.com/dshills/macrorunner/internal/config"
	"github.com/dshills/macrorunner/internal/macro"
	"github.com/dshills/macrorunner/internal/plugin"
	"github.com/dshills/macrorunner/internal/plugin/api"
)

// Application is the central coordinator for the macrorunner components.
type Application struct {
	config     *config.Config
	configPath string
	logger     *Logger
	store      *macro.Store
	host       *plugin.Host
	metrics    *Metrics

	opts Options
}

// Options configures the application. Zero values fall back to the config
// file and environment.
type Options struct {
	// ConfigPath is the path to the configuration file.
	ConfigPath string

	// LogLevel overrides logging.level.
	LogLevel string

	// MacrosDir overrides script.macros_dir.
	MacrosDir string

	// Configure applies further overrides after every other source.
	Configure func(cfg *config.Config)

	// LogOutput receives log lines. Defaults to os.Stderr.
	LogOutput io.Writer

	// LookupEnv replaces os.LookupEnv when reading MACRORUNNER_* variables.
	LookupEnv func(string) (string, bool)

	// Funcs are extra functions exposed to scripts.
	Funcs []api.Func
}

// New creates a new Application with the given options.
func New(opts Options) (*Application, error) {
	app := &Application{
		opts:    opts,
		metrics: NewMetrics(),
	}

	if err := newBootstrapper(app, opts).bootstrap(); err != nil {
		return nil, err
	}

	return app, nil
}

// Config returns the effective configuration.
func (app *Application) Config() *config.Config {
	return app.config
}

// ConfigPath returns the config file that was consulted.
func (app *Application) ConfigPath() string {
	return app.configPath
}

// Logger returns the application logger.
func (app *Application) Logger() *Logger {
	return app.logger
}

// Store returns the macro store.
func (app *Application) Store() *macro.Store {
	return app.store
}

// Host returns the script host.
func (app *Application) Host() *plugin.Host {
	return app.host
}

// Metrics returns the run metrics.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}
