package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/specialistvlad/wasmrepro/internal/config"
	"github.com/specialistvlad/wasmrepro/internal/ctxlog"
	"github.com/specialistvlad/wasmrepro/internal/dag"
	"github.com/specialistvlad/wasmrepro/internal/metadata"
	"github.com/specialistvlad/wasmrepro/internal/pipeline"
	"github.com/specialistvlad/wasmrepro/internal/report"
	"github.com/specialistvlad/wasmrepro/internal/runner"
	"github.com/specialistvlad/wasmrepro/internal/source"
	"github.com/specialistvlad/wasmrepro/internal/toolchain"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	logger     *slog.Logger
	config     *Config
	model      *config.Model
	reporter   *report.Reporter
	discoverer *metadata.Discoverer
	pipeline   *pipeline.Pipeline
	cloner     *source.Cloner
}

// Option customizes NewApp.
type Option func(*options)

type options struct {
	runner    runner.Runner
	toolchain toolchain.Selector
}

// WithRunner replaces the process runner, e.g. with a runner.Fake in tests.
func WithRunner(r runner.Runner) Option {
	return func(o *options) { o.runner = r }
}

// WithToolchain replaces the toolchain selector built from the config.
func WithToolchain(s toolchain.Selector) Option {
	return func(o *options) { o.toolchain = s }
}

// NewApp is the constructor for the main application. Status lines and the
// output of external tools go to outW; logs go to logW. The catalog is loaded
// here, so a malformed catalog fails construction with a *config.ConfigError.
func NewApp(outW, logW io.Writer, appConfig *Config, loader config.Loader, opts ...Option) (*App, error) {
	logger, err := newLogger(appConfig.LogLevel, appConfig.LogFormat, logW)
	if err != nil {
		return nil, err
	}
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	var paths []string
	if appConfig.CatalogPath != "" {
		paths = append(paths, appConfig.CatalogPath)
	}
	model, err := config.LoadCatalog(ctx, loader, paths...)
	if err != nil {
		return nil, err
	}
	if err := checkCatalog(model, appConfig); err != nil {
		source := config.EmbeddedCatalogName
		if appConfig.CatalogPath != "" {
			source = appConfig.CatalogPath
		}
		return nil, &config.ConfigError{Source: source, Err: err}
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.runner == nil {
		o.runner = runner.NewExec(outW, outW, appConfig.Timeout)
	}
	if o.toolchain == nil {
		o.toolchain = toolchain.New(appConfig.Toolchain, model.Toolchain.Versions)
	}
	if r, ok := o.toolchain.(*toolchain.Random); ok {
		logger.Debug("Toolchain drawn per build.", "candidates", r.Versions())
	}

	reporter := report.New(outW, appConfig.Color)
	pl := pipeline.New(o.runner, appConfig.Tool, o.toolchain)
	pl.Observer = reporter
	if model.Toolchain.Env != "" {
		pl.ToolchainEnv = model.Toolchain.Env
	}

	logger.Debug("Application wired.", "mode", appConfig.Mode, "tool", appConfig.Tool, "contracts", len(model.Catalog.Contracts))
	return &App{
		logger:     logger,
		config:     appConfig,
		model:      model,
		reporter:   reporter,
		discoverer: metadata.NewDiscoverer(o.runner, appConfig.Cargo),
		pipeline:   pl,
		cloner:     source.NewCloner(o.runner, appConfig.Git),
	}, nil
}

// checkCatalog runs the checks that need more than the catalog itself: the
// dependency table must be acyclic as a whole, and build mode needs a
// toolchain to pin.
func checkCatalog(model *config.Model, appConfig *Config) error {
	errs := []error{dag.ValidateDependencies(model.Dependencies)}
	if appConfig.Mode == ModeBuild {
		errs = append(errs, model.RequireToolchain(appConfig.Toolchain))
	}
	return errors.Join(errs...)
}

// Model returns the loaded catalog. This is primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}

// Results returns the per-item outcomes of the last run.
func (a *App) Results() []report.Result {
	return a.reporter.Results()
}

// Run executes the configured mode.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "mode", a.config.Mode)

	switch a.config.Mode {
	case ModeBuild:
		return a.Build(ctx)
	case ModeRepro:
		return a.Repro(ctx)
	}
	return fmt.Errorf("unknown mode %q", a.config.Mode)
}
