package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/wasmrepro/internal/artifact"
	"github.com/specialistvlad/wasmrepro/internal/ctxlog"
	"github.com/specialistvlad/wasmrepro/internal/dag"
	"github.com/specialistvlad/wasmrepro/internal/fsutil"
	"github.com/specialistvlad/wasmrepro/internal/report"
)

// ManifestName is the manifest file expected in every contract directory.
const ManifestName = "Cargo.toml"

// ErrNoArtifacts is returned by reproduce mode when the scanned directory
// holds no artifacts.
var ErrNoArtifacts = errors.New("no wasm artifacts found")

// BatchError lists the items that failed in a keep-going run, and those
// skipped because something they depend on failed.
type BatchError struct {
	Total    int
	Failures []report.Result
	Skipped  []report.Result
}

func (e *BatchError) Error() string {
	items := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		items[i] = f.Item
	}
	msg := fmt.Sprintf("%d of %d items failed: %s", len(e.Failures), e.Total, strings.Join(items, ", "))
	if len(e.Skipped) > 0 {
		msg += fmt.Sprintf(" (%d skipped)", len(e.Skipped))
	}
	return msg
}

// Unwrap exposes every failure to errors.Is and errors.As.
func (e *BatchError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f.Err
	}
	return errs
}

// Build makes the source tree available, then builds and optimizes every
// package of every catalog contract, in catalog order.
func (a *App) Build(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	srcDir, err := a.cloner.Resolve(ctx, a.model.Source, a.config.WorkDir, a.config.ProjectPath)
	if err != nil {
		return fmt.Errorf("preparing source: %w", err)
	}
	outDir := filepath.Join(a.config.WorkDir, OutputDirName)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	logger.Info("Build started.", "source", srcDir, "out_dir", outDir, "contracts", len(a.model.Catalog.Contracts))

	for _, contract := range a.model.Catalog.Contracts {
		if err := ctx.Err(); err != nil {
			return err
		}
		a.reporter.Section("contract", contract)
		cctx := ctxlog.With(ctx, "contract", contract)

		manifest := filepath.Join(srcDir, contract, ManifestName)
		pkgs, err := a.discoverer.Discover(cctx, contract, manifest)
		if err != nil {
			if stop := a.fail(contract, fmt.Errorf("contract %s: %w", contract, err)); stop != nil {
				return stop
			}
			continue
		}
		if len(pkgs) == 0 {
			ctxlog.FromContext(cctx).Warn("No contract packages found.", "manifest", manifest)
		}

		for _, pkg := range pkgs {
			item := contract + "/" + pkg.Name
			outcome, err := a.pipeline.Test(cctx, pkg, outDir, srcDir, a.config.Verify)
			if err != nil {
				if stop := a.fail(item, fmt.Errorf("contract %s, package %s: %w", contract, pkg.Name, err)); stop != nil {
					return stop
				}
				continue
			}
			a.reporter.Pass(item, []string{outcome.Wasm, outcome.Optimized}, outcome.Verified)
		}
	}

	return a.finish()
}

// Repro locates the artifacts under the configured wasm directory, orders
// them by the catalog's dependency pairs and reproduces each one against the
// source tree in that order. With keep-going, artifacts that depend on a
// failed or skipped one are skipped.
func (a *App) Repro(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	paths, err := fsutil.FindFilesByExtension(a.config.WasmPath, artifact.Ext)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("%w under %s", ErrNoArtifacts, a.config.WasmPath)
	}
	plan, err := dag.PlanArtifacts(ctx, paths, a.model.Dependencies)
	if err != nil {
		return err
	}

	srcDir, err := a.cloner.Resolve(ctx, a.model.Source, a.config.WorkDir, a.config.ProjectPath)
	if err != nil {
		return fmt.Errorf("preparing source: %w", err)
	}
	logger.Info("Reproduce started.", "source", srcDir, "artifacts", len(plan.Order))
	a.reporter.Section("reproduce", fmt.Sprintf("%d artifacts", len(plan.Order)))

	// identity -> true once it failed or was skipped
	unavailable := make(map[string]bool)
	blocked := make(map[string]bool)
	for _, path := range plan.Order {
		if err := ctx.Err(); err != nil {
			return err
		}
		id := artifact.Identity(path)
		if blocked[id] {
			unavailable[id] = true
			a.reporter.Skip(path, skipReason(plan, id, unavailable))
			continue
		}

		actx := ctxlog.With(ctx, "artifact", path)
		if err := a.pipeline.Reproduce(actx, path, srcDir); err != nil {
			if stop := a.fail(path, fmt.Errorf("artifact %s: %w", path, err)); stop != nil {
				return stop
			}
			unavailable[id] = true
			downstream := plan.Downstream(id)
			for _, d := range downstream {
				blocked[d] = true
			}
			if len(downstream) > 0 {
				logger.Warn("Skipping dependents of failed artifact.", "artifact", path, "dependents", downstream)
			}
			continue
		}
		a.reporter.Pass(path, nil, true)
	}

	return a.finish()
}

func skipReason(plan *dag.Plan, id string, unavailable map[string]bool) string {
	var failed []string
	for _, dep := range plan.Dependencies(id) {
		if unavailable[dep] {
			failed = append(failed, dep)
		}
	}
	return fmt.Sprintf("depends on %s, which did not reproduce", strings.Join(failed, ", "))
}

// fail records a failed item. It returns err when the run must stop, which
// is always unless keep-going is set.
func (a *App) fail(item string, err error) error {
	a.reporter.Record(item, err)
	if !a.config.KeepGoing {
		return err
	}
	a.logger.Warn("Continuing after failure.", "item", item, "error", err)
	return nil
}

func (a *App) finish() error {
	a.reporter.Summary()
	results := a.reporter.Results()
	if failed := a.reporter.Failed(); len(failed) > 0 {
		return &BatchError{Total: len(results), Failures: failed, Skipped: a.reporter.Skipped()}
	}
	return nil
}
