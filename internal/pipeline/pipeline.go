package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/specialistvlad/wasmrepro/internal/artifact"
	"github.com/specialistvlad/wasmrepro/internal/ctxlog"
	"github.com/specialistvlad/wasmrepro/internal/metadata"
	"github.com/specialistvlad/wasmrepro/internal/runner"
	"github.com/specialistvlad/wasmrepro/internal/toolchain"
)

// DefaultToolchainEnv is the variable the build tool reads its toolchain from.
const DefaultToolchainEnv = "RUSTUP_TOOLCHAIN"

// Observer is told about every stage before it runs and after it finishes.
type Observer interface {
	StageStarted(stage Stage, subject string)
	StageFinished(stage Stage, subject string, err error)
}

type nopObserver struct{}

func (nopObserver) StageStarted(Stage, string)         {}
func (nopObserver) StageFinished(Stage, string, error) {}

// Pipeline runs the build, optimize and reproduce stages through Runner.
type Pipeline struct {
	Runner runner.Runner
	// Tool is the contract CLI providing the build, optimize and repro subcommands.
	Tool         string
	Toolchain    toolchain.Selector
	ToolchainEnv string
	Observer     Observer
}

// New returns a Pipeline with default toolchain env and no observer.
func New(r runner.Runner, tool string, sel toolchain.Selector) *Pipeline {
	return &Pipeline{Runner: r, Tool: tool, Toolchain: sel, ToolchainEnv: DefaultToolchainEnv}
}

// Outcome lists the artifacts produced for one package.
type Outcome struct {
	Package   string
	Wasm      string
	Optimized string
	Verified  bool
}

// Build compiles pkg into outDir under a selected toolchain version and
// returns the path the artifact is expected at. The file itself is not
// checked for existence.
func (p *Pipeline) Build(ctx context.Context, pkg metadata.Package, outDir string) (string, error) {
	version, err := p.Toolchain.Select()
	if err != nil {
		return "", fmt.Errorf("selecting toolchain for %s: %w", pkg.Name, err)
	}
	ctxlog.FromContext(ctx).Info("Building package.", "package", pkg.Name, "toolchain", version)

	cmd := runner.Command{
		Name: p.Tool,
		Args: []string{
			"contract", "build",
			"--manifest-path", pkg.ManifestPath,
			"--package", pkg.Name,
			"--out-dir", outDir,
		},
		Env: map[string]string{p.toolchainEnv(): version},
	}
	if err := p.run(ctx, StageBuild, pkg.Name, cmd); err != nil {
		return "", err
	}
	return filepath.Join(outDir, artifact.FileName(pkg.Name)), nil
}

// Optimize writes an optimized copy of wasmPath next to it and returns the
// optimized path.
func (p *Pipeline) Optimize(ctx context.Context, wasmPath string) (string, error) {
	out := artifact.OptimizedPath(wasmPath)
	cmd := runner.Command{
		Name: p.Tool,
		Args: []string{"contract", "optimize", "--wasm", wasmPath, "--wasm-out", out},
	}
	if err := p.run(ctx, StageOptimize, filepath.Base(wasmPath), cmd); err != nil {
		return "", err
	}
	return out, nil
}

// Reproduce asks the checker to rebuild wasmPath from sourceDir and compare.
// Both paths are passed to the checker in absolute form. A mismatch is an
// error matching ErrReproduceFailed.
func (p *Pipeline) Reproduce(ctx context.Context, wasmPath, sourceDir string) error {
	// The checker runs inside sourceDir; relative arguments would resolve there.
	wasmPath, err := filepath.Abs(wasmPath)
	if err != nil {
		return fmt.Errorf("resolving artifact path: %w", err)
	}
	sourceDir, err = filepath.Abs(sourceDir)
	if err != nil {
		return fmt.Errorf("resolving source path: %w", err)
	}
	cmd := runner.Command{
		Name: p.Tool,
		Args: []string{"contract", "repro", "--wasm", wasmPath, "--repo", sourceDir},
		Dir:  sourceDir,
	}
	return p.run(ctx, StageReproduce, filepath.Base(wasmPath), cmd)
}

// Test builds and optimizes pkg and, when verify is set, reproduces both
// artifacts against sourceDir. It stops at the first failing stage.
func (p *Pipeline) Test(ctx context.Context, pkg metadata.Package, outDir, sourceDir string, verify bool) (Outcome, error) {
	ctx = ctxlog.With(ctx, "package", pkg.Name)
	outcome := Outcome{Package: pkg.Name}

	wasm, err := p.Build(ctx, pkg, outDir)
	if err != nil {
		return outcome, err
	}
	outcome.Wasm = wasm

	optimized, err := p.Optimize(ctx, wasm)
	if err != nil {
		return outcome, err
	}
	outcome.Optimized = optimized

	if !verify {
		return outcome, nil
	}
	for _, path := range []string{wasm, optimized} {
		if err := p.Reproduce(ctx, path, sourceDir); err != nil {
			return outcome, err
		}
	}
	outcome.Verified = true
	return outcome, nil
}

func (p *Pipeline) run(ctx context.Context, stage Stage, subject string, cmd runner.Command) error {
	logger := ctxlog.FromContext(ctx).With("stage", stage, "subject", subject)
	obs := p.observer()

	obs.StageStarted(stage, subject)
	logger.Debug("Running stage.", "command", cmd.String())

	status, err := p.Runner.Run(ctx, cmd)
	var stageErr error
	switch {
	case err != nil:
		stageErr = &StageError{Stage: stage, Subject: subject, ExitStatus: -1, Err: err}
	case status != 0:
		stageErr = &StageError{Stage: stage, Subject: subject, ExitStatus: status}
	}

	obs.StageFinished(stage, subject, stageErr)
	if stageErr != nil {
		logger.Error("Stage failed.", "error", stageErr)
		return stageErr
	}
	logger.Debug("Stage succeeded.")
	return nil
}

func (p *Pipeline) observer() Observer {
	if p.Observer == nil {
		return nopObserver{}
	}
	return p.Observer
}

func (p *Pipeline) toolchainEnv() string {
	if p.ToolchainEnv == "" {
		return DefaultToolchainEnv
	}
	return p.ToolchainEnv
}
