package cli

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/gookit/color"
	"github.com/spf13/cobra"
	"github.com/specialistvlad/wasmrepro/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Usage errors and invalid configuration exit with this code.
const usageExitCode = 2

// flags holds the values bound by the command tree.
type flags struct {
	workDir   string
	catalog   string
	tool      string
	cargo     string
	git       string
	timeout   time.Duration
	keepGoing bool
	logLevel  string
	logFormat string
	noColor   bool

	project   string
	toolchain string
	verify    bool
	wasm      string
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly (help was shown),
// or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	var (
		f        flags
		selected *app.Config
	)
	choose := func(mode app.Mode) func(*cobra.Command, []string) error {
		return func(*cobra.Command, []string) error {
			cfg, err := app.NewConfig(f.config(mode))
			if err != nil {
				return &ExitError{Code: usageExitCode, Message: err.Error()}
			}
			selected = cfg
			return nil
		}
	}

	root := newRootCommand(&f)
	root.AddCommand(newBuildCommand(&f, choose(app.ModeBuild)), newReproCommand(&f, choose(app.ModeRepro)))
	if args == nil {
		args = []string{}
	}
	root.SetArgs(args)
	root.SetOut(output)
	root.SetErr(output)

	if err := root.Execute(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return nil, false, exitErr
		}
		return nil, false, &ExitError{Code: usageExitCode, Message: err.Error()}
	}
	if selected == nil {
		slog.Debug("No command selected, exiting after help output.")
		return nil, true, nil
	}

	slog.Debug("CLI parser finished successfully.", "mode", selected.Mode)
	return selected, false, nil
}

func newRootCommand(f *flags) *cobra.Command {
	root := &cobra.Command{
		Use:   "wasmrepro",
		Short: "Build example smart contracts and check their WASM artifacts reproduce",
		Long: `wasmrepro builds every contract of a catalog from a reference source tree,
optimizes the resulting WASM artifacts and verifies that rebuilding from source
reproduces them byte for byte.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true

	pf := root.PersistentFlags()
	pf.StringVar(&f.workDir, "work-dir", "repro-test", "directory for the source clone and built artifacts")
	pf.StringVar(&f.catalog, "catalog", "", "HCL catalog file replacing the built-in one")
	pf.StringVar(&f.tool, "tool", "soroban", "contract CLI used to build, optimize and reproduce")
	pf.StringVar(&f.cargo, "cargo", "cargo", "cargo binary used to read package metadata")
	pf.StringVar(&f.git, "git", "git", "git binary used to clone the source repository")
	pf.DurationVar(&f.timeout, "timeout", 0, "limit for each external command, e.g. 10m (0 disables)")
	pf.BoolVar(&f.keepGoing, "keep-going", false, "continue after a failure and report all failures at the end")
	pf.StringVar(&f.logLevel, "log-level", "info", "logging level: 'debug', 'info', 'warn' or 'error'")
	pf.StringVar(&f.logFormat, "log-format", "text", "log output format: 'text' or 'json'")
	pf.BoolVar(&f.noColor, "no-color", false, "disable colored status output")
	return root
}

func newBuildCommand(f *flags, run func(*cobra.Command, []string) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build and optimize every contract in the catalog",
		Args:  cobra.NoArgs,
		RunE:  run,
	}
	cmd.Flags().StringVar(&f.project, "project", "", "existing source tree to build instead of cloning")
	cmd.Flags().StringVar(&f.toolchain, "toolchain", "", "pin the Rust toolchain (default: random from the catalog)")
	cmd.Flags().BoolVar(&f.verify, "verify", false, "reproduce each artifact right after building it")
	return cmd
}

func newReproCommand(f *flags, run func(*cobra.Command, []string) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repro --wasm <dir>",
		Short: "Reproduce existing WASM artifacts in dependency order",
		Args:  cobra.NoArgs,
		RunE:  run,
	}
	cmd.Flags().StringVar(&f.wasm, "wasm", "", "directory searched recursively for .wasm artifacts")
	cmd.Flags().StringVar(&f.project, "project", "", "existing source tree to reproduce against instead of cloning")
	_ = cmd.MarkFlagRequired("wasm")
	return cmd
}

func (f *flags) config(mode app.Mode) app.Config {
	return app.Config{
		Mode:        mode,
		WorkDir:     f.workDir,
		ProjectPath: f.project,
		WasmPath:    f.wasm,
		CatalogPath: f.catalog,
		Tool:        f.tool,
		Cargo:       f.cargo,
		Git:         f.git,
		Toolchain:   f.toolchain,
		Timeout:     f.timeout,
		Verify:      f.verify,
		KeepGoing:   f.keepGoing,
		LogFormat:   f.logFormat,
		LogLevel:    f.logLevel,
		Color:       !f.noColor && color.SupportColor(),
	}
}
