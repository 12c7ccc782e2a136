package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/specialistvlad/wasmrepro/internal/ctxlog"
)

// waitDelay bounds how long Run waits for output pipes after the process
// has been killed.
const waitDelay = 5 * time.Second

// Exec runs commands as child processes of the current one.
type Exec struct {
	// Timeout bounds each process. Zero means no limit.
	Timeout time.Duration

	Stdout io.Writer
	Stderr io.Writer
}

// NewExec returns an Exec that streams child output to the given writers.
func NewExec(stdout, stderr io.Writer, timeout time.Duration) *Exec {
	return &Exec{Timeout: timeout, Stdout: stdout, Stderr: stderr}
}

// Run starts the command and blocks until it exits.
func (e *Exec) Run(ctx context.Context, c Command) (int, error) {
	logger := ctxlog.FromContext(ctx)

	runCtx := ctx
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = append(os.Environ(), c.EnvList()...)
	cmd.Stdout = pick(c.Stdout, e.Stdout)
	cmd.Stderr = pick(c.Stderr, e.Stderr)
	cmd.WaitDelay = waitDelay
	killProcessGroup(cmd)

	logger.Debug("Starting external process.", "command", c.String(), "dir", c.Dir)
	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	// The parent context wins over our own deadline: a cancelled run is not a timeout.
	if ctx.Err() != nil {
		return -1, fmt.Errorf("%s: %w", c.Name, ctx.Err())
	}
	if e.Timeout > 0 && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		logger.Warn("External process timed out.", "command", c.Name, "timeout", e.Timeout)
		return -1, fmt.Errorf("%s after %s: %w", c.Name, e.Timeout, ErrTimeout)
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			logger.Debug("External process exited.", "command", c.Name, "status", exitErr.ExitCode(), "elapsed", elapsed)
			return exitErr.ExitCode(), nil
		}
		return -1, fmt.Errorf("failed to run %s: %w", c.Name, err)
	}

	logger.Debug("External process exited.", "command", c.Name, "status", 0, "elapsed", elapsed)
	return 0, nil
}

func pick(w, fallback io.Writer) io.Writer {
	if w != nil {
		return w
	}
	if fallback != nil {
		return fallback
	}
	return io.Discard
}
