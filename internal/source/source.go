// Package source makes the reference source tree available locally.
package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/specialistvlad/wasmrepro/internal/config"
	"github.com/specialistvlad/wasmrepro/internal/ctxlog"
	"github.com/specialistvlad/wasmrepro/internal/fsutil"
	"github.com/specialistvlad/wasmrepro/internal/runner"
)

// CloneFailedError reports an unsuccessful clone.
type CloneFailedError struct {
	URL        string
	Dest       string
	ExitStatus int
	Err        error
}

func (e *CloneFailedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cloning %s into %s: %v", e.URL, e.Dest, e.Err)
	}
	return fmt.Sprintf("cloning %s into %s: exit status %d", e.URL, e.Dest, e.ExitStatus)
}

func (e *CloneFailedError) Unwrap() error { return e.Err }

// Cloner fetches the reference repository with git.
type Cloner struct {
	Runner runner.Runner
	Git    string
}

// NewCloner returns a Cloner invoking git through r.
func NewCloner(r runner.Runner, git string) *Cloner {
	if git == "" {
		git = "git"
	}
	return &Cloner{Runner: r, Git: git}
}

// Clone fetches url into dest. A dest that already has content is taken as
// an existing clone and left alone.
func (c *Cloner) Clone(ctx context.Context, url, dest string) error {
	logger := ctxlog.FromContext(ctx)

	populated, err := hasEntries(dest)
	if err != nil {
		return &CloneFailedError{URL: url, Dest: dest, ExitStatus: -1, Err: err}
	}
	if populated {
		logger.Info("Source already present, skipping clone.", "dest", dest)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return &CloneFailedError{URL: url, Dest: dest, ExitStatus: -1, Err: err}
	}

	logger.Info("Cloning source repository.", "url", url, "dest", dest)
	status, err := c.Runner.Run(ctx, runner.Command{Name: c.Git, Args: []string{"clone", url, dest}})
	if err != nil {
		return &CloneFailedError{URL: url, Dest: dest, ExitStatus: -1, Err: err}
	}
	if status != 0 {
		return &CloneFailedError{URL: url, Dest: dest, ExitStatus: status}
	}
	return nil
}

// Resolve returns the absolute path of the source tree to work against:
// project when given (it must be a directory), otherwise a clone of src
// under workDir.
func (c *Cloner) Resolve(ctx context.Context, src config.Source, workDir, project string) (string, error) {
	if project != "" {
		info, err := os.Stat(project)
		if err != nil {
			return "", &fsutil.InvalidDirectoryError{Path: project, Err: err}
		}
		if !info.IsDir() {
			return "", &fsutil.InvalidDirectoryError{Path: project}
		}
		return filepath.Abs(project)
	}

	if src.URL == "" || src.Name == "" {
		return "", errors.New("no --project given and the catalog names no source repository")
	}
	dest, err := filepath.Abs(filepath.Join(workDir, src.Name))
	if err != nil {
		return "", err
	}
	if err := c.Clone(ctx, src.URL, dest); err != nil {
		return "", err
	}
	return dest, nil
}

func hasEntries(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return len(entries) > 0, nil
}
