package pipeline

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/wasmrepro/internal/runner"
)

// Stage names one step of the pipeline.
type Stage string

const (
	StageBuild     Stage = "build"
	StageOptimize  Stage = "optimize"
	StageReproduce Stage = "reproduce"
)

// Sentinel kinds matched by StageError through errors.Is.
var (
	ErrBuildFailed     = errors.New("build failed")
	ErrOptimizeFailed  = errors.New("optimize failed")
	ErrReproduceFailed = errors.New("reproduce failed")
	ErrBuildTimeout    = errors.New("build timed out")
)

// StageError reports a stage whose external tool did not succeed.
//
// When the tool ran and exited non-zero, ExitStatus carries its status and
// Err is nil. When the status could not be observed (tool missing, killed
// on timeout, cancelled) ExitStatus is -1 and Err holds the cause.
type StageError struct {
	Stage      Stage
	Subject    string
	ExitStatus int
	Err        error
}

func (e *StageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s of %s: %v", e.Stage, e.Subject, e.Err)
	}
	return fmt.Sprintf("%s of %s: %s (exit status %d)", e.Stage, e.Subject, e.kind(), e.ExitStatus)
}

func (e *StageError) Unwrap() error { return e.Err }

// Is matches the stage's failure sentinel, or ErrBuildTimeout when the
// process was killed for exceeding its timeout.
func (e *StageError) Is(target error) bool {
	if target == ErrBuildTimeout {
		return errors.Is(e.Err, runner.ErrTimeout)
	}
	return target == e.kind()
}

func (e *StageError) kind() error {
	switch e.Stage {
	case StageBuild:
		return ErrBuildFailed
	case StageOptimize:
		return ErrOptimizeFailed
	case StageReproduce:
		return ErrReproduceFailed
	}
	return nil
}
