package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// ErrTimeout is returned when a process exceeds its allotted run time and
// is killed.
var ErrTimeout = errors.New("process timed out")

// Command describes one external process invocation.
type Command struct {
	Name string
	Args []string
	// Env holds variables set on top of the inherited environment.
	Env map[string]string
	Dir string

	// Stdout and Stderr override the runner's default streams when set.
	Stdout io.Writer
	Stderr io.Writer
}

// Runner runs a command to completion and reports its exit status.
//
// A non-nil error means the status could not be observed: the binary was
// not found, the context was cancelled, or the process timed out. A process
// that ran and exited non-zero is reported through the status with a nil error.
type Runner interface {
	Run(ctx context.Context, cmd Command) (int, error)
}

// String renders the command the way it would be typed in a shell, with
// environment overrides first.
func (c Command) String() string {
	var b strings.Builder
	for _, kv := range c.EnvList() {
		b.WriteString(kv)
		b.WriteByte(' ')
	}
	b.WriteString(c.Name)
	for _, a := range c.Args {
		b.WriteByte(' ')
		if a == "" || strings.ContainsAny(a, " \t\"'") {
			fmt.Fprintf(&b, "%q", a)
			continue
		}
		b.WriteString(a)
	}
	return b.String()
}

// EnvList returns the overrides as sorted KEY=VALUE pairs.
func (c Command) EnvList() []string {
	out := make([]string, 0, len(c.Env))
	for k, v := range c.Env {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}
