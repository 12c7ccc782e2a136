package runner

import (
	"context"
	"io"
	"slices"
	"sync"
)

// Response is the scripted outcome of a Fake invocation.
type Response struct {
	Status int
	Stdout string
	Err    error
	// Effect runs before the response is returned, e.g. to create the files
	// a real tool would have written.
	Effect func(Command) error
}

type rule struct {
	match func(Command) bool
	resp  Response
}

// Fake is a Runner that records every command and answers from rules.
// Commands matching no rule succeed with status 0.
type Fake struct {
	mu    sync.Mutex
	rules []rule
	calls []Command
}

// NewFake returns an empty Fake.
func NewFake() *Fake {
	return &Fake{}
}

// On scripts resp for commands named name whose arguments start with argPrefix.
func (f *Fake) On(name string, argPrefix []string, resp Response) *Fake {
	return f.OnFunc(func(c Command) bool {
		return c.Name == name && len(c.Args) >= len(argPrefix) && slices.Equal(c.Args[:len(argPrefix)], argPrefix)
	}, resp)
}

// OnFunc scripts resp for commands accepted by match. Earlier rules win.
func (f *Fake) OnFunc(match func(Command) bool, resp Response) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, rule{match: match, resp: resp})
	return f
}

// Run records c and returns the first matching scripted response.
func (f *Fake) Run(_ context.Context, c Command) (int, error) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	var resp Response
	for _, r := range f.rules {
		if r.match(c) {
			resp = r.resp
			break
		}
	}
	f.mu.Unlock()

	if resp.Effect != nil {
		if err := resp.Effect(c); err != nil {
			return -1, err
		}
	}
	if resp.Stdout != "" && c.Stdout != nil {
		if _, err := io.WriteString(c.Stdout, resp.Stdout); err != nil {
			return -1, err
		}
	}
	return resp.Status, resp.Err
}

// Calls returns a copy of every recorded command, in order.
func (f *Fake) Calls() []Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// CallsTo returns the recorded commands named name whose arguments start
// with argPrefix.
func (f *Fake) CallsTo(name string, argPrefix ...string) []Command {
	var out []Command
	for _, c := range f.Calls() {
		if c.Name == name && len(c.Args) >= len(argPrefix) && slices.Equal(c.Args[:len(argPrefix)], argPrefix) {
			out = append(out, c)
		}
	}
	return out
}

var _ Runner = (*Fake)(nil)
var _ Runner = (*Exec)(nil)
