// Package report prints stage-by-stage progress lines and the end-of-run
// summary a user reads while a catalog is being processed.
package report

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/gookit/color"
	"github.com/specialistvlad/wasmrepro/internal/pipeline"
)

// Result is the outcome of one catalog item (a package in build mode, an
// artifact in reproduce mode).
type Result struct {
	Item string
	// Artifacts lists the files produced for Item.
	Artifacts []string
	Verified  bool
	// Skipped marks an item that was not attempted; Reason says why.
	Skipped bool
	Reason  string
	Err     error
}

// OK reports whether the item completed.
func (r Result) OK() bool { return r.Err == nil && !r.Skipped }

// Reporter writes progress lines and collects results.
type Reporter struct {
	mu      sync.Mutex
	w       io.Writer
	color   bool
	results []Result
}

// New returns a Reporter writing to w. Colors are emitted only when
// useColor is set.
func New(w io.Writer, useColor bool) *Reporter {
	return &Reporter{w: w, color: useColor}
}

// Section prints a header announcing the next group of work.
func (r *Reporter) Section(kind, name string) {
	r.printf("%s\n", r.paint(color.Cyan, fmt.Sprintf("------- %s: %s ----------", kind, name)))
}

// StageStarted announces a stage before it runs.
func (r *Reporter) StageStarted(stage pipeline.Stage, subject string) {
	r.printf("%s %s %s\n", r.paint(color.Blue, "▶"), r.paint(color.Bold, string(stage)), subject)
}

// StageFinished prints the outcome of a stage.
func (r *Reporter) StageFinished(stage pipeline.Stage, subject string, err error) {
	if err != nil {
		r.printf("%s %s %s: %v\n", r.paint(color.Red, "❌"), r.paint(color.Bold, string(stage)), subject, err)
		return
	}
	r.printf("%s %s %s\n", r.paint(color.Green, "✅"), r.paint(color.Bold, string(stage)), subject)
}

// Record stores the outcome of one item.
func (r *Reporter) Record(item string, err error) {
	r.add(Result{Item: item, Err: err})
}

// Pass stores a completed item with the artifacts it produced.
func (r *Reporter) Pass(item string, artifacts []string, verified bool) {
	r.add(Result{Item: item, Artifacts: artifacts, Verified: verified})
}

// Skip stores an item that was not attempted and prints why.
func (r *Reporter) Skip(item, reason string) {
	r.printf("%s %s %s: %s\n", r.paint(color.Yellow, "⏭"), r.paint(color.Bold, "skip"), item, reason)
	r.add(Result{Item: item, Skipped: true, Reason: reason})
}

func (r *Reporter) add(res Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
}

// Results returns the recorded outcomes in order.
func (r *Reporter) Results() []Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Result(nil), r.results...)
}

// Failed returns the recorded failures in order.
func (r *Reporter) Failed() []Result {
	return r.filter(func(res Result) bool { return res.Err != nil })
}

// Skipped returns the items that were not attempted, in order.
func (r *Reporter) Skipped() []Result {
	return r.filter(func(res Result) bool { return res.Skipped })
}

func (r *Reporter) filter(keep func(Result) bool) []Result {
	var out []Result
	for _, res := range r.Results() {
		if keep(res) {
			out = append(out, res)
		}
	}
	return out
}

// Summary prints pass/fail/skip counts, the artifacts of every passed item
// and every failure.
func (r *Reporter) Summary() {
	results := r.Results()
	failed := r.Failed()
	skipped := r.Skipped()
	passed := len(results) - len(failed) - len(skipped)

	r.printf("\n%s %d passed, %d failed, %d skipped\n", r.paint(color.Bold, "Summary:"), passed, len(failed), len(skipped))
	for _, res := range results {
		switch {
		case res.Err != nil:
			r.printf("  %s %-40s %v\n", r.paint(color.Red, "✗"), res.Item, res.Err)
		case res.Skipped:
			r.printf("  %s %-40s %s\n", r.paint(color.Yellow, "-"), res.Item, res.Reason)
		case len(res.Artifacts) > 0:
			line := strings.Join(res.Artifacts, ", ")
			if res.Verified {
				line += " (verified)"
			}
			r.printf("  %s %-40s %s\n", r.paint(color.Green, "✓"), res.Item, line)
		}
	}
}

func (r *Reporter) paint(c color.Color, s string) string {
	if !r.color {
		return s
	}
	return c.Sprint(s)
}

func (r *Reporter) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, format, args...)
}

var _ pipeline.Observer = (*Reporter)(nil)
