package dag

import (
	"context"
	"fmt"
	"sort"

	"github.com/specialistvlad/wasmrepro/internal/artifact"
	"github.com/specialistvlad/wasmrepro/internal/config"
	"github.com/specialistvlad/wasmrepro/internal/ctxlog"
)

// Plan is the verification order of a set of artifacts together with the
// identity graph it was derived from.
type Plan struct {
	// Order lists every artifact path so that, for every dependency pair
	// whose Before and After identities were both discovered, all artifacts
	// of Before come ahead of all artifacts of After.
	Order []string

	graph *Graph
}

// PlanArtifacts builds the identity graph over paths and orders them.
//
// Paths are grouped by artifact.Identity before the graph is built, so a
// plain and an optimized build of the same package form one node and are
// emitted together, plain first. Pairs naming identities that were not
// discovered are ignored. A cyclic table yields a *DependencyCycleError.
func PlanArtifacts(ctx context.Context, paths []string, pairs []config.DependencyPair) (*Plan, error) {
	logger := ctxlog.FromContext(ctx)

	groups := groupByIdentity(paths)
	g := New()
	for id := range groups {
		g.AddNode(id)
	}

	edges := 0
	for _, p := range pairs {
		p = p.Normalized()
		if !g.HasNode(p.Before) || !g.HasNode(p.After) {
			logger.Debug("Dependency pair not applicable.", "pair", p.Name, "before", p.Before, "after", p.After)
			continue
		}
		if err := g.AddEdge(p.Before, p.After); err != nil {
			return nil, fmt.Errorf("dependency %q: %w", p.Name, err)
		}
		edges++
	}
	logger.Debug("Dependency graph built.", "nodes", g.Len(), "edges", edges)

	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(paths))
	for _, id := range order {
		out = append(out, groups[id]...)
	}
	return &Plan{Order: out, graph: g}, nil
}

// SortArtifacts returns the Order of PlanArtifacts.
func SortArtifacts(ctx context.Context, paths []string, pairs []config.DependencyPair) ([]string, error) {
	plan, err := PlanArtifacts(ctx, paths, pairs)
	if err != nil {
		return nil, err
	}
	return plan.Order, nil
}

// Dependencies returns the identities id directly depends on, sorted.
// Unknown identities have none.
func (p *Plan) Dependencies(id string) []string {
	deps, err := p.graph.Dependencies(id)
	if err != nil {
		return nil
	}
	return deps
}

// Downstream returns every identity that depends on id directly or through
// other identities, sorted.
func (p *Plan) Downstream(id string) []string {
	seen := make(map[string]bool)
	queue := []string{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		next, err := p.graph.Dependents(cur)
		if err != nil {
			continue
		}
		for _, n := range next {
			if !seen[n] {
				seen[n] = true
				queue = append(queue, n)
			}
		}
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// ValidateDependencies checks the dependency table on its own, over every
// identity it names, and returns a *DependencyCycleError when the pairs form
// a cycle.
func ValidateDependencies(pairs []config.DependencyPair) error {
	g := New()
	for _, p := range pairs {
		p = p.Normalized()
		g.AddNode(p.Before)
		g.AddNode(p.After)
	}
	for _, p := range pairs {
		p = p.Normalized()
		if err := g.AddEdge(p.Before, p.After); err != nil {
			return fmt.Errorf("dependency %q: %w", p.Name, err)
		}
	}
	return g.DetectCycles()
}

// groupByIdentity maps each identity to its distinct paths, unoptimized
// first, then by path.
func groupByIdentity(paths []string) map[string][]string {
	groups := make(map[string][]string)
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		if seen[p] {
			continue
		}
		seen[p] = true
		id := artifact.Identity(p)
		groups[id] = append(groups[id], p)
	}
	for _, group := range groups {
		sort.Slice(group, func(i, j int) bool {
			oi, oj := artifact.IsOptimized(group[i]), artifact.IsOptimized(group[j])
			if oi != oj {
				return !oi
			}
			return group[i] < group[j]
		})
	}
	return groups
}
