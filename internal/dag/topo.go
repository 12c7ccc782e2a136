package dag

import "container/heap"

type stringMinHeap []string

func (h stringMinHeap) Len() int           { return len(h) }
func (h stringMinHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h stringMinHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *stringMinHeap) Push(x any)        { *h = append(*h, x.(string)) }
func (h *stringMinHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// TopologicalOrder returns every node ID ordered so that each node follows
// all of its dependencies. It uses Kahn's algorithm with the ready set kept
// as a min-heap, so among unconstrained nodes the smallest ID goes first and
// the result is the same on every run.
//
// If the graph has a cycle, no order is returned and the error is a
// *DependencyCycleError.
func (g *Graph) TopologicalOrder() ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	indeg := make(map[string]int, len(g.nodes))
	ready := &stringMinHeap{}
	for id, n := range g.nodes {
		indeg[id] = len(n.deps)
		if len(n.deps) == 0 {
			*ready = append(*ready, id)
		}
	}
	heap.Init(ready)

	out := make([]string, 0, len(g.nodes))
	for ready.Len() > 0 {
		id := heap.Pop(ready).(string)
		out = append(out, id)
		for next := range g.nodes[id].dependents {
			indeg[next]--
			if indeg[next] == 0 {
				heap.Push(ready, next)
			}
		}
	}

	if len(out) != len(g.nodes) {
		return nil, &DependencyCycleError{Cycle: g.findCycle()}
	}
	return out, nil
}
