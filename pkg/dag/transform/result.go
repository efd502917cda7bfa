package transform

// Result describes what the graph transformations changed.
//
// BreakCycles fills Strategy, Reversed, SelfLoops and Components;
// AssignRanks and Subdivide add MaxRank and VirtualNodes through the
// pipeline that calls them.
type Result struct {
	// Strategy is the cycle-breaking strategy that produced the result.
	Strategy Strategy

	// Reversed is the number of edges marked reversed, self-loops included.
	// Zero means the input was already acyclic.
	Reversed int

	// SelfLoops is the number of edges whose source equals their target.
	SelfLoops int

	// Components holds every strongly connected component that contains a
	// cycle, in canonical order. Components are found for every strategy;
	// only the hybrid strategy collapses them into cycle clusters.
	Components [][]int

	// MaxRank is the highest rank after ranking, -1 for an empty graph.
	MaxRank int

	// VirtualNodes is the number of nodes inserted on long edges.
	VirtualNodes int
}

// CycleCount returns the number of cyclic components.
func (r Result) CycleCount() int { return len(r.Components) }

// CycleNodeCount returns the number of nodes that lie on some cycle.
func (r Result) CycleNodeCount() int {
	n := 0
	for _, c := range r.Components {
		n += len(c)
	}
	return n
}

// MaxCycleSize returns the size of the largest cyclic component.
func (r Result) MaxCycleSize() int {
	m := 0
	for _, c := range r.Components {
		m = max(m, len(c))
	}
	return m
}
