package transform

import (
	"slices"
	"strings"

	"github.com/matzehuels/strata/pkg/dag"
	"github.com/matzehuels/strata/pkg/errors"
)

// Strategy selects how [BreakCycles] chooses the edges to reverse.
type Strategy string

const (
	// StrategyGreedy runs a depth-first search from every root, then from
	// every unvisited node, in index order and reverses each edge that
	// closes back onto the current search path.
	StrategyGreedy Strategy = "greedy"
	// StrategyDFSBack classifies every edge of a depth-first forest started
	// from each node in index order and reverses the back edges.
	StrategyDFSBack Strategy = "dfs-back"
	// StrategyMFAS orders nodes with the Eades-Lin-Smyth heuristic for the
	// minimum feedback arc set and reverses every edge pointing backwards
	// in that order.
	StrategyMFAS Strategy = "mfas"
	// StrategyHybrid finds strongly connected components first and breaks
	// cycles inside each component independently. The components are kept
	// so that later phases can draw them as collapsed cycle clusters.
	StrategyHybrid Strategy = "hybrid"
)

// DefaultStrategy is used when no strategy is configured.
const DefaultStrategy = StrategyHybrid

// Strategies lists every strategy in canonical order.
var Strategies = []Strategy{StrategyGreedy, StrategyDFSBack, StrategyMFAS, StrategyHybrid}

// ParseStrategy parses a strategy name. Besides the canonical names it
// accepts dfs_back and dfs for [StrategyDFSBack] and cycle-aware for
// [StrategyHybrid]. An empty name yields [DefaultStrategy].
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultStrategy, nil
	case "greedy":
		return StrategyGreedy, nil
	case "dfs-back", "dfs_back", "dfs":
		return StrategyDFSBack, nil
	case "mfas":
		return StrategyMFAS, nil
	case "hybrid", "cycle-aware":
		return StrategyHybrid, nil
	}
	return "", errors.New(errors.ErrCodeInvalidConfig,
		"unknown cycle strategy %q (want greedy, dfs-back, mfas or hybrid)", s)
}

// BreakCycles marks a set of edges as reversed so that the ranking-time
// graph becomes acyclic. Original endpoints are never changed. Self-loops
// are always marked reversed and excluded from ranking.
//
// Every strategy is deterministic for a given graph. The result is checked
// with a topological sort; a residual cycle is reported as an invariant
// violation.
func BreakCycles(g *dag.Graph, strategy Strategy) (Result, error) {
	res := Result{Strategy: strategy}
	for i := range g.Edges() {
		e := g.Edge(i)
		e.Reversed = e.SelfLoop
		if e.SelfLoop {
			res.SelfLoops++
		}
	}

	components := StronglyConnected(g)
	res.Components = cyclicComponents(g, components)

	var reverse []int
	switch strategy {
	case StrategyGreedy:
		reverse = greedyBackEdges(g)
	case StrategyDFSBack:
		for i, c := range ClassifyEdges(g) {
			if c == EdgeBack {
				reverse = append(reverse, i)
			}
		}
	case StrategyMFAS:
		reverse = feedbackArcs(g)
	case StrategyHybrid:
		reverse = componentBackEdges(g, components)
	default:
		return res, errors.New(errors.ErrCodeInvalidConfig, "unknown cycle strategy %q", strategy)
	}

	for _, i := range reverse {
		g.Edge(i).Reversed = true
	}
	res.Reversed = len(reverse) + res.SelfLoops

	if err := VerifyAcyclic(g); err != nil {
		return res, err
	}
	return res, nil
}

const (
	white = iota
	gray
	black
)

// greedyBackEdges runs a DFS from every root first and then from every
// remaining node, both in index order.
func greedyBackEdges(g *dag.Graph) []int {
	n := g.NodeCount()
	color := make([]int, n)
	var back []int

	var dfs func(v int)
	dfs = func(v int) {
		color[v] = gray
		for _, ei := range g.Out(v) {
			e := g.Edge(ei)
			if e.SelfLoop {
				continue
			}
			switch color[e.To] {
			case white:
				dfs(e.To)
			case gray:
				back = append(back, ei)
			}
		}
		color[v] = black
	}

	for v := range n {
		if color[v] == white && isRoot(g, v) {
			dfs(v)
		}
	}
	for v := range n {
		if color[v] == white {
			dfs(v)
		}
	}
	slices.Sort(back)
	return back
}

func isRoot(g *dag.Graph, v int) bool {
	for _, ei := range g.In(v) {
		if !g.Edge(ei).SelfLoop {
			return false
		}
	}
	return true
}

// EdgeClass is the role of an edge in a depth-first forest.
type EdgeClass int

const (
	EdgeTree EdgeClass = iota
	EdgeForward
	EdgeBack
	EdgeCross
	EdgeSelfLoop
)

func (c EdgeClass) String() string {
	switch c {
	case EdgeTree:
		return "tree"
	case EdgeForward:
		return "forward"
	case EdgeBack:
		return "back"
	case EdgeCross:
		return "cross"
	case EdgeSelfLoop:
		return "self-loop"
	}
	return "unknown"
}

// ClassifyEdges classifies every edge of g against a depth-first forest
// whose trees are started from each unvisited node in index order. The
// returned slice is indexed by edge index.
func ClassifyEdges(g *dag.Graph) []EdgeClass {
	n := g.NodeCount()
	classes := make([]EdgeClass, g.EdgeCount())
	color := make([]int, n)
	disc := make([]int, n)
	clock := 0

	var dfs func(v int)
	dfs = func(v int) {
		color[v] = gray
		disc[v] = clock
		clock++
		for _, ei := range g.Out(v) {
			e := g.Edge(ei)
			w := e.To
			switch {
			case e.SelfLoop:
				classes[ei] = EdgeSelfLoop
			case color[w] == white:
				classes[ei] = EdgeTree
				dfs(w)
			case color[w] == gray:
				classes[ei] = EdgeBack
			case disc[v] < disc[w]:
				classes[ei] = EdgeForward
			default:
				classes[ei] = EdgeCross
			}
		}
		color[v] = black
	}

	for v := range n {
		if color[v] == white {
			dfs(v)
		}
	}
	return classes
}

// componentBackEdges runs a DFS inside every cyclic component, starting at
// its smallest member and following only edges that stay in the component.
func componentBackEdges(g *dag.Graph, components [][]int) []int {
	comp := make([]int, g.NodeCount())
	for ci, c := range components {
		for _, v := range c {
			comp[v] = ci
		}
	}
	color := make([]int, g.NodeCount())
	var back []int

	var dfs func(v int)
	dfs = func(v int) {
		color[v] = gray
		for _, ei := range g.Out(v) {
			e := g.Edge(ei)
			if e.SelfLoop || comp[e.To] != comp[v] {
				continue
			}
			switch color[e.To] {
			case white:
				dfs(e.To)
			case gray:
				back = append(back, ei)
			}
		}
		color[v] = black
	}

	for _, c := range components {
		if len(c) < 2 {
			continue
		}
		for _, v := range c {
			if color[v] == white {
				dfs(v)
			}
		}
	}
	slices.Sort(back)
	return back
}

// feedbackArcs computes the Eades-Lin-Smyth vertex sequence and returns the
// edges pointing from a later to an earlier vertex.
func feedbackArcs(g *dag.Graph) []int {
	n := g.NodeCount()
	alive := make([]bool, n)
	outDeg := make([]int, n)
	inDeg := make([]int, n)
	for v := range n {
		alive[v] = true
	}
	for _, e := range g.Edges() {
		if e.SelfLoop {
			continue
		}
		outDeg[e.From]++
		inDeg[e.To]++
	}

	remove := func(v int) {
		alive[v] = false
		for _, ei := range g.Out(v) {
			if e := g.Edge(ei); !e.SelfLoop {
				inDeg[e.To]--
			}
		}
		for _, ei := range g.In(v) {
			if e := g.Edge(ei); !e.SelfLoop {
				outDeg[e.From]--
			}
		}
	}

	var left, right []int
	remaining := n
	for remaining > 0 {
		for changed := true; changed; {
			changed = false
			for v := range n {
				if alive[v] && outDeg[v] == 0 {
					right = append(right, v)
					remove(v)
					remaining--
					changed = true
				}
			}
		}
		for changed := true; changed; {
			changed = false
			for v := range n {
				if alive[v] && inDeg[v] == 0 {
					left = append(left, v)
					remove(v)
					remaining--
					changed = true
				}
			}
		}
		if remaining == 0 {
			break
		}
		best, bestDelta := -1, 0
		for v := range n {
			if !alive[v] {
				continue
			}
			if d := outDeg[v] - inDeg[v]; best < 0 || d > bestDelta {
				best, bestDelta = v, d
			}
		}
		left = append(left, best)
		remove(best)
		remaining--
	}

	slices.Reverse(right)
	order := append(left, right...)
	pos := make([]int, n)
	for i, v := range order {
		pos[v] = i
	}

	var back []int
	for _, e := range g.Edges() {
		if !e.SelfLoop && pos[e.From] > pos[e.To] {
			back = append(back, e.Index)
		}
	}
	return back
}
