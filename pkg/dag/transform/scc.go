package transform

import (
	"slices"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/matzehuels/strata/pkg/dag"
	"github.com/matzehuels/strata/pkg/errors"
)

// StronglyConnected returns the strongly connected components of g in
// canonical form: members ascending, components ordered by smallest
// member. Every node appears in exactly one component. Self-loops and
// parallel edges do not affect the result.
func StronglyConnected(g *dag.Graph) [][]int {
	dg := toGonum(g, func(e dag.Edge) (int, int) { return e.From, e.To })

	sccs := topo.TarjanSCC(dg)
	out := make([][]int, 0, len(sccs))
	for _, c := range sccs {
		ids := make([]int, len(c))
		for i, n := range c {
			ids[i] = int(n.ID())
		}
		slices.Sort(ids)
		out = append(out, ids)
	}
	slices.SortFunc(out, func(a, b []int) int { return a[0] - b[0] })
	return out
}

// VerifyAcyclic checks that the ranking-time graph (edges oriented by
// Tail and Head, self-loops ignored) has a topological order.
func VerifyAcyclic(g *dag.Graph) error {
	dg := toGonum(g, func(e dag.Edge) (int, int) { return e.Tail(), e.Head() })
	if _, err := topo.Sort(dg); err != nil {
		return errors.Wrap(errors.ErrCodeInvariantViolation, err, "residual cycle after cycle breaking")
	}
	return nil
}

func toGonum(g *dag.Graph, orient func(dag.Edge) (int, int)) *simple.DirectedGraph {
	dg := simple.NewDirectedGraph()
	for i := range g.NodeCount() {
		dg.AddNode(simple.Node(i))
	}
	for _, e := range g.Edges() {
		if e.SelfLoop {
			continue
		}
		from, to := orient(e)
		if dg.HasEdgeFromTo(int64(from), int64(to)) {
			continue
		}
		dg.SetEdge(dg.NewEdge(simple.Node(from), simple.Node(to)))
	}
	return dg
}

// cyclicComponents keeps the components that contain a cycle: more than
// one member, or a single member with a self-loop.
func cyclicComponents(g *dag.Graph, components [][]int) [][]int {
	var out [][]int
	for _, c := range components {
		if len(c) > 1 || hasSelfLoop(g, c[0]) {
			out = append(out, c)
		}
	}
	return out
}

func hasSelfLoop(g *dag.Graph, v int) bool {
	for _, ei := range g.Out(v) {
		if g.Edge(ei).SelfLoop {
			return true
		}
	}
	return false
}
