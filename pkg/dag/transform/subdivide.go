package transform

import "github.com/matzehuels/strata/pkg/dag"

// Subdivide splits every ranked edge into segments between adjacent ranks
// and returns the number of virtual nodes it inserted.
//
// An edge spanning k > 1 ranks gets k-1 virtual nodes, one per skipped
// rank, chained in ranking-time direction:
//
//	Before: a (rank 0) → d (rank 3)
//	After:  a → v1 (rank 1) → v2 (rank 2) → d
//
// Edges are processed in index order, so virtual node indices follow edge
// order and are stable for a given graph. Self-loops get no segments. The
// original edges are left untouched; only segments reference virtual nodes.
func Subdivide(g *dag.Graph) int {
	added := 0
	for i := range g.EdgeCount() {
		e := *g.Edge(i)
		if e.SelfLoop {
			continue
		}
		tail, head := e.Tail(), e.Head()
		from, to := g.Node(tail).Rank, g.Node(head).Rank

		prev := tail
		for r := from + 1; r < to; r++ {
			v := g.AddVirtual(r, e.Index)
			g.AddSegment(prev, v, e.Index)
			prev = v
			added++
		}
		g.AddSegment(prev, head, e.Index)
	}
	return added
}
