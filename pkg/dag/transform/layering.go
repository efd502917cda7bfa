package transform

import (
	"container/heap"

	"github.com/matzehuels/strata/pkg/dag"
	"github.com/matzehuels/strata/pkg/errors"
)

// AssignRanks assigns every node a rank by longest path over the
// ranking-time edges and returns the highest rank (-1 for an empty graph).
//
// # Algorithm
//
// AssignRanks performs one topological pass (Kahn's algorithm):
//  1. Every node without ranking-time predecessors starts at rank 0
//  2. Ready nodes are taken smallest index first
//  3. Each successor is pushed to max(rank(tail) + min_len)
//  4. A successor becomes ready once all its predecessors are done
//
// Self-loops are skipped. Disconnected components share one global rank
// space: every root, in any component, sits on rank 0.
//
// # Cycles
//
// AssignRanks expects [BreakCycles] to have run. Nodes left unprocessed
// mean a cycle survived, which is reported as an invariant violation.
//
// # Performance
//
// O((V + E) log V) for V nodes and E edges.
func AssignRanks(g *dag.Graph) (int, error) {
	n := g.NodeCount()
	inDeg := make([]int, n)
	for _, e := range g.Edges() {
		if !e.SelfLoop {
			inDeg[e.Head()]++
		}
	}

	ready := &indexHeap{}
	for v := range n {
		g.Node(v).Rank = 0
		if inDeg[v] == 0 {
			heap.Push(ready, v)
		}
	}

	processed, maxRank := 0, -1
	for ready.Len() > 0 {
		v := heap.Pop(ready).(int)
		processed++
		rank := g.Node(v).Rank
		maxRank = max(maxRank, rank)

		for _, ei := range outgoing(g, v) {
			e := g.Edge(ei)
			w := e.Head()
			if r := rank + e.MinLen; r > g.Node(w).Rank {
				g.Node(w).Rank = r
			}
			inDeg[w]--
			if inDeg[w] == 0 {
				heap.Push(ready, w)
			}
		}
	}

	if processed != n {
		return maxRank, errors.New(errors.ErrCodeInvariantViolation,
			"ranking stalled after %d of %d nodes: residual cycle", processed, n)
	}
	return maxRank, nil
}

// outgoing returns the non-self-loop edges whose ranking-time tail is v.
func outgoing(g *dag.Graph, v int) []int {
	var out []int
	for _, ei := range g.Out(v) {
		if e := g.Edge(ei); !e.SelfLoop && !e.Reversed {
			out = append(out, ei)
		}
	}
	for _, ei := range g.In(v) {
		if e := g.Edge(ei); !e.SelfLoop && e.Reversed {
			out = append(out, ei)
		}
	}
	return out
}

// CheckRanks verifies rank(head) - rank(tail) >= min_len for every edge
// that is not a self-loop.
func CheckRanks(g *dag.Graph) error {
	for _, e := range g.Edges() {
		if e.SelfLoop {
			continue
		}
		if span := g.Node(e.Head()).Rank - g.Node(e.Tail()).Rank; span < e.MinLen {
			return errors.New(errors.ErrCodeInvariantViolation,
				"edge %d (%d->%d) spans %d ranks, want at least %d", e.Index, e.From, e.To, span, e.MinLen)
		}
	}
	return nil
}

// indexHeap is a min-heap of node indices.
type indexHeap []int

func (h indexHeap) Len() int           { return len(h) }
func (h indexHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h indexHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *indexHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *indexHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
