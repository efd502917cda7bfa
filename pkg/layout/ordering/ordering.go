package ordering

import (
	"cmp"
	"slices"

	"github.com/matzehuels/strata/pkg/dag"
)

// DefaultSweeps is the number of barycenter sweeps used when none is
// configured.
const DefaultSweeps = 4

// Orderer is an interface for within-rank ordering algorithms. An orderer
// decides the sequence of nodes in every rank of a ranked, subdivided
// graph, writes it to each node's Pos and returns it.
type Orderer interface {
	Order(g *dag.Graph) Result
}

// Result is the ordering produced by an [Orderer].
type Result struct {
	// Layers holds node indices per rank, in final left-to-right order.
	Layers [][]int

	// Initial is the crossing count of the starting order.
	Initial int

	// Crossings holds the crossing count after each sweep. It is recorded
	// for tracing only and never influences the ordering.
	Crossings []int
}

// Final returns the crossing count of the returned ordering.
func (r Result) Final() int {
	if len(r.Crossings) == 0 {
		return r.Initial
	}
	return r.Crossings[len(r.Crossings)-1]
}

// Barycenter reorders ranks by the mean position of each node's neighbours
// in the adjacent rank.
//
// Sweeps alternate direction: even sweeps walk down from rank 1 and use the
// rank above as reference, odd sweeps walk up from the second-to-last rank
// and use the rank below. A node without neighbours in the reference rank
// keeps its current position as its key. Ties are broken by previous
// position, then by node index.
//
// Exactly Sweeps sweeps run and the order after the last one is returned,
// even when an earlier sweep had fewer crossings.
type Barycenter struct {
	Sweeps int
}

// Order implements [Orderer].
func (b Barycenter) Order(g *dag.Graph) Result {
	layers := InitialLayers(g)
	g.SetLayers(layers)

	res := Result{Initial: dag.CountCrossings(g)}
	for k := range max(b.Sweeps, 0) {
		if k%2 == 0 {
			for r := 1; r < len(layers); r++ {
				reorder(g, layers[r], g.Upper)
			}
		} else {
			for r := len(layers) - 2; r >= 0; r-- {
				reorder(g, layers[r], g.Lower)
			}
		}
		res.Crossings = append(res.Crossings, dag.CountCrossings(g))
	}
	res.Layers = layers
	return res
}

// InitialLayers groups nodes by rank in ascending index order. Regular
// nodes therefore precede virtual ones, and virtual nodes follow the order
// of the edges they subdivide.
func InitialLayers(g *dag.Graph) [][]int {
	layers := make([][]int, g.MaxRank()+1)
	for _, n := range g.Nodes() {
		layers[n.Rank] = append(layers[n.Rank], n.Index)
	}
	return layers
}

type keyed struct {
	node int
	key  float64
	prev int
}

// reorder sorts layer in place by barycenter and updates Pos.
func reorder(g *dag.Graph, layer []int, neighbours func(int) []int) {
	keys := make([]keyed, len(layer))
	for i, v := range layer {
		prev := g.Node(v).Pos
		keys[i] = keyed{node: v, key: float64(prev), prev: prev}
		if nbrs := neighbours(v); len(nbrs) > 0 {
			sum := 0
			for _, w := range nbrs {
				sum += g.Node(w).Pos
			}
			keys[i].key = float64(sum) / float64(len(nbrs))
		}
	}

	slices.SortFunc(keys, func(a, b keyed) int {
		if c := cmp.Compare(a.key, b.key); c != 0 {
			return c
		}
		if c := cmp.Compare(a.prev, b.prev); c != 0 {
			return c
		}
		return cmp.Compare(a.node, b.node)
	})

	for pos, k := range keys {
		layer[pos] = k.node
		g.Node(k.node).Pos = pos
	}
}
