package dag

import (
	stderrors "errors"
	"slices"

	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/graph"
)

var (
	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the source
	// index does not name a node.
	ErrUnknownSourceNode = stderrors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the target
	// index does not name a node.
	ErrUnknownTargetNode = stderrors.New("unknown target node")
)

// NodeKind distinguishes diagram nodes from synthetic nodes created while
// layering the graph.
type NodeKind int

const (
	// NodeKindRegular is a node taken from the input diagram.
	NodeKindRegular NodeKind = iota
	// NodeKindVirtual is a zero-size node inserted on an edge that spans more
	// than one rank. Its Origin is the index of the subdivided edge.
	NodeKindVirtual
)

// Node is a vertex of the working graph. Rank and Pos are filled in by the
// ranking and ordering phases.
type Node struct {
	Index  int      // position in the graph's node list
	Kind   NodeKind // regular or virtual
	Rank   int      // layer, 0 = first rank
	Pos    int      // position within the rank, dense from 0
	Width  float64  // extent along x
	Height float64  // extent along y
	Origin int      // subdivided edge index for virtual nodes, -1 otherwise
}

// IsVirtual reports whether the node was inserted by [Graph.AddVirtual].
func (n Node) IsVirtual() bool { return n.Kind == NodeKindVirtual }

// Edge is a directed edge between two nodes. Cycle breaking never changes
// From and To; it only sets Reversed, which flips the ranking-time
// direction returned by Tail and Head.
type Edge struct {
	Index    int
	From     int
	To       int
	MinLen   int
	Reversed bool
	SelfLoop bool
}

// Tail returns the node the edge leaves in ranking-time direction.
func (e Edge) Tail() int {
	if e.Reversed {
		return e.To
	}
	return e.From
}

// Head returns the node the edge enters in ranking-time direction.
func (e Edge) Head() int {
	if e.Reversed {
		return e.From
	}
	return e.To
}

// Segment is a piece of an edge connecting two nodes on adjacent ranks.
// Edges spanning several ranks are split into a chain of segments through
// virtual nodes; all other edges map to exactly one segment.
type Segment struct {
	Upper int // node on rank r
	Lower int // node on rank r+1
	Edge  int // originating edge index
}

// Graph is an index-based directed multigraph used by every layout phase.
// Node and edge identities are plain integers so that cycle detection,
// reversal and ordering are index arithmetic.
//
// The zero value is an empty graph. Graph is not safe for concurrent use.
type Graph struct {
	nodes    []Node
	edges    []Edge
	out      [][]int // node -> outgoing edge indices (original direction)
	in       [][]int // node -> incoming edge indices (original direction)
	segments []Segment
	down     [][]int // node -> lower neighbours via segments
	up       [][]int // node -> upper neighbours via segments
	regular  int
}

// New returns an empty graph with capacity for n nodes.
func New(n int) *Graph {
	return &Graph{
		nodes: make([]Node, 0, n),
		out:   make([][]int, 0, n),
		in:    make([][]int, 0, n),
	}
}

// FromDiagram builds the working graph for d. Node i of the graph is node i
// of the diagram. Extents default from labels.
//
// Broken producer contracts (negative extents, dangling edge endpoints,
// negative minimum lengths, out-of-range cluster members) are rejected with
// [errors.ErrCodeContractViolation].
func FromDiagram(d *graph.Diagram) (*Graph, error) {
	g := New(len(d.Nodes))
	for i, n := range d.Nodes {
		if n.Width < 0 || n.Height < 0 {
			return nil, errors.New(errors.ErrCodeContractViolation,
				"node %d (%s): negative extent %gx%g", i, n.ID, n.Width, n.Height)
		}
		w, h := n.Extent()
		g.AddNode(w, h)
	}
	for i, e := range d.Edges {
		if e.MinLen < 0 {
			return nil, errors.New(errors.ErrCodeContractViolation, "edge %d: negative min_len %d", i, e.MinLen)
		}
		if _, err := g.AddEdge(e.From, e.To, e.MinLen); err != nil {
			return nil, errors.Wrap(errors.ErrCodeContractViolation, err, "edge %d", i)
		}
	}
	for _, c := range d.Clusters {
		for _, m := range c.Members {
			if !g.valid(m) {
				return nil, errors.New(errors.ErrCodeContractViolation,
					"cluster %s: member %d out of range", c.ID, m)
			}
		}
	}
	return g, nil
}

// AddNode appends a regular node with the given extent and returns its index.
func (g *Graph) AddNode(width, height float64) int {
	idx := len(g.nodes)
	g.nodes = append(g.nodes, Node{Index: idx, Width: width, Height: height, Origin: -1})
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	g.regular++
	return idx
}

// AddVirtual appends a zero-size virtual node on the given rank for the
// subdivided edge and returns its index.
func (g *Graph) AddVirtual(rank, edge int) int {
	idx := len(g.nodes)
	g.nodes = append(g.nodes, Node{Index: idx, Kind: NodeKindVirtual, Rank: rank, Origin: edge})
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	return idx
}

// AddEdge appends an edge and returns its index. A minLen of zero means 1.
// Parallel edges and self-loops are allowed.
func (g *Graph) AddEdge(from, to, minLen int) (int, error) {
	if !g.valid(from) {
		return 0, ErrUnknownSourceNode
	}
	if !g.valid(to) {
		return 0, ErrUnknownTargetNode
	}
	if minLen == 0 {
		minLen = 1
	}
	idx := len(g.edges)
	g.edges = append(g.edges, Edge{Index: idx, From: from, To: to, MinLen: minLen, SelfLoop: from == to})
	g.out[from] = append(g.out[from], idx)
	g.in[to] = append(g.in[to], idx)
	return idx, nil
}

func (g *Graph) valid(i int) bool { return i >= 0 && i < len(g.nodes) }

// NodeCount returns the number of nodes, virtual nodes included.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// RegularCount returns the number of diagram nodes.
func (g *Graph) RegularCount() int { return g.regular }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Node returns a pointer to node i. Callers in the layout phases update
// Rank and Pos through it.
func (g *Graph) Node(i int) *Node { return &g.nodes[i] }

// Edge returns a pointer to edge i.
func (g *Graph) Edge(i int) *Edge { return &g.edges[i] }

// Nodes returns the node list. The slice aliases graph storage.
func (g *Graph) Nodes() []Node { return g.nodes }

// Edges returns the edge list. The slice aliases graph storage.
func (g *Graph) Edges() []Edge { return g.edges }

// Out returns the indices of edges leaving node i in original direction.
func (g *Graph) Out(i int) []int { return g.out[i] }

// In returns the indices of edges entering node i in original direction.
func (g *Graph) In(i int) []int { return g.in[i] }

// Successors returns the ranking-time successors of node i: heads of edges
// whose tail is i, self-loops excluded. Duplicates are kept.
func (g *Graph) Successors(i int) []int {
	var out []int
	for _, ei := range g.incident(i) {
		e := g.edges[ei]
		if !e.SelfLoop && e.Tail() == i {
			out = append(out, e.Head())
		}
	}
	return out
}

// incident returns every edge touching i in ascending index order.
func (g *Graph) incident(i int) []int {
	all := make([]int, 0, len(g.out[i])+len(g.in[i]))
	all = append(all, g.out[i]...)
	all = append(all, g.in[i]...)
	slices.Sort(all)
	return slices.Compact(all)
}

// AddSegment records a single-rank piece of edge between upper and lower.
func (g *Graph) AddSegment(upper, lower, edge int) {
	if g.down == nil || len(g.down) < len(g.nodes) {
		g.growNeighbours()
	}
	g.segments = append(g.segments, Segment{Upper: upper, Lower: lower, Edge: edge})
	g.down[upper] = append(g.down[upper], lower)
	g.up[lower] = append(g.up[lower], upper)
}

func (g *Graph) growNeighbours() {
	for len(g.down) < len(g.nodes) {
		g.down = append(g.down, nil)
		g.up = append(g.up, nil)
	}
}

// Segments returns every adjacent-rank segment in insertion order.
func (g *Graph) Segments() []Segment { return g.segments }

// Lower returns the neighbours of node i on rank Rank+1.
func (g *Graph) Lower(i int) []int {
	if i >= len(g.down) {
		return nil
	}
	return g.down[i]
}

// Upper returns the neighbours of node i on rank Rank-1.
func (g *Graph) Upper(i int) []int {
	if i >= len(g.up) {
		return nil
	}
	return g.up[i]
}

// MaxRank returns the highest assigned rank, or -1 for an empty graph.
func (g *Graph) MaxRank() int {
	m := -1
	for _, n := range g.nodes {
		m = max(m, n.Rank)
	}
	return m
}

// Layers groups node indices by rank, each rank ordered by Pos then index.
func (g *Graph) Layers() [][]int {
	layers := make([][]int, g.MaxRank()+1)
	for _, n := range g.nodes {
		layers[n.Rank] = append(layers[n.Rank], n.Index)
	}
	for _, layer := range layers {
		slices.SortStableFunc(layer, func(a, b int) int {
			return g.nodes[a].Pos - g.nodes[b].Pos
		})
	}
	return layers
}

// SetLayers writes Pos for every node from a per-rank ordering.
func (g *Graph) SetLayers(layers [][]int) {
	for _, layer := range layers {
		for pos, idx := range layer {
			g.nodes[idx].Pos = pos
		}
	}
}

// CheckLayers verifies that every node has a non-negative rank and that the
// positions within each rank form exactly 0..k-1.
func (g *Graph) CheckLayers() error {
	seen := make(map[[2]int]int, len(g.nodes))
	counts := make([]int, g.MaxRank()+1)
	for _, n := range g.nodes {
		if n.Rank < 0 {
			return errors.New(errors.ErrCodeInvariantViolation, "node %d has negative rank %d", n.Index, n.Rank)
		}
		key := [2]int{n.Rank, n.Pos}
		if other, dup := seen[key]; dup {
			return errors.New(errors.ErrCodeInvariantViolation,
				"nodes %d and %d share position %d on rank %d", other, n.Index, n.Pos, n.Rank)
		}
		seen[key] = n.Index
		counts[n.Rank]++
	}
	for _, n := range g.nodes {
		if n.Pos < 0 || n.Pos >= counts[n.Rank] {
			return errors.New(errors.ErrCodeInvariantViolation,
				"node %d position %d outside 0..%d on rank %d", n.Index, n.Pos, counts[n.Rank]-1, n.Rank)
		}
	}
	return nil
}
