package layout

import (
	"github.com/matzehuels/strata/pkg/dag"
	"github.com/matzehuels/strata/pkg/graph"
)

// placement holds node coordinates in flow space: p runs along the rank
// progression, s across it. Only regular nodes are placed; virtual nodes
// shape the ordering and nothing else.
type placement struct {
	dir         graph.Direction
	rankSpacing float64

	offset []float64 // rank -> start on the primary axis
	span   []float64 // rank -> largest primary extent

	p, s  []float64 // node -> rectangle start on each axis
	order []int     // node -> position among the rank's regular nodes
}

// place assigns coordinates to every regular node of an ordered graph.
//
// Rank offsets accumulate rank spans plus rankSpacing. For the reversed
// directions (BT, RL) they accumulate from the highest rank down, so that
// rank 0 ends up at the far side while every coordinate stays non-negative.
// Within a rank nodes are packed in layer order with nodeSpacing between
// them.
func place(g *dag.Graph, layers [][]int, dir graph.Direction, nodeSpacing, rankSpacing float64) *placement {
	pl := &placement{
		dir:         dir,
		rankSpacing: rankSpacing,
		offset:      make([]float64, len(layers)),
		span:        make([]float64, len(layers)),
		p:           make([]float64, g.NodeCount()),
		s:           make([]float64, g.NodeCount()),
		order:       make([]int, g.NodeCount()),
	}

	for r, layer := range layers {
		pl.span[r] = 1
		for _, v := range layer {
			if n := g.Node(v); !n.IsVirtual() {
				pl.span[r] = max(pl.span[r], pl.primary(n))
			}
		}
	}

	if dir.Reversed() {
		for r := len(layers) - 2; r >= 0; r-- {
			pl.offset[r] = pl.offset[r+1] + pl.span[r+1] + rankSpacing
		}
	} else {
		for r := 1; r < len(layers); r++ {
			pl.offset[r] = pl.offset[r-1] + pl.span[r-1] + rankSpacing
		}
	}

	for r, layer := range layers {
		cursor, k := 0.0, 0
		for _, v := range layer {
			n := g.Node(v)
			if n.IsVirtual() {
				continue
			}
			pl.p[v] = pl.offset[r]
			pl.s[v] = cursor
			pl.order[v] = k
			cursor += pl.secondary(n) + nodeSpacing
			k++
		}
	}
	return pl
}

// primary returns the node's extent along the rank progression.
func (pl *placement) primary(n *dag.Node) float64 {
	if pl.dir.Horizontal() {
		return n.Width
	}
	return n.Height
}

// secondary returns the node's extent across the rank progression.
func (pl *placement) secondary(n *dag.Node) float64 {
	if pl.dir.Horizontal() {
		return n.Height
	}
	return n.Width
}

// point maps flow coordinates to layout space.
func (pl *placement) point(p, s float64) Point {
	if pl.dir.Horizontal() {
		return Point{X: p, Y: s}
	}
	return Point{X: s, Y: p}
}

// nodeBoxes builds the output boxes for the diagram's nodes.
func (pl *placement) nodeBoxes(d *graph.Diagram, g *dag.Graph) []NodeBox {
	boxes := make([]NodeBox, len(d.Nodes))
	for i, dn := range d.Nodes {
		n := g.Node(i)
		at := pl.point(pl.p[i], pl.s[i])
		boxes[i] = NodeBox{
			Index:   i,
			ID:      dn.ID,
			Label:   dn.DisplayLabel(),
			Shape:   dn.Shape,
			Classes: dn.Classes,
			Rank:    n.Rank,
			Order:   pl.order[i],
			X:       at.X,
			Y:       at.Y,
			Width:   n.Width,
			Height:  n.Height,
		}
	}
	return boxes
}
