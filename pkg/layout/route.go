package layout

import (
	"slices"

	"github.com/matzehuels/strata/pkg/dag"
	"github.com/matzehuels/strata/pkg/graph"
)

// routeEdges draws every edge of d as an orthogonal step polyline.
//
// An edge leaves the middle of its ranking-time tail on the side facing the
// head's rank, turns in the channel halfway through the gap after the
// tail's rank, runs across to the head's secondary center and enters the
// head on the side facing the tail:
//
//	tail ──┐
//	       │ channel
//	       └── head
//
// Collinear and repeated points are then removed, so aligned endpoints
// produce a single straight segment.
func routeEdges(d *graph.Diagram, g *dag.Graph, pl *placement) []EdgePath {
	paths := make([]EdgePath, len(d.Edges))
	for i, de := range d.Edges {
		e := g.Edge(i)

		var pts []Point
		if e.SelfLoop {
			pts = pl.selfLoop(g.Node(e.From))
		} else {
			pts = Simplify(pl.step(g.Node(e.Tail()), g.Node(e.Head())))
			if e.Reversed {
				slices.Reverse(pts)
			}
		}

		paths[i] = EdgePath{
			Index:    i,
			From:     de.From,
			To:       de.To,
			Label:    de.Label,
			Reversed: e.Reversed,
			SelfLoop: e.SelfLoop,
			Points:   pts,
			Length:   PolylineLength(pts),
		}
	}
	return paths
}

// step returns the unsimplified four-point route from tail to head.
func (pl *placement) step(tail, head *dag.Node) []Point {
	st := pl.s[tail.Index] + pl.secondary(tail)/2
	sh := pl.s[head.Index] + pl.secondary(head)/2

	var pt, ph, channel float64
	if pl.dir.Reversed() {
		pt = pl.p[tail.Index]
		ph = pl.p[head.Index] + pl.primary(head)
		channel = pl.offset[tail.Rank] - pl.rankSpacing/2
	} else {
		pt = pl.p[tail.Index] + pl.primary(tail)
		ph = pl.p[head.Index]
		channel = pl.offset[tail.Rank] + pl.span[tail.Rank] + pl.rankSpacing/2
	}

	return []Point{
		pl.point(pt, st),
		pl.point(channel, st),
		pl.point(channel, sh),
		pl.point(ph, sh),
	}
}

// selfLoop returns a rectangular loop on the node's far side, reaching
// half the rank spacing into the following gap.
func (pl *placement) selfLoop(n *dag.Node) []Point {
	ext := pl.secondary(n)
	s1 := pl.s[n.Index] + ext/3
	s2 := pl.s[n.Index] + 2*ext/3

	depth := pl.rankSpacing / 2
	side := pl.p[n.Index] + pl.primary(n)
	if pl.dir.Reversed() {
		depth = -depth
		side = pl.p[n.Index]
	}

	return []Point{
		pl.point(side, s1),
		pl.point(side+depth, s1),
		pl.point(side+depth, s2),
		pl.point(side, s2),
	}
}
