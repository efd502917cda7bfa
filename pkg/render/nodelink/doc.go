// Package nodelink renders computed layouts as node-link diagrams.
//
// # Overview
//
// [ToDOT] turns a [layout.Layout] into Graphviz DOT source in which every
// node is pinned to the position the layered layout chose. Graphviz then
// acts purely as a drawing backend: [RenderSVG] runs the embedded Graphviz
// (neato engine, which respects pinned positions) and returns SVG.
//
// # Usage
//
//	l, err := layout.Compute(d, cfg)
//	dot := nodelink.ToDOT(l, nodelink.Options{Clusters: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Options
//
//   - Detailed: node labels include rank and order
//   - Clusters: cluster boxes are drawn behind the nodes
//
// # Coordinates
//
// Layout units are treated as points (1/72 inch), the unit Graphviz uses
// for positions. The y axis is flipped against the layout bounds because
// Graphviz places the origin at the bottom left.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering; no Graphviz installation is needed.
package nodelink
