// Package graph defines the diagram representation consumed by the layout
// pipeline and its JSON wire format.
//
// A [Diagram] is what a parser hands to the layout core: a list of nodes,
// edges between node indices, clusters of node indices, opaque placement
// constraints and a global [Direction]. Nodes are identified by position in
// [Diagram.Nodes]; the string ID is a display and round-trip aid only.
//
// # Wire Format
//
//	{
//	  "direction": "LR",
//	  "nodes": [{"id": "a"}, {"id": "b", "label": "Build\nstep"}],
//	  "edges": [{"from": 0, "to": 1}],
//	  "clusters": [{"id": "c1", "title": "stage", "members": [0, 1]}]
//	}
//
// Common operations:
//
//	d, _ := graph.ReadDiagramFile("flow.json")
//	data, _ := graph.MarshalDiagram(d)
//	key := d.Hash()
//
// # Node Sizes
//
// Nodes may carry explicit Width and Height. When either is zero it is
// derived from the label by [NodeSize]: eight units per character of the
// longest line (at least 72) and 40 units of height plus 16 per extra line.
//
// # Constraints
//
// [Constraint] values survive serialization but the layered layout ignores
// them; a diagram with constraints lays out exactly like the same diagram
// without.
package graph
