// Package dag provides the index-based directed graph shared by every phase
// of the layered layout.
//
// # Overview
//
// A [Graph] stores nodes and edges in slices and refers to them by integer
// index. Nothing in the graph is keyed by pointer identity or iterated from
// a map, so every traversal is deterministic: adjacency lists hold edge
// indices in insertion order and callers that need canonical order sort by
// index.
//
// Build a graph from a diagram with [FromDiagram], or by hand:
//
//	g := dag.New(3)
//	a := g.AddNode(72, 40)
//	b := g.AddNode(72, 40)
//	g.AddEdge(a, b, 1)
//
// # Reversed Edges
//
// Cycle breaking never rewires an edge. It sets [Edge.Reversed], and the
// ranking phases read the ranking-time direction through [Edge.Tail] and
// [Edge.Head]. The original endpoints stay available for routing, so a
// reversed edge is still drawn from its real source to its real target.
//
// # Node Kinds
//
//   - [NodeKindRegular]: nodes taken from the diagram, indices 0..n-1
//   - [NodeKindVirtual]: zero-size nodes appended after the regular ones,
//     one per skipped rank of a long edge
//
// # Segments and Crossings
//
// After ranking, every edge is represented by one or more [Segment] values
// joining adjacent ranks. [CountCrossings] counts segment crossings per pair
// of adjacent ranks by sorting segments by upper position and counting
// inversions in the lower positions with a merge sort ([CountInversions]).
//
// # Invariants
//
// [Graph.CheckLayers] verifies that positions inside every rank are a dense
// permutation. A failure is reported as an invariant violation: it means a
// layout phase is broken, not that the input was bad.
package dag
