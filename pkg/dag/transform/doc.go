// Package transform turns an arbitrary directed graph into the ranked,
// acyclic, adjacent-rank form the ordering phase works on.
//
// # Overview
//
// Diagram graphs may contain cycles, self-loops, parallel edges and edges
// that skip ranks. [Normalize] runs the transformations in order:
//
//  1. [BreakCycles] marks edges reversed until the graph is acyclic
//  2. [AssignRanks] computes longest-path ranks
//  3. [CheckRanks] verifies every edge respects its minimum length
//  4. [Subdivide] chains long edges through virtual nodes
//
// # Cycle Breaking
//
// Four strategies are available, see [Strategy]. None of them deletes or
// rewires an edge: a reversed edge keeps its endpoints and only its
// ranking-time direction flips. Strongly connected components are computed
// with gonum's Tarjan implementation for every strategy, which feeds the
// cycle statistics; the hybrid strategy also uses them to confine cycle
// breaking to each component.
//
// After breaking, the ranking-time graph is topologically sorted once more.
// Failure here, or a stalled ranking pass, is an invariant violation.
//
// # Ranking Policy
//
// Ranks are global. Every node without ranking-time predecessors starts at
// rank 0, regardless of which connected component it belongs to.
package transform
