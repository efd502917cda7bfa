// Package layout computes deterministic layered layouts for diagrams.
//
// [Compute] takes an immutable [graph.Diagram] and a [Config] and runs the
// layered pipeline:
//
//  1. Cycle removal: mark edges reversed until the graph is acyclic
//     (package transform).
//  2. Rank assignment: longest-path layering, roots at rank 0.
//  3. Crossing minimization: barycenter sweeps over the graph with long
//     edges subdivided into virtual nodes (package ordering).
//  4. Coordinate assignment: pack ranks along the primary axis and nodes
//     along the secondary axis, honouring the flow direction.
//  5. Edge routing: orthogonal step polylines, simplified.
//  6. Cluster aggregation: padded boxes around declared clusters and
//     around strongly connected components found during cycle removal.
//
// The result is a [Layout] holding node boxes, edge polylines, cluster
// boxes, overall bounds, [Stats] and a [Trace] with one snapshot per phase.
//
// # Determinism
//
// Every phase breaks ties by node or edge index and no phase depends on map
// iteration, clocks or randomness. Identical inputs produce byte-identical
// JSON, which [Layout.Hash] exposes for regression checks.
//
// # Errors
//
// Broken producer contracts fail with errors.ErrCodeContractViolation and
// internal defects with errors.ErrCodeInvariantViolation. Degenerate input
// (empty diagrams, self-loops, empty clusters) always yields a layout; empty
// clusters are reported through [Layout.Diagnostics]. Spline routing and
// the non-layered algorithm families are rejected with
// errors.ErrCodeUnsupported.
//
// Placement constraints on the diagram are accepted and ignored.
//
// # Concurrency
//
// Compute keeps no state between calls. Independent diagrams may be laid
// out concurrently.
package layout
