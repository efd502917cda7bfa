// Package ordering reduces edge crossings by reordering nodes within ranks.
//
// Exact crossing minimization is NP-hard even for two ranks, so the
// [Barycenter] orderer runs a fixed number of alternating sweeps and keeps
// whatever the last sweep produced. Crossing counts are measured after each
// sweep with [dag.CountCrossings] for tracing; they never steer the
// heuristic.
//
// The input graph must be ranked and subdivided (see package transform) so
// that every segment joins adjacent ranks. Virtual nodes take part in the
// ordering like any other node.
package ordering
