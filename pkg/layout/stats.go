package layout

import "github.com/matzehuels/strata/pkg/dag/transform"

// Stats summarizes a layout for diagnostics and regression comparison.
type Stats struct {
	NodeCount               int     `json:"node_count" bson:"node_count"`
	EdgeCount               int     `json:"edge_count" bson:"edge_count"`
	CrossingCount           int     `json:"crossing_count" bson:"crossing_count"`
	TotalEdgeLength         float64 `json:"total_edge_length" bson:"total_edge_length"`
	ReversedEdgeTotalLength float64 `json:"reversed_edge_total_length" bson:"reversed_edge_total_length"`
	ReversedEdges           int     `json:"reversed_edges" bson:"reversed_edges"`
	// CycleCount counts cyclic components, self-loop singletons included.
	// Only multi-node components become cycle clusters.
	CycleCount              int     `json:"cycle_count" bson:"cycle_count"`
	CycleNodeCount          int     `json:"cycle_node_count" bson:"cycle_node_count"`
	MaxCycleSize            int     `json:"max_cycle_size" bson:"max_cycle_size"`
	VirtualNodes            int     `json:"virtual_nodes" bson:"virtual_nodes"`
	Sweeps                  int     `json:"sweeps" bson:"sweeps"`
	PhaseIterations         int     `json:"phase_iterations" bson:"phase_iterations"`
}

// Phase names a pipeline stage recorded in the [Trace].
type Phase string

const (
	PhaseCycleRemoval         Phase = "cycle_removal"
	PhaseRankAssignment       Phase = "rank_assignment"
	PhaseCrossingMinimization Phase = "crossing_minimization"
	PhaseCoordinateAssignment Phase = "coordinate_assignment"
	PhaseEdgeRouting          Phase = "edge_routing"
	PhaseClusterAggregation   Phase = "cluster_aggregation"
)

// Phases lists the pipeline stages in execution order.
var Phases = []Phase{
	PhaseCycleRemoval,
	PhaseRankAssignment,
	PhaseCrossingMinimization,
	PhaseCoordinateAssignment,
	PhaseEdgeRouting,
	PhaseClusterAggregation,
}

// Snapshot captures the pipeline state after one phase. Fields that a phase
// has not produced yet are left zero. Snapshots carry no timings so that the
// trace stays deterministic.
type Snapshot struct {
	Phase     Phase `json:"phase" bson:"phase"`
	Reversed  int   `json:"reversed" bson:"reversed"`
	MaxRank   int   `json:"max_rank" bson:"max_rank"`
	Virtual   int   `json:"virtual_nodes" bson:"virtual_nodes"`
	Crossings int   `json:"crossings" bson:"crossings"`
	Ranks     []int `json:"ranks,omitempty" bson:"ranks,omitempty"`
	Routed    int   `json:"routed,omitempty" bson:"routed,omitempty"`
	Clusters  int   `json:"clusters,omitempty" bson:"clusters,omitempty"`
}

// Trace records how the pipeline arrived at a layout.
type Trace struct {
	Snapshots        []Snapshot `json:"snapshots" bson:"snapshots"`
	InitialCrossings int        `json:"initial_crossings" bson:"initial_crossings"`
	SweepCrossings   []int      `json:"sweep_crossings,omitempty" bson:"sweep_crossings,omitempty"`
}

func (t *Trace) record(s Snapshot) {
	t.Snapshots = append(t.Snapshots, s)
}

// collectStats derives the summary from the finished layout.
func collectStats(l *Layout, cyc transform.Result, crossings, sweeps int) Stats {
	s := Stats{
		NodeCount:       len(l.Nodes),
		EdgeCount:       len(l.Edges),
		CrossingCount:   crossings,
		ReversedEdges:   cyc.Reversed,
		CycleCount:      cyc.CycleCount(),
		CycleNodeCount:  cyc.CycleNodeCount(),
		MaxCycleSize:    cyc.MaxCycleSize(),
		VirtualNodes:    cyc.VirtualNodes,
		Sweeps:          sweeps,
		PhaseIterations: len(l.Trace.Snapshots),
	}
	for _, e := range l.Edges {
		s.TotalEdgeLength += e.Length
		if e.Reversed {
			s.ReversedEdgeTotalLength += e.Length
		}
	}
	return s
}
