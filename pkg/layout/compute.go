package layout

import (
	"github.com/matzehuels/strata/pkg/dag"
	"github.com/matzehuels/strata/pkg/dag/transform"
	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/graph"
	"github.com/matzehuels/strata/pkg/layout/ordering"
)

// Compute lays out d with cfg. It resolves the configuration, selects the
// layout family and runs it.
//
// The result is either a complete layout or an error, never both. A panic
// inside the pipeline is recovered and returned as
// [errors.ErrCodeInternal] so that a layout bug cannot take down the
// caller.
func Compute(d *graph.Diagram, cfg Config) (l *Layout, err error) {
	defer func() {
		if r := recover(); r != nil {
			l, err = nil, errors.New(errors.ErrCodeInternal, "layout panicked: %v", r)
		}
	}()

	cfg, err = cfg.Resolve()
	if err != nil {
		return nil, err
	}
	layouter, err := Select(cfg.Algorithm)
	if err != nil {
		return nil, err
	}
	return layouter.Layout(d, cfg)
}

// layered runs the layered pipeline on a resolved configuration.
func layered(d *graph.Diagram, cfg Config) (*Layout, error) {
	if d == nil {
		return nil, errors.New(errors.ErrCodeContractViolation, "nil diagram")
	}
	dir, err := cfg.direction(d)
	if err != nil {
		return nil, err
	}
	g, err := dag.FromDiagram(d)
	if err != nil {
		return nil, err
	}

	cyc, err := transform.Normalize(g, cfg.CycleStrategy)
	if err != nil {
		return nil, err
	}

	// Subdivision leaves regular ranks untouched, so both snapshots can be
	// taken after the fact.
	var tr Trace
	tr.record(Snapshot{Phase: PhaseCycleRemoval, Reversed: cyc.Reversed, MaxRank: -1})
	tr.record(Snapshot{
		Phase:    PhaseRankAssignment,
		Reversed: cyc.Reversed,
		MaxRank:  cyc.MaxRank,
		Ranks:    regularRanks(g),
	})

	ord := ordering.Barycenter{Sweeps: cfg.SweepCount}.Order(g)
	if err := g.CheckLayers(); err != nil {
		return nil, err
	}
	crossings := dag.CountCrossings(g)
	tr.InitialCrossings = ord.Initial
	tr.SweepCrossings = ord.Crossings
	base := Snapshot{
		Reversed:  cyc.Reversed,
		MaxRank:   cyc.MaxRank,
		Virtual:   cyc.VirtualNodes,
		Crossings: crossings,
		Ranks:     regularRanks(g),
	}
	tr.record(withPhase(base, PhaseCrossingMinimization))

	pl := place(g, ord.Layers, dir, cfg.NodeSpacing, cfg.RankSpacing)
	l := &Layout{Direction: dir, Nodes: pl.nodeBoxes(d, g)}
	tr.record(withPhase(base, PhaseCoordinateAssignment))

	l.Edges = routeEdges(d, g, pl)
	routed := withPhase(base, PhaseEdgeRouting)
	routed.Routed = len(l.Edges)
	tr.record(routed)

	l.Clusters, l.Diagnostics = clusterBoxes(d.Clusters, l.Nodes, cfg.ClusterPadding)
	if cfg.CycleStrategy == transform.StrategyHybrid {
		l.CycleClusters = cycleClusterBoxes(cyc.Components, l.Nodes, cfg.ClusterPadding)
	}
	aggregated := withPhase(routed, PhaseClusterAggregation)
	aggregated.Clusters = len(l.Clusters) + len(l.CycleClusters)
	tr.record(aggregated)

	l.Bounds = layoutBounds(l, cfg.ClusterPadding)
	l.Trace = tr
	l.Stats = collectStats(l, cyc, crossings, cfg.SweepCount)
	return l, nil
}

func withPhase(s Snapshot, p Phase) Snapshot {
	s.Phase = p
	return s
}

// regularRanks returns the rank of every diagram node.
func regularRanks(g *dag.Graph) []int {
	ranks := make([]int, g.RegularCount())
	for i := range ranks {
		ranks[i] = g.Node(i).Rank
	}
	return ranks
}
