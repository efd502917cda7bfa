package layout

import (
	"fmt"
	"slices"

	"github.com/matzehuels/strata/pkg/graph"
)

// clusterBoxes computes one box per declared cluster. Member lists are
// deduplicated and sorted, so the box does not depend on declaration
// order. A cluster without members is skipped with a warning.
func clusterBoxes(clusters []graph.Cluster, nodes []NodeBox, padding float64) ([]ClusterBox, []Diagnostic) {
	var (
		boxes []ClusterBox
		diags []Diagnostic
	)
	for _, c := range clusters {
		members := canonicalMembers(c.Members)
		if len(members) == 0 {
			diags = append(diags, Diagnostic{
				Severity: "warning",
				Code:     DiagEmptyCluster,
				Message:  fmt.Sprintf("cluster %q has no members and was skipped", c.ID),
			})
			continue
		}
		boxes = append(boxes, ClusterBox{
			ID:      c.ID,
			Title:   c.Title,
			Members: members,
			Rect:    memberBounds(members, nodes).Expand(padding),
		})
	}
	return boxes, diags
}

// cycleClusterBoxes collapses every multi-node strongly connected component
// into a box headed by its lowest-indexed member. A self-loop singleton is
// cyclic but has nothing to collapse, so it gets no box.
func cycleClusterBoxes(components [][]int, nodes []NodeBox, padding float64) []CycleClusterBox {
	var boxes []CycleClusterBox
	for _, c := range components {
		members := canonicalMembers(c)
		if len(members) < 2 {
			continue
		}
		boxes = append(boxes, CycleClusterBox{
			Head:    members[0],
			Members: members,
			Rect:    memberBounds(members, nodes).Expand(padding),
		})
	}
	return boxes
}

func canonicalMembers(m []int) []int {
	out := slices.Clone(m)
	slices.Sort(out)
	return slices.Compact(out)
}

func memberBounds(members []int, nodes []NodeBox) Rect {
	b := newBounds()
	for _, m := range members {
		b.addRect(nodes[m].Rect())
	}
	return b.rect()
}

// layoutBounds covers every node, cluster, cycle cluster and edge point,
// expanded by padding. An empty layout has zero bounds.
func layoutBounds(l *Layout, padding float64) Rect {
	b := newBounds()
	for _, n := range l.Nodes {
		b.addRect(n.Rect())
	}
	for _, c := range l.Clusters {
		b.addRect(c.Rect)
	}
	for _, c := range l.CycleClusters {
		b.addRect(c.Rect)
	}
	for _, e := range l.Edges {
		for _, p := range e.Points {
			b.addPoint(p)
		}
	}
	if b.empty {
		return Rect{}
	}
	return b.rect().Expand(padding)
}
