package transform

import "github.com/matzehuels/strata/pkg/dag"

// Normalize prepares g for ordering: it breaks cycles with strategy,
// assigns ranks, verifies the rank constraints and subdivides long edges.
// On success every segment of g joins adjacent ranks.
func Normalize(g *dag.Graph, strategy Strategy) (Result, error) {
	res, err := BreakCycles(g, strategy)
	if err != nil {
		return res, err
	}
	if res.MaxRank, err = AssignRanks(g); err != nil {
		return res, err
	}
	if err := CheckRanks(g); err != nil {
		return res, err
	}
	res.VirtualNodes = Subdivide(g)
	return res, nil
}
