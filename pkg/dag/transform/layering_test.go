package transform

import (
	"testing"

	"github.com/matzehuels/strata/pkg/dag"
	"github.com/matzehuels/strata/pkg/errors"
)

func ranks(g *dag.Graph) []int {
	out := make([]int, g.NodeCount())
	for i := range out {
		out[i] = g.Node(i).Rank
	}
	return out
}

func TestAssignRanks(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		edges [][2]int
		want  []int
		max   int
	}{
		{"empty", 0, nil, []int{}, -1},
		{"single", 1, nil, []int{0}, 0},
		{"chain", 3, [][2]int{{0, 1}, {1, 2}}, []int{0, 1, 2}, 2},
		{"diamond", 4, [][2]int{{0, 1}, {0, 2}, {1, 3}, {2, 3}}, []int{0, 1, 1, 2}, 2},
		{"longest path wins", 4, [][2]int{{0, 1}, {1, 2}, {0, 3}, {2, 3}}, []int{0, 1, 2, 3}, 3},
		{"self-loop ignored", 2, [][2]int{{0, 0}, {0, 1}}, []int{0, 1}, 1},
		{"parallel edges", 2, [][2]int{{0, 1}, {0, 1}}, []int{0, 1}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := build(tt.n, tt.edges...)
			if _, err := BreakCycles(g, StrategyHybrid); err != nil {
				t.Fatal(err)
			}
			maxRank, err := AssignRanks(g)
			if err != nil {
				t.Fatalf("AssignRanks() error = %v", err)
			}
			if maxRank != tt.max {
				t.Errorf("AssignRanks() = %d, want %d", maxRank, tt.max)
			}
			got := ranks(g)
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("ranks = %v, want %v", got, tt.want)
					break
				}
			}
			if err := CheckRanks(g); err != nil {
				t.Errorf("CheckRanks() error = %v", err)
			}
		})
	}
}

func TestAssignRanks_MinLen(t *testing.T) {
	g := dag.New(3)
	for range 3 {
		g.AddNode(1, 1)
	}
	g.AddEdge(0, 1, 3)
	g.AddEdge(1, 2, 0) // default 1

	if _, err := AssignRanks(g); err != nil {
		t.Fatal(err)
	}
	if got := ranks(g); got[1] != 3 || got[2] != 4 {
		t.Errorf("ranks = %v, want [0 3 4]", got)
	}
}

func TestAssignRanks_ReversedEdge(t *testing.T) {
	// 0 -> 1 and 1 -> 0; with edge 1 reversed both rank 1 below 0
	g := build(2, [2]int{0, 1}, [2]int{1, 0})
	g.Edge(1).Reversed = true

	if _, err := AssignRanks(g); err != nil {
		t.Fatal(err)
	}
	if got := ranks(g); got[0] != 0 || got[1] != 1 {
		t.Errorf("ranks = %v, want [0 1]", got)
	}
}

func TestAssignRanks_DisconnectedComponentsShareRankZero(t *testing.T) {
	// Two components of different depth: 0->1->2 and 3->4.
	// Both roots start at rank 0; the shallow component is not shifted.
	g := build(5, [2]int{0, 1}, [2]int{1, 2}, [2]int{3, 4})
	if _, err := AssignRanks(g); err != nil {
		t.Fatal(err)
	}
	want := []int{0, 1, 2, 0, 1}
	got := ranks(g)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ranks = %v, want %v", got, want)
		}
	}
}

func TestAssignRanks_ResidualCycle(t *testing.T) {
	// No cycle breaking: ranking must refuse the cyclic graph.
	g := build(3, [2]int{0, 1}, [2]int{1, 2}, [2]int{2, 1})

	_, err := AssignRanks(g)
	if !errors.Is(err, errors.ErrCodeInvariantViolation) {
		t.Errorf("AssignRanks() error = %v, want %s", err, errors.ErrCodeInvariantViolation)
	}
}

func TestCheckRanks_Violation(t *testing.T) {
	g := build(2, [2]int{0, 1})
	g.Node(0).Rank, g.Node(1).Rank = 1, 1

	if err := CheckRanks(g); !errors.Is(err, errors.ErrCodeInvariantViolation) {
		t.Errorf("CheckRanks() error = %v, want %s", err, errors.ErrCodeInvariantViolation)
	}
}
