package ordering

import (
	"slices"
	"testing"

	"github.com/matzehuels/strata/pkg/dag"
	"github.com/matzehuels/strata/pkg/dag/transform"
)

func prepare(t *testing.T, n int, edges ...[2]int) *dag.Graph {
	t.Helper()
	g := dag.New(n)
	for range n {
		g.AddNode(72, 40)
	}
	for _, e := range edges {
		if _, err := g.AddEdge(e[0], e[1], 1); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := transform.Normalize(g, transform.StrategyHybrid); err != nil {
		t.Fatal(err)
	}
	return g
}

func TestBarycenter_ResolvesX(t *testing.T) {
	// a->y, b->x with x, y ordered by index starts with one crossing
	g := prepare(t, 4, [2]int{0, 3}, [2]int{1, 2})

	res := Barycenter{Sweeps: DefaultSweeps}.Order(g)
	if res.Initial != 1 {
		t.Errorf("Initial = %d, want 1", res.Initial)
	}
	if res.Final() != 0 {
		t.Errorf("Final() = %d, want 0", res.Final())
	}
	if !slices.Equal(res.Layers[1], []int{3, 2}) {
		t.Errorf("Layers[1] = %v, want [3 2]", res.Layers[1])
	}
}

func TestBarycenter_Diamond(t *testing.T) {
	g := prepare(t, 4, [2]int{0, 1}, [2]int{0, 2}, [2]int{1, 3}, [2]int{2, 3})

	res := Barycenter{Sweeps: DefaultSweeps}.Order(g)
	if res.Final() != 0 {
		t.Errorf("Final() = %d, want 0", res.Final())
	}
	if err := g.CheckLayers(); err != nil {
		t.Errorf("CheckLayers() error = %v", err)
	}
}

func TestBarycenter_CompleteBipartiteIsStable(t *testing.T) {
	var edges [][2]int
	for u := range 3 {
		for v := 3; v < 6; v++ {
			edges = append(edges, [2]int{u, v})
		}
	}

	var want Result
	for run := range 5 {
		g := prepare(t, 6, edges...)
		res := Barycenter{Sweeps: DefaultSweeps}.Order(g)
		if res.Final() != 9 {
			t.Errorf("run %d: Final() = %d, want 9", run, res.Final())
		}
		if run == 0 {
			want = res
			continue
		}
		if !slices.EqualFunc(res.Layers, want.Layers, slices.Equal) {
			t.Errorf("run %d: Layers = %v, want %v", run, res.Layers, want.Layers)
		}
		if !slices.Equal(res.Crossings, want.Crossings) {
			t.Errorf("run %d: Crossings = %v, want %v", run, res.Crossings, want.Crossings)
		}
	}
}

func TestBarycenter_ReturnsFinalSweep(t *testing.T) {
	edges := [][2]int{{0, 4}, {0, 5}, {1, 3}, {2, 3}, {2, 5}, {3, 6}, {4, 7}, {5, 6}, {1, 7}}
	for sweeps := 0; sweeps <= 6; sweeps++ {
		g := prepare(t, 8, edges...)
		res := Barycenter{Sweeps: sweeps}.Order(g)

		if len(res.Crossings) != sweeps {
			t.Errorf("sweeps=%d: len(Crossings) = %d", sweeps, len(res.Crossings))
		}
		// The returned order is the one on the graph, scored by the last
		// sweep, not the best of the recorded sweeps.
		if got := dag.CountCrossings(g); got != res.Final() {
			t.Errorf("sweeps=%d: CountCrossings() = %d, Final() = %d", sweeps, got, res.Final())
		}
		if sweeps > 0 && res.Final() != res.Crossings[sweeps-1] {
			t.Errorf("sweeps=%d: Final() = %d, want last sweep %d", sweeps, res.Final(), res.Crossings[sweeps-1])
		}
		for r, layer := range res.Layers {
			for pos, v := range layer {
				if g.Node(v).Pos != pos || g.Node(v).Rank != r {
					t.Errorf("sweeps=%d: node %d at rank %d pos %d, layers say %d/%d", sweeps, v, g.Node(v).Rank, g.Node(v).Pos, r, pos)
				}
			}
		}
		if err := g.CheckLayers(); err != nil {
			t.Errorf("sweeps=%d: CheckLayers() error = %v", sweeps, err)
		}
	}
}

func TestBarycenter_ZeroSweepsKeepsIndexOrder(t *testing.T) {
	g := prepare(t, 4, [2]int{0, 3}, [2]int{1, 2})
	res := Barycenter{}.Order(g)

	if !slices.Equal(res.Layers[0], []int{0, 1}) || !slices.Equal(res.Layers[1], []int{2, 3}) {
		t.Errorf("Layers = %v, want [[0 1] [2 3]]", res.Layers)
	}
	if res.Final() != res.Initial {
		t.Errorf("Final() = %d, want Initial %d", res.Final(), res.Initial)
	}
}

func TestBarycenter_IsolatedNodesKeepPosition(t *testing.T) {
	// Node 2 has no neighbours and stays between its rank-mates' keys
	g := prepare(t, 5, [2]int{0, 4}, [2]int{1, 3})
	res := Barycenter{Sweeps: 1}.Order(g)

	// rank 0: 0, 1, 2 (2 isolated); rank 1: 3 (key 1), 4 (key 0)
	if !slices.Equal(res.Layers[0], []int{0, 1, 2}) {
		t.Errorf("Layers[0] = %v, want [0 1 2]", res.Layers[0])
	}
	if !slices.Equal(res.Layers[1], []int{4, 3}) {
		t.Errorf("Layers[1] = %v, want [4 3]", res.Layers[1])
	}
}

func TestBarycenter_VirtualNodesOrdered(t *testing.T) {
	// 0->1->2 plus the long edge 0->2 through one virtual node
	g := prepare(t, 3, [2]int{0, 1}, [2]int{1, 2}, [2]int{0, 2})
	res := Barycenter{Sweeps: DefaultSweeps}.Order(g)

	if len(res.Layers[1]) != 2 {
		t.Fatalf("Layers[1] = %v, want a real and a virtual node", res.Layers[1])
	}
	if res.Final() != 0 {
		t.Errorf("Final() = %d, want 0", res.Final())
	}
}

func TestBarycenter_EmptyGraph(t *testing.T) {
	g := dag.New(0)
	res := Barycenter{Sweeps: DefaultSweeps}.Order(g)
	if len(res.Layers) != 0 || res.Final() != 0 {
		t.Errorf("Order() = %+v, want empty result", res)
	}
}
