package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/strata/pkg/graph"
	"github.com/matzehuels/strata/pkg/layout"
)

func compute(t *testing.T, d *graph.Diagram) *layout.Layout {
	t.Helper()
	l, err := layout.Compute(d, layout.DefaultConfig())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	return l
}

func TestToDOT_Chain(t *testing.T) {
	l := compute(t, &graph.Diagram{
		Nodes: []graph.Node{{ID: "a"}, {ID: "b", Label: "Bee"}},
		Edges: []graph.Edge{{From: 0, To: 1, Label: "uses"}},
	})
	dot := ToDOT(l, Options{})

	// Bounds are (-24,-24)-(96,176), so the top edge is y=176.
	// Node a is centred at (36,20) and node b at (36,132).
	want := []string{
		"digraph G {",
		"splines=ortho;",
		`n0 [label="a", pos="36,156!", width=1.0000, height=0.5556];`,
		`n1 [label="Bee", pos="36,44!", width=1.0000, height=0.5556];`,
		`n0 -> n1 [xlabel="uses"];`,
	}
	for _, w := range want {
		if !strings.Contains(dot, w) {
			t.Errorf("DOT missing %q:\n%s", w, dot)
		}
	}
	if strings.Contains(dot, "cluster_") {
		t.Error("clusters drawn without Options.Clusters")
	}
}

func TestToDOT_ReversedAndDetailed(t *testing.T) {
	l := compute(t, &graph.Diagram{
		Nodes: []graph.Node{{ID: "ping"}, {ID: "pong", Shape: "ellipse"}},
		Edges: []graph.Edge{{From: 0, To: 1}, {From: 1, To: 0}},
	})
	dot := ToDOT(l, Options{Detailed: true, Clusters: true})

	for _, w := range []string{
		"n0 -> n1;",
		"n1 -> n0 [style=dashed];",
		`label="pong\nrank: 1\norder: 0"`,
		"shape=ellipse",
		"cycle_0 [",
	} {
		if !strings.Contains(dot, w) {
			t.Errorf("DOT missing %q:\n%s", w, dot)
		}
	}
}

func TestToDOT_EdgeOrder(t *testing.T) {
	l := compute(t, &graph.Diagram{
		Nodes: []graph.Node{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		Edges: []graph.Edge{{From: 0, To: 2}, {From: 0, To: 1}, {From: 1, To: 2}},
	})
	dot := ToDOT(l, Options{})
	i0 := strings.Index(dot, "n0 -> n2")
	i1 := strings.Index(dot, "n0 -> n1")
	i2 := strings.Index(dot, "n1 -> n2")
	if i0 < 0 || i1 < 0 || i2 < 0 || !(i0 < i1 && i1 < i2) {
		t.Errorf("edges not in layout order:\n%s", dot)
	}
}

func TestToDOT_Clusters(t *testing.T) {
	l := compute(t, &graph.Diagram{
		Nodes:    []graph.Node{{ID: "a"}, {ID: "b"}},
		Clusters: []graph.Cluster{{ID: "g", Title: "Group", Members: []int{0, 1}}},
	})
	dot := ToDOT(l, Options{Clusters: true})
	if !strings.Contains(dot, `cluster_0 [label="Group"`) {
		t.Errorf("cluster box missing:\n%s", dot)
	}
	// Boxes come before nodes so they are drawn underneath.
	if strings.Index(dot, "cluster_0") > strings.Index(dot, "n0 [") {
		t.Error("cluster box emitted after nodes")
	}
}

func TestDotShape(t *testing.T) {
	tests := map[string]string{
		"":        "",
		"box":     "",
		"Ellipse": "ellipse",
		"diamond": "diamond",
		"star":    "",
	}
	for in, want := range tests {
		if got := dotShape(in); got != want {
			t.Errorf("dotShape(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="x"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %s, want %s", got, want)
	}

	plain := []byte("<svg><g/></svg>")
	if got := normalizeViewBox(plain); string(got) != string(plain) {
		t.Errorf("normalizeViewBox() without viewBox changed input: %s", got)
	}
}

func TestRenderSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering in short mode")
	}
	l := compute(t, &graph.Diagram{
		Nodes: []graph.Node{{ID: "a"}, {ID: "b"}},
		Edges: []graph.Edge{{From: 0, To: 1}},
	})
	svg, err := RenderSVG(context.Background(), ToDOT(l, Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	s := string(svg)
	if !strings.Contains(s, "<svg") || !strings.Contains(s, "</svg>") {
		t.Errorf("output is not SVG: %.200s", s)
	}
	if got := strings.Count(s, `class="node"`); got != 2 {
		t.Errorf("rendered %d nodes, want 2", got)
	}
}

func TestRenderSVG_BadDOT(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering in short mode")
	}
	if _, err := RenderSVG(context.Background(), "digraph {"); err == nil {
		t.Error("RenderSVG accepted malformed DOT")
	}
}
