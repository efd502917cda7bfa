package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/matzehuels/strata/pkg/dag/transform"
	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/graph"
	"github.com/matzehuels/strata/pkg/layout"
)

// testEnv is a temporary directory holding a config without caching and a
// file snapshot store.
type testEnv struct {
	dir    string
	config string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	cfg := filepath.Join(dir, "strata.toml")
	body := "[cache]\nbackend = \"none\"\n\n[snapshot]\nbackend = \"file\"\ndir = \"" +
		filepath.ToSlash(filepath.Join(dir, "snapshots")) + "\"\n"
	if err := os.WriteFile(cfg, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return testEnv{dir: dir, config: cfg}
}

// diagram writes d as JSON into the environment and returns its path.
func (e testEnv) diagram(t *testing.T, name string, d *graph.Diagram) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	if err := graph.WriteDiagramFile(d, path); err != nil {
		t.Fatal(err)
	}
	return path
}

func (e testEnv) run(t *testing.T, args ...string) error {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs(append(args, "--config", e.config))
	return root.ExecuteContext(context.Background())
}

func chain(n int) *graph.Diagram {
	d := &graph.Diagram{}
	for i := 0; i < n; i++ {
		d.Nodes = append(d.Nodes, graph.Node{ID: string(rune('a' + i))})
		if i > 0 {
			d.Edges = append(d.Edges, graph.Edge{From: i - 1, To: i})
		}
	}
	return d
}

func TestLayoutCommand(t *testing.T) {
	env := newTestEnv(t)
	input := env.diagram(t, "chain.json", chain(2))

	if err := env.run(t, "layout", input); err != nil {
		t.Fatalf("layout: %v", err)
	}

	l, err := layout.ReadLayoutFile(filepath.Join(env.dir, "chain.layout.json"))
	if err != nil {
		t.Fatalf("read layout: %v", err)
	}
	if len(l.Nodes) != 2 || l.Nodes[1].Y != 112 {
		t.Errorf("nodes = %+v, want b at y=112", l.Nodes)
	}
}

func TestLayoutCommandFlags(t *testing.T) {
	env := newTestEnv(t)
	input := env.diagram(t, "chain.json", chain(2))
	output := filepath.Join(env.dir, "out.json")

	if err := env.run(t, "layout", input, "--direction", "LR", "-o", output, "--stats"); err != nil {
		t.Fatalf("layout: %v", err)
	}

	l, err := layout.ReadLayoutFile(output)
	if err != nil {
		t.Fatalf("read layout: %v", err)
	}
	if l.Direction != graph.DirectionLR {
		t.Errorf("Direction = %q, want LR", l.Direction)
	}
	if l.Nodes[1].X != 144 {
		t.Errorf("b.X = %v, want 144", l.Nodes[1].X)
	}
}

func TestLayoutCommandErrors(t *testing.T) {
	env := newTestEnv(t)
	input := env.diagram(t, "chain.json", chain(2))

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"missing diagram", []string{"layout", filepath.Join(env.dir, "nope.json")}, errors.ErrCodeFileNotFound},
		{"unknown strategy", []string{"layout", input, "--strategy", "bogus"}, errors.ErrCodeInvalidConfig},
		{"negative spacing", []string{"layout", input, "--node-spacing", "-1"}, errors.ErrCodeInvalidConfig},
		{"spline routing", []string{"layout", input, "--routing", "spline"}, errors.ErrCodeUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := env.run(t, tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestRenderCommandDOT(t *testing.T) {
	env := newTestEnv(t)
	input := env.diagram(t, "chain.json", chain(3))
	output := filepath.Join(env.dir, "graph.dot")

	if err := env.run(t, "render", input, "-f", "dot,json", "-o", output); err != nil {
		t.Fatalf("render: %v", err)
	}

	dot, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read dot: %v", err)
	}
	if !strings.HasPrefix(string(dot), "digraph G {") {
		t.Errorf("dot output starts with %q", strings.SplitN(string(dot), "\n", 2)[0])
	}
	if _, err := os.Stat(filepath.Join(env.dir, "graph.json")); err != nil {
		t.Errorf("json artifact not written: %v", err)
	}
}

func TestRenderCommandInvalidFormat(t *testing.T) {
	env := newTestEnv(t)
	input := env.diagram(t, "chain.json", chain(2))

	err := env.run(t, "render", input, "-f", "pdf")
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want INVALID_CONFIG", err)
	}
}

func TestSnapshotCommands(t *testing.T) {
	env := newTestEnv(t)
	input := env.diagram(t, "chain.json", chain(3))

	if err := env.run(t, "snapshot", "save", "chain", input); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := env.run(t, "snapshot", "check", "chain", input); err != nil {
		t.Fatalf("check unchanged diagram: %v", err)
	}
	if err := env.run(t, "snapshot", "list"); err != nil {
		t.Fatalf("list: %v", err)
	}

	// Growing the chain changes the layout.
	env.diagram(t, "chain.json", chain(4))
	err := env.run(t, "snapshot", "check", "chain", input)
	if !errors.Is(err, errors.ErrCodeSnapshotMismatch) {
		t.Errorf("check changed diagram: error = %v, want SNAPSHOT_MISMATCH", err)
	}

	// The configuration is part of the snapshot too.
	env.diagram(t, "chain.json", chain(3))
	err = env.run(t, "snapshot", "check", "chain", input, "--direction", "LR")
	if !errors.Is(err, errors.ErrCodeSnapshotMismatch) {
		t.Errorf("check changed config: error = %v, want SNAPSHOT_MISMATCH", err)
	}

	if err := env.run(t, "snapshot", "delete", "chain"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	err = env.run(t, "snapshot", "check", "chain", input)
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("check deleted snapshot: error = %v, want NOT_FOUND", err)
	}
}

func TestSnapshotInvalidStore(t *testing.T) {
	env := newTestEnv(t)
	err := env.run(t, "snapshot", "list", "--store", "s3")
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want INVALID_CONFIG", err)
	}
}

func TestLayoutFlagsApply(t *testing.T) {
	var f layoutFlags
	cmd := &cobra.Command{Use: "test"}
	f.register(cmd)
	if err := cmd.ParseFlags([]string{"--sweeps", "9", "--direction", "RL"}); err != nil {
		t.Fatal(err)
	}

	base := layout.DefaultConfig()
	base.NodeSpacing = 10
	base.CycleStrategy = transform.StrategyGreedy

	got := f.apply(cmd, base)
	if got.SweepCount != 9 {
		t.Errorf("SweepCount = %d, want 9", got.SweepCount)
	}
	if got.Direction != graph.DirectionRL {
		t.Errorf("Direction = %q, want RL", got.Direction)
	}
	// Unset flags keep the configured values, not the flag defaults.
	if got.NodeSpacing != 10 {
		t.Errorf("NodeSpacing = %v, want 10", got.NodeSpacing)
	}
	if got.CycleStrategy != transform.StrategyGreedy {
		t.Errorf("CycleStrategy = %q, want greedy", got.CycleStrategy)
	}
}

func TestOutputBase(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "diagrams/app.json", "diagrams/app"},
		{"out.svg", "app.json", "out"},
		{"out.dot", "app.json", "out"},
		{"build/out", "app.json", "build/out"},
		{"out.v2", "app.json", "out.v2"},
	}
	for _, tt := range tests {
		if got := outputBase(tt.output, tt.input); got != tt.want {
			t.Errorf("outputBase(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestLoadConfigExplicitMissing(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.configPath = filepath.Join(t.TempDir(), "missing.toml")
	_, err := c.loadConfig()
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want FILE_NOT_FOUND", err)
	}
}
