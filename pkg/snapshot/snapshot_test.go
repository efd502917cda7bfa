package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/graph"
	"github.com/matzehuels/strata/pkg/layout"
)

func chain() *graph.Diagram {
	return &graph.Diagram{
		Nodes: []graph.Node{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		Edges: []graph.Edge{{From: 0, To: 1}, {From: 1, To: 2}},
	}
}

func mustLayout(t *testing.T, d *graph.Diagram, cfg layout.Config) *layout.Layout {
	t.Helper()
	l, err := layout.Compute(d, cfg)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	return l
}

func mustSnapshot(t *testing.T, name string, d *graph.Diagram, cfg layout.Config) *Snapshot {
	t.Helper()
	s, err := New(name, d, cfg, mustLayout(t, d, cfg))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestNew(t *testing.T) {
	d, cfg := chain(), layout.DefaultConfig()
	l := mustLayout(t, d, cfg)
	s, err := New("chain", d, cfg, l)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.ID == "" {
		t.Error("ID is empty")
	}
	if s.DiagramHash != d.Hash() {
		t.Error("DiagramHash does not match diagram")
	}
	if s.LayoutHash != l.Hash() {
		t.Error("LayoutHash does not match layout")
	}
	if s.Stats != l.Stats {
		t.Errorf("Stats = %+v, want %+v", s.Stats, l.Stats)
	}
	back, err := s.Decode()
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if back.Hash() != l.Hash() {
		t.Error("decoded layout hash differs")
	}

	if _, err := New("", d, cfg, l); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("New with empty name: err = %v, want INVALID_INPUT", err)
	}
}

func TestConfigHash_Aliases(t *testing.T) {
	a := layout.DefaultConfig()
	a.CycleStrategy = "dfs_back"
	b := layout.DefaultConfig()
	b.CycleStrategy = "dfs-back"

	ha, err := ConfigHash(a)
	if err != nil {
		t.Fatal(err)
	}
	hb, err := ConfigHash(b)
	if err != nil {
		t.Fatal(err)
	}
	if ha != hb {
		t.Error("equivalent configs hash differently")
	}

	c := layout.DefaultConfig()
	c.NodeSpacing = 10
	hc, _ := ConfigHash(c)
	if hc == ha {
		t.Error("different configs hash equally")
	}

	c.NodeSpacing = -1
	if _, err := ConfigHash(c); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("invalid config: err = %v, want INVALID_CONFIG", err)
	}
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "snaps"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	d, cfg := chain(), layout.DefaultConfig()
	for _, name := range []string{"zeta", "alpha"} {
		if err := store.Save(ctx, mustSnapshot(t, name, d, cfg)); err != nil {
			t.Fatalf("Save(%s): %v", name, err)
		}
	}

	got, err := store.Load(ctx, "alpha")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Name != "alpha" || got.DiagramHash != d.Hash() {
		t.Errorf("Load = %+v", got)
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].Name != "alpha" || list[1].Name != "zeta" {
		t.Fatalf("List names = %v, want [alpha zeta]", names(list))
	}

	// Overwrite keeps a single entry.
	if err := store.Save(ctx, mustSnapshot(t, "alpha", d, cfg)); err != nil {
		t.Fatal(err)
	}
	if list, _ := store.List(ctx); len(list) != 2 {
		t.Errorf("List after overwrite = %v", names(list))
	}

	if err := store.Delete(ctx, "alpha"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Load(ctx, "alpha"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Load after delete: err = %v, want NOT_FOUND", err)
	}
	if err := store.Delete(ctx, "alpha"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("second Delete: err = %v, want NOT_FOUND", err)
	}
}

func TestFileStore_InvalidName(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"", "../escape", "a/b", ".hidden"} {
		if _, err := store.Load(context.Background(), name); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("Load(%q): err = %v, want INVALID_INPUT", name, err)
		}
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Load(context.Background(), "bad"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Load: err = %v, want INVALID_FORMAT", err)
	}
}

func TestFileStore_SkipsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, ".tmp-123.json"), []byte("{"), 0644)
	list, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("List = %v, want empty", names(list))
	}
}

func TestCheck(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	d, cfg := chain(), layout.DefaultConfig()
	if err := store.Save(ctx, mustSnapshot(t, "chain", d, cfg)); err != nil {
		t.Fatal(err)
	}

	t.Run("match", func(t *testing.T) {
		r, err := Check(ctx, store, "chain", d, cfg, mustLayout(t, d, cfg))
		if err != nil {
			t.Fatalf("Check: %v", err)
		}
		if !r.Match || r.DiagramChanged || r.ConfigChanged || len(r.StatDiffs) != 0 {
			t.Errorf("report = %+v, want clean match", r)
		}
	})

	t.Run("diagram changed", func(t *testing.T) {
		d2 := chain()
		d2.Nodes = append(d2.Nodes, graph.Node{ID: "d"})
		d2.Edges = append(d2.Edges, graph.Edge{From: 2, To: 3})
		r, err := Check(ctx, store, "chain", d2, cfg, mustLayout(t, d2, cfg))
		if !errors.Is(err, errors.ErrCodeSnapshotMismatch) {
			t.Fatalf("err = %v, want SNAPSHOT_MISMATCH", err)
		}
		if r == nil || r.Match || !r.DiagramChanged || r.ConfigChanged {
			t.Fatalf("report = %+v", r)
		}
		fields := map[string]StatDiff{}
		for _, diff := range r.StatDiffs {
			fields[diff.Field] = diff
		}
		if diff, ok := fields["node_count"]; !ok || diff.Want != "3" || diff.Got != "4" {
			t.Errorf("node_count diff = %+v, want 3 -> 4", diff)
		}
		if diff, ok := fields["edge_count"]; !ok || diff.Want != "2" || diff.Got != "3" {
			t.Errorf("edge_count diff = %+v, want 2 -> 3", diff)
		}
	})

	t.Run("config changed", func(t *testing.T) {
		cfg2 := cfg
		cfg2.RankSpacing = 100
		r, err := Check(ctx, store, "chain", d, cfg2, mustLayout(t, d, cfg2))
		if !errors.Is(err, errors.ErrCodeSnapshotMismatch) {
			t.Fatalf("err = %v, want SNAPSHOT_MISMATCH", err)
		}
		if r.DiagramChanged || !r.ConfigChanged {
			t.Errorf("report = %+v, want config change only", r)
		}
	})

	t.Run("missing", func(t *testing.T) {
		_, err := Check(ctx, store, "nope", d, cfg, mustLayout(t, d, cfg))
		if !errors.Is(err, errors.ErrCodeNotFound) {
			t.Errorf("err = %v, want NOT_FOUND", err)
		}
	})
}

func names(list []*Snapshot) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.Name
	}
	return out
}
