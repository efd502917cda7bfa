package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/graph"
	"github.com/matzehuels/strata/pkg/layout"
)

// Report is the outcome of comparing a layout with a stored snapshot.
type Report struct {
	Name           string     `json:"name"`
	Match          bool       `json:"match"`
	WantHash       string     `json:"want_hash"`
	GotHash        string     `json:"got_hash"`
	DiagramChanged bool       `json:"diagram_changed"`
	ConfigChanged  bool       `json:"config_changed"`
	StatDiffs      []StatDiff `json:"stat_diffs,omitempty"`
}

// StatDiff is one statistic that differs from the snapshot.
type StatDiff struct {
	Field string `json:"field"`
	Want  string `json:"want"`
	Got   string `json:"got"`
}

// Check compares l, computed from d with cfg, with the snapshot stored
// under name.
//
// The report is returned in every case where the snapshot could be loaded.
// A differing layout hash additionally yields an
// [errors.ErrCodeSnapshotMismatch] error; a missing snapshot yields
// [errors.ErrCodeNotFound].
func Check(ctx context.Context, store Store, name string, d *graph.Diagram, cfg layout.Config, l *layout.Layout) (*Report, error) {
	s, err := store.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	cfgHash, err := ConfigHash(cfg)
	if err != nil {
		return nil, err
	}

	r := &Report{
		Name:           name,
		WantHash:       s.LayoutHash,
		GotHash:        l.Hash(),
		DiagramChanged: s.DiagramHash != d.Hash(),
		ConfigChanged:  s.ConfigHash != cfgHash,
	}
	r.Match = r.WantHash == r.GotHash
	if r.StatDiffs, err = diffStats(s.Stats, l.Stats); err != nil {
		return nil, err
	}
	if !r.Match {
		return r, errors.New(errors.ErrCodeSnapshotMismatch,
			"layout for %q differs from snapshot (%d stats changed)", name, len(r.StatDiffs))
	}
	return r, nil
}

// diffStats compares two stats values field by field using their JSON
// names, in sorted field order.
func diffStats(want, got layout.Stats) ([]StatDiff, error) {
	w, err := statsMap(want)
	if err != nil {
		return nil, err
	}
	g, err := statsMap(got)
	if err != nil {
		return nil, err
	}

	var diffs []StatDiff
	for _, k := range slices.Sorted(maps.Keys(w)) {
		ws, gs := fmt.Sprint(w[k]), fmt.Sprint(g[k])
		if ws != gs {
			diffs = append(diffs, StatDiff{Field: k, Want: ws, Got: gs})
		}
	}
	return diffs, nil
}

func statsMap(s layout.Stats) (map[string]any, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode stats")
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode stats")
	}
	return m, nil
}
