// Package snapshot records computed layouts and checks later runs against
// them.
//
// Layouts are deterministic, so a layout saved once must hash identically
// on every later run with the same diagram and configuration. A [Snapshot]
// stores the layout together with the hashes of its inputs; [Check]
// recomputes nothing itself but compares a fresh layout with the stored one
// and reports which statistics drifted.
//
// Two [Store] backends exist: [FileStore] keeps one JSON file per snapshot
// for use in a repository, and [MongoStore] keeps snapshots in a MongoDB
// collection shared by a team or CI fleet.
package snapshot

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/strata/pkg/cache"
	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/graph"
	"github.com/matzehuels/strata/pkg/layout"
)

// ErrNotFound is returned by [Store.Load] and [Store.Delete] when no
// snapshot has the requested name.
var ErrNotFound = stderrors.New("snapshot not found")

// Snapshot is a stored layout plus the hashes of the inputs that produced
// it.
type Snapshot struct {
	ID          string          `json:"id" bson:"_id"`
	Name        string          `json:"name" bson:"name"`
	DiagramHash string          `json:"diagram_hash" bson:"diagram_hash"`
	ConfigHash  string          `json:"config_hash" bson:"config_hash"`
	LayoutHash  string          `json:"layout_hash" bson:"layout_hash"`
	Stats       layout.Stats    `json:"stats" bson:"stats"`
	Layout      json.RawMessage `json:"layout" bson:"layout"`
	CreatedAt   time.Time       `json:"created_at" bson:"created_at"`
}

// Store persists snapshots by name. Saving a snapshot under an existing
// name replaces it.
type Store interface {
	Save(ctx context.Context, s *Snapshot) error
	Load(ctx context.Context, name string) (*Snapshot, error)
	List(ctx context.Context) ([]*Snapshot, error)
	Delete(ctx context.Context, name string) error
	Close() error
}

// New builds a snapshot of l, which must have been computed from d with
// cfg.
func New(name string, d *graph.Diagram, cfg layout.Config, l *layout.Layout) (*Snapshot, error) {
	if name == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "snapshot name is required")
	}
	cfgHash, err := ConfigHash(cfg)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode layout")
	}
	return &Snapshot{
		ID:          uuid.NewString(),
		Name:        name,
		DiagramHash: d.Hash(),
		ConfigHash:  cfgHash,
		LayoutHash:  l.Hash(),
		Stats:       l.Stats,
		Layout:      data,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// ConfigHash returns the content hash of the resolved form of cfg, so that
// equivalent spellings ("dfs_back", "dfs-back") hash equally.
func ConfigHash(cfg layout.Config) (string, error) {
	resolved, err := cfg.Resolve()
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(resolved)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "encode config")
	}
	return cache.Hash(data), nil
}

// Decode returns the stored layout.
func (s *Snapshot) Decode() (*layout.Layout, error) {
	return layout.UnmarshalLayout(s.Layout)
}

func notFound(name string) error {
	return errors.Wrap(errors.ErrCodeNotFound, ErrNotFound, "snapshot %q", name)
}
