package layout

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/graph"
)

// =============================================================================
// Layout - Computed Geometry
// =============================================================================

// Layout is the result of a layout computation. Every slice is ordered by
// diagram index (nodes, edges) or declaration order (clusters), so equal
// inputs always serialize to identical bytes.
type Layout struct {
	Direction     graph.Direction   `json:"direction" bson:"direction"`
	Nodes         []NodeBox         `json:"nodes" bson:"nodes"`
	Edges         []EdgePath        `json:"edges" bson:"edges"`
	Clusters      []ClusterBox      `json:"clusters,omitempty" bson:"clusters,omitempty"`
	CycleClusters []CycleClusterBox `json:"cycle_clusters,omitempty" bson:"cycle_clusters,omitempty"`
	Bounds        Rect              `json:"bounds" bson:"bounds"`
	Stats         Stats             `json:"stats" bson:"stats"`
	Trace         Trace             `json:"trace" bson:"trace"`
	Diagnostics   []Diagnostic      `json:"diagnostics,omitempty" bson:"diagnostics,omitempty"`
}

// NodeBox is a placed diagram node. Rank and Order are the node's layer
// and its position among the real nodes of that layer.
type NodeBox struct {
	Index   int      `json:"index" bson:"index"`
	ID      string   `json:"id" bson:"id"`
	Label   string   `json:"label" bson:"label"`
	Shape   string   `json:"shape,omitempty" bson:"shape,omitempty"`
	Classes []string `json:"classes,omitempty" bson:"classes,omitempty"`
	Rank    int      `json:"rank" bson:"rank"`
	Order   int      `json:"order" bson:"order"`
	X       float64  `json:"x" bson:"x"`
	Y       float64  `json:"y" bson:"y"`
	Width   float64  `json:"width" bson:"width"`
	Height  float64  `json:"height" bson:"height"`
}

// Rect returns the node's rectangle.
func (n NodeBox) Rect() Rect {
	return Rect{X: n.X, Y: n.Y, Width: n.Width, Height: n.Height}
}

// EdgePath is a routed edge. Points always run from the edge's original
// source to its original target, also for reversed edges.
type EdgePath struct {
	Index    int     `json:"index" bson:"index"`
	From     int     `json:"from" bson:"from"`
	To       int     `json:"to" bson:"to"`
	Label    string  `json:"label,omitempty" bson:"label,omitempty"`
	Reversed bool    `json:"reversed,omitempty" bson:"reversed,omitempty"`
	SelfLoop bool    `json:"self_loop,omitempty" bson:"self_loop,omitempty"`
	Points   []Point `json:"points" bson:"points"`
	Length   float64 `json:"length" bson:"length"`
}

// ClusterBox is the bounding box of a declared cluster.
type ClusterBox struct {
	ID      string `json:"id" bson:"id"`
	Title   string `json:"title,omitempty" bson:"title,omitempty"`
	Members []int  `json:"members" bson:"members"`
	Rect    Rect   `json:"rect" bson:"rect"`
}

// CycleClusterBox groups the members of a strongly connected component.
// Head is the representative node that anchors edges from outside.
type CycleClusterBox struct {
	Head    int   `json:"head" bson:"head"`
	Members []int `json:"members" bson:"members"`
	Rect    Rect  `json:"rect" bson:"rect"`
}

// Diagnostic reports a degenerate but valid input that the layout handled
// without failing.
type Diagnostic struct {
	Severity string `json:"severity" bson:"severity"`
	Code     string `json:"code" bson:"code"`
	Message  string `json:"message" bson:"message"`
}

// Diagnostic codes.
const (
	DiagEmptyCluster = "empty_cluster"
)

// Node returns the box for diagram node i.
func (l *Layout) Node(i int) NodeBox { return l.Nodes[i] }

// Ranks returns node indices grouped by rank, each rank in layout order.
func (l *Layout) Ranks() [][]int {
	var ranks [][]int
	for _, n := range l.Nodes {
		for len(ranks) <= n.Rank {
			ranks = append(ranks, nil)
		}
		ranks[n.Rank] = append(ranks[n.Rank], n.Index)
	}
	for _, r := range ranks {
		// Order is dense per rank, so a direct placement sorts the rank.
		sorted := make([]int, len(r))
		for _, idx := range r {
			sorted[l.Nodes[idx].Order] = idx
		}
		copy(r, sorted)
	}
	return ranks
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l *Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
func UnmarshalLayout(data []byte) (*Layout, error) {
	var l Layout
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&l); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "unmarshal layout")
	}
	for i, n := range l.Nodes {
		if n.Index != i {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "node %d has index %d", i, n.Index)
		}
	}
	return &l, nil
}

// Hash returns a hex sha256 digest of the layout's compact JSON encoding.
// Two layouts hash equally exactly when they serialize identically.
func (l *Layout) Hash() string {
	data, err := json.Marshal(l)
	if err != nil {
		// Layout holds only plain values; Marshal cannot fail.
		panic(err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l *Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
