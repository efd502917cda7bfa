package graph

import (
	"strings"

	"github.com/matzehuels/strata/pkg/errors"
)

// =============================================================================
// Direction
// =============================================================================

// Direction is the global flow direction of a diagram.
type Direction string

const (
	DirectionTB Direction = "TB" // top to bottom (default)
	DirectionBT Direction = "BT" // bottom to top
	DirectionLR Direction = "LR" // left to right
	DirectionRL Direction = "RL" // right to left
)

// Directions lists every supported direction in canonical order.
var Directions = []Direction{DirectionTB, DirectionBT, DirectionLR, DirectionRL}

// ParseDirection parses a direction name. It accepts the four canonical
// names case-insensitively plus the TD alias for TB. An empty string yields
// [DirectionTB].
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "TB", "TD":
		return DirectionTB, nil
	case "BT":
		return DirectionBT, nil
	case "LR":
		return DirectionLR, nil
	case "RL":
		return DirectionRL, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown direction %q (want TB, BT, LR or RL)", s)
}

// Horizontal reports whether ranks progress along the x axis.
func (d Direction) Horizontal() bool { return d == DirectionLR || d == DirectionRL }

// Reversed reports whether ranks progress towards decreasing coordinates.
func (d Direction) Reversed() bool { return d == DirectionRL || d == DirectionBT }

// =============================================================================
// Diagram - Layout Input
// =============================================================================

// Diagram is the immutable input to the layout pipeline as produced by a
// parser. Nodes are identified by their position in Nodes; edges, clusters
// and constraints refer to nodes by that index.
type Diagram struct {
	Direction   Direction    `json:"direction,omitempty" bson:"direction,omitempty"`
	Nodes       []Node       `json:"nodes" bson:"nodes"`
	Edges       []Edge       `json:"edges" bson:"edges"`
	Clusters    []Cluster    `json:"clusters,omitempty" bson:"clusters,omitempty"`
	Constraints []Constraint `json:"constraints,omitempty" bson:"constraints,omitempty"`
}

// Node is a diagram vertex. Width and Height are optional; zero values are
// derived from the label with [NodeSize].
type Node struct {
	ID      string   `json:"id" bson:"id"`
	Label   string   `json:"label,omitempty" bson:"label,omitempty"`
	Width   float64  `json:"width,omitempty" bson:"width,omitempty"`
	Height  float64  `json:"height,omitempty" bson:"height,omitempty"`
	Shape   string   `json:"shape,omitempty" bson:"shape,omitempty"`
	Classes []string `json:"classes,omitempty" bson:"classes,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Extent returns the node's width and height, filling unset dimensions from
// the display label.
func (n Node) Extent() (w, h float64) {
	w, h = n.Width, n.Height
	if w == 0 || h == 0 {
		lw, lh := NodeSize(n.DisplayLabel())
		if w == 0 {
			w = lw
		}
		if h == 0 {
			h = lh
		}
	}
	return w, h
}

// Edge connects two nodes by index. MinLen is the minimum number of ranks
// between source and target; zero means 1.
type Edge struct {
	From   int    `json:"from" bson:"from"`
	To     int    `json:"to" bson:"to"`
	MinLen int    `json:"min_len,omitempty" bson:"min_len,omitempty"`
	Label  string `json:"label,omitempty" bson:"label,omitempty"`
	Arrow  string `json:"arrow,omitempty" bson:"arrow,omitempty"`
}

// Cluster is a named group of nodes drawn inside a common box.
type Cluster struct {
	ID      string `json:"id" bson:"id"`
	Title   string `json:"title,omitempty" bson:"title,omitempty"`
	Members []int  `json:"members" bson:"members"`
}

// Constraint is a user placement hint. Constraints are carried through
// serialization unchanged; the layered layout does not enforce them.
type Constraint struct {
	Kind  string `json:"kind" bson:"kind"`
	Nodes []int  `json:"nodes,omitempty" bson:"nodes,omitempty"`
	Value string `json:"value,omitempty" bson:"value,omitempty"`
}

// Labels returns the display label of every node, in index order.
func (d *Diagram) Labels() []string {
	out := make([]string, len(d.Nodes))
	for i, n := range d.Nodes {
		out[i] = n.DisplayLabel()
	}
	return out
}
