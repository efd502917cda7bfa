package layout

import (
	"strings"

	"github.com/matzehuels/strata/pkg/dag/transform"
	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/graph"
	"github.com/matzehuels/strata/pkg/layout/ordering"
)

// EdgeRouting selects the geometry of routed edges.
type EdgeRouting string

const (
	RoutingOrthogonal EdgeRouting = "orthogonal"
	RoutingSpline     EdgeRouting = "spline"
)

// Default configuration values.
const (
	DefaultNodeSpacing    = 48.0
	DefaultRankSpacing    = 72.0
	DefaultClusterPadding = 24.0
	DefaultSweepCount     = ordering.DefaultSweeps
	DefaultRouting        = RoutingOrthogonal
)

// Config holds every layout option. It is passed by value to [Compute] and
// never modified, so concurrent calls with different configurations do not
// interact.
//
// Zero values of the string options and of the spacings mean "use the
// default". SweepCount is taken literally: zero runs no sweeps.
type Config struct {
	Algorithm      Algorithm          `json:"algorithm,omitempty" toml:"algorithm" validate:"oneof=auto layered force tree radial"`
	CycleStrategy  transform.Strategy `json:"cycle_strategy,omitempty" toml:"cycle_strategy" validate:"oneof=greedy dfs-back mfas hybrid"`
	NodeSpacing    float64            `json:"node_spacing,omitempty" toml:"node_spacing" validate:"gt=0"`
	RankSpacing    float64            `json:"rank_spacing,omitempty" toml:"rank_spacing" validate:"gt=0"`
	ClusterPadding float64            `json:"cluster_padding,omitempty" toml:"cluster_padding" validate:"gte=0"`
	SweepCount     int                `json:"sweep_count" toml:"sweep_count" validate:"gte=0,lte=1000"`
	Direction      graph.Direction    `json:"direction,omitempty" toml:"direction" validate:"omitempty,oneof=TB BT LR RL"`
	EdgeRouting    EdgeRouting        `json:"edge_routing,omitempty" toml:"edge_routing" validate:"oneof=orthogonal spline"`
}

// DefaultConfig returns the default configuration. Direction is left empty
// so that the diagram's own direction applies.
func DefaultConfig() Config {
	return Config{
		Algorithm:      AlgorithmAuto,
		CycleStrategy:  transform.DefaultStrategy,
		NodeSpacing:    DefaultNodeSpacing,
		RankSpacing:    DefaultRankSpacing,
		ClusterPadding: DefaultClusterPadding,
		SweepCount:     DefaultSweepCount,
		EdgeRouting:    DefaultRouting,
	}
}

// Resolve fills defaults for unset options, canonicalizes aliases (for
// example "dfs_back" or "TD") and validates the result. Errors carry
// [errors.ErrCodeInvalidConfig].
func (c Config) Resolve() (Config, error) {
	if c.Algorithm == "" {
		c.Algorithm = AlgorithmAuto
	}
	c.Algorithm = Algorithm(strings.ToLower(string(c.Algorithm)))

	strategy, err := transform.ParseStrategy(string(c.CycleStrategy))
	if err != nil {
		return c, err
	}
	c.CycleStrategy = strategy

	if c.Direction != "" {
		dir, err := graph.ParseDirection(string(c.Direction))
		if err != nil {
			return c, errors.Wrap(errors.ErrCodeInvalidConfig, err, "direction")
		}
		c.Direction = dir
	}

	if c.EdgeRouting == "" {
		c.EdgeRouting = DefaultRouting
	}
	c.EdgeRouting = EdgeRouting(strings.ToLower(string(c.EdgeRouting)))

	if c.NodeSpacing == 0 {
		c.NodeSpacing = DefaultNodeSpacing
	}
	if c.RankSpacing == 0 {
		c.RankSpacing = DefaultRankSpacing
	}

	if err := errors.ValidateStruct(c); err != nil {
		return c, err
	}
	return c, nil
}

// Validate reports whether c resolves to a valid configuration.
func (c Config) Validate() error {
	_, err := c.Resolve()
	return err
}

// direction returns the configured direction, falling back to the
// diagram's. The diagram's value is canonicalized and checked even when
// the configuration overrides it, since decoders other than
// [graph.ReadDiagram] leave it as written.
func (c Config) direction(d *graph.Diagram) (graph.Direction, error) {
	dir, err := graph.ParseDirection(string(d.Direction))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "diagram direction")
	}
	if c.Direction != "" {
		return c.Direction, nil
	}
	return dir, nil
}
