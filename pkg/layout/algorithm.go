package layout

import (
	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/graph"
)

// Algorithm names a layout family.
type Algorithm string

const (
	AlgorithmAuto    Algorithm = "auto"
	AlgorithmLayered Algorithm = "layered"
	AlgorithmForce   Algorithm = "force"
	AlgorithmTree    Algorithm = "tree"
	AlgorithmRadial  Algorithm = "radial"
)

// Layouter produces a [Layout] from a diagram. Implementations must be
// deterministic and must not retain state between calls.
type Layouter interface {
	Layout(d *graph.Diagram, cfg Config) (*Layout, error)
}

// Select returns the layouter for alg. Auto selection always resolves to
// the layered pipeline; the other families are recognised but not
// implemented and yield [errors.ErrCodeUnsupported].
func Select(alg Algorithm) (Layouter, error) {
	switch alg {
	case "", AlgorithmAuto, AlgorithmLayered:
		return Layered{}, nil
	case AlgorithmForce, AlgorithmTree, AlgorithmRadial:
		return nil, errors.New(errors.ErrCodeUnsupported, "%s layout is not supported", alg)
	}
	return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown layout algorithm %q", alg)
}

// Layered is the Sugiyama-style layered pipeline: cycle breaking, ranking,
// crossing minimization, coordinate assignment, edge routing and cluster
// aggregation.
type Layered struct{}

// Layout implements [Layouter].
func (Layered) Layout(d *graph.Diagram, cfg Config) (*Layout, error) {
	cfg, err := cfg.Resolve()
	if err != nil {
		return nil, err
	}
	if cfg.EdgeRouting == RoutingSpline {
		return nil, errors.New(errors.ErrCodeUnsupported, "spline edge routing is not supported")
	}
	return layered(d, cfg)
}
