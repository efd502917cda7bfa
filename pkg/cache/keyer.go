package cache

// Keyer builds cache keys. Keys embed a hash of every input that affects
// the cached value, so two requests share an entry exactly when they would
// compute the same bytes.
type Keyer interface {
	// LayoutKey returns the key for the layout of the diagram with the
	// given content hash.
	LayoutKey(diagramHash string, opts LayoutKeyOpts) string

	// ArtifactKey returns the key for a rendered output of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts holds the resolved layout options that affect the result.
type LayoutKeyOpts struct {
	Algorithm      string  `json:"algorithm"`
	CycleStrategy  string  `json:"cycle_strategy"`
	Direction      string  `json:"direction"`
	NodeSpacing    float64 `json:"node_spacing"`
	RankSpacing    float64 `json:"rank_spacing"`
	ClusterPadding float64 `json:"cluster_padding"`
	SweepCount     int     `json:"sweep_count"`
	EdgeRouting    string  `json:"edge_routing"`
}

// ArtifactKeyOpts holds the options that affect a rendered artifact.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Detailed bool   `json:"detailed,omitempty"`
	Clusters bool   `json:"clusters,omitempty"`
}

// DefaultKeyer builds unscoped keys of the form kind:sha256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey implements [Keyer].
func (DefaultKeyer) LayoutKey(diagramHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", diagramHash, opts)
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
