// Package pipeline runs layouts the way every strata entry point needs them:
// cached, observed, logged, and rendered into the requested formats.
//
// The CLI and the HTTP server both go through a [Runner], so cache keys,
// logging and hooks stay consistent between them.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	opts := pipeline.Options{
//	    Config:  layout.DefaultConfig(),
//	    Formats: []string{"json", "svg"},
//	}
//	result, err := runner.Execute(ctx, diagram, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	l, cacheHit, err := runner.Layout(ctx, diagram, opts)
//	artifacts, err := runner.Render(ctx, l, opts)
//
// # Configuration files
//
// [LoadConfigFile] reads a TOML file with [layout], [cache] and [snapshot]
// tables; [FileConfig.OpenCache] and [FileConfig.OpenStore] build the
// configured backends.
package pipeline

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/strata/pkg/cache"
	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/layout"
	"github.com/matzehuels/strata/pkg/render/nodelink"
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
}

// DefaultFormats is used when Options.Formats is empty.
var DefaultFormats = []string{FormatJSON}

// =============================================================================
// Options
// =============================================================================

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Config is the layout configuration. It is resolved in place by
	// ValidateAndSetDefaults.
	Config layout.Config `json:"config"`

	// Formats lists the artifacts to produce.
	Formats []string `json:"formats,omitempty"`

	// DOT controls the dot and svg renderings.
	DOT nodelink.Options `json:"dot,omitempty"`

	// Output is a path prefix; when set, Execute writes <Output>.<format>
	// for every artifact.
	Output string `json:"-"`

	// NoCache bypasses the cache for both reads and writes.
	NoCache bool `json:"no_cache,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidConfig,
			"invalid format: %q (must be one of: json, dot, svg)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated format list such as "json,svg".
// Empty entries are dropped and duplicates collapsed, keeping first order.
func ParseFormats(s string) ([]string, error) {
	var out []string
	seen := map[string]bool{}
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		if err := ValidateFormat(f); err != nil {
			return nil, err
		}
		seen[f] = true
		out = append(out, f)
	}
	return out, nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults resolves the layout configuration and applies
// defaults. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	cfg, err := o.Config.Resolve()
	if err != nil {
		return err
	}
	o.Config = cfg

	if len(o.Formats) == 0 {
		o.Formats = DefaultFormats
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// LayoutKeyOpts returns cache key options for layout computation. The
// options must have been validated so that equivalent configurations map
// to the same key.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	c := o.Config
	return cache.LayoutKeyOpts{
		Algorithm:      string(c.Algorithm),
		CycleStrategy:  string(c.CycleStrategy),
		Direction:      string(c.Direction),
		NodeSpacing:    c.NodeSpacing,
		RankSpacing:    c.RankSpacing,
		ClusterPadding: c.ClusterPadding,
		SweepCount:     c.SweepCount,
		EdgeRouting:    string(c.EdgeRouting),
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	if format == FormatJSON {
		return cache.ArtifactKeyOpts{Format: format}
	}
	return cache.ArtifactKeyOpts{
		Format:   format,
		Detailed: o.DOT.Detailed,
		Clusters: o.DOT.Clusters,
	}
}

// String summarizes the options for log lines.
func (o *Options) String() string {
	return fmt.Sprintf("strategy=%s direction=%s sweeps=%d formats=%s",
		o.Config.CycleStrategy, o.Config.Direction, o.Config.SweepCount, strings.Join(o.Formats, ","))
}
