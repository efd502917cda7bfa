package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/matzehuels/strata/pkg/cache"
	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/graph"
	"github.com/matzehuels/strata/pkg/layout"
	"github.com/matzehuels/strata/pkg/observability"
)

const tracerName = "github.com/matzehuels/strata/pkg/pipeline"

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in logs. It never enters the layout.
	RunID string

	// Layout is the computed (or cached) layout.
	Layout *layout.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// CacheHit reports whether the layout came from the cache.
	CacheHit bool

	// Duration is the wall time of the whole run.
	Duration time.Duration
}

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger; it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL applies to every cache write. Zero selects the per-kind defaults.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute computes the layout of d and renders every requested format.
// When opts.Output is set the artifacts are also written to disk.
func (r *Runner) Execute(ctx context.Context, d *graph.Diagram, opts Options) (*Result, error) {
	start := time.Now()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	result := &Result{RunID: uuid.NewString()}
	logger := r.Logger.With("run", result.RunID[:8])

	l, hit, err := r.Layout(ctx, d, opts)
	if err != nil {
		return nil, err
	}
	result.Layout = l
	result.CacheHit = hit

	artifacts, err := r.Render(ctx, l, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts

	if opts.Output != "" {
		if err := WriteArtifacts(opts.Output, artifacts); err != nil {
			return nil, err
		}
	}

	result.Duration = time.Since(start)
	logger.Debug("pipeline complete", "formats", opts.Formats, "duration", result.Duration)
	return result, nil
}

// Layout returns the layout of d, from the cache when possible. The
// boolean reports a cache hit.
//
// Cache failures never fail the run: a broken entry or an unreachable
// backend is logged and the layout is recomputed.
func (r *Runner) Layout(ctx context.Context, d *graph.Diagram, opts Options) (*layout.Layout, bool, error) {
	if d == nil {
		return nil, false, errors.New(errors.ErrCodeContractViolation, "diagram is nil")
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	diagramHash := d.Hash()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "pipeline.layout",
		trace.WithAttributes(
			attribute.String("diagram.hash", diagramHash),
			attribute.Int("diagram.nodes", len(d.Nodes)),
			attribute.Int("diagram.edges", len(d.Edges)),
			attribute.String("layout.strategy", string(opts.Config.CycleStrategy)),
		))
	defer span.End()

	key := r.Keyer.LayoutKey(diagramHash, opts.LayoutKeyOpts())
	if !opts.NoCache {
		if l, ok := r.cachedLayout(ctx, key); ok {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			r.Logger.Info("computed layout",
				"nodes", l.Stats.NodeCount,
				"edges", l.Stats.EdgeCount,
				"crossings", l.Stats.CrossingCount,
				"cache_hit", true)
			return l, true, nil
		}
	}

	hooks := observability.Pipeline()
	strategy := string(opts.Config.CycleStrategy)
	hooks.OnLayoutStart(ctx, strategy, len(d.Nodes), len(d.Edges))
	start := time.Now()
	l, err := layout.Compute(d, opts.Config)
	elapsed := time.Since(start)
	if err != nil {
		hooks.OnLayoutComplete(ctx, strategy, 0, elapsed, err)
		r.Logger.Debug("layout failed", "err", err, "duration", elapsed)
		return nil, false, err
	}
	hooks.OnLayoutComplete(ctx, strategy, l.Stats.CrossingCount, elapsed, nil)

	r.Logger.Info("computed layout",
		"nodes", l.Stats.NodeCount,
		"edges", l.Stats.EdgeCount,
		"crossings", l.Stats.CrossingCount,
		"duration", elapsed,
		"cache_hit", false)

	if !opts.NoCache {
		if data, err := layout.MarshalLayout(l); err == nil {
			r.store(ctx, "layout", key, data, cache.TTLLayout)
		}
	}
	return l, false, nil
}

func (r *Runner) cachedLayout(ctx context.Context, key string) (*layout.Layout, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "err", err)
		observability.Cache().OnCacheMiss(ctx, "layout")
		return nil, false
	}
	if !hit {
		r.Logger.Debug("cache miss", "key", key)
		observability.Cache().OnCacheMiss(ctx, "layout")
		return nil, false
	}
	l, err := layout.UnmarshalLayout(data)
	if err != nil {
		// Recompute and overwrite the broken entry.
		r.Logger.Warn("discarding unreadable cache entry", "key", key, "err", err)
		observability.Cache().OnCacheMiss(ctx, "layout")
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "layout")
	return l, true
}

func (r *Runner) store(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if r.TTL > 0 {
		ttl = r.TTL
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// WriteArtifacts writes each artifact to <prefix>.<format>.
func WriteArtifacts(prefix string, artifacts map[string][]byte) error {
	for _, format := range sortedFormats(artifacts) {
		path := prefix + "." + format
		if err := os.WriteFile(path, artifacts[format], 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}
