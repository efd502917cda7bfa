package pipeline

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/matzehuels/strata/pkg/cache"
	"github.com/matzehuels/strata/pkg/layout"
	"github.com/matzehuels/strata/pkg/observability"
	"github.com/matzehuels/strata/pkg/render/nodelink"
)

// Render produces every format in opts.Formats from l. DOT and SVG
// artifacts are cached by layout hash; JSON is cheap and never cached.
func (r *Runner) Render(ctx context.Context, l *layout.Layout, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	artifacts, err := r.render(ctx, l, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("rendered outputs", "formats", opts.Formats, "duration", time.Since(start))
	return artifacts, nil
}

func (r *Runner) render(ctx context.Context, l *layout.Layout, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	layoutHash := l.Hash()

	var dot string
	for _, format := range opts.Formats {
		if format == FormatJSON {
			data, err := layout.MarshalLayout(l)
			if err != nil {
				return nil, fmt.Errorf("render json: %w", err)
			}
			artifacts[format] = data
			continue
		}

		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if !opts.NoCache {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, "artifact")
				artifacts[format] = data
				continue
			}
			observability.Cache().OnCacheMiss(ctx, "artifact")
		}

		if dot == "" {
			dot = nodelink.ToDOT(l, opts.DOT)
		}
		var data []byte
		switch format {
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			svg, err := nodelink.RenderSVG(ctx, dot)
			if err != nil {
				return nil, fmt.Errorf("render svg: %w", err)
			}
			data = svg
		default:
			return nil, ValidateFormat(format)
		}
		artifacts[format] = data

		if !opts.NoCache {
			r.store(ctx, "artifact", key, data, cache.TTLArtifact)
		}
	}
	return artifacts, nil
}

func sortedFormats(artifacts map[string][]byte) []string {
	formats := make([]string, 0, len(artifacts))
	for f := range artifacts {
		formats = append(formats, f)
	}
	slices.Sort(formats)
	return formats
}
