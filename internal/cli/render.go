package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/strata/pkg/graph"
	"github.com/matzehuels/strata/pkg/pipeline"
	"github.com/matzehuels/strata/pkg/render/nodelink"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string // output file (single format) or base path (multiple)
	formats  string // comma-separated formats: "dot", "svg", "json"
	detailed bool   // label nodes with rank and order
	clusters bool   // draw cluster and cycle boxes
	noCache  bool
}

// renderCommand creates the render command for exporting DOT and SVG.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{formats: pipeline.FormatSVG, clusters: true}
	var flags layoutFlags

	cmd := &cobra.Command{
		Use:   "render [diagram.json]",
		Short: "Render a diagram layout to DOT or SVG",
		Long: `Render a diagram layout to DOT or SVG.

Nodes are pinned at their computed positions; SVG output is produced by
Graphviz with the neato engine so the layout is kept as computed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := pipeline.ParseFormats(opts.formats)
			if err != nil {
				return err
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			cfg.Layout = flags.apply(cmd, cfg.Layout)
			return c.runRender(cmd.Context(), args[0], cfg, formats, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file or base path (default: <input>.<format>)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", opts.formats, "output format(s): svg (default), dot, json (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show rank and order in node labels")
	cmd.Flags().BoolVar(&opts.clusters, "clusters", opts.clusters, "draw cluster and cycle boxes")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	flags.register(cmd)

	return cmd
}

// runRender lays out the diagram and writes every requested artifact.
func (c *CLI) runRender(ctx context.Context, input string, cfg pipeline.FileConfig, formats []string, ro renderOpts) error {
	logger := loggerFromContext(ctx)

	d, err := graph.ReadDiagramFile(input)
	if err != nil {
		return err
	}
	logger.Debugf("Loaded diagram: %d nodes, %d edges", len(d.Nodes), len(d.Edges))

	runner, err := c.newRunner(ctx, cfg, ro.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := pipeline.Options{
		Config:  cfg.Layout,
		Formats: formats,
		DOT:     nodelink.Options{Detailed: ro.detailed, Clusters: ro.clusters},
		Output:  outputBase(ro.output, input),
		NoCache: ro.noCache,
		Logger:  c.Logger,
	}

	spinner := newSpinnerWithContext(ctx, "Rendering...")
	spinner.Start()

	result, err := runner.Execute(ctx, d, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	printSuccess("Render complete")
	for _, format := range formats {
		printFile(opts.Output + "." + format)
	}
	printStats(result.Layout.Stats, result.CacheHit)
	return nil
}
