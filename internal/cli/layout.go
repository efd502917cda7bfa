package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/strata/pkg/dag/transform"
	"github.com/matzehuels/strata/pkg/graph"
	"github.com/matzehuels/strata/pkg/layout"
	"github.com/matzehuels/strata/pkg/pipeline"
)

// layoutFlags holds the layout overrides shared by layout, render, snapshot
// and preview. Only flags set on the command line override the config file.
type layoutFlags struct {
	strategy    string
	direction   string
	nodeSpacing float64
	rankSpacing float64
	sweeps      int
	routing     string
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.strategy, "strategy", string(transform.DefaultStrategy), "cycle strategy: greedy, dfs-back, mfas, hybrid")
	cmd.Flags().StringVar(&f.direction, "direction", "", "flow direction: TB, BT, LR, RL (default: the diagram's)")
	cmd.Flags().Float64Var(&f.nodeSpacing, "node-spacing", layout.DefaultNodeSpacing, "gap between nodes of a rank")
	cmd.Flags().Float64Var(&f.rankSpacing, "rank-spacing", layout.DefaultRankSpacing, "gap between ranks")
	cmd.Flags().IntVar(&f.sweeps, "sweeps", layout.DefaultSweepCount, "crossing minimization sweeps")
	cmd.Flags().StringVar(&f.routing, "routing", string(layout.DefaultRouting), "edge routing: orthogonal")

	_ = cmd.RegisterFlagCompletionFunc("strategy", completeValues(transform.Strategies))
	_ = cmd.RegisterFlagCompletionFunc("direction", completeValues(graph.Directions))
}

// completeValues completes a flag from a fixed list of string-typed values.
func completeValues[T ~string](values []T) cobra.CompletionFunc {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		out := make([]string, len(values))
		for i, v := range values {
			out[i] = string(v)
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}

// apply copies the flags the user set onto cfg.
func (f *layoutFlags) apply(cmd *cobra.Command, cfg layout.Config) layout.Config {
	changed := cmd.Flags().Changed
	if changed("strategy") {
		cfg.CycleStrategy = transform.Strategy(f.strategy)
	}
	if changed("direction") {
		cfg.Direction = graph.Direction(f.direction)
	}
	if changed("node-spacing") {
		cfg.NodeSpacing = f.nodeSpacing
	}
	if changed("rank-spacing") {
		cfg.RankSpacing = f.rankSpacing
	}
	if changed("sweeps") {
		cfg.SweepCount = f.sweeps
	}
	if changed("routing") {
		cfg.EdgeRouting = layout.EdgeRouting(f.routing)
	}
	return cfg
}

// layoutCommand creates the layout command for computing layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output    string
		noCache   bool
		showStats bool
		flags     layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [diagram.json]",
		Short: "Compute a layered layout for a diagram",
		Long: `Compute a layered layout for a diagram.

The layout command reads a diagram JSON file and writes the computed layout
(node boxes, edge polylines, cluster boxes, stats and phase trace) as JSON.
Identical input and options always produce byte-identical output.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			cfg.Layout = flags.apply(cmd, cfg.Layout)
			return c.runLayout(cmd.Context(), args[0], cfg, output, noCache, showStats)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&showStats, "stats", false, "print the full statistics table")
	flags.register(cmd)

	return cmd
}

// runLayout loads the diagram, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, cfg pipeline.FileConfig, output string, noCache, showStats bool) error {
	d, err := graph.ReadDiagramFile(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := pipeline.Options{Config: cfg.Layout, Logger: c.Logger, NoCache: noCache}

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	l, cacheHit, err := runner.Layout(ctx, d, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = outputBase("", input) + ".layout.json"
	}
	if err := layout.WriteLayoutFile(l, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(l.Stats, cacheHit)
	for _, diag := range l.Diagnostics {
		printWarning("%s", diag.Message)
	}
	if showStats {
		printNewline()
		printStatsTable(l.Stats)
	}
	printNewline()
	printNextStep("Render", appName+" render "+input+" -f svg")

	return nil
}
