package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/strata/pkg/graph"
	"github.com/matzehuels/strata/pkg/layout"
	"github.com/matzehuels/strata/pkg/pipeline"
)

// previewCommand creates the interactive preview command.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		noCache bool
		flags   layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "preview [diagram.json]",
		Short: "Explore layout options interactively",
		Long: `Explore layout options interactively.

The preview shows every rank with its nodes in layout order next to the
layout statistics. Press d to cycle the direction, s to cycle the cycle
strategy and +/- to change the number of crossing minimization sweeps.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			cfg.Layout = flags.apply(cmd, cfg.Layout)
			return c.runPreview(cmd.Context(), args[0], cfg, noCache)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	flags.register(cmd)

	return cmd
}

func (c *CLI) runPreview(ctx context.Context, input string, cfg pipeline.FileConfig, noCache bool) error {
	d, err := graph.ReadDiagramFile(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	compute := func(d *graph.Diagram, lc layout.Config) (*layout.Layout, error) {
		l, _, err := runner.Layout(ctx, d, pipeline.Options{Config: lc, NoCache: noCache, Logger: c.Logger})
		return l, err
	}

	// Log lines would tear the alternate screen.
	level := c.Logger.GetLevel()
	c.Logger.SetLevel(LogError)
	defer c.Logger.SetLevel(level)

	m := NewPreviewModel(d, cfg.Layout, compute)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}
