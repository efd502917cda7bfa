package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/strata/pkg/graph"
	"github.com/matzehuels/strata/pkg/layout"
	"github.com/matzehuels/strata/pkg/pipeline"
	"github.com/matzehuels/strata/pkg/snapshot"
)

// snapshotFlags selects the store and the layout options for snapshot
// commands.
type snapshotFlags struct {
	store  string
	layout layoutFlags
}

func (f *snapshotFlags) register(cmd *cobra.Command, withLayout bool) {
	cmd.Flags().StringVar(&f.store, "store", "", "snapshot store: file, mongo (default: from config)")
	if withLayout {
		f.layout.register(cmd)
	}
}

// snapshotCommand creates the snapshot command group.
func (c *CLI) snapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Pin layouts and check them for regressions",
		Long: `Pin layouts and check them for regressions.

A snapshot stores the layout hash, statistics and full layout of a diagram
under a name. 'snapshot check' recomputes the layout and fails when it no
longer matches, listing the statistics that changed.`,
	}

	cmd.AddCommand(c.snapshotSaveCommand())
	cmd.AddCommand(c.snapshotCheckCommand())
	cmd.AddCommand(c.snapshotListCommand())
	cmd.AddCommand(c.snapshotDeleteCommand())

	return cmd
}

// openStore loads the configuration, applies --store and opens the store.
func (c *CLI) openStore(ctx context.Context, f *snapshotFlags) (snapshot.Store, pipeline.FileConfig, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, cfg, err
	}
	if f.store != "" {
		cfg.Snapshot.Backend = f.store
	}
	store, err := cfg.OpenStore(ctx)
	if err != nil {
		return nil, cfg, err
	}
	return store, cfg, nil
}

// computeFresh lays out input without touching the cache, so a check always
// exercises the current layout code.
func (c *CLI) computeFresh(ctx context.Context, cmd *cobra.Command, input string, cfg pipeline.FileConfig, f *snapshotFlags) (*graph.Diagram, layout.Config, *layout.Layout, error) {
	d, err := graph.ReadDiagramFile(input)
	if err != nil {
		return nil, layout.Config{}, nil, err
	}
	opts := pipeline.Options{Config: f.layout.apply(cmd, cfg.Layout), NoCache: true, Logger: c.Logger}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, layout.Config{}, nil, err
	}
	l, _, err := pipeline.NewRunner(nil, nil, c.Logger).Layout(ctx, d, opts)
	if err != nil {
		return nil, layout.Config{}, nil, err
	}
	return d, opts.Config, l, nil
}

func (c *CLI) snapshotSaveCommand() *cobra.Command {
	var f snapshotFlags
	cmd := &cobra.Command{
		Use:   "save <name> <diagram.json>",
		Short: "Compute a layout and store it as a snapshot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			prog := newProgress(loggerFromContext(ctx))

			store, cfg, err := c.openStore(ctx, &f)
			if err != nil {
				return err
			}
			defer store.Close()

			d, resolved, l, err := c.computeFresh(ctx, cmd, args[1], cfg, &f)
			if err != nil {
				return err
			}
			s, err := snapshot.New(args[0], d, resolved, l)
			if err != nil {
				return err
			}
			if err := store.Save(ctx, s); err != nil {
				return err
			}

			prog.done("Saved snapshot")
			printSuccess("Saved snapshot %s", StyleHighlight.Render(s.Name))
			printKeyValue("Layout", shortHash(s.LayoutHash))
			printStats(l.Stats, false)
			return nil
		},
	}
	f.register(cmd, true)
	return cmd
}

func (c *CLI) snapshotCheckCommand() *cobra.Command {
	var f snapshotFlags
	cmd := &cobra.Command{
		Use:   "check <name> <diagram.json>",
		Short: "Recompute a layout and compare it with a snapshot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, cfg, err := c.openStore(ctx, &f)
			if err != nil {
				return err
			}
			defer store.Close()

			d, resolved, l, err := c.computeFresh(ctx, cmd, args[1], cfg, &f)
			if err != nil {
				return err
			}
			report, err := snapshot.Check(ctx, store, args[0], d, resolved, l)
			if report != nil {
				printReport(report)
			}
			return err
		},
	}
	f.register(cmd, true)
	return cmd
}

func (c *CLI) snapshotListCommand() *cobra.Command {
	var f snapshotFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, _, err := c.openStore(ctx, &f)
			if err != nil {
				return err
			}
			defer store.Close()

			snaps, err := store.List(ctx)
			if err != nil {
				return err
			}
			if len(snaps) == 0 {
				printInfo("No snapshots")
				return nil
			}
			fmt.Println(snapshotTable(snaps))
			return nil
		},
	}
	f.register(cmd, false)
	return cmd
}

func (c *CLI) snapshotDeleteCommand() *cobra.Command {
	var f snapshotFlags
	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, _, err := c.openStore(ctx, &f)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(ctx, args[0]); err != nil {
				return err
			}
			printSuccess("Deleted snapshot %s", args[0])
			return nil
		},
	}
	f.register(cmd, false)
	return cmd
}

// printReport prints the outcome of a snapshot check.
func printReport(r *snapshot.Report) {
	if r.Match {
		printSuccess("Snapshot %s matches", StyleHighlight.Render(r.Name))
		printKeyValue("Layout", shortHash(r.GotHash))
		return
	}
	printError("Snapshot %s does not match", StyleHighlight.Render(r.Name))
	printKeyValue("Want", shortHash(r.WantHash))
	printKeyValue("Got", shortHash(r.GotHash))
	if r.DiagramChanged {
		printDetail("the diagram changed since the snapshot was saved")
	}
	if r.ConfigChanged {
		printDetail("the layout configuration changed since the snapshot was saved")
	}
	if len(r.StatDiffs) == 0 {
		return
	}
	rows := make([][]string, len(r.StatDiffs))
	for i, sd := range r.StatDiffs {
		rows[i] = []string{sd.Field, sd.Want, sd.Got}
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Statistic", "Want", "Got").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return styleHeader
			}
			if col == 2 {
				return StyleWarning
			}
			return lipgloss.NewStyle()
		})
	fmt.Println(t.Render())
}

// snapshotTable renders the snapshot list.
func snapshotTable(snaps []*snapshot.Snapshot) string {
	rows := make([][]string, len(snaps))
	for i, s := range snaps {
		rows[i] = []string{
			s.Name,
			shortHash(s.LayoutHash),
			fmt.Sprintf("%d", s.Stats.NodeCount),
			fmt.Sprintf("%d", s.Stats.CrossingCount),
			s.CreatedAt.Format("2006-01-02 15:04"),
		}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Name", "Layout", "Nodes", "Crossings", "Created").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return styleHeader
			}
			if col == 0 {
				return StyleHighlight
			}
			return StyleDim
		}).
		Render()
}

// shortHash abbreviates a hash for display.
func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
