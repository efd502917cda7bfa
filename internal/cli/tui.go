package cli

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/strata/pkg/dag/transform"
	"github.com/matzehuels/strata/pkg/graph"
	"github.com/matzehuels/strata/pkg/layout"
)

// Preview styles
var (
	previewLabelStyle = lipgloss.NewStyle().Foreground(colorGray)
	previewValueStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	previewDimStyle   = lipgloss.NewStyle().Foreground(colorDim)
	previewErrorStyle = lipgloss.NewStyle().Foreground(colorRed)
)

// maxPreviewSweeps bounds the sweep count reachable with "+".
const maxPreviewSweeps = 64

// =============================================================================
// PreviewModel - Interactive layout explorer
// =============================================================================

// LayoutFunc computes a layout for the preview.
type LayoutFunc func(d *graph.Diagram, cfg layout.Config) (*layout.Layout, error)

// PreviewModel is the bubbletea model for interactive layout preview. Every
// key that changes the configuration recomputes the layout.
type PreviewModel struct {
	Diagram *graph.Diagram
	Config  layout.Config
	Layout  *layout.Layout
	Err     error
	Runs    int

	compute LayoutFunc
}

// NewPreviewModel creates a preview model and computes the first layout.
// An empty direction in cfg is pinned to the diagram's so that "d" cycles
// from what is on screen.
func NewPreviewModel(d *graph.Diagram, cfg layout.Config, compute LayoutFunc) PreviewModel {
	if cfg.Direction == "" {
		cfg.Direction = d.Direction
	}
	if cfg.Direction == "" {
		cfg.Direction = graph.DirectionTB
	}
	if cfg.CycleStrategy == "" {
		cfg.CycleStrategy = transform.DefaultStrategy
	}
	m := PreviewModel{Diagram: d, Config: cfg, compute: compute}
	return m.relayout()
}

func (m PreviewModel) relayout() PreviewModel {
	m.Runs++
	m.Layout, m.Err = m.compute(m.Diagram, m.Config)
	return m
}

func (m PreviewModel) Init() tea.Cmd {
	return nil
}

func (m PreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "d":
		m.Config.Direction = cycle(graph.Directions, m.Config.Direction)
	case "s":
		m.Config.CycleStrategy = cycle(transform.Strategies, m.Config.CycleStrategy)
	case "+", "=":
		if m.Config.SweepCount >= maxPreviewSweeps {
			return m, nil
		}
		m.Config.SweepCount++
	case "-", "_":
		if m.Config.SweepCount == 0 {
			return m, nil
		}
		m.Config.SweepCount--
	default:
		return m, nil
	}
	return m.relayout(), nil
}

// cycle returns the element after cur, wrapping around. An unknown cur
// yields the first element.
func cycle[T comparable](all []T, cur T) T {
	i := slices.Index(all, cur)
	return all[(i+1)%len(all)]
}

func (m PreviewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Layout Preview"))
	b.WriteString("\n")
	b.WriteString(previewDimStyle.Render("d direction  s strategy  +/- sweeps  q quit"))
	b.WriteString("\n\n")

	b.WriteString(setting("direction", string(m.Config.Direction)))
	b.WriteString(setting("strategy", string(m.Config.CycleStrategy)))
	b.WriteString(setting("sweeps", strconv.Itoa(m.Config.SweepCount)))
	b.WriteString("\n\n")

	if m.Err != nil {
		b.WriteString(previewErrorStyle.Render(iconError + " " + m.Err.Error()))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		ranksTable(m.Layout),
		"  ",
		statsTable(m.Layout.Stats),
	))
	b.WriteString("\n\n")
	b.WriteString(previewDimStyle.Render(fmt.Sprintf("  layout %s · run %d", shortHash(m.Layout.Hash()), m.Runs)))

	return b.String()
}

func setting(label, value string) string {
	return previewLabelStyle.Render(label+" ") + previewValueStyle.Render(value) + "   "
}

// ranksTable lists each rank's nodes in layout order.
func ranksTable(l *layout.Layout) string {
	ranks := l.Ranks()
	rows := make([][]string, len(ranks))
	for r, members := range ranks {
		labels := make([]string, len(members))
		for i, idx := range members {
			labels[i] = l.Nodes[idx].Label
		}
		rows[r] = []string{strconv.Itoa(r), strings.Join(labels, "  ")}
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Rank", "Nodes (in order)").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == headerRow:
				return styleHeader
			case col == 0:
				return StyleNumber
			}
			return StyleValue
		}).
		Render()
}
