package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/strata/pkg/layout"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds rank and order to node labels.
	Detailed bool `json:"detailed,omitempty"`

	// Clusters draws cluster and cycle-cluster boxes behind the nodes.
	Clusters bool `json:"clusters,omitempty"`
}

// ToDOT converts a computed layout to Graphviz DOT. Every node is pinned at
// its layout position (pos="x,y!" in points, y flipped since Graphviz grows
// upward) so that Graphviz only draws and does not lay out again. Edges
// appear in layout order; reversed edges are dashed.
func ToDOT(l *layout.Layout, opts Options) string {
	top := l.Bounds.Bottom()

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  splines=ortho;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, fixedsize=true];\n")
	buf.WriteString("\n")

	if opts.Clusters {
		for i, c := range l.Clusters {
			writeBox(&buf, fmt.Sprintf("cluster_%d", i), c.Title, c.Rect, top, "dashed")
		}
		for i, c := range l.CycleClusters {
			writeBox(&buf, fmt.Sprintf("cycle_%d", i), "", c.Rect, top, "dotted")
		}
		if len(l.Clusters)+len(l.CycleClusters) > 0 {
			buf.WriteString("\n")
		}
	}

	for _, n := range l.Nodes {
		c := n.Rect().Center()
		attrs := []string{
			fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed)),
			fmt.Sprintf("pos=%q", pos(c.X, top-c.Y)),
			fmt.Sprintf("width=%s", inches(n.Width)),
			fmt.Sprintf("height=%s", inches(n.Height)),
		}
		if shape := dotShape(n.Shape); shape != "" {
			attrs = append(attrs, "shape="+shape)
		}
		fmt.Fprintf(&buf, "  n%d [%s];\n", n.Index, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range l.Edges {
		var attrs []string
		if e.Label != "" {
			attrs = append(attrs, fmt.Sprintf("xlabel=%q", e.Label))
		}
		if e.Reversed {
			attrs = append(attrs, "style=dashed")
		}
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  n%d -> n%d;\n", e.From, e.To)
			continue
		}
		fmt.Fprintf(&buf, "  n%d -> n%d [%s];\n", e.From, e.To, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeBox(buf *bytes.Buffer, id, title string, r layout.Rect, top float64, style string) {
	c := r.Center()
	fmt.Fprintf(buf, "  %s [label=%q, labelloc=t, shape=rect, style=%s, fillcolor=none, pos=%q, width=%s, height=%s];\n",
		id, title, style, pos(c.X, top-c.Y), inches(r.Width), inches(r.Height))
}

func fmtLabel(n layout.NodeBox, detailed bool) string {
	if !detailed {
		return n.Label
	}
	return fmt.Sprintf("%s\nrank: %d\norder: %d", n.Label, n.Rank, n.Order)
}

// dotShape maps diagram shapes onto Graphviz shapes. Unknown shapes keep
// the default box.
func dotShape(shape string) string {
	switch strings.ToLower(shape) {
	case "circle", "ellipse", "diamond", "hexagon", "note", "cylinder":
		return strings.ToLower(shape)
	case "round", "rounded", "box", "rect", "":
		return ""
	}
	return ""
}

func pos(x, y float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64) + "," + strconv.FormatFloat(y, 'f', -1, 64) + "!"
}

func inches(pt float64) string {
	return strconv.FormatFloat(pt/72, 'f', 4, 64)
}

// RenderSVG renders DOT produced by [ToDOT] to SVG using the embedded
// Graphviz with the neato engine, which honours pinned positions.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
