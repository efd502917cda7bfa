package graph

import (
	"strings"
	"unicode/utf8"
)

const (
	charWidth      = 8.0  // approximate glyph advance
	minNodeWidth   = 72.0 // narrowest box for short labels
	baseNodeHeight = 40.0 // single-line box height
	lineHeight     = 16.0 // added per extra label line
)

// NodeSize estimates the box size needed to show label. Width grows with the
// longest line and height with the number of lines.
func NodeSize(label string) (w, h float64) {
	lines := strings.Split(label, "\n")
	longest := 0
	for _, line := range lines {
		if n := utf8.RuneCountInString(line); n > longest {
			longest = n
		}
	}
	w = max(minNodeWidth, float64(longest)*charWidth)
	h = baseNodeHeight + float64(len(lines)-1)*lineHeight
	return w, h
}
