package render

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/convoflow/convoflow/pkg/flow"
)

// DefaultLabelLimit is the maximum number of runes of message content shown
// inside a node before truncation.
const DefaultLabelLimit = 50

// Options configures flow graph rendering.
type Options struct {
	// LabelLimit caps the message preview length in runes.
	// Zero means DefaultLabelLimit; negative disables the preview entirely.
	LabelLimit int
}

func (o Options) labelLimit() int {
	if o.LabelLimit == 0 {
		return DefaultLabelLimit
	}
	return o.LabelLimit
}

// ToDOT converts a flow graph to Graphviz DOT format.
// Node positions from the layout are pinned, so Graphviz draws the graph
// exactly where the builder placed it. The resulting DOT string can be
// rendered with [RenderSVG] or [RenderPNG].
func ToDOT(g flow.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph conversation {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  splines=line;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=12, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		label := fmtLabel(n, opts.labelLimit())
		attrs := fmtAttrs(n, label)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n flow.Node, limit int) string {
	if limit < 0 {
		return n.Label
	}
	preview := Truncate(n.Payload.Content, limit)
	if preview == "" {
		return n.Label
	}
	return n.Label + "\n" + preview
}

func fmtAttrs(n flow.Node, label string) []string {
	attrs := []string{
		fmt.Sprintf("label=%q", label),
		// Graphviz y grows upward; flow coordinates grow downward.
		fmt.Sprintf("pos=\"%.0f,%.0f!\"", n.Position.X, -n.Position.Y),
	}
	if n.Kind == flow.KindUser {
		attrs = append(attrs, "fillcolor=lightblue")
	} else {
		attrs = append(attrs, "fillcolor=white")
	}
	return attrs
}

// Truncate shortens s to at most limit runes, appending an ellipsis when
// content was cut. Newlines are flattened so previews stay on one line.
// A negative limit returns the empty string.
func Truncate(s string, limit int) string {
	if limit < 0 {
		return ""
	}
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "…"
}
