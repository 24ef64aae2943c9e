package render

import (
	"fmt"
	"strings"

	lrender "github.com/zboralski/lattice/render"

	"callscope/internal/graph"
	"callscope/internal/layout"
)

// GraphDOT renders the explored graph as DOT. Node and edge order follows the
// snapshot, so equal snapshots give equal output.
func GraphDOT(s graph.Snapshot, o layout.Orientation, title string, t Theme) string {
	rankdir := "LR"
	if o == layout.Vertical {
		rankdir = "TB"
	}

	var b strings.Builder
	b.WriteString("digraph callscope {\n")
	fmt.Fprintf(&b, "  rankdir=%s;\n", rankdir)
	b.WriteString("  splines=true;\n")
	b.WriteString("  nodesep=0.4;\n")
	b.WriteString("  ranksep=0.6;\n")
	fmt.Fprintf(&b, "  bgcolor=%q;\n", t.Background)
	fmt.Fprintf(&b, "  node [shape=rect, style=filled, fillcolor=%q, color=%q, penwidth=0.5, fontname=%q, fontsize=9, fontcolor=%q, height=0.3, margin=\"0.12,0.06\"];\n",
		t.FillUnexpanded, t.NodeBorder, t.FontFamily, t.TextColor)
	b.WriteString("  edge [penwidth=0.5, arrowsize=0.5, arrowhead=vee];\n")
	if title != "" {
		fmt.Fprintf(&b, "  labelloc=t;\n  labeljust=l;\n")
		fmt.Fprintf(&b, "  label=<<font face=\"Helvetica Neue,Helvetica\" point-size=\"8\" color=\"%s\">%s</font>>;\n",
			t.TextColor, dotEscape(title))
	}
	b.WriteByte('\n')

	for _, n := range s.Nodes {
		if n.Key.Kind == graph.KindFunction {
			fmt.Fprintf(&b, "  %s [label=%q, fillcolor=%q];\n", dotID(n.ID), truncLabel(n.Label, 60), t.Fill(n))
			continue
		}
		fmt.Fprintf(&b, "  %s [label=%q, fillcolor=%q, fontsize=7, height=0.2, width=0.5];\n",
			dotID(n.ID), n.Label, t.Fill(n))
	}
	b.WriteByte('\n')

	for _, e := range s.Edges {
		style := "solid"
		if !e.Call {
			style = "dashed"
		}
		fmt.Fprintf(&b, "  %s -> %s [color=%q, style=%q];\n", dotID(e.From), dotID(e.To), t.EdgeColor(e), style)
	}

	b.WriteString("}\n")
	return b.String()
}

// SummaryDOT renders the name-level call graph of m, one edge per caller and
// callee pair.
func SummaryDOT(m *graph.Model, title string) string {
	return lrender.DOT(m.Lattice(), title)
}
