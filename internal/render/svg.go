package render

import (
	"fmt"
	"io"
	"strings"

	"callscope/internal/graph"
	"callscope/internal/layout"
)

// WriteSVG draws lay as a standalone SVG document. Calls are solid
// connectors, tail branches dashed.
func WriteSVG(w io.Writer, lay layout.Layout, t Theme) error {
	var b strings.Builder
	fmt.Fprintf(&b, "<svg xmlns=\"http://www.w3.org/2000/svg\" width=\"%.0f\" height=\"%.0f\" viewBox=\"0 0 %.0f %.0f\">\n",
		lay.Width, lay.Height, lay.Width, lay.Height)
	b.WriteString("<defs>\n")
	for _, m := range []struct{ id, color string }{{"arrow-call", t.EdgeCall}, {"arrow-jump", t.EdgeJump}} {
		fmt.Fprintf(&b, "  <marker id=%q viewBox=\"0 0 10 10\" refX=\"10\" refY=\"5\" markerWidth=\"6\" markerHeight=\"6\" orient=\"auto\">"+
			"<path d=\"M0,0 L10,5 L0,10 z\" fill=%q/></marker>\n", m.id, m.color)
	}
	b.WriteString("</defs>\n")
	fmt.Fprintf(&b, "<rect width=\"100%%\" height=\"100%%\" fill=%q/>\n", t.Background)

	for _, r := range lay.Edges {
		marker, dash := "arrow-call", ""
		if !r.Edge.Call {
			marker, dash = "arrow-jump", ` stroke-dasharray="4,3"`
		}
		color := t.EdgeColor(r.Edge)
		if r.Self {
			fmt.Fprintf(&b, "<path id=\"e%d\" d=\"M%.1f,%.1f C%.1f,%.1f %.1f,%.1f %.1f,%.1f\" fill=\"none\" stroke=%q stroke-width=\"0.8\"%s marker-end=\"url(#%s)\"/>\n",
				r.Edge.ID, r.X1, r.Y1-5, r.X1+30, r.Y1-25, r.X1+30, r.Y1+25, r.X1, r.Y1+5, color, dash, marker)
			continue
		}
		fmt.Fprintf(&b, "<line id=\"e%d\" x1=\"%.1f\" y1=\"%.1f\" x2=\"%.1f\" y2=\"%.1f\" stroke=%q stroke-width=\"0.8\"%s marker-end=\"url(#%s)\"/>\n",
			r.Edge.ID, r.X1, r.Y1, r.X2, r.Y2, color, dash, marker)
	}

	for _, p := range lay.Nodes {
		cx, cy := p.Rect.Center()
		size, label := 9, truncLabel(p.Node.Label, 18)
		if p.Node.Key.Kind != graph.KindFunction {
			size, label = 7, p.Node.Label
		}
		fmt.Fprintf(&b, "<g id=\"%s\">", dotID(p.Node.ID))
		fmt.Fprintf(&b, "<rect x=\"%.1f\" y=\"%.1f\" width=\"%.1f\" height=\"%.1f\" fill=%q stroke=%q stroke-width=\"0.5\"/>",
			p.Rect.X, p.Rect.Y, p.Rect.W, p.Rect.H, t.Fill(p.Node), t.NodeBorder)
		fmt.Fprintf(&b, "<text x=\"%.1f\" y=\"%.1f\" text-anchor=\"middle\" dominant-baseline=\"middle\" font-family=%q font-size=\"%d\" fill=%q>%s</text>",
			cx, cy, t.FontFamily, size, t.TextColor, dotEscape(label))
		b.WriteString("</g>\n")
	}

	b.WriteString("</svg>\n")
	_, err := io.WriteString(w, b.String())
	return err
}
