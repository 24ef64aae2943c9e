package render

import "callscope/internal/graph"

// Theme holds colors for call graph rendering.
type Theme struct {
	Background string
	NodeBorder string
	TextColor  string
	FontFamily string

	// Node fills by visual state.
	FillUnexpanded string
	FillLeaf       string // expanded, no outgoing calls
	FillBranch     string // expanded, with calls
	FillUnknown    string // shared target of unresolvable indirect calls
	FillUnresolved string // call target outside any known function

	EdgeCall string // BL / BLR
	EdgeJump string // tail branch
}

// NASA is the NASA/Bauhaus theme: geometric, monochrome, sparse color.
var NASA = Theme{
	Background: "#F5F5F5",
	NodeBorder: "#1A1A1A",
	TextColor:  "#1A1A1A",
	FontFamily: "Helvetica Neue,Helvetica,Arial",

	FillUnexpanded: "#FFFFFF",
	FillLeaf:       "#ECEFF1", // blue-gray 50
	FillBranch:     "#BBDEFB", // blue 100
	FillUnknown:    "#FF7700",
	FillUnresolved: "#FF0000",

	EdgeCall: "#424242",
	EdgeJump: "#0B3D91", // NASA blue
}

// Fill returns the fill color of a node.
func (t Theme) Fill(n graph.NodeView) string {
	switch n.State {
	case graph.StateExpanded:
		if n.Leaf {
			return t.FillLeaf
		}
		return t.FillBranch
	case graph.StateUnknown:
		return t.FillUnknown
	case graph.StateUnresolved:
		return t.FillUnresolved
	}
	return t.FillUnexpanded
}

// EdgeColor returns the stroke color of an edge.
func (t Theme) EdgeColor(e graph.EdgeView) string {
	if e.Call {
		return t.EdgeCall
	}
	return t.EdgeJump
}
