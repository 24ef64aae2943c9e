// Package layout places graph nodes in ranks flowing west to east
// (horizontal) or north to south (vertical). The result depends only on the
// snapshot and the orientation.
package layout

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"callscope/internal/graph"
)

// ErrBadOrientation is returned for an unknown orientation name.
var ErrBadOrientation = errors.New("layout: unknown orientation")

// Orientation is the direction calls flow in.
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

func (o Orientation) String() string {
	if o == Vertical {
		return "VERTICAL"
	}
	return "HORIZONTAL"
}

// ParseOrientation accepts HORIZONTAL or VERTICAL in any case.
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HORIZONTAL", "H":
		return Horizontal, nil
	case "VERTICAL", "V":
		return Vertical, nil
	}
	return Horizontal, fmt.Errorf("%w: %q", ErrBadOrientation, s)
}

// Cell sizes and spacing, in pixels.
const (
	FunctionWidth  = 100
	FunctionHeight = 30
	FakeWidth      = 50
	FakeHeight     = 20
	RankGap        = 60
	NodeGap        = 20
	Margin         = 20
)

// Rect is an axis-aligned box.
type Rect struct {
	X, Y, W, H float64
}

// Center returns the middle of r.
func (r Rect) Center() (float64, float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

// Placed is a node with its box.
type Placed struct {
	Node graph.NodeView
	Rank int
	Rect Rect
}

// Route is an edge drawn from (X1,Y1) to (X2,Y2). Self edges start and end
// on the same box and are drawn as loops by renderers.
type Route struct {
	Edge           graph.EdgeView
	X1, Y1, X2, Y2 float64
	Self           bool
}

// Layout is a placed graph.
type Layout struct {
	Orientation Orientation
	Width       float64
	Height      float64
	Nodes       []Placed
	Edges       []Route
}

// NodeSize returns the box size of a node.
func NodeSize(n graph.NodeView) (w, h float64) {
	if n.Key.Kind == graph.KindFunction {
		return FunctionWidth, FunctionHeight
	}
	return FakeWidth, FakeHeight
}

// Compute places every node of s. Nodes are ranked by breadth-first distance
// from roots taken in creation order; nodes in a rank keep creation order.
func Compute(s graph.Snapshot, o Orientation) Layout {
	ranks := assignRanks(s)

	lay := Layout{Orientation: o}
	index := make(map[int]int, len(s.Nodes))
	offset := make(map[int]float64) // next free cross-axis position per rank
	maxRank := 0
	for i, n := range s.Nodes {
		r := ranks[n.ID]
		if r > maxRank {
			maxRank = r
		}
		w, h := NodeSize(n)
		cross := offset[r]

		var rect Rect
		if o == Horizontal {
			rect = Rect{
				X: Margin + float64(r)*(FunctionWidth+RankGap) + (FunctionWidth-w)/2,
				Y: Margin + cross,
				W: w, H: h,
			}
			offset[r] = cross + h + NodeGap
		} else {
			rect = Rect{
				X: Margin + cross,
				Y: Margin + float64(r)*(FunctionHeight+RankGap) + (FunctionHeight-h)/2,
				W: w, H: h,
			}
			offset[r] = cross + w + NodeGap
		}
		index[n.ID] = i
		lay.Nodes = append(lay.Nodes, Placed{Node: n, Rank: r, Rect: rect})
	}

	var extent float64
	for _, v := range offset {
		extent = math.Max(extent, v-NodeGap)
	}
	span := float64(maxRank+1)*(FunctionWidth+RankGap) - RankGap
	if o == Vertical {
		span = float64(maxRank+1)*(FunctionHeight+RankGap) - RankGap
	}
	if len(s.Nodes) == 0 {
		span, extent = 0, 0
	}
	if o == Horizontal {
		lay.Width, lay.Height = span+2*Margin, extent+2*Margin
	} else {
		lay.Width, lay.Height = extent+2*Margin, span+2*Margin
	}

	for _, e := range s.Edges {
		from := lay.Nodes[index[e.From]].Rect
		to := lay.Nodes[index[e.To]].Rect
		if e.From == e.To {
			x, y := from.X+from.W, from.Y+from.H/2
			lay.Edges = append(lay.Edges, Route{Edge: e, X1: x, Y1: y, X2: x, Y2: y, Self: true})
			continue
		}
		x1, y1, x2, y2 := clipLine(from, to)
		lay.Edges = append(lay.Edges, Route{Edge: e, X1: x1, Y1: y1, X2: x2, Y2: y2})
	}
	return lay
}

// assignRanks runs a breadth-first search from each root. Roots are nodes
// without callers, then any node still unranked (cycles), in creation order.
func assignRanks(s graph.Snapshot) map[int]int {
	succ := make(map[int][]int)
	hasCaller := make(map[int]bool)
	for _, e := range s.Edges {
		succ[e.From] = append(succ[e.From], e.To)
		if e.From != e.To {
			hasCaller[e.To] = true
		}
	}

	ranks := make(map[int]int, len(s.Nodes))
	bfs := func(root int) {
		ranks[root] = 0
		queue := []int{root}
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			for _, next := range succ[id] {
				if _, seen := ranks[next]; !seen {
					ranks[next] = ranks[id] + 1
					queue = append(queue, next)
				}
			}
		}
	}
	for _, n := range s.Nodes {
		if _, seen := ranks[n.ID]; !seen && !hasCaller[n.ID] {
			bfs(n.ID)
		}
	}
	for _, n := range s.Nodes {
		if _, seen := ranks[n.ID]; !seen {
			bfs(n.ID)
		}
	}
	return ranks
}

// clipLine returns the segment between the centers of a and b cut at the
// border of each box.
func clipLine(a, b Rect) (x1, y1, x2, y2 float64) {
	ax, ay := a.Center()
	bx, by := b.Center()
	dx, dy := bx-ax, by-ay
	x1, y1 = border(a, dx, dy)
	x2, y2 = border(b, -dx, -dy)
	return
}

func border(r Rect, dx, dy float64) (float64, float64) {
	cx, cy := r.Center()
	if dx == 0 && dy == 0 {
		return cx, cy
	}
	t := math.Inf(1)
	if dx != 0 {
		t = math.Min(t, (r.W/2)/math.Abs(dx))
	}
	if dy != 0 {
		t = math.Min(t, (r.H/2)/math.Abs(dy))
	}
	return cx + dx*t, cy + dy*t
}
