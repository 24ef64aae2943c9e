package render

import (
	"bytes"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"callscope/internal/graph"
	"callscope/internal/layout"
	"callscope/internal/structure"
)

func sample() graph.Snapshot {
	return graph.Snapshot{
		Nodes: []graph.NodeView{
			{ID: 0, Key: graph.FunctionKey(0x1000), Label: "main", State: graph.StateExpanded},
			{ID: 1, Key: graph.FunctionKey(0x2000), Label: "sub_2000", State: graph.StateUnexpanded},
			{ID: 3, Key: graph.UnresolvedKey(0), Label: "??", State: graph.StateUnknown},
			{ID: 5, Key: graph.UnresolvedKey(0x9000), Label: "0x00009000", State: graph.StateUnresolved},
		},
		Edges: []graph.EdgeView{
			{ID: 2, From: 0, To: 1, Call: true},
			{ID: 4, From: 0, To: 3, Call: true},
			{ID: 6, From: 0, To: 5, Call: false},
		},
	}
}

func TestThemeFill(t *testing.T) {
	s := sample()
	assert.Equal(t, NASA.FillBranch, NASA.Fill(s.Nodes[0]))
	assert.Equal(t, NASA.FillUnexpanded, NASA.Fill(s.Nodes[1]))
	assert.Equal(t, "#FF7700", NASA.Fill(s.Nodes[2]))
	assert.Equal(t, "#FF0000", NASA.Fill(s.Nodes[3]))

	leaf := graph.NodeView{State: graph.StateExpanded, Leaf: true}
	assert.Equal(t, NASA.FillLeaf, NASA.Fill(leaf))
}

func TestGraphDOT(t *testing.T) {
	s := sample()
	dot := GraphDOT(s, layout.Horizontal, "demo", NASA)
	assert.True(t, strings.HasPrefix(dot, "digraph callscope {"))
	assert.Contains(t, dot, "rankdir=LR;")
	assert.Contains(t, dot, `n0 [label="main"`)
	assert.Contains(t, dot, `n3 [label="??", fillcolor="#FF7700"`)
	assert.Contains(t, dot, `n0 -> n1 [color="#424242", style="solid"];`)
	assert.Contains(t, dot, `n0 -> n5 [color="#0B3D91", style="dashed"];`)

	assert.Contains(t, GraphDOT(s, layout.Vertical, "", NASA), "rankdir=TB;")
	assert.Equal(t, dot, GraphDOT(sample(), layout.Horizontal, "demo", NASA))
}

func TestSummaryDOT(t *testing.T) {
	fn := &structure.Function{Address: 0x1000, Name: "main"}
	m := graph.New()
	_, err := m.AddFunctionNode(fn)
	require.NoError(t, err)

	dot := SummaryDOT(m, "summary")
	assert.Contains(t, dot, "digraph")
	assert.Contains(t, dot, "main")
}

func TestWriteSVG(t *testing.T) {
	lay := layout.Compute(sample(), layout.Horizontal)
	var a, b bytes.Buffer
	require.NoError(t, WriteSVG(&a, lay, NASA))
	require.NoError(t, WriteSVG(&b, lay, NASA))
	assert.Equal(t, a.String(), b.String())

	svg := a.String()
	assert.True(t, strings.HasPrefix(svg, "<svg "))
	assert.Equal(t, 4, strings.Count(svg, "<g id="))
	assert.Equal(t, 3, strings.Count(svg, "<line "))
	assert.Equal(t, 1, strings.Count(svg, "stroke-dasharray"))
	assert.Contains(t, svg, ">??</text>")
	assert.Contains(t, svg, `fill="#FF0000"`)
}

func TestWritePNG(t *testing.T) {
	lay := layout.Compute(sample(), layout.Vertical)
	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, lay, NASA, color.White))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, int(lay.Width), img.Bounds().Dx())
	assert.Equal(t, int(lay.Height), img.Bounds().Dy())

	r, g, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, b})

	for _, p := range lay.Nodes {
		if p.Node.State != graph.StateUnresolved {
			continue
		}
		r, g, b, _ := img.At(int(p.Rect.X)+1, int(p.Rect.Y)+1).RGBA()
		assert.Equal(t, [3]uint32{0xffff, 0, 0}, [3]uint32{r, g, b})
	}
}

func TestSaveFiles(t *testing.T) {
	dir := t.TempDir()
	lay := layout.Compute(sample(), layout.Horizontal)

	svgPath := filepath.Join(dir, "g.svg")
	require.NoError(t, SaveSVG(svgPath, lay, NASA))
	data, err := os.ReadFile(svgPath)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(data), "</svg>\n"))

	pngPath := filepath.Join(dir, "g.png")
	require.NoError(t, SavePNG(pngPath, lay, NASA, color.White))
	f, err := os.Open(pngPath)
	require.NoError(t, err)
	defer f.Close()
	_, err = png.Decode(f)
	require.NoError(t, err)

	dotPath := filepath.Join(dir, "g.dot")
	require.NoError(t, SaveDOT(dotPath, "digraph x {}\n"))
	data, err = os.ReadFile(dotPath)
	require.NoError(t, err)
	assert.Equal(t, "digraph x {}\n", string(data))
}

func TestSaveBadPath(t *testing.T) {
	err := SaveDOT(filepath.Join(t.TempDir(), "missing", "g.dot"), "")
	assert.Error(t, err)
}

func TestTruncLabel(t *testing.T) {
	assert.Equal(t, "abc", truncLabel("abc", 5))
	assert.Equal(t, "ab...", truncLabel("abcdefgh", 5))
	assert.Equal(t, "ab", truncLabel("abcdefgh", 2))
}

func TestParseColor(t *testing.T) {
	assert.Equal(t, color.RGBA{R: 0xff, G: 0x77, A: 0xff}, parseColor("#FF7700"))
	assert.Equal(t, color.RGBA{A: 0xff}, parseColor("white"))
}
