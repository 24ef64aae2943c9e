package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"callscope/internal/explore"
	"callscope/internal/layout"
	"callscope/internal/prefs"
	"callscope/internal/structure"
)

func nopDecoder() structure.Decoder {
	return structure.DecoderFunc(func(raw []byte, addr uint64) (string, error) { return "nop", nil })
}

// fixture: main calls helper and an unresolved address, helper tail-jumps to
// leaf, and main also calls through a register.
func fixture() *structure.Structure {
	s := structure.New(0x1000, nopDecoder())
	s.AddFunction(&structure.Function{
		Address:  0x1000,
		Name:     "main",
		Segments: []structure.CodeSegment{{Start: 0x1000, End: 0x100c}},
		Calls: []structure.Jump{
			{Source: 0x1000, Target: 0x2000, Call: true},
			{Source: 0x1004, Target: 0x9000, Call: true},
			{Source: 0x1008, Target: 0, Call: true},
		},
	})
	s.AddFunction(&structure.Function{
		Address:  0x2000,
		Name:     "helper",
		Segments: []structure.CodeSegment{{Start: 0x2000, End: 0x2000}},
		Calls:    []structure.Jump{{Source: 0x2000, Target: 0x3000}},
	})
	s.AddFunction(&structure.Function{Address: 0x3000, Name: "leaf"})
	for _, a := range []uint64{0x1000, 0x1004, 0x1008, 0x100c, 0x2000} {
		s.AddInstruction(structure.Instruction{Address: a, Raw: []byte{0x1f, 0x20, 0x03, 0xd5}})
	}
	return s
}

func newSession(t *testing.T, opts Options) *Session {
	t.Helper()
	s, err := New(fixture(), opts)
	require.NoError(t, err)
	return s
}

func TestExploreAndStats(t *testing.T) {
	s := newSession(t, Options{})

	res, err := s.Explore("0x1000")
	require.NoError(t, err)
	assert.Equal(t, 4, res.NewNodes)
	assert.Equal(t, 3, res.NewEdges)
	assert.Equal(t, Stats{Nodes: 4, Edges: 3, Expanded: 1, Unresolved: 2}, s.Stats())

	_, err = s.Explore("0x2000")
	require.NoError(t, err)
	assert.Equal(t, Stats{Nodes: 5, Edges: 4, Expanded: 2, Unresolved: 2}, s.Stats())
}

func TestExploreErrorsLeaveGraph(t *testing.T) {
	s := newSession(t, Options{})
	_, err := s.ExploreEntry()
	require.NoError(t, err)
	before := s.Stats()

	_, err = s.Explore("zzz")
	assert.ErrorIs(t, err, explore.ErrParse)
	_, err = s.Explore("0x5555")
	assert.ErrorIs(t, err, explore.ErrNoFunction)
	assert.Equal(t, before, s.Stats())
}

func TestListing(t *testing.T) {
	s := newSession(t, Options{})
	out, err := s.Listing("0x1000")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "; main @ 0x00001000\n"))
	assert.Contains(t, out, "0x00001008  1f 20 03 d5  nop\n")

	out, err = s.Listing("0x3000")
	require.NoError(t, err)
	assert.Contains(t, out, "was not disassembled")

	_, err = s.Listing("0x4000")
	assert.ErrorIs(t, err, explore.ErrNoFunction)
	_, err = s.Listing("")
	assert.ErrorIs(t, err, explore.ErrParse)
}

func TestClearKeepsOrientation(t *testing.T) {
	s := newSession(t, Options{DefaultOrientation: layout.Vertical})
	_, err := s.Explore("0x1000")
	require.NoError(t, err)
	s.Clear()
	assert.Equal(t, Stats{}, s.Stats())
	assert.Equal(t, layout.Vertical, s.Orientation())

	_, err = s.Explore("0x1000")
	require.NoError(t, err)
	assert.Equal(t, 4, s.Stats().Nodes)
}

func TestOrientationPersisted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	s := newSession(t, Options{Prefs: prefs.NewStore(path)})
	assert.Equal(t, layout.Horizontal, s.Orientation())
	require.NoError(t, s.SetOrientation(layout.Vertical))

	again := newSession(t, Options{Prefs: prefs.NewStore(path)})
	assert.Equal(t, layout.Vertical, again.Orientation())
}

func TestOrientationChangesLayoutOnly(t *testing.T) {
	s := newSession(t, Options{})
	_, err := s.Explore("0x1000")
	require.NoError(t, err)
	h := s.Layout()
	stats := s.Stats()

	require.NoError(t, s.SetOrientation(layout.Vertical))
	v := s.Layout()
	assert.Equal(t, stats, s.Stats())
	assert.Equal(t, len(h.Nodes), len(v.Nodes))
	assert.NotEqual(t, h.Nodes[1].Rect, v.Nodes[1].Rect)
}

func TestExports(t *testing.T) {
	dir := t.TempDir()
	s := newSession(t, Options{Title: "demo"})
	_, err := s.Explore("0x1000")
	require.NoError(t, err)

	for name, save := range map[string]func(string) error{
		"g.svg":         s.SaveVector,
		"g.png":         s.SaveRaster,
		"g.dot":         s.SaveDOT,
		"g.summary.dot": s.SaveSummary,
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, save(path), name)
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size(), name)
	}

	first, err := os.ReadFile(filepath.Join(dir, "g.png"))
	require.NoError(t, err)
	require.NoError(t, s.SaveRaster(filepath.Join(dir, "g2.png")))
	second, err := os.ReadFile(filepath.Join(dir, "g2.png"))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExportFailureKeepsGraph(t *testing.T) {
	s := newSession(t, Options{})
	_, err := s.Explore("0x1000")
	require.NoError(t, err)
	before := s.Stats()

	bad := filepath.Join(t.TempDir(), "missing", "g.svg")
	assert.Error(t, s.SaveVector(bad))
	assert.Error(t, s.SaveRaster(bad))
	assert.Error(t, s.SaveDOT(bad))
	assert.Equal(t, before, s.Stats())
}
