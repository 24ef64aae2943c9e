package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"callscope/internal/session"
	"callscope/internal/structure"
)

func testSession(t *testing.T) *session.Session {
	t.Helper()
	st := structure.New(0x1000, structure.DecoderFunc(func(raw []byte, addr uint64) (string, error) {
		return "ret", nil
	}))
	st.AddFunction(&structure.Function{
		Address:  0x1000,
		Name:     "main",
		Segments: []structure.CodeSegment{{Start: 0x1000, End: 0x1000}},
		Calls:    []structure.Jump{{Source: 0x1000, Target: 0x2000, Call: true}},
	})
	st.AddFunction(&structure.Function{Address: 0x2000, Name: "helper"})
	st.AddInstruction(structure.Instruction{Address: 0x1000, Raw: []byte{0xc0, 0x03, 0x5f, 0xd6}})

	s, err := session.New(st, session.Options{})
	require.NoError(t, err)
	return s
}

func runScript(t *testing.T, s *session.Session, script string) string {
	t.Helper()
	var out strings.Builder
	require.NoError(t, newShell(s, &out, false).run(strings.NewReader(script)))
	return out.String()
}

func TestShellExplore(t *testing.T) {
	s := testSession(t)
	out := runScript(t, s, "explore 0x1000\nstats\nquit\nexplore 0x2000\n")
	assert.Contains(t, out, "expanded main: +2 nodes, +1 edges")
	assert.Contains(t, out, "2 nodes, 1 edges (1 expanded, 0 unresolved), HORIZONTAL")
	assert.Equal(t, 1, s.Stats().Expanded)
}

func TestShellErrorsContinue(t *testing.T) {
	s := testSession(t)
	out := runScript(t, s, "explore nope\nexplore 0x4444\nbogus\nexplore\nentry\n")
	assert.Contains(t, out, "error: parsing error")
	assert.Contains(t, out, "error: no function at address 0x00004444")
	assert.Contains(t, out, `error: unknown command "bogus"`)
	assert.Contains(t, out, "error: explore needs an argument")
	assert.Contains(t, out, "expanded main")
}

func TestShellListingAndOrient(t *testing.T) {
	s := testSession(t)
	out := runScript(t, s, "list 0x1000\norient v\norient\nclear\nstats\n")
	assert.Contains(t, out, "; main @ 0x00001000")
	assert.Contains(t, out, "0x00001000  c0 03 5f d6  ret")
	assert.Contains(t, out, "VERTICAL")
	assert.Contains(t, out, "0 nodes, 0 edges")
}

func TestShellExports(t *testing.T) {
	dir := t.TempDir()
	s := testSession(t)
	svg := filepath.Join(dir, "g.svg")
	dot := filepath.Join(dir, "g.dot")
	out := runScript(t, s, "entry\nsvg "+svg+"\ndot "+dot+"\npng "+filepath.Join(dir, "no", "g.png")+"\n")

	assert.Contains(t, out, "wrote "+svg)
	assert.Contains(t, out, "error: create")
	_, err := os.Stat(svg)
	assert.NoError(t, err)
	_, err = os.Stat(dot)
	assert.NoError(t, err)
}
