// Package listing renders the disassembly text of a function.
package listing

import (
	"fmt"
	"io"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"callscope/internal/structure"
)

// Source is the part of the disassembly a listing walks.
type Source interface {
	Instruction(addr uint64) (*structure.Instruction, bool)
	HigherAddress(addr uint64) (uint64, bool)
	WriteInstruction(w io.Writer, in *structure.Instruction) error
}

// Render returns the listing of fn. Instructions that fail to decode are
// replaced by an inline error line; the rest of the listing is still produced.
func Render(src Source, fn *structure.Function) string {
	var b strings.Builder
	if len(fn.Segments) == 0 {
		fmt.Fprintf(&b, "; function at address 0x%08x was not disassembled (not in CODE range)\n", fn.Address)
		return b.String()
	}
	for i, seg := range fn.Segments {
		if len(fn.Segments) > 1 {
			fmt.Fprintf(&b, "; Segment #%d\n", i)
		}
		writeSegment(&b, src, seg)
		b.WriteByte('\n')
	}
	return b.String()
}

func writeSegment(b *strings.Builder, src Source, seg structure.CodeSegment) {
	addr := seg.Start
	for addr <= seg.End {
		if err := writeOne(b, src, addr); err != nil {
			fmt.Fprintf(b, "# ERROR decoding instruction at address 0x%08x : %v\n", addr, err)
		}
		next, ok := src.HigherAddress(addr)
		if !ok {
			return
		}
		addr = next
	}
}

func writeOne(b *strings.Builder, src Source, addr uint64) error {
	in, ok := src.Instruction(addr)
	if !ok {
		return structure.ErrNoInstruction
	}
	return src.WriteInstruction(b, in)
}

// Header returns a one-line description of fn.
func Header(fn *structure.Function) string {
	h := fmt.Sprintf("; %s @ 0x%08x", fn.DisplayName(), fn.Address)
	if fn.Comment != "" {
		h += " ; " + fn.Comment
	}
	return h
}

// Projector caches rendered listings by function address. The source must
// not change while the projector is in use.
type Projector struct {
	src   Source
	cache *lru.Cache[uint64, string]
}

// NewProjector returns a projector keeping up to size listings.
func NewProjector(src Source, size int) (*Projector, error) {
	if size <= 0 {
		size = 256
	}
	cache, err := lru.New[uint64, string](size)
	if err != nil {
		return nil, fmt.Errorf("listing: cache: %w", err)
	}
	return &Projector{src: src, cache: cache}, nil
}

// Render returns the listing of fn, from cache when possible.
func (p *Projector) Render(fn *structure.Function) string {
	if text, ok := p.cache.Get(fn.Address); ok {
		return text
	}
	text := Render(p.src, fn)
	p.cache.Add(fn.Address, text)
	return text
}

// Len returns the number of cached listings.
func (p *Projector) Len() int { return p.cache.Len() }
