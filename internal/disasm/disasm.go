// Package disasm provides ARM64 disassembly and call-site extraction for
// building a code structure.
package disasm

import (
	"encoding/binary"
	"fmt"
	"strings"

	"golang.org/x/arch/arm64/arm64asm"
)

// Inst is a decoded ARM64 instruction with address and raw bytes.
type Inst struct {
	Addr     uint64
	Raw      uint32
	Size     int // always 4 for ARM64
	Mnemonic string
	Operands string
	Text     string // full disassembly line
	Valid    bool   // false when the word did not decode
}

// Options controls disassembly behavior.
type Options struct {
	BaseAddr uint64 // VA of the first byte in Data
	MaxSteps int    // maximum instructions to decode; 0 = 10M
}

const defaultMaxSteps = 10_000_000

func (o Options) effectiveMax() int {
	if o.MaxSteps > 0 {
		return o.MaxSteps
	}
	return defaultMaxSteps
}

// Disassemble decodes ARM64 instructions from a byte region.
// Words that fail to decode are kept as ".word" entries with Valid unset.
func Disassemble(data []byte, opts Options) []Inst {
	maxSteps := opts.effectiveMax()
	n := len(data) / 4
	if n > maxSteps {
		n = maxSteps
	}

	result := make([]Inst, 0, n)
	for i := 0; i < n; i++ {
		off := i * 4
		raw := binary.LittleEndian.Uint32(data[off : off+4])
		addr := opts.BaseAddr + uint64(off)

		text, err := Decode(data[off:off+4], addr)
		valid := err == nil
		if !valid {
			text = fmt.Sprintf(".word 0x%08x", raw)
		}
		mnemonic, operands, _ := strings.Cut(text, " ")

		result = append(result, Inst{
			Addr:     addr,
			Raw:      raw,
			Size:     4,
			Mnemonic: mnemonic,
			Operands: operands,
			Text:     text,
			Valid:    valid,
		})
	}
	return result
}

// Decode decodes one little-endian ARM64 word and returns its text.
func Decode(b []byte, addr uint64) (string, error) {
	if len(b) < 4 {
		return "", fmt.Errorf("disasm: short instruction at 0x%x (%d bytes)", addr, len(b))
	}
	inst, err := arm64asm.Decode(b[:4])
	if err != nil {
		return "", fmt.Errorf("disasm: 0x%08x: %w", binary.LittleEndian.Uint32(b), err)
	}
	return inst.String(), nil
}

// FormatLine renders one instruction as "<addr>  <hex bytes>  <disasm>".
func FormatLine(addr uint64, raw []byte, text string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "0x%08x  ", addr)
	for i, c := range raw {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%02x", c)
	}
	b.WriteString("  ")
	b.WriteString(text)
	return b.String()
}
