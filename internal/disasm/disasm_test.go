package disasm

import (
	"encoding/binary"
	"strings"
	"testing"
)

func TestDisassembleNOP(t *testing.T) {
	// ARM64 NOP = 0xd503201f
	data := make([]byte, 8)
	binary.LittleEndian.PutUint32(data[0:4], 0xd503201f)
	binary.LittleEndian.PutUint32(data[4:8], 0xd503201f)

	insts := Disassemble(data, Options{BaseAddr: 0x1000})
	if len(insts) != 2 {
		t.Fatalf("got %d instructions, want 2", len(insts))
	}
	if insts[0].Addr != 0x1000 || insts[1].Addr != 0x1004 {
		t.Errorf("addrs = 0x%x, 0x%x", insts[0].Addr, insts[1].Addr)
	}
	if !insts[0].Valid {
		t.Error("NOP not valid")
	}
	if !strings.Contains(strings.ToLower(insts[0].Text), "nop") {
		t.Errorf("expected NOP, got: %s", insts[0].Text)
	}
}

func TestDisassembleMaxSteps(t *testing.T) {
	data := make([]byte, 400)
	for i := 0; i < 100; i++ {
		binary.LittleEndian.PutUint32(data[i*4:], 0xd503201f)
	}
	insts := Disassemble(data, Options{MaxSteps: 10})
	if len(insts) != 10 {
		t.Fatalf("got %d instructions, want 10", len(insts))
	}
}

func TestDisassembleShort(t *testing.T) {
	if insts := Disassemble(nil, Options{}); len(insts) != 0 {
		t.Fatalf("got %d instructions for nil data", len(insts))
	}
	if insts := Disassemble([]byte{0x01, 0x02}, Options{}); len(insts) != 0 {
		t.Fatalf("got %d instructions for 2 bytes", len(insts))
	}
}

func TestDecodeShort(t *testing.T) {
	if _, err := Decode([]byte{0x1f}, 0x10); err == nil {
		t.Error("expected error for short input")
	}
}

func TestFormatLine(t *testing.T) {
	got := FormatLine(0x20, []byte{0xaa, 0xbb}, "foo")
	if got != "0x00000020  aa bb  foo" {
		t.Errorf("FormatLine = %q", got)
	}
}
