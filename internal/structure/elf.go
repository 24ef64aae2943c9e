package structure

import (
	"encoding/binary"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/ianlancetaylor/demangle"

	"callscope/internal/disasm"
	"callscope/internal/elfx"
)

// FromELF disassembles every sized function symbol of an ARM64 ELF file.
// Each function gets one code segment covering its symbol range. BL becomes a
// call to its target, BLR a call to the unknown target 0, and an
// unconditional B leaving the function a tail jump. Functions whose bytes are
// not file-backed are kept without segments.
func FromELF(path string, logger *log.Logger) (*Structure, error) {
	ef, err := elfx.Open(path)
	if err != nil {
		return nil, err
	}
	defer ef.Close()

	syms, err := ef.FuncSymbols()
	if err != nil {
		return nil, err
	}

	s := New(ef.Entry(), ARM64)
	raw := make([]byte, 4)
	for _, sym := range syms {
		fn := &Function{
			Address: sym.Addr,
			Name:    demangle.Filter(sym.Name),
		}
		if fn.Name != sym.Name {
			fn.Comment = sym.Name
		}
		s.AddFunction(fn)

		size := sym.Size &^ 3
		data, err := ef.ReadBytesAtVA(sym.Addr, int(size))
		if err != nil {
			if logger != nil {
				logger.Debug("function not in file", "name", fn.Name, "addr", fmt.Sprintf("0x%x", sym.Addr), "err", err)
			}
			continue
		}
		insts := disasm.Disassemble(data, disasm.Options{BaseAddr: sym.Addr})
		if len(insts) == 0 {
			continue
		}
		for _, inst := range insts {
			binary.LittleEndian.PutUint32(raw, inst.Raw)
			in := Instruction{Address: inst.Addr, Raw: append([]byte(nil), raw...)}
			if inst.Valid {
				in.Text = inst.Text
			}
			s.AddInstruction(in)
		}
		fn.Segments = []CodeSegment{{Start: sym.Addr, End: insts[len(insts)-1].Addr}}
		for _, site := range disasm.ExtractCallSites(insts, sym.Addr, sym.Addr+size) {
			fn.Calls = append(fn.Calls, Jump{Source: site.FromPC, Target: site.TargetPC, Call: site.Call()})
		}
	}

	if logger != nil {
		logger.Info("disassembled", "path", path, "functions", len(s.funcs), "instructions", len(s.addrs), "calls", s.CallCount())
	}
	return s, nil
}
