package structure

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"callscope/internal/disasm"
)

// LoadDir reads a structure written by output.WriteStructure: structure.json,
// functions.jsonl, call_edges.jsonl and instructions.jsonl. Instructions
// without text are decoded as ARM64 on demand.
func LoadDir(dir string) (*Structure, error) {
	var meta disasm.StructureRecord
	data, err := os.ReadFile(filepath.Join(dir, "structure.json"))
	if err != nil {
		return nil, fmt.Errorf("read structure.json: %w", err)
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode structure.json: %w", err)
	}
	entry, err := ParseHex(meta.EntryPoint)
	if err != nil {
		return nil, fmt.Errorf("structure.json entry_point: %w", err)
	}
	s := New(entry, ARM64)

	funcs, err := ReadJSONL[disasm.FuncRecord](filepath.Join(dir, "functions.jsonl"))
	if err != nil {
		return nil, fmt.Errorf("read functions.jsonl: %w", err)
	}
	for _, rec := range funcs {
		fn, err := functionFromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("functions.jsonl: %w", err)
		}
		s.AddFunction(fn)
	}

	edges, err := ReadJSONL[disasm.CallEdgeRecord](filepath.Join(dir, "call_edges.jsonl"))
	if err != nil {
		return nil, fmt.Errorf("read call_edges.jsonl: %w", err)
	}
	for i, rec := range edges {
		owner, err := ParseHex(rec.FromFunc)
		if err != nil {
			return nil, fmt.Errorf("call_edges.jsonl line %d: %w", i+1, err)
		}
		fn, ok := s.Function(owner)
		if !ok {
			return nil, fmt.Errorf("call_edges.jsonl line %d: no function at 0x%x", i+1, owner)
		}
		j, err := jumpFromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("call_edges.jsonl line %d: %w", i+1, err)
		}
		fn.Calls = append(fn.Calls, j)
	}

	insts, err := ReadJSONL[disasm.InstRecord](filepath.Join(dir, "instructions.jsonl"))
	if err != nil {
		return nil, fmt.Errorf("read instructions.jsonl: %w", err)
	}
	for i, rec := range insts {
		addr, err := ParseHex(rec.PC)
		if err != nil {
			return nil, fmt.Errorf("instructions.jsonl line %d: %w", i+1, err)
		}
		raw, err := hex.DecodeString(rec.Raw)
		if err != nil {
			return nil, fmt.Errorf("instructions.jsonl line %d: %w", i+1, err)
		}
		s.AddInstruction(Instruction{Address: addr, Raw: raw, Text: rec.Text})
	}
	return s, nil
}

func functionFromRecord(rec disasm.FuncRecord) (*Function, error) {
	addr, err := ParseHex(rec.PC)
	if err != nil {
		return nil, err
	}
	fn := &Function{Address: addr, Name: rec.Name, Comment: rec.Comment}
	for _, sr := range rec.Segments {
		start, err := ParseHex(sr.Start)
		if err != nil {
			return nil, err
		}
		end, err := ParseHex(sr.End)
		if err != nil {
			return nil, err
		}
		fn.Segments = append(fn.Segments, CodeSegment{Start: start, End: end})
	}
	return fn, nil
}

func jumpFromRecord(rec disasm.CallEdgeRecord) (Jump, error) {
	src, err := ParseHex(rec.FromPC)
	if err != nil {
		return Jump{}, err
	}
	var target uint64
	if rec.Target != "" {
		if target, err = ParseHex(rec.Target); err != nil {
			return Jump{}, err
		}
	}
	return Jump{Source: src, Target: target, Call: rec.Kind != disasm.KindTail}, nil
}

// ParseHex parses a "0x"-prefixed or bare hexadecimal address.
func ParseHex(s string) (uint64, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	return strconv.ParseUint(s, 16, 64)
}

// ReadJSONL reads a JSONL file into a slice of T.
func ReadJSONL[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []T
	dec := json.NewDecoder(f)
	for dec.More() {
		var rec T
		if err := dec.Decode(&rec); err != nil {
			return records, fmt.Errorf("line %d: %w", len(records)+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
