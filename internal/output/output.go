// Package output writes a code structure as JSONL files that
// structure.LoadDir reads back.
package output

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"callscope/internal/disasm"
	"callscope/internal/structure"
)

// WriteStructure writes structure.json, functions.jsonl, call_edges.jsonl and
// instructions.jsonl into dir, creating it if needed.
func WriteStructure(dir string, s *structure.Structure) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("output: mkdir %s: %w", dir, err)
	}

	funcs := s.Functions()
	insts := s.Instructions()

	meta := disasm.StructureRecord{
		EntryPoint: hexAddr(s.EntryPoint()),
		Arch:       "arm64",
		Functions:  len(funcs),
		Calls:      s.CallCount(),
		Insts:      len(insts),
	}
	if err := writeJSON(filepath.Join(dir, "structure.json"), meta); err != nil {
		return err
	}

	funcRecs := make([]any, 0, len(funcs))
	var edgeRecs []any
	for _, fn := range funcs {
		rec := disasm.FuncRecord{PC: hexAddr(fn.Address), Name: fn.Name, Comment: fn.Comment}
		for _, seg := range fn.Segments {
			rec.Segments = append(rec.Segments, disasm.SegmentRecord{Start: hexAddr(seg.Start), End: hexAddr(seg.End)})
		}
		funcRecs = append(funcRecs, rec)
		for _, j := range fn.Calls {
			edgeRecs = append(edgeRecs, edgeRecord(fn, j))
		}
	}
	if err := writeJSONL(filepath.Join(dir, "functions.jsonl"), funcRecs); err != nil {
		return err
	}
	if err := writeJSONL(filepath.Join(dir, "call_edges.jsonl"), edgeRecs); err != nil {
		return err
	}

	instRecs := make([]any, 0, len(insts))
	for _, in := range insts {
		instRecs = append(instRecs, disasm.InstRecord{PC: hexAddr(in.Address), Raw: hex.EncodeToString(in.Raw), Text: in.Text})
	}
	return writeJSONL(filepath.Join(dir, "instructions.jsonl"), instRecs)
}

func edgeRecord(fn *structure.Function, j structure.Jump) disasm.CallEdgeRecord {
	rec := disasm.CallEdgeRecord{FromFunc: hexAddr(fn.Address), FromPC: hexAddr(j.Source)}
	switch {
	case !j.Call:
		rec.Kind = disasm.KindTail
	case j.Target == 0:
		rec.Kind = disasm.KindBLR
	default:
		rec.Kind = disasm.KindBL
	}
	if j.Target != 0 {
		rec.Target = hexAddr(j.Target)
	}
	return rec
}

func hexAddr(a uint64) string { return fmt.Sprintf("0x%x", a) }

func writeJSONL(path string, recs []any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	for _, r := range recs {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("output: encode %s: %w", path, err)
		}
	}
	return f.Close()
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: create %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("output: encode %s: %w", path, err)
	}
	return f.Close()
}
