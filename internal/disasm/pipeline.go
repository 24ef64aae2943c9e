package disasm

// FuncRecord is one line in functions.jsonl.
type FuncRecord struct {
	PC       string          `json:"pc"`
	Name     string          `json:"name"`
	Comment  string          `json:"comment,omitempty"`
	Segments []SegmentRecord `json:"segments,omitempty"`
}

// SegmentRecord is an inclusive instruction range inside a FuncRecord.
type SegmentRecord struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// CallEdgeRecord is one line in call_edges.jsonl. Records appear in the
// order of the owning function's call list.
type CallEdgeRecord struct {
	FromFunc string `json:"from_func"`        // owning function pc
	FromPC   string `json:"from_pc"`          // call site
	Kind     string `json:"kind"`             // "bl", "blr" or "tail"
	Target   string `json:"target,omitempty"` // "0x..." target; empty when unknown
}

// InstRecord is one line in instructions.jsonl.
type InstRecord struct {
	PC   string `json:"pc"`
	Raw  string `json:"raw"`            // hex bytes in memory order
	Text string `json:"text,omitempty"` // empty when the word did not decode
}

// StructureRecord is the content of structure.json.
type StructureRecord struct {
	EntryPoint string `json:"entry_point"`
	Arch       string `json:"arch"`
	Functions  int    `json:"functions"`
	Calls      int    `json:"calls"`
	Insts      int    `json:"instructions"`
}
