package disasm

// BranchInfo describes a decoded branch instruction.
type BranchInfo struct {
	Target uint64 // absolute target address (0 if RET)
	Cond   bool   // true if conditional (has fallthrough)
	IsRet  bool   // true if RET
}

// branchForm describes one PC-relative branch encoding.
type branchForm struct {
	mask, value uint32
	shift, bits int
	cond        bool
}

var branchForms = []branchForm{
	{mask: 0xFC000000, value: 0x14000000, shift: 0, bits: 26},             // B
	{mask: 0xFF000010, value: 0x54000000, shift: 5, bits: 19, cond: true}, // B.cond
	{mask: 0x7F000000, value: 0x34000000, shift: 5, bits: 19, cond: true}, // CBZ
	{mask: 0x7F000000, value: 0x35000000, shift: 5, bits: 19, cond: true}, // CBNZ
	{mask: 0x7F000000, value: 0x36000000, shift: 5, bits: 14, cond: true}, // TBZ
	{mask: 0x7F000000, value: 0x37000000, shift: 5, bits: 14, cond: true}, // TBNZ
}

// DecodeBranch attempts to decode a branch instruction from raw encoding at the given PC.
// Returns nil if the instruction is not a branch/ret. BL and BLR are calls, not branches.
func DecodeBranch(raw uint32, pc uint64) *BranchInfo {
	// RET Xn = 0xD65F0000 | Rn<<5
	if raw&0xFFFFFC1F == 0xD65F0000 {
		return &BranchInfo{IsRet: true}
	}
	for _, f := range branchForms {
		if raw&f.mask != f.value {
			continue
		}
		imm := (raw >> f.shift) & (1<<f.bits - 1)
		offset := signExtend(imm, f.bits) * 4
		return &BranchInfo{Target: uint64(int64(pc) + int64(offset)), Cond: f.cond}
	}
	return nil
}

// signExtend sign-extends a value from the given bit width to int32.
func signExtend(val uint32, bits int) int32 {
	sign := uint32(1) << (bits - 1)
	mask := sign - 1
	if val&sign != 0 {
		return int32(val | ^mask)
	}
	return int32(val & mask)
}
