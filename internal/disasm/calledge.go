package disasm

// Call-site kinds reported by ExtractCallSites.
const (
	KindBL   = "bl"   // direct call
	KindBLR  = "blr"  // indirect call, target unknown
	KindTail = "tail" // unconditional branch leaving the function
)

// CallSite is an outgoing control transfer found inside a function body.
type CallSite struct {
	FromPC   uint64 `json:"from_pc"`
	Kind     string `json:"kind"`
	TargetPC uint64 `json:"target_pc,omitempty"` // 0 for blr
	Reg      int    `json:"reg,omitempty"`       // register for blr
}

// Call reports whether the site returns to the caller.
func (c CallSite) Call() bool { return c.Kind != KindTail }

// isBL detects ARM64 BL (branch with link) instructions.
// Encoding: 1 | 00101 | imm26
// Mask: 0xFC000000, Value: 0x94000000
// Returns the target address (sign-extended imm26 * 4 + PC).
func isBL(raw uint32, pc uint64) (target uint64, ok bool) {
	if raw&0xFC000000 != 0x94000000 {
		return 0, false
	}
	offset := signExtend(raw&0x03FFFFFF, 26) * 4
	return uint64(int64(pc) + int64(offset)), true
}

// isBLR detects ARM64 BLR (branch with link to register) instructions.
// Encoding: 1101011 | 0 | 0 | 01 | 11111 | 0000 | 0 | 0 | Rn | 00000
// Mask: 0xFFFFFC1F, Value: 0xD63F0000
// Returns the register number.
func isBLR(raw uint32) (rn int, ok bool) {
	if raw&0xFFFFFC1F != 0xD63F0000 {
		return 0, false
	}
	return int((raw >> 5) & 0x1F), true
}

// ExtractCallSites scans the instructions of one function occupying
// [start, end) and returns its call sites in address order.
// BL yields a direct call, BLR an indirect call with no target, and an
// unconditional B whose target falls outside [start, end) a tail jump.
func ExtractCallSites(insts []Inst, start, end uint64) []CallSite {
	var sites []CallSite
	for _, inst := range insts {
		if target, ok := isBL(inst.Raw, inst.Addr); ok {
			sites = append(sites, CallSite{FromPC: inst.Addr, Kind: KindBL, TargetPC: target})
			continue
		}
		if rn, ok := isBLR(inst.Raw); ok {
			sites = append(sites, CallSite{FromPC: inst.Addr, Kind: KindBLR, Reg: rn})
			continue
		}
		bi := DecodeBranch(inst.Raw, inst.Addr)
		if bi == nil || bi.IsRet || bi.Cond {
			continue
		}
		if bi.Target < start || bi.Target >= end {
			sites = append(sites, CallSite{FromPC: inst.Addr, Kind: KindTail, TargetPC: bi.Target})
		}
	}
	return sites
}
