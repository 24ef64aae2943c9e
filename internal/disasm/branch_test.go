package disasm

import "testing"

func TestDecodeBranch(t *testing.T) {
	tests := []struct {
		name   string
		raw    uint32
		pc     uint64
		target uint64
		cond   bool
		ret    bool
	}{
		{name: "RET", raw: 0xD65F03C0, pc: 0x1000, ret: true},
		{name: "B forward", raw: 0x14000000 | 0x40, pc: 0x1000, target: 0x1100},
		{name: "B backward", raw: 0x14000000 | (0x03FFFFFF - 3), pc: 0x1000, target: 0x0FF0},
		{name: "B.EQ", raw: 0x54000000 | (8 << 5), pc: 0x2000, target: 0x2020, cond: true},
		{name: "CBZ X0", raw: 0xB4000000 | (0x10 << 5), pc: 0x3000, target: 0x3040, cond: true},
		{name: "CBNZ W1", raw: 0x35000000 | (2 << 5) | 1, pc: 0x3000, target: 0x3008, cond: true},
		{name: "TBZ", raw: 0x36000000 | (4 << 5), pc: 0x4000, target: 0x4010, cond: true},
	}
	for _, tc := range tests {
		bi := DecodeBranch(tc.raw, tc.pc)
		if bi == nil {
			t.Fatalf("%s: not decoded", tc.name)
		}
		if bi.IsRet != tc.ret {
			t.Errorf("%s: IsRet = %v, want %v", tc.name, bi.IsRet, tc.ret)
		}
		if bi.Target != tc.target {
			t.Errorf("%s: target = 0x%x, want 0x%x", tc.name, bi.Target, tc.target)
		}
		if bi.Cond != tc.cond {
			t.Errorf("%s: cond = %v, want %v", tc.name, bi.Cond, tc.cond)
		}
	}
}

func TestDecodeBranch_NotBranch(t *testing.T) {
	// ADD X0, X1, X2 = 0x8B020020
	if bi := DecodeBranch(0x8B020020, 0x1000); bi != nil {
		t.Error("ADD should not be a branch")
	}
	// BL is a call, not a branch.
	if bi := DecodeBranch(0x94000000|0x100, 0x1000); bi != nil {
		t.Error("BL should not be detected as branch")
	}
}

func TestSignExtend(t *testing.T) {
	tests := []struct {
		val  uint32
		bits int
		want int32
	}{
		{0x04, 19, 4},
		{0x7FFFF, 19, -1},
		{0x3FFF, 14, -1},
		{0x2000, 14, -8192},
	}
	for _, tc := range tests {
		got := signExtend(tc.val, tc.bits)
		if got != tc.want {
			t.Errorf("signExtend(0x%x, %d) = %d, want %d", tc.val, tc.bits, got, tc.want)
		}
	}
}
