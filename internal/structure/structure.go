// Package structure holds the disassembled code structure of a binary:
// functions, their code segments and outgoing jumps, and the address-ordered
// instruction table. A Structure is built once and is read-only afterwards.
package structure

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"callscope/internal/disasm"
)

// ErrNoInstruction is returned when an address has no stored instruction.
var ErrNoInstruction = errors.New("structure: no instruction at address")

// CodeSegment is an inclusive range of instruction addresses.
type CodeSegment struct {
	Start uint64
	End   uint64
}

// Jump is a call or branch from Source to Target. Target 0 means the
// destination is unknown.
type Jump struct {
	Source uint64
	Target uint64
	Call   bool
}

// JumpKey identifies one Jump: the owning function and the jump's position
// in its call list. Value-equal jumps at different positions have distinct keys.
type JumpKey struct {
	Func  uint64
	Index int
}

// Function is a disassembled function.
type Function struct {
	Address  uint64
	Name     string
	Comment  string
	Segments []CodeSegment
	Calls    []Jump
}

// JumpKey returns the identity of the i-th call.
func (f *Function) JumpKey(i int) JumpKey {
	return JumpKey{Func: f.Address, Index: i}
}

// Leaf reports whether the function makes no calls.
func (f *Function) Leaf() bool { return len(f.Calls) == 0 }

// DisplayName returns Name, or sub_<addr> when the function is unnamed.
func (f *Function) DisplayName() string {
	if f.Name != "" {
		return f.Name
	}
	return fmt.Sprintf("sub_%x", f.Address)
}

// Instruction is one stored instruction. Text is empty when the raw bytes
// still need decoding.
type Instruction struct {
	Address uint64
	Raw     []byte
	Text    string
}

// Decoder turns raw instruction bytes into text.
type Decoder interface {
	Decode(raw []byte, addr uint64) (string, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(raw []byte, addr uint64) (string, error)

// Decode calls fn.
func (fn DecoderFunc) Decode(raw []byte, addr uint64) (string, error) { return fn(raw, addr) }

// ARM64 decodes little-endian AArch64 words.
var ARM64 Decoder = DecoderFunc(disasm.Decode)

// Structure maps addresses to functions and instructions.
type Structure struct {
	entry   uint64
	decoder Decoder
	funcs   map[uint64]*Function
	insts   map[uint64]*Instruction
	addrs   []uint64 // sorted instruction addresses
}

// New returns an empty Structure. decoder may be nil when every
// instruction carries its text.
func New(entry uint64, decoder Decoder) *Structure {
	return &Structure{
		entry:   entry,
		decoder: decoder,
		funcs:   make(map[uint64]*Function),
		insts:   make(map[uint64]*Instruction),
	}
}

// AddFunction registers f, replacing any function at the same address.
func (s *Structure) AddFunction(f *Function) {
	s.funcs[f.Address] = f
}

// AddInstruction registers in, replacing any instruction at the same address.
func (s *Structure) AddInstruction(in Instruction) {
	if _, ok := s.insts[in.Address]; !ok {
		i := sort.Search(len(s.addrs), func(i int) bool { return s.addrs[i] >= in.Address })
		s.addrs = append(s.addrs, 0)
		copy(s.addrs[i+1:], s.addrs[i:])
		s.addrs[i] = in.Address
	}
	s.insts[in.Address] = &in
}

// EntryPoint returns the binary's entry address.
func (s *Structure) EntryPoint() uint64 { return s.entry }

// Function returns the function starting at addr.
func (s *Structure) Function(addr uint64) (*Function, bool) {
	f, ok := s.funcs[addr]
	return f, ok
}

// Instruction returns the instruction at addr.
func (s *Structure) Instruction(addr uint64) (*Instruction, bool) {
	in, ok := s.insts[addr]
	return in, ok
}

// HigherAddress returns the smallest stored instruction address strictly
// greater than addr.
func (s *Structure) HigherAddress(addr uint64) (uint64, bool) {
	i := sort.Search(len(s.addrs), func(i int) bool { return s.addrs[i] > addr })
	if i == len(s.addrs) {
		return 0, false
	}
	return s.addrs[i], true
}

// Functions returns all functions in address order.
func (s *Structure) Functions() []*Function {
	out := make([]*Function, 0, len(s.funcs))
	for _, f := range s.funcs {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

// Instructions returns all instructions in address order.
func (s *Structure) Instructions() []*Instruction {
	out := make([]*Instruction, 0, len(s.addrs))
	for _, a := range s.addrs {
		out = append(out, s.insts[a])
	}
	return out
}

// CallCount returns the total number of jumps across all functions.
func (s *Structure) CallCount() int {
	n := 0
	for _, f := range s.funcs {
		n += len(f.Calls)
	}
	return n
}

// Text returns the instruction text, decoding the raw bytes if needed.
func (s *Structure) Text(in *Instruction) (string, error) {
	if in.Text != "" {
		return in.Text, nil
	}
	if s.decoder == nil {
		return "", fmt.Errorf("structure: no decoder for instruction at 0x%x", in.Address)
	}
	return s.decoder.Decode(in.Raw, in.Address)
}

// WriteInstruction writes one listing line for in. Nothing is written when
// the instruction fails to decode.
func (s *Structure) WriteInstruction(w io.Writer, in *Instruction) error {
	text, err := s.Text(in)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, disasm.FormatLine(in.Address, in.Raw, text))
	return err
}
