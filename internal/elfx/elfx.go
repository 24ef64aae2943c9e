// Package elfx provides ELF loading helpers for ARM64 binaries.
package elfx

import (
	"debug/elf"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
)

var (
	ErrNotELF    = errors.New("elfx: not an ELF file")
	ErrNotARM64  = errors.New("elfx: not ARM64 (EM_AARCH64)")
	ErrNot64Bit  = errors.New("elfx: not 64-bit ELF")
	ErrNoSegment = errors.New("elfx: no PT_LOAD segment covers address")
	ErrNoSymbols = errors.New("elfx: no function symbols")
)

// File wraps a debug/elf.File with helpers for code-structure extraction.
type File struct {
	ELF  *elf.File
	raw  *os.File
	size int64
}

// FuncSymbol is a sized function symbol.
type FuncSymbol struct {
	Name string
	Addr uint64
	Size uint64
}

// Open opens an ELF file and validates it is 64-bit ARM64.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("elfx: open: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("elfx: stat: %w", err)
	}

	ef, err := elf.NewFile(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrNotELF, err)
	}

	if ef.Class != elf.ELFCLASS64 {
		f.Close()
		return nil, ErrNot64Bit
	}
	if ef.Machine != elf.EM_AARCH64 {
		f.Close()
		return nil, ErrNotARM64
	}

	return &File{ELF: ef, raw: f, size: info.Size()}, nil
}

// Close releases resources.
func (f *File) Close() error {
	return f.raw.Close()
}

// FileSize returns the size of the underlying file.
func (f *File) FileSize() int64 { return f.size }

// Entry returns the ELF entry point.
func (f *File) Entry() uint64 { return f.ELF.Entry }

// FuncSymbols returns the sized STT_FUNC symbols from .symtab and .dynsym,
// one per address, sorted by address. The first name seen for an address wins.
func (f *File) FuncSymbols() ([]FuncSymbol, error) {
	var all []elf.Symbol
	if syms, err := f.ELF.Symbols(); err == nil {
		all = append(all, syms...)
	}
	if syms, err := f.ELF.DynamicSymbols(); err == nil {
		all = append(all, syms...)
	}

	seen := make(map[uint64]bool)
	var out []FuncSymbol
	for _, s := range all {
		if elf.ST_TYPE(s.Info) != elf.STT_FUNC || s.Value == 0 || s.Size == 0 {
			continue
		}
		if seen[s.Value] {
			continue
		}
		seen[s.Value] = true
		out = append(out, FuncSymbol{Name: s.Name, Addr: s.Value, Size: s.Size})
	}
	if len(out) == 0 {
		return nil, ErrNoSymbols
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Addr < out[j].Addr })
	return out, nil
}

// VAToFileOffset converts a virtual address to a file offset using PT_LOAD segments.
func (f *File) VAToFileOffset(va uint64) (uint64, error) {
	for _, p := range f.ELF.Progs {
		if p.Type != elf.PT_LOAD {
			continue
		}
		if va >= p.Vaddr && va < p.Vaddr+p.Filesz {
			offset := va - p.Vaddr + p.Off
			if offset >= uint64(f.size) {
				return 0, fmt.Errorf("elfx: VA 0x%x maps to offset 0x%x beyond file size 0x%x", va, offset, f.size)
			}
			return offset, nil
		}
	}
	return 0, fmt.Errorf("%w: VA 0x%x", ErrNoSegment, va)
}

// ReadBytesAtVA reads up to n bytes starting at the given virtual address.
func (f *File) ReadBytesAtVA(va uint64, n int) ([]byte, error) {
	off, err := f.VAToFileOffset(va)
	if err != nil {
		return nil, err
	}
	avail := f.size - int64(off)
	if int64(n) > avail {
		n = int(avail)
	}
	buf := make([]byte, n)
	got, err := f.raw.ReadAt(buf, int64(off))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("elfx: read at 0x%x: %w", off, err)
	}
	return buf[:got], nil
}
