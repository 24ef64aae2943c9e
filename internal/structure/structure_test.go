package structure

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBadWord = errors.New("bad word")

func fakeDecoder() Decoder {
	return DecoderFunc(func(raw []byte, addr uint64) (string, error) {
		if len(raw) > 0 && raw[0] == 0xff {
			return "", errBadWord
		}
		return "op", nil
	})
}

func TestHigherAddress(t *testing.T) {
	s := New(0x1000, nil)
	for _, a := range []uint64{0x1008, 0x1000, 0x1004, 0x2000} {
		s.AddInstruction(Instruction{Address: a, Text: "nop"})
	}
	s.AddInstruction(Instruction{Address: 0x1004, Text: "again"})

	next, ok := s.HigherAddress(0x1000)
	require.True(t, ok)
	assert.Equal(t, uint64(0x1004), next)

	next, ok = s.HigherAddress(0x1006)
	require.True(t, ok)
	assert.Equal(t, uint64(0x1008), next)

	next, ok = s.HigherAddress(0x1008)
	require.True(t, ok)
	assert.Equal(t, uint64(0x2000), next)

	_, ok = s.HigherAddress(0x2000)
	assert.False(t, ok)

	in, ok := s.Instruction(0x1004)
	require.True(t, ok)
	assert.Equal(t, "again", in.Text)
	assert.Len(t, s.Instructions(), 4)
}

func TestFunctionLookup(t *testing.T) {
	s := New(0x2000, nil)
	s.AddFunction(&Function{Address: 0x2000, Name: "main"})
	s.AddFunction(&Function{Address: 0x1000, Calls: []Jump{{Source: 0x1004, Target: 0x2000, Call: true}}})

	fn, ok := s.Function(0x1000)
	require.True(t, ok)
	assert.Equal(t, "sub_1000", fn.DisplayName())
	assert.False(t, fn.Leaf())
	assert.Equal(t, JumpKey{Func: 0x1000, Index: 0}, fn.JumpKey(0))

	_, ok = s.Function(0x1004)
	assert.False(t, ok)

	funcs := s.Functions()
	require.Len(t, funcs, 2)
	assert.Equal(t, uint64(0x1000), funcs[0].Address)
	assert.Equal(t, 1, s.CallCount())
	assert.Equal(t, uint64(0x2000), s.EntryPoint())
}

func TestWriteInstruction(t *testing.T) {
	s := New(0, fakeDecoder())
	var b strings.Builder

	err := s.WriteInstruction(&b, &Instruction{Address: 0x10, Raw: []byte{0x01, 0x02, 0x03, 0x04}})
	require.NoError(t, err)
	assert.Equal(t, "0x00000010  01 02 03 04  op\n", b.String())

	b.Reset()
	err = s.WriteInstruction(&b, &Instruction{Address: 0x14, Raw: []byte{0xff, 0, 0, 0}})
	assert.ErrorIs(t, err, errBadWord)
	assert.Empty(t, b.String(), "failed decode must not write")

	err = s.WriteInstruction(&b, &Instruction{Address: 0x18, Raw: []byte{0xff}, Text: "preset"})
	require.NoError(t, err)
	assert.Contains(t, b.String(), "preset")
}

func TestWriteInstructionNoDecoder(t *testing.T) {
	s := New(0, nil)
	var b strings.Builder
	assert.Error(t, s.WriteInstruction(&b, &Instruction{Address: 0x10, Raw: []byte{1, 2, 3, 4}}))
}

func TestARM64Decoder(t *testing.T) {
	text, err := ARM64.Decode([]byte{0x1f, 0x20, 0x03, 0xd5}, 0x1000)
	require.NoError(t, err)
	assert.Contains(t, strings.ToLower(text), "nop")
}

func TestParseHex(t *testing.T) {
	for in, want := range map[string]uint64{"0x1000": 0x1000, "ff": 0xff, "0XAB": 0xab} {
		got, err := ParseHex(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseHex("zz")
	assert.Error(t, err)
}
