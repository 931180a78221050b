package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJumpM6502Absolute(t *testing.T) {
	b := newFakeSource(M6502, 0x4C, 0x00, 0x80) // JMP $8000
	addr, ok := JumpM6502(b, 0)
	assert.True(t, ok)
	assert.Equal(t, uint16(0x8000), addr)
	assert.False(t, CallM6502(b, 0))
	assert.True(t, StopM6502(b, 0))
}

func TestJumpM6502Indirect(t *testing.T) {
	b := newFakeSource(M6502, 0x6C, 0x00, 0x02) // JMP ($0200)
	addr, ok := JumpM6502(b, 0)
	assert.True(t, ok)
	assert.Equal(t, uint16(0x0200), addr)
}

func TestJumpM6502Subroutine(t *testing.T) {
	b := newFakeSource(M6502, 0x20, 0x34, 0x12) // JSR $1234
	addr, ok := JumpM6502(b, 0)
	assert.True(t, ok)
	assert.Equal(t, uint16(0x1234), addr)
	assert.True(t, CallM6502(b, 0))
}

func TestJumpM6502BranchRelative(t *testing.T) {
	b := newFakeSource(M6502)
	b.mem[0x0100] = 0xD0 // BNE -2
	b.mem[0x0101] = 0xFE
	addr, ok := JumpM6502(b, 0x0100)
	assert.True(t, ok)
	assert.Equal(t, uint16(0x0100), addr)
}

func TestJumpM6502NonJump(t *testing.T) {
	b := newFakeSource(M6502, 0xEA) // NOP
	_, ok := JumpM6502(b, 0)
	assert.False(t, ok)
	assert.False(t, CallM6502(b, 0))
	assert.False(t, StopM6502(b, 0))
}

func TestStopM6502Forms(t *testing.T) {
	for _, op := range []byte{0x60, 0x40, 0x00} { // RTS, RTI, BRK
		b := newFakeSource(M6502, op)
		assert.True(t, StopM6502(b, 0), "opcode %#x should stop", op)
	}
}

func TestClassifierTotality6502(t *testing.T) {
	for i := 0; i < 256; i++ {
		b := newFakeSource(M6502, byte(i), 0, 0)
		assert.NotPanics(t, func() {
			JumpM6502(b, 0)
			CallM6502(b, 0)
			StopM6502(b, 0)
		})
	}
}
