package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJumpZ80Call(t *testing.T) {
	b := newFakeSource(Z80, 0xCD, 0x34, 0x12) // CALL 0x1234
	addr, ok := JumpZ80(b, 0)
	assert.True(t, ok)
	assert.Equal(t, uint16(0x1234), addr)
	assert.True(t, CallZ80(b, 0))
	assert.True(t, StopZ80(b, 0))
}

func TestJumpZ80Relative(t *testing.T) {
	b := newFakeSource(Z80)
	b.mem[0x4000] = 0x18 // JR -2
	b.mem[0x4001] = 0xFE
	addr, ok := JumpZ80(b, 0x4000)
	assert.True(t, ok)
	assert.Equal(t, uint16(0x4000), addr)
}

func TestJumpZ80RST(t *testing.T) {
	b := newFakeSource(Z80, 0xEF) // RST 0x28
	addr, ok := JumpZ80(b, 0)
	assert.True(t, ok)
	assert.Equal(t, uint16(0x28), addr)
	assert.True(t, CallZ80(b, 0))
}

func TestPointerIndirectionZ80(t *testing.T) {
	b := newFakeSource(Z80, 0x22, 0x10, 0x50) // LD (0x5010),HL
	addr, ok := PointerIndirectionZ80(b, 0)
	assert.True(t, ok)
	assert.Equal(t, uint16(0x5010), addr)

	refAddr, ok := PointerRefZ80(b, 0)
	assert.True(t, ok)
	assert.Equal(t, addr, refAddr)
}

func TestPointerRefZ80RegisterImmediate(t *testing.T) {
	b := newFakeSource(Z80, 0x21, 0x00, 0x50) // LD HL,0x5000
	_, ok := PointerIndirectionZ80(b, 0)
	assert.False(t, ok)

	addr, ok := PointerRefZ80(b, 0)
	assert.True(t, ok)
	assert.Equal(t, uint16(0x5000), addr)
}

func TestPointerIndirectionZ80ExtendedED(t *testing.T) {
	b := newFakeSource(Z80, 0xED, 0x43, 0x00, 0x60) // LD (0x6000),BC
	addr, ok := PointerIndirectionZ80(b, 0)
	assert.True(t, ok)
	assert.Equal(t, uint16(0x6000), addr)
}

func TestPointerIndirectionZ80Indexed(t *testing.T) {
	b := newFakeSource(Z80, 0xDD, 0x22, 0x00, 0x70) // LD (0x7000),IX
	addr, ok := PointerIndirectionZ80(b, 0)
	assert.True(t, ok)
	assert.Equal(t, uint16(0x7000), addr)
}

func TestStopZ80ReturnsAndJumps(t *testing.T) {
	cases := []byte{0xC9, 0xC0, 0xC8, 0xD0, 0xD8, 0xE0, 0xE8, 0xF0, 0xF8, 0xC3, 0x18, 0xE9}
	for _, op := range cases {
		b := newFakeSource(Z80, op, 0, 0)
		assert.True(t, StopZ80(b, 0), "opcode %#x should stop", op)
	}
}

func TestStopZ80NonStop(t *testing.T) {
	b := newFakeSource(Z80, 0x00) // NOP
	assert.False(t, StopZ80(b, 0))
}

// TestStopZ80PrefixFallthrough pins down the resolution of the Z80
// stop-instruction open question: ED/DD/FD prefixed opcodes other than
// the recognised RETN/RETI/JP(IX,IY) forms are NOT stop instructions.
func TestStopZ80PrefixFallthrough(t *testing.T) {
	b := newFakeSource(Z80, 0xED, 0xA0) // LDI -- an ED opcode, not a return
	assert.False(t, StopZ80(b, 0))

	b2 := newFakeSource(Z80, 0xDD, 0x21, 0, 0) // LD IX,nnnn -- not JP(IX)
	assert.False(t, StopZ80(b2, 0))

	b3 := newFakeSource(Z80, 0xDD, 0xE9) // JP (IX) -- is a stop
	assert.True(t, StopZ80(b3, 0))
}

func TestClassifierTotalityZ80(t *testing.T) {
	// Every first byte must produce a definite answer from every
	// classifier function, never panic.
	for i := 0; i < 256; i++ {
		b := newFakeSource(Z80, byte(i), 0, 0, 0)
		assert.NotPanics(t, func() {
			JumpZ80(b, 0)
			CallZ80(b, 0)
			StopZ80(b, 0)
			PointerRefZ80(b, 0)
			PointerIndirectionZ80(b, 0)
		})
	}
}
