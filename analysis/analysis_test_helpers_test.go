package analysis

import "retroscan/cpu"

// fakeHost is a flat 64KB byte source used as the test double for
// cpu.ByteSource across the analysis package's tests.
type fakeHost struct {
	mem [65536]byte
	pc  uint16
}

func newFakeHost(bytes ...byte) *fakeHost {
	h := &fakeHost{}
	copy(h.mem[:], bytes)
	return h
}

func (h *fakeHost) set(addr uint16, bytes ...byte) {
	copy(h.mem[addr:], bytes)
}

func (h *fakeHost) ReadByte(addr uint16) byte   { return h.mem[addr] }
func (h *fakeHost) ReadWord(addr uint16) uint16 { return uint16(h.mem[addr]) | uint16(h.mem[addr+1])<<8 }
func (h *fakeHost) WriteByte(addr uint16, v byte) { h.mem[addr] = v }
func (h *fakeHost) CurrentPC() uint16             { return h.pc }
func (h *fakeHost) Kind() cpu.Kind                { return cpu.Z80 }
