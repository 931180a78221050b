package cpu

// The 6502 classifier only answers the jump/call/stop questions --
// pointer-reference and pointer-indirection detection stay Z80-only, per
// spec: the 6502 addressing modes don't carry the same "load a pointer
// into a register pair" idiom that makes those two questions meaningful
// on Z80.

// JumpM6502 reports whether the instruction at pc is JMP (absolute or
// indirect), JSR, or a relative branch, and returns its target address.
// Indirect JMP returns the address of the pointer cell itself, not the
// value stored there -- resolving through memory at analysis time is not
// attempted.
func JumpM6502(b ByteSource, pc uint16) (addr uint16, ok bool) {
	switch b.ReadByte(pc) {
	case 0x4C, 0x6C, 0x20: // JMP abs, JMP (ind), JSR
		return little16(b, pc+1), true
	}

	switch b.ReadByte(pc) {
	case 0x10, 0x30, 0x50, 0x70, 0x90, 0xB0, 0xD0, 0xF0: // branches
		rel := int8(b.ReadByte(pc + 1))
		return uint16(int32(pc) + 2 + int32(rel)), true
	}

	return 0, false
}

// CallM6502 reports whether the instruction at pc is JSR.
func CallM6502(b ByteSource, pc uint16) bool {
	return b.ReadByte(pc) == 0x20
}

// StopM6502 reports whether the instruction at pc unconditionally
// transfers control: JMP, RTS, RTI, or BRK.
func StopM6502(b ByteSource, pc uint16) bool {
	switch b.ReadByte(pc) {
	case 0x4C, 0x6C, // JMP abs, JMP (ind)
		0x60, // RTS
		0x40, // RTI
		0x00: // BRK
		return true
	}
	return false
}
