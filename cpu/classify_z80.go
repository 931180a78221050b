package cpu

// The Z80 classifier functions below answer four questions about the
// instruction at pc: does it indirect through a pointer, does it load a
// plausible pointer value, does it jump/call somewhere, and does it stop
// a linear static trace. Each is total: an opcode outside the recognised
// set simply answers false/no-target, it is never an error.

// PointerIndirectionZ80 reports whether the instruction at pc reads or
// writes a 16-bit cell at an immediate absolute address, and if so
// returns that address.
func PointerIndirectionZ80(b ByteSource, pc uint16) (addr uint16, ok bool) {
	instr := b.ReadByte(pc)

	switch instr {
	case 0x22, 0x32, 0x2A, 0x3A: // LD (nnnn),x / LD x,(nnnn)
		return little16(b, pc+1), true
	case 0xED:
		switch b.ReadByte(pc + 1) {
		case 0x43, 0x4B, 0x53, 0x5B, 0x63, 0x6B, 0x73, 0x7B:
			return little16(b, pc+2), true
		}
	case 0xDD, 0xFD:
		switch b.ReadByte(pc + 1) {
		case 0x22, 0x2A: // LD (nnnn),ix/iy / LD ix/iy,(nnnn)
			return little16(b, pc+2), true
		}
	}

	return 0, false
}

// PointerRefZ80 reports whether the instruction at pc carries a
// plausible pointer value as an immediate operand: every
// PointerIndirectionZ80 instruction, plus the register-pair immediate
// loads.
func PointerRefZ80(b ByteSource, pc uint16) (addr uint16, ok bool) {
	if addr, ok = PointerIndirectionZ80(b, pc); ok {
		return addr, true
	}

	switch b.ReadByte(pc) {
	case 0x01, 0x11, 0x21: // LD x,nnnn
		return little16(b, pc+1), true
	case 0xDD, 0xFD:
		if b.ReadByte(pc+1) == 0x21 { // LD ix/iy,nnnn
			return little16(b, pc+2), true
		}
	}

	return 0, false
}

// JumpZ80 reports whether the instruction at pc is an absolute call, an
// absolute or relative jump, or an RST, and returns its target address.
func JumpZ80(b ByteSource, pc uint16) (addr uint16, ok bool) {
	instr := b.ReadByte(pc)

	switch instr {
	case 0xC3, 0xCD, // JP nnnn / CALL nnnn
		0xC2, 0xCA, 0xD2, 0xDA, 0xE2, 0xEA, 0xF2, 0xFA, // JP cc,nnnn
		0xC4, 0xCC, 0xD4, 0xDC, 0xE4, 0xEC, 0xF4, 0xFC: // CALL cc,nnnn
		return little16(b, pc+1), true

	case 0x18, 0x10, // JR d / DJNZ d
		0x20, 0x28, 0x30, 0x38: // JR cc,d
		rel := int8(b.ReadByte(pc + 1))
		return uint16(int32(pc) + 2 + int32(rel)), true

	case 0xC7:
		return 0x00, true
	case 0xCF:
		return 0x08, true
	case 0xD7:
		return 0x10, true
	case 0xDF:
		return 0x18, true
	case 0xE7:
		return 0x20, true
	case 0xEF:
		return 0x28, true
	case 0xF7:
		return 0x30, true
	case 0xFF:
		return 0x38, true
	}

	return 0, false
}

// CallZ80 reports whether the instruction at pc is a call -- an absolute
// call (conditional or not) or an RST.
func CallZ80(b ByteSource, pc uint16) bool {
	switch b.ReadByte(pc) {
	case 0xCD,
		0xDC, 0xFC, 0xD4, 0xC4, 0xF4, 0xEC, 0xE4, 0xCC,
		0xC7, 0xCF, 0xD7, 0xDF, 0xE7, 0xEF, 0xF7, 0xFF:
		return true
	}
	return false
}

// StopZ80 reports whether the instruction at pc unconditionally (or, for
// calls/RST, temporarily) redirects the PC such that a linear static
// trace must terminate there.
//
// The ED/DD/FD prefix blocks return false explicitly for anything other
// than the recognised return/JP(IX,IY) forms -- they do not fall through
// to a blanket "is a stop instruction" like the switch they were
// translated from.
func StopZ80(b ByteSource, pc uint16) bool {
	instr := b.ReadByte(pc)

	switch instr {
	case 0xCD, // CALL nnnn
		0xDC, 0xFC, 0xD4, 0xC4, 0xF4, 0xEC, 0xE4, 0xCC, // CALL cc,nnnn
		0xC7, 0xCF, 0xD7, 0xDF, 0xE7, 0xEF, 0xF7, 0xFF, // RST
		0xC9,                                   // RET
		0xC0, 0xC8, 0xD0, 0xD8, 0xE0, 0xE8, 0xF0, 0xF8, // RET cc
		0xC3, // JP nnnn
		0x18, // JR d
		0xE9: // JP (HL)
		return true

	case 0xED:
		switch b.ReadByte(pc + 1) {
		case 0x4D, 0x5D, 0x6D, 0x7D, 0x45, 0x55, 0x65, 0x75: // RETI/RETN forms
			return true
		}
		return false

	case 0xDD, 0xFD:
		switch b.ReadByte(pc + 1) {
		case 0xE9: // JP (IX)/JP (IY)
			return true
		}
		return false
	}

	return false
}

func little16(b ByteSource, addr uint16) uint16 {
	lo := uint16(b.ReadByte(addr))
	hi := uint16(b.ReadByte(addr + 1))
	return lo | hi<<8
}
