package cpu

import "fmt"

// decode6502 decodes a single 6502 instruction at pc. Unlike the Z80
// decoder, the 6502 opcode space has no useful algebraic structure to
// exploit -- it is genuinely a flat 256-entry table -- so opcodes6502 is
// consulted directly.
func decode6502(b ByteSource, pc uint16, policy OperandPolicy) Decoded {
	raw := b.ReadByte(pc)
	op, known := opcodes6502[raw]
	if !known {
		return Decoded{Text: fmt.Sprintf("DB &%02X", raw), ByteSize: 1}
	}

	size := lengthOf6502(op.mode)
	d := Decoded{ByteSize: size}

	switch op.mode {
	case Implied6502:
		d.Text = op.mnemonic
	case Accumulator6502:
		d.Text = op.mnemonic + " A"
	case Immediate6502:
		imm := b.ReadByte(pc + 1)
		d.Text = fmt.Sprintf("%s #%s", op.mnemonic, policy.FormatU8(imm, OperandHex))
	case ZeroPage6502:
		addr := b.ReadByte(pc + 1)
		d.Text = fmt.Sprintf("%s %s", op.mnemonic, policy.FormatU8(addr, OperandHex))
	case ZeroPageX6502:
		addr := b.ReadByte(pc + 1)
		d.Text = fmt.Sprintf("%s %s,X", op.mnemonic, policy.FormatU8(addr, OperandHex))
	case ZeroPageY6502:
		addr := b.ReadByte(pc + 1)
		d.Text = fmt.Sprintf("%s %s,Y", op.mnemonic, policy.FormatU8(addr, OperandHex))
	case Relative6502:
		rel := int8(b.ReadByte(pc + 1))
		target := uint16(int32(pc) + 2 + int32(rel))
		d.Text = fmt.Sprintf("%s %s", op.mnemonic, policy.FormatU16(target, OperandJumpAddress))
		d.JumpAddr, d.HasJump, d.OperandKind = target, true, OperandJumpAddress
	case Absolute6502:
		addr := little16(b, pc+1)
		kind := OperandHex
		if op.mnemonic == "JMP" || op.mnemonic == "JSR" {
			kind = OperandJumpAddress
			d.JumpAddr, d.HasJump, d.OperandKind = addr, true, kind
		}
		d.Text = fmt.Sprintf("%s %s", op.mnemonic, policy.FormatU16(addr, kind))
	case AbsoluteX6502:
		addr := little16(b, pc+1)
		d.Text = fmt.Sprintf("%s %s,X", op.mnemonic, policy.FormatU16(addr, OperandHex))
	case AbsoluteY6502:
		addr := little16(b, pc+1)
		d.Text = fmt.Sprintf("%s %s,Y", op.mnemonic, policy.FormatU16(addr, OperandHex))
	case Indirect6502:
		addr := little16(b, pc+1)
		d.Text = fmt.Sprintf("%s (%s)", op.mnemonic, policy.FormatU16(addr, OperandJumpAddress))
		d.JumpAddr, d.HasJump, d.OperandKind = addr, true, OperandJumpAddress
	case IndirectX6502:
		addr := b.ReadByte(pc + 1)
		d.Text = fmt.Sprintf("%s (%s,X)", op.mnemonic, policy.FormatU8(addr, OperandHex))
	case IndirectY6502:
		addr := b.ReadByte(pc + 1)
		d.Text = fmt.Sprintf("%s (%s),Y", op.mnemonic, policy.FormatU8(addr, OperandHex))
	}

	return d
}
