package analysis

import "retroscan/cpu"

// AnalyseFromPC runs the recursive static analyser starting at pc: it
// decodes instructions linearly, claiming CodeInfo spans and minting
// labels for every jump/call target and pointer reference it discovers,
// until it hits a stop instruction, wraps the address space, or lands
// on an address it has already analysed.
func (a *Analyser) AnalyseFromPC(pc uint16) {
	a.analyseFromPC(pc)
}

func (a *Analyser) analyseFromPC(pc uint16) {
	for {
		if existing := a.codeAt(pc); existing != nil && !existing.Disabled {
			return
		}

		d := cpu.Decode(a, pc, cpu.LabelSubstitutionPolicy{})
		info := &CodeInfo{
			Addr:        pc,
			Text:        d.Text,
			ByteSize:    d.ByteSize,
			JumpAddr:    d.JumpAddr,
			HasJump:     d.HasJump,
			PointerAddr: d.PointerAddr,
			HasPointer:  d.HasPointer,
			OperandKind: d.OperandKind,
		}
		a.claimCodeSpan(info)

		isStop := a.classifyStop(pc)
		isCall := a.classifyCall(pc)

		if d.HasJump {
			kind := LabelCode
			if isCall {
				kind = LabelFunction
			}
			label := a.ensureLabel(d.JumpAddr, kind)
			label.addReference(AddressRef{Addr: pc})
		}

		if d.HasPointer {
			// Every pointer-reference instruction -- indirection
			// through an immediate address as well as a plain
			// register-pair immediate load of a plausible pointer --
			// mints a Data label at its target, since a disassembly
			// reader benefits from a name at a probable data address
			// regardless of whether this particular site dereferences
			// it directly.
			label := a.ensureLabel(d.PointerAddr, LabelData)
			label.addReference(AddressRef{Addr: pc})
		}

		newPC := pc + uint16(d.ByteSize)

		if isStop || newPC < pc {
			if d.HasJump {
				a.analyseFromPC(d.JumpAddr)
			}
			return
		}

		pc = newPC
	}
}

func (a *Analyser) classifyStop(pc uint16) bool {
	if a.Kind() == cpu.M6502 {
		return cpu.StopM6502(a, pc)
	}
	return cpu.StopZ80(a, pc)
}

func (a *Analyser) classifyCall(pc uint16) bool {
	if a.Kind() == cpu.M6502 {
		return cpu.CallM6502(a, pc)
	}
	return cpu.CallZ80(a, pc)
}


// ensureLabel returns the label at addr, creating one with a
// synthesised name if none exists yet.
func (a *Analyser) ensureLabel(addr uint16, kind LabelKind) *LabelInfo {
	if l, ok := a.labels.At(addr); ok {
		return l
	}
	l := a.labels.Add(addr, synthesizedName(addr, kind), kind)
	page := a.ensurePage(addr)
	page.SetLabel(addr, l)
	return l
}

// codeAt returns the primary CodeInfo at addr, or nil.
func (a *Analyser) codeAt(addr uint16) *CodeInfo {
	p := a.writePageAt(addr)
	if p == nil {
		return nil
	}
	return p.Code(addr)
}

// dataAt returns the DataInfo at addr, allocating its owning page if
// necessary (every address always has a default DataInfo).
func (a *Analyser) dataAt(addr uint16) *DataInfo {
	return a.ensurePage(addr).Data(addr)
}

// claimCodeSpan installs info as the primary CodeInfo at its address
// and marks the following ByteSize-1 offsets as InstructionOperand data
// back-references, per the "only the primary slot owns the CodeInfo"
// invariant.
func (a *Analyser) claimCodeSpan(info *CodeInfo) {
	page := a.ensurePage(info.Addr)
	page.SetCode(info.Addr, info)

	for i := 1; i < info.ByteSize; i++ {
		addr := info.Addr + uint16(i)
		d := a.dataAt(addr)
		d.Type = DataInstructionOperand
		d.ByteSize = 1
	}

	if page.OwnerBank != nil {
		page.OwnerBank.MarkDirty()
	}
}

// RegisterCodeExecuted is the hook the host calls once per retired
// instruction. It lazily runs the static analyser from pc, which is a
// no-op if pc is already fully analysed.
func (a *Analyser) RegisterCodeExecuted(pc uint16) {
	a.analyseFromPC(pc)
}

// RegisterDataRead records a read access at addr performed by the
// instruction at pc.
func (a *Analyser) RegisterDataRead(pc, addr uint16) {
	d := a.dataAt(addr)
	d.Reads[AddressRef{Addr: pc}]++
	d.LastFrameRead = a.frameCounter
}

// RegisterDataWrite records a write access at addr performed by the
// instruction at pc, and flags self-modifying code if addr is the
// primary slot of a CodeInfo. Writes to an instruction's operand bytes
// do not set the flag.
func (a *Analyser) RegisterDataWrite(pc, addr uint16, value byte) {
	d := a.dataAt(addr)
	d.Writes[AddressRef{Addr: pc}]++
	d.LastFrameWritten = a.frameCounter
	d.LastWriter = AddressRef{Addr: pc}
	d.HasLastWriter = true

	if c := a.codeAt(addr); c != nil {
		c.SelfModifying = true
	}
}

// ReAnalyse walks [start, end), re-decoding every existing CodeInfo
// primary in place (so labels renamed since the original decode are
// reflected in the text) and filling in a default Byte DataInfo for any
// address that has neither CodeInfo nor a non-default DataInfo. A
// CodeInfo co-located with a Data-kind label is flagged self-modifying.
func (a *Analyser) ReAnalyse(start, end uint16) {
	for addr := uint32(start); addr < uint32(end) && addr < 0x10000; addr++ {
		pc := uint16(addr)
		if c := a.codeAt(pc); c != nil {
			d := cpu.Decode(a, pc, cpu.LabelSubstitutionPolicy{})
			c.Text = d.Text
			if l, ok := a.labels.At(pc); ok && l.Kind == LabelData {
				c.SelfModifying = true
			}
			continue
		}
		_ = a.dataAt(pc) // ensures the default Byte entry exists
	}
}
