package analysis

import (
	"fmt"

	"retroscan/cpu"
)

// Analyser is the root of the code-analysis engine: the page tables, the
// bank registry, the label table, the command stack, and the host byte
// source it falls back to for addresses no bank currently backs.
type Analyser struct {
	Source cpu.ByteSource

	readPages  [PageCount]*Page
	writePages [PageCount]*Page

	banks     map[int]*Bank
	nextBank  int
	labels    *LabelTable
	commands  *CommandStack

	// MemoryRemapped is raised by any MapBank/UnmapBank call and is left
	// for an outside consumer (renderer, cache) to clear. The analyser
	// never reads it and keeps no decoded-text cache that it would
	// invalidate.
	MemoryRemapped bool

	Watches       []Watch
	CharacterSets []CharacterSet
	CharacterMaps []CharacterMap

	frameCounter uint64
}

// NewAnalyser builds an analyser over source with no banks mapped; all
// reads fall through to source until a bank is created and mapped.
func NewAnalyser(source cpu.ByteSource) *Analyser {
	return &Analyser{
		Source:   source,
		banks:    make(map[int]*Bank),
		labels:   newLabelTable(),
		commands: newCommandStack(256),
	}
}

// CreateBank allocates and registers a new bank; it is not mapped into
// the address space until MapBank is called.
func (a *Analyser) CreateBank(name string, kib int, hostMem []byte, readOnly bool) (*Bank, error) {
	b, err := NewBank(a.nextBank, name, kib, hostMem, readOnly)
	if err != nil {
		return nil, err
	}
	a.banks[b.ID] = b
	a.nextBank++
	return b, nil
}

// MapBank maps bank's pages into the read and write page tables
// starting at startPage, replacing whatever was previously mapped
// there; a read-only bank's write-table slots are set to nil. Mapping
// raises MemoryRemapped.
func (a *Analyser) MapBank(bankID int, startPage int) error {
	b, ok := a.banks[bankID]
	if !ok {
		return fmt.Errorf("analysis: unknown bank id %d", bankID)
	}
	if startPage < 0 || startPage+b.PageCount > PageCount {
		return fmt.Errorf("analysis: bank %q does not fit at page %d", b.Name, startPage)
	}

	b.PrimaryMappedPage = startPage
	b.MappedPages = b.MappedPages[:0]
	for i, p := range b.Pages {
		slot := startPage + i
		p.BaseAddr = uint16(slot * PageSize)
		for j := range p.data {
			p.data[j].Addr = p.BaseAddr + uint16(j)
		}
		p.Used = true
		a.readPages[slot] = p
		if !b.ReadOnly {
			a.writePages[slot] = p
		} else {
			a.writePages[slot] = nil
		}
		b.MappedPages = append(b.MappedPages, slot)
	}
	a.MemoryRemapped = true
	return nil
}

// UnmapBank clears every page table slot bank currently occupies,
// restoring no prior occupant (callers remap whatever else belongs
// there). Returns an error if bankID is unknown.
func (a *Analyser) UnmapBank(bankID int) error {
	b, ok := a.banks[bankID]
	if !ok {
		return fmt.Errorf("analysis: unknown bank id %d", bankID)
	}
	for _, slot := range b.MappedPages {
		a.readPages[slot] = nil
		a.writePages[slot] = nil
	}
	b.MappedPages = nil
	a.MemoryRemapped = true
	return nil
}

// readPageAt and writePageAt return the read or write page mapped at
// addr, or nil if no bank currently backs it.
func (a *Analyser) readPageAt(addr uint16) *Page  { return a.readPages[addr>>10] }
func (a *Analyser) writePageAt(addr uint16) *Page { return a.writePages[addr>>10] }

// ensurePage returns the write page at addr, creating and mapping a
// private single-page bank there if no write page backs it yet. The
// analyser's own decorations must always have somewhere to live even
// over addresses the host hasn't wired a writable bank to. A read page
// already mapped at that slot (a read-only bank) stays in the read
// table, so the auto-bank never shadows its bytes.
func (a *Analyser) ensurePage(addr uint16) *Page {
	if p := a.writePageAt(addr); p != nil {
		return p
	}
	slot := int(addr >> 10)
	prevRead := a.readPages[slot]
	name := fmt.Sprintf("auto_%04x", slot*PageSize)
	b, _ := a.CreateBank(name, 1, nil, false)
	b.autoBacked = true
	_ = a.MapBank(b.ID, slot)
	if prevRead != nil {
		a.readPages[slot] = prevRead
	}
	return a.writePages[slot]
}

// ReadByte satisfies cpu.ByteSource by consulting the read page table
// first: a mapped page carries no raw bytes of its own, so the lookup
// resolves to the owning bank's backing memory at the bank-relative
// offset (page index within the bank times PageSize, plus the offset
// within the page). Addresses with no bank mapped, or mapped only by an
// ensurePage auto-bank, fall back to the host source.
func (a *Analyser) ReadByte(addr uint16) byte {
	if p := a.readPageAt(addr); p != nil && p.OwnerBank != nil && !p.OwnerBank.autoBacked {
		return p.OwnerBank.ReadByte(p.ID*PageSize + p.offset(addr))
	}
	return a.Source.ReadByte(addr)
}

// ReadWord reads the little-endian word at addr via two page-routed
// ReadByte calls, so a bank mapped across the word's two bytes is
// always consulted instead of the host source.
func (a *Analyser) ReadWord(addr uint16) uint16 {
	lo := uint16(a.ReadByte(addr))
	hi := uint16(a.ReadByte(addr + 1))
	return lo | hi<<8
}

// WriteByte routes through the write page table the same way ReadByte
// routes through the read page table, so a bank mapped read-only (which
// leaves the write table slot nil) falls through to the host source
// rather than silently mutating a bank that shouldn't be writable.
func (a *Analyser) WriteByte(addr uint16, v byte) {
	if p := a.writePageAt(addr); p != nil && p.OwnerBank != nil && !p.OwnerBank.autoBacked {
		p.OwnerBank.WriteByte(p.ID*PageSize+p.offset(addr), v)
		return
	}
	a.Source.WriteByte(addr, v)
}

func (a *Analyser) CurrentPC() uint16 { return a.Source.CurrentPC() }
func (a *Analyser) Kind() cpu.Kind    { return a.Source.Kind() }

// Tick advances the analyser's frame counter, used only to timestamp
// LastFrameRead/LastFrameWritten for display decay.
func (a *Analyser) Tick() { a.frameCounter++ }

// Labels exposes the label table for read-only inspection (e.g. CLI
// listing commands); mutation goes exclusively through commands.
func (a *Analyser) Labels() *LabelTable { return a.labels }

// UsedPages returns every write-mapped page marked Used (MapBank marks
// every page it maps), in ascending base-address order, for callers that need to
// walk or serialise the whole decorated address space (e.g. the
// `pages` CLI command dumping one file per page).
func (a *Analyser) UsedPages() []*Page {
	var pages []*Page
	for _, p := range a.writePages {
		if p != nil && p.Used {
			pages = append(pages, p)
		}
	}
	return pages
}

// PageAt returns the write-mapped page covering addr, or nil.
func (a *Analyser) PageAt(addr uint16) *Page { return a.writePageAt(addr) }

// Commands exposes the undo stack.
func (a *Analyser) Commands() *CommandStack { return a.commands }
