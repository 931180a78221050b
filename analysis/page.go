package analysis

import "fmt"

// Page is a 1 KiB window of decoration state parallel to one slice of
// raw memory. It never holds the raw bytes itself -- those belong to
// the bank's backing storage -- only what the analyser has learned
// about them.
type Page struct {
	ID       int
	BaseAddr uint16
	Used     bool

	labels   [PageSize]*LabelInfo
	code     [PageSize]*CodeInfo
	data     [PageSize]DataInfo
	comments [PageSize]*CommentBlock
	states   [PageSize]MachineState

	OwnerBank *Bank
}

// NewPage allocates a page covering [baseAddr, baseAddr+PageSize) with
// every slot's DataInfo initialised to the default Byte entry the data
// model requires to always exist.
func NewPage(id int, baseAddr uint16) *Page {
	p := &Page{ID: id, BaseAddr: baseAddr}
	for i := range p.data {
		p.data[i] = newDefaultDataInfo(baseAddr + uint16(i))
	}
	return p
}

func (p *Page) offset(addr uint16) int {
	return int(addr-p.BaseAddr) % PageSize
}

func (p *Page) Label(addr uint16) *LabelInfo   { return p.labels[p.offset(addr)] }
func (p *Page) Code(addr uint16) *CodeInfo     { return p.code[p.offset(addr)] }
func (p *Page) Comment(addr uint16) *CommentBlock { return p.comments[p.offset(addr)] }
func (p *Page) Data(addr uint16) *DataInfo     { return &p.data[p.offset(addr)] }
func (p *Page) State(addr uint16) MachineState { return p.states[p.offset(addr)] }

func (p *Page) SetLabel(addr uint16, l *LabelInfo)     { p.labels[p.offset(addr)] = l }
func (p *Page) SetCode(addr uint16, c *CodeInfo)       { p.code[p.offset(addr)] = c }
func (p *Page) SetComment(addr uint16, c *CommentBlock) { p.comments[p.offset(addr)] = c }
func (p *Page) SetState(addr uint16, s MachineState)   { p.states[p.offset(addr)] = s }

// Reset clears every decoration in the page back to its freshly
// allocated state. Nothing in this package calls it.
func (p *Page) Reset() {
	for i := range p.labels {
		p.labels[i] = nil
		p.code[i] = nil
		p.comments[i] = nil
		p.states[i] = nil
		p.data[i] = newDefaultDataInfo(p.BaseAddr + uint16(i))
	}
}

// Bank is a named region of host memory plus the analyser decorations
// attached to it. Only mapped banks are visible to page-table reads;
// an unmapped bank keeps its pages (and their decorations) intact.
type Bank struct {
	ID                int
	Name              string
	PageCount         int
	Pages             []*Page
	PrimaryMappedPage int
	MappedPages       []int
	ReadOnly          bool
	Dirty             bool
	hostMem           []byte

	// autoBacked marks a bank ensurePage conjured purely to give
	// decorations somewhere to live over an address no real bank
	// covers. It carries no actual memory content, so byte reads/writes
	// against it are never routed here -- they fall through to the
	// analyser's host source instead, same as if the address were
	// unmapped entirely.
	autoBacked bool
}

// NewBank allocates a bank of kib kilobytes, each backed by a fresh
// Page, borrowing hostMem as its raw storage. hostMem must be at least
// kib*1024 bytes; a nil hostMem yields a bank that always reads zero
// until explicitly loaded, matching the byte-source zero-on-miss
// convention.
func NewBank(id int, name string, kib int, hostMem []byte, readOnly bool) (*Bank, error) {
	if kib <= 0 {
		return nil, fmt.Errorf("analysis: bank %q must be at least 1 KiB, got %d", name, kib)
	}
	need := kib * PageSize
	if hostMem != nil && len(hostMem) < need {
		return nil, fmt.Errorf("analysis: bank %q needs %d bytes of backing memory, got %d", name, need, len(hostMem))
	}
	b := &Bank{
		ID:        id,
		Name:      name,
		PageCount: kib,
		ReadOnly:  readOnly,
		hostMem:   hostMem,
	}
	for i := 0; i < kib; i++ {
		p := NewPage(i, 0)
		p.OwnerBank = b
		b.Pages = append(b.Pages, p)
	}
	return b, nil
}

// ReadByte reads from the bank's backing memory at a bank-relative
// offset. Banks with no backing memory read zero, per the retro-
// hardware convention for unmapped reads.
func (b *Bank) ReadByte(offset int) byte {
	if b.hostMem == nil || offset < 0 || offset >= len(b.hostMem) {
		return 0
	}
	return b.hostMem[offset]
}

// WriteByte writes to the bank's backing memory, unless the bank is
// read-only, in which case the write is silently dropped -- matching
// ROM semantics on real hardware.
func (b *Bank) WriteByte(offset int, value byte) {
	if b.ReadOnly || b.hostMem == nil || offset < 0 || offset >= len(b.hostMem) {
		return
	}
	b.hostMem[offset] = value
}

// MarkDirty flags the bank as having at least one decoration change
// since the last time a consumer cleared the flag.
func (b *Bank) MarkDirty() { b.Dirty = true }

// ClearDirty is called by a consumer (serialiser, UI) once it has
// observed and acted on the dirty state.
func (b *Bank) ClearDirty() { b.Dirty = false }
