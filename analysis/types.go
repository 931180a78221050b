// Package analysis implements the paged code-analysis engine: decoration
// storage over a 64KB address space, recursive static disassembly,
// cross-reference tracking, and an undoable command stack.
package analysis

import "retroscan/cpu"

// PageSize is the width of one page's address range, and PageCount the
// number of pages spanning a full 16-bit address space.
const (
	PageSize  = 1024
	PageCount = 65536 / PageSize
)

// AddressRef names one addressable byte, with a bank id field that is
// part of the key, not a live pointer. The analyser's own recording
// sites (static analysis and the read/write hooks) leave Bank at zero,
// so the references they record are keyed by address alone.
type AddressRef struct {
	Bank int16
	Addr uint16
}

// LabelKind distinguishes the three things a label can name.
type LabelKind int

const (
	LabelCode LabelKind = iota
	LabelFunction
	LabelData
)

func (k LabelKind) String() string {
	switch k {
	case LabelFunction:
		return "Function"
	case LabelData:
		return "Data"
	default:
		return "Code"
	}
}

// LabelInfo names an address. References is a multiset of the
// instruction addresses that jump to, call, or point at this label,
// keyed by AddressRef.
type LabelInfo struct {
	Addr       uint16
	Name       string
	Kind       LabelKind
	Global     bool
	ByteSize   uint16
	References map[AddressRef]int
}

func newLabelInfo(addr uint16, name string, kind LabelKind) *LabelInfo {
	return &LabelInfo{
		Addr:       addr,
		Name:       name,
		Kind:       kind,
		Global:     kind == LabelData,
		References: make(map[AddressRef]int),
	}
}

func (l *LabelInfo) addReference(ref AddressRef) { l.References[ref]++ }
func (l *LabelInfo) removeReference(ref AddressRef) {
	if l.References[ref] <= 1 {
		delete(l.References, ref)
		return
	}
	l.References[ref]--
}

// CodeInfo is one decoded instruction. Its span [Addr, Addr+ByteSize)
// is exclusively owned by the primary slot at Addr; the remaining
// offsets in the page hold InstructionOperand DataInfo back-references
// rather than duplicate CodeInfo entries.
type CodeInfo struct {
	Addr          uint16
	Text          string
	ByteSize      int
	JumpAddr      uint16
	HasJump       bool
	PointerAddr   uint16
	HasPointer    bool
	OperandKind   cpu.OperandKind
	Flags         uint32
	SelfModifying bool
	Disabled      bool
	Comment       string
}

// DataType is the format a DataInfo's bytes should be read/rendered as.
type DataType int

const (
	DataByte DataType = iota
	DataWord
	DataText
	DataBitmap
	DataCharacterMap
	DataGraphics
	DataBlob
	DataInstructionOperand
)

func (t DataType) String() string {
	switch t {
	case DataWord:
		return "Word"
	case DataText:
		return "Text"
	case DataBitmap:
		return "Bitmap"
	case DataCharacterMap:
		return "CharacterMap"
	case DataGraphics:
		return "Graphics"
	case DataBlob:
		return "Blob"
	case DataInstructionOperand:
		return "InstructionOperand"
	default:
		return "Byte"
	}
}

// DataInfo decorates a single address. One default Byte-typed DataInfo
// exists at every address for the lifetime of the page; commands mutate
// it in place rather than creating/destroying it.
type DataInfo struct {
	Addr             uint16
	Type             DataType
	ByteSize         int
	Reads            map[AddressRef]int
	Writes           map[AddressRef]int
	LastFrameRead    uint64
	LastFrameWritten uint64
	LastWriter       AddressRef
	HasLastWriter    bool
	CharSetAddress   uint16
	HasCharSetAddr   bool
	EmptyCharNo      byte
	HasEmptyCharNo   bool
	Comment          string
}

func newDefaultDataInfo(addr uint16) DataInfo {
	return DataInfo{
		Addr:     addr,
		Type:     DataByte,
		ByteSize: 1,
		Reads:    make(map[AddressRef]int),
		Writes:   make(map[AddressRef]int),
	}
}

// IsDefault reports whether d still holds the uninspected default Byte
// state -- the JSON exporter skips these.
func (d *DataInfo) IsDefault() bool {
	return d.Type == DataByte && d.ByteSize == 1 && d.Comment == "" &&
		len(d.Reads) == 0 && len(d.Writes) == 0
}

// CommentBlock is a free-standing comment attached to an address, kept
// separate from CodeInfo/DataInfo comments which describe one item.
type CommentBlock struct {
	Addr    uint16
	Comment string
}

// Watch is a debugger-visible address. It carries no analyser semantics.
type Watch struct {
	Addr  uint16
	Label string
}

// CharacterSet and CharacterMap are opaque records the analyser stores
// and round-trips on behalf of platform character-rendering code; the
// analyser does not interpret their contents.
type CharacterSet struct {
	Address uint16
	Width   int
	Height  int
}

type CharacterMap struct {
	Address uint16
	Width   int
	Height  int
	Format  string
}

// MachineState is an arbitrary named-register snapshot attachable to a
// page slot, used by the host to annotate "registers as seen at the
// point of last execution" without the analyser understanding what the
// names mean.
type MachineState map[string]uint16
