package analysis

import (
	"fmt"
	"sort"
	"strings"
)

// ItemKind tags which variant an Item actually holds.
type ItemKind int

const (
	ItemLabelKind ItemKind = iota
	ItemCodeKind
	ItemDataKind
	ItemCommentKind
)

// Item is one line of the linear, address-ordered view over a page's
// decorations: a label header, a code entry, a data entry, or a
// free-standing comment. Exactly one of the Label/Code/Data/Comment
// fields is non-nil, selected by Kind.
type Item struct {
	Addr uint16
	Kind ItemKind

	Label   *LabelInfo
	Code    *CodeInfo
	Data    *DataInfo
	Comment *CommentBlock
}

// BuildItemList walks [start, end) across every mapped write page and
// produces the merged, address-ordered sequence of items: a label
// header (if any) comes before the code/data entry at the same address,
// data entries for InstructionOperand offsets inside a multi-byte
// CodeInfo span are skipped since that span already rendered as one
// code item.
func (a *Analyser) BuildItemList(start, end uint16) []Item {
	var items []Item

	addr := uint32(start)
	for addr < uint32(end) && addr < 0x10000 {
		pc := uint16(addr)
		page := a.writePageAt(pc)
		if page == nil {
			addr++
			continue
		}

		if l := page.Label(pc); l != nil {
			items = append(items, Item{Addr: pc, Kind: ItemLabelKind, Label: l})
		}
		if c := page.Comment(pc); c != nil {
			items = append(items, Item{Addr: pc, Kind: ItemCommentKind, Comment: c})
		}

		if c := page.Code(pc); c != nil && !c.Disabled {
			items = append(items, Item{Addr: pc, Kind: ItemCodeKind, Code: c})
			addr += uint32(c.ByteSize)
			continue
		}

		d := page.Data(pc)
		if d.Type != DataInstructionOperand {
			items = append(items, Item{Addr: pc, Kind: ItemDataKind, Data: d})
		}
		step := d.ByteSize
		if step < 1 {
			step = 1
		}
		addr += uint32(step)
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Addr != items[j].Addr {
			return items[i].Addr < items[j].Addr
		}
		return items[i].Kind < items[j].Kind
	})
	return items
}

// RenderText renders items as assembler-like text: labels as "name:",
// code as a tab-indented mnemonic with trailing comment, data as
// db/dw/ascii directives carrying the bytes actually stored at the
// item's address, read back through the analyser's byte source rather
// than restated from the address already on the line.
func (a *Analyser) RenderText(items []Item) string {
	var sb strings.Builder
	for _, it := range items {
		switch it.Kind {
		case ItemLabelKind:
			sb.WriteString(it.Label.Name)
			sb.WriteString(":\n")
		case ItemCommentKind:
			fmt.Fprintf(&sb, "; %s\n", it.Comment.Comment)
		case ItemCodeKind:
			c := it.Code
			if c.Comment != "" {
				fmt.Fprintf(&sb, "\t%s\t;%s\n", c.Text, c.Comment)
			} else {
				fmt.Fprintf(&sb, "\t%s\n", c.Text)
			}
		case ItemDataKind:
			sb.WriteString(a.renderData(it.Data))
		}
	}
	return sb.String()
}

func (a *Analyser) renderData(d *DataInfo) string {
	switch d.Type {
	case DataWord:
		return fmt.Sprintf("\tdw $%04X\n", a.ReadWord(d.Addr))
	case DataText:
		return fmt.Sprintf("\tascii '%s'\n", a.textValue(d))
	default:
		return fmt.Sprintf("\tdb $%02X\n", a.ReadByte(d.Addr))
	}
}

// textValue reads d.ByteSize bytes starting at d.Addr and returns them
// as a string, for DataText items.
func (a *Analyser) textValue(d *DataInfo) string {
	n := d.ByteSize
	if n < 1 {
		n = 1
	}
	buf := make([]byte, n)
	for i := 0; i < n; i++ {
		buf[i] = a.ReadByte(d.Addr + uint16(i))
	}
	return string(buf)
}

// GenerateAddressLabelString renders addr relative to the nearest
// lower-or-equal labelled address: "[name]" for an exact match, or
// "[name + offset]" otherwise. The scan looks at most $4001 bytes below
// addr; if it finds no label there, the raw hex address is returned.
func (a *Analyser) GenerateAddressLabelString(addr uint16) string {
	var best *LabelInfo
	for off := int32(addr); off >= 0; off-- {
		if l, ok := a.labels.At(uint16(off)); ok {
			best = l
			break
		}
		if addr-uint16(off) > 0x4000 {
			// Stop scanning after a generous distance; a label this
			// far back is not a useful relative reference.
			break
		}
	}
	if best == nil {
		return fmt.Sprintf("$%04X", addr)
	}
	if best.Addr == addr {
		return fmt.Sprintf("[%s]", best.Name)
	}
	return fmt.Sprintf("[%s + %d]", best.Name, addr-best.Addr)
}
