package analysis

import (
	"encoding/json"

	"retroscan/cpu"
)

// jsonExport is the on-disk shape of an analyser's decorations: a
// per-page dictionary of non-default entries plus the top-level
// records that aren't page-scoped.
type jsonExport struct {
	Pages         []jsonPage         `json:"Pages,omitempty"`
	Watches       []jsonWatch        `json:"Watches,omitempty"`
	CharacterSets []jsonCharacterSet `json:"CharacterSets,omitempty"`
	CharacterMaps []jsonCharacterMap `json:"CharacterMaps,omitempty"`
}

type jsonPage struct {
	PageID        int             `json:"PageId"`
	CommentBlocks []jsonComment   `json:"CommentBlocks,omitempty"`
	LabelInfo     []jsonLabel     `json:"LabelInfo,omitempty"`
	CodeInfo      []jsonCode      `json:"CodeInfo,omitempty"`
	DataInfo      []jsonData      `json:"DataInfo,omitempty"`
}

type jsonComment struct {
	Address uint16 `json:"Address"`
	Comment string `json:"Comment"`
}

type jsonLabel struct {
	Address    uint16   `json:"Address"`
	Name       string   `json:"Name"`
	Kind       string   `json:"Kind"`
	Global     bool     `json:"Global"`
	ByteSize   uint16   `json:"ByteSize,omitempty"`
	References []uint16 `json:"References,omitempty"`
}

type jsonCode struct {
	Address       uint16 `json:"Address"`
	Text          string `json:"Text"`
	ByteSize      int    `json:"ByteSize"`
	JumpAddr      uint16 `json:"JumpAddr,omitempty"`
	HasJump       bool   `json:"HasJump"`
	PointerAddr   uint16 `json:"PointerAddr,omitempty"`
	HasPointer    bool   `json:"HasPointer"`
	OperandKind   int    `json:"OperandKind"`
	Flags         uint32 `json:"Flags,omitempty"`
	SelfModifying bool   `json:"SelfModifying,omitempty"`
	Disabled      bool   `json:"Disabled,omitempty"`
	Comment       string `json:"Comment,omitempty"`
}

type jsonData struct {
	Address uint16   `json:"Address"`
	Type    string   `json:"Type"`
	Size    int      `json:"ByteSize"`
	Reads   []uint16 `json:"Reads,omitempty"`
	Writes  []uint16 `json:"Writes,omitempty"`
	Comment string   `json:"Comment,omitempty"`
}

type jsonWatch struct {
	Address uint16 `json:"Address"`
	Label   string `json:"Label"`
}

type jsonCharacterSet struct {
	Address uint16 `json:"Address"`
	Width   int    `json:"Width"`
	Height  int    `json:"Height"`
}

type jsonCharacterMap struct {
	Address uint16 `json:"Address"`
	Width   int    `json:"Width"`
	Height  int    `json:"Height"`
	Format  string `json:"Format,omitempty"`
}

// ExportJSON serialises every non-default decoration on the Used pages
// of every registered bank (mapped or not), plus watches and character
// set/map records, as the
// documented JSON shape.
func (a *Analyser) ExportJSON() ([]byte, error) {
	out := jsonExport{}

	seen := make(map[*Page]bool)
	for _, b := range a.banks {
		for _, p := range b.Pages {
			if seen[p] || !p.Used {
				continue
			}
			seen[p] = true
			if jp, ok := exportPage(p); ok {
				out.Pages = append(out.Pages, jp)
			}
		}
	}

	for _, w := range a.Watches {
		out.Watches = append(out.Watches, jsonWatch{Address: w.Addr, Label: w.Label})
	}
	for _, cs := range a.CharacterSets {
		out.CharacterSets = append(out.CharacterSets, jsonCharacterSet{Address: cs.Address, Width: cs.Width, Height: cs.Height})
	}
	for _, cm := range a.CharacterMaps {
		out.CharacterMaps = append(out.CharacterMaps, jsonCharacterMap{Address: cm.Address, Width: cm.Width, Height: cm.Height, Format: cm.Format})
	}

	return json.MarshalIndent(out, "", "  ")
}

func exportPage(p *Page) (jsonPage, bool) {
	jp := jsonPage{PageID: p.ID}
	any := false

	for off := 0; off < PageSize; off++ {
		addr := p.BaseAddr + uint16(off)

		if l := p.Label(addr); l != nil {
			jp.LabelInfo = append(jp.LabelInfo, jsonLabel{
				Address: addr, Name: l.Name, Kind: l.Kind.String(), Global: l.Global,
				ByteSize: l.ByteSize, References: sortedRefAddrs(l.References),
			})
			any = true
		}
		if c := p.Comment(addr); c != nil {
			jp.CommentBlocks = append(jp.CommentBlocks, jsonComment{Address: addr, Comment: c.Comment})
			any = true
		}
		if c := p.Code(addr); c != nil {
			jp.CodeInfo = append(jp.CodeInfo, jsonCode{
				Address: addr, Text: c.Text, ByteSize: c.ByteSize,
				JumpAddr: c.JumpAddr, HasJump: c.HasJump,
				PointerAddr: c.PointerAddr, HasPointer: c.HasPointer,
				OperandKind: int(c.OperandKind), Flags: c.Flags,
				SelfModifying: c.SelfModifying, Disabled: c.Disabled, Comment: c.Comment,
			})
			any = true
		}
		d := p.Data(addr)
		if !d.IsDefault() {
			jp.DataInfo = append(jp.DataInfo, jsonData{
				Address: addr, Type: d.Type.String(), Size: d.ByteSize,
				Reads: sortedRefAddrs(d.Reads), Writes: sortedRefAddrs(d.Writes), Comment: d.Comment,
			})
			any = true
		}
	}

	return jp, any
}

// ImportJSON reconstructs decorations from an export produced by
// ExportJSON, allocating pages (via ensurePage) as needed, and
// re-derives InstructionOperand data entries for the byte_size-1 bytes
// following each code primary.
func (a *Analyser) ImportJSON(data []byte) error {
	var in jsonExport
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	for _, jp := range in.Pages {
		for _, jl := range jp.LabelInfo {
			l := &LabelInfo{
				Addr: jl.Address, Name: jl.Name, Kind: labelKindFromString(jl.Kind),
				Global: jl.Global, ByteSize: jl.ByteSize, References: make(map[AddressRef]int),
			}
			for _, r := range jl.References {
				l.References[AddressRef{Addr: r}] = 1
			}
			a.labels.byName[l.Name] = 1
			a.labels.byAddr[l.Addr] = l
			a.ensurePage(jl.Address).SetLabel(jl.Address, l)
		}
		for _, jc := range jp.CommentBlocks {
			a.ensurePage(jc.Address).SetComment(jc.Address, &CommentBlock{Addr: jc.Address, Comment: jc.Comment})
		}
		for _, jc := range jp.CodeInfo {
			c := &CodeInfo{
				Addr: jc.Address, Text: jc.Text, ByteSize: jc.ByteSize,
				JumpAddr: jc.JumpAddr, HasJump: jc.HasJump,
				PointerAddr: jc.PointerAddr, HasPointer: jc.HasPointer,
				OperandKind: cpu.OperandKind(jc.OperandKind), Flags: jc.Flags,
				SelfModifying: jc.SelfModifying, Disabled: jc.Disabled, Comment: jc.Comment,
			}
			page := a.ensurePage(jc.Address)
			page.SetCode(jc.Address, c)
			for i := 1; i < c.ByteSize; i++ {
				addr := c.Addr + uint16(i)
				d := a.dataAt(addr)
				d.Type = DataInstructionOperand
				d.ByteSize = 1
			}
		}
		for _, jd := range jp.DataInfo {
			d := a.dataAt(jd.Address)
			d.Type = dataTypeFromString(jd.Type)
			d.ByteSize = jd.Size
			d.Comment = jd.Comment
			d.Reads = make(map[AddressRef]int)
			for _, r := range jd.Reads {
				d.Reads[AddressRef{Addr: r}] = 1
			}
			d.Writes = make(map[AddressRef]int)
			for _, w := range jd.Writes {
				d.Writes[AddressRef{Addr: w}] = 1
			}
		}
	}

	for _, w := range in.Watches {
		a.Watches = append(a.Watches, Watch{Addr: w.Address, Label: w.Label})
	}
	for _, cs := range in.CharacterSets {
		a.CharacterSets = append(a.CharacterSets, CharacterSet{Address: cs.Address, Width: cs.Width, Height: cs.Height})
	}
	for _, cm := range in.CharacterMaps {
		a.CharacterMaps = append(a.CharacterMaps, CharacterMap{Address: cm.Address, Width: cm.Width, Height: cm.Height, Format: cm.Format})
	}

	return nil
}

func labelKindFromString(s string) LabelKind {
	switch s {
	case "Function":
		return LabelFunction
	case "Data":
		return LabelData
	default:
		return LabelCode
	}
}

func dataTypeFromString(s string) DataType {
	switch s {
	case "Word":
		return DataWord
	case "Text":
		return DataText
	case "Bitmap":
		return DataBitmap
	case "CharacterMap":
		return DataCharacterMap
	case "Graphics":
		return DataGraphics
	case "Blob":
		return DataBlob
	case "InstructionOperand":
		return DataInstructionOperand
	default:
		return DataByte
	}
}
