package analysis

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

const (
	pageMagic   = uint32(0x0000C0DE)
	pageVersion = uint32(3)

	sectionEnd = uint16(0xFFFF)
)

var (
	tagLabels = [4]byte{'L', 'A', 'B', 'L'}
	tagCode   = [4]byte{'C', 'O', 'D', 'E'}
	tagData   = [4]byte{'D', 'A', 'T', 'A'}
)

// WritePage serialises p to the binary per-page format: a magic/version
// header, the page's base address, then LABL/CODE/DATA sections each
// terminated by 0xFFFF. Reference multiplicities are written but are
// cosmetic -- ReadPage always collapses them back to a single tick per
// recorded address.
func WritePage(w io.Writer, p *Page) error {
	var buf bytes.Buffer

	writeU32(&buf, pageMagic)
	writeU32(&buf, pageVersion)
	writeU16(&buf, p.BaseAddr)

	if err := writeLabelSection(&buf, p); err != nil {
		return err
	}
	if err := writeCodeSection(&buf, p); err != nil {
		return err
	}
	if err := writeDataSection(&buf, p); err != nil {
		return err
	}

	_, err := w.Write(buf.Bytes())
	return err
}

func writeLabelSection(buf *bytes.Buffer, p *Page) error {
	buf.Write(tagLabels[:])
	for off := 0; off < PageSize; off++ {
		addr := p.BaseAddr + uint16(off)
		l := p.Label(addr)
		if l == nil {
			continue
		}
		writeU16(buf, uint16(off))
		writeString(buf, "") // comment: labels carry no comment field today
		writeU16(buf, l.ByteSize)
		buf.WriteByte(byte(l.Kind))
		writeString(buf, l.Name)
		writeBool(buf, l.Global)
		refs := sortedRefAddrs(l.References)
		writeU16(buf, uint16(len(refs)))
		for _, r := range refs {
			writeU16(buf, r)
		}
	}
	writeU16(buf, sectionEnd)
	return nil
}

func writeCodeSection(buf *bytes.Buffer, p *Page) error {
	buf.Write(tagCode[:])
	for off := 0; off < PageSize; off++ {
		addr := p.BaseAddr + uint16(off)
		c := p.Code(addr)
		if c == nil {
			continue
		}
		writeU16(buf, uint16(off))
		writeString(buf, c.Comment)
		writeU16(buf, uint16(c.ByteSize))
		writeU16(buf, c.JumpAddr)
		writeBool(buf, c.HasJump)
		writeU16(buf, c.PointerAddr)
		writeBool(buf, c.HasPointer)
		writeU32(buf, c.Flags)
	}
	writeU16(buf, sectionEnd)
	return nil
}

func writeDataSection(buf *bytes.Buffer, p *Page) error {
	buf.Write(tagData[:])
	for off := 0; off < PageSize; off++ {
		addr := p.BaseAddr + uint16(off)
		d := p.Data(addr)
		if d.IsDefault() {
			continue
		}
		writeU16(buf, uint16(off))
		writeString(buf, d.Comment)
		writeU16(buf, uint16(d.ByteSize))
		buf.WriteByte(byte(d.Type))

		reads := sortedRefAddrs(d.Reads)
		writeU16(buf, uint16(len(reads)))
		for _, r := range reads {
			writeU16(buf, r)
		}
		writes := sortedRefAddrs(d.Writes)
		writeU16(buf, uint16(len(writes)))
		for _, r := range writes {
			writeU16(buf, r)
		}
	}
	writeU16(buf, sectionEnd)
	return nil
}

// ReadPage parses the binary per-page format written by WritePage. A
// magic or version mismatch is a soft failure: it returns an error and
// leaves the target page untouched, matching the "corrupt load never
// corrupts state" error-handling requirement.
func ReadPage(r io.Reader) (*Page, error) {
	var magic, version uint32
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return nil, fmt.Errorf("analysis: reading page magic: %w", err)
	}
	if magic != pageMagic {
		return nil, fmt.Errorf("analysis: bad page magic %#08x, want %#08x", magic, pageMagic)
	}
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("analysis: reading page version: %w", err)
	}
	if version != pageVersion {
		return nil, fmt.Errorf("analysis: unsupported page version %d, want %d", version, pageVersion)
	}

	var baseAddr uint16
	if err := binary.Read(r, binary.LittleEndian, &baseAddr); err != nil {
		return nil, fmt.Errorf("analysis: reading page base address: %w", err)
	}

	p := NewPage(0, baseAddr)

	if err := readLabelSection(r, p); err != nil {
		return nil, err
	}
	if err := readCodeSection(r, p); err != nil {
		return nil, err
	}
	if err := readDataSection(r, p); err != nil {
		return nil, err
	}
	return p, nil
}

func readLabelSection(r io.Reader, p *Page) error {
	var tag [4]byte
	if _, err := io.ReadFull(r, tag[:]); err != nil {
		return fmt.Errorf("analysis: reading LABL tag: %w", err)
	}
	if tag != tagLabels {
		return fmt.Errorf("analysis: expected LABL tag, got %q", tag)
	}
	for {
		off, ok, err := readOffset(r)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		_, err = readString(r)
		if err != nil {
			return err
		}
		byteSize, err := readU16(r)
		if err != nil {
			return err
		}
		kindByte, err := readByte(r)
		if err != nil {
			return err
		}
		name, err := readString(r)
		if err != nil {
			return err
		}
		global, err := readBool(r)
		if err != nil {
			return err
		}
		refCount, err := readU16(r)
		if err != nil {
			return err
		}
		l := &LabelInfo{
			Addr:       p.BaseAddr + off,
			Name:       name,
			Kind:       LabelKind(kindByte),
			Global:     global,
			ByteSize:   byteSize,
			References: make(map[AddressRef]int),
		}
		for i := uint16(0); i < refCount; i++ {
			addr, err := readU16(r)
			if err != nil {
				return err
			}
			l.References[AddressRef{Addr: addr}] = 1
		}
		p.SetLabel(l.Addr, l)
	}
}

func readCodeSection(r io.Reader, p *Page) error {
	var tag [4]byte
	if _, err := io.ReadFull(r, tag[:]); err != nil {
		return fmt.Errorf("analysis: reading CODE tag: %w", err)
	}
	if tag != tagCode {
		return fmt.Errorf("analysis: expected CODE tag, got %q", tag)
	}
	for {
		off, ok, err := readOffset(r)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		comment, err := readString(r)
		if err != nil {
			return err
		}
		byteSize, err := readU16(r)
		if err != nil {
			return err
		}
		jumpAddr, err := readU16(r)
		if err != nil {
			return err
		}
		hasJump, err := readBool(r)
		if err != nil {
			return err
		}
		pointerAddr, err := readU16(r)
		if err != nil {
			return err
		}
		hasPointer, err := readBool(r)
		if err != nil {
			return err
		}
		flags, err := readU32(r)
		if err != nil {
			return err
		}
		c := &CodeInfo{
			Addr:        p.BaseAddr + off,
			Comment:     comment,
			ByteSize:    int(byteSize),
			JumpAddr:    jumpAddr,
			HasJump:     hasJump,
			PointerAddr: pointerAddr,
			HasPointer:  hasPointer,
			Flags:       flags,
		}
		p.SetCode(c.Addr, c)
	}
}

func readDataSection(r io.Reader, p *Page) error {
	var tag [4]byte
	if _, err := io.ReadFull(r, tag[:]); err != nil {
		return fmt.Errorf("analysis: reading DATA tag: %w", err)
	}
	if tag != tagData {
		return fmt.Errorf("analysis: expected DATA tag, got %q", tag)
	}
	for {
		off, ok, err := readOffset(r)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		comment, err := readString(r)
		if err != nil {
			return err
		}
		byteSize, err := readU16(r)
		if err != nil {
			return err
		}
		typeByte, err := readByte(r)
		if err != nil {
			return err
		}
		readCount, err := readU16(r)
		if err != nil {
			return err
		}
		reads := make(map[AddressRef]int, readCount)
		for i := uint16(0); i < readCount; i++ {
			addr, err := readU16(r)
			if err != nil {
				return err
			}
			reads[AddressRef{Addr: addr}] = 1
		}
		writeCount, err := readU16(r)
		if err != nil {
			return err
		}
		writes := make(map[AddressRef]int, writeCount)
		for i := uint16(0); i < writeCount; i++ {
			addr, err := readU16(r)
			if err != nil {
				return err
			}
			writes[AddressRef{Addr: addr}] = 1
		}

		addr := p.BaseAddr + off
		*p.Data(addr) = DataInfo{
			Addr:     addr,
			Type:     DataType(typeByte),
			ByteSize: int(byteSize),
			Comment:  comment,
			Reads:    reads,
			Writes:   writes,
		}
	}
}

func sortedRefAddrs(m map[AddressRef]int) []uint16 {
	addrs := make([]uint16, 0, len(m))
	for ref := range m {
		addrs = append(addrs, ref.Addr)
	}
	for i := 1; i < len(addrs); i++ {
		for j := i; j > 0 && addrs[j-1] > addrs[j]; j-- {
			addrs[j-1], addrs[j] = addrs[j], addrs[j-1]
		}
	}
	return addrs
}

func readOffset(r io.Reader) (uint16, bool, error) {
	v, err := readU16(r)
	if err != nil {
		return 0, false, err
	}
	if v == sectionEnd {
		return 0, false, nil
	}
	return v, true, nil
}

func writeU16(buf *bytes.Buffer, v uint16) { _ = binary.Write(buf, binary.LittleEndian, v) }
func writeU32(buf *bytes.Buffer, v uint32) { _ = binary.Write(buf, binary.LittleEndian, v) }
func writeBool(buf *bytes.Buffer, v bool) {
	if v {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
}
func writeString(buf *bytes.Buffer, s string) {
	writeU16(buf, uint16(len(s)))
	buf.WriteString(s)
}

func readU16(r io.Reader) (uint16, error) {
	var v uint16
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}
func readU32(r io.Reader) (uint32, error) {
	var v uint32
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}
func readByte(r io.Reader) (byte, error) {
	var b [1]byte
	_, err := io.ReadFull(r, b[:])
	return b[0], err
}
func readBool(r io.Reader) (bool, error) {
	b, err := readByte(r)
	return b != 0, err
}
func readString(r io.Reader) (string, error) {
	n, err := readU16(r)
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
