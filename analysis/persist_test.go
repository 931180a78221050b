package analysis

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPageSerialiseRoundtrip is scenario S6: a page with one label, one
// code entry, and one Word data entry reads back equivalent, modulo
// reference multiplicity collapsing to 1.
func TestPageSerialiseRoundtrip(t *testing.T) {
	p := NewPage(0, 0x4000)
	p.SetLabel(0x4007, &LabelInfo{
		Addr: 0x4007, Name: "foo", Kind: LabelCode,
		References: map[AddressRef]int{{Addr: 0x1000}: 3},
	})
	p.SetCode(0x4000, &CodeInfo{
		Addr: 0x4000, Text: "RST $00", ByteSize: 1,
		JumpAddr: 0x0000, HasJump: true,
	})
	d := p.Data(0x4009)
	d.Type = DataWord
	d.ByteSize = 2

	var buf bytes.Buffer
	require.NoError(t, WritePage(&buf, p))

	back, err := ReadPage(&buf)
	require.NoError(t, err)

	assert.Equal(t, p.BaseAddr, back.BaseAddr)

	l := back.Label(0x4007)
	require.NotNil(t, l)
	assert.Equal(t, "foo", l.Name)
	assert.Equal(t, 1, l.References[AddressRef{Addr: 0x1000}]) // collapsed multiplicity

	c := back.Code(0x4000)
	require.NotNil(t, c)
	assert.Equal(t, "", c.Text) // the CODE section carries no text; it is re-derived by decoding
	assert.Equal(t, 1, c.ByteSize)
	assert.True(t, c.HasJump, "a zero-valued jump target (RST $00) must still round-trip as a jump")
	assert.Equal(t, uint16(0x0000), c.JumpAddr)
	assert.False(t, c.HasPointer)

	bd := back.Data(0x4009)
	assert.Equal(t, DataWord, bd.Type)
	assert.Equal(t, 2, bd.ByteSize)
}

func TestReadPageRejectsBadMagic(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 0}) // wrong magic
	_, err := ReadPage(&buf)
	assert.Error(t, err)
}

func TestReadPageRejectsBadVersion(t *testing.T) {
	p := NewPage(0, 0)
	var buf bytes.Buffer
	require.NoError(t, WritePage(&buf, p))
	raw := buf.Bytes()
	raw[4] = 99 // corrupt version field (little-endian, low byte)
	_, err := ReadPage(bytes.NewReader(raw))
	assert.Error(t, err)
}

func TestWritePageEmptyPageRoundtrips(t *testing.T) {
	p := NewPage(0, 0x8000)
	var buf bytes.Buffer
	require.NoError(t, WritePage(&buf, p))
	back, err := ReadPage(&buf)
	require.NoError(t, err)
	assert.Equal(t, p.BaseAddr, back.BaseAddr)
	assert.Nil(t, back.Code(0x8000))
	assert.Nil(t, back.Label(0x8000))
}
