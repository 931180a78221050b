package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportImportJSONRoundtrip(t *testing.T) {
	host := newFakeHost()
	host.set(0x8000, 0xCD, 0x34, 0x12) // CALL 0x1234
	a := NewAnalyser(host)
	a.AnalyseFromPC(0x8000)
	require.NoError(t, a.Commands().Do(a, &SetCommentCmd{Addr: 0x8000, Text: "entry"}))
	a.Watches = append(a.Watches, Watch{Addr: 0x9000, Label: "counter"})

	blob, err := a.ExportJSON()
	require.NoError(t, err)
	require.NotEmpty(t, blob)

	host2 := newFakeHost()
	b := NewAnalyser(host2)
	require.NoError(t, b.ImportJSON(blob))

	c := b.codeAt(0x8000)
	require.NotNil(t, c)
	assert.Equal(t, 3, c.ByteSize)
	assert.Equal(t, uint16(0x1234), c.JumpAddr)

	l, ok := b.labels.At(0x1234)
	require.True(t, ok)
	assert.Equal(t, "function_1234", l.Name)
	assert.Equal(t, LabelFunction, l.Kind)

	require.Len(t, b.Watches, 1)
	assert.Equal(t, "counter", b.Watches[0].Label)

	page := b.ensurePage(0x8000)
	require.NotNil(t, page.Comment(0x8000))
	assert.Equal(t, "entry", page.Comment(0x8000).Comment)
}

func TestExportImportJSONRoundtripsZeroValuedJumpTarget(t *testing.T) {
	host := newFakeHost()
	a := NewAnalyser(host)
	page := a.ensurePage(0x8000)
	page.SetCode(0x8000, &CodeInfo{
		Addr: 0x8000, Text: "RST $00", ByteSize: 1,
		JumpAddr: 0x0000, HasJump: true,
	})

	blob, err := a.ExportJSON()
	require.NoError(t, err)

	host2 := newFakeHost()
	b := NewAnalyser(host2)
	require.NoError(t, b.ImportJSON(blob))

	back := b.codeAt(0x8000)
	require.NotNil(t, back)
	assert.True(t, back.HasJump, "RST $00's zero-valued jump target must not be mistaken for no jump")
	assert.Equal(t, uint16(0x0000), back.JumpAddr)
}

func TestImportJSONRederivesOperandTailData(t *testing.T) {
	host := newFakeHost()
	a := NewAnalyser(host)
	blob := []byte(`{
		"Pages": [{
			"PageId": 0,
			"CodeInfo": [{"Address": 32768, "Text": "CALL $1234", "ByteSize": 3, "JumpAddr": 4660}]
		}]
	}`)
	require.NoError(t, a.ImportJSON(blob))

	d1 := a.dataAt(0x8001)
	d2 := a.dataAt(0x8002)
	assert.Equal(t, DataInstructionOperand, d1.Type)
	assert.Equal(t, DataInstructionOperand, d2.Type)
}

func TestExportJSONSkipsDefaultData(t *testing.T) {
	host := newFakeHost()
	a := NewAnalyser(host)
	_ = a.dataAt(0x1000) // touch without changing from default

	blob, err := a.ExportJSON()
	require.NoError(t, err)
	assert.NotContains(t, string(blob), `"Address": 4096`)
}
