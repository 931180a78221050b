package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAnalyseFromPCCallTarget is scenario S1.
func TestAnalyseFromPCCallTarget(t *testing.T) {
	host := newFakeHost()
	host.set(0x8000, 0xCD, 0x34, 0x12) // CALL 0x1234
	a := NewAnalyser(host)

	a.AnalyseFromPC(0x8000)

	c := a.codeAt(0x8000)
	require.NotNil(t, c)
	assert.Equal(t, 3, c.ByteSize)
	assert.Equal(t, uint16(0x1234), c.JumpAddr)

	l, ok := a.labels.At(0x1234)
	require.True(t, ok)
	assert.Equal(t, "function_1234", l.Name)
	assert.Equal(t, LabelFunction, l.Kind)
	_, referenced := l.References[AddressRef{Addr: 0x8000}]
	assert.True(t, referenced)
}

// TestAnalyseFromPCLoadStoreSequence is scenario S2.
func TestAnalyseFromPCLoadStoreSequence(t *testing.T) {
	host := newFakeHost()
	host.set(0x4000, 0x21, 0x00, 0x50, 0x22, 0x10, 0x50, 0xC9)
	a := NewAnalyser(host)

	a.AnalyseFromPC(0x4000)

	c0 := a.codeAt(0x4000)
	require.NotNil(t, c0)
	assert.Equal(t, 3, c0.ByteSize)
	assert.Equal(t, uint16(0x5000), c0.PointerAddr)

	c1 := a.codeAt(0x4003)
	require.NotNil(t, c1)
	assert.Equal(t, 3, c1.ByteSize)

	c2 := a.codeAt(0x4006)
	require.NotNil(t, c2)
	assert.Equal(t, 1, c2.ByteSize)

	_, hasLabelAt4000 := a.labels.At(0x4000)
	assert.False(t, hasLabelAt4000)

	l5000, ok := a.labels.At(0x5000)
	require.True(t, ok)
	assert.Equal(t, "data_5000", l5000.Name)
	assert.Equal(t, LabelData, l5000.Kind)

	l5010, ok := a.labels.At(0x5010)
	require.True(t, ok)
	assert.Equal(t, "data_5010", l5010.Name)
	assert.Equal(t, LabelData, l5010.Kind)
	_, ref := l5010.References[AddressRef{Addr: 0x4003}]
	assert.True(t, ref)
}

// TestAnalyseFromPCSharedJumpTarget is scenario S3: two independent entry
// points that jump to the same target both register as references.
func TestAnalyseFromPCSharedJumpTarget(t *testing.T) {
	host := newFakeHost()
	host.set(0x4000, 0xC3, 0x00, 0x50) // JP $5000
	host.set(0x6000, 0xC3, 0x00, 0x50) // JP $5000
	a := NewAnalyser(host)

	a.AnalyseFromPC(0x4000)
	a.AnalyseFromPC(0x6000)

	l, ok := a.labels.At(0x5000)
	require.True(t, ok)
	assert.Equal(t, LabelCode, l.Kind) // JP, not CALL -> Code not Function
	_, ref1 := l.References[AddressRef{Addr: 0x4000}]
	_, ref2 := l.References[AddressRef{Addr: 0x6000}]
	assert.True(t, ref1)
	assert.True(t, ref2)
}

// TestAnalyseFromPCSelfLoop is scenario S4: a relative jump back to its
// own address terminates the trace and labels itself.
func TestAnalyseFromPCSelfLoop(t *testing.T) {
	host := newFakeHost()
	host.set(0x4000, 0x18, 0xFE) // JR -2
	a := NewAnalyser(host)

	a.AnalyseFromPC(0x4000)

	c := a.codeAt(0x4000)
	require.NotNil(t, c)
	assert.Equal(t, uint16(0x4000), c.JumpAddr)

	l, ok := a.labels.At(0x4000)
	require.True(t, ok)
	_, selfRef := l.References[AddressRef{Addr: 0x4000}]
	assert.True(t, selfRef)
}

// TestAnalyseFromPCIdempotent is the universal "analyser idempotence"
// property: analysing the same seed twice leaves the state equal to one
// application.
func TestAnalyseFromPCIdempotent(t *testing.T) {
	host := newFakeHost()
	host.set(0x4000, 0x21, 0x00, 0x50, 0x22, 0x10, 0x50, 0xC9)
	a := NewAnalyser(host)

	a.AnalyseFromPC(0x4000)
	firstLabelCount := len(a.labels.byAddr)

	a.AnalyseFromPC(0x4000)
	secondLabelCount := len(a.labels.byAddr)

	assert.Equal(t, firstLabelCount, secondLabelCount)
}

func TestRegisterDataWriteFlagsSelfModifying(t *testing.T) {
	host := newFakeHost()
	host.set(0x4000, 0x00) // NOP, just needs a CodeInfo present
	a := NewAnalyser(host)
	a.AnalyseFromPC(0x4000)

	a.RegisterDataWrite(0x9000, 0x4000, 0xCD)

	c := a.codeAt(0x4000)
	require.NotNil(t, c)
	assert.True(t, c.SelfModifying)
}

func TestRegisterDataReadRecordsReference(t *testing.T) {
	host := newFakeHost()
	a := NewAnalyser(host)

	a.RegisterDataRead(0x1000, 0x2000)

	d := a.dataAt(0x2000)
	_, ok := d.Reads[AddressRef{Addr: 0x1000}]
	assert.True(t, ok)
}

func TestReAnalyseFillsDefaultData(t *testing.T) {
	host := newFakeHost()
	a := NewAnalyser(host)

	a.ReAnalyse(0x0000, 0x0004)

	for addr := uint16(0); addr < 4; addr++ {
		d := a.dataAt(addr)
		assert.Equal(t, DataByte, d.Type)
	}
}
