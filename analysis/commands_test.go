package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSetItemDataCycle is scenario S5: SetItemData cycles a Byte item
// Byte -> Word -> Byte -> Word, and three undos restore the original
// Byte type and byte size.
func TestSetItemDataCycle(t *testing.T) {
	host := newFakeHost()
	a := NewAnalyser(host)
	stack := a.Commands()

	require.NoError(t, stack.Do(a, &SetItemDataCmd{Addr: 0x3000}))
	assert.Equal(t, DataWord, a.dataAt(0x3000).Type)

	require.NoError(t, stack.Do(a, &SetItemDataCmd{Addr: 0x3000}))
	assert.Equal(t, DataByte, a.dataAt(0x3000).Type)

	require.NoError(t, stack.Do(a, &SetItemDataCmd{Addr: 0x3000}))
	assert.Equal(t, DataWord, a.dataAt(0x3000).Type)

	require.NoError(t, stack.Undo(a))
	require.NoError(t, stack.Undo(a))
	require.NoError(t, stack.Undo(a))

	d := a.dataAt(0x3000)
	assert.Equal(t, DataByte, d.Type)
	assert.Equal(t, 1, d.ByteSize)
}

func TestUndoOnEmptyStackIsNoop(t *testing.T) {
	host := newFakeHost()
	a := NewAnalyser(host)
	assert.NoError(t, a.Commands().Undo(a))
}

func TestSetItemTextDetectsRun(t *testing.T) {
	host := newFakeHost()
	host.set(0x5000, 'H', 'I', 0x00)
	a := NewAnalyser(host)

	cmd := &SetItemTextCmd{Addr: 0x5000}
	require.NoError(t, a.Commands().Do(a, cmd))

	d := a.dataAt(0x5000)
	assert.Equal(t, DataText, d.Type)
	assert.Equal(t, 2, d.ByteSize)

	require.NoError(t, a.Commands().Undo(a))
	assert.Equal(t, DataByte, a.dataAt(0x5000).Type)
}

func TestSetItemTextZeroLengthReverts(t *testing.T) {
	host := newFakeHost()
	host.set(0x5000, 0x00)
	a := NewAnalyser(host)

	cmd := &SetItemTextCmd{Addr: 0x5000}
	require.NoError(t, a.Commands().Do(a, cmd))
	assert.Equal(t, DataByte, a.dataAt(0x5000).Type)
}

func TestSetItemCodeRunsAnalyser(t *testing.T) {
	host := newFakeHost()
	host.set(0x6000, 0xC9) // RET
	a := NewAnalyser(host)

	cmd := &SetItemCodeCmd{Addr: 0x6000}
	require.NoError(t, a.Commands().Do(a, cmd))
	require.NotNil(t, a.codeAt(0x6000))

	require.NoError(t, a.Commands().Undo(a))
	c := a.codeAt(0x6000)
	require.NotNil(t, c)
	assert.True(t, c.Disabled)
}

func TestSetItemCodeReenablesDisabled(t *testing.T) {
	host := newFakeHost()
	host.set(0x6000, 0xC9)
	a := NewAnalyser(host)
	a.AnalyseFromPC(0x6000)
	a.codeAt(0x6000).Disabled = true

	cmd := &SetItemCodeCmd{Addr: 0x6000}
	require.NoError(t, a.Commands().Do(a, cmd))
	assert.False(t, a.codeAt(0x6000).Disabled)

	require.NoError(t, a.Commands().Undo(a))
	assert.True(t, a.codeAt(0x6000).Disabled)
}

func TestAddAndRemoveLabel(t *testing.T) {
	host := newFakeHost()
	a := NewAnalyser(host)

	add := &AddLabelCmd{Addr: 0x7000, Name: "my_routine", Kind: LabelFunction}
	require.NoError(t, a.Commands().Do(a, add))

	l, ok := a.labels.At(0x7000)
	require.True(t, ok)
	assert.Equal(t, "my_routine", l.Name)

	require.NoError(t, a.Commands().Undo(a))
	_, ok = a.labels.At(0x7000)
	assert.False(t, ok)
}

func TestAddLabelCollisionUniquifies(t *testing.T) {
	host := newFakeHost()
	a := NewAnalyser(host)

	require.NoError(t, a.Commands().Do(a, &AddLabelCmd{Addr: 0x7000, Name: "loop", Kind: LabelCode}))
	require.NoError(t, a.Commands().Do(a, &AddLabelCmd{Addr: 0x7010, Name: "loop", Kind: LabelCode}))

	l, ok := a.labels.At(0x7010)
	require.True(t, ok)
	assert.NotEqual(t, "loop", l.Name)
}

func TestRenameLabel(t *testing.T) {
	host := newFakeHost()
	a := NewAnalyser(host)
	require.NoError(t, a.Commands().Do(a, &AddLabelCmd{Addr: 0x7000, Name: "old_name", Kind: LabelCode}))

	require.NoError(t, a.Commands().Do(a, &RenameCmd{Addr: 0x7000, NewName: "new_name"}))
	l, _ := a.labels.At(0x7000)
	assert.Equal(t, "new_name", l.Name)

	require.NoError(t, a.Commands().Undo(a))
	l, _ = a.labels.At(0x7000)
	assert.Equal(t, "old_name", l.Name)
}

func TestSetCommentSetAndClear(t *testing.T) {
	host := newFakeHost()
	a := NewAnalyser(host)

	require.NoError(t, a.Commands().Do(a, &SetCommentCmd{Addr: 0x8000, Text: "entry point"}))
	page := a.ensurePage(0x8000)
	require.NotNil(t, page.Comment(0x8000))
	assert.Equal(t, "entry point", page.Comment(0x8000).Comment)

	require.NoError(t, a.Commands().Undo(a))
	assert.Nil(t, page.Comment(0x8000))
}

func TestCommandStackBoundedAt256(t *testing.T) {
	host := newFakeHost()
	a := NewAnalyser(host)
	for i := 0; i < 300; i++ {
		require.NoError(t, a.Commands().Do(a, &SetItemDataCmd{Addr: uint16(i)}))
	}
	assert.Equal(t, 256, a.Commands().Len())
}
