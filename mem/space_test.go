package mem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpaceReadWrite(t *testing.T) {
	s := NewSpace()
	assert.Equal(t, byte(0), s.Read(0x1234))

	old := s.Write(0x1234, 0x42)
	assert.Equal(t, byte(0), old)
	assert.Equal(t, byte(0x42), s.Read(0x1234))

	old = s.Write(0x1234, 0x43)
	assert.Equal(t, byte(0x42), old)
}

func TestSpaceReadWord(t *testing.T) {
	s := NewSpace()
	s.Write(0x8000, 0x34)
	s.Write(0x8001, 0x12)
	assert.Equal(t, uint16(0x1234), s.ReadWord(0x8000))
}

func TestSpaceLoad(t *testing.T) {
	s := NewSpace()
	s.Load([]byte{0xCD, 0x34, 0x12}, 0x8000)
	assert.Equal(t, byte(0xCD), s.Read(0x8000))
	assert.Equal(t, byte(0x34), s.Read(0x8001))
	assert.Equal(t, byte(0x12), s.Read(0x8002))
}

func TestSpaceLoadTruncatesAtEnd(t *testing.T) {
	s := NewSpace()
	assert.NotPanics(t, func() {
		s.Load([]byte{1, 2, 3, 4}, 0xFFFE)
	})
	assert.Equal(t, byte(1), s.Read(0xFFFE))
	assert.Equal(t, byte(2), s.Read(0xFFFF))
}
