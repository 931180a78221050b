package main

import (
	"fmt"
	"os"

	"retroscan/cpu"
	"retroscan/mem"
)

// fileHost is a cpu.ByteSource backed by a mem.Space loaded from a raw
// memory-image file on disk. It is the byte source every subcommand
// wires an analysis.Analyser to when no live emulator is attached.
type fileHost struct {
	space *mem.Space
	kind  cpu.Kind
	pc    uint16
}

// loadImage reads path into a zeroed 64 KiB space at loadAddr and
// returns a host ready to be wrapped by analysis.NewAnalyser. An image
// that does not fit between loadAddr and the top of memory is an error.
func loadImage(path string, loadAddr uint16, kind cpu.Kind) (*fileHost, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("retroscan: reading image %q: %w", path, err)
	}
	if int(loadAddr)+len(data) > mem.Capacity {
		return nil, fmt.Errorf("retroscan: image %q (%d bytes) does not fit at $%04X", path, len(data), loadAddr)
	}
	h := &fileHost{space: mem.NewSpace(), kind: kind}
	h.space.Load(data, loadAddr)
	return h, nil
}

func (h *fileHost) ReadByte(addr uint16) byte { return h.space.Read(addr) }

func (h *fileHost) ReadWord(addr uint16) uint16 { return h.space.ReadWord(addr) }

func (h *fileHost) WriteByte(addr uint16, v byte) { h.space.Write(addr, v) }

func (h *fileHost) CurrentPC() uint16 { return h.pc }

func (h *fileHost) Kind() cpu.Kind { return h.kind }

// Bytes returns the space's backing array as a slice, for handing to
// analysis.CreateBank as the bank's host memory -- the same storage the
// host reads and writes through, so bank-table lookups and direct
// analyser reads never diverge.
func (h *fileHost) Bytes() []byte { return h.space.Bytes() }
