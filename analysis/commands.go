package analysis

import "fmt"

// Command is one undoable user mutation. Do and Undo must be exact
// inverses for any state the command actually applies to.
type Command interface {
	Do(a *Analyser) error
	Undo(a *Analyser) error
	CommandName() string
}

// CommandStack is the bounded undo stack: pushing beyond its capacity
// silently drops the oldest entry rather than growing unbounded, since
// the host keeps no separate redo log.
type CommandStack struct {
	cap     int
	entries []Command
}

func newCommandStack(capacity int) *CommandStack {
	return &CommandStack{cap: capacity}
}

// Do executes cmd and, if it succeeds, pushes it onto the stack.
func (s *CommandStack) Do(a *Analyser, cmd Command) error {
	if err := cmd.Do(a); err != nil {
		return err
	}
	s.entries = append(s.entries, cmd)
	if len(s.entries) > s.cap {
		s.entries = s.entries[len(s.entries)-s.cap:]
	}
	return nil
}

// Undo pops and inverts the most recently applied command. It is a
// no-op on an empty stack.
func (s *CommandStack) Undo(a *Analyser) error {
	if len(s.entries) == 0 {
		return nil
	}
	last := s.entries[len(s.entries)-1]
	s.entries = s.entries[:len(s.entries)-1]
	return last.Undo(a)
}

// Len reports how many commands are currently undoable.
func (s *CommandStack) Len() int { return len(s.entries) }

// Flush discards the entire undo history. No command in this package
// calls it.
func (s *CommandStack) Flush() { s.entries = nil }

// --- SetItemData -----------------------------------------------------

// SetItemDataCmd cycles a DataInfo's type: Byte -> Word -> Byte, or
// Text -> Byte. Any other starting type also becomes Byte.
type SetItemDataCmd struct {
	Addr uint16

	prevType     DataType
	prevByteSize int
}

func (c *SetItemDataCmd) CommandName() string { return "SetItemData" }

func (c *SetItemDataCmd) Do(a *Analyser) error {
	d := a.dataAt(c.Addr)
	c.prevType = d.Type
	c.prevByteSize = d.ByteSize

	switch d.Type {
	case DataByte:
		d.Type = DataWord
		d.ByteSize = 2
	default: // Word, Text, or anything else cycles back to Byte
		d.Type = DataByte
		d.ByteSize = 1
	}
	return nil
}

func (c *SetItemDataCmd) Undo(a *Analyser) error {
	d := a.dataAt(c.Addr)
	d.Type = c.prevType
	d.ByteSize = c.prevByteSize
	return nil
}

// --- SetItemText -------------------------------------------------------

// SetItemTextCmd runs the text-detection heuristic from Addr: it scans
// forward while bytes are in 0x01..0x7F (control codes included) and
// sets the run as a Text DataInfo. A zero-length run reverts to Byte.
type SetItemTextCmd struct {
	Addr uint16

	prevType     DataType
	prevByteSize int
	applied      bool
}

func (c *SetItemTextCmd) CommandName() string { return "SetItemText" }

func (c *SetItemTextCmd) Do(a *Analyser) error {
	d := a.dataAt(c.Addr)
	c.prevType = d.Type
	c.prevByteSize = d.ByteSize

	length := 0
	for {
		addr := c.Addr + uint16(length)
		b := a.ReadByte(addr)
		if b == 0 || b > 0x7F {
			break
		}
		length++
		if length >= 255 {
			break
		}
	}

	if length == 0 {
		d.Type = DataByte
		d.ByteSize = 1
		c.applied = false
		return nil
	}

	d.Type = DataText
	d.ByteSize = length
	c.applied = true
	return nil
}

func (c *SetItemTextCmd) Undo(a *Analyser) error {
	d := a.dataAt(c.Addr)
	d.Type = c.prevType
	d.ByteSize = c.prevByteSize
	return nil
}

// --- SetItemCode -------------------------------------------------------

// SetItemCodeCmd either re-enables a disabled CodeInfo already present
// at Addr, or runs the static analyser from Addr to create one. Because
// the analyser may cascade arbitrarily far beyond Addr, this command
// snapshots only its own directly mutated slot and is otherwise
// non-cascading-undoable: undo restores the primary slot's prior
// disabled/absent state but does not unwind discoveries the cascading
// analysis made further out, matching the source's ambiguity here.
type SetItemCodeCmd struct {
	Addr uint16

	hadCode     bool
	wasDisabled bool
}

func (c *SetItemCodeCmd) CommandName() string { return "SetItemCode" }

func (c *SetItemCodeCmd) Do(a *Analyser) error {
	if existing := a.codeAt(c.Addr); existing != nil {
		c.hadCode = true
		c.wasDisabled = existing.Disabled
		existing.Disabled = false
		return nil
	}
	c.hadCode = false
	a.AnalyseFromPC(c.Addr)
	return nil
}

func (c *SetItemCodeCmd) Undo(a *Analyser) error {
	existing := a.codeAt(c.Addr)
	if existing == nil {
		return nil
	}
	if c.hadCode {
		existing.Disabled = c.wasDisabled
		return nil
	}
	existing.Disabled = true
	return nil
}

// --- AddLabel / RemoveLabel --------------------------------------------

// AddLabelCmd creates a user label at Addr with the given name and
// kind, uniquifying on collision.
type AddLabelCmd struct {
	Addr uint16
	Name string
	Kind LabelKind

	created *LabelInfo
}

func (c *AddLabelCmd) CommandName() string { return "AddLabel" }

func (c *AddLabelCmd) Do(a *Analyser) error {
	if _, ok := a.labels.At(c.Addr); ok {
		return fmt.Errorf("analysis: label already exists at %#04x", c.Addr)
	}
	c.created = a.labels.Add(c.Addr, c.Name, c.Kind)
	a.ensurePage(c.Addr).SetLabel(c.Addr, c.created)
	return nil
}

func (c *AddLabelCmd) Undo(a *Analyser) error {
	if c.created == nil {
		return nil
	}
	a.labels.Remove(c.created)
	a.ensurePage(c.Addr).SetLabel(c.Addr, nil)
	return nil
}

// RemoveLabelCmd deletes the label at Addr, if any. Inbound references
// are left dangling, per the label-table contract.
type RemoveLabelCmd struct {
	Addr uint16

	removed *LabelInfo
}

func (c *RemoveLabelCmd) CommandName() string { return "RemoveLabel" }

func (c *RemoveLabelCmd) Do(a *Analyser) error {
	l, ok := a.labels.At(c.Addr)
	if !ok {
		return fmt.Errorf("analysis: no label at %#04x", c.Addr)
	}
	c.removed = l
	a.labels.Remove(l)
	a.ensurePage(c.Addr).SetLabel(c.Addr, nil)
	return nil
}

func (c *RemoveLabelCmd) Undo(a *Analyser) error {
	if c.removed == nil {
		return nil
	}
	a.labels.byName[c.removed.Name] = 1
	a.labels.byAddr[c.removed.Addr] = c.removed
	a.ensurePage(c.removed.Addr).SetLabel(c.removed.Addr, c.removed)
	return nil
}

// --- Rename --------------------------------------------------------

// RenameCmd renames the label at Addr, uniquifying on collision.
type RenameCmd struct {
	Addr    uint16
	NewName string

	label   *LabelInfo
	oldName string
}

func (c *RenameCmd) CommandName() string { return "Rename" }

func (c *RenameCmd) Do(a *Analyser) error {
	l, ok := a.labels.At(c.Addr)
	if !ok {
		return fmt.Errorf("analysis: no label at %#04x", c.Addr)
	}
	c.label = l
	c.oldName = l.Name
	a.labels.Rename(l, c.NewName)
	return nil
}

func (c *RenameCmd) Undo(a *Analyser) error {
	if c.label == nil {
		return nil
	}
	a.labels.Rename(c.label, c.oldName)
	return nil
}

// --- SetComment ------------------------------------------------------

// SetCommentCmd sets or clears the free-standing comment block at Addr.
type SetCommentCmd struct {
	Addr uint16
	Text string

	prevExisted bool
	prevText    string
}

func (c *SetCommentCmd) CommandName() string { return "SetComment" }

func (c *SetCommentCmd) Do(a *Analyser) error {
	page := a.ensurePage(c.Addr)
	if existing := page.Comment(c.Addr); existing != nil {
		c.prevExisted = true
		c.prevText = existing.Comment
	}
	if c.Text == "" {
		page.SetComment(c.Addr, nil)
		return nil
	}
	page.SetComment(c.Addr, &CommentBlock{Addr: c.Addr, Comment: c.Text})
	return nil
}

func (c *SetCommentCmd) Undo(a *Analyser) error {
	page := a.ensurePage(c.Addr)
	if !c.prevExisted {
		page.SetComment(c.Addr, nil)
		return nil
	}
	page.SetComment(c.Addr, &CommentBlock{Addr: c.Addr, Comment: c.prevText})
	return nil
}
