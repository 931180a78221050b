package analysis

import "fmt"

// LabelTable enforces the analyser-wide invariant that label names are
// unique: two distinct LabelInfo values never share a Name. It is a
// process-wide registry in the sense that one Analyser owns exactly one
// table for its whole lifetime. The table is never reset; ImportJSON
// adds the imported labels to whatever it already holds.
type LabelTable struct {
	byName map[string]int // name -> use count, always 1 for live names
	byAddr map[uint16]*LabelInfo
}

func newLabelTable() *LabelTable {
	return &LabelTable{
		byName: make(map[string]int),
		byAddr: make(map[uint16]*LabelInfo),
	}
}

// At returns the label at addr, if any.
func (t *LabelTable) At(addr uint16) (*LabelInfo, bool) {
	l, ok := t.byAddr[addr]
	return l, ok
}

// uniquify appends a numeric suffix to name until it no longer collides
// with a live label name.
func (t *LabelTable) uniquify(name string) string {
	if t.byName[name] == 0 {
		return name
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d", name, i)
		if t.byName[candidate] == 0 {
			return candidate
		}
	}
}

// Add registers a new label at addr with the given preferred name,
// uniquifying on collision, and indexes it by address. It does not
// check whether addr already has a label -- callers (ensureLabel,
// AddLabel command) do that.
func (t *LabelTable) Add(addr uint16, name string, kind LabelKind) *LabelInfo {
	name = t.uniquify(name)
	l := newLabelInfo(addr, name, kind)
	t.byName[name] = 1
	t.byAddr[addr] = l
	return l
}

// Rename changes a label's name in place, uniquifying the requested
// name if it collides with another live label. Returns the name
// actually applied.
func (t *LabelTable) Rename(l *LabelInfo, newName string) string {
	if newName == l.Name {
		return l.Name
	}
	newName = t.uniquify(newName)
	delete(t.byName, l.Name)
	t.byName[newName] = 1
	l.Name = newName
	return newName
}

// Remove deletes a label from both indexes. CodeInfo entries whose
// JumpAddr or PointerAddr name the label's address are left as they
// are; neither Remove nor ReAnalyse sweeps them.
func (t *LabelTable) Remove(l *LabelInfo) {
	delete(t.byName, l.Name)
	delete(t.byAddr, l.Addr)
}

// synthesizedName builds the "function_HHHH" / "label_HHHH" /
// "data_HHHH" placeholder names ensureLabel assigns to freshly
// discovered targets.
func synthesizedName(addr uint16, kind LabelKind) string {
	switch kind {
	case LabelFunction:
		return fmt.Sprintf("function_%04X", addr)
	case LabelData:
		return fmt.Sprintf("data_%04X", addr)
	default:
		return fmt.Sprintf("label_%04X", addr)
	}
}
