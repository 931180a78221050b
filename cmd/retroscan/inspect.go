package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"retroscan/analysis"
	"retroscan/cpu"
)

var (
	labelStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	codeStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	dataStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	commentStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	cursorStyle     = lipgloss.NewStyle().Reverse(true)
	breakpointStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

const inspectWindow = 24

// fakeRunControl is an in-memory stand-in for a live host emulator's
// cpu.RunControl surface: there is no running machine behind the static
// item list, so breakpoints and stepping only move the stopped flag and
// frame counter around for the TUI to reflect back.
type fakeRunControl struct {
	execBreakpoints map[uint16]bool
	dataBreakpoints map[uint16]uint16
	stopped         bool
	frame           uint64
}

func newFakeRunControl() *fakeRunControl {
	return &fakeRunControl{
		execBreakpoints: make(map[uint16]bool),
		dataBreakpoints: make(map[uint16]uint16),
		stopped:         true,
	}
}

func (r *fakeRunControl) IsBreakpointed(addr uint16) bool { return r.execBreakpoints[addr] }

func (r *fakeRunControl) ToggleExecBreakpoint(addr uint16) bool {
	on := !r.execBreakpoints[addr]
	if on {
		r.execBreakpoints[addr] = true
	} else {
		delete(r.execBreakpoints, addr)
	}
	return on
}

func (r *fakeRunControl) ToggleDataBreakpoint(addr uint16, size uint16) bool {
	if _, ok := r.dataBreakpoints[addr]; ok {
		delete(r.dataBreakpoints, addr)
		return false
	}
	r.dataBreakpoints[addr] = size
	return true
}

func (r *fakeRunControl) Break()    { r.stopped = true }
func (r *fakeRunControl) Continue() { r.stopped = false }

func (r *fakeRunControl) StepOver()        { r.frame++; r.stopped = true }
func (r *fakeRunControl) StepInto()        { r.frame++; r.stopped = true }
func (r *fakeRunControl) StepFrame()       { r.frame++; r.stopped = true }
func (r *fakeRunControl) StepScreenWrite() { r.frame++; r.stopped = true }

func (r *fakeRunControl) ShouldExecThisFrame() bool { return !r.stopped }
func (r *fakeRunControl) IsStopped() bool           { return r.stopped }

var _ cpu.RunControl = (*fakeRunControl)(nil)

type inspectModel struct {
	a      *analysis.Analyser
	run    *fakeRunControl
	items  []analysis.Item
	cursor int
	offset int
	status string
}

func runInspector(a *analysis.Analyser, entry uint16) error {
	m := inspectModel{
		a:     a,
		run:   newFakeRunControl(),
		items: a.BuildItemList(0x0000, 0xFFFF),
	}
	for i, it := range m.items {
		if it.Addr >= entry {
			m.cursor = i
			break
		}
	}
	_, err := tea.NewProgram(m).Run()
	return err
}

func (m inspectModel) Init() tea.Cmd { return nil }

func (m inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "j", "down":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "g":
			m.cursor = 0
		case "G":
			m.cursor = len(m.items) - 1
		case "x":
			m.status = m.xrefSummary()
		case "b":
			addr := m.items[m.cursor].Addr
			if m.run.ToggleExecBreakpoint(addr) {
				m.status = fmt.Sprintf("breakpoint set at $%04X", addr)
			} else {
				m.status = fmt.Sprintf("breakpoint cleared at $%04X", addr)
			}
		case "c":
			m.run.Continue()
			m.status = "continuing"
		case "p":
			m.run.Break()
			m.status = "stopped"
		case "n":
			m.run.StepOver()
			m.status = fmt.Sprintf("stepped over (frame %d)", m.run.frame)
		case "i":
			m.run.StepInto()
			m.status = fmt.Sprintf("stepped into (frame %d)", m.run.frame)
		}
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+inspectWindow {
		m.offset = m.cursor - inspectWindow + 1
	}
	return m, nil
}

// xrefSummary describes the references pointing at the item under the
// cursor, for the "x" (cross-reference) key.
func (m inspectModel) xrefSummary() string {
	it := m.items[m.cursor]
	if it.Kind != analysis.ItemLabelKind {
		return "no label under cursor"
	}
	refs := it.Label.References
	if len(refs) == 0 {
		return fmt.Sprintf("%s: no references", it.Label.Name)
	}
	var froms []string
	for ref := range refs {
		froms = append(froms, fmt.Sprintf("$%04X", ref.Addr))
	}
	return fmt.Sprintf("%s referenced from %s", it.Label.Name, strings.Join(froms, ", "))
}

func (m inspectModel) renderItem(i int, it analysis.Item) string {
	marker := " "
	if it.Kind == analysis.ItemCodeKind && m.run.IsBreakpointed(it.Addr) {
		marker = breakpointStyle.Render("*")
	}

	var line string
	switch it.Kind {
	case analysis.ItemLabelKind:
		line = labelStyle.Render(it.Label.Name + ":")
	case analysis.ItemCodeKind:
		line = fmt.Sprintf("%s %s  %s", marker, fmt.Sprintf("$%04X", it.Addr), codeStyle.Render(it.Code.Text))
	case analysis.ItemDataKind:
		line = fmt.Sprintf("  %s  %s", fmt.Sprintf("$%04X", it.Addr), dataStyle.Render(fmt.Sprintf("%d byte(s)", it.Data.ByteSize)))
	case analysis.ItemCommentKind:
		line = commentStyle.Render("; " + it.Comment.Comment)
	}
	if i == m.cursor {
		return cursorStyle.Render(line)
	}
	return line
}

func (m inspectModel) View() string {
	var sb strings.Builder
	end := m.offset + inspectWindow
	if end > len(m.items) {
		end = len(m.items)
	}
	for i := m.offset; i < end; i++ {
		sb.WriteString(m.renderItem(i, m.items[i]))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	runState := "running"
	if m.run.IsStopped() {
		runState = "stopped"
	}
	fmt.Fprintf(&sb, "%s (frame %d) %s\n", runState, m.run.frame, m.status)
	sb.WriteString(commentStyle.Render("j/k move, g/G top/bottom, x xrefs, b breakpoint, c continue, p pause, n step-over, i step-into, q quit"))
	return sb.String()
}
