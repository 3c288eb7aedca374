package views

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"rudiwatch/internal/adapters/tui/styles"
	"rudiwatch/internal/domain"
)

// SnapshotsKeyMap defines key bindings for the snapshot picker
type SnapshotsKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	NextPage key.Binding
	PrevPage key.Binding
	Select   key.Binding
	Back     key.Binding
}

var SnapshotsKeys = SnapshotsKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	NextPage: key.NewBinding(
		key.WithKeys("pgdown", "ctrl+d"),
		key.WithHelp("pgdn", "next page"),
	),
	PrevPage: key.NewBinding(
		key.WithKeys("pgup", "ctrl+u"),
		key.WithHelp("pgup", "prev page"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "load"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc", "q"),
		key.WithHelp("esc", "back"),
	),
}

const snapshotPageSize = 5

// SnapshotsModel lists the most recent snapshots, newest first
type SnapshotsModel struct {
	ViewState
	entries []domain.SnapshotEntry
	pager   *Paginator
	confirm Confirmation
}

// NewSnapshotsModel creates a new snapshot picker
func NewSnapshotsModel() *SnapshotsModel {
	return &SnapshotsModel{
		pager:   NewPaginator(snapshotPageSize),
		confirm: NewConfirmation(),
	}
}

// SetEntries replaces the listed snapshots
func (m *SnapshotsModel) SetEntries(entries []domain.SnapshotEntry) {
	m.entries = entries
	m.pager.Reset()
	m.pager.SetTotal(len(entries))
	m.confirm.Target = ""
	m.ClearMessage()
}

// Init initializes the picker
func (m *SnapshotsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the picker
func (m *SnapshotsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.confirm.Active() {
		_, cmd := m.confirm.HandleKeyMsg(keyMsg, func(path string) tea.Msg {
			return LoadRequestedMsg{Path: path}
		})
		return m, cmd
	}

	switch {
	case key.Matches(keyMsg, SnapshotsKeys.Back):
		return m, switchTo(SwitchToTreeMsg{})
	case key.Matches(keyMsg, SnapshotsKeys.Up):
		m.pager.CursorUp()
	case key.Matches(keyMsg, SnapshotsKeys.Down):
		m.pager.CursorDown()
	case key.Matches(keyMsg, SnapshotsKeys.NextPage):
		m.pager.NextPage()
	case key.Matches(keyMsg, SnapshotsKeys.PrevPage):
		m.pager.PrevPage()
	case key.Matches(keyMsg, SnapshotsKeys.Select):
		if len(m.entries) > 0 {
			m.confirm.Ask(m.entries[m.pager.Cursor()].Path)
		}
	}
	return m, nil
}

// View renders the picker
func (m *SnapshotsModel) View() string {
	vb := NewViewBuilder().
		Title("Load logging state").
		Subtitle("Most recently saved first")

	if len(m.entries) == 0 {
		vb.Muted("No snapshots saved yet.")
	}
	start, end := m.pager.VisibleRange()
	for i := start; i < end; i++ {
		e := m.entries[i]
		name := e.Name()
		if i == m.pager.Cursor() {
			name = styles.NodeSelected.Render(name)
		}
		vb.Line(fmt.Sprintf("  %s  %s", name, styles.MutedText.Render(e.ModTime.Format("2006-01-02 15:04"))))
	}

	if m.pager.TotalPages() > 1 {
		vb.Muted(fmt.Sprintf("  page %d/%d", m.pager.CurrentPage(), m.pager.TotalPages()))
	}

	vb.BlankLine().Message(m.Message, m.MessageErr)
	if m.confirm.Active() {
		vb.Line(RenderConfirmPrompt("Replace the current logging state?"))
	} else {
		vb.Help(SnapshotsKeys.Down, SnapshotsKeys.Select, SnapshotsKeys.Back)
	}
	return vb.String()
}
