package views

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

const snapshotNameLimit = 128

// SaveModel asks for the name of a new snapshot
type SaveModel struct {
	ViewState
	name *NameInput
	now  func() time.Time
}

// NewSaveModel creates a new save view model
func NewSaveModel() *SaveModel {
	return &SaveModel{
		name: NewNameInput("Snapshot name", snapshotNameLimit),
		now:  time.Now,
	}
}

// Init fills in a timestamped default name
func (m *SaveModel) Init() tea.Cmd {
	m.ClearMessage()
	m.name.SetValue(m.now().Format("2006-01-02_15-04-05") + ".yml")
	return m.name.Init()
}

// Update handles messages for the save view
func (m *SaveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, inputCancel):
			return m, switchTo(SwitchToTreeMsg{})
		case key.Matches(msg, inputSubmit):
			name := m.name.Value()
			if name == "" {
				m.SetMessage("Snapshot name is required", true)
				return m, nil
			}
			return m, func() tea.Msg { return SaveRequestedMsg{Name: name} }
		}
	}

	return m, m.name.Update(msg)
}

// View renders the save view
func (m *SaveModel) View() string {
	return NewViewBuilder().
		Title("Save logging state").
		Subtitle("Writes expansion and logging levels of every known rule").
		Line(m.name.View()).
		BlankLine().
		Message(m.Message, m.MessageErr).
		Help(inputSubmit, inputCancel).
		String()
}
