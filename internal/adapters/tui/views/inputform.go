package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"rudiwatch/internal/adapters/tui/styles"
)

var (
	inputSubmit = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save"))
	inputCancel = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel"))
)

// NameInput is a labelled, always focused one-line text field
type NameInput struct {
	label string
	input textinput.Model
}

func NewNameInput(label string, limit int) *NameInput {
	in := textinput.New()
	in.CharLimit = limit
	in.Focus()
	return &NameInput{label: label, input: in}
}

// Value is the trimmed field content
func (n *NameInput) Value() string {
	return strings.TrimSpace(n.input.Value())
}

func (n *NameInput) SetValue(s string) {
	n.input.SetValue(s)
	n.input.CursorEnd()
}

func (n *NameInput) Init() tea.Cmd {
	n.input.Focus()
	return textinput.Blink
}

func (n *NameInput) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	n.input, cmd = n.input.Update(msg)
	return cmd
}

func (n *NameInput) View() string {
	return styles.InputLabel.Render(n.label) + "\n" + styles.InputFocused.Render(n.input.View())
}
