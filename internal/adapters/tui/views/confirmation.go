package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"rudiwatch/internal/adapters/tui/styles"
)

// ConfirmKeyMap defines key bindings for confirmation prompts
type ConfirmKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultConfirmKeys returns the default confirmation key bindings
var DefaultConfirmKeys = ConfirmKeyMap{
	Confirm: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("n", "esc"),
		key.WithHelp("n/esc", "cancel"),
	),
}

// Confirmation is an inline yes/no prompt about one target
type Confirmation struct {
	Target string
	Keys   ConfirmKeyMap
}

// NewConfirmation creates an inactive prompt with default keys
func NewConfirmation() Confirmation {
	return Confirmation{Keys: DefaultConfirmKeys}
}

// Active reports whether the prompt is waiting for an answer
func (c *Confirmation) Active() bool {
	return c.Target != ""
}

// Ask activates the prompt for target
func (c *Confirmation) Ask(target string) {
	c.Target = target
}

// HandleKeyMsg processes an answer. It returns handled=false for keys
// that are neither confirm nor cancel; the prompt stays active then.
func (c *Confirmation) HandleKeyMsg(msg tea.KeyMsg, onConfirm func(target string) tea.Msg) (bool, tea.Cmd) {
	target := c.Target
	switch {
	case key.Matches(msg, c.Keys.Cancel):
		c.Target = ""
		return true, nil
	case key.Matches(msg, c.Keys.Confirm):
		c.Target = ""
		return true, func() tea.Msg { return onConfirm(target) }
	}
	return false, nil
}

// RenderConfirmPrompt renders the standard confirmation prompt
func RenderConfirmPrompt(question string) string {
	var b strings.Builder
	b.WriteString(question)
	b.WriteString(" ")
	b.WriteString(styles.HelpKey.Render("y"))
	b.WriteString(styles.HelpDesc.Render(" to confirm, "))
	b.WriteString(styles.HelpKey.Render("n"))
	b.WriteString(styles.HelpDesc.Render(" to cancel"))
	return b.String()
}
