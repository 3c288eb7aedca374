package views

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"rudiwatch/internal/adapters/tui/styles"
	"rudiwatch/internal/domain"
)

// TreeSession is what the rule tree view needs from a session
type TreeSession interface {
	Tree() *domain.Tree
	SetExpanded(path domain.IdentityPath, expanded bool) error
	SetLevel(path domain.IdentityPath, level domain.LoggingLevel) error
	SetSubtreeLevel(path domain.IdentityPath, level domain.LoggingLevel) error
}

// RuleTreeKeyMap defines key bindings for the rule tree view
type RuleTreeKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Enter   key.Binding
	Level   key.Binding
	Yank    key.Binding
	Edit    key.Binding
	Save    key.Binding
	Load    key.Binding
	Files   key.Binding
	Rebuild key.Binding
	Help    key.Binding
	Quit    key.Binding
}

var RuleTreeKeys = RuleTreeKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Left: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("h/←", "collapse"),
	),
	Right: key.NewBinding(
		key.WithKeys("l", "right"),
		key.WithHelp("l/→", "expand"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "toggle"),
	),
	Level: key.NewBinding(
		key.WithKeys(" ", "L"),
		key.WithHelp("space", "logging"),
	),
	Yank: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "yank path"),
	),
	Edit: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "edit"),
	),
	Save: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "save"),
	),
	Load: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "load"),
	),
	Files: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "files"),
	),
	Rebuild: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "rebuild"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// RuleTreeModel shows the presentation tree of a session
type RuleTreeModel struct {
	ViewState
	session TreeSession
	project string
	shown   *domain.Tree
	flat    []domain.NodeID
	cursor  int
	offset  int

	// replaced in tests
	copyToClipboard func(string) error
}

// NewRuleTreeModel creates a new rule tree model
func NewRuleTreeModel(session TreeSession, project string) *RuleTreeModel {
	m := &RuleTreeModel{
		session:         session,
		project:         project,
		copyToClipboard: clipboard.WriteAll,
	}
	m.Refresh()
	return m
}

// Init initializes the view
func (m *RuleTreeModel) Init() tea.Cmd {
	return nil
}

// Refresh re-reads the session tree, keeping the cursor on the same
// identity path when it still exists
func (m *RuleTreeModel) Refresh() {
	var keep domain.IdentityPath
	if id, ok := m.Selected(); ok {
		keep = m.shown.Path(id)
	}

	m.shown = m.session.Tree()
	m.flat = m.shown.Flatten()
	m.cursor = 0
	if id, ok := m.shown.Find(keep); ok {
		m.moveTo(id)
	}
	m.clamp()
}

func (m *RuleTreeModel) clamp() {
	if m.cursor >= len(m.flat) {
		m.cursor = len(m.flat) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// Selected returns the node under the cursor
func (m *RuleTreeModel) Selected() (domain.NodeID, bool) {
	if m.cursor >= 0 && m.cursor < len(m.flat) {
		return m.flat[m.cursor], true
	}
	return domain.NoNode, false
}

// Update handles messages for the rule tree
func (m *RuleTreeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		m.ClearMessage()
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *RuleTreeModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, RuleTreeKeys.Quit):
		return tea.Quit
	case key.Matches(msg, RuleTreeKeys.Help):
		return switchTo(SwitchToHelpMsg{})
	case key.Matches(msg, RuleTreeKeys.Save):
		return switchTo(SwitchToSaveMsg{})
	case key.Matches(msg, RuleTreeKeys.Load):
		return switchTo(SwitchToSnapshotsMsg{})
	case key.Matches(msg, RuleTreeKeys.Files):
		return switchTo(SwitchToFilesMsg{})
	case key.Matches(msg, RuleTreeKeys.Rebuild):
		return switchTo(RebuildRequestedMsg{})
	case key.Matches(msg, RuleTreeKeys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return nil
	case key.Matches(msg, RuleTreeKeys.Down):
		if m.cursor < len(m.flat)-1 {
			m.cursor++
		}
		return nil
	}

	id, ok := m.Selected()
	if !ok {
		return nil
	}
	tree := m.shown
	node := tree.Node(id)
	path := tree.Path(id)
	hasChildren := len(tree.Children(id)) > 0

	switch {
	case key.Matches(msg, RuleTreeKeys.Left):
		if node.Expanded && hasChildren {
			m.setExpanded(path, false)
		} else if parent := tree.Parent(id); parent != domain.NoNode {
			m.moveTo(parent)
		}

	case key.Matches(msg, RuleTreeKeys.Right):
		if !node.Expanded && hasChildren {
			m.setExpanded(path, true)
		}

	case key.Matches(msg, RuleTreeKeys.Enter):
		if hasChildren {
			m.setExpanded(path, !node.Expanded)
		}

	case key.Matches(msg, RuleTreeKeys.Level):
		m.cycleLevel(tree, id)

	case key.Matches(msg, RuleTreeKeys.Yank):
		if err := m.copyToClipboard(path.String()); err != nil {
			m.SetMessage(fmt.Sprintf("Clipboard unavailable: %v", err), true)
		} else {
			m.SetMessage("Copied "+path.String(), false)
		}

	case key.Matches(msg, RuleTreeKeys.Edit):
		file, line := sourceOf(tree, id)
		if file == "" {
			m.SetMessage("No source file known for "+node.Label, true)
			return nil
		}
		return func() tea.Msg { return OpenEditorMsg{Path: file, Line: line} }
	}
	return nil
}

func (m *RuleTreeModel) setExpanded(path domain.IdentityPath, expanded bool) {
	if err := m.session.SetExpanded(path, expanded); err != nil {
		m.SetMessage(err.Error(), true)
		return
	}
	m.Refresh()
}

// cycleLevel moves a rule to its next level. On an import every rule
// below it moves to the level after the current aggregate.
func (m *RuleTreeModel) cycleLevel(tree *domain.Tree, id domain.NodeID) {
	node := tree.Node(id)
	path := tree.Path(id)

	var (
		next domain.LoggingLevel
		err  error
	)
	if node.IsRule() {
		next = node.Level.Next()
		err = m.session.SetLevel(path, next)
	} else {
		next = domain.Aggregate(tree, id).Next()
		err = m.session.SetSubtreeLevel(path, next)
	}
	if err != nil {
		m.SetMessage(err.Error(), true)
		return
	}
	m.Refresh()
	m.SetMessage(fmt.Sprintf("%s logs %s", node.Label, next), false)
}

func (m *RuleTreeModel) moveTo(id domain.NodeID) {
	for i, n := range m.flat {
		if n == id {
			m.cursor = i
			return
		}
	}
}

// sourceOf returns the file defining id: an import's own file, or for a
// rule the file of its closest import ancestor
func sourceOf(tree *domain.Tree, id domain.NodeID) (string, int) {
	node := tree.Node(id)
	if !node.IsRule() {
		return node.File, 1
	}
	for p := tree.Parent(id); p != domain.NoNode; p = tree.Parent(p) {
		if parent := tree.Node(p); !parent.IsRule() {
			return parent.File, node.Line
		}
	}
	return "", 0
}

func switchTo(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// View renders the rule tree
func (m *RuleTreeModel) View() string {
	vb := NewViewBuilder().
		Title("rudiwatch").
		Subtitle(m.project)

	tree := m.shown
	if tree.Len() == 0 {
		vb.Muted("No rule model loaded yet. Compile the project or press r to retry.")
	} else {
		start, end := m.window()
		for i := start; i < end; i++ {
			vb.Line(m.renderNode(tree, m.flat[i], i == m.cursor))
		}
		if end < len(m.flat) || start > 0 {
			vb.Muted(fmt.Sprintf("  %d-%d of %d", start+1, end, len(m.flat)))
		}
	}

	if m.Message != "" {
		vb.BlankLine().Raw(renderMessage(m.Message, m.MessageErr)).BlankLine()
	}

	vb.BlankLine().Help(
		RuleTreeKeys.Down, RuleTreeKeys.Right, RuleTreeKeys.Level,
		RuleTreeKeys.Save, RuleTreeKeys.Load, RuleTreeKeys.Files,
		RuleTreeKeys.Help, RuleTreeKeys.Quit,
	)
	return vb.String()
}

// window returns the visible slice of flat rows, following the cursor
func (m *RuleTreeModel) window() (int, int) {
	rows := m.Height - 10
	if m.Height == 0 || rows >= len(m.flat) {
		return 0, len(m.flat)
	}
	if rows < 3 {
		rows = 3
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	return m.offset, min(m.offset+rows, len(m.flat))
}

func (m *RuleTreeModel) renderNode(tree *domain.Tree, id domain.NodeID, selected bool) string {
	node := tree.Node(id)
	indent := strings.Repeat("  ", tree.Depth(id))

	prefix := styles.TreeLeaf
	if len(tree.Children(id)) > 0 {
		if node.Expanded {
			prefix = styles.TreeExpanded
		} else {
			prefix = styles.TreeCollapsed
		}
	}

	style := styles.NodeRule
	level := node.Level
	if !node.IsRule() {
		style = styles.NodeImport
		level = domain.Aggregate(tree, id)
	}
	text := style.Render(node.Label)
	if selected {
		text = styles.NodeSelected.Render(node.Label)
	}

	line := ""
	if node.Line > 0 {
		line = styles.LineNumber.Render(fmt.Sprintf(" :%d", node.Line))
	}

	return fmt.Sprintf("%s%s%s %s%s", indent, styles.TreeBranch.Render(prefix), text, styles.LevelBadge(level), line)
}
