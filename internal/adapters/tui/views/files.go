package views

import (
	"path/filepath"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"rudiwatch/internal/adapters/tui/styles"
	"rudiwatch/internal/domain"
)

var filesBack = key.NewBinding(
	key.WithKeys("esc", "q", "f"),
	key.WithHelp("esc/f", "back"),
)

// FilesModel lists every tracked source file with its usage tag
type FilesModel struct {
	ViewState
	root    string
	entries []domain.UsageChange
}

// NewFilesModel creates a file list relative to root
func NewFilesModel(root string) *FilesModel {
	return &FilesModel{root: root}
}

// SetEntries replaces the listed files
func (m *FilesModel) SetEntries(entries []domain.UsageChange) {
	m.entries = entries
}

// Init initializes the view
func (m *FilesModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the file list
func (m *FilesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, filesBack) {
		return m, switchTo(SwitchToTreeMsg{})
	}
	return m, nil
}

// View renders the file list
func (m *FilesModel) View() string {
	vb := NewViewBuilder().
		Title("Rule files").
		Subtitle(m.root)

	if len(m.entries) == 0 {
		vb.Muted("No files tracked.")
	}
	for _, e := range m.entries {
		rel, err := filepath.Rel(m.root, e.Path)
		if err != nil {
			rel = e.Path
		}
		tag := lipgloss.NewStyle().Foreground(styles.UsageColor(e.Usage)).Render(padRight(e.Usage.String(), 8))
		vb.Line("  " + tag + " " + rel)
	}

	return vb.BlankLine().Help(filesBack).String()
}
