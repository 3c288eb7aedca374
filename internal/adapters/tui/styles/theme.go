package styles

import (
	"github.com/charmbracelet/lipgloss"

	"rudiwatch/internal/domain"
)

var (
	// Colors
	Primary   = lipgloss.Color("#7C3AED") // Purple
	Secondary = lipgloss.Color("#10B981") // Green
	Muted     = lipgloss.Color("#6B7280") // Gray
	Warning   = lipgloss.Color("#F59E0B") // Amber
	Error     = lipgloss.Color("#EF4444") // Red
	Info      = lipgloss.Color("#60A5FA") // Blue
	White     = lipgloss.Color("#FFFFFF")
	Black     = lipgloss.Color("#000000")

	// Base styles
	App = lipgloss.NewStyle().
		Padding(1, 2)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	// Tree node styles
	NodeImport = lipgloss.NewStyle().
			Bold(true).
			Foreground(Info)

	NodeRule = lipgloss.NewStyle()

	NodeSelected = lipgloss.NewStyle().
			Background(Primary).
			Foreground(White).
			Bold(true)

	LineNumber = lipgloss.NewStyle().
			Foreground(Muted)

	// Tree indicators
	TreeBranch    = lipgloss.NewStyle().Foreground(Muted)
	TreeExpanded  = "▼ "
	TreeCollapsed = "▶ "
	TreeLeaf      = "  "

	// Status bar
	StatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("#1F2937")).
			Foreground(White).
			Padding(0, 1)

	StatusText = lipgloss.NewStyle().
			Foreground(Muted)

	// Input styles
	InputLabel = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	InputFocused = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Secondary).
			Padding(0, 1)

	// Help styles
	HelpKey = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)

	HelpDesc = lipgloss.NewStyle().
			Foreground(Muted)

	HelpSeparator = lipgloss.NewStyle().
			Foreground(Muted).
			SetString(" • ")

	// Message styles
	Success = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)

	ErrorMsg = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	// Muted text style (for using Muted color as a style)
	MutedText = lipgloss.NewStyle().
			Foreground(Muted)
)

// LevelColor returns the badge color for a logging level
func LevelColor(l domain.LoggingLevel) lipgloss.Color {
	switch l {
	case domain.LevelIfTrue:
		return Secondary
	case domain.LevelIfFalse:
		return Warning
	case domain.LevelAlways:
		return Error
	case domain.LevelPartly:
		return Info
	default:
		return Muted
	}
}

// LevelBadge renders a logging level as a short colored tag
func LevelBadge(l domain.LoggingLevel) string {
	return lipgloss.NewStyle().Foreground(LevelColor(l)).Render("[" + l.String() + "]")
}

// UsageColor returns the color for a file usage tag
func UsageColor(u domain.Usage) lipgloss.Color {
	switch u {
	case domain.UsageMainFile, domain.UsageWrapperFile:
		return Primary
	case domain.UsageUsed:
		return Secondary
	case domain.UsageUnused:
		return Warning
	case domain.UsageFolder:
		return Info
	default:
		return Muted
	}
}
