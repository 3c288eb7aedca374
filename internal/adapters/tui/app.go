package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"rudiwatch/internal/adapters/tui/styles"
	"rudiwatch/internal/adapters/tui/views"
	"rudiwatch/internal/domain"
	"rudiwatch/internal/ports"
)

// ViewState represents the current view
type ViewState int

const (
	ViewTree ViewState = iota
	ViewSave
	ViewSnapshots
	ViewFiles
	ViewHelp
)

// Session is the part of a project session the TUI drives
type Session interface {
	views.TreeSession
	Rebuild(ctx context.Context) error
	HandleEvent(ctx context.Context, ev ports.FileEvent) error
	Save(name string) (string, error)
	Load(path string) error
	RecentSnapshots() ([]domain.SnapshotEntry, error)
	Usage() []domain.UsageChange
}

// App is the main TUI application model. Every session call happens in
// Update, so the session only ever sees one goroutine.
type App struct {
	ctx     context.Context
	session Session
	events  <-chan ports.FileEvent
	editor  ports.EditorOpener

	state     ViewState
	tree      *views.RuleTreeModel
	save      *views.SaveModel
	snapshots *views.SnapshotsModel
	files     *views.FilesModel
	help      *views.HelpModel

	width  int
	height int
}

// NewApp creates a new TUI application. events and ed may be nil.
func NewApp(ctx context.Context, s Session, project, rudiDir string, events <-chan ports.FileEvent, ed ports.EditorOpener) *App {
	return &App{
		ctx:       ctx,
		session:   s,
		events:    events,
		editor:    ed,
		state:     ViewTree,
		tree:      views.NewRuleTreeModel(s, project),
		save:      views.NewSaveModel(),
		snapshots: views.NewSnapshotsModel(),
		files:     views.NewFilesModel(rudiDir),
		help:      views.NewHelpModel(),
	}
}

// fileEventMsg carries one watcher event into Update
type fileEventMsg struct {
	event ports.FileEvent
}

type watcherClosedMsg struct{}

type editorFinishedMsg struct{ err error }

// waitForEvent blocks in a command goroutine, never in Update
func waitForEvent(events <-chan ports.FileEvent) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return watcherClosedMsg{}
		}
		return fileEventMsg{event: ev}
	}
}

// Init initializes the application
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.tree.Init(), waitForEvent(a.events))
}

// Update handles messages for the application
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.tree.SetSize(msg.Width, msg.Height)
		a.save.SetSize(msg.Width, msg.Height)
		a.snapshots.SetSize(msg.Width, msg.Height)
		a.files.SetSize(msg.Width, msg.Height)
		a.help.SetSize(msg.Width, msg.Height)
		return a, nil

	case fileEventMsg:
		if err := a.session.HandleEvent(a.ctx, msg.event); err != nil {
			a.tree.SetMessage(err.Error(), true)
		}
		a.tree.Refresh()
		if a.state == ViewFiles {
			a.files.SetEntries(a.session.Usage())
		}
		return a, waitForEvent(a.events)

	case watcherClosedMsg:
		a.events = nil
		return a, nil

	// View switching messages
	case views.SwitchToTreeMsg:
		a.state = ViewTree
		return a, nil

	case views.SwitchToHelpMsg:
		a.state = ViewHelp
		return a, nil

	case views.SwitchToSaveMsg:
		a.state = ViewSave
		return a, a.save.Init()

	case views.SwitchToSnapshotsMsg:
		entries, err := a.session.RecentSnapshots()
		if err != nil {
			a.tree.SetMessage(err.Error(), true)
			return a, nil
		}
		a.snapshots.SetEntries(entries)
		a.state = ViewSnapshots
		return a, nil

	case views.SwitchToFilesMsg:
		a.files.SetEntries(a.session.Usage())
		a.state = ViewFiles
		return a, nil

	// Session requests
	case views.SaveRequestedMsg:
		path, err := a.session.Save(msg.Name)
		if err != nil {
			a.save.SetMessage(err.Error(), true)
			return a, nil
		}
		a.state = ViewTree
		a.tree.SetMessage("Saved "+path, false)
		return a, nil

	case views.LoadRequestedMsg:
		if err := a.session.Load(msg.Path); err != nil {
			a.snapshots.SetMessage(err.Error(), true)
			return a, nil
		}
		a.state = ViewTree
		a.tree.Refresh()
		a.tree.SetMessage("Loaded "+msg.Path, false)
		return a, nil

	case views.RebuildRequestedMsg:
		if err := a.session.Rebuild(a.ctx); err != nil {
			a.tree.SetMessage(fmt.Sprintf("Rebuild failed: %v", err), true)
			return a, nil
		}
		a.tree.Refresh()
		a.tree.SetMessage("Rebuilt", false)
		return a, nil

	case views.OpenEditorMsg:
		return a, a.openEditor(msg.Path, msg.Line)

	case editorFinishedMsg:
		if msg.err != nil {
			a.tree.SetMessage(msg.err.Error(), true)
		}
		return a, nil
	}

	// Delegate to current view
	var cmd tea.Cmd
	switch a.state {
	case ViewTree:
		_, cmd = a.tree.Update(msg)
	case ViewSave:
		_, cmd = a.save.Update(msg)
	case ViewSnapshots:
		_, cmd = a.snapshots.Update(msg)
	case ViewFiles:
		_, cmd = a.files.Update(msg)
	case ViewHelp:
		_, cmd = a.help.Update(msg)
	}

	return a, cmd
}

func (a *App) openEditor(path string, line int) tea.Cmd {
	if a.editor == nil {
		return nil
	}

	cmd, err := a.editor.Command(path, line)
	if err != nil {
		return func() tea.Msg {
			return editorFinishedMsg{err: err}
		}
	}

	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return editorFinishedMsg{err: err}
	})
}

// View renders the current view
func (a *App) View() string {
	switch a.state {
	case ViewSave:
		return a.save.View()
	case ViewSnapshots:
		return a.snapshots.View()
	case ViewFiles:
		return a.files.View()
	case ViewHelp:
		return a.help.View()
	default:
		return a.tree.View() + "\n" + a.statusLine()
	}
}

func (a *App) statusLine() string {
	watch := "watching"
	if a.events == nil {
		watch = "not watching"
	}
	text := fmt.Sprintf("%d nodes | %d files | %s", a.session.Tree().Len(), len(a.session.Usage()), watch)
	return styles.StatusBar.Render(styles.StatusText.Render(text))
}
