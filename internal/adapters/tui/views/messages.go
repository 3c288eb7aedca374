package views

// Messages for view switching
type SwitchToTreeMsg struct{}

type SwitchToHelpMsg struct{}

type SwitchToSaveMsg struct{}

type SwitchToSnapshotsMsg struct{}

type SwitchToFilesMsg struct{}

// SaveRequestedMsg asks the app to write a snapshot under Name
type SaveRequestedMsg struct {
	Name string
}

// LoadRequestedMsg asks the app to load the snapshot at Path
type LoadRequestedMsg struct {
	Path string
}

// RebuildRequestedMsg asks the app to rebuild the tree now
type RebuildRequestedMsg struct{}

// OpenEditorMsg asks the app to open Path at Line in the editor
type OpenEditorMsg struct {
	Path string
	Line int
}
