package ports

import "os/exec"

// EditorOpener defines the interface for opening rule files in an external editor
type EditorOpener interface {
	// OpenFile opens path at line in the user's preferred editor.
	// A line below 1 opens the file at its top.
	OpenFile(path string, line int) error

	// Command returns an exec.Cmd for opening a file in the editor
	// This is useful for integrating with bubbletea's ExecProcess
	Command(path string, line int) (*exec.Cmd, error)
}
