package editor

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Opener implements ports.EditorOpener
type Opener struct {
	lookupEnv func(string) string
}

// NewOpener creates a new editor opener
func NewOpener() *Opener {
	return &Opener{lookupEnv: os.Getenv}
}

// OpenFile opens a file at line in the user's preferred editor
func (o *Opener) OpenFile(path string, line int) error {
	cmd, err := o.Command(path, line)
	if err != nil {
		return err
	}
	return cmd.Run()
}

// Command returns an exec.Cmd for opening a file in the editor
// This is useful for integrating with bubbletea's ExecProcess
func (o *Opener) Command(path string, line int) (*exec.Cmd, error) {
	editor := o.findEditor()
	if editor == "" {
		return nil, fmt.Errorf("no editor found: set $EDITOR environment variable")
	}

	fields := strings.Fields(editor)
	args := append(fields[1:], lineArgs(fields[0], path, line)...)
	cmd := exec.Command(fields[0], args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd, nil
}

// lineArgs builds the arguments that open path at line for the editors
// that understand a line jump
func lineArgs(editor, path string, line int) []string {
	if line < 1 {
		return []string{path}
	}
	switch filepath.Base(editor) {
	case "code", "codium":
		return []string{"--goto", path + ":" + strconv.Itoa(line)}
	case "subl", "hx", "zed":
		return []string{path + ":" + strconv.Itoa(line)}
	case "nvim", "vim", "vi", "nano", "emacs", "micro", "kak":
		return []string{"+" + strconv.Itoa(line), path}
	default:
		return []string{path}
	}
}

// findEditor returns the editor to use
func (o *Opener) findEditor() string {
	// Check $EDITOR first
	if editor := o.lookupEnv("EDITOR"); editor != "" {
		return editor
	}

	// Check $VISUAL
	if visual := o.lookupEnv("VISUAL"); visual != "" {
		return visual
	}

	// Try common editors
	editors := []string{"nvim", "vim", "vi", "nano", "code"}
	for _, editor := range editors {
		if path, err := exec.LookPath(editor); err == nil {
			return path
		}
	}

	return ""
}
