package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"rudiwatch/internal/adapters/editor"
	"rudiwatch/internal/adapters/tui"
	"rudiwatch/internal/bootstrap"
	"rudiwatch/internal/config"
	"rudiwatch/internal/logger"
	"rudiwatch/internal/ports"
)

func main() {
	projectFlag := flag.String("project", config.ProjectPath(), "path to the rudi project")
	flag.Parse()

	if err := run(*projectFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(projectPath string) error {
	ctx := context.Background()

	// Logs go to a file; the terminal belongs to the TUI
	p, err := bootstrap.Open(projectPath, bootstrap.LogFile)
	if err != nil {
		return err
	}
	defer p.Close()

	if err := p.Seed(ctx); err != nil {
		p.Log.Warn("initial build failed", logger.Err(err))
	}

	var events <-chan ports.FileEvent
	w := p.NewWatcher()
	if err := w.Start(); err != nil {
		p.Log.Error("rule folder is not watched", logger.Err(err))
	} else {
		defer w.Stop()
		events = w.Events()
	}

	app := tui.NewApp(ctx, p.Session, p.Config.Name, p.Config.RudiFolder, events, editor.NewOpener())

	_, err = tea.NewProgram(app, tea.WithAltScreen()).Run()
	return err
}
