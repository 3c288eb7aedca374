// Package bootstrap wires the adapters of one project into a session.
// Every binary opens its project through here.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"rudiwatch/internal/adapters/filesystem"
	"rudiwatch/internal/adapters/ruleloc"
	"rudiwatch/internal/adapters/snapshot"
	"rudiwatch/internal/adapters/sqlite"
	"rudiwatch/internal/adapters/watcher"
	"rudiwatch/internal/application/session"
	"rudiwatch/internal/config"
	"rudiwatch/internal/logger"
)

// Project holds the wired components of one open project
type Project struct {
	Config  *config.Config
	Log     logger.Logger
	Repo    *filesystem.Repository
	Index   *sqlite.Index
	Session *session.Session

	closers []io.Closer
}

// LogTarget selects where the project logger writes
type LogTarget int

const (
	LogSilent LogTarget = iota
	LogStderr
	// LogFile appends to the configured log file, for the full screen UI
	LogFile
)

// Open loads the project configuration at dir and wires its adapters. It
// does not touch the rule model; call Seed for that.
func Open(dir string, target LogTarget) (*Project, error) {
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}

	p := &Project{Config: cfg}
	if p.Log, err = p.openLogger(target); err != nil {
		return nil, err
	}

	p.Repo = filesystem.NewRepository(cfg.RudiFolder, cfg.Extension)

	p.Index = sqlite.NewIndex()
	if err := p.Index.Open(cfg.ProjectDir, cfg.UsageIndex); err != nil {
		p.Close()
		return nil, fmt.Errorf("usage index: %w", err)
	}
	p.closers = append(p.closers, p.Index)

	source := ruleloc.NewSource(cfg.RuleLocFile, cfg.WrapperFile, p.Repo, p.Log)
	p.Session = session.New(session.Project{
		Name:        cfg.Name,
		RudiDir:     cfg.RudiFolder,
		SnapshotDir: cfg.SnapshotDir,
		RecentLimit: cfg.RecentLimit,
	}, source, snapshot.NewStore(),
		session.WithUsageIndex(p.Index),
		session.WithLogger(p.Log),
	)
	return p, nil
}

func (p *Project) openLogger(target LogTarget) (logger.Logger, error) {
	level, err := logger.ParseLevel(p.Config.LogLevel)
	if err != nil {
		return nil, err
	}

	switch target {
	case LogStderr:
		return logger.NewLogger(level, os.Stderr), nil
	case LogFile:
		if err := os.MkdirAll(filepath.Dir(p.Config.LogFile), 0755); err != nil {
			return nil, fmt.Errorf("log directory: %w", err)
		}
		f, err := os.OpenFile(p.Config.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("log file: %w", err)
		}
		p.closers = append(p.closers, f)
		return logger.NewLogger(level, f), nil
	default:
		return logger.NewSilentLogger(), nil
	}
}

// Seed tracks every file and folder below the rudi folder, builds the
// first tree and rewrites the usage index from scratch. A failed build is
// returned but leaves the project usable; the next rebuild may succeed.
func (p *Project) Seed(ctx context.Context) error {
	files, err := p.Repo.ListSources()
	if err != nil {
		return fmt.Errorf("scan %s: %w", p.Repo.Root(), err)
	}
	for _, f := range files {
		p.Session.Track(f.Path, f.IsDir)
	}

	buildErr := p.Session.Rebuild(ctx)

	stats, err := p.Index.SyncFull(p.Session.Usage())
	if err != nil {
		return fmt.Errorf("usage index: %w", err)
	}
	p.Log.Debug("usage index synced",
		logger.F("files", stats.Written), logger.F("took", stats.Duration))

	return buildErr
}

// NewWatcher returns a stopped watcher over the rudi folder
func (p *Project) NewWatcher() *watcher.Watcher {
	return watcher.New(p.Repo, watcher.WithLogger(p.Log))
}

// Close releases the usage index and the log file
func (p *Project) Close() error {
	var errs []error
	for i := len(p.closers) - 1; i >= 0; i-- {
		errs = append(errs, p.closers[i].Close())
	}
	p.closers = nil
	return errors.Join(errs...)
}
