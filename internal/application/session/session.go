// Package session owns the per-project state: the current presentation
// tree, the attribute memory and the file usage registry. A Session is
// not safe for concurrent use; drive it from one goroutine, such as an
// application.Loop or a bubbletea Update function.
package session

import (
	"context"
	"errors"
	"fmt"

	"rudiwatch/internal/application"
	"rudiwatch/internal/application/commands"
	"rudiwatch/internal/domain"
	"rudiwatch/internal/logger"
	"rudiwatch/internal/ports"
)

// Project describes the directories a session works on
type Project struct {
	Name        string
	RudiDir     string
	SnapshotDir string
	RecentLimit int
}

// Session ties the rule model source, the reconciler and the snapshot
// store together for one open project.
type Session struct {
	project  Project
	source   ports.RuleModelSource
	store    ports.SnapshotStore
	notifier ports.Notifier
	index    ports.UsageIndex
	log      logger.Logger

	model  *domain.RuleModel
	tree   *domain.Tree
	memory *domain.MemoryNode
	usage  *domain.UsageRegistry
}

// Option configures a Session
type Option func(*Session)

// WithNotifier sets the receiver of rebuild and usage notifications
func WithNotifier(n ports.Notifier) Option {
	return func(s *Session) { s.notifier = n }
}

// WithUsageIndex mirrors every usage change into idx
func WithUsageIndex(idx ports.UsageIndex) Option {
	return func(s *Session) { s.index = idx }
}

// WithLogger sets the session logger
func WithLogger(l logger.Logger) Option {
	return func(s *Session) { s.log = l }
}

// New creates a session without a tree; call Rebuild to load one
func New(project Project, source ports.RuleModelSource, store ports.SnapshotStore, opts ...Option) *Session {
	s := &Session{
		project:  project,
		source:   source,
		store:    store,
		notifier: ports.NopNotifier{},
		log:      logger.NewSilentLogger(),
		usage:    domain.NewUsageRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithFields(logger.F("project", project.Name))
	return s
}

// Project returns the project the session works on
func (s *Session) Project() Project {
	return s.project
}

// Rebuild compiles the latest rule model into a new tree, carrying over
// the attributes of the current tree. On failure the current tree stays.
func (s *Session) Rebuild(ctx context.Context) error {
	res, err := commands.NewBuildTreeCommand(s.source).Execute(ctx)
	if err != nil {
		s.log.Error("rebuild failed, keeping previous tree", logger.Err(err))
		return err
	}
	for _, dup := range res.Duplicates {
		s.log.Warn("duplicate sibling label, only the first is reconciled", logger.F("path", dup.String()))
	}

	s.syncMemory()
	commands.Apply(res.Tree, s.memory)
	s.tree, s.model = res.Tree, res.Model

	s.publish(s.usage.Reclassify(res.Model), nil)
	s.log.Debug("rebuild completed", logger.F("nodes", res.Tree.Len()))
	s.notifier.RebuildCompleted(s.tree)
	return nil
}

// Track registers an existing file or folder without rebuilding
func (s *Session) Track(path string, isDir bool) {
	change, ok := s.usage.Track(path, isDir)
	if !ok {
		return
	}
	if s.model != nil && !isDir {
		s.publish(s.usage.Reclassify(s.model), nil)
		return
	}
	s.publish([]domain.UsageChange{change}, nil)
}

// HandleEvent applies one watcher event. Every structural event triggers
// a full rebuild.
func (s *Session) HandleEvent(ctx context.Context, ev ports.FileEvent) error {
	switch ev.Kind {
	case ports.FileAdded:
		if change, ok := s.usage.Track(ev.Path, ev.IsDir); ok {
			s.publish([]domain.UsageChange{change}, nil)
		}
		s.log.Info("file added", logger.F("path", ev.Path))
	case ports.FileRemoved:
		s.publish(nil, s.usage.Forget(ev.Path))
		s.log.Info("file removed", logger.F("path", ev.Path))
	case ports.WatchRestarted:
		s.log.Warn("watcher restarted", logger.F("dir", ev.Path), logger.F("watch", ev.Watch))
	case ports.WatchFailed:
		s.log.Error("watcher failed", logger.F("dir", ev.Path), logger.Err(ev.Err))
		return ev.Err
	default:
		return fmt.Errorf("unknown file event %d", ev.Kind)
	}
	return s.Rebuild(ctx)
}

// Save captures the live tree and writes the memory under name in the
// snapshot directory.
func (s *Session) Save(name string) (string, error) {
	s.syncMemory()
	path, err := commands.NewSaveSnapshotCommand(s.store, s.project.SnapshotDir, name, s.memory).Execute()
	if err != nil {
		s.log.Error("snapshot save failed", logger.F("name", name), logger.Err(err))
		return "", err
	}
	s.log.Info("snapshot saved", logger.F("path", path))
	return path, nil
}

// Load replaces the memory with the snapshot at path and applies it to the
// current tree. A failed load changes nothing.
func (s *Session) Load(path string) error {
	mem, err := commands.NewLoadSnapshotCommand(s.store, path).Execute()
	if err != nil {
		s.log.Error("snapshot load failed", logger.F("path", path), logger.Err(err))
		return err
	}

	s.memory = mem
	if s.tree != nil {
		if s.tree.Node(s.tree.Root()).Label != mem.Label {
			s.log.Warn("snapshot belongs to another root",
				logger.F("snapshot", mem.Label), logger.F("root", s.tree.Node(s.tree.Root()).Label))
		}
		commands.Apply(s.tree, s.memory)
		s.notifier.RebuildCompleted(s.tree)
	}
	s.log.Info("snapshot loaded", logger.F("path", path))
	return nil
}

// RecentSnapshots lists the most recently modified snapshot files
func (s *Session) RecentSnapshots() ([]domain.SnapshotEntry, error) {
	return commands.NewListSnapshotsCommand(s.store, s.project.SnapshotDir, s.project.RecentLimit).Execute()
}

// SetExpanded changes the expansion flag of the node at path
func (s *Session) SetExpanded(path domain.IdentityPath, expanded bool) error {
	id, err := s.find(path)
	if err != nil {
		return err
	}
	s.tree.SetExpanded(id, expanded)
	return nil
}

// SetLevel stores a logging level on the node at path
func (s *Session) SetLevel(path domain.IdentityPath, level domain.LoggingLevel) error {
	id, err := s.find(path)
	if err != nil {
		return err
	}
	if s.tree.Node(id).IsRule() {
		if err := validateRuleLevel(level); err != nil {
			return err
		}
	}
	return s.tree.SetLevel(id, level)
}

// SetSubtreeLevel stores level on the node at path and on every rule
// below it
func (s *Session) SetSubtreeLevel(path domain.IdentityPath, level domain.LoggingLevel) error {
	if err := validateRuleLevel(level); err != nil {
		return err
	}
	id, err := s.find(path)
	if err != nil {
		return err
	}
	if err := s.tree.SetLevel(id, level); err != nil {
		return err
	}
	s.tree.WalkFrom(id, func(n domain.NodeID) {
		if s.tree.Node(n).IsRule() {
			// level was validated above
			_ = s.tree.SetLevel(n, level)
		}
	})
	return nil
}

// Memory captures the live tree and returns the memory root, nil if
// nothing was ever captured.
func (s *Session) Memory() *domain.MemoryNode {
	s.syncMemory()
	return s.memory
}

// Tree returns the current presentation tree, nil before the first rebuild
func (s *Session) Tree() *domain.Tree {
	return s.tree
}

// Model returns the rule model behind the current tree
func (s *Session) Model() *domain.RuleModel {
	return s.model
}

// Usage returns every tracked path with its tag
func (s *Session) Usage() []domain.UsageChange {
	return s.usage.Entries()
}

// partly only ever describes an import whose rules disagree
func validateRuleLevel(level domain.LoggingLevel) error {
	if level == domain.LevelPartly {
		return &application.ValidationError{Field: "level", Message: "partly is derived and cannot be set on a rule"}
	}
	return nil
}

func (s *Session) find(path domain.IdentityPath) (domain.NodeID, error) {
	if s.tree == nil {
		return domain.NoNode, application.ErrNoRuleModel
	}
	id, ok := s.tree.Find(path)
	if !ok {
		return domain.NoNode, fmt.Errorf("node %s: %w", path, application.ErrNotFound)
	}
	return id, nil
}

func (s *Session) syncMemory() {
	if s.tree != nil {
		s.memory = commands.Capture(s.tree, s.memory)
	}
}

// publish notifies about changed and removed paths and mirrors them into
// the usage index. Removed paths are reported as unknown.
func (s *Session) publish(changes []domain.UsageChange, removed []string) {
	for _, c := range changes {
		s.notifier.FileUsageChanged(c.Path, c.Usage)
	}
	for _, p := range removed {
		s.notifier.FileUsageChanged(p, domain.UsageUnknown)
	}
	if s.index == nil || len(changes)+len(removed) == 0 {
		return
	}
	if err := s.persist(changes, removed); err != nil {
		s.log.Warn("usage index update failed", logger.Err(err))
	}
}

func (s *Session) persist(changes []domain.UsageChange, removed []string) (err error) {
	tx, err := s.index.BeginTx()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, tx.Rollback())
		}
	}()

	for _, c := range changes {
		if err = tx.Upsert(c); err != nil {
			return err
		}
	}
	for _, p := range removed {
		if err = tx.Delete(p); err != nil {
			return err
		}
	}
	return tx.Commit()
}
