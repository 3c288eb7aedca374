// Package watcher reports rule source files appearing and disappearing
// below a rudi folder.
package watcher

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"rudiwatch/internal/adapters/filesystem"
	"rudiwatch/internal/logger"
	"rudiwatch/internal/ports"
)

// ErrWatchInvalidated marks a watch set that can no longer be trusted
var ErrWatchInvalidated = errors.New("watch invalidated")

// RegistrationError reports a folder that could not be watched
type RegistrationError struct {
	Dir string
	Err error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("cannot watch %s: %v", e.Dir, e.Err)
}

func (e *RegistrationError) Unwrap() error {
	return e.Err
}

// State is the lifecycle state of a Watcher
type State int

const (
	Stopped State = iota
	Running
	Invalidated
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Invalidated:
		return "invalidated"
	default:
		return "stopped"
	}
}

const (
	defaultBuffer       = 64
	defaultRestartDelay = time.Second
)

// Watcher implements ports.DirectoryWatcher with fsnotify. One Watcher
// covers one session: after Stop it cannot be started again.
type Watcher struct {
	repo         *filesystem.Repository
	baseLog      logger.Logger
	log          logger.Logger
	restartDelay time.Duration

	events chan ports.FileEvent
	stop   chan struct{}
	done   chan struct{}

	stopOnce sync.Once
	mu       sync.Mutex
	state    State
	started  bool

	// touched only by the loop goroutine
	watched map[string]bool
	// id of the current registration, renewed on every restart
	watchID string
}

var _ ports.DirectoryWatcher = (*Watcher)(nil)

// Option configures a Watcher
type Option func(*Watcher)

// WithLogger sets the watcher logger
func WithLogger(l logger.Logger) Option {
	return func(w *Watcher) { w.baseLog = l }
}

// WithRestartDelay sets the pause between failed restarts
func WithRestartDelay(d time.Duration) Option {
	return func(w *Watcher) { w.restartDelay = d }
}

// New creates a stopped watcher over the repository root
func New(repo *filesystem.Repository, opts ...Option) *Watcher {
	w := &Watcher{
		repo:         repo,
		baseLog:      logger.NewSilentLogger(),
		restartDelay: defaultRestartDelay,
		events:       make(chan ports.FileEvent, defaultBuffer),
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = w.baseLog
	return w
}

// Events returns the event stream. It is closed once the loop exits.
func (w *Watcher) Events() <-chan ports.FileEvent {
	return w.events
}

// Done is closed once the loop has exited
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

// State returns the current lifecycle state
func (w *Watcher) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Watcher) setState(s State) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
}

// Start registers the root and all folders below it and starts the
// background loop. It fails if the root itself cannot be watched.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return errors.New("watcher already started")
	}

	fw, err := w.register()
	if err != nil {
		return err
	}
	w.started = true
	w.state = Running
	w.log.Info("watching", logger.F("root", w.repo.Root()), logger.F("dirs", len(w.watched)))

	go w.run(fw)
	return nil
}

// Stop ends the loop. It may be called any number of times, from any
// goroutine, and never blocks.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
}

// register builds a fresh fsnotify watcher over the current tree
func (w *Watcher) register() (*fsnotify.Watcher, error) {
	dirs, err := w.repo.Dirs()
	if err != nil {
		return nil, &RegistrationError{Dir: w.repo.Root(), Err: err}
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, &RegistrationError{Dir: w.repo.Root(), Err: err}
	}

	w.watched = make(map[string]bool, len(dirs))
	for _, dir := range dirs {
		if err := fw.Add(dir); err != nil {
			if dir == w.repo.Root() {
				fw.Close()
				return nil, &RegistrationError{Dir: dir, Err: err}
			}
			w.log.Warn("folder left unwatched", logger.Err(&RegistrationError{Dir: dir, Err: err}))
			continue
		}
		w.watched[dir] = true
	}
	w.watchID = uuid.NewString()
	w.log = w.baseLog.WithFields(logger.F("watch", w.watchID))
	return fw, nil
}

func (w *Watcher) run(fw *fsnotify.Watcher) {
	defer close(w.done)
	defer close(w.events)
	defer w.setState(Stopped)

	for {
		var invalidated error
		select {
		case <-w.stop:
			fw.Close()
			return
		case ev, ok := <-fw.Events:
			if !ok {
				invalidated = ErrWatchInvalidated
				break
			}
			invalidated = w.handle(fw, ev)
		case err, ok := <-fw.Errors:
			if !ok {
				invalidated = ErrWatchInvalidated
				break
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				w.log.Warn("events dropped by the OS, file list may be incomplete", logger.Err(err))
				continue
			}
			invalidated = fmt.Errorf("%w: %v", ErrWatchInvalidated, err)
		}

		if invalidated == nil {
			continue
		}
		fw.Close()
		if fw = w.restart(invalidated); fw == nil {
			return
		}
	}
}

// handle turns one raw event into at most a few FileEvents. A non-nil
// return means the watch set was invalidated.
func (w *Watcher) handle(fw *fsnotify.Watcher, ev fsnotify.Event) error {
	switch {
	case ev.Has(fsnotify.Create):
		info, err := os.Lstat(ev.Name)
		if err != nil {
			// gone again before we looked
			return nil
		}
		if info.IsDir() {
			w.addTree(fw, ev.Name)
			return nil
		}
		if w.repo.IsSource(ev.Name) {
			w.emit(ports.FileEvent{Kind: ports.FileAdded, Path: ev.Name})
		}

	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		if w.watched[ev.Name] {
			delete(w.watched, ev.Name)
			w.emit(ports.FileEvent{Kind: ports.FileRemoved, Path: ev.Name, IsDir: true})
			return fmt.Errorf("%w: %s went away", ErrWatchInvalidated, ev.Name)
		}
		if w.repo.IsSource(ev.Name) {
			w.emit(ports.FileEvent{Kind: ports.FileRemoved, Path: ev.Name})
		}
	}
	// writes and attribute changes are picked up by recompilation
	return nil
}

// addTree registers a folder created while running, plus anything that
// was moved in together with it
func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) {
	_ = filesystem.Walk(dir, filesystem.Everything, func(path string, info os.FileInfo) error {
		if info.IsDir() {
			if err := fw.Add(path); err != nil {
				w.log.Warn("folder left unwatched", logger.Err(&RegistrationError{Dir: path, Err: err}))
				return filepath.SkipDir
			}
			w.watched[path] = true
			w.emit(ports.FileEvent{Kind: ports.FileAdded, Path: path, IsDir: true})
			return nil
		}
		if w.repo.IsSource(path) {
			w.emit(ports.FileEvent{Kind: ports.FileAdded, Path: path})
		}
		return nil
	})
}

// restart discards the watch set and registers the tree again, retrying
// until it works or the watcher is stopped. It returns nil when stopped.
func (w *Watcher) restart(cause error) *fsnotify.Watcher {
	w.setState(Invalidated)
	w.log.Warn("restarting watch", logger.Err(cause))

	for {
		select {
		case <-w.stop:
			return nil
		default:
		}

		fw, err := w.register()
		if err == nil {
			w.setState(Running)
			w.log.Info("watch restarted", logger.F("dirs", len(w.watched)))
			w.emit(ports.FileEvent{Kind: ports.WatchRestarted, Path: w.repo.Root()})
			return fw
		}

		w.log.Error("restart failed", logger.Err(err))
		w.emit(ports.FileEvent{Kind: ports.WatchFailed, Path: w.repo.Root(), Err: err})

		select {
		case <-w.stop:
			return nil
		case <-time.After(w.restartDelay):
		}
	}
}

// emit stamps ev with the current watch id and delivers it unless the
// watcher is stopping
func (w *Watcher) emit(ev ports.FileEvent) {
	ev.Watch = w.watchID
	select {
	case w.events <- ev:
	case <-w.stop:
	}
}
