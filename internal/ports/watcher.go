package ports

// FileEventKind classifies what the directory watcher observed
type FileEventKind int

const (
	FileAdded FileEventKind = iota
	FileRemoved
	// WatchRestarted follows a full re-registration after an invalidated watch
	WatchRestarted
	// WatchFailed carries an error the watcher could not recover from on
	// its own; it keeps retrying in the background
	WatchFailed
)

// String returns the event kind name
func (k FileEventKind) String() string {
	switch k {
	case FileAdded:
		return "added"
	case FileRemoved:
		return "removed"
	case WatchRestarted:
		return "restarted"
	case WatchFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FileEvent is one message from the watcher goroutine to the owner of the
// rule trees
type FileEvent struct {
	Kind  FileEventKind
	Path  string
	IsDir bool
	Err   error
	// Watch identifies the registration that saw the event. It changes
	// after every restart.
	Watch string
}

// DirectoryWatcher observes a source tree in the background
type DirectoryWatcher interface {
	Start() error
	Events() <-chan FileEvent
	Stop()
}
