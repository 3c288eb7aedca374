package domain

import (
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Usage tags how a tracked file takes part in the current rule model
type Usage int

const (
	UsageUnknown Usage = iota
	UsageUnused
	UsageUsed
	UsageMainFile
	UsageWrapperFile
	UsageFolder
)

// String returns the tag name
func (u Usage) String() string {
	switch u {
	case UsageUnused:
		return "unused"
	case UsageUsed:
		return "used"
	case UsageMainFile:
		return "main"
	case UsageWrapperFile:
		return "wrapper"
	case UsageFolder:
		return "folder"
	default:
		return "unknown"
	}
}

// ParseUsage is the inverse of Usage.String
func ParseUsage(s string) Usage {
	switch s {
	case "unused":
		return UsageUnused
	case "used":
		return UsageUsed
	case "main":
		return UsageMainFile
	case "wrapper":
		return UsageWrapperFile
	case "folder":
		return UsageFolder
	default:
		return UsageUnknown
	}
}

// UsageChange reports the (new) usage of one path
type UsageChange struct {
	Path  string
	Usage Usage
}

// UsageRegistry maps tracked filesystem paths to their usage tag
type UsageRegistry struct {
	entries map[string]Usage
}

// NewUsageRegistry creates an empty registry
func NewUsageRegistry() *UsageRegistry {
	return &UsageRegistry{entries: make(map[string]Usage)}
}

// Track starts tracking path. Files start as unknown until the next
// reclassification; folders are tagged immediately. Tracking a known path
// is a no-op and reports false.
func (r *UsageRegistry) Track(path string, isDir bool) (UsageChange, bool) {
	path = filepath.Clean(path)
	if _, ok := r.entries[path]; ok {
		return UsageChange{}, false
	}
	u := UsageUnknown
	if isDir {
		u = UsageFolder
	}
	r.entries[path] = u
	return UsageChange{Path: path, Usage: u}, true
}

// Forget stops tracking path and everything below it. It returns the
// removed paths in sorted order.
func (r *UsageRegistry) Forget(path string) []string {
	path = filepath.Clean(path)
	prefix := path + string(filepath.Separator)
	var removed []string
	for p := range r.entries {
		if p == path || strings.HasPrefix(p, prefix) {
			removed = append(removed, p)
		}
	}
	for _, p := range removed {
		delete(r.entries, p)
	}
	sort.Strings(removed)
	return removed
}

// Get returns the usage of path
func (r *UsageRegistry) Get(path string) (Usage, bool) {
	u, ok := r.entries[filepath.Clean(path)]
	return u, ok
}

// Len returns the number of tracked paths
func (r *UsageRegistry) Len() int {
	return len(r.entries)
}

// Entries returns all tracked paths sorted by path
func (r *UsageRegistry) Entries() []UsageChange {
	out := make([]UsageChange, 0, len(r.entries))
	for p, u := range r.entries {
		out = append(out, UsageChange{Path: p, Usage: u})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Reclassify recomputes every file's tag against model and returns only
// the entries whose tag changed, sorted by path. Folders keep their tag.
func (r *UsageRegistry) Reclassify(model *RuleModel) []UsageChange {
	imports := make(map[string]struct{}, len(model.ImportFiles))
	for _, f := range model.ImportFiles {
		imports[filepath.Clean(f)] = struct{}{}
	}
	var changes []UsageChange
	for p, old := range r.entries {
		if old == UsageFolder {
			continue
		}
		u := classify(p, model, imports)
		if u != old {
			r.entries[p] = u
			changes = append(changes, UsageChange{Path: p, Usage: u})
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	return changes
}

func classify(path string, model *RuleModel, imports map[string]struct{}) Usage {
	switch {
	case model.MainFile != "" && path == filepath.Clean(model.MainFile):
		return UsageMainFile
	case model.WrapperFile != "" && path == filepath.Clean(model.WrapperFile):
		return UsageWrapperFile
	}
	if _, ok := imports[path]; ok {
		return UsageUsed
	}
	return UsageUnused
}

// SnapshotEntry is one element of the recent-snapshot catalog
type SnapshotEntry struct {
	Path    string
	ModTime time.Time
}

// Name returns the file name shown to users
func (e SnapshotEntry) Name() string {
	return filepath.Base(e.Path)
}
