package filesystem

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultIgnoreDirs are directories never worth descending into below a
// rudi folder
var DefaultIgnoreDirs = []string{
	".git", ".svn", ".hg", ".idea", ".vscode",
	"target", "build", "bin",
}

// WalkOptions configures directory traversal behavior
type WalkOptions struct {
	IgnoreDirs     []string // Directories to skip (default: DefaultIgnoreDirs)
	IgnorePatterns []string // File patterns to skip (e.g., "*.tmp")
	IncludeHidden  bool     // Include hidden files/dirs (default: false)
}

// Everything visits every folder, hidden and build output included. The
// rudi folder scan and the watch set both use it so they always agree.
var Everything = WalkOptions{IgnoreDirs: []string{}, IncludeHidden: true}

// Walk traverses a directory tree with configurable ignore patterns.
// The visitor function is called for each file and directory, the root
// included. Return filepath.SkipDir from visitor to skip a directory.
func Walk(rootPath string, opts WalkOptions, visitor func(path string, info os.FileInfo) error) error {
	ignoreDirs := opts.IgnoreDirs
	if ignoreDirs == nil {
		ignoreDirs = DefaultIgnoreDirs
	}

	return filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == rootPath {
			return visitor(path, info)
		}

		// Skip hidden files/directories unless explicitly included
		if !opts.IncludeHidden && strings.HasPrefix(info.Name(), ".") {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			for _, ignore := range ignoreDirs {
				if info.Name() == ignore {
					return filepath.SkipDir
				}
			}
		} else {
			for _, pattern := range opts.IgnorePatterns {
				if matched, _ := filepath.Match(pattern, info.Name()); matched {
					return nil
				}
			}
		}

		return visitor(path, info)
	})
}
