package domain

import "strings"

// PathSeparator joins labels in the textual form of an IdentityPath.
const PathSeparator = "/"

// IdentityPath addresses a node by the ordered labels from the root down.
// Labels are unique among siblings, so a path identifies at most one node.
type IdentityPath []string

// ParsePath splits a textual path like "main/Greetings/greet".
func ParsePath(s string) IdentityPath {
	s = strings.Trim(s, PathSeparator)
	if s == "" {
		return nil
	}
	return IdentityPath(strings.Split(s, PathSeparator))
}

// String returns the labels joined by PathSeparator
func (p IdentityPath) String() string {
	return strings.Join(p, PathSeparator)
}

// Child returns a new path extended by label. The receiver is not modified.
func (p IdentityPath) Child(label string) IdentityPath {
	out := make(IdentityPath, len(p), len(p)+1)
	copy(out, p)
	return append(out, label)
}

// Parent returns the path without its last label
func (p IdentityPath) Parent() IdentityPath {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1]
}

// Last returns the final label, or "" for the empty path
func (p IdentityPath) Last() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Equal reports whether both paths hold the same labels in the same order
func (p IdentityPath) Equal(o IdentityPath) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}
