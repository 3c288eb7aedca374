package application

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	ErrNotFound                = errors.New("not found")
	ErrParse                   = errors.New("malformed snapshot")
	ErrIO                      = errors.New("i/o failure")
	ErrStructuralInconsistency = errors.New("structural inconsistency")
	ErrNoRuleModel             = errors.New("no rule model loaded")
)

// ValidationError represents a validation failure with details
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// StructuralError reports a parser-produced node that is neither an import
// nor a rule. It aborts the rebuild that hit it.
type StructuralError struct {
	Path   string
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("inconsistent rule model at %q: %s", e.Path, e.Reason)
}

func (e *StructuralError) Is(target error) bool {
	return target == ErrStructuralInconsistency
}

// ParseError represents a snapshot file that could not be decoded
type ParseError struct {
	Path   string
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("cannot parse %s (line %d): %s", e.Path, e.Line, e.Reason)
	}
	return fmt.Sprintf("cannot parse %s: %s", e.Path, e.Reason)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// IOError wraps a filesystem failure during a snapshot operation
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func (e *IOError) Is(target error) bool {
	return target == ErrIO
}

// ErrLoopStopped is returned by Loop.Do once the loop no longer runs
var ErrLoopStopped = errors.New("event loop stopped")
