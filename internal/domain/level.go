package domain

import "fmt"

// LoggingLevel describes when a rule's evaluation is recorded at runtime.
// The numeric values match the ones the dialogue agent uses on the wire.
type LoggingLevel int

const (
	LevelNever   LoggingLevel = 0
	LevelIfTrue  LoggingLevel = 1
	LevelIfFalse LoggingLevel = 2
	LevelAlways  LoggingLevel = 3
	LevelPartly  LoggingLevel = 9
)

// String returns the symbolic name used in snapshot files
func (l LoggingLevel) String() string {
	switch l {
	case LevelNever:
		return "never"
	case LevelIfTrue:
		return "ifTrue"
	case LevelIfFalse:
		return "ifFalse"
	case LevelAlways:
		return "always"
	case LevelPartly:
		return "partly"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Valid reports whether l is one of the five known levels
func (l LoggingLevel) Valid() bool {
	switch l {
	case LevelNever, LevelIfTrue, LevelIfFalse, LevelAlways, LevelPartly:
		return true
	}
	return false
}

// Next cycles through the levels a user can pick for a single rule.
// Partly is derived, never chosen, so it moves back to Never.
func (l LoggingLevel) Next() LoggingLevel {
	switch l {
	case LevelNever:
		return LevelIfTrue
	case LevelIfTrue:
		return LevelIfFalse
	case LevelIfFalse:
		return LevelAlways
	default:
		return LevelNever
	}
}

// ParseLoggingLevel converts a symbolic name back into a LoggingLevel
func ParseLoggingLevel(s string) (LoggingLevel, error) {
	switch s {
	case "never":
		return LevelNever, nil
	case "ifTrue":
		return LevelIfTrue, nil
	case "ifFalse":
		return LevelIfFalse, nil
	case "always":
		return LevelAlways, nil
	case "partly":
		return LevelPartly, nil
	}
	return LevelNever, fmt.Errorf("unknown logging level %q", s)
}

// AttributeRecord holds the user-configured attributes remembered per node
type AttributeRecord struct {
	Expanded bool
	Level    LoggingLevel
	IsImport bool
}
