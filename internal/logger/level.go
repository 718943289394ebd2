package logger

import (
	"fmt"
	"strings"
)

// Level is the severity of a log record. Higher values are more severe.
type Level int

// Log level constants for filtering
const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[Level]string{
	LevelTrace: "TRACE",
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

// String returns the upper-case level name used in formatted output.
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// Enabled reports whether a record at level msg passes a threshold of l.
func (l Level) Enabled(msg Level) bool {
	return msg >= l
}

// ParseLevel converts a level name to a Level.
// Valid levels: trace, debug, info, warn, error (case-insensitive).
// "warning" is accepted as an alias for warn.
// Returns LevelInfo and false for empty or unknown names.
func ParseLevel(level string) (Level, bool) {
	switch normalizeLogLevel(level) {
	case "trace":
		return LevelTrace, true
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warn":
		return LevelWarn, true
	case "error":
		return LevelError, true
	default:
		return LevelInfo, false
	}
}

// normalizeLogLevel lower-cases and trims a level name.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))
	if normalized == "warning" {
		return "warn"
	}
	return normalized
}
