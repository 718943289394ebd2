package logger

import (
	"github.com/fatih/color"
)

// levelColors defines consistent colors for each severity.
// Trace is dim, debug cyan, info blue, warn yellow, error red.
var levelColors = map[Level]*color.Color{
	LevelTrace: color.New(color.FgHiBlack),
	LevelDebug: color.New(color.FgCyan),
	LevelInfo:  color.New(color.FgBlue),
	LevelWarn:  color.New(color.FgYellow),
	LevelError: color.New(color.FgRed),
}

// colorizeLevel returns the level name wrapped in its ANSI colour.
// Colour is forced on; whether to colour at all is the formatter's decision.
func colorizeLevel(l Level) string {
	c, ok := levelColors[l]
	if !ok {
		return l.String()
	}
	forced := *c
	forced.EnableColor()
	return forced.Sprint(l.String())
}
