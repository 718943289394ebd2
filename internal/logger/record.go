package logger

import (
	"fmt"
	"time"

	"github.com/harrison/pbar/internal/tmpl"
)

// Record is a single log event as seen by handlers.
type Record struct {
	Time    time.Time
	Level   Level
	Name    string
	Message string
}

// Formatter turns a Record into the text a handler writes.
type Formatter interface {
	Format(rec Record) string
}

// DefaultLayout is the line layout used by handlers created without an
// explicit formatter.
// Format: "[HH:MM:SS] [LEVEL] <message>"
const DefaultLayout = "[{time}] [{level}] {message}"

// layoutFields are the placeholders a TextFormatter layout may reference.
var layoutFields = []string{"time", "level", "name", "message"}

// TextFormatter renders records through a "{field}" layout.
// Each formatted record ends with a newline.
type TextFormatter struct {
	layout     *tmpl.Template
	timeFormat string
	color      bool
}

// NewTextFormatter parses layout and returns a plain-text formatter.
// The layout may reference {time}, {level}, {name} and {message}.
// An empty layout selects DefaultLayout.
func NewTextFormatter(layout string) (*TextFormatter, error) {
	if layout == "" {
		layout = DefaultLayout
	}
	t, err := tmpl.Parse(layout, layoutFields...)
	if err != nil {
		return nil, fmt.Errorf("invalid log layout: %w", err)
	}
	return &TextFormatter{
		layout:     t,
		timeFormat: "15:04:05",
	}, nil
}

// defaultFormatter returns a formatter for DefaultLayout.
func defaultFormatter() *TextFormatter {
	return &TextFormatter{
		layout:     tmpl.MustParse(DefaultLayout, layoutFields...),
		timeFormat: "15:04:05",
	}
}

// WithColor returns a copy of f that colours the level name.
func (f *TextFormatter) WithColor(enabled bool) *TextFormatter {
	c := *f
	c.color = enabled
	return &c
}

// WithTimeFormat returns a copy of f using the given time layout for {time}.
func (f *TextFormatter) WithTimeFormat(layout string) *TextFormatter {
	c := *f
	c.timeFormat = layout
	return &c
}

// Color reports whether level names are coloured.
func (f *TextFormatter) Color() bool {
	return f.color
}

// Format implements Formatter.
func (f *TextFormatter) Format(rec Record) string {
	return f.layout.Execute(func(field string) string {
		switch field {
		case "time":
			return rec.Time.Format(f.timeFormat)
		case "level":
			if f.color {
				return colorizeLevel(rec.Level)
			}
			return rec.Level.String()
		case "name":
			return rec.Name
		case "message":
			return rec.Message
		}
		return ""
	}) + "\n"
}
