package logger

import (
	"strings"
	"sync"
)

// BufferHandler keeps formatted records in memory, in the order they were
// handled. It never writes anywhere on its own.
type BufferHandler struct {
	mu        sync.Mutex
	level     Level
	formatter Formatter
	lines     []string
}

// NewBufferHandler creates a BufferHandler. A nil formatter selects the
// default plain-text layout.
func NewBufferHandler(formatter Formatter, level Level) *BufferHandler {
	if formatter == nil {
		formatter = defaultFormatter()
	}
	return &BufferHandler{
		level:     level,
		formatter: formatter,
	}
}

// Handle implements Handler.
func (bh *BufferHandler) Handle(rec Record) error {
	if !bh.level.Enabled(rec.Level) {
		return nil
	}
	formatted := bh.formatter.Format(rec)

	bh.mu.Lock()
	defer bh.mu.Unlock()
	bh.lines = append(bh.lines, formatted)
	return nil
}

// Formatter implements Handler.
func (bh *BufferHandler) Formatter() Formatter {
	return bh.formatter
}

// Level implements Handler.
func (bh *BufferHandler) Level() Level {
	return bh.level
}

// IsTerminal implements Handler.
func (bh *BufferHandler) IsTerminal() bool {
	return false
}

// Len returns the number of buffered records.
func (bh *BufferHandler) Len() int {
	bh.mu.Lock()
	defer bh.mu.Unlock()
	return len(bh.lines)
}

// Drain returns every buffered line, split on newlines, and empties the
// buffer. Blank lines are kept; callers decide what to skip.
func (bh *BufferHandler) Drain() []string {
	bh.mu.Lock()
	raw := bh.lines
	bh.lines = nil
	bh.mu.Unlock()

	var out []string
	for _, formatted := range raw {
		out = append(out, strings.Split(strings.TrimSuffix(formatted, "\n"), "\n")...)
	}
	return out
}
