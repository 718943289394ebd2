// Package logger provides the process-wide logging facility for pbar.
//
// A Logger holds an ordered list of handlers (output destinations) and a
// severity threshold. Console handlers write to the terminal, file handlers
// to per-run log files, and buffer handlers keep formatted lines in memory
// so a progress bar can replay them once it releases the terminal.
// Implementations are thread-safe.
package logger

import (
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ConsoleHandler writes formatted records to a terminal stream.
// All output is prefixed with [HH:MM:SS] timestamps by default.
// Color output is automatically enabled for terminal output (os.Stdout/os.Stderr).
type ConsoleHandler struct {
	writer    io.Writer
	level     Level
	formatter Formatter
	mutex     sync.Mutex
}

// NewConsoleHandler creates a ConsoleHandler that writes to the provided io.Writer.
// If writer is nil, records are silently discarded.
// logLevel determines the minimum level for records to be output.
// Valid levels: trace, debug, info, warn, error (case-insensitive).
// If logLevel is empty or invalid, defaults to "info".
func NewConsoleHandler(writer io.Writer, logLevel string) *ConsoleHandler {
	level, _ := ParseLevel(logLevel)

	return &ConsoleHandler{
		writer:    writer,
		level:     level,
		formatter: defaultFormatter().WithColor(isTerminal(writer)),
	}
}

// isTerminal checks if the writer is a terminal that supports colors.
// Returns false when NO_COLOR is set.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	if color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// SetFormatter replaces the handler's formatter. A nil formatter is ignored.
func (ch *ConsoleHandler) SetFormatter(f Formatter) {
	if f == nil {
		return
	}
	ch.mutex.Lock()
	defer ch.mutex.Unlock()
	ch.formatter = f
}

// Formatter implements Handler.
func (ch *ConsoleHandler) Formatter() Formatter {
	ch.mutex.Lock()
	defer ch.mutex.Unlock()
	return ch.formatter
}

// Level implements Handler.
func (ch *ConsoleHandler) Level() Level {
	return ch.level
}

// IsTerminal implements Handler. Console handlers always own the terminal.
func (ch *ConsoleHandler) IsTerminal() bool {
	return true
}

// Handle implements Handler.
func (ch *ConsoleHandler) Handle(rec Record) error {
	if ch.writer == nil {
		return nil
	}
	if !ch.level.Enabled(rec.Level) {
		return nil
	}

	ch.mutex.Lock()
	defer ch.mutex.Unlock()

	_, err := io.WriteString(ch.writer, ch.formatter.Format(rec))
	return err
}
