package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/harrison/pbar/internal/filelock"
)

// FileOptions configures a FileHandler.
type FileOptions struct {
	// Level is the minimum level written to the file (default "info").
	Level string

	// MaxSizeMB rotates the run log once it grows past this size.
	// Zero uses lumberjack's default of 100MB.
	MaxSizeMB int

	// MaxBackups is the number of rotated files to keep. Zero keeps all.
	MaxBackups int
}

// FileHandler writes records to a timestamped per-run log file in a log
// directory and maintains a latest.log symlink pointing to the most recent
// run. It never writes to the terminal, so a progress bar leaves it alone.
type FileHandler struct {
	logDir    string
	runFile   string
	runID     string
	level     Level
	formatter Formatter
	out       io.WriteCloser
	closed    bool
	mu        sync.Mutex
}

// NewFileHandler creates the log directory if needed, opens
// run-YYYYMMDD-HHMMSS.log inside it and points latest.log at it.
func NewFileHandler(logDir string, opts FileOptions) (*FileHandler, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405")
	runFile := filepath.Join(logDir, fmt.Sprintf("run-%s.log", timestamp))

	out := &lumberjack.Logger{
		Filename:   runFile,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		LocalTime:  true,
	}

	symlinkPath := filepath.Join(logDir, "latest.log")
	err := filelock.WithLock(symlinkPath, func() error {
		return filelock.ReplaceSymlink(filepath.Base(runFile), symlinkPath)
	})
	if err != nil {
		return nil, err
	}

	level, _ := ParseLevel(opts.Level)
	fh := &FileHandler{
		logDir:    logDir,
		runFile:   runFile,
		runID:     uuid.NewString(),
		level:     level,
		formatter: defaultFormatter(),
		out:       out,
	}

	header := fmt.Sprintf("=== pbar run log ===\nRun ID: %s\nStarted at: %s\n\n",
		fh.runID, time.Now().Format(time.RFC3339))
	if _, err := io.WriteString(out, header); err != nil {
		out.Close()
		return nil, fmt.Errorf("failed to write run log header: %w", err)
	}

	return fh, nil
}

// RunFile returns the path of the current run log.
func (fh *FileHandler) RunFile() string {
	return fh.runFile
}

// RunID returns the identifier written in the run log header.
func (fh *FileHandler) RunID() string {
	return fh.runID
}

// SetFormatter replaces the handler's formatter. A nil formatter is ignored.
func (fh *FileHandler) SetFormatter(f Formatter) {
	if f == nil {
		return
	}
	fh.mu.Lock()
	defer fh.mu.Unlock()
	fh.formatter = f
}

// Formatter implements Handler.
func (fh *FileHandler) Formatter() Formatter {
	fh.mu.Lock()
	defer fh.mu.Unlock()
	return fh.formatter
}

// Level implements Handler.
func (fh *FileHandler) Level() Level {
	return fh.level
}

// IsTerminal implements Handler.
func (fh *FileHandler) IsTerminal() bool {
	return false
}

// Handle implements Handler.
func (fh *FileHandler) Handle(rec Record) error {
	if !fh.level.Enabled(rec.Level) {
		return nil
	}

	fh.mu.Lock()
	defer fh.mu.Unlock()
	if fh.closed {
		return ErrHandlerClosed
	}
	if _, err := io.WriteString(fh.out, fh.formatter.Format(rec)); err != nil {
		return fmt.Errorf("failed to write run log: %w", err)
	}
	return nil
}

// Closed reports whether Close has been called.
func (fh *FileHandler) Closed() bool {
	fh.mu.Lock()
	defer fh.mu.Unlock()
	return fh.closed
}

// Close flushes and closes the run log. Closing twice is a no-op.
func (fh *FileHandler) Close() error {
	fh.mu.Lock()
	defer fh.mu.Unlock()

	if fh.closed {
		return nil
	}
	fh.closed = true
	if err := fh.out.Close(); err != nil {
		return fmt.Errorf("failed to close run log: %w", err)
	}
	return nil
}
