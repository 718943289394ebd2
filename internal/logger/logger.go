package logger

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Logger is a named registry of handlers with a severity threshold.
// Records below the threshold are dropped before any handler sees them.
type Logger struct {
	name     string
	mu       sync.RWMutex
	level    Level
	handlers []Handler
	now      func() time.Time
}

// New creates a Logger with the given name, threshold and initial handlers.
func New(name string, level Level, handlers ...Handler) *Logger {
	return &Logger{
		name:     name,
		level:    level,
		handlers: append([]Handler(nil), handlers...),
		now:      time.Now,
	}
}

var defaultLogger atomic.Pointer[Logger]

func init() {
	defaultLogger.Store(New("root", LevelInfo, NewConsoleHandler(os.Stderr, "trace")))
}

// Default returns the process-wide logger. It starts with a single console
// handler on os.Stderr at info level.
func Default() *Logger {
	return defaultLogger.Load()
}

// SetDefault replaces the process-wide logger and returns the previous one.
func SetDefault(l *Logger) *Logger {
	return defaultLogger.Swap(l)
}

// Name returns the logger name, available to layouts as {name}.
func (l *Logger) Name() string {
	return l.name
}

// Level returns the logger's threshold.
func (l *Logger) Level() Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

// SetLevel changes the logger's threshold.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// Handlers returns a snapshot of the attached handlers in registration order.
func (l *Logger) Handlers() []Handler {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Handler(nil), l.handlers...)
}

// AddHandler appends h to the handler list.
// Attaching a closed handler or one that is already attached fails.
func (l *Logger) AddHandler(h Handler) error {
	if c, ok := h.(closer); ok && c.Closed() {
		return ErrHandlerClosed
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, existing := range l.handlers {
		if existing == h {
			return ErrHandlerAttached
		}
	}
	l.handlers = append(l.handlers, h)
	return nil
}

// RemoveHandler detaches h, preserving the order of the remaining handlers.
func (l *Logger) RemoveHandler(h Handler) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, existing := range l.handlers {
		if existing == h {
			l.handlers = append(l.handlers[:i:i], l.handlers[i+1:]...)
			return nil
		}
	}
	return ErrHandlerNotFound
}

// Log emits message at level to every handler.
// Handler errors are dropped so one broken destination cannot stop the others.
func (l *Logger) Log(level Level, message string) {
	l.mu.RLock()
	if !l.level.Enabled(level) {
		l.mu.RUnlock()
		return
	}
	handlers := append([]Handler(nil), l.handlers...)
	l.mu.RUnlock()

	rec := Record{
		Time:    l.now(),
		Level:   level,
		Name:    l.name,
		Message: message,
	}
	for _, h := range handlers {
		_ = h.Handle(rec)
	}
}

// Logf is Log with fmt.Sprintf formatting.
func (l *Logger) Logf(level Level, format string, args ...interface{}) {
	if !l.Level().Enabled(level) {
		return
	}
	l.Log(level, fmt.Sprintf(format, args...))
}

// Trace logs a trace-level message (most verbose).
func (l *Logger) Trace(message string) { l.Log(LevelTrace, message) }

// Debug logs a debug-level message.
func (l *Logger) Debug(message string) { l.Log(LevelDebug, message) }

// Info logs an info-level message.
func (l *Logger) Info(message string) { l.Log(LevelInfo, message) }

// Warn logs a warning-level message.
func (l *Logger) Warn(message string) { l.Log(LevelWarn, message) }

// Error logs an error-level message.
func (l *Logger) Error(message string) { l.Log(LevelError, message) }

// Tracef logs a formatted trace-level message.
func (l *Logger) Tracef(format string, args ...interface{}) { l.Logf(LevelTrace, format, args...) }

// Debugf logs a formatted debug-level message.
func (l *Logger) Debugf(format string, args ...interface{}) { l.Logf(LevelDebug, format, args...) }

// Infof logs a formatted info-level message.
func (l *Logger) Infof(format string, args ...interface{}) { l.Logf(LevelInfo, format, args...) }

// Warnf logs a formatted warning-level message.
func (l *Logger) Warnf(format string, args ...interface{}) { l.Logf(LevelWarn, format, args...) }

// Errorf logs a formatted error-level message.
func (l *Logger) Errorf(format string, args ...interface{}) { l.Logf(LevelError, format, args...) }

// Writer returns an io.Writer that logs each written line at level.
// It is meant for log.SetOutput so the standard library logger goes
// through the same handlers.
func (l *Logger) Writer(level Level) io.Writer {
	return &lineWriter{logger: l, level: level}
}

type lineWriter struct {
	mu     sync.Mutex
	logger *Logger
	level  Level
	buf    []byte
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	w.buf = append(w.buf, p...)
	var lines []string
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		lines = append(lines, string(w.buf[:i]))
		w.buf = w.buf[i+1:]
	}
	w.mu.Unlock()

	for _, line := range lines {
		w.logger.Log(w.level, line)
	}
	return len(p), nil
}
