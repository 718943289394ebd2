package logger

import (
	"errors"
)

var (
	// ErrHandlerClosed is returned when a closed handler is used or attached.
	ErrHandlerClosed = errors.New("log handler is closed")
	// ErrHandlerAttached is returned when a handler is attached twice.
	ErrHandlerAttached = errors.New("log handler already attached")
	// ErrHandlerNotFound is returned when removing a handler that is not attached.
	ErrHandlerNotFound = errors.New("log handler not attached")
)

// Handler is an output destination registered on a Logger.
type Handler interface {
	// Handle writes a record that already passed the logger's threshold.
	// The handler applies its own threshold from Level.
	Handle(rec Record) error

	// Formatter returns the formatter used to serialize records.
	Formatter() Formatter

	// Level returns the handler's minimum severity.
	Level() Level

	// IsTerminal reports whether the handler writes straight to the
	// terminal stream. Terminal handlers are the ones a progress bar
	// detaches while it owns the terminal.
	IsTerminal() bool
}

// closer is implemented by handlers that can be closed and refuse to be
// re-attached afterwards.
type closer interface {
	Closed() bool
}
