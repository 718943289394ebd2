package bar

import (
	"io"
	"os"
	"time"
	"unicode/utf8"

	"github.com/harrison/pbar/internal/config"
	"github.com/harrison/pbar/internal/logger"
)

// Defaults for a Bar created without options.
const (
	DefaultMarker = '|'
	DefaultLeft   = '['
	DefaultRight  = ']'
	DefaultWidth  = 50
	MaxWidth      = 100
	DefaultSuffix = "{progress}%"
)

// LogRegistry is the logging facility a Bar takes over while it is active.
// *logger.Logger implements it.
type LogRegistry interface {
	// Handlers lists the attached handlers in registration order.
	Handlers() []logger.Handler
	AddHandler(h logger.Handler) error
	RemoveHandler(h logger.Handler) error
	// Level is the registry's effective threshold.
	Level() logger.Level
	Errorf(format string, args ...interface{})
}

type options struct {
	message  string
	marker   rune
	left     rune
	right    rune
	width    int
	suffix   string
	output   io.Writer
	registry LogRegistry
	now      func() time.Time
}

// Option customises a Bar.
type Option func(*options)

func buildOptions(opts []Option) *options {
	o := &options{
		marker:  DefaultMarker,
		left:    DefaultLeft,
		right:   DefaultRight,
		width:   DefaultWidth,
		suffix:  DefaultSuffix,
		output:  os.Stdout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.registry == nil {
		o.registry = logger.Default()
	}
	if o.width < 1 {
		o.width = DefaultWidth
	}
	if o.width > MaxWidth {
		o.width = MaxWidth
	}
	return o
}

// firstRune returns the first character of s, or def when s is empty.
func firstRune(s string, def rune) rune {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || r == utf8.RuneError {
		return def
	}
	return r
}

// WithMessage sets the text shown left of the bar.
func WithMessage(message string) Option {
	return func(o *options) { o.message = message }
}

// WithMarker sets the fill symbol. Only the first character is used.
func WithMarker(marker string) Option {
	return func(o *options) { o.marker = firstRune(marker, DefaultMarker) }
}

// WithDelimiters sets the characters around the bar. Only the first
// character of each is used; empty strings keep the defaults.
func WithDelimiters(left, right string) Option {
	return func(o *options) {
		o.left = firstRune(left, DefaultLeft)
		o.right = firstRune(right, DefaultRight)
	}
}

// WithWidth sets the bar width in characters, capped at MaxWidth.
// Widths below 1 select DefaultWidth.
func WithWidth(width int) Option {
	return func(o *options) { o.width = width }
}

// WithSuffix sets the template rendered right of the bar.
func WithSuffix(suffix string) Option {
	return func(o *options) { o.suffix = suffix }
}

// WithOutput sets the stream the bar is drawn on (default os.Stdout).
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.output = w
		}
	}
}

// WithRegistry sets the logger registry taken over while the bar is active
// (default logger.Default()).
func WithRegistry(r LogRegistry) Option {
	return func(o *options) { o.registry = r }
}

// WithClock replaces time.Now for elapsed time.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// FromConfig applies the appearance settings of a config file.
// Empty or zero fields keep their defaults.
func FromConfig(cfg config.BarConfig) Option {
	return func(o *options) {
		if cfg.Message != "" {
			o.message = cfg.Message
		}
		o.marker = firstRune(cfg.Marker, o.marker)
		o.left = firstRune(cfg.Left, o.left)
		o.right = firstRune(cfg.Right, o.right)
		if cfg.Width != 0 {
			o.width = cfg.Width
		}
		if cfg.Suffix != "" {
			o.suffix = cfg.Suffix
		}
	}
}
