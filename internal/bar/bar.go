package bar

import (
	"bufio"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cast"

	"github.com/harrison/pbar/internal/tmpl"
)

// State is the lifecycle stage of a Bar.
type State int

const (
	// StateCreated is a bar that has not been stepped yet.
	StateCreated State = iota
	// StateActive is a bar that owns the terminal.
	StateActive
	// StateFinished is a bar that has ended. It is terminal.
	StateFinished
	// StateInert is a bar whose total was invalid. Step fails, End is a no-op.
	StateInert
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateActive:
		return "active"
	case StateFinished:
		return "finished"
	case StateInert:
		return "inert"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Bar is a single-line progress bar for a task with a known number of units.
// A Bar is meant to be driven from one goroutine; the mutex only keeps its
// state consistent if that rule is broken.
type Bar struct {
	mu sync.Mutex

	total     int
	completed int
	progress  int
	started   time.Time
	elapsed   time.Duration
	state     State
	fill      []rune

	message string
	marker  rune
	left    rune
	right   rune
	width   int
	inc     float64
	suffix  *tmpl.Template

	out      *bufio.Writer
	registry LogRegistry
	now      func() time.Time

	ic      *interceptor
	cleanup runtime.Cleanup
}

// New creates a bar for total units of work.
//
// A suffix referencing an unknown field is a programming error and is
// returned. A total below 1 is not: it is reported through the log registry
// and New returns an inert bar whose Step fails with ErrInert and whose End
// does nothing.
func New(total int, opts ...Option) (*Bar, error) {
	o := buildOptions(opts)
	b, err := newBar(o)
	if err != nil {
		return nil, err
	}
	if total < 1 {
		o.registry.Errorf("invalid progress bar total %d: must be a positive integer", total)
		b.state = StateInert
		return b, nil
	}
	b.total = total
	return b, nil
}

// FromValue is New for totals of loose type, such as strings read from
// flags or config. Values that cannot be converted to an integer yield an
// inert bar in the same way as a non-positive total.
func FromValue(total interface{}, opts ...Option) (*Bar, error) {
	n, err := cast.ToIntE(total)
	if err != nil {
		o := buildOptions(opts)
		b, tmplErr := newBar(o)
		if tmplErr != nil {
			return nil, tmplErr
		}
		o.registry.Errorf("invalid progress bar total %v: %v", total, err)
		b.state = StateInert
		return b, nil
	}
	return New(n, opts...)
}

func newBar(o *options) (*Bar, error) {
	suffix, err := tmpl.Parse(o.suffix, suffixFields...)
	if err != nil {
		return nil, fmt.Errorf("invalid progress bar suffix: %w", err)
	}
	return &Bar{
		message:  o.message,
		marker:   o.marker,
		left:     o.left,
		right:    o.right,
		width:    o.width,
		inc:      100 / float64(o.width),
		suffix:   suffix,
		out:      bufio.NewWriter(o.output),
		registry: o.registry,
		now:      o.now,
		state:    StateCreated,
	}, nil
}

// Track runs fn with a new bar and guarantees End runs when fn returns or
// panics. fn's error takes precedence over an error from End.
func Track(total int, fn func(b *Bar) error, opts ...Option) (err error) {
	b, err := New(total, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if endErr := b.End(); err == nil {
			err = endErr
		}
	}()
	return fn(b)
}

// Step advances the bar by one unit and redraws it. The first Step takes
// over the terminal; the Step that reaches the total ends the bar.
func (b *Bar) Step() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateInert:
		return ErrInert
	case StateFinished:
		return ErrStepAfterEnd
	case StateCreated:
		b.activate()
	}

	b.completed++
	b.progress = percent(b.completed, b.total)
	err := b.redraw()

	if b.completed == b.total {
		var errs *multierror.Error
		errs = multierror.Append(errs, err, b.end())
		return errs.ErrorOrNil()
	}
	return err
}

// activate starts the clock and diverts terminal logging.
func (b *Bar) activate() {
	b.started = b.now()
	b.state = StateActive
	b.ic = intercept(b.registry, b.out)
	b.cleanup = runtime.AddCleanup(b, releaseAbandoned, b.ic)
}

// releaseAbandoned gives the terminal back for a bar that was dropped
// while active. It only runs if the garbage collector reclaims the bar.
func releaseAbandoned(ic *interceptor) {
	_, _ = ic.out.WriteString("\n\n")
	_ = ic.release()
}

// End finishes the bar: it moves the cursor below the bar, restores the
// log handlers and prints everything logged while the bar was active.
// Calling End again, or on a bar that was never stepped, does nothing.
func (b *Bar) End() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.end()
}

func (b *Bar) end() error {
	switch b.state {
	case StateInert, StateFinished:
		return nil
	case StateCreated:
		b.state = StateFinished
		return nil
	}
	b.state = StateFinished
	b.cleanup.Stop()

	var errs *multierror.Error
	if err := b.out.Flush(); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("failed to flush output: %w", err))
	}
	if _, err := b.out.WriteString("\n\n"); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("failed to finish progress bar: %w", err))
	}
	if err := b.ic.release(); err != nil {
		errs = multierror.Append(errs, err)
	}
	return errs.ErrorOrNil()
}

// Total returns the number of units the bar was created with.
func (b *Bar) Total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.total
}

// Completed returns the number of units stepped so far.
func (b *Bar) Completed() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.completed
}

// Progress returns the completion percentage shown by the last redraw.
func (b *Bar) Progress() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.progress
}

// Elapsed returns the time between the first Step and the last redraw.
func (b *Bar) Elapsed() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.elapsed
}

// Fill returns the marker symbols currently drawn inside the bar.
func (b *Bar) Fill() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.fill)
}

// Width returns the bar width after clamping.
func (b *Bar) Width() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width
}

// State returns the bar's lifecycle stage.
func (b *Bar) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Captured returns how many log records are waiting to be printed.
func (b *Bar) Captured() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ic.captured()
}
