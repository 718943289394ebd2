package bar

import (
	"bufio"
	"fmt"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/harrison/pbar/internal/logger"
)

// interceptor diverts terminal log handlers into a buffer while a bar owns
// the terminal. It holds no reference to the Bar so it can also serve as
// the argument of the bar's cleanup.
type interceptor struct {
	mu       sync.Mutex
	registry LogRegistry
	out      *bufio.Writer
	detached []logger.Handler
	capture  *logger.BufferHandler
	released bool
}

// intercept detaches every terminal handler of registry, in order, and
// installs one buffer handler in their place. The buffer uses the first
// detached handler's formatter and the registry's threshold. When no
// terminal handler is attached nothing is installed.
func intercept(registry LogRegistry, out *bufio.Writer) *interceptor {
	ic := &interceptor{registry: registry, out: out}

	var formatter logger.Formatter
	for _, h := range registry.Handlers() {
		if !h.IsTerminal() {
			continue
		}
		if err := registry.RemoveHandler(h); err != nil {
			continue
		}
		if formatter == nil {
			formatter = h.Formatter()
		}
		ic.detached = append(ic.detached, h)
	}
	if len(ic.detached) == 0 {
		return ic
	}

	ic.capture = logger.NewBufferHandler(formatter, registry.Level())
	if err := registry.AddHandler(ic.capture); err != nil {
		// Capture could not be installed: hand the terminal handlers back.
		ic.capture = nil
		_ = ic.restore()
		ic.detached = nil
	}
	return ic
}

// restore removes the capture handler and re-attaches the detached
// handlers in their original order. Every step is attempted; failures are
// collected.
func (ic *interceptor) restore() error {
	var errs *multierror.Error
	if ic.capture != nil {
		if err := guard(func() error { return ic.registry.RemoveHandler(ic.capture) }); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("remove capture handler: %w", err))
		}
	}
	for _, h := range ic.detached {
		if err := guard(func() error { return ic.registry.AddHandler(h) }); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("re-attach %T: %w", h, err))
		}
	}
	if errs != nil {
		errs.ErrorFormat = joinErrors
	}
	return errs.ErrorOrNil()
}

// joinErrors keeps restoration diagnostics on one log line.
func joinErrors(errs []error) string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// release restores the registry and prints the captured lines, skipping
// blank ones. It runs once; later calls return nil. Restoration errors are
// reported through the registry after the lines are printed and are not
// returned; only output errors are.
func (ic *interceptor) release() error {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	if ic.released {
		return nil
	}
	ic.released = true

	restoreErr := ic.restore()

	var writeErr error
	if ic.capture != nil {
		for _, line := range ic.capture.Drain() {
			if strings.TrimSpace(line) == "" {
				continue
			}
			if _, err := ic.out.WriteString(line + "\n"); err != nil {
				writeErr = fmt.Errorf("failed to replay captured logs: %w", err)
				break
			}
		}
	}
	if err := ic.out.Flush(); err != nil && writeErr == nil {
		writeErr = fmt.Errorf("failed to flush output: %w", err)
	}

	if restoreErr != nil {
		_ = guard(func() error {
			ic.registry.Errorf("progress bar could not fully restore log handlers: %v", restoreErr)
			return nil
		})
	}
	return writeErr
}

// captured returns the number of records buffered so far.
func (ic *interceptor) captured() int {
	if ic == nil || ic.capture == nil {
		return 0
	}
	return ic.capture.Len()
}

// guard runs fn and converts a panic into an error, so a misbehaving
// registry cannot abort the release of the terminal.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
