package bar

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/pbar/internal/config"
	"github.com/harrison/pbar/internal/logger"
	"github.com/harrison/pbar/internal/tmpl"
)

// terminal simulates a console shared by the bar and a console log handler.
type terminal struct {
	out      *bytes.Buffer
	console  *logger.ConsoleHandler
	registry *logger.Logger
}

func newTerminal(t *testing.T) *terminal {
	t.Helper()
	out := &bytes.Buffer{}
	console := logger.NewConsoleHandler(out, "trace")
	f, err := logger.NewTextFormatter("{name}:{level}: {message}")
	require.NoError(t, err)
	console.SetFormatter(f)
	return &terminal{
		out:      out,
		console:  console,
		registry: logger.New("root", logger.LevelInfo, console),
	}
}

func (term *terminal) bar(t *testing.T, total int, opts ...Option) *Bar {
	t.Helper()
	opts = append([]Option{WithOutput(term.out), WithRegistry(term.registry)}, opts...)
	b, err := New(total, opts...)
	require.NoError(t, err)
	return b
}

// line renders the expected redraw for a default-width bar.
func line(fill, pct int) string {
	return fmt.Sprintf("\r [%s%s] %d%%", strings.Repeat("|", fill), strings.Repeat(" ", 50-fill), pct)
}

func TestBarFourStepsNoLogging(t *testing.T) {
	term := newTerminal(t)
	b := term.bar(t, 4)

	var progress []int
	for i := 0; i < 4; i++ {
		require.NoError(t, b.Step())
		progress = append(progress, b.Progress())
	}

	assert.Equal(t, []int{25, 50, 75, 100}, progress)
	assert.Equal(t, StateFinished, b.State())
	assert.Equal(t, 4, b.Completed())
	assert.Equal(t, line(13, 25)+line(25, 50)+line(38, 75)+line(50, 100)+"\n\n", term.out.String())
}

func TestBarFillFollowsGrowthRule(t *testing.T) {
	term := newTerminal(t)
	b := term.bar(t, 2, WithMarker("*"), WithWidth(10))

	require.NoError(t, b.Step())
	assert.Equal(t, 50, b.Progress())
	assert.Equal(t, "*****", b.Fill())
	assert.Equal(t, "\r [*****     ] 50%", term.out.String())

	require.NoError(t, b.Step())
	assert.Equal(t, "**********", b.Fill())
}

func TestBarFillTruncation(t *testing.T) {
	// 100/7 is not a whole number: the fill rounds up to whole symbols
	// and stops at the width.
	term := newTerminal(t)
	b := term.bar(t, 3, WithWidth(7))

	require.NoError(t, b.Step())
	assert.Equal(t, 34, b.Progress())
	assert.Equal(t, 3, len(b.Fill()))
	require.NoError(t, b.Step())
	assert.Equal(t, 5, len(b.Fill()))
	require.NoError(t, b.Step())
	assert.Equal(t, 7, len(b.Fill()))
}

func TestBarCapturesLogsUntilEnd(t *testing.T) {
	term := newTerminal(t)
	b := term.bar(t, 3)

	require.NoError(t, b.Step())
	term.registry.Info("A")
	require.NoError(t, b.Step())
	term.registry.Info("B")

	assert.NotContains(t, term.out.String(), "root:INFO", "logs must not reach the terminal while the bar is active")
	assert.Equal(t, 2, b.Captured())
	assert.NotContains(t, term.registry.Handlers(), logger.Handler(term.console))

	require.NoError(t, b.Step())
	term.registry.Info("C")

	expected := line(17, 34) + line(34, 67) + line(50, 100) +
		"\n\nroot:INFO: A\nroot:INFO: B\nroot:INFO: C\n"
	assert.Equal(t, expected, term.out.String())
	assert.Equal(t, []logger.Handler{term.console}, term.registry.Handlers())
}

func TestBarCapturedFormattingMatchesConsole(t *testing.T) {
	term := newTerminal(t)

	term.registry.Warn("outside")
	before := term.out.String()
	term.out.Reset()

	b := term.bar(t, 1, WithWidth(1))
	term.registry.Warn("not yet active")
	require.NoError(t, b.Step())

	assert.Equal(t, "root:WARN: outside\n", before)
	assert.Equal(t, "root:WARN: not yet active\n\r [|] 100%\n\n", term.out.String())
}

func TestBarEarlyEnd(t *testing.T) {
	term := newTerminal(t)
	b := term.bar(t, 10, WithWidth(10))

	require.NoError(t, b.Step())
	term.registry.Error("stopping early")
	require.NoError(t, b.End())

	assert.Equal(t, "\r [|         ] 10%\n\nroot:ERROR: stopping early\n", term.out.String())
	assert.Equal(t, StateFinished, b.State())
	assert.Equal(t, 1, b.Completed())
}

func TestBarEndIsIdempotent(t *testing.T) {
	term := newTerminal(t)
	b := term.bar(t, 5)

	require.NoError(t, b.Step())
	term.registry.Info("once")
	require.NoError(t, b.End())
	after := term.out.String()

	require.NoError(t, b.End())
	assert.Equal(t, after, term.out.String())
	assert.Equal(t, 1, strings.Count(after, "root:INFO: once"))
	assert.Len(t, term.registry.Handlers(), 1)
}

func TestBarEndBeforeStep(t *testing.T) {
	term := newTerminal(t)
	b := term.bar(t, 5)

	require.NoError(t, b.End())
	assert.Equal(t, StateFinished, b.State())
	assert.Empty(t, term.out.String())
	assert.Equal(t, []logger.Handler{term.console}, term.registry.Handlers())
}

func TestBarStepAfterEnd(t *testing.T) {
	term := newTerminal(t)
	b := term.bar(t, 1)

	require.NoError(t, b.Step())
	err := b.Step()
	assert.ErrorIs(t, err, ErrStepAfterEnd)
	assert.Equal(t, 1, b.Completed())
}

func TestBarInvalidTotal(t *testing.T) {
	for _, total := range []int{0, -3} {
		t.Run(fmt.Sprint(total), func(t *testing.T) {
			term := newTerminal(t)
			b, err := New(total, WithOutput(term.out), WithRegistry(term.registry))
			require.NoError(t, err)
			require.NotNil(t, b)

			assert.Equal(t, StateInert, b.State())
			assert.Contains(t, term.out.String(), "root:ERROR: invalid progress bar total")
			term.out.Reset()

			assert.ErrorIs(t, b.Step(), ErrInert)
			assert.NoError(t, b.End())
			assert.Empty(t, term.out.String())
			assert.Len(t, term.registry.Handlers(), 1)
		})
	}
}

func TestFromValue(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		total int
		state State
	}{
		{"int", 4, 4, StateCreated},
		{"numeric string", "4", 4, StateCreated},
		{"float truncates", 2.9, 2, StateCreated},
		{"non-numeric string", "oops", 0, StateInert},
		{"nil", nil, 0, StateInert},
		{"zero string", "0", 0, StateInert},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term := newTerminal(t)
			b, err := FromValue(tt.value, WithOutput(term.out), WithRegistry(term.registry))
			require.NoError(t, err)
			assert.Equal(t, tt.state, b.State())
			assert.Equal(t, tt.total, b.Total())
			if tt.state == StateInert {
				assert.Contains(t, term.out.String(), "invalid progress bar total")
				assert.ErrorIs(t, b.Step(), ErrInert)
			}
		})
	}
}

func TestBarSuffixTemplate(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := clock
	term := newTerminal(t)
	b := term.bar(t, 100,
		WithMessage("My progress bar"),
		WithMarker("*"),
		WithWidth(20),
		WithSuffix("{o.progress}% [{time}s] {idx}/{tot}"),
		WithClock(func() time.Time { return now }),
	)

	require.NoError(t, b.Step())
	now = clock.Add(12 * time.Second)
	for i := 0; i < 34; i++ {
		require.NoError(t, b.Step())
	}

	assert.True(t, strings.HasSuffix(term.out.String(), "\rMy progress bar [*******             ] 35% [00:12s] 35/100"),
		"got %q", term.out.String())
	assert.Equal(t, 12*time.Second, b.Elapsed())
}

func TestBarSuffixUnknownField(t *testing.T) {
	term := newTerminal(t)
	_, err := New(3, WithOutput(term.out), WithRegistry(term.registry), WithSuffix("{progress}% eta {eta}"))
	require.Error(t, err)

	var fieldErr *tmpl.FieldError
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, "eta", fieldErr.Field)

	_, err = FromValue("oops", WithSuffix("{eta}"), WithRegistry(term.registry))
	assert.True(t, errors.As(err, &fieldErr))
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		d        time.Duration
		expected string
	}{
		{0, "00:00"},
		{999 * time.Millisecond, "00:00"},
		{65 * time.Second, "01:05"},
		{59*time.Minute + 59*time.Second, "59:59"},
		{125 * time.Minute, "125:00"},
		{-time.Second, "00:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, formatElapsed(tt.d), "formatElapsed(%v)", tt.d)
	}
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 34, percent(1, 3))
	assert.Equal(t, 100, percent(3, 3))
	assert.Equal(t, 1, percent(1, 1000))
	assert.Equal(t, 99, percent(199, 200), "100% is reserved for a finished bar")
	assert.Equal(t, 0, percent(0, 0))
}

func TestWidthClamp(t *testing.T) {
	term := newTerminal(t)
	assert.Equal(t, MaxWidth, term.bar(t, 1, WithWidth(500)).Width())
	assert.Equal(t, DefaultWidth, term.bar(t, 1, WithWidth(0)).Width())
	assert.Equal(t, DefaultWidth, term.bar(t, 1, WithWidth(-4)).Width())
	assert.Equal(t, 7, term.bar(t, 1, WithWidth(7)).Width())
}

func TestDelimitersUseFirstCharacter(t *testing.T) {
	term := newTerminal(t)
	b := term.bar(t, 1, WithWidth(2), WithDelimiters("<<", "}}"), WithMarker("#-"))
	require.NoError(t, b.Step())
	assert.True(t, strings.HasPrefix(term.out.String(), "\r <##} 100%"), "got %q", term.out.String())

	term.out.Reset()
	b = term.bar(t, 1, WithWidth(1), WithDelimiters("", ""), WithMarker(""))
	require.NoError(t, b.Step())
	assert.True(t, strings.HasPrefix(term.out.String(), "\r [|] 100%"), "got %q", term.out.String())
}

func TestFromConfig(t *testing.T) {
	cfg := config.DefaultConfig().Bar
	cfg.Message = "Configured"
	cfg.Marker = "="
	cfg.Width = 4
	cfg.Suffix = "{idx}/{tot}"

	term := newTerminal(t)
	b := term.bar(t, 2, FromConfig(cfg))
	require.NoError(t, b.Step())
	assert.Equal(t, "\rConfigured [==  ] 1/2", term.out.String())
}

// TestBarProgressInvariants drives bars of many sizes and checks the
// monotonicity and bounds of progress and fill.
func TestBarProgressInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		total := 1 + rng.Intn(300)
		width := 1 + rng.Intn(120)

		term := newTerminal(t)
		b := term.bar(t, total, WithWidth(width))

		lastPct, lastFill := 0, 0
		for step := 1; step <= total; step++ {
			require.NoError(t, b.Step())
			pct, fill := b.Progress(), len([]rune(b.Fill()))

			require.GreaterOrEqual(t, pct, lastPct)
			require.GreaterOrEqual(t, fill, lastFill)
			require.LessOrEqual(t, fill, b.Width())
			require.Equal(t, step == total, pct == 100, "total=%d step=%d pct=%d", total, step, pct)
			lastPct, lastFill = pct, fill
		}
		require.Equal(t, StateFinished, b.State())
		require.Equal(t, total, b.Completed())
		require.Equal(t, b.Width(), len([]rune(b.Fill())))
	}
}

func TestFileHandlersKeepWriting(t *testing.T) {
	term := newTerminal(t)
	file := logger.NewBufferHandler(nil, logger.LevelTrace)
	require.NoError(t, term.registry.AddHandler(file))

	b := term.bar(t, 2)
	require.NoError(t, b.Step())
	term.registry.Info("to both")

	assert.Equal(t, 1, file.Len(), "non-terminal handlers are not delayed")
	require.NoError(t, b.Step())

	assert.Equal(t, []logger.Handler{file, term.console}, term.registry.Handlers())
	assert.Contains(t, term.out.String(), "\n\nroot:INFO: to both\n")
}

func TestTrack(t *testing.T) {
	term := newTerminal(t)
	var tracked *Bar
	boom := errors.New("boom")

	err := Track(10, func(b *Bar) error {
		tracked = b
		require.NoError(t, b.Step())
		term.registry.Info("inside")
		return boom
	}, WithOutput(term.out), WithRegistry(term.registry))

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateFinished, tracked.State())
	assert.Contains(t, term.out.String(), "\n\nroot:INFO: inside\n")
	assert.Equal(t, []logger.Handler{term.console}, term.registry.Handlers())
}

func TestTrackPanicStillEnds(t *testing.T) {
	term := newTerminal(t)
	assert.Panics(t, func() {
		_ = Track(3, func(b *Bar) error {
			_ = b.Step()
			panic("worker crashed")
		}, WithOutput(term.out), WithRegistry(term.registry))
	})
	assert.Equal(t, []logger.Handler{term.console}, term.registry.Handlers())
}

func TestTrackTemplateError(t *testing.T) {
	called := false
	err := Track(3, func(*Bar) error { called = true; return nil }, WithSuffix("{nope}"))
	assert.Error(t, err)
	assert.False(t, called)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "created", StateCreated.String())
	assert.Equal(t, "active", StateActive.String())
	assert.Equal(t, "finished", StateFinished.String())
	assert.Equal(t, "inert", StateInert.String())
	assert.Equal(t, "State(9)", State(9).String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("terminal gone") }

func TestBarOutputErrorsStillRestoreHandlers(t *testing.T) {
	term := newTerminal(t)
	b, err := New(2, WithOutput(failingWriter{}), WithRegistry(term.registry))
	require.NoError(t, err)

	assert.Error(t, b.Step())
	assert.Error(t, b.Step())
	assert.Equal(t, StateFinished, b.State())
	assert.Equal(t, []logger.Handler{term.console}, term.registry.Handlers())
}
