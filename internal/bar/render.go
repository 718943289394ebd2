package bar

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Placeholders a suffix template may use.
const (
	fieldIdx      = "idx"
	fieldTot      = "tot"
	fieldProgress = "progress"
	fieldTime     = "time"
)

var suffixFields = []string{fieldIdx, fieldTot, fieldProgress, fieldTime}

// percent returns ceil(100*completed/total), held at 99 until completed
// reaches total so 100% is only ever shown for a finished bar.
func percent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	p := (100*completed + total - 1) / total
	if p >= 100 && completed < total {
		return 99
	}
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}

// formatElapsed renders d as mm:ss. Minutes are not wrapped into hours.
func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// grow appends markers until the fill covers progress. Each symbol is
// worth inc percent, so the fill rounds up to whole symbols.
func (b *Bar) grow() {
	for float64(len(b.fill))*b.inc < float64(b.progress) && len(b.fill) < b.width {
		b.fill = append(b.fill, b.marker)
	}
}

// render builds the redraw line without the leading carriage return.
func (b *Bar) render() string {
	var sb strings.Builder
	sb.WriteString(b.message)
	sb.WriteByte(' ')
	sb.WriteRune(b.left)
	sb.WriteString(string(b.fill))
	sb.WriteString(strings.Repeat(" ", b.width-len(b.fill)))
	sb.WriteRune(b.right)
	sb.WriteByte(' ')
	sb.WriteString(b.suffix.Execute(b.suffixField))
	return sb.String()
}

func (b *Bar) suffixField(field string) string {
	switch field {
	case fieldIdx:
		return strconv.Itoa(b.completed)
	case fieldTot:
		return strconv.Itoa(b.total)
	case fieldProgress:
		return strconv.Itoa(b.progress)
	case fieldTime:
		return formatElapsed(b.elapsed)
	}
	return ""
}

// redraw rewrites the bar line in place. The stream is flushed before and
// after so no partial line lingers in a buffer.
func (b *Bar) redraw() error {
	b.elapsed = b.now().Sub(b.started)
	b.grow()

	if err := b.out.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	if _, err := b.out.WriteString("\r" + b.render()); err != nil {
		return fmt.Errorf("failed to draw progress bar: %w", err)
	}
	if err := b.out.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	return nil
}
