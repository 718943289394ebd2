package bar

import (
	"errors"
)

var (
	// ErrStepAfterEnd is returned by Step once the bar has finished.
	ErrStepAfterEnd = errors.New("step after completion")

	// ErrInert is returned by Step on a bar whose construction failed.
	ErrInert = errors.New("progress bar was not constructed with a valid total")
)
