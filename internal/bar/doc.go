// Package bar renders a single-line terminal progress bar and keeps log
// output from tearing it apart.
//
// # Usage
//
// Create a Bar with the number of work units and call Step once per unit:
//
//	b, err := bar.New(len(files), bar.WithMessage("Indexing"))
//	if err != nil {
//	    return err
//	}
//	defer b.End()
//	for _, f := range files {
//	    b.Step()
//	    index(f)
//	}
//
// The bar finishes on its own when the last unit is stepped. End finishes it
// early and is safe to call any number of times, so deferring it covers
// early returns and panics. Track wraps the same pattern:
//
//	err := bar.Track(len(files), func(b *bar.Bar) error { ... })
//
// # Output Format
//
// Every Step rewrites the current line in place:
//
//	\r<message> <left><fill><padding><right> <suffix>
//
// for example
//
//	Indexing [|||||||||              ] 42%
//
// The suffix is a template over {idx}, {tot}, {progress} and {time}
// (elapsed mm:ss). Unknown fields are rejected by New.
//
// # Log Capture
//
// While a bar is active it owns the terminal. On the first Step every
// terminal handler of the logger registry (logger.Default() unless
// WithRegistry is given) is detached and replaced by a buffer that formats
// records exactly like the first detached handler. File handlers keep
// writing as usual. When the bar finishes the handlers are re-attached in
// their original order and the buffered lines are printed below the bar:
//
//	[||||||||||||||||] 100%
//
//	[14:05:09] [INFO] Do some work!
//	[14:05:09] [INFO] Done!
package bar
