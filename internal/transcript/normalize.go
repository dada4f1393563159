// Package transcript normalizes recognized text before it is committed.
package transcript

import "strings"

// Options controls transcript formatting behavior.
type Options struct {
	TrailingSpace bool
}

// Normalize collapses runs of whitespace, trims the ends, and optionally
// appends a single trailing space so consecutive dictations stay separated.
// Whitespace-only input normalizes to "".
func Normalize(raw string, opts Options) string {
	normalized := strings.Join(strings.Fields(raw), " ")
	if normalized == "" {
		return ""
	}
	if opts.TrailingSpace {
		return normalized + " "
	}
	return normalized
}
