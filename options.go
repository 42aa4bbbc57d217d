package redact

import (
	"runtime"
	"time"

	"github.com/tsawler/redact/model"
	"github.com/tsawler/redact/text"
)

// Options holds configuration for a redaction run.
type Options struct {
	// Request
	identifiers []string

	// Output naming
	output          string // explicit path; empty means derived
	suffix          string
	timestampLayout string

	// Painting
	fillColor model.Color
	padding   float64

	// Extraction and search
	match     text.MatchMode
	normalize bool
	workers   int
	password  string

	// Unmatched identifiers
	suggestions int
}

// defaultOptions returns the default run options.
func defaultOptions() Options {
	return Options{
		identifiers:     nil,
		suffix:          DefaultSuffix,
		timestampLayout: DefaultTimestampLayout,
		fillColor:       model.Black,
		padding:         0,
		match:           text.MatchExact,
		normalize:       true,
		workers:         runtime.NumCPU(),
		suggestions:     3,
	}
}

// clone creates a deep copy of Options.
func (o Options) clone() Options {
	newOpts := o
	if o.identifiers != nil {
		newOpts.identifiers = make([]string, len(o.identifiers))
		copy(newOpts.identifiers, o.identifiers)
	}
	return newOpts
}

// outputFor returns the explicit output path or derives one from input.
func (o Options) outputFor(input string, now time.Time) string {
	if o.output != "" {
		return o.output
	}
	return outputPath(input, o.suffix, o.timestampLayout, now)
}
