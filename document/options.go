package document

import (
	"log/slog"
	"runtime"

	"github.com/tsawler/redact/text"
)

// Options configures how a PDF is read and written.
type Options struct {
	// Workers bounds concurrent page extraction. Zero means one per CPU.
	Workers int

	// Normalize applies NFKC to page text and search literals.
	Normalize bool

	// LineTolerance is passed through to text layout.
	LineTolerance float64

	// Match selects how Search compares literals with page text.
	Match text.MatchMode

	// Padding grows every filled region on all sides, in points.
	Padding float64

	// Password opens encrypted documents.
	Password string

	Logger *slog.Logger
}

// DefaultOptions returns options with NFKC normalization, exact matching and
// one worker per CPU.
func DefaultOptions() Options {
	return Options{
		Workers:   runtime.NumCPU(),
		Normalize: true,
		Match:     text.MatchExact,
	}
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.Padding < 0 {
		o.Padding = 0
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}

func (o Options) layoutOptions() text.LayoutOptions {
	return text.LayoutOptions{
		Normalize:     o.Normalize,
		LineTolerance: o.LineTolerance,
	}
}
