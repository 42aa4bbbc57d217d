// Package redact paints over shipment records in air-cargo manifest PDFs.
//
// A manifest lists one record per master air waybill. Each record starts
// with a header line (code, IATA prefix, MAWB number, quantity, weight) and
// usually ends at a "Total" line. Records are addressed by their composite
// identifier, "<IATA prefix>-<MAWB number>", for example "123-12345678".
//
// Basic usage:
//
//	res, warnings, err := redact.Open("manifest.pdf").
//	    Identifiers("123-12345678", "456-87654321").
//	    Run(ctx)
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", redact.FormatWarnings(warnings))
//	}
//	fmt.Println("wrote", res.Output)
//
// Identifiers that are not in the document do not stop the run; they are
// reported in Result.Unmatched and as warnings. Use Result.NotFound to turn
// them into an error.
package redact

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tsawler/redact/document"
	"github.com/tsawler/redact/manifest"
	"github.com/tsawler/redact/model"
	"github.com/tsawler/redact/text"
)

// Opener opens a document engine. The default opens PDFs from disk.
type Opener func(path string, opts document.Options) (document.Engine, error)

func openPDF(path string, opts document.Options) (document.Engine, error) {
	return document.Open(path, opts)
}

// Redactor provides a fluent interface for configuring a run. Each
// configuration method returns a new Redactor, so a partially configured
// Redactor can be reused safely.
type Redactor struct {
	path    string
	options Options

	logger *slog.Logger
	opener Opener
	now    func() time.Time

	// Accumulated error (fail-fast)
	err error
}

// Open returns a Redactor for the document at path. Nothing is read until
// a terminal operation (Run, Inspect or Text) is called.
func Open(path string) *Redactor {
	return &Redactor{
		path:    path,
		options: defaultOptions(),
		logger:  slog.New(slog.DiscardHandler),
		opener:  openPDF,
		now:     time.Now,
	}
}

// clone creates a shallow copy of the Redactor with a deep copy of options.
func (r *Redactor) clone() *Redactor {
	c := *r
	c.options = r.options.clone()
	return &c
}

// Identifiers adds identifiers to the request. Surrounding whitespace is
// trimmed and empty entries are dropped.
func (r *Redactor) Identifiers(ids ...string) *Redactor {
	c := r.clone()
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			c.options.identifiers = append(c.options.identifiers, id)
		}
	}
	return c
}

// IdentifierList adds a comma-separated list of identifiers.
func (r *Redactor) IdentifierList(list string) *Redactor {
	return r.Identifiers(manifest.ParseIdentifierList(list)...)
}

// Output sets an explicit output path instead of the derived one.
func (r *Redactor) Output(path string) *Redactor {
	c := r.clone()
	c.options.output = path
	return c
}

// OutputNaming changes the suffix and timestamp layout of the derived
// output path.
func (r *Redactor) OutputNaming(suffix, timestampLayout string) *Redactor {
	c := r.clone()
	c.options.suffix = suffix
	if timestampLayout == "" {
		c.err = fmt.Errorf("timestamp layout must not be empty")
		return c
	}
	c.options.timestampLayout = timestampLayout
	return c
}

// FillColor sets the color of the painted rectangles.
func (r *Redactor) FillColor(col model.Color) *Redactor {
	c := r.clone()
	c.options.fillColor = col
	return c
}

// Padding grows each painted region by p points on every side.
func (r *Redactor) Padding(p float64) *Redactor {
	c := r.clone()
	if p < 0 {
		c.err = fmt.Errorf("padding must be non-negative, got %g", p)
		return c
	}
	c.options.padding = p
	return c
}

// Match sets how record text is located on the page.
func (r *Redactor) Match(m text.MatchMode) *Redactor {
	c := r.clone()
	c.options.match = m
	return c
}

// Normalize toggles NFKC folding of page text.
func (r *Redactor) Normalize(on bool) *Redactor {
	c := r.clone()
	c.options.normalize = on
	return c
}

// Workers bounds concurrent page extraction. Zero means one per CPU.
func (r *Redactor) Workers(n int) *Redactor {
	c := r.clone()
	c.options.workers = n
	return c
}

// Password opens an encrypted document.
func (r *Redactor) Password(pw string) *Redactor {
	c := r.clone()
	c.options.password = pw
	return c
}

// Suggestions sets how many near matches to offer per unmatched identifier.
// Zero disables suggestions.
func (r *Redactor) Suggestions(n int) *Redactor {
	c := r.clone()
	if n < 0 {
		n = 0
	}
	c.options.suggestions = n
	return c
}

// WithLogger sets the logger. A nil logger discards output.
func (r *Redactor) WithLogger(l *slog.Logger) *Redactor {
	c := r.clone()
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	c.logger = l
	return c
}

// WithOpener replaces the document engine, mainly for tests.
func (r *Redactor) WithOpener(o Opener) *Redactor {
	c := r.clone()
	if o == nil {
		o = openPDF
	}
	c.opener = o
	return c
}

// WithClock replaces the clock used for the derived output name.
func (r *Redactor) WithClock(now func() time.Time) *Redactor {
	c := r.clone()
	if now == nil {
		now = time.Now
	}
	c.now = now
	return c
}

func (r *Redactor) documentOptions() document.Options {
	return document.Options{
		Workers:   r.options.workers,
		Normalize: r.options.normalize,
		Match:     r.options.match,
		Padding:   r.options.padding,
		Password:  r.options.password,
		Logger:    r.logger,
	}
}

// MustRun wraps a terminal operation, discards warnings and panics on
// error. It is intended for scripts and tests.
//
//	res := redact.MustRun(redact.Open("manifest.pdf").Identifiers(id).Run(ctx))
func MustRun[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
