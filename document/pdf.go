package document

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/ledongthuc/pdf"
	"golang.org/x/sync/errgroup"

	"github.com/tsawler/redact/format"
	"github.com/tsawler/redact/model"
	"github.com/tsawler/redact/text"
)

// PDF is an Engine backed by a PDF file held in memory. Text is read with
// ledongthuc/pdf; Save rewrites the file with pdfcpu.
type PDF struct {
	source string // absolute path, empty for in-memory documents
	data   []byte
	view   []byte // what the text reader parses; data with page contents merged
	opts   Options
	pages  int
	info   Info

	mu      sync.Mutex
	layouts []*text.Layout
	fills   map[int][]Fill
	closed  bool
}

// Info is document-level metadata.
type Info struct {
	Pages     int
	Title     string
	Author    string
	Producer  string
	Encrypted bool
}

var _ Engine = (*PDF)(nil)

// Open reads the PDF at path.
func Open(path string, opts Options) (*PDF, error) {
	f, err := format.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	if f != format.PDF {
		return nil, fmt.Errorf("%w: %s is not a PDF", ErrUnreadable, filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	doc, err := OpenBytes(data, opts)
	if err != nil {
		return nil, err
	}
	if abs, err := filepath.Abs(path); err == nil {
		doc.source = abs
	} else {
		doc.source = path
	}
	return doc, nil
}

// OpenBytes parses an in-memory PDF. The slice must not be modified while
// the document is open.
func OpenBytes(data []byte, opts Options) (*PDF, error) {
	if format.DetectFromMagic(data) != format.PDF {
		return nil, fmt.Errorf("%w: missing %%PDF header", ErrUnreadable)
	}

	opts = opts.withDefaults()
	d := &PDF{
		data:  data,
		view:  data,
		opts:  opts,
		fills: make(map[int][]Fill),
	}

	r, err := d.newReader()
	if err != nil {
		return nil, err
	}

	info, err := readInfo(r)
	if err != nil {
		return nil, err
	}
	d.info = info

	if splitContents(r) {
		merged, err := mergeContents(data, opts.Password)
		if err != nil {
			return nil, fmt.Errorf("%w: merge content streams: %v", ErrUnreadable, err)
		}
		d.view = merged
		opts.Logger.Debug("page content streams merged for reading", "bytes", len(merged))
	}
	d.pages = info.Pages
	d.layouts = make([]*text.Layout, d.pages)

	opts.Logger.Debug("document opened", "pages", d.pages, "bytes", len(data), "encrypted", info.Encrypted)
	return d, nil
}

// newReader creates an independent reader over the document view. Readers
// are not shared between goroutines.
func (d *PDF) newReader() (r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r, err = nil, fmt.Errorf("%w: %v", ErrUnreadable, rec)
		}
	}()

	ra := bytes.NewReader(d.view)
	if d.opts.Password != "" {
		r, err = pdf.NewReaderEncrypted(ra, int64(len(d.view)), passwordOnce(d.opts.Password))
	} else {
		r, err = pdf.NewReader(ra, int64(len(d.view)))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return r, nil
}

// passwordOnce offers pw a single time; the reader keeps asking until it
// gets an empty string.
func passwordOnce(pw string) func() string {
	offered := false
	return func() string {
		if offered {
			return ""
		}
		offered = true
		return pw
	}
}

func readInfo(r *pdf.Reader) (info Info, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrUnreadable, rec)
		}
	}()

	trailer := r.Trailer()
	meta := trailer.Key("Info")
	return Info{
		Pages:     r.NumPage(),
		Title:     meta.Key("Title").Text(),
		Author:    meta.Key("Author").Text(),
		Producer:  meta.Key("Producer").Text(),
		Encrypted: !trailer.Key("Encrypt").IsNull(),
	}, nil
}

// splitContents reports whether any page keeps its content in an array of
// streams. The text reader only interprets a single stream.
func splitContents(r *pdf.Reader) (split bool) {
	defer func() {
		if rec := recover(); rec != nil {
			split = false
		}
	}()

	for i := 1; i <= r.NumPage(); i++ {
		if r.Page(i).V.Key("Contents").Kind() == pdf.Array {
			return true
		}
	}
	return false
}

// Info returns document metadata.
func (d *PDF) Info() Info {
	return d.info
}

// PageCount returns the number of pages.
func (d *PDF) PageCount() int {
	return d.pages
}

// PageTexts extracts every page concurrently and returns the texts in page
// order. Layouts are kept for later searches.
func (d *PDF) PageTexts(ctx context.Context) ([]string, error) {
	if err := d.checkOpen(); err != nil {
		return nil, err
	}

	layouts := make([]*text.Layout, d.pages)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.opts.Workers)

	for i := 0; i < d.pages; i++ {
		page := i + 1
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			l, err := d.layout(page)
			if err != nil {
				return err
			}
			layouts[page-1] = l
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	copy(d.layouts, layouts)
	d.mu.Unlock()

	texts := make([]string, len(layouts))
	for i, l := range layouts {
		texts[i] = l.Text()
	}
	d.opts.Logger.Debug("page text extracted", "pages", len(texts), "workers", d.opts.Workers)
	return texts, nil
}

// Layout returns the text layout of a single page.
func (d *PDF) Layout(page int) (*text.Layout, error) {
	if err := d.checkPage(page); err != nil {
		return nil, err
	}

	d.mu.Lock()
	l := d.layouts[page-1]
	d.mu.Unlock()
	if l != nil {
		return l, nil
	}

	l, err := d.layout(page)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.layouts[page-1] = l
	d.mu.Unlock()
	return l, nil
}

// layout reads one page with a private reader.
func (d *PDF) layout(page int) (*text.Layout, error) {
	r, err := d.newReader()
	if err != nil {
		return nil, err
	}
	glyphs, err := pageGlyphs(r, page)
	if err != nil {
		return nil, err
	}
	return text.NewLayout(glyphs, d.opts.layoutOptions()), nil
}

func pageGlyphs(r *pdf.Reader, page int) (glyphs []text.Glyph, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			glyphs, err = nil, fmt.Errorf("%w: page %d: %v", ErrUnreadable, page, rec)
		}
	}()

	p := r.Page(page)
	if p.V.IsNull() {
		return nil, nil
	}

	content := p.Content()
	glyphs = make([]text.Glyph, 0, len(content.Text))
	for _, t := range content.Text {
		// The reader closes every TJ with a synthetic newline glyph.
		if t.S == "\n" {
			continue
		}
		glyphs = append(glyphs, text.Glyph{
			Text:     t.S,
			X:        t.X,
			Y:        t.Y,
			Width:    t.W,
			FontName: t.Font,
			FontSize: t.FontSize,
		})
	}
	return glyphs, nil
}

// Search locates literal on the page using the configured match mode.
func (d *PDF) Search(page int, literal string) ([]model.BBox, error) {
	l, err := d.Layout(page)
	if err != nil {
		return nil, err
	}
	return l.Search(literal, d.opts.Match), nil
}

// Fill queues a rectangle, grown by the configured padding. An empty
// region queues nothing and reports false.
func (d *PDF) Fill(page int, region model.BBox, color model.Color) (bool, error) {
	if err := d.checkPage(page); err != nil {
		return false, err
	}
	if region.IsEmpty() {
		return false, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.fills[page] = append(d.fills[page], Fill{Region: region.Expand(d.opts.Padding), Color: color})
	return true, nil
}

// Fills returns the queued rectangles per page.
func (d *PDF) Fills() map[int][]Fill {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make(map[int][]Fill, len(d.fills))
	for p, fs := range d.fills {
		out[p] = append([]Fill(nil), fs...)
	}
	return out
}

// filledPages returns the pages with queued fills in ascending order.
func (d *PDF) filledPages() []int {
	d.mu.Lock()
	defer d.mu.Unlock()

	pages := make([]int, 0, len(d.fills))
	for p := range d.fills {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages
}

// Close releases the document. It is safe to call more than once.
func (d *PDF) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.layouts = nil
	d.fills = nil
	return nil
}

func (d *PDF) checkOpen() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	return nil
}

func (d *PDF) checkPage(page int) error {
	if err := d.checkOpen(); err != nil {
		return err
	}
	if page < 1 || page > d.pages {
		return fmt.Errorf("%w: %d (document has %d)", ErrPageRange, page, d.pages)
	}
	return nil
}
