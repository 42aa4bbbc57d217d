// Package document is the PDF engine behind redaction: it reports page
// text, locates literals on a page and writes a copy of the file with filled
// rectangles drawn over chosen regions.
//
// # Reading
//
// Page text comes from github.com/ledongthuc/pdf. Every page is read with
// its own reader, so [PDF.PageTexts] can extract pages concurrently under an
// errgroup limit. The glyphs of a page are assembled by the text package,
// and that layout is kept so [PDF.Search] can map a literal back to glyph
// boxes without parsing the page again.
//
// # Writing
//
// [PDF.Save] re-reads the original bytes with github.com/pdfcpu/pdfcpu and
// rewrites every page with queued fills as a single content stream. Text
// operators are replayed with the same positioning the reader uses, and
// each glyph whose box overlaps a fill is replaced by a blank adjustment of
// equal advance, so the text is gone from the file while the rest of the
// line keeps its place. The rewritten content is wrapped in a save/restore
// pair and followed by the filled rectangles. The result goes to a
// temporary file that is renamed into place. An existing destination, or
// the source itself, is refused.
//
// The reader only interprets a page whose content is one stream. When a
// document splits page content over an array of streams, [OpenBytes]
// merges them with pdfcpu before reading.
//
// Text drawn inside form XObjects is not rewritten; the reader does not
// see it either, so it is never matched.
package document
