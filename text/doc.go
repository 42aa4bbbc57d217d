// Package text turns positioned glyphs into page text and maps text back to
// page regions.
//
// # Layout
//
// [NewLayout] buckets glyphs into lines by baseline, orders lines from the
// top of the page down and glyphs from left to right, and inserts spaces
// where the gap between neighbours looks like a word or column break. The
// resulting string is what record segmentation runs on.
//
// # Search
//
// [Layout.Search] locates a literal in the page text and returns the union
// of the glyph boxes it covers, one region per line. Inserted spaces and
// line breaks have no box of their own, so a match never grows beyond the
// glyphs it actually touches.
//
// # Normalization
//
// With [LayoutOptions.Normalize] set, glyph text and search literals are
// both folded with Unicode NFKC, so fullwidth digits in CJK invoices still
// match the ASCII header pattern.
package text
