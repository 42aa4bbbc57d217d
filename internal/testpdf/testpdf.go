// Package testpdf builds small, valid PDFs for tests.
//
// Every page uses Courier with 600-unit widths, so at the fixed 10pt size
// each character is exactly 6pt wide and positions are easy to predict.
package testpdf

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Line is one text object drawn at (X, Y).
type Line struct {
	X, Y float64
	S    string
}

// Build returns a PDF with one page per element of pages. Each page has a
// single content stream.
func Build(pages ...[]Line) []byte {
	return build(false, pages)
}

// BuildSplit is Build with every line in a content stream of its own, so
// each page's /Contents is an array.
func BuildSplit(pages ...[]Line) []byte {
	return build(true, pages)
}

func build(split bool, pages [][]Line) []byte {
	objs := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"", // page tree, filled in once the page objects are numbered
		"<< /Type /Font /Subtype /Type1 /BaseFont /Courier /Encoding /WinAnsiEncoding /FirstChar 32 /LastChar 126 /Widths [" +
			strings.TrimSpace(strings.Repeat("600 ", 95)) + "] >>",
	}

	kids := make([]string, len(pages))
	for i, lines := range pages {
		var streams []string
		if split {
			for _, l := range lines {
				streams = append(streams, textObject(l))
			}
		} else {
			var cs strings.Builder
			for _, l := range lines {
				cs.WriteString(textObject(l))
			}
			streams = []string{cs.String()}
		}
		if len(streams) == 0 {
			streams = []string{""}
		}

		pageNr := len(objs) + 1
		kids[i] = fmt.Sprintf("%d 0 R", pageNr)

		refs := make([]string, len(streams))
		for j := range streams {
			refs[j] = fmt.Sprintf("%d 0 R", pageNr+1+j)
		}
		contents := refs[0]
		if split {
			contents = "[" + strings.Join(refs, " ") + "]"
		}

		objs = append(objs, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %s >>", contents))
		for _, content := range streams {
			objs = append(objs, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
		}
	}
	objs[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages))

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, body := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objs)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)

	return buf.Bytes()
}

func textObject(l Line) string {
	return fmt.Sprintf("BT /F1 10 Tf %g %g Td (%s) Tj ET\n", l.X, l.Y, l.S)
}

// Manifest returns a two-page manifest. Page 1 holds record 123-12345678
// with its terminator on a second line; page 2 holds 456-87654321 on a
// single line.
func Manifest() []byte {
	return Build(manifestPages()...)
}

func manifestPages() [][]Line {
	return [][]Line{
		{
			{100, 700, "ABC 123 12345678 10 250.5"},
			{100, 680, "Total"},
		},
		{
			{100, 700, "XYZ 456 87654321 5 99.0 Total"},
		},
	}
}

// SplitManifest is Manifest with one content stream per line.
func SplitManifest() []byte {
	return BuildSplit(manifestPages()...)
}

// Write stores data as manifest.pdf in dir and returns the path.
func Write(dir string, data []byte) (string, error) {
	path := filepath.Join(dir, "manifest.pdf")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
