// Package format detects whether an input file is a PDF before the document
// engine is asked to open it.
package format

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// Format represents an input document format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// PDF indicates a PDF document.
	PDF
)

// headerWindow is how far into a file the %PDF- marker may appear. Readers
// accept a header anywhere in the first 1024 bytes.
const headerWindow = 1024

var pdfMagic = []byte("%PDF-")

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case PDF:
		return "PDF"
	default:
		return "Unknown"
	}
}

// DetectFromMagic reports PDF when data contains the %PDF- marker within
// the header window.
func DetectFromMagic(data []byte) Format {
	if len(data) > headerWindow {
		data = data[:headerWindow]
	}
	if bytes.Contains(data, pdfMagic) {
		return PDF
	}
	return Unknown
}

// DetectFromReader inspects the start of r. Content wins over the file
// name: a renamed PDF is still a PDF and a text file named .pdf is not.
func DetectFromReader(r io.ReaderAt) (Format, error) {
	head := make([]byte, headerWindow)
	n, err := r.ReadAt(head, 0)
	if err != nil && err != io.EOF {
		return Unknown, err
	}
	return DetectFromMagic(head[:n]), nil
}

// DetectFile opens path and sniffs its content.
func DetectFile(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return Unknown, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return DetectFromReader(f)
}
