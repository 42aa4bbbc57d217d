// Package report writes an audit record of a redaction run as JSON or HTML.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Report is everything a reviewer needs to check a run after the fact.
type Report struct {
	Input       string      `json:"input"`
	Output      string      `json:"output"`
	GeneratedAt time.Time   `json:"generated_at"`
	Pages       int         `json:"pages"`
	Requested   []string    `json:"requested"`
	Matched     []Match     `json:"matched"`
	Unmatched   []Unmatched `json:"unmatched"`
	Fills       int         `json:"fills"`
	Warnings    []string    `json:"warnings,omitempty"`
}

// Match is one redacted record.
type Match struct {
	Identifier string `json:"identifier"`
	Code       string `json:"code"`
	Quantity   string `json:"quantity"`
	Weight     string `json:"weight"`
	Page       int    `json:"page"`
	Regions    int    `json:"regions"`
	// Text is the redacted record text. It is only filled when asked for,
	// since it repeats the content the run removed.
	Text string `json:"text,omitempty"`
}

// Unmatched is a requested identifier with no record in the document.
type Unmatched struct {
	Identifier  string   `json:"identifier"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Format is an output encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatHTML
)

// FormatFor picks the encoding from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".html", ".htm":
		return FormatHTML, nil
	default:
		return FormatJSON, fmt.Errorf("unsupported report extension %q: use .json or .html", filepath.Ext(path))
	}
}

// WriteFile writes r to path in the format implied by its extension.
func WriteFile(path string, r *Report) error {
	f, err := FormatFor(path)
	if err != nil {
		return err
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}

	switch f {
	case FormatHTML:
		err = WriteHTML(out, r)
	default:
		err = WriteJSON(out, r)
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// WriteJSON encodes r as indented JSON.
func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
