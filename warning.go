package redact

import (
	"fmt"
	"strings"
)

// WarningKind classifies a non-fatal issue.
type WarningKind int

const (
	// WarnNotFound: a requested identifier has no record in the document.
	WarnNotFound WarningKind = iota
	// WarnNotLocated: a record was resolved but its text could not be
	// found on any page, so nothing was painted for it.
	WarnNotLocated
	// WarnDuplicate: the document has more than one record with the same
	// identifier; only the first is used.
	WarnDuplicate
	// WarnMalformedIdentifier: a requested identifier is not of the form
	// NNN-NNNNNNNN and cannot match any record.
	WarnMalformedIdentifier
)

func (k WarningKind) String() string {
	switch k {
	case WarnNotFound:
		return "not-found"
	case WarnNotLocated:
		return "not-located"
	case WarnDuplicate:
		return "duplicate"
	case WarnMalformedIdentifier:
		return "malformed-identifier"
	default:
		return "unknown"
	}
}

// Warning is a non-fatal issue found during a run.
type Warning struct {
	Kind       WarningKind
	Identifier string
	Page       int // 1-based; zero when not tied to a page
	Message    string
}

func (w Warning) String() string {
	if w.Page > 0 {
		return fmt.Sprintf("%s (page %d): %s", w.Kind, w.Page, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Kind, w.Message)
}

// FormatWarnings joins warnings one per line.
func FormatWarnings(warnings []Warning) string {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}

// HasWarning reports whether any warning is of kind k.
func HasWarning(warnings []Warning, k WarningKind) bool {
	for _, w := range warnings {
		if w.Kind == k {
			return true
		}
	}
	return false
}
