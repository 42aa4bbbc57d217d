package manifest

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrPrecondition is returned when text handed to the indexer does not
// start with a record header. Blocks produced by Segment always do.
var ErrPrecondition = errors.New("text does not start with a record header")

var identifierPattern = regexp.MustCompile(`^\d{3}-\d{8}$`)

// Record is the parsed header of a shipment record.
type Record struct {
	// Code is the carrier code. It is informational only.
	Code string
	// IATAPrefix is the 3-digit airline prefix.
	IATAPrefix string
	// MAWBNumber is the 8-digit master air waybill serial.
	MAWBNumber string
	// Quantity is the piece count as printed.
	Quantity string
	// Weight is the weight as printed.
	Weight string
}

// Identifier returns the composite lookup key "IATA-MAWB".
func (r Record) Identifier() string {
	return r.IATAPrefix + "-" + r.MAWBNumber
}

// ParseHeader parses the record header at the very start of text.
func ParseHeader(text string) (Record, error) {
	m := headerPattern.FindStringSubmatchIndex(text)
	if m == nil || m[0] != 0 {
		return Record{}, fmt.Errorf("%w: %q", ErrPrecondition, truncate(text, 40))
	}

	field := func(n int) string { return text[m[2*n]:m[2*n+1]] }
	return Record{
		Code:       field(1),
		IATAPrefix: field(2),
		MAWBNumber: field(3),
		Quantity:   field(4),
		Weight:     field(5),
	}, nil
}

// Header parses the block's record header.
func (b RawBlock) Header() (Record, error) {
	return ParseHeader(b.Text)
}

// IsWellFormedIdentifier reports whether s has the "NNN-NNNNNNNN" shape.
// Lookups never depend on it; it only drives user-facing hints.
func IsWellFormedIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}

// ParseIdentifierList splits a comma-separated list of identifiers, trims
// each entry and drops empty ones. Order is preserved.
func ParseIdentifierList(input string) []string {
	var ids []string
	for _, part := range strings.Split(input, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
