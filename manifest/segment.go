package manifest

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// headerPattern marks the start of a shipment record:
// code, IATA prefix (3 digits), MAWB number (8 digits), quantity, weight.
// The code is any run of letters, digits and underscores in any script.
// RE2's \w and \b are ASCII-only, so the code class is spelled out; a
// leftmost match always starts at the beginning of such a run.
var headerPattern = regexp.MustCompile(`([\p{L}\p{N}_]+)\s+(\d{3})\s+(\d{8})\s+(\d+)\s+([\d.]+)\b`)

// terminatorPattern closes a record. The word is matched whole and in exact case.
var terminatorPattern = regexp.MustCompile(`\bTotal\b`)

// ErrDecode is returned when a page's text is not valid UTF-8.
var ErrDecode = errors.New("page text is not valid UTF-8")

// RawBlock is the trimmed text of one shipment record as it appears in a
// page's extracted text.
type RawBlock struct {
	// Page is the 1-based page number the block was found on.
	Page int
	// Offset is the byte offset of the record header in the page text.
	Offset int
	// Text is the record text from the header through its terminator,
	// with surrounding whitespace trimmed.
	Text string
}

// Segment splits every page into record blocks, in page order and then in
// position order. Pages are scanned independently, so a record is never
// joined across a page break.
func Segment(pages []string) ([]RawBlock, error) {
	var blocks []RawBlock
	for i, text := range pages {
		pageBlocks, err := SegmentPage(i+1, text)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, pageBlocks...)
	}
	return blocks, nil
}

// SegmentPage returns the record blocks of a single page. A page without
// any header yields no blocks and no error.
//
// A block ends at the first whole word "Total" after its header. Without
// one it runs to the next header, or to the end of the page.
func SegmentPage(page int, text string) ([]RawBlock, error) {
	if !utf8.ValidString(text) {
		return nil, fmt.Errorf("page %d: %w", page, ErrDecode)
	}

	matches := headerPattern.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return nil, nil
	}

	blocks := make([]RawBlock, 0, len(matches))
	for i, m := range matches {
		start := m[0]
		end := blockEnd(text, matches, i)
		blocks = append(blocks, RawBlock{
			Page:   page,
			Offset: start,
			Text:   strings.TrimSpace(text[start:end]),
		})
	}
	return blocks, nil
}

// blockEnd computes the exclusive end offset of the i-th record.
// The terminator search starts after the header so the header itself is
// always part of the block, and is not bounded by the next header.
func blockEnd(text string, matches [][]int, i int) int {
	headerEnd := matches[i][1]
	if loc := terminatorPattern.FindStringIndex(text[headerEnd:]); loc != nil {
		return headerEnd + loc[1]
	}
	if i+1 < len(matches) {
		return matches[i+1][0]
	}
	return len(text)
}
