package text

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/redact/model"
)

// MatchMode selects how a search literal is compared with page text.
type MatchMode int

const (
	// MatchExact compares byte for byte.
	MatchExact MatchMode = iota
	// MatchCollapseWhitespace treats any run of whitespace, including line
	// breaks, as a single space on both sides.
	MatchCollapseWhitespace
)

// String returns the mode name used in configuration.
func (m MatchMode) String() string {
	switch m {
	case MatchExact:
		return "exact"
	case MatchCollapseWhitespace:
		return "whitespace"
	default:
		return "unknown"
	}
}

// ParseMatchMode is the inverse of MatchMode.String.
func ParseMatchMode(s string) (MatchMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "exact", "":
		return MatchExact, true
	case "whitespace", "collapse":
		return MatchCollapseWhitespace, true
	default:
		return MatchExact, false
	}
}

// Search finds every non-overlapping occurrence of literal in the page text
// and returns the regions covering them. An occurrence that spans several
// lines yields one region per line. An empty literal matches nothing.
func (l *Layout) Search(literal string, mode MatchMode) []model.BBox {
	if l.normalize {
		literal = norm.NFKC.String(literal)
	}

	var ranges [][2]int
	switch mode {
	case MatchCollapseWhitespace:
		ranges = l.collapsedView().find(collapseWhitespace(literal))
	default:
		ranges = findAll(l.text, literal)
	}

	var regions []model.BBox
	for _, r := range ranges {
		regions = append(regions, l.regionsFor(r[0], r[1])...)
	}
	return regions
}

// findAll returns the byte ranges of non-overlapping occurrences of needle.
func findAll(haystack, needle string) [][2]int {
	if needle == "" {
		return nil
	}

	var out [][2]int
	for pos := 0; pos <= len(haystack)-len(needle); {
		i := strings.Index(haystack[pos:], needle)
		if i < 0 {
			break
		}
		start := pos + i
		out = append(out, [2]int{start, start + len(needle)})
		pos = start + len(needle)
	}
	return out
}

// regionsFor unions the boxes of all glyphs overlapping [start, end), one
// region per line, in line order.
func (l *Layout) regionsFor(start, end int) []model.BBox {
	var (
		regions []model.BBox
		current model.BBox
		line    = -1
	)

	for _, s := range l.spans {
		if s.end <= start {
			continue
		}
		if s.start >= end {
			break
		}
		if s.line != line {
			if line >= 0 {
				regions = append(regions, current)
			}
			current = model.BBox{}
			line = s.line
		}
		current = current.Union(l.glyphs[s.glyph].Box())
	}
	if line >= 0 {
		regions = append(regions, current)
	}
	return regions
}

// collapsedView is the page text with whitespace runs folded to a single
// space, plus a mapping from each byte back to the original text.
type collapsedView struct {
	text  string
	start []int // original start offset of the character at each byte
	end   []int // original end offset of the character at each byte
}

func (l *Layout) collapsedView() *collapsedView {
	l.collapseOnce.Do(func() {
		l.collapsed = buildCollapsedView(l.text)
	})
	return l.collapsed
}

func buildCollapsedView(text string) *collapsedView {
	v := &collapsedView{}
	var sb strings.Builder

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if unicode.IsSpace(r) {
			j := i + size
			for j < len(text) {
				r2, s2 := utf8.DecodeRuneInString(text[j:])
				if !unicode.IsSpace(r2) {
					break
				}
				j += s2
			}
			sb.WriteByte(' ')
			v.start = append(v.start, i)
			v.end = append(v.end, j)
			i = j
			continue
		}

		sb.WriteString(text[i : i+size])
		for k := 0; k < size; k++ {
			v.start = append(v.start, i)
			v.end = append(v.end, i+size)
		}
		i += size
	}

	v.text = sb.String()
	return v
}

func (v *collapsedView) find(needle string) [][2]int {
	found := findAll(v.text, needle)
	for i, r := range found {
		found[i] = [2]int{v.start[r[0]], v.end[r[1]-1]}
	}
	return found
}

// collapseWhitespace folds whitespace runs to one space and trims the ends.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
