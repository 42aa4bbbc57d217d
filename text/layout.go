package text

import (
	"math"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"
)

// LayoutOptions controls how glyphs are assembled into page text.
type LayoutOptions struct {
	// Normalize applies Unicode NFKC to every glyph, folding fullwidth
	// digits and ligatures into their plain forms.
	Normalize bool
	// LineTolerance is the maximum baseline distance, as a fraction of the
	// font size, for two glyphs to share a line. Zero means 0.5.
	LineTolerance float64
}

// span ties a byte range of the page text to the glyph that produced it.
type span struct {
	start, end int
	glyph      int
	line       int
}

// Layout is the plain text of a page together with the position of every
// character that came from a glyph. Inserted spaces and line breaks have no
// position.
type Layout struct {
	text      string
	glyphs    []Glyph
	spans     []span
	lineCount int
	normalize bool

	collapseOnce sync.Once
	collapsed    *collapsedView
}

// NewLayout groups glyphs into lines (top to bottom, then left to right)
// and renders them as text, inserting spaces where the horizontal gap
// between glyphs is wide enough to be a word or column break.
func NewLayout(glyphs []Glyph, opts LayoutOptions) *Layout {
	tol := opts.LineTolerance
	if tol <= 0 {
		tol = 0.5
	}

	cleaned := make([]Glyph, 0, len(glyphs))
	for _, g := range glyphs {
		if opts.Normalize {
			g.Text = norm.NFKC.String(g.Text)
		}
		if g.Text == "" {
			continue
		}
		cleaned = append(cleaned, g)
	}

	lines := groupGlyphsByLine(cleaned, tol)

	l := &Layout{normalize: opts.Normalize, lineCount: len(lines)}
	var sb strings.Builder
	for li, line := range lines {
		metrics := calculateLineMetrics(line)
		for i, g := range line {
			if i > 0 && shouldInsertSpace(line[i-1], g, metrics) {
				sb.WriteByte(' ')
			}
			start := sb.Len()
			sb.WriteString(g.Text)
			l.spans = append(l.spans, span{start: start, end: sb.Len(), glyph: len(l.glyphs), line: li})
			l.glyphs = append(l.glyphs, g)
		}
		if li < len(lines)-1 {
			sb.WriteByte('\n')
		}
	}
	l.text = sb.String()

	return l
}

// Text returns the page text.
func (l *Layout) Text() string {
	return l.text
}

// Lines returns the number of text lines on the page.
func (l *Layout) Lines() int {
	return l.lineCount
}

// Glyphs returns the glyphs in reading order.
func (l *Layout) Glyphs() []Glyph {
	out := make([]Glyph, len(l.glyphs))
	copy(out, l.glyphs)
	return out
}

// lineBucket accumulates glyphs whose baselines are close together.
type lineBucket struct {
	y      float64
	size   float64
	glyphs []Glyph
}

// groupGlyphsByLine buckets glyphs by baseline regardless of their order in
// the content stream. Table rows in invoices are often drawn column by
// column, so stream order alone does not give lines.
func groupGlyphsByLine(glyphs []Glyph, tol float64) [][]Glyph {
	var buckets []*lineBucket

	for _, g := range glyphs {
		var target *lineBucket
		for _, b := range buckets {
			limit := tol * math.Max(b.size, g.size())
			if math.Abs(g.Y-b.y) <= limit {
				target = b
				break
			}
		}
		if target == nil {
			target = &lineBucket{y: g.Y, size: g.size()}
			buckets = append(buckets, target)
		}
		target.glyphs = append(target.glyphs, g)
	}

	// Top of the page first: PDF Y grows upwards.
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].y > buckets[j].y
	})

	lines := make([][]Glyph, len(buckets))
	for i, b := range buckets {
		sort.SliceStable(b.glyphs, func(a, c int) bool {
			return b.glyphs[a].X < b.glyphs[c].X
		})
		lines[i] = b.glyphs
	}
	return lines
}

// lineMetrics holds per-line statistics used for spacing decisions.
type lineMetrics struct {
	isCharacterLevel  bool    // most glyphs carry one or two characters
	hasExplicitSpaces bool    // the stream draws its own space glyphs
	lowGap            float64 // 10th percentile of positive gaps
	typicalGap        float64 // 25th percentile of positive gaps
}

func calculateLineMetrics(line []Glyph) lineMetrics {
	var m lineMetrics
	if len(line) == 0 {
		return m
	}

	totalChars := 0
	for _, g := range line {
		totalChars += len([]rune(g.Text))
		if strings.TrimSpace(g.Text) == "" || strings.Contains(g.Text, " ") {
			m.hasExplicitSpaces = true
		}
	}
	m.isCharacterLevel = float64(totalChars)/float64(len(line)) <= 2.0

	gaps := make([]float64, 0, len(line))
	for i := 0; i < len(line)-1; i++ {
		if strings.TrimSpace(line[i].Text) == "" || strings.TrimSpace(line[i+1].Text) == "" {
			continue
		}
		if gap := horizontalGap(line[i], line[i+1]); gap > 0 {
			gaps = append(gaps, gap)
		}
	}
	if len(gaps) > 0 {
		sort.Float64s(gaps)
		m.lowGap = gaps[len(gaps)/10]
		m.typicalGap = gaps[len(gaps)/4]
	}

	return m
}

func horizontalGap(g, next Glyph) float64 {
	return next.X - (g.X + math.Abs(g.Width))
}

// shouldInsertSpace decides whether the gap between two neighbouring glyphs
// is a word or column break.
func shouldInsertSpace(g, next Glyph, m lineMetrics) bool {
	if strings.HasSuffix(g.Text, " ") || strings.HasPrefix(next.Text, " ") {
		return false
	}

	size := g.size()
	gap := horizontalGap(g, next)
	if gap < size*0.05 {
		return false
	}

	switch {
	case m.isCharacterLevel && m.hasExplicitSpaces:
		// Trust the stream's own spaces; only a much wider gap, such as
		// a table column, adds one.
		threshold := math.Min(math.Max(m.typicalGap*5, size*0.3), size)
		return gap >= threshold
	case m.isCharacterLevel:
		// Kerning noise raises the bar, but never above a narrow space.
		threshold := math.Min(math.Max(m.lowGap*3, size*0.15), size*0.25)
		return gap >= threshold
	default:
		// Word-level runs: half of an estimated space width.
		return gap >= size*0.25*0.5
	}
}
