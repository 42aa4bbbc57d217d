package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testCharWidth = 6.0
	testFontSize  = 10.0
	testWordGap   = 4.0
)

// row lays out words as one glyph per character on a baseline.
func row(y, x float64, words ...string) []Glyph {
	var gs []Glyph
	for _, w := range words {
		for _, r := range w {
			gs = append(gs, Glyph{Text: string(r), X: x, Y: y, Width: testCharWidth, FontSize: testFontSize})
			x += testCharWidth
		}
		x += testWordGap
	}
	return gs
}

func reversed(gs []Glyph) []Glyph {
	out := make([]Glyph, len(gs))
	for i, g := range gs {
		out[len(gs)-1-i] = g
	}
	return out
}

func TestNewLayout_LinesTopDown(t *testing.T) {
	var glyphs []Glyph
	glyphs = append(glyphs, row(680, 100, "Total")...)
	glyphs = append(glyphs, row(700, 100, "ABC", "123")...)

	l := NewLayout(glyphs, LayoutOptions{})

	assert.Equal(t, "ABC 123\nTotal", l.Text())
	assert.Equal(t, 2, l.Lines())
	assert.Len(t, l.Glyphs(), 11)
}

func TestNewLayout_StreamOrderDoesNotMatter(t *testing.T) {
	glyphs := append(row(700, 100, "CES", "123", "12345678"), row(688, 100, "GENERAL", "CARGO")...)

	inOrder := NewLayout(glyphs, LayoutOptions{})
	shuffled := NewLayout(reversed(glyphs), LayoutOptions{})

	assert.Equal(t, "CES 123 12345678\nGENERAL CARGO", inOrder.Text())
	assert.Equal(t, inOrder.Text(), shuffled.Text())
}

func TestNewLayout_BaselineJitterSharesLine(t *testing.T) {
	glyphs := row(700, 100, "AB")
	glyphs = append(glyphs, Glyph{Text: "C", X: 112, Y: 701.5, Width: testCharWidth, FontSize: testFontSize})

	l := NewLayout(glyphs, LayoutOptions{})

	assert.Equal(t, "ABC", l.Text())
	assert.Equal(t, 1, l.Lines())
}

func TestNewLayout_WordLevelRuns(t *testing.T) {
	tests := []struct {
		name string
		gap  float64
		want string
	}{
		{"wide gap", 3, "Hello World"},
		{"touching", 0.2, "HelloWorld"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			glyphs := []Glyph{
				{Text: "Hello", X: 0, Y: 500, Width: 30, FontSize: 10},
				{Text: "World", X: 30 + tt.gap, Y: 500, Width: 30, FontSize: 10},
			}
			assert.Equal(t, tt.want, NewLayout(glyphs, LayoutOptions{}).Text())
		})
	}
}

func TestNewLayout_ExplicitSpaces(t *testing.T) {
	glyphs := []Glyph{
		{Text: "A", X: 0, Y: 500, Width: 6, FontSize: 10},
		{Text: " ", X: 6, Y: 500, Width: 6, FontSize: 10},
		{Text: "B", X: 12, Y: 500, Width: 6, FontSize: 10},
		{Text: "C", X: 18.5, Y: 500, Width: 6, FontSize: 10},
		{Text: "D", X: 44.5, Y: 500, Width: 6, FontSize: 10},
	}

	l := NewLayout(glyphs, LayoutOptions{})

	// No doubled space after the drawn one, none for the kerning gap, one
	// for the column gap.
	assert.Equal(t, "A BC D", l.Text())
}

func TestNewLayout_Normalize(t *testing.T) {
	glyphs := []Glyph{
		{Text: "１", X: 0, Y: 500, Width: 10, FontSize: 10},
		{Text: "２", X: 10, Y: 500, Width: 10, FontSize: 10},
		{Text: "ﬁ", X: 20, Y: 500, Width: 10, FontSize: 10},
	}

	assert.Equal(t, "12fi", NewLayout(glyphs, LayoutOptions{Normalize: true}).Text())
	assert.Equal(t, "１２ﬁ", NewLayout(glyphs, LayoutOptions{}).Text())
}

func TestNewLayout_DropsEmptyGlyphs(t *testing.T) {
	glyphs := []Glyph{
		{Text: "", X: 0, Y: 500, Width: 6, FontSize: 10},
		{Text: "A", X: 6, Y: 500, Width: 6, FontSize: 10},
	}

	l := NewLayout(glyphs, LayoutOptions{})

	assert.Equal(t, "A", l.Text())
	require.Len(t, l.Glyphs(), 1)
}

func TestNewLayout_Empty(t *testing.T) {
	l := NewLayout(nil, LayoutOptions{})

	assert.Equal(t, "", l.Text())
	assert.Equal(t, 0, l.Lines())
	assert.Empty(t, l.Search("anything", MatchExact))
}

func TestGlyph_Box(t *testing.T) {
	b := Glyph{Text: "A", X: 10, Y: 100, Width: 6, FontSize: 10}.Box()
	assert.InDelta(t, 10, b.X, 1e-9)
	assert.InDelta(t, 97.8, b.Y, 1e-9)
	assert.InDelta(t, 6, b.Width, 1e-9)
	assert.InDelta(t, 11.2, b.Height, 1e-9)

	// A zero size falls back to a default rather than a flat box.
	zero := Glyph{Text: "A", X: 0, Y: 0, Width: 6}.Box()
	assert.Greater(t, zero.Height, 0.0)
}
