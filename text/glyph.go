package text

import (
	"math"

	"github.com/tsawler/redact/model"
)

// Glyph ratios relative to font size, used to turn a baseline position into
// a box covering ascenders and descenders.
const (
	ascentRatio  = 0.9
	descentRatio = 0.22

	// defaultFontSize is used when a reader reports a zero size, which
	// happens for rotated or degenerate text matrices.
	defaultFontSize = 10.0
)

// Glyph is a positioned piece of text as reported by the PDF reader,
// usually a single character.
type Glyph struct {
	Text     string
	X, Y     float64 // baseline origin in user space
	Width    float64
	FontName string
	FontSize float64
}

// size returns a usable, positive font size.
func (g Glyph) size() float64 {
	s := math.Abs(g.FontSize)
	if s == 0 {
		return defaultFontSize
	}
	return s
}

// Box returns the glyph's bounding box in user space.
func (g Glyph) Box() model.BBox {
	s := g.size()
	return model.NewBBox(g.X, g.Y-descentRatio*s, math.Abs(g.Width), (ascentRatio+descentRatio)*s)
}
