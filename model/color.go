package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is an RGB fill color with components in [0, 1], the range PDF
// content streams use for the rg operator.
type Color struct {
	R, G, B float64
}

// Black is the default redaction fill.
var Black = Color{}

var namedColors = map[string]Color{
	"black": Black,
	"white": {R: 1, G: 1, B: 1},
	"gray":  {R: 0.5, G: 0.5, B: 0.5},
	"red":   {R: 1},
}

// ParseColor accepts a color name (black, white, gray, red) or a hex
// triplet such as "#000000" or "1a1a1a".
func ParseColor(s string) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c, nil
	}

	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("invalid color %q: want a name or #rrggbb", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}

	return Color{
		R: float64((v>>16)&0xff) / 255,
		G: float64((v>>8)&0xff) / 255,
		B: float64(v&0xff) / 255,
	}, nil
}

// Operator returns the non-stroking color operator for content streams,
// e.g. "0 0 0 rg".
func (c Color) Operator() string {
	return fmt.Sprintf("%s %s %s rg", formatComponent(c.R), formatComponent(c.G), formatComponent(c.B))
}

func formatComponent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
