package document

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/matrix"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/tsawler/redact/model"
	"github.com/tsawler/redact/text"
)

// fontMetrics is what text positioning needs from a font resource.
type fontMetrics struct {
	first   int
	last    int
	widths  []float64
	codeLen int // bytes per character code
}

// width returns the glyph width of code in thousandths of text space.
// Codes outside FirstChar..LastChar are zero wide, as the text reader
// treats them.
func (f fontMetrics) width(code int) float64 {
	if code < f.first || code > f.last || code-f.first >= len(f.widths) {
		return 0
	}
	return f.widths[code-f.first]
}

// codes splits a shown string into character codes.
func (f fontMetrics) codes(data []byte) [][]byte {
	n := f.codeLen
	if n < 1 {
		n = 1
	}
	out := make([][]byte, 0, len(data)/n+1)
	for i := 0; i < len(data); i += n {
		out = append(out, data[i:min(i+n, len(data))])
	}
	return out
}

func codeValue(code []byte) int {
	v := 0
	for _, b := range code {
		v = v<<8 | int(b)
	}
	return v
}

// pageFonts returns a cached lookup of the fonts named in resources.
func pageFonts(pctx *pdfmodel.Context, resources types.Dict) func(name string) fontMetrics {
	cache := make(map[string]fontMetrics)
	return func(name string) fontMetrics {
		if m, ok := cache[name]; ok {
			return m
		}
		m := loadFont(pctx, resources, name)
		cache[name] = m
		return m
	}
}

func loadFont(pctx *pdfmodel.Context, resources types.Dict, name string) fontMetrics {
	m := fontMetrics{codeLen: 1}
	if resources == nil {
		return m
	}

	fonts, err := pctx.DereferenceDict(resources["Font"])
	if err != nil || fonts == nil {
		return m
	}
	fd, err := pctx.DereferenceDict(fonts[name])
	if err != nil || fd == nil {
		return m
	}

	if st := fd.NameEntry("Subtype"); st != nil && *st == "Type0" {
		m.codeLen = 2
		return m
	}

	if v, err := pctx.DereferenceNumber(fd["FirstChar"]); err == nil {
		m.first = int(v)
	}
	if v, err := pctx.DereferenceNumber(fd["LastChar"]); err == nil {
		m.last = int(v)
	}
	widths, err := pctx.DereferenceArray(fd["Widths"])
	if err != nil {
		return m
	}
	m.widths = make([]float64, len(widths))
	for i, o := range widths {
		if v, err := pctx.DereferenceNumber(o); err == nil {
			m.widths[i] = v
		}
	}
	return m
}

// textState is the part of the graphics state that places glyphs. It is
// advanced exactly as the text reader advances it, so boxes computed here
// match the regions Search returns.
type textState struct {
	ctm  matrix.Matrix
	tm   matrix.Matrix
	tlm  matrix.Matrix
	tc   float64
	tw   float64
	th   float64
	tl   float64
	tfs  float64
	rise float64
	font fontMetrics
}

func newTextState() textState {
	return textState{
		ctm:  matrix.IdentMatrix,
		tm:   matrix.IdentMatrix,
		tlm:  matrix.IdentMatrix,
		th:   1,
		font: fontMetrics{codeLen: 1},
	}
}

func translation(tx, ty float64) matrix.Matrix {
	return matrix.Matrix{{1, 0, 0}, {0, 1, 0}, {tx, ty, 1}}
}

func (st *textState) moveLine(tx, ty float64) {
	st.tlm = translation(tx, ty).Multiply(st.tlm)
	st.tm = st.tlm
}

func (st *textState) nextLine() {
	st.moveLine(0, -st.tl)
}

// glyphBox returns the box of a glyph of width w0 at the current position.
func (st *textState) glyphBox(w0 float64) model.BBox {
	trm := matrix.Matrix{{st.tfs * st.th, 0, 0}, {0, st.tfs, 0}, {0, st.rise, 1}}.
		Multiply(st.tm).
		Multiply(st.ctm)
	size := trm[0][0]
	return text.Glyph{
		X:        trm[2][0],
		Y:        trm[2][1],
		Width:    w0 / 1000 * size,
		FontSize: size,
	}.Box()
}

// advance moves past a glyph of width w0 the way the text reader does.
func (st *textState) advance(w0 float64) {
	tx := (w0/1000*st.tfs + st.tc) * st.th
	st.tm = translation(tx, 0).Multiply(st.tm)
}

// kern applies a TJ adjustment.
func (st *textState) kern(v float64) {
	st.tm = translation(-v/1000*st.tfs*st.th, 0).Multiply(st.tm)
}

// blank returns the TJ adjustment that advances as far as a viewer
// advances when it draws code.
func (st *textState) blank(code []byte, w0 float64) float64 {
	if st.tfs == 0 {
		return -w0
	}
	spacing := st.tc
	if st.font.codeLen == 1 && len(code) == 1 && code[0] == ' ' {
		spacing += st.tw
	}
	return -(w0 + spacing*1000/st.tfs)
}

// tjBuilder assembles the operand of a rewritten TJ.
type tjBuilder struct {
	parts []string
	run   []byte
	shift float64
}

func (b *tjBuilder) keep(code []byte) {
	b.flushShift()
	b.run = append(b.run, code...)
}

func (b *tjBuilder) move(v float64) {
	b.flushRun()
	b.shift += v
}

func (b *tjBuilder) flushRun() {
	if len(b.run) > 0 {
		b.parts = append(b.parts, types.NewHexLiteral(b.run).String())
		b.run = nil
	}
}

func (b *tjBuilder) flushShift() {
	if b.shift != 0 {
		b.parts = append(b.parts, pdfNum(b.shift))
		b.shift = 0
	}
}

func (b *tjBuilder) String() string {
	b.flushRun()
	b.flushShift()
	return "[" + strings.Join(b.parts, " ") + "]"
}

// covered reports whether box lies under one of regions. Boxes that only
// share an edge with a region stay; a zero-width glyph counts when its
// origin is inside.
func covered(regions []model.BBox, box model.BBox) bool {
	for _, r := range regions {
		if !r.Intersects(box) {
			continue
		}
		if box.IsEmpty() || r.Intersection(box).Area() > 0 {
			return true
		}
	}
	return false
}

// show runs a text-showing operation. When any of its glyphs is covered it
// returns a replacement in which those glyphs are blank adjustments, so
// the text that stays keeps its position.
func (st *textState) show(op operation, regions []model.BBox) (string, int) {
	var (
		items  []types.Object
		prefix string
	)

	switch op.operator {
	case "Tj":
		if len(op.operands) != 1 {
			return "", 0
		}
		items = op.operands
	case "'":
		if len(op.operands) != 1 {
			return "", 0
		}
		st.nextLine()
		prefix = "T* "
		items = op.operands
	case "\"":
		if len(op.operands) != 3 {
			return "", 0
		}
		vals, ok := numbers(op.operands[:2], 2)
		if !ok {
			return "", 0
		}
		st.tw, st.tc = vals[0], vals[1]
		st.nextLine()
		prefix = fmt.Sprintf("%s Tw %s Tc T* ", pdfNum(st.tw), pdfNum(st.tc))
		items = op.operands[2:]
	case "TJ":
		if len(op.operands) != 1 {
			return "", 0
		}
		arr, ok := op.operands[0].(types.Array)
		if !ok {
			return "", 0
		}
		items = arr
	}

	var (
		tj   tjBuilder
		hits int
	)
	for _, item := range items {
		if data, ok := stringBytes(item); ok {
			for _, code := range st.font.codes(data) {
				w0 := st.font.width(codeValue(code))
				if covered(regions, st.glyphBox(w0)) {
					hits++
					tj.move(st.blank(code, w0))
				} else {
					tj.keep(code)
				}
				st.advance(w0)
			}
			continue
		}
		if v, ok := number(item); ok {
			st.kern(v)
			tj.move(v)
		}
	}

	// The reader closes every TJ with a newline glyph that still advances
	// by the character spacing.
	if op.operator == "TJ" {
		st.advance(st.font.width('\n'))
	}

	if hits == 0 {
		return "", 0
	}
	return prefix + tj.String() + " TJ", hits
}

// scrubText removes every shown glyph whose box overlaps one of regions
// and returns the rewritten stream with the number of glyphs removed.
// Operations that show nothing under a region are copied byte for byte.
func scrubText(src []byte, regions []model.BBox, fonts func(name string) fontMetrics) ([]byte, int, error) {
	ops, err := parseContent(src)
	if err != nil {
		return nil, 0, err
	}

	var (
		out     bytes.Buffer
		st      = newTextState()
		stack   []textState
		cursor  int
		removed int
	)

	for _, op := range ops {
		args := op.operands

		switch op.operator {
		case "q":
			stack = append(stack, st)
		case "Q":
			if n := len(stack); n > 0 {
				st, stack = stack[n-1], stack[:n-1]
			}
		case "cm":
			if v, ok := numbers(args, 6); ok {
				st.ctm = matrix.Matrix{{v[0], v[1], 0}, {v[2], v[3], 0}, {v[4], v[5], 1}}.Multiply(st.ctm)
			}
		case "BT":
			st.tm, st.tlm = matrix.IdentMatrix, matrix.IdentMatrix
		case "Tc":
			if v, ok := numbers(args, 1); ok {
				st.tc = v[0]
			}
		case "Tw":
			if v, ok := numbers(args, 1); ok {
				st.tw = v[0]
			}
		case "Tz":
			if v, ok := numbers(args, 1); ok {
				st.th = v[0] / 100
			}
		case "TL":
			if v, ok := numbers(args, 1); ok {
				st.tl = v[0]
			}
		case "Ts":
			if v, ok := numbers(args, 1); ok {
				st.rise = v[0]
			}
		case "Tf":
			if len(args) == 2 {
				if name, ok := args[0].(types.Name); ok {
					st.font = fonts(name.Value())
				}
				if v, ok := number(args[1]); ok {
					st.tfs = v
				}
			}
		case "Td", "TD":
			if v, ok := numbers(args, 2); ok {
				if op.operator == "TD" {
					st.tl = -v[1]
				}
				st.moveLine(v[0], v[1])
			}
		case "Tm":
			if v, ok := numbers(args, 6); ok {
				m := matrix.Matrix{{v[0], v[1], 0}, {v[2], v[3], 0}, {v[4], v[5], 1}}
				st.tm, st.tlm = m, m
			}
		case "T*":
			st.nextLine()
		case "Tj", "TJ", "'", "\"":
			replacement, n := st.show(op, regions)
			if n == 0 {
				continue
			}
			out.Write(src[cursor:op.start])
			out.WriteString(replacement)
			cursor = op.end
			removed += n
		}
	}

	out.Write(src[cursor:])
	return out.Bytes(), removed, nil
}
