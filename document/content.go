package document

import (
	"fmt"
	"strconv"
	"strings"

	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// operation is one content stream operator with its operands. start and
// end delimit its source bytes, operands included.
type operation struct {
	operator string
	operands []types.Object
	start    int
	end      int
}

// parseContent splits a decoded content stream into operations.
//
// Strings, names, arrays and dictionaries are parsed by pdfcpu. Numbers and
// operators are read here: pdfcpu takes "0 0 RG" for an indirect reference.
func parseContent(src []byte) ([]operation, error) {
	s := string(src)

	var (
		ops      []operation
		operands []types.Object
		start    = -1
	)

	for i := skipSpace(s, 0); i < len(s); i = skipSpace(s, i) {
		if start < 0 {
			start = i
		}

		switch c := s[i]; {
		case c == '[' || c == '/' || c == '<' || c == '(':
			rest := s[i:]
			obj, err := pdfmodel.ParseObject(&rest)
			if err != nil {
				return nil, fmt.Errorf("content offset %d: %w", i, err)
			}
			operands = append(operands, obj)
			i = len(s) - len(rest)

		case strings.IndexByte(delimiters, c) >= 0:
			return nil, fmt.Errorf("content offset %d: unexpected %q", i, c)

		case isNumberStart(c):
			j := tokenEnd(s, i)
			v, err := strconv.ParseFloat(s[i:j], 64)
			if err != nil {
				return nil, fmt.Errorf("content offset %d: bad number %q", i, s[i:j])
			}
			operands = append(operands, types.Float(v))
			i = j

		default:
			j := tokenEnd(s, i)
			kw := s[i:j]
			i = j

			switch kw {
			case "true", "false":
				operands = append(operands, types.Boolean(kw == "true"))
				continue
			case "null":
				operands = append(operands, nil)
				continue
			case "BI":
				end, err := inlineImageEnd(s, i)
				if err != nil {
					return nil, fmt.Errorf("content offset %d: %w", start, err)
				}
				i = end
			}

			ops = append(ops, operation{operator: kw, operands: operands, start: start, end: i})
			operands, start = nil, -1
		}
	}

	// Operands left without an operator are ignored, as viewers do.
	return ops, nil
}

const delimiters = "()<>[]{}/%"

func isSpace(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isNumberStart(c byte) bool {
	return c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'
}

// skipSpace returns the offset of the next token at or after i, skipping
// whitespace and comments.
func skipSpace(s string, i int) int {
	for i < len(s) {
		switch {
		case isSpace(s[i]):
			i++
		case s[i] == '%':
			for i < len(s) && s[i] != '\n' && s[i] != '\r' {
				i++
			}
		default:
			return i
		}
	}
	return i
}

// tokenEnd returns the offset just past the regular token starting at i.
func tokenEnd(s string, i int) int {
	j := i
	for j < len(s) && !isSpace(s[j]) && strings.IndexByte(delimiters, s[j]) < 0 {
		j++
	}
	if j == i {
		j++
	}
	return j
}

// inlineImageEnd returns the offset just past the EI closing the inline
// image whose BI ends at i. The image data is binary and is skipped whole.
func inlineImageEnd(s string, i int) (int, error) {
	id := -1
	for j := i; j+2 <= len(s); j++ {
		if s[j:j+2] == "ID" && isSpace(s[j-1]) && (j+2 == len(s) || isSpace(s[j+2])) {
			id = j + 3
			break
		}
	}
	if id < 0 {
		return 0, fmt.Errorf("inline image without ID")
	}

	for j := id; j+2 <= len(s); j++ {
		if s[j:j+2] == "EI" && isSpace(s[j-1]) && (j+2 == len(s) || isSpace(s[j+2])) {
			return j + 2, nil
		}
	}
	return 0, fmt.Errorf("inline image without EI")
}

// number returns a numeric operand as a float.
func number(o types.Object) (float64, bool) {
	switch v := o.(type) {
	case types.Float:
		return v.Value(), true
	case types.Integer:
		return float64(v.Value()), true
	}
	return 0, false
}

// numbers returns all operands as floats when there are exactly n of them.
func numbers(args []types.Object, n int) ([]float64, bool) {
	if len(args) != n {
		return nil, false
	}
	out := make([]float64, n)
	for i, a := range args {
		v, ok := number(a)
		if !ok {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

// stringBytes returns the raw bytes of a string operand.
func stringBytes(o types.Object) ([]byte, bool) {
	switch v := o.(type) {
	case types.StringLiteral:
		b, err := types.Unescape(v.Value())
		if err != nil {
			return nil, false
		}
		return b, true
	case types.HexLiteral:
		b, err := v.Bytes()
		if err != nil {
			return nil, false
		}
		return b, true
	}
	return nil, false
}
