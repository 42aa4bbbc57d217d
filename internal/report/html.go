package report

import (
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const stylesheet = `body{font-family:sans-serif;margin:2em}
table{border-collapse:collapse}
th,td{border:1px solid #ccc;padding:4px 8px;text-align:left;vertical-align:top}
pre{margin:0;white-space:pre-wrap}
.none{color:#888}`

// WriteHTML renders r as a standalone HTML page.
func WriteHTML(w io.Writer, r *Report) error {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	head := el(atom.Head, nil,
		el(atom.Meta, []html.Attribute{{Key: "charset", Val: "utf-8"}}),
		el(atom.Title, nil, txt("Redaction report")),
		el(atom.Style, nil, txt(stylesheet)),
	)

	body := el(atom.Body, nil,
		el(atom.H1, nil, txt("Redaction report")),
		summary(r),
		el(atom.H2, nil, txt("Redacted records")),
		matchedTable(r.Matched),
		el(atom.H2, nil, txt("Not found")),
		unmatchedTable(r.Unmatched),
	)
	if len(r.Warnings) > 0 {
		list := el(atom.Ul, nil)
		for _, w := range r.Warnings {
			list.AppendChild(el(atom.Li, nil, txt(w)))
		}
		body.AppendChild(el(atom.H2, nil, txt("Warnings")))
		body.AppendChild(list)
	}

	doc.AppendChild(el(atom.Html, []html.Attribute{{Key: "lang", Val: "en"}}, head, body))
	return html.Render(w, doc)
}

func summary(r *Report) *html.Node {
	dl := el(atom.Dl, []html.Attribute{{Key: "id", Val: "summary"}})
	add := func(term, value string) {
		dl.AppendChild(el(atom.Dt, nil, txt(term)))
		dl.AppendChild(el(atom.Dd, nil, txt(value)))
	}
	add("Input", r.Input)
	add("Output", r.Output)
	add("Generated", r.GeneratedAt.Format(time.RFC3339))
	add("Pages", strconv.Itoa(r.Pages))
	add("Requested", strings.Join(r.Requested, ", "))
	add("Regions filled", strconv.Itoa(r.Fills))
	return dl
}

func matchedTable(matches []Match) *html.Node {
	if len(matches) == 0 {
		return el(atom.P, []html.Attribute{{Key: "class", Val: "none"}}, txt("None."))
	}

	withText := false
	for _, m := range matches {
		withText = withText || m.Text != ""
	}

	header := row(atom.Th, "Identifier", "Code", "Quantity", "Weight", "Page", "Regions")
	if withText {
		header.AppendChild(el(atom.Th, nil, txt("Text")))
	}
	table := el(atom.Table, []html.Attribute{{Key: "id", Val: "matched"}}, header)
	for _, m := range matches {
		tr := row(atom.Td, m.Identifier, m.Code, m.Quantity, m.Weight, strconv.Itoa(m.Page), strconv.Itoa(m.Regions))
		if withText {
			tr.AppendChild(el(atom.Td, nil, el(atom.Pre, nil, txt(m.Text))))
		}
		table.AppendChild(tr)
	}
	return table
}

func unmatchedTable(unmatched []Unmatched) *html.Node {
	if len(unmatched) == 0 {
		return el(atom.P, []html.Attribute{{Key: "class", Val: "none"}}, txt("None."))
	}

	table := el(atom.Table, []html.Attribute{{Key: "id", Val: "unmatched"}},
		row(atom.Th, "Identifier", "Did you mean"))
	for _, u := range unmatched {
		table.AppendChild(row(atom.Td, u.Identifier, strings.Join(u.Suggestions, ", ")))
	}
	return table
}

func row(cell atom.Atom, values ...string) *html.Node {
	tr := el(atom.Tr, nil)
	for _, v := range values {
		tr.AppendChild(el(cell, nil, txt(v)))
	}
	return tr
}

func el(a atom.Atom, attrs []html.Attribute, children ...*html.Node) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

func txt(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
