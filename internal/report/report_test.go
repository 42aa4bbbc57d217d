package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func sampleReport() *Report {
	return &Report{
		Input:       "manifest.pdf",
		Output:      "manifest_redacted_20240102_030405.pdf",
		GeneratedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Pages:       2,
		Requested:   []string{"123-12345678", "999-00000000"},
		Matched: []Match{{
			Identifier: "123-12345678",
			Code:       "ABC",
			Quantity:   "10",
			Weight:     "250.5",
			Page:       1,
			Regions:    2,
			Text:       "ABC 123 12345678 10 250.5 <fragile>\nTotal",
		}},
		Unmatched: []Unmatched{{Identifier: "999-00000000", Suggestions: []string{"999-00000001"}}},
		Fills:     2,
		Warnings:  []string{"duplicate identifier 456-87654321"},
	}
}

// findByID walks the parsed tree the way a reader would.
func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val == id {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

func countTag(n *html.Node, tag string) int {
	count := 0
	if n.Type == html.ElementNode && n.Data == tag {
		count++
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		count += countTag(c, tag)
	}
	return count
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, sampleReport()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.NotContains(t, out, "<fragile>", "record text is escaped")

	doc, err := html.Parse(strings.NewReader(out))
	require.NoError(t, err)

	matched := findByID(doc, "matched")
	require.NotNil(t, matched)
	assert.Equal(t, 2, countTag(matched, "tr"), "header plus one record")
	assert.Contains(t, textOf(matched), "<fragile>")

	unmatched := findByID(doc, "unmatched")
	require.NotNil(t, unmatched)
	assert.Contains(t, textOf(unmatched), "999-00000001")

	summary := findByID(doc, "summary")
	require.NotNil(t, summary)
	assert.Contains(t, textOf(summary), "2024-01-02T03:04:05Z")
	assert.Contains(t, textOf(doc), "duplicate identifier 456-87654321")
}

func TestWriteHTML_WithoutText(t *testing.T) {
	r := sampleReport()
	r.Matched[0].Text = ""

	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, r))

	doc, err := html.Parse(strings.NewReader(buf.String()))
	require.NoError(t, err)
	matched := findByID(doc, "matched")
	require.NotNil(t, matched)
	assert.Equal(t, 6, countTag(matched, "th"))
	assert.Equal(t, 6, countTag(matched, "td"))
	assert.Zero(t, countTag(matched, "pre"))
	assert.NotContains(t, textOf(matched), "Text")

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, r))
	assert.NotContains(t, buf.String(), `"text"`)
}

func TestWriteHTML_EmptySections(t *testing.T) {
	r := sampleReport()
	r.Matched = nil
	r.Unmatched = nil
	r.Warnings = nil

	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, r))

	doc, err := html.Parse(&buf)
	require.NoError(t, err)
	assert.Nil(t, findByID(doc, "matched"))
	assert.Nil(t, findByID(doc, "unmatched"))
	assert.Equal(t, 0, countTag(doc, "ul"))
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleReport()))

	var decoded Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, *sampleReport(), decoded)
	assert.Contains(t, buf.String(), `"generated_at": "2024-01-02T03:04:05Z"`)
}

func TestFormatFor(t *testing.T) {
	f, err := FormatFor("audit.JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = FormatFor("audit.htm")
	require.NoError(t, err)
	assert.Equal(t, FormatHTML, f)

	_, err = FormatFor("audit.txt")
	assert.Error(t, err)
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, WriteFile(filepath.Join(dir, "r.html"), sampleReport()))
	require.NoError(t, WriteFile(filepath.Join(dir, "r.json"), sampleReport()))
	assert.Error(t, WriteFile(filepath.Join(dir, "r.csv"), sampleReport()))

	data, err := os.ReadFile(filepath.Join(dir, "r.html"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Redaction report")
}
