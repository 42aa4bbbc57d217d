package redact_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/redact"
	"github.com/tsawler/redact/document"
	"github.com/tsawler/redact/internal/testpdf"
)

func TestIntegration_RunOnPDF(t *testing.T) {
	dir := t.TempDir()
	src, err := testpdf.Write(dir, testpdf.Manifest())
	require.NoError(t, err)

	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	res, warnings, err := redact.Open(src).
		IdentifierList("123-12345678, 999-99999999").
		Workers(2).
		WithClock(func() time.Time { return at }).
		Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, redact.OutputPath(src, at), res.Output)
	require.Len(t, res.Matched, 1)
	assert.Equal(t, "ABC 123 12345678 10 250.5\nTotal", res.Matched[0].Block.Text)
	assert.Equal(t, 2, res.Matched[0].Regions, "one region per line")
	assert.Equal(t, []string{"999-99999999"}, res.Unmatched)
	assert.True(t, redact.HasWarning(warnings, redact.WarnNotFound))

	orig, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, testpdf.Manifest(), orig, "input must not change")

	doc, err := document.Open(res.Output, document.DefaultOptions())
	require.NoError(t, err)
	defer doc.Close()
	assert.Equal(t, 2, doc.PageCount())

	// The record's text is gone from the output, not just covered.
	texts, err := doc.PageTexts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"", "XYZ 456 87654321 5 99.0 Total"}, texts)

	inv, _, err := redact.Open(res.Output).Inspect(context.Background())
	require.NoError(t, err)
	require.Len(t, inv.Records, 1)
	assert.Equal(t, "456-87654321", inv.Records[0].Identifier())

	// The output can itself be redacted.
	again, _, err := redact.Open(res.Output).
		Identifiers("456-87654321").
		Output(filepath.Join(dir, "twice.pdf")).
		Run(context.Background())
	require.NoError(t, err)
	require.Len(t, again.Matched, 1)
	assert.Equal(t, 1, again.Matched[0].Regions)

	final, _, err := redact.Open(again.Output).Text(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"", ""}, final)
}

func TestIntegration_SplitContents(t *testing.T) {
	dir := t.TempDir()
	src, err := testpdf.Write(dir, testpdf.SplitManifest())
	require.NoError(t, err)

	res, _, err := redact.Open(src).
		Identifiers("456-87654321").
		Output(filepath.Join(dir, "out.pdf")).
		Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Matched, 1)

	texts, _, err := redact.Open(res.Output).Text(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ABC 123 12345678 10 250.5\nTotal", ""}, texts)
}

func TestIntegration_Inspect(t *testing.T) {
	src, err := testpdf.Write(t.TempDir(), testpdf.Manifest())
	require.NoError(t, err)

	inv, warnings, err := redact.Open(src).Inspect(context.Background())
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, inv.Records, 2)
	assert.Equal(t, "123-12345678", inv.Records[0].Identifier())
	assert.Equal(t, "10", inv.Records[0].Record.Quantity)
	assert.Equal(t, "99.0", inv.Records[1].Record.Weight)
	assert.Equal(t, 2, inv.Info.Pages)
	assert.False(t, inv.Info.Encrypted)
}

func TestIntegration_UnreadableInput(t *testing.T) {
	src, err := testpdf.Write(t.TempDir(), []byte("not a pdf"))
	require.NoError(t, err)

	_, _, err = redact.Open(src).Identifiers("123-12345678").Run(context.Background())
	assert.ErrorIs(t, err, redact.ErrDocumentUnreadable)
	assert.Equal(t, redact.CodeDocumentUnreadable, redact.CodeOf(err))
}
