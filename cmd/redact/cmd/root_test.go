package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/redact"
	"github.com/tsawler/redact/document"
	"github.com/tsawler/redact/internal/config"
	"github.com/tsawler/redact/internal/report"
	"github.com/tsawler/redact/internal/testpdf"
	"github.com/tsawler/redact/manifest"
	"github.com/tsawler/redact/pkg/version"
)

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func manifestFile(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	path, err := testpdf.Write(dir, testpdf.Manifest())
	require.NoError(t, err)
	return dir, path
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{"run", "inspect", "text", "config", "version"} {
		c, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, c.Name())
	}
}

func TestRootCmd_InvalidLogLevel(t *testing.T) {
	_, _, err := execute(t, "version", "--log-level", "loud")
	assert.ErrorContains(t, err, "invalid log level")
}

func TestRootCmd_MissingConfigFile(t *testing.T) {
	_, _, err := execute(t, "version", "--config", filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestVersionCmd(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "redact "+version.Version)
	assert.Contains(t, out, "commit")

	out, _, err = execute(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, version.Version, strings.TrimSpace(out))

	out, _, err = execute(t, "version", "--json")
	require.NoError(t, err)
	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, version.Version, info["version"])
	assert.Contains(t, info, "go_version")
}

func TestRunCmd_WritesOutputAndReport(t *testing.T) {
	dir, src := manifestFile(t)
	out := filepath.Join(dir, "clean.pdf")
	rep := filepath.Join(dir, "audit.json")

	stdout, stderr, err := execute(t, "run", src,
		"--ids", "123-12345678, 999-99999999",
		"--out", out,
		"--report", rep,
		"--verbose")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Redacted 1 of 2 identifiers")
	assert.Contains(t, stdout, out)
	assert.Contains(t, stdout, "999-99999999")
	assert.Contains(t, stdout, "123-12345678 (page 1, 2 regions)")
	assert.Contains(t, stdout, "    ABC 123 12345678 10 250.5")
	assert.Contains(t, stderr, "warning: identifier 999-99999999 not found")

	_, err = os.Stat(out)
	require.NoError(t, err)

	data, err := os.ReadFile(rep)
	require.NoError(t, err)
	var got report.Report
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, out, got.Output)
	require.Len(t, got.Matched, 1)
	assert.Equal(t, "ABC", got.Matched[0].Code)
	assert.Empty(t, got.Matched[0].Text)
	require.Len(t, got.Unmatched, 1)
	assert.Equal(t, "999-99999999", got.Unmatched[0].Identifier)
}

func TestRunCmd_ReportText(t *testing.T) {
	dir, src := manifestFile(t)
	rep := filepath.Join(dir, "audit.json")

	_, _, err := execute(t, "run", src,
		"--ids", "123-12345678",
		"--out", filepath.Join(dir, "clean.pdf"),
		"--report", rep,
		"--report-text")
	require.NoError(t, err)

	data, err := os.ReadFile(rep)
	require.NoError(t, err)
	var got report.Report
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got.Matched, 1)
	assert.Equal(t, "ABC 123 12345678 10 250.5\nTotal", got.Matched[0].Text)
}

func TestRunCmd_WarningsPrintedOnFailure(t *testing.T) {
	_, src := manifestFile(t)

	_, stderr, err := execute(t, "run", src, "--ids", "12345678", "--out", src)

	require.Error(t, err)
	assert.Equal(t, 5, ExitCode(err))
	assert.Contains(t, stderr, `"12345678" is not of the form NNN-NNNNNNNN`)
}

func TestRunCmd_Strict(t *testing.T) {
	dir, src := manifestFile(t)
	out := filepath.Join(dir, "clean.pdf")

	_, _, err := execute(t, "run", src, "--ids", "999-99999999", "--out", out, "--strict")

	require.Error(t, err)
	assert.True(t, errors.Is(err, redact.ErrIdentifierNotFound))
	assert.Equal(t, 4, ExitCode(err))
	_, statErr := os.Stat(out)
	assert.NoError(t, statErr, "output is still written")
}

func TestRunCmd_NoIdentifiers(t *testing.T) {
	dir, src := manifestFile(t)

	_, _, err := execute(t, "run", src)

	assert.True(t, errors.Is(err, redact.ErrNoIdentifiers))
	assert.Equal(t, 2, ExitCode(err))
	entries, _ := os.ReadDir(dir)
	assert.Len(t, entries, 1, "nothing written")
}

func TestRunCmd_BadFlags(t *testing.T) {
	dir, src := manifestFile(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"color", []string{"--color", "mauve"}, "invalid color"},
		{"match", []string{"--match", "fuzzy"}, "invalid match mode"},
		{"report", []string{"--report", filepath.Join(dir, "r.txt")}, "unsupported report extension"},
		{"padding", []string{"--padding", "-2"}, "padding"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"run", src, "--ids", "123-12345678"}, tt.args...)
			_, _, err := execute(t, args...)
			assert.ErrorContains(t, err, tt.want)
		})
	}

	entries, _ := os.ReadDir(dir)
	assert.Len(t, entries, 1, "nothing written")
}

func TestRunCmd_Unreadable(t *testing.T) {
	src, err := testpdf.Write(t.TempDir(), []byte("plain text"))
	require.NoError(t, err)

	_, _, err = execute(t, "run", src, "--ids", "123-12345678")

	assert.Equal(t, 3, ExitCode(err))
}

func TestInspectCmd_JSON(t *testing.T) {
	_, src := manifestFile(t)

	out, _, err := execute(t, "inspect", src, "--json")
	require.NoError(t, err)

	var info inventoryInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, 2, info.Pages)
	require.Len(t, info.Records, 2)
	assert.Equal(t, recordInfo{
		Identifier: "456-87654321",
		Code:       "XYZ",
		Quantity:   "5",
		Weight:     "99.0",
		Page:       2,
	}, info.Records[1])
}

func TestInspectCmd_Text(t *testing.T) {
	_, src := manifestFile(t)

	out, _, err := execute(t, "inspect", src)
	require.NoError(t, err)
	assert.Contains(t, out, "2 records on 2 pages")
	assert.Contains(t, out, "123-12345678")
	assert.NotContains(t, out, "(duplicate)")
}

func TestToInventoryInfo_MarksDuplicates(t *testing.T) {
	blocks, err := manifest.Segment([]string{
		"ABC 123 12345678 1 1.0 Total",
		"ABC 123 12345678 2 2.0 Total",
	})
	require.NoError(t, err)
	ix, err := manifest.NewIndex(blocks)
	require.NoError(t, err)

	info := toInventoryInfo(&redact.Inventory{Pages: 2, Records: ix.Entries(), Duplicates: ix.Duplicates()})

	require.Len(t, info.Records, 2)
	assert.False(t, info.Records[0].Duplicate)
	assert.True(t, info.Records[1].Duplicate)
}

func TestToInventoryInfo_Metadata(t *testing.T) {
	info := toInventoryInfo(&redact.Inventory{
		Pages: 1,
		Info:  document.Info{Pages: 1, Title: "Manifest 42", Producer: "cargo-suite"},
	})

	assert.Equal(t, "Manifest 42", info.Title)
	assert.Equal(t, "cargo-suite", info.Producer)
	assert.False(t, info.Encrypted)

	data, err := json.Marshal(toInventoryInfo(&redact.Inventory{Pages: 1}))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "title", "empty metadata is omitted")
}

func TestTextCmd(t *testing.T) {
	_, src := manifestFile(t)

	out, _, err := execute(t, "text", src, "--page", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "--- page 2 ---")
	assert.Contains(t, out, "XYZ 456 87654321 5 99.0 Total")
	assert.NotContains(t, out, "ABC")

	out, _, err = execute(t, "text", src)
	require.NoError(t, err)
	assert.Contains(t, out, "--- page 1 ---\nABC 123 12345678 10 250.5\nTotal\n")

	_, _, err = execute(t, "text", src, "--page", "5")
	assert.ErrorContains(t, err, "out of range")
}

func TestConfigInitCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "redact.yaml")

	out, _, err := execute(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Created "+path)

	cfg, err := config.Load(".", path)
	require.NoError(t, err)
	assert.Equal(t, "black", cfg.Redaction.FillColor)
	assert.Equal(t, "warn", cfg.Logging.Level)

	require.NoError(t, os.WriteFile(path, []byte("redaction:\n  fill_color: white\n"), 0o600))

	out, _, err = execute(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "white", "existing file kept")

	_, _, err = execute(t, "config", "init", path, "--force")
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "white")
}

func TestConfigShowCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "redact.yaml")
	require.NoError(t, os.WriteFile(path, []byte("redaction:\n  fill_color: white\n  padding: 2\n"), 0o600))

	out, _, err := execute(t, "config", "show", "--json", "--config", path)
	require.NoError(t, err)
	var got config.Config
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "white", got.Redaction.FillColor)
	assert.Equal(t, 2.0, got.Redaction.Padding)
	assert.Equal(t, "exact", got.Redaction.Match, "defaults fill the rest")

	out, _, err = execute(t, "config", "show", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "# loaded from "+path)
	assert.Contains(t, out, "fill_color: white")
}

func TestBuildReport(t *testing.T) {
	blocks, err := manifest.Segment([]string{"ABC 123 12345678 10 250.5 Total"})
	require.NoError(t, err)
	rec, err := blocks[0].Header()
	require.NoError(t, err)

	res := &redact.Result{
		Input:       "in.pdf",
		Output:      "out.pdf",
		Pages:       1,
		Requested:   []string{"123-12345678", "123-12345679"},
		Matched:     []redact.Redaction{{Identifier: "123-12345678", Record: rec, Block: blocks[0], Regions: 1}},
		Unmatched:   []string{"123-12345679"},
		Suggestions: map[string][]string{"123-12345679": {"123-12345678"}},
		Fills:       1,
	}
	warnings := []redact.Warning{{Kind: redact.WarnNotFound, Message: "identifier 123-12345679 not found"}}
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	rep := buildReport(res, warnings, at, true)

	assert.Equal(t, at, rep.GeneratedAt)
	require.Len(t, rep.Matched, 1)
	assert.Equal(t, report.Match{
		Identifier: "123-12345678",
		Code:       "ABC",
		Quantity:   "10",
		Weight:     "250.5",
		Page:       1,
		Regions:    1,
		Text:       "ABC 123 12345678 10 250.5 Total",
	}, rep.Matched[0])
	assert.Equal(t, []report.Unmatched{{Identifier: "123-12345679", Suggestions: []string{"123-12345678"}}}, rep.Unmatched)
	assert.Equal(t, []string{"not-found: identifier 123-12345679 not found"}, rep.Warnings)

	rep = buildReport(res, warnings, at, false)
	require.Len(t, rep.Matched, 1)
	assert.Empty(t, rep.Matched[0].Text, "record text is opt-in")
	assert.Equal(t, "ABC", rep.Matched[0].Code)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 1, ExitCode(errors.New("plain")))
	assert.Equal(t, 2, ExitCode(redact.ErrNoIdentifiers))
	assert.Equal(t, 3, ExitCode(redact.ErrDocumentUnreadable))
	assert.Equal(t, 4, ExitCode(redact.ErrIdentifierNotFound))
	assert.Equal(t, 5, ExitCode(redact.ErrInvalidOutput))
	assert.Equal(t, 5, ExitCode(redact.ErrWriteFailure))
}
