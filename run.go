package redact

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tsawler/redact/document"
	"github.com/tsawler/redact/internal/suggest"
	"github.com/tsawler/redact/manifest"
)

// Result describes a completed run.
type Result struct {
	Input     string
	Output    string
	Pages     int
	Requested []string

	// Matched lists resolved records in request order.
	Matched []Redaction

	// Unmatched lists requested identifiers with no record, in request
	// order, without repeats.
	Unmatched []string

	// Suggestions maps an unmatched identifier to near matches found in
	// the document.
	Suggestions map[string][]string

	// Fills is the number of rectangles painted.
	Fills int
}

// Redaction is one resolved record and how many regions were painted for it.
type Redaction struct {
	Identifier string
	Record     manifest.Record
	Block      manifest.RawBlock
	Regions    int
}

// Blocks returns the matched blocks in request order.
func (r *Result) Blocks() []manifest.RawBlock {
	out := make([]manifest.RawBlock, len(r.Matched))
	for i, m := range r.Matched {
		out[i] = m.Block
	}
	return out
}

// NotFound returns an IDENTIFIER_NOT_FOUND error naming every unmatched
// identifier, or nil when all were found.
func (r *Result) NotFound() error {
	if len(r.Unmatched) == 0 {
		return nil
	}
	msg := fmt.Sprintf("%d of %d identifiers not found", len(r.Unmatched), len(r.Requested))
	return newError(CodeIdentifierNotFound, msg, nil).
		WithDetail("identifiers", strings.Join(r.Unmatched, ","))
}

// Inventory lists the records found in a document.
type Inventory struct {
	Path       string
	Pages      int
	Records    []manifest.Entry
	Duplicates []manifest.Duplicate

	// Info is the document metadata, when the engine reports it.
	Info document.Info
}

// infoReporter is implemented by engines that expose document metadata.
type infoReporter interface {
	Info() document.Info
}

// ============================================================================
// Terminal Operations
// ============================================================================

// Run resolves the requested identifiers, paints every matched record on
// every page where its text appears, and saves the result to a new file.
//
// An empty request fails with ErrNoIdentifiers before the document is
// opened. An unreadable document fails with ErrDocumentUnreadable before
// anything is painted. The input file is never modified.
func (r *Redactor) Run(ctx context.Context) (*Result, []Warning, error) {
	if r.err != nil {
		return nil, nil, r.err
	}

	ids := r.options.identifiers
	if len(ids) == 0 {
		return nil, nil, newError(CodeNoIdentifiers, "no identifiers requested", nil)
	}

	var warnings []Warning
	for _, id := range ids {
		if !manifest.IsWellFormedIdentifier(id) {
			warnings = append(warnings, Warning{
				Kind:       WarnMalformedIdentifier,
				Identifier: id,
				Message:    fmt.Sprintf("%q is not of the form NNN-NNNNNNNN", id),
			})
		}
	}

	out := r.options.outputFor(r.path, r.now())
	if err := checkOutput(r.path, out); err != nil {
		return nil, warnings, err
	}

	engine, err := r.open()
	if err != nil {
		return nil, warnings, err
	}
	defer engine.Close()

	ix, err := r.buildIndex(ctx, engine)
	if err != nil {
		return nil, warnings, err
	}
	warnings = append(warnings, duplicateWarnings(ix)...)

	res := ix.Resolve(ids)
	result := &Result{
		Input:     r.path,
		Output:    out,
		Pages:     engine.PageCount(),
		Requested: append([]string(nil), ids...),
		Unmatched: res.Unmatched,
	}

	for _, m := range res.Matched {
		if err := ctx.Err(); err != nil {
			return nil, warnings, err
		}

		regions, err := r.paint(engine, m.Entry.Block.Text)
		if err != nil {
			return nil, warnings, newError(CodeWriteFailure, "failed to paint "+m.Identifier, err).
				WithDetail("output", out)
		}

		r.logger.Debug("redacting block",
			"identifier", m.Identifier,
			"page", m.Entry.Block.Page,
			"regions", regions,
			"text", m.Entry.Block.Text)

		if regions == 0 {
			warnings = append(warnings, Warning{
				Kind:       WarnNotLocated,
				Identifier: m.Identifier,
				Page:       m.Entry.Block.Page,
				Message:    fmt.Sprintf("record %s was found in the text but not on the page; nothing was painted", m.Identifier),
			})
		}

		result.Fills += regions
		result.Matched = append(result.Matched, Redaction{
			Identifier: m.Identifier,
			Record:     m.Entry.Record,
			Block:      m.Entry.Block,
			Regions:    regions,
		})
	}

	result.Suggestions = r.suggest(ctx, ix, res.Unmatched)
	for _, id := range res.Unmatched {
		msg := fmt.Sprintf("identifier %s not found", id)
		if s := result.Suggestions[id]; len(s) > 0 {
			msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(s, ", "))
		}
		warnings = append(warnings, Warning{Kind: WarnNotFound, Identifier: id, Message: msg})
		r.logger.Info("identifier not found", "identifier", id)
	}

	if err := engine.Save(ctx, out); err != nil {
		if errors.Is(err, document.ErrOutputExists) || errors.Is(err, document.ErrSameFile) {
			return nil, warnings, newError(CodeInvalidOutput, "refusing to write "+out, err).WithDetail("output", out)
		}
		return nil, warnings, newError(CodeWriteFailure, "failed to save "+out, err).WithDetail("output", out)
	}

	r.logger.Info("redaction complete",
		"input", r.path,
		"output", out,
		"matched", len(result.Matched),
		"unmatched", len(result.Unmatched),
		"fills", result.Fills)

	return result, warnings, nil
}

// Inspect lists the records in the document without painting anything.
func (r *Redactor) Inspect(ctx context.Context) (*Inventory, []Warning, error) {
	if r.err != nil {
		return nil, nil, r.err
	}

	engine, err := r.open()
	if err != nil {
		return nil, nil, err
	}
	defer engine.Close()

	ix, err := r.buildIndex(ctx, engine)
	if err != nil {
		return nil, nil, err
	}

	inv := &Inventory{
		Path:       r.path,
		Pages:      engine.PageCount(),
		Records:    ix.Entries(),
		Duplicates: ix.Duplicates(),
	}
	if ir, ok := engine.(infoReporter); ok {
		inv.Info = ir.Info()
	}
	return inv, duplicateWarnings(ix), nil
}

// Text returns the extracted text of every page, as record segmentation
// sees it.
func (r *Redactor) Text(ctx context.Context) ([]string, []Warning, error) {
	if r.err != nil {
		return nil, nil, r.err
	}

	engine, err := r.open()
	if err != nil {
		return nil, nil, err
	}
	defer engine.Close()

	texts, err := engine.PageTexts(ctx)
	if err != nil {
		return nil, nil, unreadable(r.path, err)
	}
	return texts, nil, nil
}

func (r *Redactor) open() (document.Engine, error) {
	engine, err := r.opener(r.path, r.documentOptions())
	if err != nil {
		return nil, unreadable(r.path, err)
	}
	r.logger.Debug("document opened", "path", r.path, "pages", engine.PageCount())
	return engine, nil
}

// buildIndex extracts, segments and indexes every page.
func (r *Redactor) buildIndex(ctx context.Context, engine document.Engine) (*manifest.Index, error) {
	texts, err := engine.PageTexts(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, unreadable(r.path, err)
	}

	blocks, err := manifest.Segment(texts)
	if err != nil {
		return nil, unreadable(r.path, err)
	}

	ix, err := manifest.NewIndex(blocks)
	if err != nil {
		return nil, unreadable(r.path, err)
	}

	r.logger.Debug("document indexed", "pages", len(texts), "blocks", len(blocks), "identifiers", len(ix.Identifiers()))
	return ix, nil
}

// paint searches every page for the block text and fills each region. It
// returns how many fills were queued; empty regions are not counted.
func (r *Redactor) paint(engine document.Engine, blockText string) (int, error) {
	count := 0
	for page := 1; page <= engine.PageCount(); page++ {
		regions, err := engine.Search(page, blockText)
		if err != nil {
			return count, err
		}
		for _, region := range regions {
			queued, err := engine.Fill(page, region, r.options.fillColor)
			if err != nil {
				return count, err
			}
			if queued {
				count++
			}
		}
	}
	return count, nil
}

func (r *Redactor) suggest(ctx context.Context, ix *manifest.Index, unmatched []string) map[string][]string {
	if r.options.suggestions == 0 || len(unmatched) == 0 || ix.Len() == 0 {
		return nil
	}

	sx, err := suggest.New(ix.Identifiers(), suggest.MaxFuzziness)
	if err != nil {
		r.logger.Warn("suggestions unavailable", "error", err)
		return nil
	}
	defer sx.Close()

	out := make(map[string][]string)
	for _, id := range unmatched {
		s, err := sx.Suggest(ctx, id, r.options.suggestions)
		if err != nil {
			r.logger.Warn("suggestion lookup failed", "identifier", id, "error", err)
			continue
		}
		if len(s) > 0 {
			out[id] = s
		}
	}
	return out
}

func duplicateWarnings(ix *manifest.Index) []Warning {
	entries := ix.Entries()
	var warnings []Warning
	for _, d := range ix.Duplicates() {
		repeat := entries[d.Repeat].Block
		first := entries[d.First].Block
		warnings = append(warnings, Warning{
			Kind:       WarnDuplicate,
			Identifier: d.Identifier,
			Page:       repeat.Page,
			Message:    fmt.Sprintf("identifier %s repeats a record from page %d; only the first is used", d.Identifier, first.Page),
		})
	}
	return warnings
}

func unreadable(path string, err error) *Error {
	return newError(CodeDocumentUnreadable, "cannot read "+path, err).WithDetail("path", path)
}

// checkOutput refuses an output path that is the input or already exists.
func checkOutput(input, output string) error {
	in, err1 := filepath.Abs(input)
	out, err2 := filepath.Abs(output)
	if err1 == nil && err2 == nil && in == out {
		return newError(CodeInvalidOutput, "output path is the input document", nil).WithDetail("output", output)
	}

	if _, err := os.Stat(output); err == nil {
		return newError(CodeInvalidOutput, "output file already exists", nil).WithDetail("output", output)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return newError(CodeInvalidOutput, "cannot check output path", err).WithDetail("output", output)
	}
	return nil
}
