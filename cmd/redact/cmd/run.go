package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tsawler/redact"
	"github.com/tsawler/redact/internal/report"
	"github.com/tsawler/redact/internal/ui"
	"github.com/tsawler/redact/model"
	"github.com/tsawler/redact/text"
)

// runFlags holds the flags of the run command.
type runFlags struct {
	ids        string
	out        string
	strict     bool
	reportPath string
	reportText bool
	password   string
	verbose    bool
	color      string
	padding    float64
	match      string
}

func newRunCmd(a *app) *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run <pdf>",
		Short: "Redact the records with the given identifiers",
		Long: `Redact the records with the given identifiers and write a new PDF next
to the input, named <name>_redacted_<YYYYMMDD_HHMMSS>.pdf unless --out is set.

Identifiers that are not in the document are reported but do not stop the
run. Use --strict to fail when any identifier is missing.`,
		Example: `  redact run manifest.pdf --ids 123-12345678,456-87654321
  redact run manifest.pdf --ids 123-12345678 --out clean.pdf --report audit.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRedact(cmd, a, args[0], f)
		},
	}

	cmd.Flags().StringVar(&f.ids, "ids", "", "Comma-separated identifiers, e.g. 123-12345678,456-87654321")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "Output path (default derived from input)")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "Fail if any identifier is not found")
	cmd.Flags().StringVar(&f.reportPath, "report", "", "Write an audit report (.json or .html)")
	cmd.Flags().BoolVar(&f.reportText, "report-text", false, "Include the redacted record text in the report")
	cmd.Flags().StringVar(&f.password, "password", "", "Password for encrypted documents")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Print every redacted block")
	cmd.Flags().StringVar(&f.color, "color", "", "Fill color name or #rrggbb (overrides config)")
	cmd.Flags().Float64Var(&f.padding, "padding", 0, "Grow each fill by this many points (overrides config)")
	cmd.Flags().StringVar(&f.match, "match", "", "Text matching: exact or whitespace (overrides config)")

	return cmd
}

func runRedact(cmd *cobra.Command, a *app, path string, f runFlags) error {
	cfg := a.cfg

	fill := cfg.FillColor()
	if f.color != "" {
		c, err := model.ParseColor(f.color)
		if err != nil {
			return err
		}
		fill = c
	}

	padding := cfg.Redaction.Padding
	if cmd.Flags().Changed("padding") {
		padding = f.padding
	}

	mode := cfg.MatchMode()
	if f.match != "" {
		m, ok := text.ParseMatchMode(f.match)
		if !ok {
			return fmt.Errorf("invalid match mode %q: use exact or whitespace", f.match)
		}
		mode = m
	}

	if f.reportPath != "" {
		if _, err := report.FormatFor(f.reportPath); err != nil {
			return err
		}
	}

	r := redact.Open(path).
		IdentifierList(f.ids).
		OutputNaming(cfg.Output.Suffix, cfg.Output.TimestampLayout).
		FillColor(fill).
		Padding(padding).
		Match(mode).
		Normalize(cfg.Redaction.Normalize).
		Workers(cfg.Extraction.Workers).
		Suggestions(cfg.Redaction.Suggestions).
		Password(f.password).
		WithLogger(a.logger)
	if f.out != "" {
		r = r.Output(f.out)
	}

	res, warnings, err := r.Run(cmd.Context())

	errp := ui.NewPrinter(cmd.ErrOrStderr())
	for _, w := range warnings {
		errp.Warn("%s", w.Message)
	}
	if err != nil {
		return err
	}

	p := ui.NewPrinter(cmd.OutOrStdout())
	p.Success("Redacted %d of %d identifiers", len(res.Matched), len(res.Matched)+len(res.Unmatched))
	p.Field("Input", res.Input)
	p.Field("Output", res.Output)
	p.Field("Fills", res.Fills)
	if len(res.Unmatched) > 0 {
		p.Field("Not found", strings.Join(res.Unmatched, ", "))
	}

	if f.verbose {
		for _, m := range res.Matched {
			p.Header("%s (page %d, %d regions)", m.Identifier, m.Block.Page, m.Regions)
			p.Block(m.Block.Text)
		}
	}

	if f.reportPath != "" {
		if err := report.WriteFile(f.reportPath, buildReport(res, warnings, time.Now(), f.reportText)); err != nil {
			return err
		}
		p.Field("Report", f.reportPath)
	}

	if f.strict {
		return res.NotFound()
	}
	return nil
}

// buildReport converts a run result for the audit report. Record text is
// left out unless withText is set.
func buildReport(res *redact.Result, warnings []redact.Warning, at time.Time, withText bool) *report.Report {
	rep := &report.Report{
		Input:       res.Input,
		Output:      res.Output,
		GeneratedAt: at,
		Pages:       res.Pages,
		Requested:   res.Requested,
		Matched:     make([]report.Match, 0, len(res.Matched)),
		Unmatched:   make([]report.Unmatched, 0, len(res.Unmatched)),
		Fills:       res.Fills,
	}

	for _, m := range res.Matched {
		match := report.Match{
			Identifier: m.Identifier,
			Code:       m.Record.Code,
			Quantity:   m.Record.Quantity,
			Weight:     m.Record.Weight,
			Page:       m.Block.Page,
			Regions:    m.Regions,
		}
		if withText {
			match.Text = m.Block.Text
		}
		rep.Matched = append(rep.Matched, match)
	}
	for _, id := range res.Unmatched {
		rep.Unmatched = append(rep.Unmatched, report.Unmatched{
			Identifier:  id,
			Suggestions: res.Suggestions[id],
		})
	}
	for _, w := range warnings {
		rep.Warnings = append(rep.Warnings, w.String())
	}

	return rep
}
