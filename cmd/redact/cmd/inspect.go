package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tsawler/redact"
	"github.com/tsawler/redact/internal/ui"
)

// recordInfo is one record in inspect output.
type recordInfo struct {
	Identifier string `json:"identifier"`
	Code       string `json:"code"`
	Quantity   string `json:"quantity"`
	Weight     string `json:"weight"`
	Page       int    `json:"page"`
	Duplicate  bool   `json:"duplicate,omitempty"`
}

type inventoryInfo struct {
	Path      string       `json:"path"`
	Pages     int          `json:"pages"`
	Title     string       `json:"title,omitempty"`
	Producer  string       `json:"producer,omitempty"`
	Encrypted bool         `json:"encrypted,omitempty"`
	Records   []recordInfo `json:"records"`
}

func newInspectCmd(a *app) *cobra.Command {
	var jsonOutput bool
	var password string

	cmd := &cobra.Command{
		Use:   "inspect <pdf>",
		Short: "List the records found in a manifest",
		Long: `List every record found in the manifest with its identifier, code,
quantity, weight and page. Records that repeat an earlier identifier are
marked; only the first of them is ever redacted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, warnings, err := redact.Open(args[0]).
				Normalize(a.cfg.Redaction.Normalize).
				Workers(a.cfg.Extraction.Workers).
				Password(password).
				WithLogger(a.logger).
				Inspect(cmd.Context())
			if err != nil {
				return err
			}

			info := toInventoryInfo(inv)

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}

			errp := ui.NewPrinter(cmd.ErrOrStderr())
			for _, w := range warnings {
				errp.Warn("%s", w.Message)
			}

			p := ui.NewPrinter(cmd.OutOrStdout())
			p.Header("%s: %d records on %d pages", info.Path, len(info.Records), info.Pages)
			if info.Title != "" {
				p.Field("Title", info.Title)
			}
			if info.Producer != "" {
				p.Field("Producer", info.Producer)
			}
			for _, r := range info.Records {
				line := fmt.Sprintf("%-14s %-8s qty %-6s wt %-10s page %d", r.Identifier, r.Code, r.Quantity, r.Weight, r.Page)
				if r.Duplicate {
					line += "  (duplicate)"
				}
				p.Line("%s", line)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output records as JSON")
	cmd.Flags().StringVar(&password, "password", "", "Password for encrypted documents")

	return cmd
}

func toInventoryInfo(inv *redact.Inventory) inventoryInfo {
	repeats := make(map[int]bool, len(inv.Duplicates))
	for _, d := range inv.Duplicates {
		repeats[d.Repeat] = true
	}

	info := inventoryInfo{
		Path:      inv.Path,
		Pages:     inv.Pages,
		Title:     inv.Info.Title,
		Producer:  inv.Info.Producer,
		Encrypted: inv.Info.Encrypted,
		Records:   make([]recordInfo, 0, len(inv.Records)),
	}
	for i, e := range inv.Records {
		info.Records = append(info.Records, recordInfo{
			Identifier: e.Identifier(),
			Code:       e.Record.Code,
			Quantity:   e.Record.Quantity,
			Weight:     e.Record.Weight,
			Page:       e.Block.Page,
			Duplicate:  repeats[i],
		})
	}
	return info
}
