package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tsawler/redact"
	"github.com/tsawler/redact/internal/ui"
)

func newTextCmd(a *app) *cobra.Command {
	var page int
	var password string

	cmd := &cobra.Command{
		Use:   "text <pdf>",
		Short: "Print the extracted text of each page",
		Long: `Print the text of each page exactly as record detection sees it.
Useful when an identifier is unexpectedly not found.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			texts, _, err := redact.Open(args[0]).
				Normalize(a.cfg.Redaction.Normalize).
				Workers(a.cfg.Extraction.Workers).
				Password(password).
				WithLogger(a.logger).
				Text(cmd.Context())
			if err != nil {
				return err
			}

			if page < 0 || page > len(texts) {
				return fmt.Errorf("page %d out of range (document has %d)", page, len(texts))
			}

			p := ui.NewPrinter(cmd.OutOrStdout())
			for i, t := range texts {
				if page != 0 && i+1 != page {
					continue
				}
				p.Header("--- page %d ---", i+1)
				p.Line("%s", t)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 0, "Print only this page (1-based); 0 prints all")
	cmd.Flags().StringVar(&password, "password", "", "Password for encrypted documents")

	return cmd
}
