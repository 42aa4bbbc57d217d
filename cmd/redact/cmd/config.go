package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tsawler/redact/internal/config"
	"github.com/tsawler/redact/internal/ui"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
		Long: `Manage the redact configuration file.

Configuration precedence (lowest to highest):
  1. Built-in defaults
  2. Config file (--config, or ./.redact.yaml if present)
  3. Environment variables (REDACT_*)
  4. Command-line flags`,
		Example: `  # Write the defaults to ./.redact.yaml
  redact config init

  # Show the effective configuration
  redact config show --json`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd(a))

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a configuration file with the defaults",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultFileName
			if len(args) == 1 {
				path = args[0]
			}

			p := ui.NewPrinter(cmd.OutOrStdout())
			if _, err := os.Stat(path); err == nil && !force {
				p.Warn("%s already exists; use --force to overwrite", path)
				return nil
			}

			if err := config.NewConfig().WriteYAML(path); err != nil {
				return err
			}
			p.Success("Created %s", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	return cmd
}

func newConfigShowCmd(a *app) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(a.cfg)
			}

			if a.cfg.Source != "" {
				fmt.Fprintf(out, "# loaded from %s\n", a.cfg.Source)
			}
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			if err := enc.Encode(a.cfg); err != nil {
				return err
			}
			return enc.Close()
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
