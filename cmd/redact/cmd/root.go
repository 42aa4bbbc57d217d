// Package cmd provides the CLI commands for redact.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tsawler/redact"
	"github.com/tsawler/redact/internal/config"
	"github.com/tsawler/redact/internal/logging"
	"github.com/tsawler/redact/pkg/version"
)

// app carries state shared by every subcommand of one root command.
type app struct {
	configPath string
	debug      bool
	logLevel   string

	cfg     *config.Config
	logger  *slog.Logger
	cleanup func()
}

// NewRootCmd creates the root command for the redact CLI.
func NewRootCmd() *cobra.Command {
	a := &app{logger: logging.Discard()}

	cmd := &cobra.Command{
		Use:   "redact",
		Short: "Redact shipment records in air-cargo manifest PDFs",
		Long: `redact finds shipment records in a manifest PDF by their
"<IATA prefix>-<MAWB number>" identifier and writes a copy of the document
with each matching record removed from the page and covered by a filled
rectangle.

The input file is never modified.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("redact version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default ./.redact.yaml if present)")
	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	cmd.PersistentPreRunE = a.setup
	cmd.PersistentPostRunE = a.teardown

	cmd.AddCommand(newRunCmd(a))
	cmd.AddCommand(newInspectCmd(a))
	cmd.AddCommand(newTextCmd(a))
	cmd.AddCommand(newConfigCmd(a))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// setup loads configuration and starts logging.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(".", a.configPath)
	if err != nil {
		return err
	}

	logCfg := cfg.LogConfig()
	if a.logLevel != "" {
		if !logging.ValidLevel(a.logLevel) {
			return fmt.Errorf("invalid log level %q", a.logLevel)
		}
		logCfg.Level = a.logLevel
	}
	if a.debug {
		logCfg.Level = "debug"
	}
	logCfg.Stderr = cmd.ErrOrStderr()

	logger, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	a.cfg = cfg
	a.logger = logger
	a.cleanup = cleanup

	if cfg.Source != "" {
		logger.Debug("configuration loaded", slog.String("path", cfg.Source))
	}
	return nil
}

func (a *app) teardown(_ *cobra.Command, _ []string) error {
	if a.cleanup != nil {
		a.cleanup()
		a.cleanup = nil
	}
	return nil
}

// Execute runs the root command and prints any error to stderr.
func Execute() error {
	err := NewRootCmd().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	return err
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	switch redact.CodeOf(err) {
	case redact.CodeNoIdentifiers:
		return 2
	case redact.CodeDocumentUnreadable:
		return 3
	case redact.CodeIdentifierNotFound:
		return 4
	case redact.CodeInvalidOutput, redact.CodeWriteFailure:
		return 5
	default:
		return 1
	}
}
