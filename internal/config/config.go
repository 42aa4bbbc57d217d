// Package config loads redact settings from defaults, an optional YAML file
// and environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tsawler/redact/internal/logging"
	"github.com/tsawler/redact/model"
	"github.com/tsawler/redact/text"
)

// DefaultFileName is the configuration file written by "redact config init".
const DefaultFileName = ".redact.yaml"

// File names searched for in the working directory, in order.
var fileNames = []string{DefaultFileName, ".redact.yml"}

// Config is the complete redact configuration.
type Config struct {
	Redaction  RedactionConfig  `yaml:"redaction" json:"redaction"`
	Output     OutputConfig     `yaml:"output" json:"output"`
	Extraction ExtractionConfig `yaml:"extraction" json:"extraction"`
	Logging    LoggingConfig    `yaml:"logging" json:"logging"`

	// Source is the file the configuration was read from, if any.
	Source string `yaml:"-" json:"-"`
}

// RedactionConfig controls how matched records are painted.
type RedactionConfig struct {
	// FillColor is a color name or #rrggbb.
	FillColor string `yaml:"fill_color" json:"fill_color"`
	// Padding grows each filled region on all sides, in points.
	Padding float64 `yaml:"padding" json:"padding"`
	// Match is "exact" or "whitespace".
	Match string `yaml:"match" json:"match"`
	// Normalize applies NFKC to page text and search literals.
	Normalize bool `yaml:"normalize" json:"normalize"`
	// Suggestions is how many near matches to offer per unmatched
	// identifier. Zero disables suggestions.
	Suggestions int `yaml:"suggestions" json:"suggestions"`
}

// OutputConfig controls the derived output file name.
type OutputConfig struct {
	Suffix          string `yaml:"suffix" json:"suffix"`
	TimestampLayout string `yaml:"timestamp_layout" json:"timestamp_layout"`
}

// ExtractionConfig controls page text extraction.
type ExtractionConfig struct {
	// Workers bounds concurrent page extraction. Zero means one per CPU.
	Workers int `yaml:"workers" json:"workers"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	File   string `yaml:"file" json:"file"`
}

// NewConfig returns the defaults.
func NewConfig() *Config {
	logDefaults := logging.DefaultConfig()
	return &Config{
		Redaction: RedactionConfig{
			FillColor:   "black",
			Padding:     0,
			Match:       "exact",
			Normalize:   true,
			Suggestions: 3,
		},
		Output: OutputConfig{
			Suffix:          "_redacted_",
			TimestampLayout: "20060102_150405",
		},
		Logging: LoggingConfig{
			Level:  logDefaults.Level,
			Format: logDefaults.Format,
		},
	}
}

// Load builds the configuration. An explicit path must exist; otherwise the
// first of .redact.yaml or .redact.yml found in dir is used, if any.
// Environment variables override the file, and the result is validated.
func Load(dir, explicit string) (*Config, error) {
	cfg := NewConfig()

	path := explicit
	if path == "" {
		path = discover(dir)
	}
	if path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func discover(dir string) string {
	for _, name := range fileNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// loadYAML decodes path on top of the current values, so keys missing from
// the file keep their defaults.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file %s does not exist", path)
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	c.Source = path
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("REDACT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("REDACT_FILL_COLOR"); v != "" {
		c.Redaction.FillColor = v
	}
	if v := os.Getenv("REDACT_MATCH"); v != "" {
		c.Redaction.Match = v
	}
	if v := os.Getenv("REDACT_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REDACT_WORKERS must be an integer, got %q", v)
		}
		c.Extraction.Workers = n
	}
	return nil
}

// Validate checks every setting.
func (c *Config) Validate() error {
	if _, err := model.ParseColor(c.Redaction.FillColor); err != nil {
		return fmt.Errorf("redaction.fill_color: %w", err)
	}
	if _, ok := text.ParseMatchMode(c.Redaction.Match); !ok {
		return fmt.Errorf("redaction.match must be 'exact' or 'whitespace', got %s", c.Redaction.Match)
	}
	if c.Redaction.Padding < 0 {
		return fmt.Errorf("redaction.padding must be non-negative, got %g", c.Redaction.Padding)
	}
	if c.Redaction.Suggestions < 0 {
		return fmt.Errorf("redaction.suggestions must be non-negative, got %d", c.Redaction.Suggestions)
	}
	if c.Extraction.Workers < 0 {
		return fmt.Errorf("extraction.workers must be non-negative, got %d", c.Extraction.Workers)
	}
	if err := validateTimestampLayout(c.Output.TimestampLayout); err != nil {
		return fmt.Errorf("output.timestamp_layout: %w", err)
	}
	if strings.ContainsAny(c.Output.Suffix, `/\`) {
		return fmt.Errorf("output.suffix must not contain path separators, got %s", c.Output.Suffix)
	}
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %s", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be 'text' or 'json', got %s", c.Logging.Format)
	}
	return nil
}

// validateTimestampLayout rejects layouts that would produce the same name
// on every run or a name with path separators.
func validateTimestampLayout(layout string) error {
	if layout == "" {
		return fmt.Errorf("must not be empty")
	}
	a := time.Date(2001, 2, 3, 4, 5, 6, 0, time.UTC).Format(layout)
	b := time.Date(2002, 3, 4, 5, 6, 7, 0, time.UTC).Format(layout)
	if a == b {
		return fmt.Errorf("%q contains no time fields", layout)
	}
	if strings.ContainsAny(a, `/\`) {
		return fmt.Errorf("%q produces path separators", layout)
	}
	return nil
}

// FillColor returns the parsed fill color. Call after Validate.
func (c *Config) FillColor() model.Color {
	col, err := model.ParseColor(c.Redaction.FillColor)
	if err != nil {
		return model.Black
	}
	return col
}

// MatchMode returns the parsed match mode. Call after Validate.
func (c *Config) MatchMode() text.MatchMode {
	m, _ := text.ParseMatchMode(c.Redaction.Match)
	return m
}

// LogConfig converts the logging section for logging.Setup.
func (c *Config) LogConfig() logging.Config {
	return logging.Config{
		Level:    c.Logging.Level,
		Format:   c.Logging.Format,
		FilePath: c.Logging.File,
	}
}

// WriteYAML writes the configuration to path.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}
