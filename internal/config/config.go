// Package config provides configuration types and defaults for textstate.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/zjrosen/textstate/internal/log"
	"github.com/zjrosen/textstate/internal/tracing"
)

// ErrInvalidExporter is returned by ValidateTracing for unknown exporters.
var ErrInvalidExporter = errors.New("invalid tracing exporter")

// Config holds all configuration options for textstate.
type Config struct {
	Editor     EditorConfig     `mapstructure:"editor" yaml:"editor"`
	Log        LogConfig        `mapstructure:"log" yaml:"log"`
	Tracing    TracingConfig    `mapstructure:"tracing" yaml:"tracing"`
	Playground PlaygroundConfig `mapstructure:"playground" yaml:"playground"`
	Journal    JournalConfig    `mapstructure:"journal" yaml:"journal"`
}

// EditorConfig holds edit engine options.
type EditorConfig struct {
	// CheckInvariants makes engines panic when the movement resolver returns
	// a selection that is out of bounds or splits a grapheme cluster.
	CheckInvariants bool `mapstructure:"check_invariants" yaml:"check_invariants"`

	// InitialText seeds the playground buffer.
	InitialText string `mapstructure:"initial_text" yaml:"initial_text"`
}

// LogConfig holds debug log options. Logging is only active with --debug
// or TEXTSTATE_DEBUG.
type LogConfig struct {
	Path  string `mapstructure:"path" yaml:"path"`   // Default: debug.log
	Level string `mapstructure:"level" yaml:"level"` // debug (default), info, warn, error
}

// TracingConfig holds tracing configuration for edit sessions.
type TracingConfig struct {
	// Enabled controls whether tracing is active.
	// Default: false
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	// Default: "file"
	Exporter string `mapstructure:"exporter" yaml:"exporter"`

	// FilePath is the output file for "file" exporter.
	// Default: ~/.config/textstate/traces/traces.jsonl
	FilePath string `mapstructure:"file_path" yaml:"file_path"`

	// OTLPEndpoint is the collector endpoint for "otlp" exporter.
	// Default: "localhost:4317"
	OTLPEndpoint string `mapstructure:"otlp_endpoint" yaml:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	// Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate" yaml:"sample_rate"`
}

// ProviderConfig converts to the tracing package's configuration, filling
// the default trace file path when none is set.
func (t TracingConfig) ProviderConfig() tracing.Config {
	path := t.FilePath
	if path == "" {
		path = DefaultTracesFilePath()
	}
	return tracing.Config{
		Enabled:      t.Enabled,
		Exporter:     t.Exporter,
		FilePath:     path,
		OTLPEndpoint: t.OTLPEndpoint,
		SampleRate:   t.SampleRate,
		ServiceName:  tracing.DefaultServiceName,
	}
}

// PlaygroundConfig holds options for the interactive playground.
type PlaygroundConfig struct {
	ShowDiagnostics bool          `mapstructure:"show_diagnostics" yaml:"show_diagnostics"`
	TabWidth        int           `mapstructure:"tab_width" yaml:"tab_width"`
	LayoutCacheTTL  time.Duration `mapstructure:"layout_cache_ttl" yaml:"layout_cache_ttl"`
}

// JournalConfig controls the SQLite snapshot journal.
type JournalConfig struct {
	// Enabled records every playground snapshot.
	// Default: false
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Path is the journal database file.
	// Default: ~/.config/textstate/journal.db
	Path string `mapstructure:"path" yaml:"path"`
}

// DatabasePath returns Path, or the default journal location when unset.
func (j JournalConfig) DatabasePath() string {
	if j.Path != "" {
		return j.Path
	}
	return DefaultJournalPath()
}

// DefaultJournalPath returns ~/.config/textstate/journal.db or empty string
// if the home dir is unavailable.
func DefaultJournalPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "textstate", "journal.db")
}

// DefaultTracesFilePath returns the default path for trace file export.
// Returns ~/.config/textstate/traces/traces.jsonl or empty string if home dir unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "textstate", "traces", "traces.jsonl")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Editor: EditorConfig{
			CheckInvariants: false,
			InitialText:     "",
		},
		Log: LogConfig{
			Path:  "debug.log",
			Level: "debug",
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "", // Derived from config dir at runtime
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
		Playground: PlaygroundConfig{
			ShowDiagnostics: true,
			TabWidth:        4,
			LayoutCacheTTL:  5 * time.Minute,
		},
		Journal: JournalConfig{
			Enabled: false,
			Path:    "", // Derived from config dir at runtime
		},
	}
}

// Validate checks every section.
func Validate(cfg Config) error {
	if err := ValidateLog(cfg.Log); err != nil {
		return err
	}
	if err := ValidateTracing(cfg.Tracing); err != nil {
		return err
	}
	if err := ValidatePlayground(cfg.Playground); err != nil {
		return err
	}
	return ValidateJournal(cfg.Journal)
}

// ValidateLog checks the log level name.
func ValidateLog(l LogConfig) error {
	if _, err := log.ParseLevel(l.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tc TracingConfig) error {
	// Validate sample rate
	if tc.SampleRate < 0.0 || tc.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tc.SampleRate)
	}

	if tc.Exporter != "" && !slices.Contains(tracing.Exporters(), tc.Exporter) {
		return fmt.Errorf("%w: tracing.exporter must be one of %s, got %q",
			ErrInvalidExporter, strings.Join(tracing.Exporters(), ", "), tc.Exporter)
	}

	// Only validate endpoint requirements when tracing is enabled.
	// An empty file_path falls back to DefaultTracesFilePath.
	if tc.Enabled && tc.Exporter == "otlp" && tc.OTLPEndpoint == "" {
		return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
	}

	return nil
}

// ValidatePlayground checks playground options.
func ValidatePlayground(p PlaygroundConfig) error {
	if p.TabWidth < 0 || p.TabWidth > 16 {
		return fmt.Errorf("playground.tab_width must be between 0 and 16, got %d", p.TabWidth)
	}
	if p.LayoutCacheTTL < 0 {
		return fmt.Errorf("playground.layout_cache_ttl must not be negative, got %s", p.LayoutCacheTTL)
	}
	return nil
}

// ValidateJournal requires a resolvable database path when the journal is on.
func ValidateJournal(j JournalConfig) error {
	if j.Enabled && j.DatabasePath() == "" {
		return fmt.Errorf("journal.path is required when no home directory is available")
	}
	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# textstate configuration

# Edit engine settings
editor:
  # Panic when a movement lands off a grapheme boundary (for debugging resolvers)
  check_invariants: false
  # Starting text for 'textstate playground'
  # initial_text: "hello, world"

# Debug log (only written with --debug or TEXTSTATE_DEBUG=1)
log:
  path: debug.log
  level: debug   # debug, info, warn, error

# Tracing of applied edit actions
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/textstate/traces/traces.jsonl  # Output file for file exporter
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)

# Interactive playground
playground:
  show_diagnostics: true   # Show the live log pane
  tab_width: 4             # Display cells per tab
  layout_cache_ttl: 5m     # How long rendered line layouts stay cached

# Snapshot journal (SQLite)
# journal:
#   enabled: false                        # Record every playground snapshot
#   path: ~/.config/textstate/journal.db  # Database file
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	// Create parent directory if needed
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	// Write the template
	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
