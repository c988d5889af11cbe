package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	require.False(t, cfg.Editor.CheckInvariants)
	require.Equal(t, "debug.log", cfg.Log.Path)
	require.Equal(t, "debug", cfg.Log.Level)
	require.False(t, cfg.Tracing.Enabled, "tracing should be disabled by default")
	require.Equal(t, "file", cfg.Tracing.Exporter)
	require.Equal(t, 1.0, cfg.Tracing.SampleRate)
	require.True(t, cfg.Playground.ShowDiagnostics)
	require.Equal(t, 4, cfg.Playground.TabWidth)
	require.Equal(t, 5*time.Minute, cfg.Playground.LayoutCacheTTL)
	require.False(t, cfg.Journal.Enabled, "journal should be disabled by default")

	require.NoError(t, Validate(cfg), "defaults must validate")
}

func TestValidateTracing(t *testing.T) {
	tests := []struct {
		name    string
		cfg     TracingConfig
		wantErr string
	}{
		{name: "empty", cfg: TracingConfig{}},
		{name: "file", cfg: TracingConfig{Enabled: true, Exporter: "file"}},
		{name: "otlp with endpoint", cfg: TracingConfig{Enabled: true, Exporter: "otlp", OTLPEndpoint: "collector:4317"}},
		{name: "otlp without endpoint", cfg: TracingConfig{Enabled: true, Exporter: "otlp"}, wantErr: "otlp_endpoint is required"},
		{name: "otlp disabled", cfg: TracingConfig{Exporter: "otlp"}},
		{name: "sample rate high", cfg: TracingConfig{SampleRate: 1.5}, wantErr: "sample_rate"},
		{name: "sample rate negative", cfg: TracingConfig{SampleRate: -0.1}, wantErr: "sample_rate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTracing(tt.cfg)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateTracing_UnknownExporter(t *testing.T) {
	err := ValidateTracing(TracingConfig{Exporter: "kafka"})
	require.ErrorIs(t, err, ErrInvalidExporter)
	require.ErrorContains(t, err, "file, none, otlp, stdout")
}

func TestValidate_Sections(t *testing.T) {
	cfg := Defaults()
	cfg.Log.Level = "chatty"
	require.ErrorContains(t, Validate(cfg), "log.level")

	cfg = Defaults()
	cfg.Playground.TabWidth = 40
	require.ErrorContains(t, Validate(cfg), "tab_width")

	cfg = Defaults()
	cfg.Playground.LayoutCacheTTL = -time.Second
	require.ErrorContains(t, Validate(cfg), "layout_cache_ttl")
}

func TestProviderConfig(t *testing.T) {
	pc := TracingConfig{Enabled: true, Exporter: "file", FilePath: "/tmp/t.jsonl", SampleRate: 0.5}.ProviderConfig()
	require.True(t, pc.Enabled)
	require.Equal(t, "/tmp/t.jsonl", pc.FilePath)
	require.Equal(t, 0.5, pc.SampleRate)
	require.Equal(t, "textstate", pc.ServiceName)

	pc = TracingConfig{Enabled: true, Exporter: "file"}.ProviderConfig()
	require.Equal(t, DefaultTracesFilePath(), pc.FilePath)
}

func TestJournalConfig_DatabasePath(t *testing.T) {
	require.Equal(t, "/tmp/j.db", JournalConfig{Path: "/tmp/j.db"}.DatabasePath())
	require.Equal(t, DefaultJournalPath(), JournalConfig{}.DatabasePath())
	require.NoError(t, ValidateJournal(JournalConfig{Enabled: true, Path: "/tmp/j.db"}))
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, DefaultConfigTemplate(), string(data))

	var cfg Config
	require.NoError(t, yaml.Unmarshal(data, &cfg), "template must be valid YAML")
	require.Equal(t, "debug.log", cfg.Log.Path)
	require.Equal(t, 5*time.Minute, cfg.Playground.LayoutCacheTTL)
}
