package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/textstate/internal/config"
	"github.com/zjrosen/textstate/internal/log"
	"github.com/zjrosen/textstate/internal/tracing"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in input fields.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

const defaultConfigPath = ".textstate/config.yaml"

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       config.Config
)

var rootCmd = &cobra.Command{
	Use:     "textstate",
	Short:   "A grapheme-aware text editing engine",
	Long:    `textstate applies editing actions (typing, deletion, caret movement, selection) to a text buffer without ever splitting a grapheme cluster.`,
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Validate(cfg); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		return nil
	},
	RunE: runPlayground,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/textstate/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write a debug log (also enabled by TEXTSTATE_DEBUG)")
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("editor.check_invariants", defaults.Editor.CheckInvariants)
	viper.SetDefault("editor.initial_text", defaults.Editor.InitialText)
	viper.SetDefault("log.path", defaults.Log.Path)
	viper.SetDefault("log.level", defaults.Log.Level)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	viper.SetDefault("playground.show_diagnostics", defaults.Playground.ShowDiagnostics)
	viper.SetDefault("playground.tab_width", defaults.Playground.TabWidth)
	viper.SetDefault("playground.layout_cache_ttl", defaults.Playground.LayoutCacheTTL)
	viper.SetDefault("journal.enabled", defaults.Journal.Enabled)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .textstate/config.yaml (current directory)
		// 2. ~/.config/textstate/config.yaml (user config)
		if _, err := os.Stat(defaultConfigPath); err == nil {
			viper.SetConfigFile(defaultConfigPath)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "textstate"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create default at .textstate/config.yaml
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if writeErr := config.WriteDefaultConfig(defaultConfigPath); writeErr == nil {
				viper.SetConfigFile(defaultConfigPath)
				_ = viper.ReadInConfig()
			}
			// If write fails, just continue with defaults (no config file)
		}
	}

	_ = viper.Unmarshal(&cfg)
}

// setupLogging initializes the debug log when --debug or TEXTSTATE_DEBUG is
// set. The returned cleanup is never nil.
func setupLogging(prefix string) (func(), error) {
	if !debugFlag && os.Getenv("TEXTSTATE_DEBUG") == "" {
		return func() {}, nil
	}

	logPath := os.Getenv("TEXTSTATE_LOG")
	if logPath == "" {
		logPath = cfg.Log.Path
	}
	if logPath == "" {
		logPath = "debug.log"
	}

	cleanup, err := log.InitWithTeaLog(logPath, prefix)
	if err != nil {
		return nil, fmt.Errorf("initializing logging: %w", err)
	}
	if level, err := log.ParseLevel(cfg.Log.Level); err == nil {
		log.SetMinLevel(level)
	}
	log.Info(log.CatConfig, "textstate starting", "version", version, "logPath", logPath, "config", viper.ConfigFileUsed())
	return cleanup, nil
}

// setupTracing builds the tracer provider. Callers must Shutdown it.
func setupTracing(tc config.TracingConfig) (*tracing.Provider, error) {
	provider, err := tracing.NewProvider(tc.ProviderConfig())
	if err != nil {
		return nil, fmt.Errorf("initializing tracing: %w", err)
	}
	return provider, nil
}

func shutdownTracing(provider *tracing.Provider) {
	if err := provider.Shutdown(context.Background()); err != nil {
		log.ErrorErr(log.CatTrace, "Failed to flush traces", err)
	}
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
