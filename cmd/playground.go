package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/textstate/internal/config"
	"github.com/zjrosen/textstate/internal/edit"
	"github.com/zjrosen/textstate/internal/journal"
	"github.com/zjrosen/textstate/internal/log"
	"github.com/zjrosen/textstate/internal/playground"
	"github.com/zjrosen/textstate/internal/session"
)

var playgroundCmd = &cobra.Command{
	Use:   "playground [TEXT]",
	Short: "Interactive playground for the edit engine",
	Long: `Launch an interactive editor backed by the edit engine. Keys, pastes and
mouse clicks/drags become edit actions; rejected caret placements show up in
the diagnostics pane (F2).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlayground,
}

func init() {
	rootCmd.AddCommand(playgroundCmd)
}

func runPlayground(cmd *cobra.Command, args []string) error {
	cleanup, err := setupLogging("textstate")
	if err != nil {
		return err
	}
	defer cleanup()

	provider, err := setupTracing(cfg.Tracing)
	if err != nil {
		return err
	}
	defer shutdownTracing(provider)

	initial := cfg.Editor.InitialText
	if len(args) == 1 {
		initial = args[0]
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sess := session.New(initial,
		session.WithEngineConfig(edit.Config{CheckInvariants: cfg.Editor.CheckInvariants}),
		session.WithTracer(provider.Tracer()),
	)
	if cfg.Journal.Enabled {
		db, err := journal.NewDB(cfg.Journal.DatabasePath())
		if err != nil {
			sess.Close()
			return err
		}
		defer func() { _ = db.Close() }()
		repo := db.Snapshots()
		if _, err := repo.Record(ctx, sess.Snapshot()); err != nil {
			sess.Close()
			return fmt.Errorf("recording starting snapshot: %w", err)
		}
		recorded := journal.Follow(ctx, repo, sess.Subscribe(ctx))
		// Runs before db.Close: wait for the recorder to drain.
		defer func() { <-recorded }()
		log.Info(log.CatJournal, "recording session", "session", sess.ID())
	}
	defer sess.Close()

	model := playground.New(ctx, sess, playground.Config{
		ShowDiagnostics: cfg.Playground.ShowDiagnostics,
		TabWidth:        cfg.Playground.TabWidth,
		LayoutCacheTTL:  cfg.Playground.LayoutCacheTTL,
	})
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("running playground: %w", err)
	}
	if m, ok := final.(playground.Model); ok {
		rememberDiagnostics(viper.ConfigFileUsed(), m.ShowingDiagnostics())
	}
	return nil
}

// rememberDiagnostics persists the diagnostics pane state so the next
// playground opens the same way.
func rememberDiagnostics(configPath string, show bool) {
	if configPath == "" || show == cfg.Playground.ShowDiagnostics {
		return
	}
	cfg.Playground.ShowDiagnostics = show
	if err := config.SaveSection(configPath, "playground", cfg.Playground); err != nil {
		log.ErrorErr(log.CatConfig, "saving playground settings", err, "path", configPath)
	}
}
