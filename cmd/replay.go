package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/textstate/internal/edit"
	"github.com/zjrosen/textstate/internal/journal"
	"github.com/zjrosen/textstate/internal/log"
	"github.com/zjrosen/textstate/internal/script"
	"github.com/zjrosen/textstate/internal/session"
	"github.com/zjrosen/textstate/internal/watcher"
)

var replayCmd = &cobra.Command{
	Use:   "replay FILE",
	Short: "Replay an action script",
	Long: `Apply the actions of a YAML script to its starting text and print the final
text and selection.

Example script:
  text: "hello"
  actions:
    - insert: " world"
    - jump_backspace: left_word
    - click: {offset: 2, shift: true}`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

type replayOptions struct {
	diff    bool
	color   bool
	tracer  trace.Tracer
	check   bool
	journal journal.Repository
}

var (
	replayDiff    bool
	replayColor   string
	replayTrace   bool
	replayWatch   bool
	replayJournal string
)

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().BoolVar(&replayDiff, "diff", false, "print a diff between the starting and final text")
	replayCmd.Flags().StringVar(&replayColor, "color", "auto", "colorize the diff: auto, always, never")
	replayCmd.Flags().BoolVar(&replayTrace, "trace", false, "record a span per action (uses the tracing config)")
	replayCmd.Flags().BoolVarP(&replayWatch, "watch", "w", false, "replay again whenever the script changes")
	replayCmd.Flags().StringVar(&replayJournal, "journal", "", "record every snapshot to this journal database")
}

func runReplay(cmd *cobra.Command, args []string) error {
	cleanup, err := setupLogging("textstate-replay")
	if err != nil {
		return err
	}
	defer cleanup()

	out := cmd.OutOrStdout()
	color, err := colorEnabled(replayColor, out)
	if err != nil {
		return err
	}
	opts := replayOptions{diff: replayDiff, color: color, check: cfg.Editor.CheckInvariants}

	if replayTrace {
		tc := cfg.Tracing
		tc.Enabled = true
		provider, err := setupTracing(tc)
		if err != nil {
			return err
		}
		defer shutdownTracing(provider)
		opts.tracer = provider.Tracer()
	}

	journalPath := replayJournal
	if journalPath == "" && cfg.Journal.Enabled {
		journalPath = cfg.Journal.DatabasePath()
	}
	if journalPath != "" {
		db, err := journal.NewDB(journalPath)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		opts.journal = db.Snapshots()
	}

	path := args[0]
	if !replayWatch {
		return replay(cmd.Context(), out, path, opts)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	changes, err := watcher.Watch(ctx, watcher.DefaultConfig(path))
	if err != nil {
		return err
	}
	return watchReplay(ctx, out, path, opts, changes)
}

// colorEnabled resolves the --color mode against the output terminal.
func colorEnabled(mode string, w io.Writer) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto", "":
		o := termenv.NewOutput(w)
		return !o.EnvNoColor() && o.ColorProfile() != termenv.Ascii, nil
	default:
		return false, fmt.Errorf("invalid --color %q: must be auto, always or never", mode)
	}
}

// watchReplay replays path once and again on every value from changes until
// ctx is done or changes is closed. Replay errors are printed, not returned,
// so a half-saved script does not end the watch.
func watchReplay(ctx context.Context, w io.Writer, path string, opts replayOptions, changes <-chan struct{}) error {
	run := func() {
		if err := replay(ctx, w, path, opts); err != nil {
			log.ErrorErr(log.CatScript, "replay failed", err, "path", path)
			_, _ = fmt.Fprintf(w, "error: %v\n", err)
		}
		_, _ = fmt.Fprintf(w, "--- watching %s\n", path)
	}

	run()
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			run()
		}
	}
}

func replay(ctx context.Context, w io.Writer, path string, opts replayOptions) error {
	s, err := script.Load(path)
	if err != nil {
		return err
	}

	sessOpts := []session.Option{
		session.WithEngineConfig(edit.Config{CheckInvariants: opts.check}),
	}
	if opts.tracer != nil {
		sessOpts = append(sessOpts, session.WithTracer(opts.tracer))
	}
	sess, err := s.Session(sessOpts...)
	if err != nil {
		return err
	}
	defer sess.Close()

	start := sess.Snapshot()
	res, err := s.Run(ctx, sess)
	if err != nil {
		return fmt.Errorf("replaying %s: %w", path, err)
	}

	if opts.journal != nil {
		snaps := append([]session.Snapshot{start}, res.Steps...)
		if err := journal.RecordAll(ctx, opts.journal, snaps); err != nil {
			return fmt.Errorf("journaling %s: %w", path, err)
		}
	}

	sel := res.Final.Selection
	_, _ = fmt.Fprintf(w, "text: %q\n", res.Final.Text)
	_, _ = fmt.Fprintf(w, "selection: %d..%d\n", sel.Start, sel.End)
	_, _ = fmt.Fprintf(w, "revision: %d\n", res.Final.Revision)
	if rejected := res.Rejected(); len(rejected) > 0 {
		_, _ = fmt.Fprintf(w, "rejected: %v\n", rejected)
	}
	if opts.diff {
		d := res.Diff()
		if opts.color {
			d = res.PrettyDiff()
		}
		_, _ = fmt.Fprintf(w, "diff:\n%s\n", d)
	}
	if opts.journal != nil {
		_, _ = fmt.Fprintf(w, "journal: %s\n", sess.ID())
	}
	return nil
}
