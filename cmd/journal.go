package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/zjrosen/textstate/internal/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal [SESSION]",
	Short: "Inspect recorded session snapshots",
	Long: `Without arguments, list the sessions recorded in the journal. With a session
ID, print that session's snapshots in order.

Snapshots are recorded by 'replay --journal' and by the playground when
journal.enabled is set.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runJournal,
}

var journalPath string

func init() {
	rootCmd.AddCommand(journalCmd)

	journalCmd.Flags().StringVar(&journalPath, "path", "", "journal database (default: journal.path from config)")
}

func runJournal(cmd *cobra.Command, args []string) error {
	path := journalPath
	if path == "" {
		path = cfg.Journal.DatabasePath()
	}
	db, err := journal.NewDB(path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	repo := db.Snapshots()
	if len(args) == 0 {
		return listSessions(cmd.Context(), cmd.OutOrStdout(), repo)
	}
	return showHistory(cmd.Context(), cmd.OutOrStdout(), repo, args[0])
}

func listSessions(ctx context.Context, w io.Writer, repo journal.Repository) error {
	sums, err := repo.Sessions(ctx)
	if err != nil {
		return err
	}
	if len(sums) == 0 {
		_, _ = fmt.Fprintln(w, "no sessions recorded")
		return nil
	}
	for _, s := range sums {
		_, _ = fmt.Fprintf(w, "%s  snapshots=%d  revision=%d  updated=%s\n",
			s.SessionID, s.Snapshots, s.LastRevision, s.UpdatedAt.Format(time.DateTime))
	}
	return nil
}

func showHistory(ctx context.Context, w io.Writer, repo journal.Repository, sessionID string) error {
	entries, err := repo.History(ctx, sessionID)
	if err != nil {
		return err
	}
	for _, e := range entries {
		action := e.Action
		if action == "" {
			action = "-"
		}
		_, _ = fmt.Fprintf(w, "%3d  rev %-3d %-22s %d..%d  %q", e.Seq, e.Revision, action, e.Selection.Start, e.Selection.End, e.Text)
		if len(e.Rejected) > 0 {
			_, _ = fmt.Fprintf(w, "  rejected %v", e.Rejected)
		}
		_, _ = fmt.Fprintln(w)
	}
	return nil
}
