package journal

import (
	"context"

	"github.com/zjrosen/textstate/internal/log"
	"github.com/zjrosen/textstate/internal/pubsub"
	"github.com/zjrosen/textstate/internal/session"
)

// Follow records every snapshot received on events until the channel is
// closed. The returned channel is closed after the last write. Write errors
// are logged and do not stop the recorder.
func Follow(ctx context.Context, repo Repository, events <-chan pubsub.Event[session.Snapshot]) <-chan struct{} {
	done := make(chan struct{})
	// Writes outlive cancellation so the final snapshots still land.
	writeCtx := context.WithoutCancel(ctx)

	go func() {
		defer close(done)
		for event := range events {
			if _, err := repo.Record(writeCtx, event.Payload); err != nil {
				log.ErrorErr(log.CatJournal, "failed to record snapshot", err,
					"session", event.Payload.SessionID,
					"revision", event.Payload.Revision)
			}
		}
	}()
	return done
}

// RecordAll writes snaps in order, stopping at the first error.
func RecordAll(ctx context.Context, repo Repository, snaps []session.Snapshot) error {
	for _, snap := range snaps {
		if _, err := repo.Record(ctx, snap); err != nil {
			return err
		}
	}
	return nil
}
