package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/zjrosen/textstate/internal/session"
)

// SessionNotFoundError is returned when a session has no journal entries.
type SessionNotFoundError struct {
	SessionID string
}

func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("session %q not found in journal", e.SessionID)
}

// Repository stores and reads session snapshots.
type Repository interface {
	// Record appends snap to its session's history.
	Record(ctx context.Context, snap session.Snapshot) (Entry, error)
	// History returns every entry of a session in recording order.
	History(ctx context.Context, sessionID string) ([]Entry, error)
	// Latest returns the most recent entry of a session.
	Latest(ctx context.Context, sessionID string) (Entry, error)
	// Sessions lists journaled sessions, most recently updated first.
	Sessions(ctx context.Context) ([]Summary, error)
}

const snapshotColumns = `id, session_id, seq, revision, action, text, sel_start, sel_end, rejected, created_at`

type snapshotRepository struct {
	db  *sql.DB
	now func() time.Time
}

func newSnapshotRepository(db *sql.DB) *snapshotRepository {
	return &snapshotRepository{db: db, now: time.Now}
}

var _ Repository = (*snapshotRepository)(nil)

func scanSnapshot(scanner interface{ Scan(...any) error }) (*snapshotModel, error) {
	var m snapshotModel
	err := scanner.Scan(
		&m.ID, &m.SessionID, &m.Seq, &m.Revision, &m.Action,
		&m.Text, &m.SelStart, &m.SelEnd, &m.Rejected, &m.CreatedAt,
	)
	return &m, err
}

func (r *snapshotRepository) Record(ctx context.Context, snap session.Snapshot) (Entry, error) {
	if snap.SessionID == "" {
		return Entry{}, errors.New("record snapshot: missing session id")
	}
	model, err := toSnapshotModel(snap, r.now())
	if err != nil {
		return Entry{}, fmt.Errorf("encoding snapshot: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (id, created_at) VALUES (?, ?) ON CONFLICT(id) DO NOTHING`,
		model.SessionID, model.CreatedAt,
	); err != nil {
		return Entry{}, fmt.Errorf("failed to insert session: %w", err)
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO snapshots (session_id, seq, revision, action, text, sel_start, sel_end, rejected, created_at)
		SELECT ?, COALESCE(MAX(seq), 0) + 1, ?, ?, ?, ?, ?, ?, ? FROM snapshots WHERE session_id = ?
		RETURNING id, seq`,
		model.SessionID, model.Revision, model.Action, model.Text,
		model.SelStart, model.SelEnd, model.Rejected, model.CreatedAt,
		model.SessionID,
	).Scan(&model.ID, &model.Seq)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to insert snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Entry{}, fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return model.toEntry()
}

func (r *snapshotRepository) History(ctx context.Context, sessionID string) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+snapshotColumns+` FROM snapshots WHERE session_id = ? ORDER BY seq`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		model, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		entry, err := model.toEntry()
		if err != nil {
			return nil, fmt.Errorf("failed to decode snapshot %d: %w", model.ID, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}
	if len(entries) == 0 {
		return nil, &SessionNotFoundError{SessionID: sessionID}
	}
	return entries, nil
}

func (r *snapshotRepository) Latest(ctx context.Context, sessionID string) (Entry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+snapshotColumns+` FROM snapshots WHERE session_id = ? ORDER BY seq DESC LIMIT 1`,
		sessionID,
	)
	model, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, &SessionNotFoundError{SessionID: sessionID}
	}
	if err != nil {
		return Entry{}, fmt.Errorf("failed to find latest snapshot: %w", err)
	}
	return model.toEntry()
}

func (r *snapshotRepository) Sessions(ctx context.Context) ([]Summary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.id, s.created_at, COUNT(n.id), COALESCE(MAX(n.revision), 0), COALESCE(MAX(n.created_at), s.created_at) AS updated
		FROM sessions s LEFT JOIN snapshots n ON n.session_id = s.id
		GROUP BY s.id
		ORDER BY updated DESC, s.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Summary
	for rows.Next() {
		var (
			sum              Summary
			created, updated int64
			lastRevision     int64
		)
		if err := rows.Scan(&sum.SessionID, &created, &sum.Snapshots, &lastRevision, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sum.LastRevision = uint64(lastRevision) //nolint:gosec // G115: stored from a uint64
		sum.CreatedAt = time.UnixMilli(created)
		sum.UpdatedAt = time.UnixMilli(updated)
		out = append(out, sum)
	}
	return out, rows.Err()
}
