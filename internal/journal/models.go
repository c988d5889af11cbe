package journal

import (
	"encoding/json"
	"time"

	"github.com/zjrosen/textstate/internal/session"
	"github.com/zjrosen/textstate/internal/text"
)

// Entry is one recorded snapshot.
type Entry struct {
	ID        int64
	SessionID string
	Seq       int // 1-based position within the session
	Revision  uint64
	Action    string // empty for out-of-band updates
	Text      string
	Selection text.Selection
	Rejected  []int
	CreatedAt time.Time
}

// Summary describes one journaled session.
type Summary struct {
	SessionID    string
	Snapshots    int
	LastRevision uint64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// snapshotModel is the snapshots table row. Timestamps are Unix milliseconds.
type snapshotModel struct {
	ID        int64
	SessionID string
	Seq       int
	Revision  int64
	Action    *string // nullable
	Text      string
	SelStart  int
	SelEnd    int
	Rejected  *string // nullable, JSON encoded
	CreatedAt int64
}

func toSnapshotModel(snap session.Snapshot, at time.Time) (*snapshotModel, error) {
	m := &snapshotModel{
		SessionID: snap.SessionID,
		Revision:  int64(snap.Revision), //nolint:gosec // G115: revisions never approach MaxInt64
		Text:      snap.Text,
		SelStart:  snap.Selection.Start,
		SelEnd:    snap.Selection.End,
		CreatedAt: at.UnixMilli(),
	}
	if snap.LastAction != "" {
		action := snap.LastAction
		m.Action = &action
	}
	if len(snap.Rejected) > 0 {
		data, err := json.Marshal(snap.Rejected)
		if err != nil {
			return nil, err
		}
		rejected := string(data)
		m.Rejected = &rejected
	}
	return m, nil
}

func (m *snapshotModel) toEntry() (Entry, error) {
	e := Entry{
		ID:        m.ID,
		SessionID: m.SessionID,
		Seq:       m.Seq,
		Revision:  uint64(m.Revision), //nolint:gosec // G115: stored from a uint64
		Text:      m.Text,
		Selection: text.Selection{Start: m.SelStart, End: m.SelEnd},
		CreatedAt: time.UnixMilli(m.CreatedAt),
	}
	if m.Action != nil {
		e.Action = *m.Action
	}
	if m.Rejected != nil {
		if err := json.Unmarshal([]byte(*m.Rejected), &e.Rejected); err != nil {
			return Entry{}, err
		}
	}
	return e, nil
}
