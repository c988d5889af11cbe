package log

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setupLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	InitWriter(&buf)
	t.Cleanup(Reset)
	return &buf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"", LevelDebug},
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{" warning ", LevelWarn},
		{"error", LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("chatty")
	require.ErrorContains(t, err, "unknown log level")
}

func TestLog_WritesFormattedEntry(t *testing.T) {
	buf := setupLog(t)

	Warn(CatCaret, "caret rejected", "offset", 2, "text", "a b", "empty", "")

	line := buf.String()
	require.Regexp(t, `^\d{4}-\d\d-\d\dT\d\d:\d\d:\d\d \[WARN\] \[caret\] caret rejected offset=2 text="a b" empty=""\n$`, line)
}

func TestLog_OrphanKey(t *testing.T) {
	buf := setupLog(t)

	Info(CatSession, "odd", "a", 1, "b")
	require.Contains(t, buf.String(), "a=1 b=<missing>")
}

func TestLog_ErrorErr(t *testing.T) {
	buf := setupLog(t)

	ErrorErr(CatJournal, "write failed", errors.New("disk full"), "path", "/tmp/j.db")
	ErrorErr(CatJournal, "no error", nil)

	out := buf.String()
	require.Contains(t, out, `[ERROR] [journal] write failed path=/tmp/j.db error="disk full"`)
	require.Contains(t, out, "error=<nil>")
}

func TestLog_MinLevelAndEnabled(t *testing.T) {
	buf := setupLog(t)

	SetMinLevel(LevelWarn)
	Debug(CatEdit, "hidden")
	Info(CatEdit, "hidden")
	Error(CatEdit, "shown")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")

	require.True(t, Enabled())
	SetEnabled(false)
	require.False(t, Enabled())
	Error(CatEdit, "muted")
	require.NotContains(t, buf.String(), "muted")
}

func TestLog_NoLoggerIsNoop(t *testing.T) {
	Reset()
	require.False(t, Enabled())
	require.Nil(t, NewListener(context.Background()))
	Debug(CatEdit, "nobody listening") // No panic
}

func TestListener_ReceivesEntries(t *testing.T) {
	setupLog(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	listener := NewListener(ctx)
	require.NotNil(t, listener)

	Warn(CatCaret, "caret rejected", "offset", 4)

	done := make(chan any, 1)
	go func() { done <- listener.Listen()() }()

	select {
	case msg := <-done:
		event, ok := msg.(LogEvent)
		require.True(t, ok)
		require.Equal(t, LevelWarn, event.Payload.Level)
		require.Equal(t, CatCaret, event.Payload.Category)
		offset, ok := event.Payload.Field("offset")
		require.True(t, ok)
		require.Equal(t, 4, offset)
		require.Equal(t, "[WARN] [caret] caret rejected offset=4", event.Payload.Compact())
	case <-time.After(time.Second):
		t.Fatal("listener did not receive the entry")
	}
}
