package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/zjrosen/textstate/internal/journal"
	"github.com/zjrosen/textstate/internal/script"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestReplay_PrintsResult(t *testing.T) {
	path := writeScript(t, `
text: "hello"
actions:
  - insert: " world"
  - click: 3
  - click: {offset: 5, shift: true}
  - backspace
`)
	var out bytes.Buffer
	require.NoError(t, replay(context.Background(), &out, path, replayOptions{diff: true, check: true}))

	require.Equal(t, `text: "hel world"
selection: 3..3
revision: 2
diff:
hel[-lo-] world
`, out.String())
}

func TestReplay_ReportsRejected(t *testing.T) {
	path := writeScript(t, "text: \"ae\\u0301\"\nactions: [{click: 2}]\n")
	var out bytes.Buffer
	require.NoError(t, replay(context.Background(), &out, path, replayOptions{}))
	require.Contains(t, out.String(), "rejected: [2]")
}

func TestReplay_Traced(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	path := writeScript(t, "text: ab\nactions: [backspace, select_all]\n")
	var out bytes.Buffer
	require.NoError(t, replay(context.Background(), &out, path, replayOptions{tracer: tp.Tracer("test")}))
	require.Len(t, exporter.GetSpans(), 2)
}

func TestReplay_Errors(t *testing.T) {
	var out bytes.Buffer
	err := replay(context.Background(), &out, writeScript(t, "actions: [teleport]"), replayOptions{})
	require.ErrorIs(t, err, script.ErrUnknownAction)

	err = replay(context.Background(), &out, filepath.Join(t.TempDir(), "missing.yaml"), replayOptions{})
	require.Error(t, err)
}

func TestReplay_Journal(t *testing.T) {
	db, err := journal.NewDB(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer db.Close()
	repo := db.Snapshots()

	path := writeScript(t, "text: ab\nactions: [backspace, {insert: c}]\n")
	var out bytes.Buffer
	require.NoError(t, replay(context.Background(), &out, path, replayOptions{journal: repo}))
	require.Contains(t, out.String(), "journal: ")

	sums, err := repo.Sessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sums, 1)
	require.Equal(t, 3, sums[0].Snapshots, "starting snapshot plus one per action")

	var history bytes.Buffer
	require.NoError(t, showHistory(context.Background(), &history, repo, sums[0].SessionID))
	lines := strings.Split(strings.TrimSpace(history.String()), "\n")
	require.Len(t, lines, 3)
	require.Contains(t, lines[0], `"ab"`)
	require.Contains(t, lines[1], "delete.backward")
	require.Contains(t, lines[2], `"ac"`)

	var list bytes.Buffer
	require.NoError(t, listSessions(context.Background(), &list, repo))
	require.Contains(t, list.String(), "snapshots=3")
	require.Contains(t, list.String(), "revision=2")
}

func TestListSessions_Empty(t *testing.T) {
	db, err := journal.NewDB(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer db.Close()

	var out bytes.Buffer
	require.NoError(t, listSessions(context.Background(), &out, db.Snapshots()))
	require.Equal(t, "no sessions recorded\n", out.String())
}

func TestWatchReplay_RerunsOnChange(t *testing.T) {
	path := writeScript(t, "text: a\nactions: [{insert: b}]\n")
	changes := make(chan struct{})
	var out bytes.Buffer

	done := make(chan error, 1)
	go func() {
		done <- watchReplay(context.Background(), &out, path, replayOptions{}, changes)
	}()

	// Unbuffered sends return only once the previous replay has finished.
	changes <- struct{}{}
	require.NoError(t, os.WriteFile(path, []byte("text: a\nactions: [teleport]\n"), 0o600))
	changes <- struct{}{}
	close(changes)
	require.NoError(t, <-done)

	got := out.String()
	require.Contains(t, got, `text: "ab"`)
	require.Contains(t, got, "error: ")
	require.Equal(t, 3, strings.Count(got, "--- watching"))
}

func TestWatchReplay_StopsOnCancel(t *testing.T) {
	path := writeScript(t, "text: a\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	require.NoError(t, watchReplay(ctx, &out, path, replayOptions{}, make(chan struct{})))
}

func TestColorEnabled(t *testing.T) {
	var buf bytes.Buffer

	on, err := colorEnabled("always", &buf)
	require.NoError(t, err)
	require.True(t, on)

	on, err = colorEnabled("never", &buf)
	require.NoError(t, err)
	require.False(t, on)

	on, err = colorEnabled("auto", &buf)
	require.NoError(t, err)
	require.False(t, on, "a buffer is not a color terminal")

	_, err = colorEnabled("rainbow", &buf)
	require.Error(t, err)
}
