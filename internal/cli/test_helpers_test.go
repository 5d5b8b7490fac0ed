package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/runnerr0/moodlens/internal/config"
	"github.com/runnerr0/moodlens/internal/mood"
	"github.com/runnerr0/moodlens/internal/storage"
)

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// newTestSession opens a fresh store of the given backend in a temp dir,
// with the tracker endpoint disabled.
func newTestSession(t *testing.T, backend string) *session {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Storage.Backend = backend
	cfg.Storage.Path = t.TempDir()
	cfg.Daemon.Enabled = false

	storeCfg, err := storageConfig(cfg)
	require.NoError(t, err)
	store, err := storage.Open(storeCfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return &session{cfg: cfg, log: zap.NewNop(), store: store, dataDir: storeCfg.Dir}
}

// seedMoods appends one mood per hex color, an hour apart, mapped the same
// way the mood command maps them.
func seedMoods(t *testing.T, store storage.Store, start time.Time, colors ...string) {
	t.Helper()
	ctx := context.Background()
	for i, hex := range colors {
		c, err := mood.ParseHex(hex)
		require.NoError(t, err)
		score, label := mood.MapColor(c)
		require.NoError(t, store.AppendMood(ctx, storage.MoodEvent{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Color:     c,
			Emotion:   label,
			Score:     score,
		}))
	}
}

// seedWeeklyActivity appends counts[i] active samples in week i, starting
// on Monday 2024-01-01.
func seedWeeklyActivity(t *testing.T, store storage.Store, tag string, counts ...int) {
	t.Helper()
	ctx := context.Background()
	for week, n := range counts {
		day := time.Date(2024, 1, 1+7*week, 9, 0, 0, 0, time.Local)
		for i := range n {
			require.NoError(t, store.AppendActivity(ctx, storage.ActivityEvent{
				Timestamp: day.Add(time.Duration(i) * time.Minute),
				Info:      tag,
			}))
		}
	}
}
