package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/runnerr0/moodlens/internal/mood"
)

// writeLogs creates a CSVStore over hand-written log contents.
func writeLogs(t *testing.T, activity, moods string) *CSVStore {
	t.Helper()
	s, _ := writeLogsObserved(t, activity, moods)
	return s
}

func writeLogsObserved(t *testing.T, activity, moods string) (*CSVStore, *observer.ObservedLogs) {
	t.Helper()
	dir := t.TempDir()
	ap := filepath.Join(dir, "activity_data.csv")
	mp := filepath.Join(dir, "subjective_data.csv")
	if activity != "" {
		require.NoError(t, os.WriteFile(ap, []byte(activity), 0o644))
	}
	if moods != "" {
		require.NoError(t, os.WriteFile(mp, []byte(moods), 0o644))
	}
	core, logs := observer.New(zap.WarnLevel)
	return NewCSVStore(ap, mp, zap.New(core)), logs
}

func TestCSVStore_LegacyActivityHeader(t *testing.T) {
	s := writeLogs(t, "Timestamp,ActiveApp\n2024-01-02 10:00:00,Computer Active\n2024-01-02 10:00:10,Computer Idle\n", "")

	got, err := s.LoadActivity(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Computer Active", got[0].Info)
	assert.True(t, time.Date(2024, 1, 2, 10, 0, 0, 0, time.Local).Equal(got[0].Timestamp))
}

func TestCSVStore_MoodV1Header(t *testing.T) {
	s := writeLogs(t, "", "Timestamp,ColorChoice,OptionalText\n2024-01-02T10:00:00,#FF0000,\"rough, long day\"\n")

	got, err := s.LoadMood(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, mood.RGB{R: 0xFF}, got[0].Color)
	assert.Equal(t, "", got[0].Emotion)
	assert.Equal(t, mood.Neutral, got[0].Score)
	assert.Equal(t, "rough, long day", got[0].Note)
}

func TestCSVStore_MoodV2Header(t *testing.T) {
	s := writeLogs(t, "", "Timestamp,ColorChoice,Emotion,OptionalText\n2024-01-02T10:00:00,#FFD700,Excited,\n")

	got, err := s.LoadMood(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Excited", got[0].Emotion)
	assert.Equal(t, mood.Neutral, got[0].Score, "missing score defaults to 0")
}

func TestCSVStore_ReorderedColumns(t *testing.T) {
	s := writeLogs(t, "", "\ufeffSentimentScore,Timestamp,OptionalText,Emotion,ColorChoice\n-1,2024-01-02T10:00:00Z,,Sad,#0000CD\n1.0,2024-01-03T10:00:00Z,,Happy,#FFFF00\n")

	got, err := s.LoadMood(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, mood.Negative, got[0].Score)
	assert.Equal(t, "Sad", got[0].Emotion)
	assert.Equal(t, mood.Positive, got[1].Score)
}

func TestCSVStore_AppendAfterLegacyHeader(t *testing.T) {
	s := writeLogs(t, "", "Timestamp,ColorChoice,Emotion,OptionalText\n2024-01-02T10:00:00,#FFD700,Excited,old\n")
	ctx := context.Background()

	require.NoError(t, s.AppendMood(ctx, MoodEvent{
		Timestamp: base,
		Color:     mood.RGB{B: 0xFF},
		Emotion:   "Sad",
		Score:     mood.Negative,
		Note:      "new",
	}))

	got, err := s.LoadMood(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "old", got[0].Note)
	assert.Equal(t, "Sad", got[1].Emotion)
	assert.Equal(t, mood.Negative, got[1].Score)
	assert.Equal(t, "new", got[1].Note)
}

func TestCSVStore_V2RowsAfterV1Header(t *testing.T) {
	s, logs := writeLogsObserved(t, "", strings.Join([]string{
		"Timestamp,ColorChoice,OptionalText",
		"2024-01-02T10:00:00,#FF0000,old note",
		"2024-01-03T10:00:00,#FFFF00,Happy,great day",
		"2024-01-04T10:00:00,#0000FF,Sad,-1,current",
	}, "\n")+"\n")

	got, err := s.LoadMood(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "", got[0].Emotion)
	assert.Equal(t, "old note", got[0].Note)

	assert.Equal(t, "Happy", got[1].Emotion)
	assert.Equal(t, "great day", got[1].Note)
	assert.Equal(t, mood.Neutral, got[1].Score)

	assert.Equal(t, "Sad", got[2].Emotion)
	assert.Equal(t, mood.Negative, got[2].Score)
	assert.Equal(t, "current", got[2].Note)

	assert.Zero(t, logs.Len())
}

func TestCSVStore_MalformedRowsAreDroppedAndLogged(t *testing.T) {
	s, logs := writeLogsObserved(t, "", strings.Join([]string{
		"Timestamp,ColorChoice,Emotion,SentimentScore,OptionalText",
		"2024-01-02T10:00:00Z,#FFD700,Excited,1,",
		"yesterday-ish,#FFD700,Excited,1,",
		"2024-01-02T11:00:00Z,chartreuse,Happy,1,",
		"2024-01-02T12:00:00Z,#00FF00,Hopeful,abc,",
		"2024-01-02T13:00:00Z,#00FF00,Hopeful,7,",
		"2024-01-02T14:00:00Z",
		"2024-01-02T15:00:00Z,#0000FF,Sad,-1,",
	}, "\n")+"\n")

	got, err := s.LoadMood(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Excited", got[0].Emotion)
	assert.Equal(t, "Sad", got[1].Emotion)

	dropped := logs.FilterMessage("skipping malformed row").All()
	assert.Len(t, dropped, 5)
}

func TestCSVStore_HeaderlessLog(t *testing.T) {
	s := writeLogs(t, "2024-01-02T10:00:00Z,Computer Active\n", "")

	got, err := s.LoadActivity(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Computer Active", got[0].Info)
}

func TestCSVStore_WritesHeaderOnce(t *testing.T) {
	s := openTestCSVStore(t)
	ctx := context.Background()

	for range 3 {
		require.NoError(t, s.AppendActivity(ctx, ActivityEvent{Timestamp: base, Info: "Computer Idle"}))
	}

	raw, err := os.ReadFile(s.activityPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Timestamp,ActiveInfo", lines[0])
	assert.Equal(t, 1, strings.Count(string(raw), "Timestamp"))
}

func TestCSVStore_ConcurrentAppends(t *testing.T) {
	s := openTestCSVStore(t)
	ctx := context.Background()

	done := make(chan struct{})
	for i := range 8 {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := range 25 {
				ts := base.Add(time.Duration(i*100+j) * time.Second)
				assert.NoError(t, s.AppendActivity(ctx, ActivityEvent{Timestamp: ts, Info: "Computer Active"}))
			}
		}()
	}
	for range 8 {
		<-done
	}

	got, err := s.LoadActivity(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 200)
}
