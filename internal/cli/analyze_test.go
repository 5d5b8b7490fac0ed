package cli

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/moodlens/internal/storage"
)

func TestAnalyze_EmptyStore(t *testing.T) {
	sess := newTestSession(t, storage.BackendCSV)
	cmd := &AnalyzeCommand{globals: &GlobalFlags{}}

	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(context.Background(), sess))
	})

	assert.Contains(t, output, "Analysis by week")
	assert.Contains(t, output, noEventsMessage)
	assert.Contains(t, output, "No mood entries yet.")
}

func TestAnalyze_FlagsActivitySpike(t *testing.T) {
	sess := newTestSession(t, storage.BackendSQLite)
	seedWeeklyActivity(t, sess.store, "Computer Active", 5, 5, 5, 5, 5, 50)

	cmd := &AnalyzeCommand{globals: &GlobalFlags{}}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(context.Background(), sess))
	})

	lines := strings.Split(output, "\n")
	var rows []string
	for _, l := range lines {
		if strings.Contains(l, "2024-") {
			rows = append(rows, l)
		}
	}
	require.Len(t, rows, 6)
	for _, r := range rows[:5] {
		assert.Contains(t, r, "normal")
	}
	assert.Contains(t, rows[5], "2024-02-05")
	assert.Contains(t, rows[5], "anomalous")
	assert.Contains(t, output, "Anomalous:  1 of 6 weeks")
}

func TestAnalyze_JSON(t *testing.T) {
	sess := newTestSession(t, storage.BackendCSV)
	seedWeeklyActivity(t, sess.store, "Computer Active", 5, 5, 5, 5, 5, 50)
	seedMoods(t, sess.store, time.Date(2024, 1, 2, 20, 0, 0, 0, time.Local), "#32CD32", "#000000")

	cmd := &AnalyzeCommand{globals: &GlobalFlags{JSON: true}}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(context.Background(), sess))
	})

	var got analyzeJSON
	require.NoError(t, json.Unmarshal([]byte(output), &got))

	_, err := uuid.Parse(got.RunID)
	assert.NoError(t, err, "run id should be a UUID")
	assert.Equal(t, "week", got.Timeframe)
	assert.True(t, got.Fitted)
	require.Len(t, got.Buckets, 6)

	first := got.Buckets[0]
	assert.Equal(t, 5, first.ActiveCount)
	assert.Equal(t, 2, first.MoodCount)
	require.NotNil(t, first.MeanSentiment)
	assert.InDelta(t, 0.0, *first.MeanSentiment, 1e-9)
	assert.Equal(t, map[string]int{"Hopeful": 1, "Low Energy": 1}, first.EmotionCounts)

	assert.Nil(t, got.Buckets[1].MeanSentiment, "bucket without moods has no mean")
	for _, b := range got.Buckets {
		assert.NotNil(t, b.Decision)
		assert.Contains(t, []string{"normal", "anomalous"}, b.Label)
	}
	assert.Equal(t, "insufficient", got.Conclusion.Kind)
}

func TestAnalyze_SingleBucketSkipsDetection(t *testing.T) {
	sess := newTestSession(t, storage.BackendCSV)
	seedWeeklyActivity(t, sess.store, "Computer Active", 3)

	cmd := &AnalyzeCommand{Timeframe: "year", globals: &GlobalFlags{}}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(context.Background(), sess))
	})

	assert.Contains(t, output, "Analysis by year")
	assert.Contains(t, output, "2024-01-01")
	assert.Contains(t, output, "normal")
	assert.Contains(t, output, "Anomaly detection skipped: need at least 2 buckets")
}

func TestAnalyze_RejectsBadFlags(t *testing.T) {
	sess := newTestSession(t, storage.BackendCSV)

	err := (&AnalyzeCommand{Timeframe: "fortnight", globals: &GlobalFlags{}}).executeWithStore(context.Background(), sess)
	assert.Error(t, err)

	err = (&AnalyzeCommand{Contamination: "0.9", globals: &GlobalFlags{}}).executeWithStore(context.Background(), sess)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid contamination")
}

func TestParseContamination(t *testing.T) {
	v, err := parseContamination("", 0.2)
	require.NoError(t, err)
	assert.Equal(t, 0.2, v)

	v, err = parseContamination("AUTO", 0.2)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	v, err = parseContamination("0.1", 0)
	require.NoError(t, err)
	assert.Equal(t, 0.1, v)

	for _, bad := range []string{"-0.1", "0.51", "lots"} {
		_, err := parseContamination(bad, 0)
		assert.Error(t, err, bad)
	}
}

func TestTopEmotion(t *testing.T) {
	assert.Equal(t, "-", topEmotion(nil))
	assert.Equal(t, "Calm", topEmotion(map[string]int{"Sad": 1, "Calm": 2}))
	assert.Equal(t, "Angry", topEmotion(map[string]int{"Sad": 2, "Angry": 2}))
}

func TestTrend(t *testing.T) {
	sess := newTestSession(t, storage.BackendCSV)
	seedMoods(t, sess.store, time.Date(2024, 1, 1, 9, 0, 0, 0, time.Local), "#32CD32", "#32CD32")
	seedMoods(t, sess.store, time.Date(2024, 3, 4, 9, 0, 0, 0, time.Local), "#000000")
	seedWeeklyActivity(t, sess.store, "Computer Active", 0, 4)

	cmd := &TrendCommand{Timeframe: "m", globals: &GlobalFlags{}}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(context.Background(), sess))
	})

	assert.Contains(t, output, "Sentiment trend by month")
	assert.Contains(t, output, "2024-01-01  +1.00")
	assert.Contains(t, output, "(2 reports)")
	assert.Contains(t, output, "2024-03-01  -1.00")
	assert.NotContains(t, output, "2024-02-01", "months without moods are not plotted")
}

func TestTrend_JSONAndEmpty(t *testing.T) {
	sess := newTestSession(t, storage.BackendCSV)
	seedWeeklyActivity(t, sess.store, "Computer Active", 3)

	output := captureOutput(t, func() {
		require.NoError(t, (&TrendCommand{globals: &GlobalFlags{}}).executeWithStore(context.Background(), sess))
	})
	assert.Contains(t, output, noMoodsMessage)

	output = captureOutput(t, func() {
		require.NoError(t, (&TrendCommand{globals: &GlobalFlags{JSON: true}}).executeWithStore(context.Background(), sess))
	})
	var got trendJSON
	require.NoError(t, json.Unmarshal([]byte(output), &got))
	assert.Equal(t, "week", got.Timeframe)
	assert.NotNil(t, got.Points)
	assert.Empty(t, got.Points)
}

func TestTrendBar(t *testing.T) {
	assert.Equal(t, strings.Repeat(" ", trendBarWidth)+"|", trendBar(0))
	assert.Equal(t, strings.Repeat(" ", trendBarWidth)+"|"+strings.Repeat("=", trendBarWidth), trendBar(1))
	assert.Equal(t, strings.Repeat(" ", trendBarWidth/2)+strings.Repeat("=", trendBarWidth/2)+"|", trendBar(-0.5))
}

func TestConclude(t *testing.T) {
	tests := []struct {
		name   string
		colors []string
		want   string
	}{
		{"empty", nil, "No mood entries yet."},
		{"too few", []string{"#32CD32"}, "Need at least 3 mood entries for a conclusion."},
		{"positive", []string{"#32CD32", "#32CD32", "#808080"}, "Great achievement! Your recent mood is positive."},
		{"negative", []string{"#000000", "#000000", "#808080"}, "You may need some time to relax. Your recent mood is low."},
		{"neutral", []string{"#32CD32", "#000000", "#808080"}, "Well balanced. Your recent mood is neutral."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := newTestSession(t, storage.BackendCSV)
			seedMoods(t, sess.store, time.Date(2024, 6, 1, 8, 0, 0, 0, time.Local), tt.colors...)

			output := captureOutput(t, func() {
				require.NoError(t, (&ConcludeCommand{globals: &GlobalFlags{}}).executeWithStore(context.Background(), sess))
			})
			assert.Contains(t, output, tt.want)
		})
	}
}

func TestConclude_JSON(t *testing.T) {
	sess := newTestSession(t, storage.BackendSQLite)
	seedMoods(t, sess.store, time.Date(2024, 6, 1, 8, 0, 0, 0, time.Local), "#000000", "#32CD32", "#32CD32", "#32CD32")

	output := captureOutput(t, func() {
		require.NoError(t, (&ConcludeCommand{globals: &GlobalFlags{JSON: true}}).executeWithStore(context.Background(), sess))
	})

	var got verdictJSON
	require.NoError(t, json.Unmarshal([]byte(output), &got))
	assert.Equal(t, "positive", got.Kind)
	assert.Equal(t, 1.0, got.Mean, "only the three most recent reports count")
	assert.Equal(t, 3, got.Considered)
}
