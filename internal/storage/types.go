package storage

import (
	"errors"
	"time"

	"github.com/runnerr0/moodlens/internal/mood"
)

// ErrStorage marks failures of the underlying storage medium (permissions,
// locks that outlast retries, disk errors). Malformed rows are never
// reported through it; they are skipped.
var ErrStorage = errors.New("storage fault")

// ActivityEvent is one sample of whether the user was at the computer.
type ActivityEvent struct {
	Timestamp time.Time
	Info      string // e.g. "Computer Active" or an application name
}

// MoodEvent is one self-reported mood.
type MoodEvent struct {
	Timestamp time.Time
	Color     mood.RGB
	Emotion   string // may be empty for rows written before labels existed
	Score     mood.Score
	Note      string
}

// Stats holds aggregate statistics about the stored logs.
type Stats struct {
	Backend       string
	ActivityCount int64
	MoodCount     int64
	OldestEvent   time.Time
	NewestEvent   time.Time
	SizeBytes     int64
	TopEmotions   []EmotionCount
}

// EmotionCount pairs an emotion label with the number of mood events
// carrying it.
type EmotionCount struct {
	Emotion string
	Count   int64
}
