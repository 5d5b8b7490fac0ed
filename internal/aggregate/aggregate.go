// Package aggregate groups activity and mood events into calendar buckets.
package aggregate

import (
	"sort"
	"time"

	"github.com/runnerr0/moodlens/internal/storage"
)

// DefaultActiveTag is the activity value counted as presence.
const DefaultActiveTag = "Computer Active"

// Label is the anomaly classification attached to a bucket.
type Label int

const (
	Unlabeled Label = iota
	Normal
	Anomalous
)

func (l Label) String() string {
	switch l {
	case Normal:
		return "normal"
	case Anomalous:
		return "anomalous"
	default:
		return ""
	}
}

// Bucket summarizes one calendar period. Start is inclusive, End exclusive.
type Bucket struct {
	Start         time.Time
	End           time.Time
	ActiveCount   int
	ActivityCount int
	MoodCount     int
	EmotionCounts map[string]int
	MeanSentiment float64
	HasSentiment  bool
	Label         Label
}

// Aggregate partitions both streams into tf buckets of the local calendar.
// Only buckets holding at least one event are returned, sorted by Start.
// Mood events with an empty emotion count toward MoodCount and the mean
// but not EmotionCounts.
func Aggregate(activity []storage.ActivityEvent, moods []storage.MoodEvent, tf Timeframe, activeTag string) []Bucket {
	if activeTag == "" {
		activeTag = DefaultActiveTag
	}

	byStart := map[int64]*Bucket{}
	get := func(ts time.Time) *Bucket {
		start := tf.Start(ts.In(time.Local))
		key := start.UnixNano()
		b, ok := byStart[key]
		if !ok {
			b = &Bucket{Start: start, End: tf.Next(start), EmotionCounts: map[string]int{}}
			byStart[key] = b
		}
		return b
	}

	for _, e := range activity {
		b := get(e.Timestamp)
		b.ActivityCount++
		if e.Info == activeTag {
			b.ActiveCount++
		}
	}

	sums := map[*Bucket]int{}
	for _, e := range moods {
		b := get(e.Timestamp)
		b.MoodCount++
		sums[b] += int(e.Score)
		if e.Emotion != "" {
			b.EmotionCounts[e.Emotion]++
		}
	}

	out := make([]Bucket, 0, len(byStart))
	for _, b := range byStart {
		if b.MoodCount > 0 {
			b.MeanSentiment = float64(sums[b]) / float64(b.MoodCount)
			b.HasSentiment = true
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

// EmotionNames returns the sorted union of emotion labels across buckets.
func EmotionNames(buckets []Bucket) []string {
	seen := map[string]bool{}
	var names []string
	for _, b := range buckets {
		for name := range b.EmotionCounts {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}
