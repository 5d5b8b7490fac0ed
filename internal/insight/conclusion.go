// Package insight turns recent mood reports into a short verdict.
package insight

import (
	"fmt"
	"sort"

	"github.com/runnerr0/moodlens/internal/storage"
)

// Kind classifies a Verdict.
type Kind int

const (
	Insufficient Kind = iota
	Positive
	Neutral
	Negative
)

func (k Kind) String() string {
	switch k {
	case Positive:
		return "positive"
	case Neutral:
		return "neutral"
	case Negative:
		return "negative"
	default:
		return "insufficient"
	}
}

const (
	msgPositive = "Great achievement! Your recent mood is positive."
	msgNegative = "You may need some time to relax. Your recent mood is low."
	msgNeutral  = "Well balanced. Your recent mood is neutral."
	msgEmpty    = "No mood entries yet."
)

// Settings are the fixed rules of Conclude.
type Settings struct {
	MinSubmissions    int
	PositiveThreshold float64
	NegativeThreshold float64
}

// DefaultSettings returns the built-in rules: the last 3 reports, mean at
// or above 0.5 is positive, at or below -0.5 is negative.
func DefaultSettings() Settings {
	return Settings{MinSubmissions: 3, PositiveThreshold: 0.5, NegativeThreshold: -0.5}
}

// Verdict is the outcome of Conclude. Mean and Considered are zero for
// Insufficient verdicts.
type Verdict struct {
	Kind       Kind
	Message    string
	Mean       float64
	Considered int
}

// Conclude averages the scores of the MinSubmissions most recent moods by
// timestamp. With fewer moods it returns an Insufficient verdict.
func Conclude(moods []storage.MoodEvent, s Settings) Verdict {
	if s.MinSubmissions < 1 {
		s.MinSubmissions = DefaultSettings().MinSubmissions
	}

	if len(moods) == 0 {
		return Verdict{Kind: Insufficient, Message: msgEmpty}
	}
	if len(moods) < s.MinSubmissions {
		return Verdict{
			Kind:    Insufficient,
			Message: fmt.Sprintf("Need at least %d mood entries for a conclusion.", s.MinSubmissions),
		}
	}

	recent := append([]storage.MoodEvent(nil), moods...)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Timestamp.After(recent[j].Timestamp)
	})
	recent = recent[:s.MinSubmissions]

	var sum int
	for _, m := range recent {
		sum += int(m.Score)
	}
	v := Verdict{Mean: float64(sum) / float64(len(recent)), Considered: len(recent)}

	switch {
	case v.Mean >= s.PositiveThreshold:
		v.Kind, v.Message = Positive, msgPositive
	case v.Mean <= s.NegativeThreshold:
		v.Kind, v.Message = Negative, msgNegative
	default:
		v.Kind, v.Message = Neutral, msgNeutral
	}
	return v
}
