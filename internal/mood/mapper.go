// Package mood derives a sentiment score and an emotion label from a color.
//
// The mapping is a fixed HSB heuristic. It is pure: the same color always
// yields the same score and label, so scores stored at capture time can be
// trusted without recomputation.
package mood

import "math"

// Score is the valence of a mood report.
type Score int

const (
	Negative Score = -1
	Neutral  Score = 0
	Positive Score = 1
)

// Valid reports whether s is one of -1, 0, 1.
func (s Score) Valid() bool {
	return s >= Negative && s <= Positive
}

// Saturation and brightness cut points of the heuristic.
const (
	lowSaturation    = 0.2
	darkBrightness   = 0.3
	brightBrightness = 0.6
	calmBrightness   = 0.7
)

type band int

const (
	bandBright band = iota
	bandMedium
	bandDark
)

type sector int

const (
	sectorRed sector = iota
	sectorOrangeYellow
	sectorGreen
	sectorBlue
	sectorPurple
	sectorPinkRed
)

var sectorNames = [...]string{"red", "orange-yellow", "green", "blue", "purple", "pink-red"}

func (s sector) String() string { return sectorNames[s] }

type cell struct {
	score Score
	label string
}

// table is indexed by [sector][band]. Every combination is present.
var table = [6][3]cell{
	sectorRed:          {{Neutral, "Intense"}, {Negative, "Angry"}, {Negative, "Frustrated"}},
	sectorOrangeYellow: {{Positive, "Excited"}, {Positive, "Happy"}, {Neutral, "Restless"}},
	sectorGreen:        {{Positive, "Hopeful"}, {Positive, "Content"}, {Neutral, "Peaceful"}},
	sectorBlue:         {{Neutral, "Relaxed"}, {Negative, "Sad"}, {Negative, "Depressed"}},
	sectorPurple:       {{Positive, "Creative"}, {Negative, "Anxious"}, {Negative, "Introspective"}},
	sectorPinkRed:      {{Positive, "Loving"}, {Neutral, "Nostalgic"}, {Negative, "Lonely"}},
}

// MapColor maps a color to a sentiment score and an emotion label.
// It never fails; the returned label is never empty.
func MapColor(c RGB) (Score, string) {
	h, s, v := c.hsv()

	if s < lowSaturation {
		switch {
		case v < darkBrightness:
			return Negative, "Low Energy"
		case v > calmBrightness:
			return Neutral, "Calm"
		default:
			return Neutral, "Apathetic"
		}
	}

	got := table[hueSector(h)][brightnessBand(v)]
	return got.score, reconcile(got.score, got.label)
}

func brightnessBand(v float64) band {
	switch {
	case v > brightBrightness:
		return bandBright
	case v > darkBrightness:
		return bandMedium
	default:
		return bandDark
	}
}

// hueSector splits the wheel into six 60 degree sectors, lower bound
// inclusive, with the red sector centred on 0 and wrapping at 360.
func hueSector(h float64) sector {
	shifted := math.Mod(h+30, 360)
	idx := int(shifted / 60)
	if idx < 0 || idx > int(sectorPinkRed) {
		return sectorRed
	}
	return sector(idx)
}
