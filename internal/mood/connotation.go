package mood

var positiveWords = map[string]bool{
	"Excited":   true,
	"Happy":     true,
	"Hopeful":   true,
	"Content":   true,
	"Creative":  true,
	"Loving":    true,
	"Energetic": true,
	"Serene":    true,
	"Positive":  true,
}

var negativeWords = map[string]bool{
	"Angry":         true,
	"Frustrated":    true,
	"Sad":           true,
	"Depressed":     true,
	"Anxious":       true,
	"Introspective": true,
	"Lonely":        true,
	"Low Energy":    true,
	"Confused":      true,
	"Negative":      true,
}

var neutralWords = map[string]bool{
	"Intense":    true,
	"Restless":   true,
	"Peaceful":   true,
	"Relaxed":    true,
	"Nostalgic":  true,
	"Calm":       true,
	"Apathetic":  true,
	"Balanced":   true,
	"Mysterious": true,
	"Neutral":    true,
}

// connotation returns the sign a label implies and whether the label is known.
func connotation(label string) (Score, bool) {
	switch {
	case positiveWords[label]:
		return Positive, true
	case negativeWords[label]:
		return Negative, true
	case neutralWords[label]:
		return Neutral, true
	}
	return Neutral, false
}

// reconcile replaces a label whose connotation contradicts score with the
// generic label for that score. Unknown labels are kept.
func reconcile(score Score, label string) string {
	implied, known := connotation(label)
	if label == "" || (known && implied != score) {
		return genericLabel(score)
	}
	return label
}

func genericLabel(score Score) string {
	switch {
	case score > 0:
		return "Positive"
	case score < 0:
		return "Negative"
	default:
		return "Neutral"
	}
}
