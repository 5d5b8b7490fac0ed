package aggregate

import "time"

// TrendPoint is one point of the sentiment series.
type TrendPoint struct {
	Start time.Time
	Mean  float64
	Count int
}

// SentimentTrend returns the mean sentiment of every bucket that has mood
// events, in bucket order. Buckets without mood events are skipped, not
// plotted as zero.
func SentimentTrend(buckets []Bucket) []TrendPoint {
	points := []TrendPoint{}
	for _, b := range buckets {
		if !b.HasSentiment {
			continue
		}
		points = append(points, TrendPoint{Start: b.Start, Mean: b.MeanSentiment, Count: b.MoodCount})
	}
	return points
}
