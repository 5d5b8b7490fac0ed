package anomaly

import (
	"errors"
	"fmt"
	"math"

	"github.com/runnerr0/moodlens/internal/aggregate"
)

var errConstant = errors.New("every feature is constant")

// Features builds one row per bucket: active count, mean sentiment (0 when
// the bucket has no mood events), then the count of each emotion in
// aggregate.EmotionNames order.
func Features(buckets []aggregate.Bucket) [][]float64 {
	names := aggregate.EmotionNames(buckets)
	x := make([][]float64, len(buckets))
	for i, b := range buckets {
		row := make([]float64, 0, 2+len(names))
		row = append(row, float64(b.ActiveCount))
		if b.HasSentiment {
			row = append(row, b.MeanSentiment)
		} else {
			row = append(row, 0)
		}
		for _, name := range names {
			row = append(row, float64(b.EmotionCounts[name]))
		}
		x[i] = row
	}
	return x
}

func checkMatrix(x [][]float64) error {
	varies := false
	for i, row := range x {
		for q, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("non-finite feature %d in row %d", q, i)
			}
			if i > 0 && v != x[0][q] {
				varies = true
			}
		}
	}
	if !varies {
		return errConstant
	}
	return nil
}
