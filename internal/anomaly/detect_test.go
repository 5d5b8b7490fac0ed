package anomaly

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/runnerr0/moodlens/internal/aggregate"
)

// weekly builds consecutive weekly buckets with the given active counts.
func weekly(active ...int) []aggregate.Bucket {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]aggregate.Bucket, len(active))
	for i, n := range active {
		s := start.AddDate(0, 0, 7*i)
		out[i] = aggregate.Bucket{
			Start:         s,
			End:           s.AddDate(0, 0, 7),
			ActiveCount:   n,
			ActivityCount: n,
			EmotionCounts: map[string]int{},
		}
	}
	return out
}

func TestDetect_SpikeIsAnomalous(t *testing.T) {
	buckets := weekly(5, 5, 5, 5, 5, 50)

	res := Detect(buckets, DefaultOptions())
	require.True(t, res.Fitted)
	for i := range 5 {
		assert.Equal(t, aggregate.Normal, res.Labels[i], "bucket %d", i)
		assert.Greater(t, res.Decisions[i], 0.0)
	}
	assert.Equal(t, aggregate.Anomalous, res.Labels[5])
	assert.Less(t, res.Decisions[5], 0.0)

	labels := FitPredict(buckets, DefaultOptions())
	require.Len(t, labels, 6)
	assert.Equal(t, aggregate.Anomalous, labels[buckets[5].Start])
	assert.Equal(t, aggregate.Normal, labels[buckets[0].Start])
}

func TestDetect_SpikeScoresMatchClosedForm(t *testing.T) {
	// Every tree isolates the spike with its first split and leaves the
	// five identical points in one leaf, so scores do not depend on the seed.
	res := Detect(weekly(5, 5, 5, 5, 5, 50), Options{Trees: 10, SampleSize: 256, Seed: 1})
	norm := avgPathLength(6)
	assert.InDelta(t, 0.5-math.Pow(2, -1/norm), res.Decisions[5], 1e-9)
	assert.InDelta(t, 0.5-math.Pow(2, -(1+avgPathLength(5))/norm), res.Decisions[0], 1e-9)
}

func TestDetect_FewerThanTwoBuckets(t *testing.T) {
	res := Detect(nil, DefaultOptions())
	assert.False(t, res.Fitted)
	assert.Empty(t, res.Labels)

	res = Detect(weekly(500), DefaultOptions())
	assert.False(t, res.Fitted)
	assert.Equal(t, []aggregate.Label{aggregate.Normal}, res.Labels)
	assert.NotEmpty(t, res.Reason)
}

func TestDetect_ConstantMatrixIsAllNormal(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	opts := DefaultOptions()
	opts.Logger = zap.New(core)

	res := Detect(weekly(3, 3, 3, 3), opts)
	assert.False(t, res.Fitted)
	for _, l := range res.Labels {
		assert.Equal(t, aggregate.Normal, l)
	}
	assert.Equal(t, 1, logs.FilterMessage("skipping anomaly detection").Len())
}

func TestDetect_NonFiniteFeaturesAreAllNormal(t *testing.T) {
	buckets := weekly(1, 2, 3)
	buckets[1].MeanSentiment = math.NaN()
	buckets[1].HasSentiment = true

	res := Detect(buckets, DefaultOptions())
	assert.False(t, res.Fitted)
	assert.Len(t, res.Labels, 3)
	for _, l := range res.Labels {
		assert.Equal(t, aggregate.Normal, l)
	}
}

func TestDetect_Deterministic(t *testing.T) {
	buckets := weekly(4, 9, 2, 7, 7, 30, 1, 8, 6, 5, 3, 12)
	for i := range buckets {
		buckets[i].EmotionCounts["Happy"] = i % 3
		buckets[i].MeanSentiment = float64(i%3) - 1
		buckets[i].HasSentiment = true
	}

	a := Detect(buckets, DefaultOptions())
	b := Detect(buckets, DefaultOptions())
	assert.Equal(t, a.Decisions, b.Decisions)
	assert.Equal(t, a.Labels, b.Labels)
}

func TestDetect_Contamination(t *testing.T) {
	buckets := weekly(10, 11, 9, 10, 12, 10, 11, 9, 10, 40)
	opts := DefaultOptions()
	opts.Contamination = 0.1

	res := Detect(buckets, opts)
	require.True(t, res.Fitted)

	anomalous := 0
	for _, l := range res.Labels {
		if l == aggregate.Anomalous {
			anomalous++
		}
	}
	assert.Equal(t, 1, anomalous)
	assert.Equal(t, aggregate.Anomalous, res.Labels[9])
}

func TestDetect_RecoversFromPanic(t *testing.T) {
	orig := fit
	t.Cleanup(func() { fit = orig })
	fit = func([][]float64, int, int, *rand.Rand) *forest { panic("boom") }

	core, logs := observer.New(zap.ErrorLevel)
	opts := DefaultOptions()
	opts.Logger = zap.New(core)

	res := Detect(weekly(5, 5, 50), opts)
	assert.False(t, res.Fitted)
	assert.Equal(t, []aggregate.Label{aggregate.Normal, aggregate.Normal, aggregate.Normal}, res.Labels)
	assert.Contains(t, res.Reason, "boom")
	assert.Equal(t, 1, logs.Len())
}

func TestJoin(t *testing.T) {
	buckets := weekly(1, 2, 3)
	labels := map[time.Time]aggregate.Label{
		buckets[0].Start: aggregate.Normal,
		buckets[2].Start: aggregate.Anomalous,
	}

	joined := Join(buckets, labels)
	assert.Equal(t, aggregate.Normal, joined[0].Label)
	assert.Equal(t, aggregate.Unlabeled, joined[1].Label)
	assert.Equal(t, aggregate.Anomalous, joined[2].Label)
	assert.Equal(t, aggregate.Unlabeled, buckets[2].Label, "input is not modified")
}

func TestFeatures(t *testing.T) {
	buckets := weekly(4, 0)
	buckets[0].EmotionCounts = map[string]int{"Sad": 2}
	buckets[0].MeanSentiment = -1
	buckets[0].HasSentiment = true
	buckets[1].EmotionCounts = map[string]int{"Calm": 1}
	buckets[1].MeanSentiment = 0.75 // ignored without HasSentiment

	assert.Equal(t, [][]float64{
		{4, -1, 0, 2},
		{0, 0, 1, 0},
	}, Features(buckets))
}

func TestAvgPathLength(t *testing.T) {
	assert.Equal(t, 0.0, avgPathLength(0))
	assert.Equal(t, 0.0, avgPathLength(1))
	assert.Equal(t, 1.0, avgPathLength(2))
	assert.InDelta(t, 2*(math.Log(255)+eulerGamma)-2*255.0/256, avgPathLength(256), 1e-12)
}

func TestQuantile(t *testing.T) {
	v := []float64{4, 1, 3, 2, 5}
	assert.Equal(t, 1.0, quantile(v, 0))
	assert.Equal(t, 3.0, quantile(v, 0.5))
	assert.InDelta(t, 1.4, quantile(v, 0.1), 1e-12)
	assert.Equal(t, []float64{4, 1, 3, 2, 5}, v, "input is not reordered")
}
