// Package anomaly flags unusual aggregation buckets with an isolation
// forest. The model is refitted from scratch on every call and holds no
// state between calls.
package anomaly

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/runnerr0/moodlens/internal/aggregate"
)

// fit is replaced in tests to exercise fault recovery.
var fit = fitForest

// Options configures a detection run.
type Options struct {
	Trees      int
	SampleSize int
	// Contamination is the expected share of anomalous buckets. Zero
	// selects the automatic threshold (decision value below 0).
	Contamination float64
	Seed          uint64
	Logger        *zap.Logger
}

// DefaultOptions returns the settings used when none are configured.
func DefaultOptions() Options {
	return Options{Trees: 100, SampleSize: 256, Seed: 42}
}

// Result is the outcome of Detect. Decisions and Labels follow the order of
// the input buckets. When Fitted is false every label is Normal and Reason
// says why no model was fitted.
type Result struct {
	Labels    []aggregate.Label
	Decisions []float64
	Threshold float64
	Fitted    bool
	Reason    string
}

// FitPredict labels every bucket, keyed by bucket start.
func FitPredict(buckets []aggregate.Bucket, opts Options) map[time.Time]aggregate.Label {
	return Detect(buckets, opts).ByStart(buckets)
}

// ByStart keys r's labels by the start of the buckets Detect was given.
func (r Result) ByStart(buckets []aggregate.Bucket) map[time.Time]aggregate.Label {
	out := make(map[time.Time]aggregate.Label, len(buckets))
	for i, b := range buckets {
		out[b.Start] = r.Labels[i]
	}
	return out
}

// Detect fits a forest on the buckets' features and labels each bucket.
// It never fails: degenerate input or an internal fault yields all Normal.
func Detect(buckets []aggregate.Bucket, opts Options) (res Result) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	def := DefaultOptions()
	if opts.Trees <= 0 {
		opts.Trees = def.Trees
	}
	if opts.SampleSize <= 0 {
		opts.SampleSize = def.SampleSize
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("anomaly detection failed, labelling all buckets normal", zap.Any("panic", r))
			res = allNormal(len(buckets), fmt.Sprintf("detector fault: %v", r))
		}
	}()

	if len(buckets) < 2 {
		return allNormal(len(buckets), "need at least 2 buckets")
	}
	if opts.Contamination < 0 || opts.Contamination > 0.5 {
		log.Warn("contamination out of range, using automatic threshold", zap.Float64("contamination", opts.Contamination))
		opts.Contamination = 0
	}

	x := Features(buckets)
	if err := checkMatrix(x); err != nil {
		log.Warn("skipping anomaly detection", zap.Error(err))
		return allNormal(len(buckets), err.Error())
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed))
	f := fit(x, opts.Trees, opts.SampleSize, rng)

	res = Result{
		Labels:    make([]aggregate.Label, len(buckets)),
		Decisions: make([]float64, len(buckets)),
		Fitted:    true,
	}
	for i, p := range x {
		res.Decisions[i] = 0.5 - f.score(p)
	}
	if opts.Contamination > 0 {
		res.Threshold = quantile(res.Decisions, opts.Contamination)
	}
	for i, d := range res.Decisions {
		if d < res.Threshold {
			res.Labels[i] = aggregate.Anomalous
		} else {
			res.Labels[i] = aggregate.Normal
		}
	}

	log.Debug("anomaly detection done",
		zap.Int("buckets", len(buckets)),
		zap.Int("features", len(x[0])),
		zap.Float64("threshold", res.Threshold),
	)
	return res
}

// Join returns a copy of buckets with their labels filled in. Buckets
// missing from labels are left Unlabeled.
func Join(buckets []aggregate.Bucket, labels map[time.Time]aggregate.Label) []aggregate.Bucket {
	out := make([]aggregate.Bucket, len(buckets))
	copy(out, buckets)
	for i := range out {
		if l, ok := labels[out[i].Start]; ok {
			out[i].Label = l
		}
	}
	return out
}

func allNormal(n int, reason string) Result {
	labels := make([]aggregate.Label, n)
	for i := range labels {
		labels[i] = aggregate.Normal
	}
	return Result{Labels: labels, Reason: reason}
}

// quantile is the q-quantile of values with linear interpolation between
// order statistics.
func quantile(values []float64, q float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
