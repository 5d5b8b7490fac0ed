package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/runnerr0/moodlens/internal/aggregate"
	"github.com/runnerr0/moodlens/internal/anomaly"
	"github.com/runnerr0/moodlens/internal/insight"
	"github.com/runnerr0/moodlens/internal/storage"
)

const noEventsMessage = "No events recorded yet. Start with 'moodlens track' or 'moodlens mood --color HEX'."

type bucketJSON struct {
	Start         string         `json:"start"`
	End           string         `json:"end"`
	ActiveCount   int            `json:"active_count"`
	ActivityCount int            `json:"activity_count"`
	MoodCount     int            `json:"mood_count"`
	EmotionCounts map[string]int `json:"emotion_counts,omitempty"`
	MeanSentiment *float64       `json:"mean_sentiment"`
	Label         string         `json:"label"`
	Decision      *float64       `json:"decision,omitempty"`
}

// analyzeJSON is the JSON output structure for the analyze command.
type analyzeJSON struct {
	RunID      string       `json:"run_id"`
	Timeframe  string       `json:"timeframe"`
	Fitted     bool         `json:"fitted"`
	Reason     string       `json:"reason,omitempty"`
	Threshold  float64      `json:"threshold"`
	Anomalous  int          `json:"anomalous"`
	Buckets    []bucketJSON `json:"buckets"`
	Conclusion verdictJSON  `json:"conclusion"`
}

// analysis is one aggregate, detect and conclude pass over the store.
type analysis struct {
	runID     string
	timeframe aggregate.Timeframe
	buckets   []aggregate.Bucket
	detection anomaly.Result
	verdict   insight.Verdict
}

// Execute implements the go-flags Commander interface for AnalyzeCommand.
func (c *AnalyzeCommand) Execute(args []string) error {
	sess, done, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer done()

	return c.executeWithStore(context.Background(), sess)
}

// executeWithStore runs the analysis against a provided session (used by tests).
func (c *AnalyzeCommand) executeWithStore(ctx context.Context, sess *session) error {
	tf, err := resolveTimeframe(c.Timeframe, sess.cfg)
	if err != nil {
		return err
	}
	contamination, err := parseContamination(c.Contamination, sess.cfg.Analysis.Contamination)
	if err != nil {
		return err
	}

	a, err := analyze(ctx, sess, tf, contamination)
	if err != nil {
		return err
	}

	if c.globals != nil && c.globals.JSON {
		return printJSON(a.toJSON())
	}
	a.print()
	return nil
}

func analyze(ctx context.Context, sess *session, tf aggregate.Timeframe, contamination float64) (*analysis, error) {
	a := &analysis{runID: uuid.NewString(), timeframe: tf}
	log := sess.log.With(zap.String("run_id", a.runID))

	activity, err := sess.store.LoadActivity(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading activity: %w", err)
	}
	moods, err := sess.store.LoadMood(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading moods: %w", err)
	}
	log.Debug("analysis started",
		zap.Stringer("timeframe", tf),
		zap.Int("activity", len(activity)),
		zap.Int("moods", len(moods)),
	)

	buckets := aggregate.Aggregate(activity, moods, tf, sess.cfg.Sampler.ActiveTag)
	a.detection = anomaly.Detect(buckets, anomaly.Options{
		Trees:         sess.cfg.Analysis.Trees,
		SampleSize:    sess.cfg.Analysis.SampleSize,
		Contamination: contamination,
		Seed:          sess.cfg.Analysis.Seed,
		Logger:        log,
	})

	a.buckets = anomaly.Join(buckets, a.detection.ByStart(buckets))
	a.verdict = insight.Conclude(moods, conclusionSettings(sess.cfg))

	log.Info("analysis done",
		zap.Int("buckets", len(a.buckets)),
		zap.Int("anomalous", a.anomalous()),
		zap.Bool("fitted", a.detection.Fitted),
	)
	return a, nil
}

func (a *analysis) anomalous() int {
	n := 0
	for _, b := range a.buckets {
		if b.Label == aggregate.Anomalous {
			n++
		}
	}
	return n
}

func (a *analysis) print() {
	fmt.Println(titleStyle.Render(fmt.Sprintf("Analysis by %s", a.timeframe)))
	fmt.Println(dimStyle.Render("run " + a.runID))
	fmt.Println()

	if len(a.buckets) == 0 {
		fmt.Println(noEventsMessage)
		fmt.Printf("Conclusion: %s\n", verdictStyle(a.verdict.Kind).Render(a.verdict.Message))
		return
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("%-10s  %7s  %7s  %5s  %9s  %-9s  %s",
		"PERIOD", "ACTIVE", "SAMPLES", "MOODS", "SENTIMENT", "LABEL", "TOP EMOTION")))
	for _, b := range a.buckets {
		sentiment := "-"
		if b.HasSentiment {
			sentiment = formatScore(b.MeanSentiment)
		}
		row := fmt.Sprintf("%-10s  %7d  %7d  %5d  %9s  %-9s  %s",
			b.Start.Format("2006-01-02"), b.ActiveCount, b.ActivityCount, b.MoodCount,
			sentiment, b.Label, topEmotion(b.EmotionCounts))
		if b.Label == aggregate.Anomalous {
			row = anomalousStyle.Render(row)
		}
		fmt.Println(row)
	}

	fmt.Println()
	if a.detection.Fitted {
		fmt.Printf("Anomalous:  %d of %d %ss\n", a.anomalous(), len(a.buckets), a.timeframe)
	} else {
		fmt.Println(dimStyle.Render("Anomaly detection skipped: " + a.detection.Reason))
	}
	fmt.Printf("Conclusion: %s\n", verdictStyle(a.verdict.Kind).Render(a.verdict.Message))
}

func (a *analysis) toJSON() analyzeJSON {
	out := analyzeJSON{
		RunID:      a.runID,
		Timeframe:  a.timeframe.String(),
		Fitted:     a.detection.Fitted,
		Reason:     a.detection.Reason,
		Threshold:  a.detection.Threshold,
		Anomalous:  a.anomalous(),
		Buckets:    make([]bucketJSON, len(a.buckets)),
		Conclusion: newVerdictJSON(a.verdict),
	}
	for i, b := range a.buckets {
		bj := bucketJSON{
			Start:         b.Start.Format(time.RFC3339),
			End:           b.End.Format(time.RFC3339),
			ActiveCount:   b.ActiveCount,
			ActivityCount: b.ActivityCount,
			MoodCount:     b.MoodCount,
			Label:         b.Label.String(),
		}
		if len(b.EmotionCounts) > 0 {
			bj.EmotionCounts = b.EmotionCounts
		}
		if b.HasSentiment {
			mean := b.MeanSentiment
			bj.MeanSentiment = &mean
		}
		if i < len(a.detection.Decisions) {
			d := a.detection.Decisions[i]
			bj.Decision = &d
		}
		out.Buckets[i] = bj
	}
	return out
}

// topEmotion is the most frequent emotion, ties broken by name.
func topEmotion(counts map[string]int) string {
	if len(counts) == 0 {
		return "-"
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return names[0]
}

// loadBuckets aggregates the whole store by tf.
func loadBuckets(ctx context.Context, store storage.Store, tf aggregate.Timeframe, activeTag string) ([]aggregate.Bucket, error) {
	activity, err := store.LoadActivity(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading activity: %w", err)
	}
	moods, err := store.LoadMood(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading moods: %w", err)
	}
	return aggregate.Aggregate(activity, moods, tf, activeTag), nil
}
