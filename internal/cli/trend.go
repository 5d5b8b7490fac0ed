package cli

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/runnerr0/moodlens/internal/aggregate"
)

const noMoodsMessage = "No mood reports yet. Record one with 'moodlens mood --color HEX'."

// trendBarWidth is the bar length of a mean of ±1.
const trendBarWidth = 20

type trendPointJSON struct {
	Start string  `json:"start"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

type trendJSON struct {
	Timeframe string           `json:"timeframe"`
	Points    []trendPointJSON `json:"points"`
}

// Execute implements the go-flags Commander interface for TrendCommand.
func (c *TrendCommand) Execute(args []string) error {
	sess, done, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer done()

	return c.executeWithStore(context.Background(), sess)
}

// executeWithStore prints the trend for a provided session (used by tests).
func (c *TrendCommand) executeWithStore(ctx context.Context, sess *session) error {
	tf, err := resolveTimeframe(c.Timeframe, sess.cfg)
	if err != nil {
		return err
	}

	buckets, err := loadBuckets(ctx, sess.store, tf, sess.cfg.Sampler.ActiveTag)
	if err != nil {
		return err
	}
	points := aggregate.SentimentTrend(buckets)

	if c.globals != nil && c.globals.JSON {
		out := trendJSON{Timeframe: tf.String(), Points: make([]trendPointJSON, len(points))}
		for i, p := range points {
			out.Points[i] = trendPointJSON{Start: p.Start.Format(time.RFC3339), Mean: p.Mean, Count: p.Count}
		}
		return printJSON(out)
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("Sentiment trend by %s", tf)))
	if len(points) == 0 {
		fmt.Println(noMoodsMessage)
		return nil
	}
	for _, p := range points {
		fmt.Printf("%s  %s  %-*s  %s\n",
			p.Start.Format("2006-01-02"), formatScore(p.Mean), 2*trendBarWidth+1, trendBar(p.Mean),
			dimStyle.Render(fmt.Sprintf("(%d reports)", p.Count)))
	}
	return nil
}

// trendBar draws mean on a centred axis: bars grow left of | when negative
// and right of it when positive.
func trendBar(mean float64) string {
	n := int(math.Round(math.Min(math.Abs(mean), 1) * trendBarWidth))
	left := strings.Repeat(" ", trendBarWidth)
	right := ""
	if mean < 0 {
		left = strings.Repeat(" ", trendBarWidth-n) + strings.Repeat("=", n)
	} else {
		right = strings.Repeat("=", n)
	}
	return left + "|" + right
}
