package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/runnerr0/moodlens/internal/insight"
	"github.com/runnerr0/moodlens/internal/mood"
	"github.com/runnerr0/moodlens/internal/storage"
)

// moodJSON is the JSON output structure for the mood command.
type moodJSON struct {
	Timestamp  string      `json:"timestamp"`
	Color      string      `json:"color"`
	Emotion    string      `json:"emotion"`
	Score      int         `json:"score"`
	Note       string      `json:"note,omitempty"`
	Conclusion verdictJSON `json:"conclusion"`
}

// Execute implements the go-flags Commander interface for MoodCommand.
func (c *MoodCommand) Execute(args []string) error {
	if c.Color == "" && c.Preset == "" {
		return fmt.Errorf("--color or --preset is required for mood command")
	}
	if c.Color != "" && c.Preset != "" {
		return fmt.Errorf("--color and --preset are mutually exclusive")
	}

	sess, done, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer done()

	return c.executeWithStore(context.Background(), sess)
}

func (c *MoodCommand) resolveColor() (mood.RGB, error) {
	if c.Preset != "" {
		p, ok := mood.LookupPreset(c.Preset)
		if !ok {
			return mood.RGB{}, fmt.Errorf("unknown preset %q (run 'moodlens palette' for the list)", c.Preset)
		}
		return p.Color, nil
	}
	return mood.ParseHex(c.Color)
}

// executeWithStore records the mood against a provided session (used by tests).
func (c *MoodCommand) executeWithStore(ctx context.Context, sess *session) error {
	color, err := c.resolveColor()
	if err != nil {
		return err
	}

	clock := c.clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	score, label := mood.MapColor(color)
	event := storage.MoodEvent{
		Timestamp: clock.Now(),
		Color:     color,
		Emotion:   label,
		Score:     score,
		Note:      c.Note,
	}
	if err := sess.store.AppendMood(ctx, event); err != nil {
		return fmt.Errorf("recording mood: %w", err)
	}

	moods, err := sess.store.LoadMood(ctx)
	if err != nil {
		return fmt.Errorf("loading moods: %w", err)
	}
	verdict := insight.Conclude(moods, conclusionSettings(sess.cfg))

	// Output confirmation
	if c.globals != nil && c.globals.JSON {
		return printJSON(moodJSON{
			Timestamp:  event.Timestamp.Format(time.RFC3339),
			Color:      color.Hex(),
			Emotion:    label,
			Score:      int(score),
			Note:       event.Note,
			Conclusion: newVerdictJSON(verdict),
		})
	}

	fmt.Printf("Recorded %s (%+d) for %s at %s\n", label, int(score), color.Hex(), event.Timestamp.Format("2006-01-02 15:04"))
	if event.Note != "" {
		fmt.Printf("  Note: %s\n", event.Note)
	}
	fmt.Printf("Conclusion: %s\n", verdictStyle(verdict.Kind).Render(verdict.Message))

	return nil
}
