package cli

import (
	"context"
	"fmt"

	"github.com/runnerr0/moodlens/internal/insight"
)

// Execute implements the go-flags Commander interface for ConcludeCommand.
func (c *ConcludeCommand) Execute(args []string) error {
	sess, done, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer done()

	return c.executeWithStore(context.Background(), sess)
}

// executeWithStore prints the verdict for a provided session (used by tests).
func (c *ConcludeCommand) executeWithStore(ctx context.Context, sess *session) error {
	moods, err := sess.store.LoadMood(ctx)
	if err != nil {
		return fmt.Errorf("loading moods: %w", err)
	}
	v := insight.Conclude(moods, conclusionSettings(sess.cfg))

	if c.globals != nil && c.globals.JSON {
		return printJSON(newVerdictJSON(v))
	}

	fmt.Println(verdictStyle(v.Kind).Render(v.Message))
	if v.Kind != insight.Insufficient {
		fmt.Println(dimStyle.Render(fmt.Sprintf("Mean %s over the last %d reports.", formatScore(v.Mean), v.Considered)))
	}
	return nil
}
