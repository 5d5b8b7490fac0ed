package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/runnerr0/moodlens/internal/storage"
)

// Execute implements the go-flags Commander interface for ImportCommand.
func (c *ImportCommand) Execute(args []string) error {
	if c.From == "" {
		return fmt.Errorf("--from is required for import command")
	}

	sess, done, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer done()

	return c.executeWithStore(context.Background(), sess)
}

// executeWithStore imports into a provided session's store (used by tests).
func (c *ImportCommand) executeWithStore(ctx context.Context, sess *session) error {
	info, err := os.Stat(c.From)
	if err != nil {
		return fmt.Errorf("import source: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("import source %s is not a directory", c.From)
	}

	activityPath := filepath.Join(c.From, c.ActivityFile)
	moodPath := filepath.Join(c.From, c.MoodFile)
	if sameStore(sess, activityPath, moodPath) {
		return fmt.Errorf("import source %s is the configured store", c.From)
	}

	src := storage.NewCSVStore(activityPath, moodPath, sess.log)
	res, err := storage.Import(ctx, src, sess.store)
	if err != nil {
		return fmt.Errorf("importing from %s: %w", c.From, err)
	}
	sess.log.Info("import done",
		zap.String("from", c.From),
		zap.Int("activity", res.Activity),
		zap.Int("moods", res.Mood),
	)

	if c.globals != nil && c.globals.JSON {
		return printJSON(map[string]any{
			"from":     c.From,
			"activity": res.Activity,
			"moods":    res.Mood,
		})
	}

	fmt.Printf("Imported %s activity samples and %s mood reports from %s\n",
		formatNumber(int64(res.Activity)), formatNumber(int64(res.Mood)), c.From)
	return nil
}

// sameStore reports whether the CSV files would be imported into themselves.
func sameStore(sess *session, activityPath, moodPath string) bool {
	if !strings.EqualFold(sess.cfg.Storage.Backend, storage.BackendCSV) {
		return false
	}
	same := func(a, b string) bool {
		absA, errA := filepath.Abs(a)
		absB, errB := filepath.Abs(b)
		return errA == nil && errB == nil && absA == absB
	}
	return same(activityPath, filepath.Join(sess.dataDir, sess.cfg.Storage.ActivityFile)) ||
		same(moodPath, filepath.Join(sess.dataDir, sess.cfg.Storage.MoodFile))
}
