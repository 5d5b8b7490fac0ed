package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/runnerr0/moodlens/internal/daemon"
	"github.com/runnerr0/moodlens/internal/storage"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version       string             `json:"version"`
	Backend       string             `json:"backend"`
	DataPath      string             `json:"data_path"`
	SizeBytes     int64              `json:"size_bytes"`
	ActivityCount int64              `json:"activity_count"`
	MoodCount     int64              `json:"mood_count"`
	OldestEvent   string             `json:"oldest_event,omitempty"`
	NewestEvent   string             `json:"newest_event,omitempty"`
	Timeframe     string             `json:"timeframe"`
	TopEmotions   []emotionCountJSON `json:"top_emotions"`
	DaemonEnabled bool               `json:"daemon_enabled"`
	DaemonAddr    string             `json:"daemon_addr,omitempty"`
	DaemonRunning bool               `json:"daemon_running"`
}

type emotionCountJSON struct {
	Emotion string `json:"emotion"`
	Count   int64  `json:"count"`
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
	sess, done, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer done()

	return c.executeWithStore(context.Background(), sess)
}

// executeWithStore runs status against a provided session (for testing).
func (c *StatusCommand) executeWithStore(ctx context.Context, sess *session) error {
	stats, err := sess.store.Stats(ctx)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	dataPath := sess.dataDir
	if stats.Backend == storage.BackendSQLite {
		dataPath = filepath.Join(sess.dataDir, sess.cfg.Storage.SQLiteFile)
	}

	daemonRunning := false
	if sess.cfg.Daemon.Enabled {
		daemonRunning = daemon.Ping(ctx, sess.cfg.Daemon.Addr()) == nil
	}

	if c.globals != nil && c.globals.JSON {
		return c.printStatusJSON(stats, sess, dataPath, daemonRunning)
	}
	return c.printStatusHuman(stats, sess, dataPath, daemonRunning)
}

func (c *StatusCommand) printStatusHuman(stats *storage.Stats, sess *session, dataPath string, daemonRunning bool) error {
	fmt.Println(titleStyle.Render("Moodlens Status"))
	fmt.Println("===============")
	fmt.Printf("Version:       %s\n", c.version)
	fmt.Printf("Store:         %s %s (%s)\n", stats.Backend, dataPath, formatBytes(stats.SizeBytes))
	fmt.Printf("Activity:      %s samples\n", formatNumber(stats.ActivityCount))
	fmt.Printf("Moods:         %s reports\n", formatNumber(stats.MoodCount))

	if stats.ActivityCount+stats.MoodCount > 0 {
		fmt.Printf("Oldest:        %s\n", stats.OldestEvent.Local().Format("2006-01-02"))
		fmt.Printf("Newest:        %s\n", stats.NewestEvent.Local().Format("2006-01-02"))
	} else {
		fmt.Println(dimStyle.Render("No events recorded yet."))
	}

	fmt.Printf("Timeframe:     %s\n", sess.cfg.Analysis.Timeframe)

	if len(stats.TopEmotions) > 0 {
		fmt.Println()
		fmt.Println("Top Emotions:")
		for _, e := range stats.TopEmotions {
			fmt.Printf("  %-20s %s\n", e.Emotion, formatNumber(e.Count))
		}
	}

	fmt.Println()
	switch {
	case !sess.cfg.Daemon.Enabled:
		fmt.Println("Tracker:       endpoint disabled")
	case daemonRunning:
		fmt.Printf("Tracker:       running (%s)\n", sess.cfg.Daemon.Addr())
	default:
		fmt.Println("Tracker:       not running")
	}

	return nil
}

func (c *StatusCommand) printStatusJSON(stats *storage.Stats, sess *session, dataPath string, daemonRunning bool) error {
	out := statusJSON{
		Version:       c.version,
		Backend:       stats.Backend,
		DataPath:      dataPath,
		SizeBytes:     stats.SizeBytes,
		ActivityCount: stats.ActivityCount,
		MoodCount:     stats.MoodCount,
		Timeframe:     sess.cfg.Analysis.Timeframe,
		TopEmotions:   make([]emotionCountJSON, len(stats.TopEmotions)),
		DaemonEnabled: sess.cfg.Daemon.Enabled,
		DaemonRunning: daemonRunning,
	}

	if stats.ActivityCount+stats.MoodCount > 0 {
		out.OldestEvent = stats.OldestEvent.UTC().Format(time.RFC3339)
		out.NewestEvent = stats.NewestEvent.UTC().Format(time.RFC3339)
	}
	if sess.cfg.Daemon.Enabled {
		out.DaemonAddr = sess.cfg.Daemon.Addr()
	}

	for i, e := range stats.TopEmotions {
		out.TopEmotions[i] = emotionCountJSON{Emotion: e.Emotion, Count: e.Count}
	}

	return printJSON(out)
}

// formatBytes formats a byte count into a human-readable string.
func formatBytes(b int64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// formatNumber formats an int64 with comma separators.
func formatNumber(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if i > 0 {
			result.WriteString(",")
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}
