package cli

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable debug logging"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// TrackCommand runs the activity sampler until interrupted.
type TrackCommand struct {
	Interval time.Duration `long:"interval" description:"Override the sampling interval (e.g., 10s, 1m)"`
	NoDaemon bool          `long:"no-daemon" description:"Do not serve the status and metrics endpoint"`

	globals *GlobalFlags
	version string
}

// MoodCommand records a mood report from a color.
type MoodCommand struct {
	Color  string `long:"color" description:"Mood color as hex (#RRGGBB or #RGB)"`
	Preset string `long:"preset" description:"Name of a palette color (see 'palette')"`
	Note   string `long:"note" description:"Optional free-text note"`

	globals *GlobalFlags
	version string
	clock   clockwork.Clock // nil means the real clock
}

// PaletteCommand lists the preset capture colors.
type PaletteCommand struct {
	globals *GlobalFlags
	version string
}

// AnalyzeCommand buckets both logs and flags anomalous buckets.
type AnalyzeCommand struct {
	Timeframe     string `long:"timeframe" description:"Bucket width: week | month | year (default from config)"`
	Contamination string `long:"contamination" description:"Expected anomaly share in [0,0.5], or auto (default from config)"`

	globals *GlobalFlags
	version string
}

// TrendCommand prints the sentiment trend series.
type TrendCommand struct {
	Timeframe string `long:"timeframe" description:"Bucket width: week | month | year (default from config)"`

	globals *GlobalFlags
	version string
}

// ConcludeCommand prints the rule-based conclusion.
type ConcludeCommand struct {
	globals *GlobalFlags
	version string
}

// StatusCommand shows store statistics and whether the tracker is up.
type StatusCommand struct {
	globals *GlobalFlags
	version string
}

// ImportCommand copies legacy CSV logs into the configured store.
type ImportCommand struct {
	From         string `long:"from" description:"Directory holding the CSV logs (required)"`
	ActivityFile string `long:"activity-file" description:"Activity log name inside --from" default:"activity_data.csv"`
	MoodFile     string `long:"mood-file" description:"Mood log name inside --from" default:"subjective_data.csv"`

	globals *GlobalFlags
	version string
}
