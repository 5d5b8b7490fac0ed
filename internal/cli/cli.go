package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Track    *TrackCommand
	Mood     *MoodCommand
	Palette  *PaletteCommand
	Analyze  *AnalyzeCommand
	Trend    *TrendCommand
	Conclude *ConcludeCommand
	Status   *StatusCommand
	Import   *ImportCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "moodlens"
	parser.LongDescription = "Local mood and activity tracking with anomaly detection over time."

	cmds := &commands{
		Track:    &TrackCommand{globals: &globals, version: version},
		Mood:     &MoodCommand{globals: &globals, version: version},
		Palette:  &PaletteCommand{globals: &globals, version: version},
		Analyze:  &AnalyzeCommand{globals: &globals, version: version},
		Trend:    &TrendCommand{globals: &globals, version: version},
		Conclude: &ConcludeCommand{globals: &globals, version: version},
		Status:   &StatusCommand{globals: &globals, version: version},
		Import:   &ImportCommand{globals: &globals, version: version},
	}

	parser.AddCommand("track", "Record activity samples", "Sample computer activity on a fixed interval until interrupted, firing mood reminders and serving status and metrics.", cmds.Track)
	parser.AddCommand("mood", "Record a mood from a color", "Map a color to a sentiment score and emotion label, append it to the mood log and print the refreshed conclusion.", cmds.Mood)
	parser.AddCommand("palette", "List preset mood colors", "List the preset capture colors with the label and score each one maps to.", cmds.Palette)
	parser.AddCommand("analyze", "Aggregate and flag anomalies", "Group events into calendar buckets, flag anomalous buckets and print the conclusion.", cmds.Analyze)
	parser.AddCommand("trend", "Print the sentiment trend", "Print the mean sentiment of every bucket that has mood reports.", cmds.Trend)
	parser.AddCommand("conclude", "Print the mood conclusion", "Print the verdict over the most recent mood reports.", cmds.Conclude)
	parser.AddCommand("status", "Show store statistics", "Show store statistics, configuration summary and tracker reachability.", cmds.Status)
	parser.AddCommand("import", "Import CSV logs", "Copy the activity and mood CSV logs in a directory into the configured store.", cmds.Import)

	return parser, &globals, cmds
}

// Run is the main entry point for the moodlens CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// Handle --version before parser (go-flags requires a subcommand, but
	// --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("moodlens %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
