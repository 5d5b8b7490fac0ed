package cli

import (
	"fmt"

	"github.com/runnerr0/moodlens/internal/mood"
)

type presetJSON struct {
	Name    string `json:"name"`
	Color   string `json:"color"`
	Emotion string `json:"emotion"`
	Score   int    `json:"score"`
}

// Execute implements the go-flags Commander interface for PaletteCommand.
func (c *PaletteCommand) Execute(args []string) error {
	presets := mood.Palette()

	if c.globals != nil && c.globals.JSON {
		out := make([]presetJSON, len(presets))
		for i, p := range presets {
			score, label := mood.MapColor(p.Color)
			out[i] = presetJSON{Name: p.Name, Color: p.Color.Hex(), Emotion: label, Score: int(score)}
		}
		return printJSON(out)
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("%-15s %-8s %-14s %s", "PRESET", "COLOR", "EMOTION", "SCORE")))
	for _, p := range presets {
		score, label := mood.MapColor(p.Color)
		fmt.Printf("%-15s %-8s %-14s %+d\n", p.Name, p.Color.Hex(), label, int(score))
	}
	return nil
}
