package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/runnerr0/moodlens/internal/insight"
)

// Styles render as plain text when stdout is not a terminal.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("45")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	anomalousStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	positiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")).
			Bold(true)

	neutralStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226"))

	negativeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("208")).
			Bold(true)
)

func verdictStyle(k insight.Kind) lipgloss.Style {
	switch k {
	case insight.Positive:
		return positiveStyle
	case insight.Negative:
		return negativeStyle
	case insight.Neutral:
		return neutralStyle
	default:
		return dimStyle
	}
}
