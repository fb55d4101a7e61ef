package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

var (
	accentColor = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	mutedColor  = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
	errorColor  = lipgloss.AdaptiveColor{Light: "#D7263D", Dark: "#FF5F87"}

	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(mutedColor)
	activeTabStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(accentColor).Underline(true)
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(accentColor).MarginRight(2)

	statusStyle      = lipgloss.NewStyle().Foreground(mutedColor)
	statusErrorStyle = lipgloss.NewStyle().Foreground(errorColor).Bold(true)
	promptStyle      = lipgloss.NewStyle().Foreground(accentColor).Bold(true)

	accountStyle = lipgloss.NewStyle().Bold(true)
	userStyle    = lipgloss.NewStyle()
	treeStyle    = lipgloss.NewStyle().Foreground(mutedColor)
)

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(mutedColor).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(accentColor).
		Bold(false)
	return s
}
