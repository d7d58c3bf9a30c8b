package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#81C784"}
	muted  = lipgloss.AdaptiveColor{Light: "#757575", Dark: "#9E9E9E"}
	danger = lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#EF9A9A"}

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			MarginBottom(1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Border(lipgloss.RoundedBorder(), true, true, false, true).
			BorderForeground(accent).
			Padding(0, 2)

	tabStyle = lipgloss.NewStyle().
			Foreground(muted).
			Border(lipgloss.RoundedBorder(), true, true, false, true).
			BorderForeground(muted).
			Padding(0, 2)

	bodyStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 2)

	statusStyle = lipgloss.NewStyle().
			Foreground(muted).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(danger)

	listStyle = lipgloss.NewStyle().
			PaddingLeft(2)
)
