package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.Color("#ffc799")
	mint   = lipgloss.Color("#99ffe4")
	coral  = lipgloss.Color("#ff8080")
	muted  = lipgloss.Color("#606060")
	dim    = lipgloss.Color("#a0a0a0")

	TitleStyle     = lipgloss.NewStyle().Bold(true).Foreground(accent)
	CardStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(muted).Padding(0, 1)
	AgentStyle     = lipgloss.NewStyle().Foreground(mint).Bold(true)
	UserStyle      = lipgloss.NewStyle().Foreground(accent).Bold(true)
	TextStyle      = lipgloss.NewStyle()
	HintStyle      = lipgloss.NewStyle().Foreground(dim)
	HelpKeyStyle   = lipgloss.NewStyle().Foreground(accent)
	HelpDescStyle  = lipgloss.NewStyle().Foreground(muted)
	GreenStyle     = lipgloss.NewStyle().Foreground(mint).Bold(true)
	RedStyle       = lipgloss.NewStyle().Foreground(coral).Bold(true)
	CountdownStyle = lipgloss.NewStyle().Foreground(accent)
	CourtStyle     = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(muted)
	ScoreStyle     = lipgloss.NewStyle().Bold(true)
)
