package playground

import "github.com/charmbracelet/lipgloss"

var (
	textColor      = lipgloss.AdaptiveColor{Light: "#1F1F1F", Dark: "#CCCCCC"}
	mutedColor     = lipgloss.AdaptiveColor{Light: "#888888", Dark: "#696969"}
	selectionColor = lipgloss.AdaptiveColor{Light: "#BFD7EA", Dark: "#3A3F4B"}
	caretColor     = lipgloss.AdaptiveColor{Light: "#1A5276", Dark: "#54A0FF"}
	warningColor   = lipgloss.AdaptiveColor{Light: "#B7950B", Dark: "#FECA57"}
	borderColor    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#696969"}

	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(caretColor).PaddingRight(1)
	textStyle      = lipgloss.NewStyle().Foreground(textColor)
	selectionStyle = lipgloss.NewStyle().Foreground(textColor).Background(selectionColor)
	caretStyle     = lipgloss.NewStyle().Reverse(true)
	statusStyle    = lipgloss.NewStyle().Foreground(mutedColor)
	warningStyle   = lipgloss.NewStyle().Foreground(warningColor)

	diagnosticsStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder(), true, false, false, false).
				BorderForeground(borderColor).
				Foreground(mutedColor)
)
