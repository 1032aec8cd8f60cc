package tui

import (
	"github.com/charmbracelet/lipgloss"
)

const logo = "authguard"

// renderHeader draws the title on the left and the logo with the version on
// the right
func renderHeader(width int, title, version string) string {
	logoStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("205")).
		Bold(true)

	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorWhite)).
		Background(lipgloss.Color("0")).
		Bold(true).
		Padding(0, 1)

	brand := logoStyle.Render(logo)
	if version != "" {
		brand += DescriptionStyle.Render(" " + version)
	}

	contentWidth := width - 2
	if title == "" {
		return ContentPaddingStyle.Render(
			lipgloss.NewStyle().Width(contentWidth).Align(lipgloss.Right).Render(brand))
	}

	left := titleStyle.Render(title)
	gap := contentWidth - lipgloss.Width(left) - lipgloss.Width(brand)
	if gap < 1 {
		gap = 1
	}
	return ContentPaddingStyle.Render(lipgloss.JoinHorizontal(
		lipgloss.Top,
		left,
		lipgloss.NewStyle().Width(gap).Render(""),
		brand,
	))
}
