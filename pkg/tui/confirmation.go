package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

// ConfirmationConfig holds the configuration for a confirmation prompt
type ConfirmationConfig struct {
	Title       string
	Message     string
	Warning     string   // shown in orange below the message
	Details     []string // optional bullet lines
	Destructive bool     // Yes is red, No is green
	Width       int
}

// ConfirmationModel handles yes/no prompts
type ConfirmationModel struct {
	active    bool
	config    ConfirmationConfig
	onConfirm func() tea.Cmd
	onCancel  func() tea.Cmd
}

// NewConfirmation creates an inactive confirmation
func NewConfirmation() *ConfirmationModel {
	return &ConfirmationModel{}
}

// Show activates the confirmation with the given configuration
func (m *ConfirmationModel) Show(config ConfirmationConfig, onConfirm, onCancel func() tea.Cmd) {
	m.active = true
	m.config = config
	m.onConfirm = onConfirm
	m.onCancel = onCancel
}

// Active returns whether the confirmation is currently shown
func (m *ConfirmationModel) Active() bool {
	return m.active
}

// Update handles key events while the confirmation is shown
func (m *ConfirmationModel) Update(msg tea.KeyMsg) tea.Cmd {
	if !m.active {
		return nil
	}

	switch msg.String() {
	case "y", "Y":
		m.active = false
		if m.onConfirm != nil {
			return m.onConfirm()
		}
	case "n", "N", "esc":
		m.active = false
		if m.onCancel != nil {
			return m.onCancel()
		}
	}
	return nil
}

// View renders the dialog
func (m *ConfirmationModel) View() string {
	if !m.active {
		return ""
	}

	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorActive)).
		Padding(0, 1)
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorWarning))
	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorWarning))

	width := m.config.Width
	if width <= 0 {
		width = 60
	}
	contentWidth := width - 4
	center := lipgloss.NewStyle().Width(contentWidth).Align(lipgloss.Center)

	var b strings.Builder
	if m.config.Title != "" {
		b.WriteString(center.Render(titleStyle.Render(m.config.Title)))
		b.WriteString("\n\n")
	}
	if m.config.Message != "" {
		b.WriteString(center.Render(wordwrap.String(m.config.Message, contentWidth)))
		b.WriteString("\n")
	}
	if m.config.Warning != "" {
		b.WriteString("\n")
		b.WriteString(center.Render(warningStyle.Render(wordwrap.String(m.config.Warning, contentWidth))))
		b.WriteString("\n")
	}
	if len(m.config.Details) > 0 {
		b.WriteString("\n")
		for _, d := range m.config.Details {
			b.WriteString(DescriptionStyle.Render("  • " + d))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(center.Render(formatConfirmOptions(m.config.Destructive)))

	return borderStyle.Width(width).Render(b.String())
}

func formatConfirmOptions(destructive bool) string {
	yes := lipgloss.NewStyle().Bold(true)
	no := lipgloss.NewStyle().Bold(true)
	if destructive {
		yes = yes.Foreground(lipgloss.Color(ColorDanger))
		no = no.Foreground(lipgloss.Color(ColorSuccess))
	}
	return fmt.Sprintf("%s / %s", yes.Render("[y]es"), no.Render("[n]o"))
}
