package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/juju/clock"

	"github.com/authguard/authguard-terminal/pkg/authcode"
	"github.com/authguard/authguard-terminal/pkg/models"
)

// ServicesModel lists the services with their current codes
type ServicesModel struct {
	clock     clock.Clock
	copy      func(string) error
	services  []models.Service
	cursor    int
	showCodes bool
	now       time.Time
	width     int
	height    int
}

func NewServicesModel(clk clock.Clock, copy func(string) error, showCodes bool) *ServicesModel {
	return &ServicesModel{
		clock:     clk,
		copy:      copy,
		showCodes: showCodes,
		now:       clk.Now(),
	}
}

func (m *ServicesModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetServices replaces the list, keeping the cursor in range
func (m *ServicesModel) SetServices(services []models.Service) {
	m.services = services
	if m.cursor >= len(services) {
		m.cursor = len(services) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.now = m.clock.Now()
}

// Refresh moves the codes and countdowns to the current time
func (m *ServicesModel) Refresh() {
	m.now = m.clock.Now()
}

func (m *ServicesModel) selected() (models.Service, bool) {
	if len(m.services) == 0 {
		return models.Service{}, false
	}
	return m.services[m.cursor], true
}

func (m *ServicesModel) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	switch keyMsg.String() {
	case "q":
		return tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.services)-1 {
			m.cursor++
		}
	case "h":
		m.showCodes = !m.showCodes
	case "s":
		return switchView(settingsView)
	case "enter", "c":
		return m.copySelected()
	}
	return nil
}

func (m *ServicesModel) copySelected() tea.Cmd {
	svc, ok := m.selected()
	if !ok {
		return nil
	}
	code, err := authcode.Generate(svc, m.clock.Now())
	if err != nil {
		logger.Warningf("cannot generate code for %s: %v", svc.DisplayName(), err)
		return status("Cannot generate code: %v", err)
	}
	if err := m.copy(code); err != nil {
		logger.Errorf("copying code for %s: %v", svc.DisplayName(), err)
		return status("Failed to copy code: %v", err)
	}
	return status("Copied code for %s", svc.DisplayName())
}

func (m *ServicesModel) View() string {
	var b strings.Builder

	b.WriteString(GetActiveHeaderStyle(true).Render("SERVICES"))
	b.WriteString("\n\n")

	if len(m.services) == 0 {
		b.WriteString(EmptyStyle.Render("No services yet."))
		b.WriteString("\n")
		b.WriteString(DescriptionStyle.Render("Add one with: authguard service add <otpauth-uri>"))
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("s settings • q quit"))
		return b.String()
	}

	nameWidth := 0
	for _, svc := range m.services {
		if w := len(svc.DisplayName()); w > nameWidth {
			nameWidth = w
		}
	}
	if nameWidth > 40 {
		nameWidth = 40
	}

	for i, svc := range m.services {
		name := svc.DisplayName()
		if len(name) > nameWidth {
			name = name[:nameWidth-3] + "..."
		}
		line := fmt.Sprintf("%-*s  %s", nameWidth, name, m.renderCode(svc))

		if i == m.cursor {
			b.WriteString(SelectedStyle.Render("▸ " + line))
		} else {
			b.WriteString(NormalStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("↑/↓ select • enter copy • h hide codes • s settings • q quit"))
	return b.String()
}

func (m *ServicesModel) renderCode(svc models.Service) string {
	if !m.showCodes {
		return DescriptionStyle.Render(strings.Repeat("•", digits(svc)))
	}
	code, err := authcode.Generate(svc, m.now)
	if err != nil {
		return ErrorStyle.Render("invalid secret")
	}
	left := int(authcode.Remaining(svc, m.now) / time.Second)
	return CodeStyle.Render(groupDigits(code)) + " " + countdownStyle(left).Render(fmt.Sprintf("%2ds", left))
}

func digits(svc models.Service) int {
	if svc.Digits == 0 {
		return models.DefaultDigits
	}
	return svc.Digits
}

func groupDigits(code string) string {
	if len(code) < 6 {
		return code
	}
	mid := len(code) / 2
	return code[:mid] + " " + code[mid:]
}
