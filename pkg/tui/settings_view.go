package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"

	"github.com/authguard/authguard-terminal/pkg/models"
	"github.com/authguard/authguard-terminal/pkg/passcode"
	"github.com/authguard/authguard-terminal/pkg/settings"
)

// SettingsModel renders the settings view state and turns keys into
// settings events. All state lives in the controller; this model only keeps
// what the terminal needs on top of it: the menu cursor, the passcode input
// and the confirmation dialog.
type SettingsModel struct {
	controller SettingsController
	version    string

	state       models.SettingsState
	ch          <-chan models.SettingsState
	unsubscribe func()
	gen         int

	cursor       int
	input        textinput.Model
	wizardActive bool
	hashing      bool
	err          string
	confirm      *ConfirmationModel

	width  int
	height int
}

type settingsStateMsg struct {
	gen   int
	state models.SettingsState
}

type passcodeHashedMsg struct {
	hash       string
	confirming bool
}

type passcodeHashFailedMsg struct {
	err error
}

func NewSettingsModel(controller SettingsController, version string) *SettingsModel {
	return &SettingsModel{
		controller: controller,
		version:    version,
		input:      newPasscodeInput("digits"),
		confirm:    NewConfirmation(),
	}
}

func (m *SettingsModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Open subscribes to the view state
func (m *SettingsModel) Open() tea.Cmd {
	m.Close()
	m.gen++
	m.ch, m.unsubscribe = m.controller.ObserveState()
	return m.listen()
}

// Close drops the subscription. Values already in flight are ignored.
func (m *SettingsModel) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
	m.ch = nil
	m.wizardActive = false
	m.input.Blur()
	m.err = ""
}

func (m *SettingsModel) listen() tea.Cmd {
	gen := m.gen
	return listen(m.ch, func(s models.SettingsState) tea.Msg {
		return settingsStateMsg{gen: gen, state: s}
	})
}

// Apply takes a view state published by the controller
func (m *SettingsModel) Apply(msg settingsStateMsg) tea.Cmd {
	if msg.gen != m.gen || m.ch == nil {
		return nil
	}
	m.state = msg.state
	return m.listen()
}

// State returns the last view state received
func (m *SettingsModel) State() models.SettingsState {
	return m.state
}

func (m *SettingsModel) Title() string {
	if m.state.CurrentSection == models.SectionMain {
		return "Settings"
	}
	return "Settings › " + m.state.CurrentSection.String()
}

func (m *SettingsModel) inWizard() bool {
	return m.wizardActive && m.state.PasscodeSettingsProcess &&
		m.state.CurrentSection == models.SectionPasscode
}

func (m *SettingsModel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case passcodeHashedMsg:
		m.hashing = false
		m.controller.HandleEvent(settings.EnterPasscode{Passcode: msg.hash})
		m.input.Reset()
		if msg.confirming {
			m.wizardActive = false
			m.input.Blur()
			return status("Passcode saved")
		}
		return nil

	case passcodeHashFailedMsg:
		m.hashing = false
		m.err = msg.err.Error()
		logger.Errorf("hashing passcode: %v", msg.err)
		return nil

	case tea.KeyMsg:
		if m.confirm.Active() {
			return m.confirm.Update(msg)
		}
		if m.inWizard() {
			return m.updateWizard(msg)
		}
		if msg.String() == "esc" {
			return m.back()
		}
		switch m.state.CurrentSection {
		case models.SectionMain:
			return m.updateMain(msg)
		case models.SectionPasscode:
			return m.updatePasscode(msg)
		case models.SectionData:
			return m.updateData(msg)
		case models.SectionAbout:
			return m.updateAbout(msg)
		}
	}
	return nil
}

// back asks the controller to go up one level. At the top the settings
// screen is left.
func (m *SettingsModel) back() tea.Cmd {
	var leave bool
	m.controller.NavigateBack(func() { leave = true })
	if leave {
		return switchView(servicesView)
	}
	return nil
}

func (m *SettingsModel) updateMain(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(models.Sections)-1 {
			m.cursor++
		}
	case "enter", "right", "l":
		m.controller.HandleEvent(settings.ChangeSection{Section: models.Sections[m.cursor]})
	}
	return nil
}

func (m *SettingsModel) updatePasscode(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "s", "enter":
		m.wizardActive = true
		m.err = ""
		m.input.Reset()
		m.controller.HandleEvent(settings.StartPasscodeSetting{})
		return m.input.Focus()
	case "d":
		if !m.state.PasscodeEnabled {
			return nil
		}
		m.confirm.Show(ConfirmationConfig{
			Title:       "Remove passcode",
			Message:     "Codes will be shown without asking for the passcode.",
			Destructive: true,
			Width:       m.dialogWidth(),
		}, func() tea.Cmd {
			m.controller.HandleEvent(settings.DeletePasscode{})
			return status("Passcode removed")
		}, nil)
	}
	return nil
}

func (m *SettingsModel) updateWizard(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.wizardActive = false
		m.input.Blur()
		m.err = ""
		return m.back()
	case tea.KeyEnter:
		if m.hashing {
			return nil
		}
		code := strings.TrimSpace(m.input.Value())
		if err := passcode.Validate(code); err != nil {
			m.err = err.Error()
			return nil
		}
		m.err = ""
		m.hashing = true
		return hashPasscode(code, m.state.PasscodeSettingsAttempt == 1)
	}

	if m.hashing {
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func hashPasscode(code string, confirming bool) tea.Cmd {
	return func() tea.Msg {
		hash, err := passcode.Hash(code)
		if err != nil {
			return passcodeHashFailedMsg{err: err}
		}
		return passcodeHashedMsg{hash: hash, confirming: confirming}
	}
}

func (m *SettingsModel) updateData(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "r", "enter":
		m.confirm.Show(ConfirmationConfig{
			Title:       "Reset all data",
			Message:     "Every service will be deleted and the passcode removed.",
			Warning:     "This cannot be undone.",
			Destructive: true,
			Width:       m.dialogWidth(),
		}, func() tea.Cmd {
			m.controller.HandleEvent(settings.ResetData{})
			return status("All data erased")
		}, nil)
	}
	return nil
}

func (m *SettingsModel) updateAbout(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter", "b":
		m.controller.HandleEvent(settings.BuildNumberClick{})
	}
	return nil
}

func (m *SettingsModel) dialogWidth() int {
	if m.width > 0 && m.width-4 < 60 {
		return m.width - 4
	}
	return 60
}

func (m *SettingsModel) View() string {
	if m.confirm.Active() {
		return m.confirm.View()
	}

	var b strings.Builder
	switch m.state.CurrentSection {
	case models.SectionMain:
		m.viewMain(&b)
	case models.SectionPasscode:
		m.viewPasscode(&b)
	case models.SectionData:
		m.viewData(&b)
	case models.SectionAbout:
		m.viewAbout(&b)
	}
	return b.String()
}

func (m *SettingsModel) viewMain(b *strings.Builder) {
	b.WriteString(GetActiveHeaderStyle(true).Render("SETTINGS"))
	b.WriteString("\n\n")
	for i, section := range models.Sections {
		label := section.String()
		if i == m.cursor {
			b.WriteString(SelectedStyle.Render("▸ " + label))
		} else {
			b.WriteString(NormalStyle.Render("  " + label))
		}
		if section == models.SectionPasscode {
			b.WriteString(DescriptionStyle.Render("  " + enabledLabel(m.state.PasscodeEnabled)))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("↑/↓ select • enter open • esc back"))
}

func (m *SettingsModel) viewPasscode(b *strings.Builder) {
	b.WriteString(GetActiveHeaderStyle(true).Render("PASSCODE"))
	b.WriteString("\n\n")

	if m.inWizard() {
		prompt := fmt.Sprintf("Enter a new passcode (%d-%d digits)", passcode.MinLength, passcode.MaxLength)
		if m.state.PasscodeSettingsAttempt == 1 {
			prompt = "Enter the passcode again to confirm"
		}
		b.WriteString(prompt)
		b.WriteString("\n")
		b.WriteString(InputStyle.Render(m.input.View()))
		b.WriteString("\n")
		switch {
		case m.hashing:
			b.WriteString(DescriptionStyle.Render("Saving..."))
		case m.err != "":
			b.WriteString(ErrorStyle.Render(m.err))
		}
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("enter next • esc cancel"))
		return
	}

	if m.state.PasscodeEnabled {
		b.WriteString(SuccessStyle.Render("Passcode is on"))
		b.WriteString("\n")
		b.WriteString(DescriptionStyle.Render("Codes are hidden until the passcode is entered."))
		b.WriteString("\n\n")
		b.WriteString(HelpStyle.Render("s change • d remove • esc back"))
		return
	}
	b.WriteString(NormalStyle.Render("Passcode is off"))
	b.WriteString("\n")
	b.WriteString(DescriptionStyle.Render("Anyone with access to this terminal can read your codes."))
	b.WriteString("\n\n")
	b.WriteString(HelpStyle.Render("s set passcode • esc back"))
}

func (m *SettingsModel) viewData(b *strings.Builder) {
	b.WriteString(GetActiveHeaderStyle(true).Render("DATA"))
	b.WriteString("\n\n")
	text := "Resetting erases every stored service and the passcode, and restores " +
		"the default settings. Make sure every account has another second factor first."
	width := m.width - 4
	if width <= 0 || width > 72 {
		width = 72
	}
	b.WriteString(DescriptionStyle.Render(wordwrap.String(text, width)))
	b.WriteString("\n\n")
	b.WriteString(HelpStyle.Render("r reset all data • esc back"))
}

func (m *SettingsModel) viewAbout(b *strings.Builder) {
	b.WriteString(GetActiveHeaderStyle(true).Render("ABOUT"))
	b.WriteString("\n\n")
	b.WriteString(NormalStyle.Render("authguard, a terminal authenticator"))
	b.WriteString("\n")
	version := m.version
	if version == "" {
		version = "dev"
	}
	b.WriteString(NormalStyle.Render("Build: ") + CodeStyle.Render(version))
	b.WriteString("\n\n")
	b.WriteString(HelpStyle.Render("esc back"))
}

func enabledLabel(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}
