package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/authguard/authguard-terminal/pkg/passcode"
)

// LockModel asks for the passcode before the codes are shown
type LockModel struct {
	input    textinput.Model
	checking bool
	failures int
	err      string
	width    int
	height   int
}

type unlockFailedMsg struct {
	err error
}

func newPasscodeInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	ti.CharLimit = passcode.MaxLength
	ti.Width = passcode.MaxLength + 1
	return ti
}

func NewLockModel() *LockModel {
	return &LockModel{
		input: newPasscodeInput("passcode"),
	}
}

func (m *LockModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Open clears the input and focuses it
func (m *LockModel) Open() tea.Cmd {
	m.input.Reset()
	m.err = ""
	m.checking = false
	return m.input.Focus()
}

// Update handles input while locked. hash is the stored passcode hash.
func (m *LockModel) Update(msg tea.Msg, hash string) tea.Cmd {
	switch msg := msg.(type) {
	case unlockFailedMsg:
		m.checking = false
		m.failures++
		m.input.Reset()
		if errors.Is(msg.err, passcode.ErrMismatch) {
			m.err = "Wrong passcode"
		} else {
			m.err = msg.err.Error()
		}
		logger.Infof("unlock attempt failed (%d so far)", m.failures)
		return nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEnter:
			if m.checking {
				return nil
			}
			code := strings.TrimSpace(m.input.Value())
			if err := passcode.Validate(code); err != nil {
				m.err = err.Error()
				return nil
			}
			m.checking = true
			m.err = ""
			return verifyPasscode(hash, code)
		case tea.KeyEsc:
			return tea.Quit
		}
	}

	if m.checking {
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func verifyPasscode(hash, code string) tea.Cmd {
	return func() tea.Msg {
		if err := passcode.Verify(hash, code); err != nil {
			return unlockFailedMsg{err: err}
		}
		return unlockedMsg{}
	}
}

func (m *LockModel) View() string {
	var b strings.Builder
	b.WriteString(GetActiveHeaderStyle(true).Render("ENTER PASSCODE"))
	b.WriteString("\n\n")
	b.WriteString(InputStyle.Render(m.input.View()))
	b.WriteString("\n")
	switch {
	case m.checking:
		b.WriteString(DescriptionStyle.Render("Checking..."))
	case m.err != "":
		b.WriteString(ErrorStyle.Render(m.err))
	}
	b.WriteString("\n\n")
	b.WriteString(HelpStyle.Render("enter unlock • esc quit"))
	return b.String()
}
