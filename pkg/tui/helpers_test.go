package tui

import (
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/authguard/authguard-terminal/pkg/models"
	"github.com/authguard/authguard-terminal/pkg/settings"
	"github.com/authguard/authguard-terminal/pkg/stream"
)

const cmdTimeout = 5 * time.Second

// run executes cmd and returns its message, failing the test if it blocks
func run(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command, got nil")
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	select {
	case msg := <-done:
		return msg
	case <-time.After(cmdTimeout):
		t.Fatal("command did not return")
		return nil
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// fakeController mimics the settings coordinator's local transitions
// synchronously and records every event
type fakeController struct {
	state *stream.Cell[models.SettingsState]

	mu     sync.Mutex
	events []settings.Event
	backs  int
}

func newFakeController() *fakeController {
	return &fakeController{state: stream.NewCell(models.SettingsState{})}
}

func (f *fakeController) ObserveState() (<-chan models.SettingsState, func()) {
	return f.state.Subscribe()
}

func (f *fakeController) HandleEvent(event settings.Event) {
	f.mu.Lock()
	f.events = append(f.events, event)
	f.mu.Unlock()

	switch e := event.(type) {
	case settings.ChangeSection:
		f.state.Update(func(s models.SettingsState) models.SettingsState {
			s.CurrentSection = e.Section
			return s
		})
	case settings.StartPasscodeSetting:
		f.state.Update(func(s models.SettingsState) models.SettingsState {
			s.PasscodeSettingsProcess = true
			s.PasscodeSettingsAttempt = 0
			return s
		})
	case settings.EnterPasscode:
		f.state.Update(func(s models.SettingsState) models.SettingsState {
			if s.PasscodeSettingsAttempt == 0 {
				s.PasscodeSettingsCurrent = e.Passcode
				s.PasscodeSettingsAttempt++
			}
			return s
		})
	}
}

func (f *fakeController) NavigateBack(fallback func()) {
	f.mu.Lock()
	f.backs++
	f.mu.Unlock()

	var atMain bool
	f.state.Update(func(s models.SettingsState) models.SettingsState {
		atMain = s.CurrentSection == models.SectionMain
		s.CurrentSection = models.SectionMain
		return s
	})
	if atMain {
		fallback()
	}
}

func (f *fakeController) recorded() []settings.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]settings.Event(nil), f.events...)
}

type fakeServiceSource struct {
	cell *stream.Cell[[]models.Service]
}

func newFakeServiceSource(services ...models.Service) *fakeServiceSource {
	return &fakeServiceSource{cell: stream.NewCell(services)}
}

func (f *fakeServiceSource) Observe() (<-chan []models.Service, func()) {
	return f.cell.Subscribe()
}

type fakeAppStateSource struct {
	cell *stream.Cell[*models.AppState]
}

func newFakeAppStateSource() *fakeAppStateSource {
	return &fakeAppStateSource{cell: stream.NewCell[*models.AppState](nil)}
}

func (f *fakeAppStateSource) Observe() (<-chan *models.AppState, func()) {
	return f.cell.Subscribe()
}
