// Package tui is the terminal interface: the service list with live codes,
// the settings screen and the unlock screen.
package tui

import (
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/juju/clock"
	"github.com/juju/loggo/v2"

	"github.com/authguard/authguard-terminal/pkg/models"
	"github.com/authguard/authguard-terminal/pkg/settings"
)

var logger = loggo.GetLogger("authguard.tui")

const statusDuration = 3 * time.Second

type sessionState int

const (
	loadingView sessionState = iota
	lockView
	servicesView
	settingsView
)

// ServiceSource streams the stored services
type ServiceSource interface {
	Observe() (<-chan []models.Service, func())
}

// AppStateSource streams the application state, nil until loaded
type AppStateSource interface {
	Observe() (<-chan *models.AppState, func())
}

// SettingsController drives the settings screen
type SettingsController interface {
	ObserveState() (<-chan models.SettingsState, func())
	HandleEvent(settings.Event)
	NavigateBack(fallback func())
}

// Deps are the collaborators of the App
type Deps struct {
	Services ServiceSource
	AppState AppStateSource
	Settings SettingsController
	UI       models.UIConfig
	Version  string

	// StartSection, when set, opens settings at that section once the
	// app is unlocked instead of the service list.
	StartSection *models.Section

	// Clock times the code countdown. Defaults to the wall clock.
	Clock clock.Clock
	// Copy writes to the system clipboard. Defaults to atotto/clipboard.
	Copy func(string) error
}

type App struct {
	state    sessionState
	deps     Deps
	services *ServicesModel
	settings *SettingsModel
	lock     *LockModel

	servicesCh  <-chan []models.Service
	stateCh     <-chan *models.AppState
	appState    *models.AppState
	unlocked    bool
	startAt     *models.Section
	unsubscribe []func()

	width     int
	height    int
	statusMsg string
	statusID  int
}

func NewApp(deps Deps) *App {
	if deps.Clock == nil {
		deps.Clock = clock.WallClock
	}
	if deps.Copy == nil {
		deps.Copy = clipboard.WriteAll
	}
	return &App{
		state:    loadingView,
		deps:     deps,
		services: NewServicesModel(deps.Clock, deps.Copy, deps.UI.ShowCodes),
		settings: NewSettingsModel(deps.Settings, deps.Version),
		lock:     NewLockModel(),
		startAt:  deps.StartSection,
	}
}

func (a *App) Init() tea.Cmd {
	var stopServices, stopState func()
	a.servicesCh, stopServices = a.deps.Services.Observe()
	a.stateCh, stopState = a.deps.AppState.Observe()
	a.unsubscribe = append(a.unsubscribe, stopServices, stopState)

	return tea.Batch(
		a.listenServices(),
		a.listenAppState(),
		tick(),
	)
}

// Close detaches every subscription. Call it after the program exits.
func (a *App) Close() {
	a.settings.Close()
	for _, stop := range a.unsubscribe {
		stop()
	}
	a.unsubscribe = nil
}

func (a *App) listenServices() tea.Cmd {
	return listen(a.servicesCh, func(s []models.Service) tea.Msg { return servicesMsg(s) })
}

func (a *App) listenAppState() tea.Cmd {
	return listen(a.stateCh, func(s *models.AppState) tea.Msg { return appStateMsg{state: s} })
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.services.SetSize(msg.Width, msg.Height)
		a.settings.SetSize(msg.Width, msg.Height)
		a.lock.SetSize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}

	case StatusMsg:
		a.statusMsg = string(msg)
		a.statusID++
		id := a.statusID
		return a, tea.Tick(statusDuration, func(time.Time) tea.Msg { return clearStatusMsg{id: id} })

	case clearStatusMsg:
		if msg.id == a.statusID {
			a.statusMsg = ""
		}
		return a, nil

	case tickMsg:
		a.services.Refresh()
		return a, tick()

	case servicesMsg:
		a.services.SetServices(msg)
		return a, a.listenServices()

	case appStateMsg:
		return a, tea.Batch(a.applyAppState(msg.state), a.listenAppState())

	case settingsStateMsg:
		return a, a.settings.Apply(msg)

	case passcodeHashedMsg, passcodeHashFailedMsg:
		return a, a.settings.Update(msg)

	case unlockFailedMsg:
		return a, a.lock.Update(msg, a.passcodeHash())

	case SwitchViewMsg:
		return a, a.switchTo(msg.view)

	case unlockedMsg:
		a.unlocked = true
		logger.Debugf("unlocked")
		return a, a.home()
	}

	var cmd tea.Cmd
	switch a.state {
	case lockView:
		cmd = a.lock.Update(msg, a.passcodeHash())
	case servicesView:
		cmd = a.services.Update(msg)
	case settingsView:
		cmd = a.settings.Update(msg)
	}
	return a, cmd
}

// applyAppState decides between the lock screen and the service list once
// the application state is known
func (a *App) applyAppState(state *models.AppState) tea.Cmd {
	a.appState = state
	if state == nil {
		return nil
	}

	locked := state.Passcode != nil && !a.unlocked
	switch a.state {
	case loadingView:
		if locked {
			return a.switchTo(lockView)
		}
		a.unlocked = true
		return a.home()
	case lockView:
		// The passcode was removed from outside, for example by a reset
		if state.Passcode == nil {
			a.unlocked = true
			return a.home()
		}
	}
	return nil
}

// home shows the first screen after unlocking. A requested start section
// is honoured once.
func (a *App) home() tea.Cmd {
	if a.startAt == nil {
		return a.switchTo(servicesView)
	}
	section := *a.startAt
	a.startAt = nil
	a.deps.Settings.HandleEvent(settings.ChangeSection{Section: section})
	return a.switchTo(settingsView)
}

func (a *App) passcodeHash() string {
	if a.appState == nil || a.appState.Passcode == nil {
		return ""
	}
	return a.appState.Passcode.Hash
}

func (a *App) switchTo(view sessionState) tea.Cmd {
	if a.state == view {
		return nil
	}
	if a.state == settingsView {
		a.settings.Close()
	}
	a.state = view
	logger.Tracef("switched to view %d", view)

	switch view {
	case settingsView:
		return a.settings.Open()
	case lockView:
		return a.lock.Open()
	}
	return nil
}

func (a *App) View() string {
	if a.width == 0 || a.height == 0 {
		return "Loading..."
	}

	var title, content string
	switch a.state {
	case loadingView:
		content = DescriptionStyle.Render("Loading...")
	case lockView:
		title = "Locked"
		content = a.lock.View()
	case servicesView:
		title = "Services"
		content = a.services.View()
	case settingsView:
		title = a.settings.Title()
		content = a.settings.View()
	}

	view := lipgloss.JoinVertical(lipgloss.Left,
		renderHeader(a.width, title, a.deps.Version),
		"",
		ContentPaddingStyle.Render(content),
	)
	if a.statusMsg != "" {
		view = lipgloss.JoinVertical(lipgloss.Left, view, "", StatusBarStyle.Render(a.statusMsg))
	}
	return view
}

// Messages for communication between views

type StatusMsg string

type clearStatusMsg struct {
	id int
}

type SwitchViewMsg struct {
	view sessionState
}

type tickMsg time.Time

type servicesMsg []models.Service

type appStateMsg struct {
	state *models.AppState
}

type unlockedMsg struct{}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func switchView(view sessionState) tea.Cmd {
	return func() tea.Msg { return SwitchViewMsg{view: view} }
}

func status(format string, args ...interface{}) tea.Cmd {
	return func() tea.Msg { return StatusMsg(fmt.Sprintf(format, args...)) }
}

// listen waits for the next value on ch. A closed channel ends the chain.
func listen[T any](ch <-chan T, wrap func(T) tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		v, ok := <-ch
		if !ok {
			return nil
		}
		return wrap(v)
	}
}
