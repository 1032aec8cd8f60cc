// Package settings holds the state of the settings screen. The Coordinator
// turns user events into local state transitions or background repository
// writes, and publishes one combined view state.
package settings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/juju/clock"
	"github.com/juju/loggo/v2"

	"github.com/authguard/authguard-terminal/pkg/models"
	"github.com/authguard/authguard-terminal/pkg/scope"
	"github.com/authguard/authguard-terminal/pkg/stream"
)

var logger = loggo.GetLogger("authguard.settings")

const (
	DefaultKeepAlive   = 5 * time.Second
	DefaultRevealDelay = 300 * time.Millisecond
)

var ErrMissingRepository = errors.New("missing repository")

// AppStateRepository stores the singleton application state
type AppStateRepository interface {
	// Observe streams the state, nil until it has been loaded
	Observe() (<-chan *models.AppState, func())
	Replace(ctx context.Context, state models.AppState) error
}

// ServiceRepository stores the service collection
type ServiceRepository interface {
	ClearAll(ctx context.Context) error
}

// Config holds the coordinator's collaborators
type Config struct {
	AppState AppStateRepository
	Services ServiceRepository

	// Clock drives the keep-alive window and the reveal delay. Defaults to
	// the wall clock.
	Clock clock.Clock
	// KeepAlive is how long the view state keeps running after its last
	// observer leaves.
	KeepAlive time.Duration
	// RevealDelay is the pause between storing a new passcode and showing
	// the passcode section. Zero means DefaultRevealDelay.
	RevealDelay time.Duration
	Logger      *loggo.Logger
}

func (c *Config) validate() error {
	if c.AppState == nil {
		return fmt.Errorf("%w: application state", ErrMissingRepository)
	}
	if c.Services == nil {
		return fmt.Errorf("%w: services", ErrMissingRepository)
	}
	if c.Clock == nil {
		c.Clock = clock.WallClock
	}
	if c.KeepAlive <= 0 {
		c.KeepAlive = DefaultKeepAlive
	}
	if c.RevealDelay <= 0 {
		c.RevealDelay = DefaultRevealDelay
	}
	if c.Logger == nil {
		c.Logger = &logger
	}
	return nil
}

// Coordinator owns the settings view state
type Coordinator struct {
	cfg   Config
	log   loggo.Logger
	local *stream.Cell[models.SettingsState]
	app   *stream.Shared[*models.AppState]
	view  *stream.Shared[models.SettingsState]
	tasks *scope.Scope
}

// NewCoordinator validates cfg and returns an idle coordinator. Nothing is
// read from the repositories until the view state is first observed.
func NewCoordinator(cfg Config) (*Coordinator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	c := &Coordinator{
		cfg:   cfg,
		log:   *cfg.Logger,
		local: stream.NewCell(models.SettingsState{}),
		tasks: scope.NewWithLogger(*cfg.Logger),
	}
	// The application state stays subscribed for the coordinator's
	// lifetime once something has asked for it.
	c.app = stream.NewShared[*models.AppState](nil, cfg.Clock, stream.Forever,
		stream.Forward[*models.AppState](stream.SourceFunc[*models.AppState](cfg.AppState.Observe)))
	c.view = stream.NewShared(models.SettingsState{}, cfg.Clock, cfg.KeepAlive,
		stream.Combine2[*models.AppState, models.SettingsState](c.app, c.local, combine))
	return c, nil
}

func combine(app *models.AppState, local models.SettingsState) models.SettingsState {
	local.PasscodeEnabled = app != nil && app.Passcode != nil
	return local
}

// ObserveState returns a replay-latest stream of the view state and the func
// that detaches from it.
func (c *Coordinator) ObserveState() (<-chan models.SettingsState, func()) {
	return c.view.Subscribe()
}

// State returns the latest published view state
func (c *Coordinator) State() models.SettingsState {
	return c.view.Value()
}

// HandleEvent applies a user event. It never blocks on repository writes.
func (c *Coordinator) HandleEvent(event Event) {
	switch e := event.(type) {
	case BuildNumberClick:
		c.log.Tracef("build number clicked")

	case ResetData:
		c.resetData()

	case ChangeSection:
		c.local.Update(func(s models.SettingsState) models.SettingsState {
			if s.CurrentSection == models.SectionPasscode {
				s = s.ResetPasscodeFields()
			}
			s.CurrentSection = e.Section
			return s
		})

	case DeletePasscode:
		c.tasks.Go("delete passcode", func(ctx context.Context) error {
			app := c.app.Value()
			if app == nil {
				return nil
			}
			return c.cfg.AppState.Replace(ctx, app.WithPasscode(nil))
		})

	case StartPasscodeSetting:
		c.local.Update(func(s models.SettingsState) models.SettingsState {
			s.PasscodeSettingsProcess = true
			s.PasscodeSettingsAttempt = 0
			return s
		})

	case EnterPasscode:
		c.enterPasscode(e.Passcode)

	default:
		c.log.Warningf("ignoring unknown settings event %T", event)
	}
}

// enterPasscode advances the wizard. The confirmation entry is not compared
// with the first one: the first entry is stored as soon as a second entry
// arrives.
func (c *Coordinator) enterPasscode(candidate string) {
	var confirming bool
	c.local.Update(func(s models.SettingsState) models.SettingsState {
		if s.PasscodeSettingsAttempt == 1 {
			confirming = true
			return s
		}
		s.PasscodeSettingsCurrent = candidate
		s.PasscodeSettingsAttempt++
		return s
	})
	if !confirming {
		return
	}

	c.tasks.Go("store passcode", func(ctx context.Context) error {
		if app := c.app.Value(); app != nil {
			hash := c.local.Value().PasscodeSettingsCurrent
			if err := c.cfg.AppState.Replace(ctx, app.WithPasscode(&models.Passcode{Hash: hash})); err != nil {
				return err
			}
		}
		select {
		case <-c.cfg.Clock.After(c.cfg.RevealDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
		c.local.Update(func(s models.SettingsState) models.SettingsState {
			s.CurrentSection = models.SectionPasscode
			return s
		})
		return nil
	})
}

func (c *Coordinator) resetData() {
	c.tasks.Go("reset application state", func(ctx context.Context) error {
		return c.cfg.AppState.Replace(ctx, models.DefaultAppState())
	})
	c.tasks.Go("clear services", func(ctx context.Context) error {
		return c.cfg.Services.ClearAll(ctx)
	})
}

// NavigateBack returns to the main section, or calls fallback when already
// there so the host can leave the settings screen.
func (c *Coordinator) NavigateBack(fallback func()) {
	var handled bool
	c.local.Update(func(s models.SettingsState) models.SettingsState {
		if s.CurrentSection == models.SectionMain {
			return s
		}
		handled = true
		s.CurrentSection = models.SectionMain
		return s
	})
	if !handled && fallback != nil {
		fallback()
	}
}

// Close stops both streams and abandons any background write still running
func (c *Coordinator) Close() {
	c.tasks.Close()
	c.view.Close()
	c.app.Close()
}
