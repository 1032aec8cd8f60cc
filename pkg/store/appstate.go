package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/authguard/authguard-terminal/pkg/models"
	"github.com/authguard/authguard-terminal/pkg/stream"
)

// AppStateStore persists the application state in state.yaml and streams
// it to observers. Observers see nil until the first load completes.
type AppStateStore struct {
	path string
	cell *stream.Cell[*models.AppState]

	mu       sync.Mutex
	loadOnce sync.Once
	loaded   chan struct{}
}

// NewAppStateStore creates a store rooted at the data directory dir
func NewAppStateStore(dir string) *AppStateStore {
	return &AppStateStore{
		path:   filepath.Join(dir, StateFile),
		cell:   stream.NewCell[*models.AppState](nil),
		loaded: make(chan struct{}),
	}
}

// Observe starts loading on first use and returns a replay-latest stream of
// the state. The stream holds nil until the state has been read.
func (s *AppStateStore) Observe() (<-chan *models.AppState, func()) {
	s.startLoad()
	return s.cell.Subscribe()
}

// Loaded starts the initial load if needed and returns a channel closed
// once it has finished
func (s *AppStateStore) Loaded() <-chan struct{} {
	s.startLoad()
	return s.loaded
}

func (s *AppStateStore) startLoad() {
	s.loadOnce.Do(func() {
		go func() {
			defer close(s.loaded)
			if err := s.Reload(); err != nil {
				logger.Errorf("failed to load application state: %v", err)
			}
		}()
	})
}

// Current returns the last loaded state, or nil
func (s *AppStateStore) Current() *models.AppState {
	return cloneState(s.cell.Value())
}

// Load reads the state from disk without publishing it. A missing file
// yields the default state.
func (s *AppStateStore) Load() (models.AppState, error) {
	state := models.DefaultAppState()
	if _, err := readYAML(s.path, &state); err != nil {
		return models.AppState{}, fmt.Errorf("failed to read application state: %w", err)
	}
	return state, nil
}

// Reload reads the state from disk and publishes it to observers. It is
// serialized with Replace so a stale read never overwrites a newer write.
func (s *AppStateStore) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.Load()
	if err != nil {
		return err
	}
	s.cell.Set(&state)
	return nil
}

// Replace writes state wholesale and publishes it
func (s *AppStateStore) Replace(ctx context.Context, state models.AppState) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeYAML(s.path, state); err != nil {
		return fmt.Errorf("failed to write application state: %w", err)
	}
	s.cell.Set(cloneState(&state))
	logger.Debugf("application state replaced (passcode set: %v)", state.Passcode != nil)
	return nil
}

func cloneState(state *models.AppState) *models.AppState {
	if state == nil {
		return nil
	}
	c := *state
	if state.Passcode != nil {
		p := *state.Passcode
		c.Passcode = &p
	}
	return &c
}
