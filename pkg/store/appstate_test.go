package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authguard/authguard-terminal/pkg/models"
)

func waitForState(t *testing.T, ch <-chan *models.AppState, match func(*models.AppState) bool) *models.AppState {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case s := <-ch:
			if match(s) {
				return s
			}
		case <-timeout:
			t.Fatal("timed out waiting for application state")
			return nil
		}
	}
}

func TestAppStateObserveStartsNilThenLoads(t *testing.T) {
	s := NewAppStateStore(t.TempDir())
	assert.Nil(t, s.Current())

	ch, unsubscribe := s.Observe()
	defer unsubscribe()

	state := waitForState(t, ch, func(s *models.AppState) bool { return s != nil })
	assert.Equal(t, models.DefaultAppState(), *state)

	<-s.Loaded()
}

func TestAppStateReplacePersistsAndPublishes(t *testing.T) {
	dir := t.TempDir()
	s := NewAppStateStore(dir)
	ch, unsubscribe := s.Observe()
	defer unsubscribe()
	<-s.Loaded()

	want := models.AppState{Started: true, PrivateMode: true, Passcode: &models.Passcode{Hash: "abc"}}
	require.NoError(t, s.Replace(context.Background(), want))

	got := waitForState(t, ch, func(s *models.AppState) bool { return s != nil && s.Passcode != nil })
	assert.Equal(t, want, *got)

	// A fresh store sees the persisted value.
	loaded, err := NewAppStateStore(dir).Load()
	require.NoError(t, err)
	assert.Equal(t, want, loaded)
}

func TestAppStateCurrentIsACopy(t *testing.T) {
	s := NewAppStateStore(t.TempDir())
	require.NoError(t, s.Replace(context.Background(), models.AppState{Passcode: &models.Passcode{Hash: "abc"}}))

	current := s.Current()
	current.Passcode.Hash = "mutated"
	assert.Equal(t, "abc", s.Current().Passcode.Hash)
}

func TestAppStateReplaceHonoursCancelledContext(t *testing.T) {
	s := NewAppStateStore(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Replace(ctx, models.DefaultAppState()), context.Canceled)
	assert.Nil(t, s.Current())
}

func TestAppStateLoadedStartsTheLoad(t *testing.T) {
	s := NewAppStateStore(t.TempDir())

	select {
	case <-s.Loaded():
	case <-time.After(5 * time.Second):
		t.Fatal("Loaded never closed without an observer")
	}
	assert.Equal(t, models.DefaultAppState(), *s.Current())
}

func TestAppStateReloadNeverPublishesStaleState(t *testing.T) {
	dir := t.TempDir()
	s := NewAppStateStore(dir)
	<-s.Loaded()
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		want := models.AppState{Started: true, PrivateMode: i%2 == 0}
		done := make(chan error, 1)
		go func() { done <- s.Replace(ctx, want) }()
		require.NoError(t, s.Reload())
		require.NoError(t, <-done)

		onDisk, err := s.Load()
		require.NoError(t, err)
		assert.Equal(t, onDisk, *s.Current())
	}
}
