package store

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authguard/authguard-terminal/pkg/models"
)

type countingReloader struct {
	n atomic.Int32
}

func (r *countingReloader) Reload() error {
	r.n.Add(1)
	return nil
}

func TestWatcherReloadsOnExternalWrite(t *testing.T) {
	dir := t.TempDir()
	tui := NewAppStateStore(dir)
	ch, unsubscribe := tui.Observe()
	defer unsubscribe()
	<-tui.Loaded()

	w, err := NewWatcher(dir, map[string]Reloader{StateFile: tui})
	require.NoError(t, err)
	defer w.Close()

	// Another process writes the same file.
	other := NewAppStateStore(dir)
	want := models.AppState{Started: true, Passcode: &models.Passcode{Hash: "h"}}
	require.NoError(t, other.Replace(context.Background(), want))

	got := waitForState(t, ch, func(s *models.AppState) bool { return s != nil && s.Passcode != nil })
	assert.Equal(t, want, *got)
}

func TestWatcherIgnoresUnwatchedFiles(t *testing.T) {
	dir := t.TempDir()
	r := &countingReloader{}
	w, err := NewWatcher(dir, map[string]Reloader{StateFile: r})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, WriteConfig(dir, models.DefaultConfig()))
	time.Sleep(200 * time.Millisecond)
	assert.Zero(t, r.n.Load())
}

func TestWatcherMissingDirectory(t *testing.T) {
	_, err := NewWatcher(t.TempDir()+"/missing", nil)
	assert.Error(t, err)
}
