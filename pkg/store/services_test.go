package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authguard/authguard-terminal/pkg/models"
)

func newServiceStore(t *testing.T) (*ServiceStore, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := NewServiceStore(dir)
	require.NoError(t, err)
	return s, dir
}

func TestServiceStoreAddAndList(t *testing.T) {
	s, dir := newServiceStore(t)
	ctx := context.Background()

	github, err := s.Add(ctx, models.Service{Issuer: "GitHub", Account: "octo", Secret: "JBSWY3DPEHPK3PXP"})
	require.NoError(t, err)
	assert.NotEmpty(t, github.ID)
	assert.False(t, github.Created.IsZero())

	_, err = s.Add(ctx, models.Service{Issuer: "AWS", Secret: "JBSWY3DPEHPK3PXP"})
	require.NoError(t, err)

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, "AWS", list[0].Issuer, "services are sorted by display name")
	assert.Equal(t, "GitHub", list[1].Issuer)

	reopened, err := NewServiceStore(dir)
	require.NoError(t, err)
	assert.Equal(t, list, reopened.List())
}

func TestServiceStoreAddRequiresSecret(t *testing.T) {
	s, _ := newServiceStore(t)
	_, err := s.Add(context.Background(), models.Service{Name: "empty"})
	assert.Error(t, err)
	assert.Empty(t, s.List())
}

func TestServiceStoreFindAndRemove(t *testing.T) {
	s, _ := newServiceStore(t)
	ctx := context.Background()

	svc, err := s.Add(ctx, models.Service{ID: "1111-aaaa", Issuer: "GitHub", Secret: "JBSWY3DPEHPK3PXP"})
	require.NoError(t, err)
	_, err = s.Add(ctx, models.Service{ID: "1111-bbbb", Issuer: "GitLab", Secret: "JBSWY3DPEHPK3PXP"})
	require.NoError(t, err)

	found, err := s.Find("github")
	require.NoError(t, err)
	assert.Equal(t, svc.ID, found.ID)

	_, err = s.Find("1111")
	assert.ErrorIs(t, err, ErrAmbiguousService)

	_, err = s.Find("nope")
	assert.ErrorIs(t, err, ErrServiceNotFound)

	require.NoError(t, s.Remove(ctx, svc.ID))
	assert.Len(t, s.List(), 1)
	assert.ErrorIs(t, s.Remove(ctx, svc.ID), ErrServiceNotFound)
}

func TestServiceStoreClearAll(t *testing.T) {
	s, dir := newServiceStore(t)
	ctx := context.Background()

	ch, unsubscribe := s.Observe()
	defer unsubscribe()

	_, err := s.Add(ctx, models.Service{Issuer: "GitHub", Secret: "JBSWY3DPEHPK3PXP"})
	require.NoError(t, err)
	require.NoError(t, s.ClearAll(ctx))

	assert.Empty(t, s.List())
	assert.Empty(t, <-ch, "observers see the latest, empty, collection")

	content, err := os.ReadFile(filepath.Join(dir, ServicesFile))
	require.NoError(t, err)
	assert.NotContains(t, string(content), "GitHub")
}

func TestWatcherReloadsOnExternalChange(t *testing.T) {
	dir := t.TempDir()
	s, err := NewServiceStore(dir)
	require.NoError(t, err)

	w, err := NewWatcher(dir, map[string]Reloader{ServicesFile: s})
	require.NoError(t, err)
	defer w.Close()

	// Another process writes the file.
	other, err := NewServiceStore(dir)
	require.NoError(t, err)
	_, err = other.Add(context.Background(), models.Service{Issuer: "GitHub", Secret: "JBSWY3DPEHPK3PXP"})
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return len(s.List()) == 1 }, 5*time.Second, 10*time.Millisecond)
}
