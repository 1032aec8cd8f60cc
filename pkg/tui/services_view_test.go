package tui

import (
	"errors"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authguard/authguard-terminal/pkg/models"
)

const rfcSecret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"

func testServices() []models.Service {
	return []models.Service{
		{ID: "1", Name: "alpha", Secret: rfcSecret},
		{ID: "2", Name: "beta", Secret: rfcSecret, Digits: 8},
	}
}

func TestServicesModel_ViewShowsCodesAndCountdown(t *testing.T) {
	clk := testclock.NewClock(time.Unix(59, 0))
	m := NewServicesModel(clk, nil, true)
	m.SetServices(testServices())

	view := m.View()
	assert.Contains(t, view, "alpha")
	assert.Contains(t, view, "287 082")
	assert.Contains(t, view, "9428 7082")
	assert.Contains(t, view, " 1s")

	clk.Advance(time.Second)
	m.Refresh()
	assert.NotContains(t, m.View(), "287 082", "codes move on with the clock")
}

func TestServicesModel_HideCodes(t *testing.T) {
	m := NewServicesModel(testclock.NewClock(time.Unix(59, 0)), nil, true)
	m.SetServices(testServices())

	m.Update(key("h"))
	view := m.View()
	assert.NotContains(t, view, "287 082")
	assert.Contains(t, view, "••••••")
}

func TestServicesModel_CopySelected(t *testing.T) {
	var copied []string
	copyFn := func(s string) error {
		copied = append(copied, s)
		return nil
	}
	m := NewServicesModel(testclock.NewClock(time.Unix(59, 0)), copyFn, true)
	m.SetServices(testServices())

	m.Update(key("down"))
	cmd := m.Update(key("enter"))
	require.NotNil(t, cmd)
	assert.Equal(t, StatusMsg("Copied code for beta"), cmd())
	assert.Equal(t, []string{"94287082"}, copied)
}

func TestServicesModel_CopyFailure(t *testing.T) {
	m := NewServicesModel(testclock.NewClock(time.Unix(59, 0)), func(string) error {
		return errors.New("no clipboard")
	}, true)
	m.SetServices(testServices())

	cmd := m.Update(key("c"))
	require.NotNil(t, cmd)
	assert.Equal(t, StatusMsg("Failed to copy code: no clipboard"), cmd())
}

func TestServicesModel_CursorClampedWhenListShrinks(t *testing.T) {
	m := NewServicesModel(testclock.NewClock(time.Unix(0, 0)), nil, true)
	m.SetServices(testServices())
	m.Update(key("down"))
	require.Equal(t, 1, m.cursor)

	m.SetServices(testServices()[:1])
	assert.Equal(t, 0, m.cursor)

	m.SetServices(nil)
	assert.Equal(t, 0, m.cursor)
	assert.Nil(t, m.Update(key("enter")))
	assert.Contains(t, m.View(), "No services yet")
}

func TestServicesModel_OpenSettings(t *testing.T) {
	m := NewServicesModel(testclock.NewClock(time.Unix(0, 0)), nil, true)
	cmd := m.Update(key("s"))
	require.NotNil(t, cmd)
	assert.Equal(t, SwitchViewMsg{view: settingsView}, cmd())
}
