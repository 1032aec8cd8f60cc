package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authguard/authguard-terminal/pkg/passcode"
)

func TestLockModel_Unlock(t *testing.T) {
	hash, err := passcode.Hash("2468")
	require.NoError(t, err)

	m := NewLockModel()
	m.Open()

	m.Update(key("1357"), hash)
	msg := run(t, m.Update(key("enter"), hash))
	require.IsType(t, unlockFailedMsg{}, msg)
	m.Update(msg, hash)
	assert.Equal(t, 1, m.failures)
	assert.Contains(t, m.View(), "Wrong passcode")
	assert.Empty(t, m.input.Value())

	m.Update(key("2468"), hash)
	assert.Equal(t, unlockedMsg{}, run(t, m.Update(key("enter"), hash)))
}

func TestLockModel_IgnoresInputWhileChecking(t *testing.T) {
	m := NewLockModel()
	m.Open()

	m.Update(key("1234"), "unused")
	require.NotNil(t, m.Update(key("enter"), "unused"))
	assert.Nil(t, m.Update(key("enter"), "unused"))
	assert.Contains(t, m.View(), "Checking")
}

func TestLockModel_RejectsMalformedEntry(t *testing.T) {
	m := NewLockModel()
	m.Open()

	m.Update(key("ab"), "unused")
	assert.Nil(t, m.Update(key("enter"), "unused"))
	assert.Contains(t, m.View(), passcode.ErrInvalidFormat.Error())
}
