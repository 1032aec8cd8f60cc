package settings

import "github.com/authguard/authguard-terminal/pkg/models"

// Event is a user intent delivered to the coordinator
type Event interface {
	isEvent()
}

// BuildNumberClick is sent when the build number in About is activated
type BuildNumberClick struct{}

// ResetData wipes the application state and every service
type ResetData struct{}

// ChangeSection switches the visible settings section
type ChangeSection struct {
	Section models.Section
}

// DeletePasscode removes the stored passcode
type DeletePasscode struct{}

// StartPasscodeSetting opens the set-passcode wizard
type StartPasscodeSetting struct{}

// EnterPasscode submits one wizard entry. Passcode is the value to store,
// normally already hashed by the caller.
type EnterPasscode struct {
	Passcode string
}

func (BuildNumberClick) isEvent()     {}
func (ResetData) isEvent()            {}
func (ChangeSection) isEvent()        {}
func (DeletePasscode) isEvent()       {}
func (StartPasscodeSetting) isEvent() {}
func (EnterPasscode) isEvent()        {}
