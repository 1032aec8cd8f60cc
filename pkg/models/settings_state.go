package models

// Section identifies the sub-view shown inside the settings screen
type Section int

const (
	SectionMain Section = iota
	SectionPasscode
	SectionData
	SectionAbout
)

// Sections lists the sections reachable from the main settings menu, in
// display order
var Sections = []Section{SectionPasscode, SectionData, SectionAbout}

func (s Section) String() string {
	switch s {
	case SectionMain:
		return "Settings"
	case SectionPasscode:
		return "Passcode"
	case SectionData:
		return "Data"
	case SectionAbout:
		return "About"
	}
	return "Unknown"
}

// SettingsState is the view state of the settings screen.
//
// PasscodeEnabled is derived from the observed application state and is
// never written by event handling. The PasscodeSettings* fields belong to the
// set-passcode wizard: Attempt is 0 while waiting for the first entry and 1
// while waiting for the confirmation entry.
type SettingsState struct {
	CurrentSection          Section
	PasscodeEnabled         bool
	PasscodeSettingsProcess bool
	PasscodeSettingsAttempt int
	PasscodeSettingsCurrent string
}

// ResetPasscodeFields returns a copy of s with the wizard fields cleared
func (s SettingsState) ResetPasscodeFields() SettingsState {
	s.PasscodeSettingsProcess = false
	s.PasscodeSettingsAttempt = 0
	s.PasscodeSettingsCurrent = ""
	return s
}
