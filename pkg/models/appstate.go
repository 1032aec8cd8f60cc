package models

// AppState is the singleton record describing the global mode flags and the
// optional passcode.
type AppState struct {
	Started     bool      `yaml:"started"`
	RemoteMode  bool      `yaml:"remote_mode"`
	PrivateMode bool      `yaml:"private_mode"`
	Passcode    *Passcode `yaml:"passcode,omitempty"`
}

// Passcode wraps the stored passcode hash
type Passcode struct {
	Hash string `yaml:"hash"`
}

// DefaultAppState returns the state written by a data reset
func DefaultAppState() AppState {
	return AppState{
		Started:     false,
		RemoteMode:  false,
		PrivateMode: false,
		Passcode:    nil,
	}
}

// WithPasscode returns a copy of s with its passcode replaced
func (s AppState) WithPasscode(p *Passcode) AppState {
	s.Passcode = p
	return s
}
