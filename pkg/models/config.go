package models

import "time"

// Config represents the application configuration
type Config struct {
	Log LogConfig `yaml:"log"`
	UI  UIConfig  `yaml:"ui"`
}

// LogConfig controls where and how much is logged
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // relative to the data directory unless absolute
}

// UIConfig controls TUI behaviour
type UIConfig struct {
	ShowCodes   bool          `yaml:"show_codes"`
	KeepAlive   time.Duration `yaml:"keep_alive"`   // settings stream grace period
	RevealDelay time.Duration `yaml:"reveal_delay"` // pause before showing the passcode section
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level: "INFO",
			File:  "authguard.log",
		},
		UI: UIConfig{
			ShowCodes:   true,
			KeepAlive:   5 * time.Second,
			RevealDelay: 300 * time.Millisecond,
		},
	}
}
