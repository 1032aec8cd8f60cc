package models

import "time"

const (
	DefaultPeriod = 30
	DefaultDigits = 6
)

// Service is a single TOTP account kept by the authenticator
type Service struct {
	ID        string    `yaml:"id"`
	Name      string    `yaml:"name"`
	Issuer    string    `yaml:"issuer,omitempty"`
	Account   string    `yaml:"account,omitempty"`
	Secret    string    `yaml:"secret"`
	Period    uint      `yaml:"period,omitempty"`
	Digits    int       `yaml:"digits,omitempty"`
	Algorithm string    `yaml:"algorithm,omitempty"`
	Created   time.Time `yaml:"created"`
}

// DisplayName prefers the issuer/account pair and falls back to the name
func (s Service) DisplayName() string {
	switch {
	case s.Issuer != "" && s.Account != "":
		return s.Issuer + " (" + s.Account + ")"
	case s.Issuer != "":
		return s.Issuer
	case s.Name != "":
		return s.Name
	}
	return s.Account
}
