package authcode

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/authguard/authguard-terminal/pkg/models"
)

// ParseURI builds a service from an otpauth://totp/ URI
func ParseURI(uri string) (*models.Service, error) {
	key, err := otp.NewKeyFromURL(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to parse otpauth URI: %w", err)
	}
	if key.Type() != "totp" {
		return nil, fmt.Errorf("unsupported OTP type %q, only totp is supported", key.Type())
	}
	if key.Secret() == "" {
		return nil, fmt.Errorf("otpauth URI has no secret")
	}

	svc := &models.Service{
		Name:    key.AccountName(),
		Issuer:  key.Issuer(),
		Account: key.AccountName(),
		Secret:  NormalizeSecret(key.Secret()),
	}

	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to parse otpauth URI: %w", err)
	}
	q := u.Query()
	if p := q.Get("period"); p != "" {
		period, err := strconv.ParseUint(p, 10, 32)
		if err != nil || period == 0 {
			return nil, fmt.Errorf("invalid period %q", p)
		}
		svc.Period = uint(period)
	}
	if d := q.Get("digits"); d != "" {
		digits, err := strconv.Atoi(d)
		if err != nil || (digits != 6 && digits != 8) {
			return nil, fmt.Errorf("invalid digits %q", d)
		}
		svc.Digits = digits
	}
	if a := q.Get("algorithm"); a != "" {
		if _, err := algorithm(a); err != nil {
			return nil, err
		}
		svc.Algorithm = strings.ToUpper(a)
	}
	return svc, nil
}

// NormalizeSecret strips spaces and padding and upper-cases a base32 secret
func NormalizeSecret(secret string) string {
	secret = strings.ToUpper(strings.ReplaceAll(secret, " ", ""))
	return strings.TrimRight(secret, "=")
}

// Generate returns the code for svc at t
func Generate(svc models.Service, t time.Time) (string, error) {
	alg, err := algorithm(svc.Algorithm)
	if err != nil {
		return "", err
	}
	digits := otp.DigitsSix
	if svc.Digits == 8 {
		digits = otp.DigitsEight
	}
	code, err := totp.GenerateCodeCustom(NormalizeSecret(svc.Secret), t, totp.ValidateOpts{
		Period:    period(svc),
		Digits:    digits,
		Algorithm: alg,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate code for %s: %w", svc.DisplayName(), err)
	}
	return code, nil
}

// Remaining returns how long the code generated at t stays valid
func Remaining(svc models.Service, t time.Time) time.Duration {
	p := int64(period(svc))
	left := p - t.Unix()%p
	return time.Duration(left) * time.Second
}

func period(svc models.Service) uint {
	if svc.Period == 0 {
		return models.DefaultPeriod
	}
	return svc.Period
}

func algorithm(name string) (otp.Algorithm, error) {
	switch strings.ToUpper(name) {
	case "", "SHA1":
		return otp.AlgorithmSHA1, nil
	case "SHA256":
		return otp.AlgorithmSHA256, nil
	case "SHA512":
		return otp.AlgorithmSHA512, nil
	}
	return otp.AlgorithmSHA1, fmt.Errorf("unsupported algorithm %q", name)
}
