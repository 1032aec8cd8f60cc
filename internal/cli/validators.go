package cli

import (
	"fmt"
	"strings"

	"github.com/authguard/authguard-terminal/pkg/models"
)

// ValidateOutputFormat checks a --output flag value
func ValidateOutputFormat(format string) error {
	switch OutputFormat(strings.ToLower(format)) {
	case FormatText, FormatJSON, FormatYAML:
		return nil
	}
	return fmt.Errorf("invalid output format: %s (must be: text, json, or yaml)", format)
}

// ValidateDigits checks a code length flag
func ValidateDigits(digits int) error {
	if digits != 6 && digits != 8 {
		return fmt.Errorf("invalid digits: %d (must be 6 or 8)", digits)
	}
	return nil
}

// ValidateAlgorithm normalizes and checks a hash algorithm name
func ValidateAlgorithm(alg string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(alg))
	if normalized == "" {
		return "SHA1", nil
	}
	switch normalized {
	case "SHA1", "SHA256", "SHA512":
		return normalized, nil
	}
	return "", fmt.Errorf("invalid algorithm: %s (must be: SHA1, SHA256, or SHA512)", alg)
}

// ParseSection maps a section name to its settings section
func ParseSection(name string) (models.Section, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" || normalized == "main" {
		return models.SectionMain, nil
	}
	for _, s := range models.Sections {
		if strings.EqualFold(s.String(), normalized) {
			return s, nil
		}
	}
	return models.SectionMain, fmt.Errorf("unknown section: %s", name)
}
