package passcode

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	MinLength = 4
	MaxLength = 8

	scheme     = "argon2id"
	saltLen    = 16
	keyLen     = 32
	iterations = 1
	memoryKB   = 64 * 1024
	threads    = 4
	separator  = "$"
)

var (
	ErrInvalidFormat = errors.New("passcode must be 4 to 8 digits")
	ErrMismatch      = errors.New("passcode does not match")
	ErrMalformedHash = errors.New("malformed passcode hash")
)

// Validate checks that code is a plain digit passcode of acceptable length
func Validate(code string) error {
	if len(code) < MinLength || len(code) > MaxLength {
		return ErrInvalidFormat
	}
	for _, ch := range code {
		if ch < '0' || ch > '9' {
			return ErrInvalidFormat
		}
	}
	return nil
}

// Hash derives a salted argon2id hash of code, encoded as
// "argon2id$<salt>$<key>" with raw base64 parts.
func Hash(code string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	key := derive(code, salt)
	return strings.Join([]string{
		scheme,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	}, separator), nil
}

// Verify reports ErrMismatch unless code hashes to encoded
func Verify(encoded, code string) error {
	parts := strings.Split(encoded, separator)
	if len(parts) != 3 || parts[0] != scheme {
		return ErrMalformedHash
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[1])
	if err != nil {
		return ErrMalformedHash
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[2])
	if err != nil || len(want) != keyLen {
		return ErrMalformedHash
	}
	if subtle.ConstantTimeCompare(derive(code, salt), want) != 1 {
		return ErrMismatch
	}
	return nil
}

func derive(code string, salt []byte) []byte {
	return argon2.IDKey([]byte(code), salt, iterations, memoryKB, threads, keyLen)
}
