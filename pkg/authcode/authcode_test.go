package authcode

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authguard/authguard-terminal/pkg/models"
)

// base32 of the RFC 6238 SHA1 seed "12345678901234567890"
const rfcSecret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"

func TestGenerateMatchesRFC6238(t *testing.T) {
	tests := []struct {
		name   string
		digits int
		at     int64
		want   string
	}{
		{name: "eight digits at 59", digits: 8, at: 59, want: "94287082"},
		{name: "eight digits at 1111111109", digits: 8, at: 1111111109, want: "07081804"},
		{name: "six digits at 59", digits: 6, at: 59, want: "287082"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := models.Service{Secret: rfcSecret, Digits: tt.digits}
			code, err := Generate(svc, time.Unix(tt.at, 0).UTC())
			require.NoError(t, err)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestGenerateRejectsUnknownAlgorithm(t *testing.T) {
	_, err := Generate(models.Service{Secret: rfcSecret, Algorithm: "MD4"}, time.Now())
	assert.Error(t, err)
}

func TestRemaining(t *testing.T) {
	svc := models.Service{Secret: rfcSecret}
	assert.Equal(t, 30*time.Second, Remaining(svc, time.Unix(60, 0)))
	assert.Equal(t, 1*time.Second, Remaining(svc, time.Unix(89, 0)))

	svc.Period = 60
	assert.Equal(t, 50*time.Second, Remaining(svc, time.Unix(70, 0)))
}

func TestParseURI(t *testing.T) {
	svc, err := ParseURI("otpauth://totp/Example:alice@example.com?secret=jbswy3dpehpk3pxp&issuer=Example&period=60&digits=8&algorithm=sha256")
	require.NoError(t, err)

	assert.Equal(t, "Example", svc.Issuer)
	assert.Equal(t, "alice@example.com", svc.Account)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", svc.Secret)
	assert.Equal(t, uint(60), svc.Period)
	assert.Equal(t, 8, svc.Digits)
	assert.Equal(t, "SHA256", svc.Algorithm)
}

func TestParseURIErrors(t *testing.T) {
	for _, uri := range []string{
		"otpauth://hotp/Example:alice?secret=JBSWY3DPEHPK3PXP&counter=1",
		"otpauth://totp/Example:alice?issuer=Example",
		"otpauth://totp/Example:alice?secret=JBSWY3DPEHPK3PXP&digits=7",
		"otpauth://totp/Example:alice?secret=JBSWY3DPEHPK3PXP&period=zero",
	} {
		_, err := ParseURI(uri)
		assert.Error(t, err, uri)
	}
}
