package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		password string
		want     error
	}{
		{"Test123!@#", nil},
		{"SecureP@ss1", nil},
		{"Str0ng#Pass", nil},
		{"Test1!", ErrPasswordTooShort},
		{"Abc12", ErrPasswordTooShort},
		{"test123!@#", ErrPasswordNoUpper},
		{"TEST123!@#", ErrPasswordNoLower},
		{"TestPass!@#", ErrPasswordNoNumber},
		{"TestPass123", ErrPasswordNoSpecialChar},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidatePasswordStrength(tt.password))
		})
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Test123!@#")
	require.NoError(t, err)
	assert.NotEqual(t, "Test123!@#", hash)

	assert.True(t, VerifyPassword(hash, "Test123!@#"))
	assert.False(t, VerifyPassword(hash, "wrong"))

	again, err := HashPassword("Test123!@#")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "bcrypt salts every hash")
}
