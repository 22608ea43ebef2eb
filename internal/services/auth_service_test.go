package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePasswordStrength(t *testing.T) {
	svc := NewAuthService()

	tests := []struct {
		name     string
		password string
		ok       bool
	}{
		{"strong", "Str0ng!pw", true},
		{"too short", "S1!a", false},
		{"no uppercase or symbol", "abc12345", false},
		{"no digit", "Abcdefg!", false},
		{"no symbol", "Abcdefg1", false},
		{"no uppercase", "abcdefg1!", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.ValidatePasswordStrength(tt.password)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrWeakPassword)
			}
		})
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	svc := NewAuthService()

	hash, err := svc.HashPassword("Str0ng!pw")
	require.NoError(t, err)
	assert.NotEqual(t, "Str0ng!pw", hash)
	assert.True(t, svc.CheckPassword(hash, "Str0ng!pw"))
	assert.False(t, svc.CheckPassword(hash, "Wr0ng!pwd"))
}
