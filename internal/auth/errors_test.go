package auth

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenErrorsWrapInvalid(t *testing.T) {
	assert.ErrorIs(t, ErrTokenExpired, ErrTokenInvalid)
	assert.ErrorIs(t, ErrTokenMalformedClaims, ErrTokenInvalid)
	assert.False(t, errors.Is(ErrTokenInvalid, ErrTokenExpired))
}

func TestIsAuthentication(t *testing.T) {
	for _, err := range []error{
		ErrInvalidCredentials,
		ErrInactiveAccount,
		ErrTokenInvalid,
		ErrTokenExpired,
		ErrTokenMalformedClaims,
		ErrUnauthorized,
		fmt.Errorf("wrapped: %w", ErrUnauthorized),
	} {
		assert.True(t, IsAuthentication(err), err.Error())
	}

	for _, err := range []error{ErrForbidden, ErrNotFound, ErrUserExists, errors.New("db down")} {
		assert.False(t, IsAuthentication(err), err.Error())
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{
		"password": "Password is required",
		"email":    "Invalid email format",
	}}
	assert.Equal(t, "validation failed: email: Invalid email format; password: Password is required", err.Error())
}
