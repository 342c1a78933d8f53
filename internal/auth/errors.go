package auth

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveAccount    = errors.New("account is inactive")
	ErrUserExists         = errors.New("user already exists")

	// ErrTokenInvalid covers every token rejection. The more specific token
	// errors wrap it, so errors.Is(err, ErrTokenInvalid) holds for all of them.
	ErrTokenInvalid         = errors.New("invalid token")
	ErrTokenExpired         = fmt.Errorf("%w: token has expired", ErrTokenInvalid)
	ErrTokenMalformedClaims = fmt.Errorf("%w: missing required claims", ErrTokenInvalid)

	// ErrUnauthorized means the token was valid but its user is gone or inactive.
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
)

// ValidationError reports per-field input problems.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// IsAuthentication reports whether err should be surfaced as an
// authentication failure (401).
func IsAuthentication(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrInactiveAccount) ||
		errors.Is(err, ErrTokenInvalid) ||
		errors.Is(err, ErrUnauthorized)
}
