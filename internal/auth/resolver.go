package auth

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hugh/go-projects/internal/database/models"
)

// IdentityResolver turns validated claims into a live user record.
type IdentityResolver struct {
	users UserLookup
}

func NewIdentityResolver(users UserLookup) *IdentityResolver {
	return &IdentityResolver{users: users}
}

// Resolve returns the active user named by claims.Subject. Unknown and
// inactive users are both ErrUnauthorized.
func (r *IdentityResolver) Resolve(ctx context.Context, claims *Claims) (*models.User, error) {
	if claims == nil {
		return nil, ErrTokenInvalid
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 0)
	if err != nil || id == 0 {
		return nil, ErrTokenInvalid
	}

	user, err := r.users.LookupUserByID(ctx, uint(id))
	if err != nil {
		return nil, fmt.Errorf("looking up user %d: %w", id, err)
	}
	if user == nil || !user.IsActive {
		return nil, ErrUnauthorized
	}

	return user, nil
}
