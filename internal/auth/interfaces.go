package auth

import (
	"context"

	"github.com/hugh/go-projects/internal/database/models"
)

// UserLookup finds users for login and token resolution. A missing user is
// reported as (nil, nil); a non-nil error is an infrastructure failure.
type UserLookup interface {
	LookupUserByID(ctx context.Context, id uint) (*models.User, error)
	LookupUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// UserStore adds registration. CreateUser returns ErrUserExists when the
// email is already taken.
type UserStore interface {
	UserLookup
	CreateUser(ctx context.Context, user *models.User) error
}

// ProjectLookup finds the project that governs access to a resource. Returned
// projects carry their participants. A missing project is (nil, nil).
type ProjectLookup interface {
	LookupProject(ctx context.Context, id uint) (*models.Project, error)
	LookupParentProjectOfDocument(ctx context.Context, documentID uint) (*models.Project, error)
}

// Authenticator is the surface consumed by the HTTP layer.
type Authenticator interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*TokenResponse, error)
	AuthenticateRequest(ctx context.Context, bearerToken string) (*models.User, error)
	CheckAccess(ctx context.Context, user *models.User, resourceID uint, kind ResourceKind, action Action) (Decision, error)
}

// Compile-time interface satisfaction checks
var (
	_ Authenticator = (*Service)(nil)
)
