package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/hugh/go-projects/internal/database/models"
	"github.com/hugh/go-projects/internal/validation"
)

const TokenTypeBearer = "bearer"

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Service is the entry point for login, registration, request
// authentication and access checks.
type Service struct {
	users    UserStore
	projects ProjectLookup
	tokens   *JWTService
	resolver *IdentityResolver
	logger   *slog.Logger
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

type Option func(*Service)

// WithClock replaces time.Now, for tests that pin token issue and expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(users UserStore, projects ProjectLookup, tokens *JWTService, opts ...Option) *Service {
	s := &Service{
		users:    users,
		projects: projects,
		tokens:   tokens,
		resolver: NewIdentityResolver(users),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Register(ctx context.Context, email, password string) (*models.User, error) {
	email = validation.NormalizeEmail(email)

	fields := make(map[string]string)
	if email == "" {
		fields["email"] = "Email is required"
	} else if !validation.IsValidEmail(email) {
		fields["email"] = "Invalid email format"
	}
	if msg := validation.ValidatePassword(password); msg != "" {
		fields["password"] = msg
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	existing, err := s.users.LookupUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login exchanges credentials for a bearer token. Unknown emails and wrong
// passwords both yield ErrInvalidCredentials; the inactive flag is only
// revealed after the password checks out.
func (s *Service) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	email = validation.NormalizeEmail(email)

	user, err := s.users.LookupUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if user == nil {
		// Burn the same bcrypt work as a real comparison.
		VerifyPassword(password, s.placeholderHash())
		s.logger.Debug("login rejected", "reason", "unknown_email")
		return nil, ErrInvalidCredentials
	}

	if !VerifyPassword(password, user.PasswordHash) {
		s.logger.Debug("login rejected", "reason", "bad_password", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		s.logger.Debug("login rejected", "reason", "inactive", "user_id", user.ID)
		return nil, ErrInactiveAccount
	}

	ttl := s.tokens.TTL()
	token, err := s.tokens.Issue(user.ID, user.Email, s.now(), ttl)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	return &TokenResponse{
		AccessToken: token,
		TokenType:   TokenTypeBearer,
		ExpiresIn:   int64(ttl / time.Second),
	}, nil
}

// AuthenticateRequest validates a bearer token and resolves it to an active
// user. Every protected operation goes through here first.
func (s *Service) AuthenticateRequest(ctx context.Context, bearerToken string) (*models.User, error) {
	token := strings.TrimSpace(bearerToken)
	if token == "" {
		return nil, ErrTokenInvalid
	}

	claims, err := s.tokens.Validate(token, s.now())
	if err != nil {
		return nil, err
	}

	return s.resolver.Resolve(ctx, claims)
}

// CheckAccess looks up the project governing resourceID (the project itself,
// or a document's parent) and evaluates the policy for action.
func (s *Service) CheckAccess(ctx context.Context, user *models.User, resourceID uint, kind ResourceKind, action Action) (Decision, error) {
	var (
		project *models.Project
		err     error
	)

	switch kind {
	case ResourceProject:
		project, err = s.projects.LookupProject(ctx, resourceID)
	case ResourceDocument:
		project, err = s.projects.LookupParentProjectOfDocument(ctx, resourceID)
	default:
		return Forbidden, fmt.Errorf("unknown resource kind %q", kind)
	}
	if err != nil {
		return Forbidden, fmt.Errorf("looking up %s %d: %w", kind, resourceID, err)
	}

	decision := Authorize(user, project, kind, action)
	s.logDecision(user, resourceID, kind, action, decision)
	return decision, nil
}

// AuthorizeProject loads a project and checks action against it, returning
// the project when allowed. kind selects the policy row: ResourceProject for
// the project itself, ResourceDocument for its document collection.
func (s *Service) AuthorizeProject(ctx context.Context, user *models.User, projectID uint, kind ResourceKind, action Action) (*models.Project, error) {
	project, err := s.projects.LookupProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("looking up project %d: %w", projectID, err)
	}

	decision := Authorize(user, project, kind, action)
	s.logDecision(user, projectID, kind, action, decision)
	if err := decision.Err(); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *Service) logDecision(user *models.User, resourceID uint, kind ResourceKind, action Action, decision Decision) {
	if decision == Allowed {
		return
	}
	var userID uint
	if user != nil {
		userID = user.ID
	}
	s.logger.Debug("access denied",
		"user_id", userID,
		"resource", kind,
		"resource_id", resourceID,
		"action", action,
		"decision", decision.String(),
	)
}

func (s *Service) placeholderHash() string {
	s.dummyOnce.Do(func() {
		h, err := HashPassword("placeholder-password")
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}
