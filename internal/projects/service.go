package projects

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hugh/go-projects/internal/auth"
	"github.com/hugh/go-projects/internal/database/models"
	"github.com/hugh/go-projects/internal/documents"
	"github.com/hugh/go-projects/internal/validation"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Store is the persistence the service needs. *database.ProjectRepository
// satisfies it.
type Store interface {
	LookupProject(ctx context.Context, id uint) (*models.Project, error)
	Create(ctx context.Context, project *models.Project) error
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id uint) ([]string, error)
	ListForUser(ctx context.Context, userID uint, offset, limit int) ([]models.Project, int64, error)
	AddParticipant(ctx context.Context, projectID, userID uint) error
	RemoveParticipant(ctx context.Context, projectID, userID uint) (bool, error)
	ListParticipants(ctx context.Context, projectID uint) ([]models.User, error)
}

// Page is one slice of a user's projects.
type Page struct {
	Projects []models.Project
	Total    int64
	Page     int
	PerPage  int
}

// ParticipantRef names the user to add, by id or by email. UserID wins when
// both are set.
type ParticipantRef struct {
	UserID uint
	Email  string
}

// Service implements project operations. Callers authorize through
// auth.Service first and pass in the project it returned.
type Service struct {
	store  Store
	users  auth.UserLookup
	purger documents.Purger
	logger *slog.Logger
}

func NewService(store Store, users auth.UserLookup, purger documents.Purger, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		users:  users,
		purger: purger,
		logger: logger,
	}
}

func cleanProjectInput(name, description string) (string, string, error) {
	name = strings.TrimSpace(validation.SanitizeString(name))
	description = strings.TrimSpace(validation.SanitizeString(description))
	if fields := validation.ValidateProject(name, description); len(fields) > 0 {
		return "", "", &auth.ValidationError{Fields: fields}
	}
	return name, description, nil
}

// Create makes owner the owner of a new project.
func (s *Service) Create(ctx context.Context, owner *models.User, name, description string) (*models.Project, error) {
	name, description, err := cleanProjectInput(name, description)
	if err != nil {
		return nil, err
	}

	project := &models.Project{
		Name:        name,
		Description: description,
		OwnerID:     owner.ID,
	}
	if err := s.store.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}

	s.logger.Info("project created", "project_id", project.ID, "owner_id", owner.ID)
	return project, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Project, error) {
	project, err := s.store.LookupProject(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting project: %w", err)
	}
	if project == nil {
		return nil, auth.ErrNotFound
	}
	return project, nil
}

// ListForUser returns projects the user owns or participates in. page is
// 1-based; out of range values are clamped.
func (s *Service) ListForUser(ctx context.Context, user *models.User, page, perPage int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}

	projects, total, err := s.store.ListForUser(ctx, user.ID, (page-1)*perPage, perPage)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}

	return &Page{
		Projects: projects,
		Total:    total,
		Page:     page,
		PerPage:  perPage,
	}, nil
}

func (s *Service) Update(ctx context.Context, project *models.Project, name, description string) (*models.Project, error) {
	name, description, err := cleanProjectInput(name, description)
	if err != nil {
		return nil, err
	}

	project.Name = name
	project.Description = description
	if err := s.store.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("updating project: %w", err)
	}
	return project, nil
}

// Delete removes the project with its participants and documents. Document
// content is handed to the purger once the rows are gone.
func (s *Service) Delete(ctx context.Context, project *models.Project) error {
	keys, err := s.store.Delete(ctx, project.ID)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}

	s.logger.Info("project deleted", "project_id", project.ID, "documents", len(keys))

	if len(keys) > 0 {
		if err := s.purger.Purge(ctx, keys, "project_deleted"); err != nil {
			s.logger.Error("failed to schedule blob purge", "project_id", project.ID, "error", err)
		}
	}
	return nil
}

func (s *Service) resolveParticipant(ctx context.Context, ref ParticipantRef) (*models.User, error) {
	var (
		user *models.User
		err  error
	)
	switch {
	case ref.UserID != 0:
		user, err = s.users.LookupUserByID(ctx, ref.UserID)
	case strings.TrimSpace(ref.Email) != "":
		user, err = s.users.LookupUserByEmail(ctx, validation.NormalizeEmail(ref.Email))
	default:
		return nil, &auth.ValidationError{Fields: map[string]string{"email": "Email or user_id is required"}}
	}
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("participant: %w", auth.ErrNotFound)
	}
	return user, nil
}

// AddParticipant grants read access to an existing user. Adding someone who
// already participates is a no-op.
func (s *Service) AddParticipant(ctx context.Context, project *models.Project, ref ParticipantRef) (*models.User, error) {
	user, err := s.resolveParticipant(ctx, ref)
	if err != nil {
		return nil, err
	}
	if project.IsOwner(user.ID) {
		return nil, &auth.ValidationError{Fields: map[string]string{"user": "Owner cannot be added as a participant"}}
	}

	if err := s.store.AddParticipant(ctx, project.ID, user.ID); err != nil {
		return nil, fmt.Errorf("adding participant: %w", err)
	}

	s.logger.Info("participant added", "project_id", project.ID, "user_id", user.ID)
	return user, nil
}

func (s *Service) RemoveParticipant(ctx context.Context, project *models.Project, userID uint) error {
	removed, err := s.store.RemoveParticipant(ctx, project.ID, userID)
	if err != nil {
		return fmt.Errorf("removing participant: %w", err)
	}
	if !removed {
		return fmt.Errorf("participant: %w", auth.ErrNotFound)
	}

	s.logger.Info("participant removed", "project_id", project.ID, "user_id", userID)
	return nil
}

func (s *Service) Participants(ctx context.Context, project *models.Project) ([]models.User, error) {
	users, err := s.store.ListParticipants(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("listing participants: %w", err)
	}
	return users, nil
}
