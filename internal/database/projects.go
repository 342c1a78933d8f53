package database

import (
	"context"
	"errors"

	"github.com/hugh/go-projects/internal/auth"
	"github.com/hugh/go-projects/internal/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// LookupProject returns the project with its participants, or nil if absent.
func (r *ProjectRepository) LookupProject(ctx context.Context, id uint) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).
		Preload("Participants").
		First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepository) LookupParentProjectOfDocument(ctx context.Context, documentID uint) (*models.Project, error) {
	var doc models.Document
	if err := r.db.WithContext(ctx).
		Select("id", "project_id").
		First(&doc, documentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.LookupProject(ctx, doc.ProjectID)
}

func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Omit("Participants").Create(project).Error
}

func (r *ProjectRepository) Update(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).
		Model(&models.Project{}).
		Where("id = ?", project.ID).
		Updates(map[string]interface{}{
			"name":        project.Name,
			"description": project.Description,
		}).Error
}

// Delete removes the project with its participants and document rows and
// returns the storage keys of the removed documents.
func (r *ProjectRepository) Delete(ctx context.Context, id uint) ([]string, error) {
	var keys []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Document{}).
			Where("project_id = ?", id).
			Pluck("storage_key", &keys).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.Document{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectParticipant{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, id).Error
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// ListForUser returns projects the user owns or participates in, newest first.
func (r *ProjectRepository) ListForUser(ctx context.Context, userID uint, offset, limit int) ([]models.Project, int64, error) {
	participating := r.db.Model(&models.ProjectParticipant{}).
		Select("project_id").
		Where("user_id = ?", userID)

	visible := func() *gorm.DB {
		return r.db.WithContext(ctx).
			Model(&models.Project{}).
			Where("owner_id = ? OR id IN (?)", userID, participating)
	}

	var total int64
	if err := visible().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var projects []models.Project
	if err := visible().
		Preload("Participants").
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&projects).Error; err != nil {
		return nil, 0, err
	}

	return projects, total, nil
}

// AddParticipant grants userID participant access. Adding an existing
// participant is a no-op.
func (r *ProjectRepository) AddParticipant(ctx context.Context, projectID, userID uint) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.ProjectParticipant{ProjectID: projectID, UserID: userID}).Error
}

// RemoveParticipant reports whether a participant row was removed.
func (r *ProjectRepository) RemoveParticipant(ctx context.Context, projectID, userID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.ProjectParticipant{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListParticipants returns the users granted participant access, by id.
func (r *ProjectRepository) ListParticipants(ctx context.Context, projectID uint) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Joins("JOIN project_participants pp ON pp.user_id = users.id").
		Where("pp.project_id = ?", projectID).
		Order("users.id").
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Compile-time interface satisfaction checks
var _ auth.ProjectLookup = (*ProjectRepository)(nil)
