package dto

import (
	"time"

	"github.com/hugh/go-projects/internal/database/models"
)

type ProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AddParticipantRequest names the user by email or by id.
type AddParticipantRequest struct {
	Email  string `json:"email,omitempty"`
	UserID uint   `json:"user_id,omitempty"`
}

type ProjectDTO struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	OwnerID        uint      `json:"owner_id"`
	ParticipantIDs []uint    `json:"participant_ids"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func NewProjectDTO(p *models.Project) ProjectDTO {
	return ProjectDTO{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		OwnerID:        p.OwnerID,
		ParticipantIDs: p.ParticipantIDs(),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
