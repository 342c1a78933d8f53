package models

import "time"

type Project struct {
	Base
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	OwnerID     uint   `gorm:"not null;index" json:"owner_id"`

	// Relationships
	Participants []ProjectParticipant `gorm:"foreignKey:ProjectID" json:"-"`
}

func (Project) TableName() string {
	return "projects"
}

// IsOwner reports whether userID owns the project.
func (p *Project) IsOwner(userID uint) bool {
	return p.OwnerID == userID
}

// HasParticipant reports whether userID was granted participant access.
// Participants must be preloaded.
func (p *Project) HasParticipant(userID uint) bool {
	for _, pp := range p.Participants {
		if pp.UserID == userID {
			return true
		}
	}
	return false
}

func (p *Project) ParticipantIDs() []uint {
	ids := make([]uint, 0, len(p.Participants))
	for _, pp := range p.Participants {
		ids = append(ids, pp.UserID)
	}
	return ids
}

// ProjectParticipant grants a user read access to a project. One row per
// (project, user).
type ProjectParticipant struct {
	ProjectID uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"primaryKey;index"`
	CreatedAt time.Time `json:"created_at"`
}

func (ProjectParticipant) TableName() string {
	return "project_participants"
}
