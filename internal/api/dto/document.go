package dto

import (
	"time"

	"github.com/hugh/go-projects/internal/database/models"
)

type DocumentDTO struct {
	ID               uint      `json:"id"`
	OriginalFilename string    `json:"original_filename"`
	FileSize         int64     `json:"file_size"`
	ContentType      string    `json:"content_type"`
	ProjectID        uint      `json:"project_id"`
	UploadedBy       uint      `json:"uploaded_by"`
	UploadedAt       time.Time `json:"uploaded_at"`
}

func NewDocumentDTO(d *models.Document) DocumentDTO {
	return DocumentDTO{
		ID:               d.ID,
		OriginalFilename: d.OriginalFilename,
		FileSize:         d.FileSize,
		ContentType:      d.ContentType,
		ProjectID:        d.ProjectID,
		UploadedBy:       d.UploadedBy,
		UploadedAt:       d.UploadedAt(),
	}
}
