package models

import "time"

// Document is the metadata row for an uploaded file. The content lives in
// blob storage under StorageKey. Access is governed by the parent project.
type Document struct {
	Base
	ProjectID        uint   `gorm:"not null;index" json:"project_id"`
	UploadedBy       uint   `gorm:"not null" json:"uploaded_by"`
	OriginalFilename string `gorm:"not null" json:"original_filename"`
	ContentType      string `json:"content_type"`
	FileSize         int64  `json:"file_size"`
	StorageKey       string `gorm:"uniqueIndex;not null" json:"-"`
}

func (Document) TableName() string {
	return "documents"
}

func (d *Document) UploadedAt() time.Time {
	return d.CreatedAt
}
