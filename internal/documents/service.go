package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/go-projects/internal/auth"
	"github.com/hugh/go-projects/internal/blob"
	"github.com/hugh/go-projects/internal/database/models"
	"github.com/hugh/go-projects/internal/validation"
)

const DefaultMaxBytes int64 = 25 << 20

var ErrTooLarge = errors.New("file exceeds upload limit")

// Store is the persistence the service needs. *database.DocumentRepository
// satisfies it.
type Store interface {
	Create(ctx context.Context, doc *models.Document) error
	ListByProject(ctx context.Context, projectID uint) ([]models.Document, error)
	Get(ctx context.Context, id uint) (*models.Document, error)
	Delete(ctx context.Context, id uint) error
}

// Metadata is the descriptive subset of a document.
type Metadata struct {
	Filename    string    `json:"filename"`
	FileSize    int64     `json:"file_size"`
	ContentType string    `json:"content_type"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// Service manages document rows and their blob content. Callers authorize
// against the parent project before calling in.
type Service struct {
	store    Store
	storage  blob.Storage
	purger   Purger
	maxBytes int64
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(store Store, storage blob.Storage, purger Purger, maxBytes int64, logger *slog.Logger) *Service {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Service{
		store:    store,
		storage:  storage,
		purger:   purger,
		maxBytes: maxBytes,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Service) MaxBytes() int64 {
	return s.maxBytes
}

// StorageKey builds the blob key for a new document in projectID.
func StorageKey(projectID uint, at time.Time) string {
	return fmt.Sprintf("projects/%d/%s/%s", projectID, at.UTC().Format("2006/01"), uuid.NewString())
}

// Upload stores content and records its metadata. The blob is written first;
// if the row cannot be inserted the blob is removed again.
func (s *Service) Upload(ctx context.Context, project *models.Project, uploader *models.User, filename, contentType string, r io.Reader) (*models.Document, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if n > s.maxBytes {
		return nil, ErrTooLarge
	}
	if n == 0 {
		return nil, &auth.ValidationError{Fields: map[string]string{"file": "File is empty"}}
	}

	doc := &models.Document{
		ProjectID:        project.ID,
		UploadedBy:       uploader.ID,
		OriginalFilename: validation.SanitizeFilename(filename),
		ContentType:      validation.NormalizeContentType(contentType),
		FileSize:         n,
		StorageKey:       StorageKey(project.ID, s.now()),
	}

	if err := s.storage.Put(ctx, doc.StorageKey, &buf, n, doc.ContentType); err != nil {
		return nil, fmt.Errorf("storing content: %w", err)
	}

	if err := s.store.Create(ctx, doc); err != nil {
		if delErr := s.storage.Delete(ctx, doc.StorageKey); delErr != nil {
			s.logger.Error("failed to remove orphaned blob", "key", doc.StorageKey, "error", delErr)
		}
		return nil, fmt.Errorf("creating document: %w", err)
	}

	s.logger.Info("document uploaded",
		"document_id", doc.ID,
		"project_id", project.ID,
		"user_id", uploader.ID,
		"size", n,
	)
	return doc, nil
}

func (s *Service) List(ctx context.Context, projectID uint) ([]models.Document, error) {
	docs, err := s.store.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	return docs, nil
}

// Get returns the document only if it belongs to projectID.
func (s *Service) Get(ctx context.Context, projectID, documentID uint) (*models.Document, error) {
	doc, err := s.store.Get(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("getting document: %w", err)
	}
	if doc == nil || doc.ProjectID != projectID {
		return nil, auth.ErrNotFound
	}
	return doc, nil
}

func (s *Service) Metadata(ctx context.Context, projectID, documentID uint) (*Metadata, error) {
	doc, err := s.Get(ctx, projectID, documentID)
	if err != nil {
		return nil, err
	}
	return &Metadata{
		Filename:    doc.OriginalFilename,
		FileSize:    doc.FileSize,
		ContentType: doc.ContentType,
		UploadedAt:  doc.UploadedAt(),
	}, nil
}

// Open streams the document content. The caller closes the reader.
func (s *Service) Open(ctx context.Context, doc *models.Document) (io.ReadCloser, error) {
	rc, err := s.storage.Get(ctx, doc.StorageKey)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			s.logger.Warn("document content missing", "document_id", doc.ID, "key", doc.StorageKey)
			return nil, auth.ErrNotFound
		}
		return nil, fmt.Errorf("opening content: %w", err)
	}
	return rc, nil
}

// Delete removes the row, then schedules the blob for purging. A purge
// failure is logged; the document is already gone for callers.
func (s *Service) Delete(ctx context.Context, doc *models.Document) error {
	if err := s.store.Delete(ctx, doc.ID); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}

	if err := s.purger.Purge(ctx, []string{doc.StorageKey}, "document_deleted"); err != nil {
		s.logger.Error("failed to schedule blob purge", "document_id", doc.ID, "error", err)
	}
	return nil
}
