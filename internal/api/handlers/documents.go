package handlers

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/hugh/go-projects/internal/api/dto"
	"github.com/hugh/go-projects/internal/api/middleware"
	"github.com/hugh/go-projects/internal/auth"
	"github.com/hugh/go-projects/internal/database/models"
	"github.com/hugh/go-projects/internal/documents"
)

// multipartOverhead leaves room for boundaries and part headers on top of
// the file size limit.
const multipartOverhead = 1 << 20

type DocumentHandler struct {
	authService *auth.Service
	documents   *documents.Service
	logger      *slog.Logger
}

func NewDocumentHandler(authService *auth.Service, documents *documents.Service, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		authService: authService,
		documents:   documents,
		logger:      logger,
	}
}

// authorize checks action against the documents of {projectID}. The project
// is resolved first, so a missing project is 404 for everyone.
func (h *DocumentHandler) authorize(w http.ResponseWriter, r *http.Request, action auth.Action) *models.Project {
	projectID, ok := urlID(r, "projectID")
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid project ID"})
		return nil
	}

	user := middleware.GetUser(r.Context())
	project, err := h.authService.AuthorizeProject(r.Context(), user, projectID, auth.ResourceDocument, action)
	if err != nil {
		writeError(w, r, h.logger, err)
		return nil
	}
	return project
}

// document resolves {documentID} inside {projectID} before any permission
// check, so a missing document is 404 even for users who could not read it.
func (h *DocumentHandler) document(w http.ResponseWriter, r *http.Request, action auth.Action) *models.Document {
	projectID, ok := urlID(r, "projectID")
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid project ID"})
		return nil
	}
	documentID, ok := urlID(r, "documentID")
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid document ID"})
		return nil
	}

	doc, err := h.documents.Get(r.Context(), projectID, documentID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return nil
	}

	decision, err := h.authService.CheckAccess(r.Context(), middleware.GetUser(r.Context()), doc.ID, auth.ResourceDocument, action)
	if err == nil {
		err = decision.Err()
	}
	if err != nil {
		writeError(w, r, h.logger, err)
		return nil
	}
	return doc
}

// List handles GET /api/v1/projects/{projectID}/documents
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	project := h.authorize(w, r, auth.ActionRead)
	if project == nil {
		return
	}

	docs, err := h.documents.List(r.Context(), project.ID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response := make([]dto.DocumentDTO, len(docs))
	for i := range docs {
		response[i] = dto.NewDocumentDTO(&docs[i])
	}
	writeJSON(w, http.StatusOK, response)
}

// Upload handles POST /api/v1/projects/{projectID}/documents as a multipart
// form with a "file" field.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	project := h.authorize(w, r, auth.ActionWrite)
	if project == nil {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.documents.MaxBytes()+multipartOverhead)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, h.logger, documents.ErrTooLarge)
			return
		}
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid multipart form"})
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Details: map[string]string{"file": "File is required"},
		})
		return
	}
	defer file.Close()

	doc, err := h.documents.Upload(r.Context(), project, middleware.GetUser(r.Context()),
		header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.NewDocumentDTO(doc))
}

// Get handles GET /api/v1/projects/{projectID}/documents/{documentID}
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	doc := h.document(w, r, auth.ActionRead)
	if doc == nil {
		return
	}
	writeJSON(w, http.StatusOK, dto.NewDocumentDTO(doc))
}

// Metadata handles GET /api/v1/projects/{projectID}/documents/{documentID}/metadata
func (h *DocumentHandler) Metadata(w http.ResponseWriter, r *http.Request) {
	doc := h.document(w, r, auth.ActionRead)
	if doc == nil {
		return
	}

	meta, err := h.documents.Metadata(r.Context(), doc.ProjectID, doc.ID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

// Content handles GET /api/v1/projects/{projectID}/documents/{documentID}/content
func (h *DocumentHandler) Content(w http.ResponseWriter, r *http.Request) {
	doc := h.document(w, r, auth.ActionRead)
	if doc == nil {
		return
	}

	rc, err := h.documents.Open(r.Context(), doc)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(doc.FileSize, 10))
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": doc.OriginalFilename})
	if disposition == "" {
		disposition = "attachment"
	}
	w.Header().Set("Content-Disposition", disposition)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("streaming document aborted", "document_id", doc.ID, "error", err)
	}
}

// Delete handles DELETE /api/v1/projects/{projectID}/documents/{documentID}
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	doc := h.document(w, r, auth.ActionDelete)
	if doc == nil {
		return
	}

	if err := h.documents.Delete(r.Context(), doc); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Document deleted"})
}
