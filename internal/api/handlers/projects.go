package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/hugh/go-projects/internal/api/dto"
	"github.com/hugh/go-projects/internal/api/middleware"
	"github.com/hugh/go-projects/internal/auth"
	"github.com/hugh/go-projects/internal/database/models"
	"github.com/hugh/go-projects/internal/projects"
)

type ProjectHandler struct {
	authService *auth.Service
	projects    *projects.Service
	logger      *slog.Logger
}

func NewProjectHandler(authService *auth.Service, projects *projects.Service, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{
		authService: authService,
		projects:    projects,
		logger:      logger,
	}
}

// authorize loads {projectID} and checks action on it. On failure the
// response has been written and nil is returned.
func (h *ProjectHandler) authorize(w http.ResponseWriter, r *http.Request, action auth.Action) *models.Project {
	projectID, ok := urlID(r, "projectID")
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid project ID"})
		return nil
	}

	user := middleware.GetUser(r.Context())
	project, err := h.authService.AuthorizeProject(r.Context(), user, projectID, auth.ResourceProject, action)
	if err != nil {
		writeError(w, r, h.logger, err)
		return nil
	}
	return project
}

// List handles GET /api/v1/projects
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	pagination := dto.PaginationParams{Page: page, PerPage: perPage}
	pagination.Normalize()

	result, err := h.projects.ListForUser(r.Context(), user, pagination.Page, pagination.PerPage)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response := make([]dto.ProjectDTO, len(result.Projects))
	for i := range result.Projects {
		response[i] = dto.NewProjectDTO(&result.Projects[i])
	}

	writeJSON(w, http.StatusOK, dto.PaginatedResponse{
		Data:       response,
		Total:      result.Total,
		Page:       result.Page,
		PerPage:    result.PerPage,
		TotalPages: dto.TotalPages(result.Total, result.PerPage),
	})
}

// Create handles POST /api/v1/projects
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.ProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	project, err := h.projects.Create(r.Context(), middleware.GetUser(r.Context()), req.Name, req.Description)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.NewProjectDTO(project))
}

// Get handles GET /api/v1/projects/{projectID}
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	project := h.authorize(w, r, auth.ActionRead)
	if project == nil {
		return
	}
	writeJSON(w, http.StatusOK, dto.NewProjectDTO(project))
}

// Update handles PUT /api/v1/projects/{projectID}
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	project := h.authorize(w, r, auth.ActionWrite)
	if project == nil {
		return
	}

	var req dto.ProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	project, err := h.projects.Update(r.Context(), project, req.Name, req.Description)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewProjectDTO(project))
}

// Delete handles DELETE /api/v1/projects/{projectID}
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	project := h.authorize(w, r, auth.ActionDelete)
	if project == nil {
		return
	}

	if err := h.projects.Delete(r.Context(), project); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Project deleted"})
}

// ListParticipants handles GET /api/v1/projects/{projectID}/participants
func (h *ProjectHandler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	project := h.authorize(w, r, auth.ActionRead)
	if project == nil {
		return
	}

	users, err := h.projects.Participants(r.Context(), project)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	response := make([]dto.UserDTO, len(users))
	for i := range users {
		response[i] = dto.NewUserDTO(&users[i])
	}
	writeJSON(w, http.StatusOK, response)
}

// AddParticipant handles POST /api/v1/projects/{projectID}/participants
func (h *ProjectHandler) AddParticipant(w http.ResponseWriter, r *http.Request) {
	project := h.authorize(w, r, auth.ActionWrite)
	if project == nil {
		return
	}

	var req dto.AddParticipantRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.projects.AddParticipant(r.Context(), project, projects.ParticipantRef{
		UserID: req.UserID,
		Email:  req.Email,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.NewUserDTO(user))
}

// RemoveParticipant handles DELETE /api/v1/projects/{projectID}/participants/{userID}
func (h *ProjectHandler) RemoveParticipant(w http.ResponseWriter, r *http.Request) {
	project := h.authorize(w, r, auth.ActionWrite)
	if project == nil {
		return
	}

	userID, ok := urlID(r, "userID")
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid user ID"})
		return
	}

	if err := h.projects.RemoveParticipant(r.Context(), project, userID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Participant removed"})
}
