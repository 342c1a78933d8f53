package handlers_test

import (
	"bytes"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hugh/go-projects/internal/api/handlers"
	"github.com/hugh/go-projects/internal/api/middleware"
	"github.com/hugh/go-projects/internal/auth"
	"github.com/hugh/go-projects/internal/blob"
	"github.com/hugh/go-projects/internal/database"
	"github.com/hugh/go-projects/internal/database/models"
	"github.com/hugh/go-projects/internal/documents"
	"github.com/hugh/go-projects/internal/projects"
	"github.com/hugh/go-projects/internal/testutil"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	*testutil.TestSetup
	Router  *chi.Mux
	Storage *blob.MemoryStorage
}

func setupTestAPI(t *testing.T, maxUpload int64) *testAPI {
	t.Helper()
	tc := testutil.NewTestContext(t)
	t.Cleanup(tc.Cleanup)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	users := database.NewUserRepository(tc.DB)
	projectRepo := database.NewProjectRepository(tc.DB)
	storage := blob.NewMemoryStorage()
	purger := documents.NewInlinePurger(storage, logger)

	authService := auth.NewService(users, projectRepo, tc.JWTService, auth.WithLogger(logger))
	projectService := projects.NewService(projectRepo, users, purger, logger)
	documentService := documents.NewService(database.NewDocumentRepository(tc.DB), storage, purger, maxUpload, logger)

	authHandler := handlers.NewAuthHandler(authService, logger)
	projectHandler := handlers.NewProjectHandler(authService, projectService, logger)
	documentHandler := handlers.NewDocumentHandler(authService, documentService, logger)

	r := chi.NewRouter()
	r.Post("/api/v1/auth/register", authHandler.Register)
	r.Post("/api/v1/auth/login", authHandler.Login)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(authService, logger))
		r.Get("/api/v1/me", authHandler.Me)

		r.Get("/api/v1/projects", projectHandler.List)
		r.Post("/api/v1/projects", projectHandler.Create)
		r.Get("/api/v1/projects/{projectID}", projectHandler.Get)
		r.Put("/api/v1/projects/{projectID}", projectHandler.Update)
		r.Delete("/api/v1/projects/{projectID}", projectHandler.Delete)
		r.Get("/api/v1/projects/{projectID}/participants", projectHandler.ListParticipants)
		r.Post("/api/v1/projects/{projectID}/participants", projectHandler.AddParticipant)
		r.Delete("/api/v1/projects/{projectID}/participants/{userID}", projectHandler.RemoveParticipant)

		r.Get("/api/v1/projects/{projectID}/documents", documentHandler.List)
		r.Post("/api/v1/projects/{projectID}/documents", documentHandler.Upload)
		r.Get("/api/v1/projects/{projectID}/documents/{documentID}", documentHandler.Get)
		r.Delete("/api/v1/projects/{projectID}/documents/{documentID}", documentHandler.Delete)
		r.Get("/api/v1/projects/{projectID}/documents/{documentID}/metadata", documentHandler.Metadata)
		r.Get("/api/v1/projects/{projectID}/documents/{documentID}/content", documentHandler.Content)
	})

	return &testAPI{TestSetup: tc, Router: r, Storage: storage}
}

func (a *testAPI) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.AuthenticatedRequest(t, method, path, body, token)
	rr := httptest.NewRecorder()
	a.Router.ServeHTTP(rr, req)
	return rr
}

// userWithToken creates another active user and a token for them
func (a *testAPI) userWithToken(t *testing.T) (*models.User, string) {
	t.Helper()
	user := testutil.CreateTestUser(t, a.DB)
	return user, testutil.GenerateTestToken(t, a.JWTService, user)
}

func multipartRequest(t *testing.T, path, token, filename, contentType string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		h := make(map[string][]string)
		h["Content-Disposition"] = []string{`form-data; name="file"; filename="` + filename + `"`}
		h["Content-Type"] = []string{contentType}
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = io.Copy(part, bytes.NewReader(content))
		require.NoError(t, err)
	} else {
		require.NoError(t, mw.WriteField("note", "no file here"))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}
