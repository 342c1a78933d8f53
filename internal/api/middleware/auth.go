package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hugh/go-projects/internal/api/dto"
	"github.com/hugh/go-projects/internal/auth"
	"github.com/hugh/go-projects/internal/database/models"
)

type contextKey string

const UserKey contextKey = "user"

// RequestAuthenticator resolves a bearer token to an active user.
// *auth.Service implements it.
type RequestAuthenticator interface {
	AuthenticateRequest(ctx context.Context, bearerToken string) (*models.User, error)
}

// Authenticate accepts only "Authorization: Bearer <token>" and stores the
// resolved user in the request context.
func Authenticate(authn RequestAuthenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				unauthorized(w, "Missing bearer token")
				return
			}

			user, err := authn.AuthenticateRequest(r.Context(), token)
			if err != nil {
				if auth.IsAuthentication(err) {
					msg := "Invalid token"
					if errors.Is(err, auth.ErrTokenExpired) {
						msg = "Token expired"
					}
					unauthorized(w, msg)
					return
				}
				logger.Error("authenticating request", "error", err)
				writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Internal server error"})
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// GetUser returns the authenticated user, or nil outside Authenticate.
func GetUser(ctx context.Context) *models.User {
	if user, ok := ctx.Value(UserKey).(*models.User); ok {
		return user
	}
	return nil
}

func GetUserID(ctx context.Context) uint {
	if user := GetUser(ctx); user != nil {
		return user.ID
	}
	return 0
}
