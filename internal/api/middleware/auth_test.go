package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hugh/go-projects/internal/auth"
	"github.com/hugh/go-projects/internal/database/models"
	"github.com/stretchr/testify/assert"
)

type fakeAuthenticator struct {
	users map[string]*models.User
	err   error
	calls int
}

func (f *fakeAuthenticator) AuthenticateRequest(ctx context.Context, token string) (*models.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.users[token]; ok {
		return u, nil
	}
	return nil, auth.ErrTokenInvalid
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okHandler(t *testing.T, wantID uint) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, wantID, GetUserID(r.Context()))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}

func TestAuthenticate_ValidToken(t *testing.T) {
	user := &models.User{Base: models.Base{ID: 7}, Email: "a@x.com", IsActive: true}
	authn := &fakeAuthenticator{users: map[string]*models.User{"good": user}}

	handler := Authenticate(authn, discardLogger())(okHandler(t, 7))

	for _, header := range []string{"Bearer good", "bearer good", "Bearer   good  "} {
		req := httptest.NewRequest("GET", "/api/v1/me", nil)
		req.Header.Set("Authorization", header)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code, header)
		assert.Equal(t, "OK", rec.Body.String())
	}
}

func TestAuthenticate_MissingOrMalformedHeader(t *testing.T) {
	authn := &fakeAuthenticator{}
	handler := Authenticate(authn, discardLogger())(okHandler(t, 0))

	tests := []struct {
		name   string
		header string
		cookie bool
	}{
		{"no header", "", false},
		{"basic scheme", "Basic dXNlcjpwYXNz", false},
		{"scheme only", "Bearer", false},
		{"empty token", "Bearer    ", false},
		{"cookie is ignored", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/v1/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie {
				req.AddCookie(&http.Cookie{Name: "token", Value: "good"})
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")
		})
	}
	assert.Zero(t, authn.calls)
}

func TestAuthenticate_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"invalid", auth.ErrTokenInvalid, http.StatusUnauthorized, "Invalid token"},
		{"expired", auth.ErrTokenExpired, http.StatusUnauthorized, "Token expired"},
		{"malformed claims", auth.ErrTokenMalformedClaims, http.StatusUnauthorized, "Invalid token"},
		{"inactive user", auth.ErrUnauthorized, http.StatusUnauthorized, "Invalid token"},
		{"backend failure", errors.New("db down"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authn := &fakeAuthenticator{err: tt.err}
			handler := Authenticate(authn, discardLogger())(okHandler(t, 0))

			req := httptest.NewRequest("GET", "/api/v1/me", nil)
			req.Header.Set("Authorization", "Bearer whatever")
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			assert.NotContains(t, rec.Body.String(), "db down")
		})
	}
}

func TestGetUser_NotInContext(t *testing.T) {
	assert.Nil(t, GetUser(context.Background()))
	assert.Zero(t, GetUserID(context.Background()))
}

func TestGetUser_FromContext(t *testing.T) {
	user := &models.User{Base: models.Base{ID: 3}}
	ctx := WithUser(context.Background(), user)
	assert.Same(t, user, GetUser(ctx))
	assert.Equal(t, uint(3), GetUserID(ctx))
}
