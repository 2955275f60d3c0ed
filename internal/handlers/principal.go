package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

type principalContextKey struct{}

func withPrincipal(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, principalContextKey{}, user)
}

func principalFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(principalContextKey{}).(models.User)
	return user, ok
}

// Authenticator resolves bearer credentials to a full user record and attaches
// it to the request context as the principal.
type Authenticator struct {
	Sessions SessionManager
	Users    UserStore
}

// Require wraps next so that it only runs with a verified principal on the
// context; requests without a valid access token get a 401 envelope.
func (a Authenticator) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, status, message := a.resolve(r)
		if status != 0 {
			respondError(r.Context(), w, status, message)
			return
		}
		next(w, r.WithContext(withPrincipal(r.Context(), user)))
	}
}

// Optional attaches a principal when valid credentials are presented but lets
// anonymous requests through untouched. A bad token is still rejected.
func (a Authenticator) Optional(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if extractAccessToken(r) == "" {
			next(w, r)
			return
		}

		user, status, message := a.resolve(r)
		if status != 0 {
			respondError(r.Context(), w, status, message)
			return
		}
		next(w, r.WithContext(withPrincipal(r.Context(), user)))
	}
}

func (a Authenticator) resolve(r *http.Request) (models.User, int, string) {
	if a.Sessions == nil || a.Users == nil {
		return models.User{}, http.StatusInternalServerError, "internal server error"
	}

	token := extractAccessToken(r)
	if token == "" {
		return models.User{}, http.StatusUnauthorized, "unauthorized request"
	}

	userID, err := a.Sessions.Verify(token)
	if err != nil {
		return models.User{}, http.StatusUnauthorized, "invalid access token"
	}

	user, err := a.Users.FindByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) || errors.Is(err, auth.ErrSessionNotFound) {
			return models.User{}, http.StatusUnauthorized, "invalid access token"
		}
		return models.User{}, http.StatusInternalServerError, "internal server error"
	}

	return user, 0, ""
}

// extractAccessToken prefers the accessToken cookie and falls back to the
// Authorization bearer header.
func extractAccessToken(r *http.Request) string {
	if cookie, err := r.Cookie("accessToken"); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}
