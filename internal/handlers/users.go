package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

const minPasswordLength = 8

// UserHandler serves registration, authentication and profile endpoints.
type UserHandler struct {
	Users    UserStore
	History  HistoryStore
	Sessions SessionManager
	Media    MediaUploader
	Limiter  RateLimiter
	TempDir  string

	// NowFunc allows tests to control time; defaults to time.Now.
	NowFunc func() time.Time
}

func (h UserHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc().UTC()
	}
	return time.Now().UTC()
}

type registerRequest struct {
	FullName string
	Email    string
	Username string
	Password string
}

// Register creates an account from a multipart form carrying the profile
// fields, a required avatar file and an optional cover image.
func (h UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.Users == nil || h.Media == nil {
		respondError(ctx, w, http.StatusInternalServerError, "registration is not configured")
		return
	}

	if !allowRequest(h.Limiter, r, "register") {
		respondError(ctx, w, http.StatusTooManyRequests, "too many registration attempts, slow down")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "request body must be multipart form data")
		return
	}

	req := registerRequest{
		FullName: strings.TrimSpace(r.FormValue("fullName")),
		Email:    strings.TrimSpace(r.FormValue("email")),
		Username: strings.ToLower(strings.TrimSpace(r.FormValue("username"))),
		Password: r.FormValue("password"),
	}
	if req.FullName == "" || req.Email == "" || req.Username == "" || req.Password == "" {
		respondError(ctx, w, http.StatusBadRequest, "fullName, email, username and password are required")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "email address is invalid")
		return
	}
	if len(req.Password) < minPasswordLength {
		respondError(ctx, w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	avatarPath, err := stageUpload(r, "avatar", h.TempDir)
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, "avatar file is required")
		return
	}

	avatar := h.Media.UploadLocalFile(ctx, avatarPath, "avatars")
	if avatar == nil {
		respondError(ctx, w, http.StatusBadRequest, "error while uploading avatar")
		return
	}

	var coverURL string
	if coverPath, err := stageUpload(r, "coverImage", h.TempDir); err == nil {
		if cover := h.Media.UploadLocalFile(ctx, coverPath, "covers"); cover != nil {
			coverURL = cover.URL
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(ctx, w, http.StatusInternalServerError, "internal server error")
		return
	}

	now := h.now()
	user := models.User{
		ID:        uuid.NewString(),
		Username:  req.Username,
		Email:     req.Email,
		FullName:  req.FullName,
		Password:  string(hashed),
		AvatarURL: avatar.URL,
		CoverURL:  coverURL,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, http.StatusConflict, "username or email already registered")
			return
		}
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	logging.FromContext(ctx).Info("user registered", "user_id", user.ID, "username", user.Username)
	respondData(ctx, w, http.StatusCreated, user, "user registered successfully")
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User   models.User          `json:"user"`
	Tokens models.SessionTokens `json:"tokens"`
}

// Login verifies credentials and issues a token pair, also set as cookies.
func (h UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.Users == nil || h.Sessions == nil {
		respondError(ctx, w, http.StatusInternalServerError, "login is not configured")
		return
	}

	if !allowRequest(h.Limiter, r, "login") {
		respondError(ctx, w, http.StatusTooManyRequests, "too many login attempts, slow down")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}

	identifier := strings.ToLower(strings.TrimSpace(req.Username))
	if identifier == "" {
		identifier = strings.TrimSpace(req.Email)
	}
	if identifier == "" || req.Password == "" {
		respondError(ctx, w, http.StatusBadRequest, "username or email and password are required")
		return
	}

	user, err := h.Users.FindByLogin(ctx, identifier)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		respondError(ctx, w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	tokens, err := h.Sessions.Issue(ctx, user)
	if err != nil {
		logging.FromContext(ctx).Error("issue session tokens", "user_id", user.ID, "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "internal server error")
		return
	}

	setAuthCookies(w, tokens)
	logging.FromContext(ctx).Info("user logged in", "user_id", user.ID)
	respondData(ctx, w, http.StatusOK, sessionResponse{User: user, Tokens: tokens}, "user logged in successfully")
}

// Logout revokes the principal's refresh token and clears auth cookies.
func (h UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	h.Sessions.Revoke(ctx, principal.ID)
	clearAuthCookies(w)
	respondData(ctx, w, http.StatusOK, nil, "user logged out successfully")
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RefreshToken exchanges a refresh token, read from the cookie or the body,
// for a fresh pair.
func (h UserHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.Sessions == nil {
		respondError(ctx, w, http.StatusInternalServerError, "token refresh is not configured")
		return
	}

	token := ""
	if cookie, err := r.Cookie("refreshToken"); err == nil {
		token = cookie.Value
	}
	if token == "" {
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			token = req.RefreshToken
		}
	}
	if token == "" {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	user, tokens, err := h.Sessions.Refresh(ctx, token)
	if err != nil {
		if errors.Is(err, auth.ErrSessionNotFound) || errors.Is(err, auth.ErrRefreshTokenExpired) {
			respondError(ctx, w, http.StatusUnauthorized, "refresh token is expired or invalid")
			return
		}
		logging.FromContext(ctx).Error("refresh session tokens", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "internal server error")
		return
	}

	setAuthCookies(w, tokens)
	respondData(ctx, w, http.StatusOK, sessionResponse{User: user, Tokens: tokens}, "access token refreshed")
}

type changePasswordRequest struct {
	OldPassword     string `json:"oldPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ChangePassword verifies the old password and stores a hash of the new one.
func (h UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}

	if req.ConfirmPassword != "" && req.NewPassword != req.ConfirmPassword {
		respondError(ctx, w, http.StatusBadRequest, "new password and confirmation do not match")
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		respondError(ctx, w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(principal.Password), []byte(req.OldPassword)) != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid old password")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		respondError(ctx, w, http.StatusInternalServerError, "internal server error")
		return
	}

	principal.Password = string(hashed)
	principal.UpdatedAt = h.now()
	if err := h.Users.Update(ctx, principal); err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "password changed successfully")
}

// CurrentUser returns the authenticated principal.
func (h UserHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}
	respondData(ctx, w, http.StatusOK, principal, "current user fetched successfully")
}

type updateAccountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// UpdateAccount applies partial profile changes to the principal.
func (h UserHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}

	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(req.Email)
	if req.FullName == "" && req.Email == "" {
		respondError(ctx, w, http.StatusBadRequest, "fullName or email is required")
		return
	}

	if req.FullName != "" {
		principal.FullName = req.FullName
	}
	if req.Email != "" {
		if _, err := mail.ParseAddress(req.Email); err != nil {
			respondError(ctx, w, http.StatusBadRequest, "email address is invalid")
			return
		}
		principal.Email = req.Email
	}
	principal.UpdatedAt = h.now()

	if err := h.Users.Update(ctx, principal); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, http.StatusConflict, "email already registered")
			return
		}
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	respondData(ctx, w, http.StatusOK, principal, "account details updated successfully")
}

// UpdateAvatar replaces the principal's avatar image.
func (h UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "avatar", "avatars", func(user *models.User, url string) {
		user.AvatarURL = url
	}, "avatar updated successfully")
}

// UpdateCoverImage replaces the principal's cover image.
func (h UserHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "coverImage", "covers", func(user *models.User, url string) {
		user.CoverURL = url
	}, "cover image updated successfully")
}

func (h UserHandler) updateImage(w http.ResponseWriter, r *http.Request, field, prefix string, apply func(*models.User, string), message string) {
	ctx := r.Context()
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}
	if h.Media == nil {
		respondError(ctx, w, http.StatusInternalServerError, "media uploads are not configured")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "request body must be multipart form data")
		return
	}

	staged, err := stageUpload(r, field, h.TempDir)
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, field+" file is required")
		return
	}

	result := h.Media.UploadLocalFile(ctx, staged, prefix)
	if result == nil {
		respondError(ctx, w, http.StatusBadRequest, "error while uploading "+field)
		return
	}

	apply(&principal, result.URL)
	principal.UpdatedAt = h.now()
	if err := h.Users.Update(ctx, principal); err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	respondData(ctx, w, http.StatusOK, principal, message)
}

// ChannelProfile returns the public channel page for a username. When the
// request is authenticated the subscription flag reflects the viewer.
func (h UserHandler) ChannelProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := strings.ToLower(strings.TrimSpace(r.PathValue("username")))
	if username == "" {
		respondError(ctx, w, http.StatusBadRequest, "username is required")
		return
	}

	viewerID := ""
	if principal, ok := principalFromContext(ctx); ok {
		viewerID = principal.ID
	}

	profile, err := h.Users.ChannelProfile(ctx, username, viewerID)
	if err != nil {
		respondStoreError(ctx, w, err, "channel does not exist")
		return
	}

	respondData(ctx, w, http.StatusOK, profile, "channel profile fetched successfully")
}

type videoListResponse struct {
	Videos     []models.Video `json:"videos"`
	Total      int64          `json:"totalVideos"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int64          `json:"totalPages"`
}

// WatchHistory lists the principal's watched videos, most recent first.
func (h UserHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}
	if h.History == nil {
		respondError(ctx, w, http.StatusInternalServerError, "watch history is not configured")
		return
	}

	page, limit := pageParams(r.URL.Query())
	videos, total, err := h.History.WatchHistory(ctx, principal.ID, page, limit)
	if err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}
	if videos == nil {
		videos = []models.Video{}
	}

	respondData(ctx, w, http.StatusOK, videoListResponse{
		Videos:     videos,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, "watch history fetched successfully")
}

func setAuthCookies(w http.ResponseWriter, tokens models.SessionTokens) {
	http.SetCookie(w, &http.Cookie{
		Name:     "accessToken",
		Value:    tokens.AccessToken,
		Path:     "/",
		Expires:  tokens.AccessExpiresAt,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     "refreshToken",
		Value:    tokens.RefreshToken,
		Path:     "/",
		Expires:  tokens.RefreshExpiresAt,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{"accessToken", "refreshToken"} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteStrictMode,
		})
	}
}
