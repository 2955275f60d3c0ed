package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

// PlaylistHandler serves playlist lifecycle and membership endpoints.
type PlaylistHandler struct {
	Playlists PlaylistStore
	Videos    VideoStore

	NowFunc func() time.Time
}

func (h PlaylistHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc().UTC()
	}
	return time.Now().UTC()
}

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Create starts a new empty playlist owned by the principal.
func (h PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(ctx, w, http.StatusBadRequest, "name is required")
		return
	}

	now := h.now()
	owner := principal.Public()
	playlist := models.Playlist{
		ID:          uuid.NewString(),
		OwnerID:     principal.ID,
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
		Owner:       &owner,
		Videos:      []models.Video{},
	}

	if err := h.Playlists.Create(ctx, playlist); err != nil {
		respondStoreError(ctx, w, err, "playlist not found")
		return
	}

	respondData(ctx, w, http.StatusCreated, playlist, "playlist created successfully")
}

// Get fetches a playlist with its videos expanded.
func (h PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("playlistId")
	if _, err := uuid.Parse(id); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "playlist id is not valid")
		return
	}

	playlist, err := h.Playlists.FindByID(ctx, id)
	if err != nil {
		respondStoreError(ctx, w, err, "playlist not found")
		return
	}

	respondData(ctx, w, http.StatusOK, playlist, "playlist fetched successfully")
}

// ListForUser returns all playlists owned by a user.
func (h PlaylistHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := r.PathValue("userId")
	if _, err := uuid.Parse(userID); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "user id is not valid")
		return
	}

	playlists, err := h.Playlists.ListForUser(ctx, userID)
	if err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}
	if playlists == nil {
		playlists = []models.Playlist{}
	}

	respondData(ctx, w, http.StatusOK, playlists, "user playlists fetched successfully")
}

// Update renames a playlist or changes its description. Only the owner may
// update.
func (h PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	id := r.PathValue("playlistId")
	if _, err := uuid.Parse(id); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "playlist id is not valid")
		return
	}

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if req.Name == "" && req.Description == "" {
		respondError(ctx, w, http.StatusBadRequest, "name or description is required")
		return
	}

	playlist, err := h.Playlists.FindByID(ctx, id)
	if err != nil {
		respondStoreError(ctx, w, err, "playlist not found")
		return
	}
	if playlist.OwnerID != principal.ID {
		respondError(ctx, w, http.StatusForbidden, "you are not allowed to update this playlist")
		return
	}

	if req.Name != "" {
		playlist.Name = req.Name
	}
	if req.Description != "" {
		playlist.Description = req.Description
	}
	playlist.UpdatedAt = h.now()

	if err := h.Playlists.Update(ctx, playlist); err != nil {
		respondStoreError(ctx, w, err, "playlist not found")
		return
	}

	respondData(ctx, w, http.StatusOK, playlist, "playlist updated successfully")
}

// Delete removes a playlist. Only the owner may delete.
func (h PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	id := r.PathValue("playlistId")
	if _, err := uuid.Parse(id); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "playlist id is not valid")
		return
	}

	playlist, err := h.Playlists.FindByID(ctx, id)
	if err != nil {
		respondStoreError(ctx, w, err, "playlist not found")
		return
	}
	if playlist.OwnerID != principal.ID {
		respondError(ctx, w, http.StatusForbidden, "you are not allowed to delete this playlist")
		return
	}

	if err := h.Playlists.Delete(ctx, id); err != nil {
		respondStoreError(ctx, w, err, "playlist not found")
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "playlist deleted successfully")
}

// AddVideo appends a video to a playlist. Only the owner may modify the
// playlist; adding a video twice is rejected.
func (h PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	playlist, videoID, ok := h.membership(w, r)
	if !ok {
		return
	}

	if _, err := h.Videos.FindByID(ctx, videoID); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	if err := h.Playlists.AddVideo(ctx, playlist.ID, videoID); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, http.StatusBadRequest, "video already exists in the playlist")
			return
		}
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	updated, err := h.Playlists.FindByID(ctx, playlist.ID)
	if err != nil {
		respondStoreError(ctx, w, err, "playlist not found")
		return
	}

	respondData(ctx, w, http.StatusOK, updated, "video added to playlist")
}

// RemoveVideo drops a video from a playlist. Only the owner may modify the
// playlist.
func (h PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	playlist, videoID, ok := h.membership(w, r)
	if !ok {
		return
	}

	if err := h.Playlists.RemoveVideo(ctx, playlist.ID, videoID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusBadRequest, "video does not exist in the playlist")
			return
		}
		respondStoreError(ctx, w, err, "playlist not found")
		return
	}

	updated, err := h.Playlists.FindByID(ctx, playlist.ID)
	if err != nil {
		respondStoreError(ctx, w, err, "playlist not found")
		return
	}

	respondData(ctx, w, http.StatusOK, updated, "video removed from playlist")
}

// membership validates the path ids and the principal's ownership of the
// playlist for membership mutations.
func (h PlaylistHandler) membership(w http.ResponseWriter, r *http.Request) (models.Playlist, string, bool) {
	ctx := r.Context()
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return models.Playlist{}, "", false
	}

	playlistID := r.PathValue("playlistId")
	videoID := r.PathValue("videoId")
	if _, err := uuid.Parse(playlistID); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "playlist id is not valid")
		return models.Playlist{}, "", false
	}
	if _, err := uuid.Parse(videoID); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "video id is not valid")
		return models.Playlist{}, "", false
	}

	playlist, err := h.Playlists.FindByID(ctx, playlistID)
	if err != nil {
		respondStoreError(ctx, w, err, "playlist not found")
		return models.Playlist{}, "", false
	}
	if playlist.OwnerID != principal.ID {
		respondError(ctx, w, http.StatusForbidden, "you are not allowed to modify this playlist")
		return models.Playlist{}, "", false
	}

	return playlist, videoID, true
}
