package handlers

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
)

// VideoHandler serves video listing, publishing and lifecycle endpoints.
type VideoHandler struct {
	Videos  VideoStore
	History HistoryStore
	Media   MediaUploader
	TempDir string

	NowFunc func() time.Time
}

func (h VideoHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc().UTC()
	}
	return time.Now().UTC()
}

// List returns published videos matching the optional query, owner and sort
// parameters.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	ownerID := strings.TrimSpace(query.Get("userId"))
	if ownerID != "" {
		if _, err := uuid.Parse(ownerID); err != nil {
			respondError(ctx, w, http.StatusBadRequest, "userId is not a valid id")
			return
		}
	}

	page, limit := pageParams(query)
	sortBy, sortAsc := sortParams(query)

	filter := models.VideoFilter{
		Query:         strings.TrimSpace(query.Get("query")),
		OwnerID:       ownerID,
		PublishedOnly: true,
		SortBy:        sortBy,
		SortAsc:       sortAsc,
		Page:          page,
		Limit:         limit,
	}

	videos, total, err := h.Videos.List(ctx, filter)
	if err != nil {
		respondStoreError(ctx, w, err, "videos not found")
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
	}, "videos fetched successfully")
}

// Create publishes a new video from a multipart form carrying title,
// description, the video file and an optional thumbnail.
func (h VideoHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		respondError(ctx, w, http.StatusBadRequest, "title is required")
		return
	}

	videoPath, err := stageUpload(r, "videoFile", h.TempDir)
	if err != nil {
		respondError(ctx, w, http.StatusBadRequest, "video file is required")
		return
	}

	id := uuid.NewString()
	uploaded := h.Media.UploadLocalFile(ctx, videoPath, "videos/"+id)
	if uploaded == nil {
		respondError(ctx, w, http.StatusBadRequest, "error while uploading video")
		return
	}

	var thumbnailURL string
	if thumbPath, err := stageUpload(r, "thumbnail", h.TempDir); err == nil {
		if thumb := h.Media.UploadLocalFile(ctx, thumbPath, "thumbnails/"+id); thumb != nil {
			thumbnailURL = thumb.URL
		}
	}

	now := h.now()
	owner := principal.Public()
	video := models.Video{
		ID:           id,
		OwnerID:      principal.ID,
		Title:        title,
		Description:  strings.TrimSpace(r.FormValue("description")),
		VideoURL:     uploaded.URL,
		ThumbnailURL: thumbnailURL,
		Published:    true,
		CreatedAt:    now,
		UpdatedAt:    now,
		Owner:        &owner,
	}

	if err := h.Videos.Create(ctx, video); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	logging.FromContext(ctx).Info("video published", "video_id", video.ID, "owner_id", video.OwnerID, "bytes", uploaded.Size)
	respondData(ctx, w, http.StatusCreated, video, "video published successfully")
}

// Get fetches a single video, counting the view and recording watch history
// for authenticated viewers.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("videoId")
	if _, err := uuid.Parse(id); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "video id is not valid")
		return
	}

	if err := h.Videos.IncrementViews(ctx, id); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	video, err := h.Videos.FindByID(ctx, id)
	if err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	if principal, ok := principalFromContext(ctx); ok && h.History != nil {
		if err := h.History.RecordWatch(ctx, principal.ID, id); err != nil {
			logging.FromContext(ctx).Warn("record watch history", "video_id", id, "user_id", principal.ID, "error", err)
		}
	}

	respondData(ctx, w, http.StatusOK, video, "video fetched successfully")
}

type updateVideoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Update modifies a video's title, description and optionally its thumbnail.
// Only the owner may update.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	id := r.PathValue("videoId")
	if _, err := uuid.Parse(id); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "video id is not valid")
		return
	}

	video, err := h.Videos.FindByID(ctx, id)
	if err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}
	if video.OwnerID != principal.ID {
		respondError(ctx, w, http.StatusForbidden, "you are not allowed to update this video")
		return
	}

	var req updateVideoRequest
	var thumbnailPath string

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			respondError(ctx, w, http.StatusBadRequest, "request body must be multipart form data")
			return
		}
		req.Title = r.FormValue("title")
		req.Description = r.FormValue("description")
		if staged, err := stageUpload(r, "thumbnail", h.TempDir); err == nil {
			thumbnailPath = staged
		} else if !errors.Is(err, errMissingFile) {
			respondError(ctx, w, http.StatusBadRequest, "thumbnail upload is malformed")
			return
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(ctx, w, http.StatusBadRequest, "request body must be valid JSON")
			return
		}
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if req.Title == "" && req.Description == "" && thumbnailPath == "" {
		respondError(ctx, w, http.StatusBadRequest, "title, description or thumbnail is required")
		return
	}

	if req.Title != "" {
		video.Title = req.Title
	}
	if req.Description != "" {
		video.Description = req.Description
	}
	if thumbnailPath != "" {
		if h.Media == nil {
			respondError(ctx, w, http.StatusInternalServerError, "media uploads are not configured")
			return
		}
		thumb := h.Media.UploadLocalFile(ctx, thumbnailPath, "thumbnails/"+id)
		if thumb == nil {
			respondError(ctx, w, http.StatusBadRequest, "error while uploading thumbnail")
			return
		}
		video.ThumbnailURL = thumb.URL
	}
	video.UpdatedAt = h.now()

	if err := h.Videos.Update(ctx, video); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	respondData(ctx, w, http.StatusOK, video, "video updated successfully")
}

// Delete removes a video. Only the owner may delete.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	id := r.PathValue("videoId")
	if _, err := uuid.Parse(id); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "video id is not valid")
		return
	}

	video, err := h.Videos.FindByID(ctx, id)
	if err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}
	if video.OwnerID != principal.ID {
		respondError(ctx, w, http.StatusForbidden, "you are not allowed to delete this video")
		return
	}

	if err := h.Videos.Delete(ctx, id); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	logging.FromContext(ctx).Info("video deleted", "video_id", id, "owner_id", principal.ID)
	respondData(ctx, w, http.StatusOK, nil, "video deleted successfully")
}

type publishStatusResponse struct {
	Published bool `json:"isPublished"`
}

// TogglePublish flips a video's published flag. Only the owner may toggle.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	id := r.PathValue("videoId")
	if _, err := uuid.Parse(id); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "video id is not valid")
		return
	}

	video, err := h.Videos.FindByID(ctx, id)
	if err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}
	if video.OwnerID != principal.ID {
		respondError(ctx, w, http.StatusForbidden, "you are not allowed to modify this video")
		return
	}

	video.Published = !video.Published
	video.UpdatedAt = h.now()
	if err := h.Videos.Update(ctx, video); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	respondData(ctx, w, http.StatusOK, publishStatusResponse{Published: video.Published}, "publish status toggled")
}
