package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/models"
)

// CommentHandler serves comment listing and lifecycle endpoints.
type CommentHandler struct {
	Comments CommentStore
	Videos   VideoStore

	NowFunc func() time.Time
}

func (h CommentHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc().UTC()
	}
	return time.Now().UTC()
}

type commentListResponse struct {
	Comments   []models.Comment `json:"comments"`
	Total      int64            `json:"totalComments"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int64            `json:"totalPages"`
}

// List returns a video's comments, newest first.
func (h CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	videoID := r.PathValue("videoId")
	if _, err := uuid.Parse(videoID); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "video id is not valid")
		return
	}

	if _, err := h.Videos.FindByID(ctx, videoID); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	page, limit := pageParams(r.URL.Query())
	comments, total, err := h.Comments.ListForVideo(ctx, videoID, page, limit)
	if err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}
	if comments == nil {
		comments = []models.Comment{}
	}

	respondData(ctx, w, http.StatusOK, commentListResponse{
		Comments:   comments,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, "comments fetched successfully")
}

type commentRequest struct {
	Content string `json:"content"`
}

// Create attaches a new comment to a video.
func (h CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	videoID := r.PathValue("videoId")
	if _, err := uuid.Parse(videoID); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "video id is not valid")
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondError(ctx, w, http.StatusBadRequest, "content is required")
		return
	}

	if _, err := h.Videos.FindByID(ctx, videoID); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	now := h.now()
	owner := principal.Public()
	comment := models.Comment{
		ID:        uuid.NewString(),
		VideoID:   videoID,
		OwnerID:   principal.ID,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
		Owner:     &owner,
	}

	if err := h.Comments.Create(ctx, comment); err != nil {
		respondStoreError(ctx, w, err, "video not found")
		return
	}

	respondData(ctx, w, http.StatusCreated, comment, "comment added successfully")
}

// Update replaces a comment's content. Only the author may update.
func (h CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	commentID := r.PathValue("commentId")
	if _, err := uuid.Parse(commentID); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "comment id is not valid")
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondError(ctx, w, http.StatusBadRequest, "content is required")
		return
	}

	comment, err := h.Comments.FindByID(ctx, commentID)
	if err != nil {
		respondStoreError(ctx, w, err, "comment not found")
		return
	}
	if comment.OwnerID != principal.ID {
		respondError(ctx, w, http.StatusForbidden, "you are not allowed to update this comment")
		return
	}

	comment.Content = req.Content
	comment.UpdatedAt = h.now()
	if err := h.Comments.Update(ctx, comment); err != nil {
		respondStoreError(ctx, w, err, "comment not found")
		return
	}

	respondData(ctx, w, http.StatusOK, comment, "comment updated successfully")
}

// Delete removes a comment. Only the author may delete.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	commentID := r.PathValue("commentId")
	if _, err := uuid.Parse(commentID); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "comment id is not valid")
		return
	}

	comment, err := h.Comments.FindByID(ctx, commentID)
	if err != nil {
		respondStoreError(ctx, w, err, "comment not found")
		return
	}
	if comment.OwnerID != principal.ID {
		respondError(ctx, w, http.StatusForbidden, "you are not allowed to delete this comment")
		return
	}

	if err := h.Comments.Delete(ctx, commentID); err != nil {
		respondStoreError(ctx, w, err, "comment not found")
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "comment deleted successfully")
}
