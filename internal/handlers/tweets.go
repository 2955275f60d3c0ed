package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/models"
)

// TweetHandler serves tweet lifecycle and listing endpoints.
type TweetHandler struct {
	Tweets TweetStore
	Users  UserStore

	NowFunc func() time.Time
}

func (h TweetHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc().UTC()
	}
	return time.Now().UTC()
}

type tweetRequest struct {
	Content string `json:"content"`
}

// Create posts a new tweet for the principal.
func (h TweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	var req tweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondError(ctx, w, http.StatusBadRequest, "content is required")
		return
	}

	now := h.now()
	owner := principal.Public()
	tweet := models.Tweet{
		ID:        uuid.NewString(),
		OwnerID:   principal.ID,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
		Owner:     &owner,
	}

	if err := h.Tweets.Create(ctx, tweet); err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	respondData(ctx, w, http.StatusCreated, tweet, "tweet created successfully")
}

type tweetListResponse struct {
	Tweets     []models.Tweet `json:"tweets"`
	Total      int64          `json:"totalTweets"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int64          `json:"totalPages"`
}

// ListForUser returns a user's tweets, newest first.
func (h TweetHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := r.PathValue("userId")
	if _, err := uuid.Parse(userID); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "user id is not valid")
		return
	}

	if _, err := h.Users.FindByID(ctx, userID); err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}

	page, limit := pageParams(r.URL.Query())
	tweets, total, err := h.Tweets.ListForUser(ctx, userID, page, limit)
	if err != nil {
		respondStoreError(ctx, w, err, "user not found")
		return
	}
	if tweets == nil {
		tweets = []models.Tweet{}
	}

	respondData(ctx, w, http.StatusOK, tweetListResponse{
		Tweets:     tweets,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, "user tweets fetched successfully")
}

// Update replaces a tweet's content. Only the author may update.
func (h TweetHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	id := r.PathValue("tweetId")
	if _, err := uuid.Parse(id); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "tweet id is not valid")
		return
	}

	var req tweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		respondError(ctx, w, http.StatusBadRequest, "content is required")
		return
	}

	tweet, err := h.Tweets.FindByID(ctx, id)
	if err != nil {
		respondStoreError(ctx, w, err, "tweet not found")
		return
	}
	if tweet.OwnerID != principal.ID {
		respondError(ctx, w, http.StatusForbidden, "you are not allowed to update this tweet")
		return
	}

	tweet.Content = req.Content
	tweet.UpdatedAt = h.now()
	if err := h.Tweets.Update(ctx, tweet); err != nil {
		respondStoreError(ctx, w, err, "tweet not found")
		return
	}

	respondData(ctx, w, http.StatusOK, tweet, "tweet updated successfully")
}

// Delete removes a tweet. Only the author may delete.
func (h TweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	id := r.PathValue("tweetId")
	if _, err := uuid.Parse(id); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "tweet id is not valid")
		return
	}

	tweet, err := h.Tweets.FindByID(ctx, id)
	if err != nil {
		respondStoreError(ctx, w, err, "tweet not found")
		return
	}
	if tweet.OwnerID != principal.ID {
		respondError(ctx, w, http.StatusForbidden, "you are not allowed to delete this tweet")
		return
	}

	if err := h.Tweets.Delete(ctx, id); err != nil {
		respondStoreError(ctx, w, err, "tweet not found")
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "tweet deleted successfully")
}
