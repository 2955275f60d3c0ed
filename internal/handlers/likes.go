package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/models"
)

// LikeHandler serves like toggles for videos, comments and tweets, plus the
// liked-videos listing.
type LikeHandler struct {
	Likes    LikeStore
	Videos   VideoStore
	Comments CommentStore
	Tweets   TweetStore

	NowFunc func() time.Time
}

func (h LikeHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc().UTC()
	}
	return time.Now().UTC()
}

type likeStatusResponse struct {
	Liked bool `json:"liked"`
}

// ToggleVideo likes or unlikes a video for the principal.
func (h LikeHandler) ToggleVideo(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("videoId")
	h.toggle(w, r, "video", id, models.Like{VideoID: id}, func() error {
		_, err := h.Videos.FindByID(r.Context(), id)
		return err
	})
}

// ToggleComment likes or unlikes a comment for the principal.
func (h LikeHandler) ToggleComment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("commentId")
	h.toggle(w, r, "comment", id, models.Like{CommentID: id}, func() error {
		_, err := h.Comments.FindByID(r.Context(), id)
		return err
	})
}

// ToggleTweet likes or unlikes a tweet for the principal.
func (h LikeHandler) ToggleTweet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("tweetId")
	h.toggle(w, r, "tweet", id, models.Like{TweetID: id}, func() error {
		_, err := h.Tweets.FindByID(r.Context(), id)
		return err
	})
}

func (h LikeHandler) toggle(w http.ResponseWriter, r *http.Request, kind, id string, like models.Like, exists func() error) {
	ctx := r.Context()
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	if _, err := uuid.Parse(id); err != nil {
		respondError(ctx, w, http.StatusBadRequest, kind+" id is not valid")
		return
	}

	if err := exists(); err != nil {
		respondStoreError(ctx, w, err, kind+" not found")
		return
	}

	like.ID = uuid.NewString()
	like.LikedBy = principal.ID
	like.CreatedAt = h.now()

	active, err := h.Likes.Toggle(ctx, like)
	if err != nil {
		respondStoreError(ctx, w, err, kind+" not found")
		return
	}

	message := kind + " unliked"
	if active {
		message = kind + " liked"
	}
	respondData(ctx, w, http.StatusOK, likeStatusResponse{Liked: active}, message)
}

// LikedVideos lists the videos the principal has liked.
func (h LikeHandler) LikedVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	page, limit := pageParams(r.URL.Query())
	videos, total, err := h.Likes.LikedVideos(ctx, principal.ID, page, limit)
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
	}, "liked videos fetched successfully")
}
