package handlers

import (
	"net/http"

	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
)

// DashboardHandler serves the channel owner's analytics endpoints.
type DashboardHandler struct {
	Stats  StatsStore
	Videos VideoStore
}

// ChannelStats aggregates the principal's subscriber, video, view, like and
// comment totals.
func (h DashboardHandler) ChannelStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	ctx, span := logging.StartSpan(ctx, "dashboard.stats")
	defer span.End()

	stats, err := h.Stats.ChannelStats(ctx, principal.ID)
	if err != nil {
		respondStoreError(ctx, w, err, "channel not found")
		return
	}

	respondData(ctx, w, http.StatusOK, stats, "channel stats fetched successfully")
}

// ChannelVideos lists every video the principal owns, published or not.
func (h DashboardHandler) ChannelVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	query := r.URL.Query()
	page, limit := pageParams(query)
	sortBy, sortAsc := sortParams(query)

	videos, total, err := h.Videos.List(ctx, models.VideoFilter{
		OwnerID: principal.ID,
		SortBy:  sortBy,
		SortAsc: sortAsc,
		Page:    page,
		Limit:   limit,
	})
	if err != nil {
		respondStoreError(ctx, w, err, "channel not found")
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
	}, "channel videos fetched successfully")
}
