package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/models"
)

// SubscriptionHandler serves channel subscription toggles and listings.
type SubscriptionHandler struct {
	Subscriptions SubscriptionStore
	Users         UserStore

	NowFunc func() time.Time
}

func (h SubscriptionHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc().UTC()
	}
	return time.Now().UTC()
}

// Toggle subscribes or unsubscribes the principal to a channel. Subscribing to
// your own channel is rejected.
func (h SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := principalFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "unauthorized request")
		return
	}

	channelID := r.PathValue("channelId")
	if _, err := uuid.Parse(channelID); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "channel id is not valid")
		return
	}
	if channelID == principal.ID {
		respondError(ctx, w, http.StatusBadRequest, "you cannot subscribe to your own channel")
		return
	}

	if _, err := h.Users.FindByID(ctx, channelID); err != nil {
		respondStoreError(ctx, w, err, "channel not found")
		return
	}

	active, err := h.Subscriptions.Toggle(ctx, models.Subscription{
		ID:           uuid.NewString(),
		SubscriberID: principal.ID,
		ChannelID:    channelID,
		CreatedAt:    h.now(),
	})
	if err != nil {
		respondStoreError(ctx, w, err, "channel not found")
		return
	}

	message := "unsubscribed from channel"
	if active {
		message = "subscribed to channel"
	}
	respondData(ctx, w, http.StatusOK, subscriptionStatusResponse{Subscribed: active}, message)
}

type subscriptionStatusResponse struct {
	Subscribed bool `json:"subscribed"`
}

type userListResponse struct {
	Users      []models.PublicUser `json:"users"`
	Total      int64               `json:"total"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
	TotalPages int64               `json:"totalPages"`
}

// Subscribers lists the users subscribed to a channel.
func (h SubscriptionHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	h.listUsers(w, r, r.PathValue("channelId"), "channel", h.Subscriptions.Subscribers, "channel subscribers fetched successfully")
}

// SubscribedChannels lists the channels a user is subscribed to.
func (h SubscriptionHandler) SubscribedChannels(w http.ResponseWriter, r *http.Request) {
	h.listUsers(w, r, r.PathValue("subscriberId"), "user", h.Subscriptions.Subscriptions, "subscribed channels fetched successfully")
}

func (h SubscriptionHandler) listUsers(w http.ResponseWriter, r *http.Request, id, kind string, list func(ctx context.Context, id string, page, limit int) ([]models.PublicUser, int64, error), message string) {
	ctx := r.Context()
	if _, err := uuid.Parse(id); err != nil {
		respondError(ctx, w, http.StatusBadRequest, kind+" id is not valid")
		return
	}

	if _, err := h.Users.FindByID(ctx, id); err != nil {
		respondStoreError(ctx, w, err, kind+" not found")
		return
	}

	page, limit := pageParams(r.URL.Query())
	users, total, err := list(ctx, id, page, limit)
	if err != nil {
		respondStoreError(ctx, w, err, kind+" not found")
		return
	}
	if users == nil {
		users = []models.PublicUser{}
	}

	respondData(ctx, w, http.StatusOK, userListResponse{
		Users:      users,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, message)
}
