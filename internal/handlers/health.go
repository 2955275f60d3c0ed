package handlers

import (
	"net/http"
	"time"
)

// HealthHandler reports service liveness.
type HealthHandler struct {
	Started time.Time

	NowFunc func() time.Time
}

type healthResponse struct {
	Status        string    `json:"status"`
	UptimeSeconds float64   `json:"uptimeSeconds"`
	Timestamp     time.Time `json:"timestamp"`
}

// Check returns an OK envelope with process uptime. It touches no
// dependencies, so it succeeds even when the store is down.
func (h HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	if h.NowFunc != nil {
		now = h.NowFunc().UTC()
	}

	respondData(r.Context(), w, http.StatusOK, healthResponse{
		Status:        "ok",
		UptimeSeconds: now.Sub(h.Started).Seconds(),
		Timestamp:     now,
	}, "everything is o.k.")
}
