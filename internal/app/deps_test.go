package app

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/vidtube/backend/internal/config"
)

func TestBuildDependencies(t *testing.T) {
	cfg := config.Config{
		JWTSecret:       "test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		UploadTempDir:   t.TempDir(),
		AuthRateLimit:   10,
		AuthRateWindow:  time.Minute,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	deps := buildDependencies(context.Background(), nil, cfg, logger)

	if deps.Users == nil || deps.History == nil || deps.Sessions == nil {
		t.Fatal("expected identity dependencies to be wired")
	}
	if deps.Videos == nil || deps.Comments == nil || deps.Likes == nil ||
		deps.Subscriptions == nil || deps.Playlists == nil || deps.Tweets == nil || deps.Stats == nil {
		t.Fatal("expected content dependencies to be wired")
	}
	if deps.Media == nil {
		t.Fatal("expected media uploader even without an object store")
	}
	if deps.AuthLimiter == nil {
		t.Fatal("expected auth rate limiter to be wired")
	}
	if deps.Started.IsZero() {
		t.Fatal("expected start time to be recorded")
	}
}
