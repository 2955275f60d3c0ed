package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/handlers"
	"github.com/vidtube/backend/internal/media"
	"github.com/vidtube/backend/internal/middleware"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/storage"
)

// buildDependencies wires together concrete implementations used by the HTTP
// handlers. When no object store is configured the service still comes up;
// media uploads then fail per-request instead of at boot.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config, logger *slog.Logger) handlers.Dependencies {
	users := repositories.NewPostgresUserRepository(pool)

	var assetStorage media.AssetStorage
	if s3, err := storage.NewS3Storage(ctx, cfg.ObjectStore); err != nil {
		logger.Warn("object store disabled", "error", err)
	} else {
		assetStorage = s3
	}

	return handlers.Dependencies{
		Users:         users,
		History:       users,
		Sessions:      auth.NewManager([]byte(cfg.JWTSecret), cfg.AccessTokenTTL, cfg.RefreshTokenTTL, users),
		Videos:        repositories.NewPostgresVideoRepository(pool),
		Comments:      repositories.NewPostgresCommentRepository(pool),
		Likes:         repositories.NewPostgresLikeRepository(pool),
		Subscriptions: repositories.NewPostgresSubscriptionRepository(pool),
		Playlists:     repositories.NewPostgresPlaylistRepository(pool),
		Tweets:        repositories.NewPostgresTweetRepository(pool),
		Stats:         repositories.NewPostgresStatsRepository(pool),
		Media:         media.NewUploader(assetStorage, logger),
		AuthLimiter:   middleware.NewIPRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow, cfg.AuthRateLimit, 10*time.Minute),
		UploadTempDir: cfg.UploadTempDir,
		Started:       time.Now().UTC(),
	}
}
