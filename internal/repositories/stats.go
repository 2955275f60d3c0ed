package repositories

import (
	"context"
	"fmt"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/models"
)

// PostgresStatsRepository computes cross-collection dashboard counters. Each
// counter is its own explicit query; there is no store-side pipeline.
type PostgresStatsRepository struct {
	pool db.Pool
}

// NewPostgresStatsRepository constructs a stats repository backed by PostgreSQL.
func NewPostgresStatsRepository(pool db.Pool) *PostgresStatsRepository {
	return &PostgresStatsRepository{pool: pool}
}

// ChannelStats aggregates subscriber, video, view, like and comment totals for
// the channel owned by userID.
func (r *PostgresStatsRepository) ChannelStats(ctx context.Context, userID string) (models.ChannelStats, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.ChannelStats{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var stats models.ChannelStats

	if err := conn.QueryRow(ctx, `
        SELECT COUNT(*) FROM subscriptions WHERE channel_id = $1
    `, userID).Scan(&stats.TotalSubscribers); err != nil {
		return models.ChannelStats{}, fmt.Errorf("count subscribers: %w", err)
	}

	if err := conn.QueryRow(ctx, `
        SELECT COUNT(*), COALESCE(SUM(views), 0) FROM videos WHERE owner_id = $1
    `, userID).Scan(&stats.TotalVideos, &stats.TotalViews); err != nil {
		return models.ChannelStats{}, fmt.Errorf("count videos: %w", err)
	}

	if err := conn.QueryRow(ctx, `
        SELECT COUNT(*)
        FROM likes l
        JOIN videos v ON v.id = l.video_id
        WHERE v.owner_id = $1
    `, userID).Scan(&stats.TotalLikes); err != nil {
		return models.ChannelStats{}, fmt.Errorf("count likes: %w", err)
	}

	if err := conn.QueryRow(ctx, `
        SELECT COUNT(*)
        FROM comments c
        JOIN videos v ON v.id = c.video_id
        WHERE v.owner_id = $1
    `, userID).Scan(&stats.TotalComments); err != nil {
		return models.ChannelStats{}, fmt.Errorf("count comments: %w", err)
	}

	return stats, nil
}
