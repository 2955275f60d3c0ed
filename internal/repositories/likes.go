package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/models"
)

// PostgresLikeRepository provides PostgreSQL-backed persistence for likes.
type PostgresLikeRepository struct {
	pool db.Pool
}

// NewPostgresLikeRepository constructs a like repository backed by PostgreSQL.
func NewPostgresLikeRepository(pool db.Pool) *PostgresLikeRepository {
	return &PostgresLikeRepository{pool: pool}
}

// Toggle inserts the like if the (user, target) pair is absent and deletes it
// otherwise. Each branch is a single statement backed by a unique index, so
// two concurrent toggles cannot both insert.
func (r *PostgresLikeRepository) Toggle(ctx context.Context, like models.Like) (bool, error) {
	column, target, err := likeTargetColumn(like)
	if err != nil {
		return false, err
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        INSERT INTO likes (id, video_id, comment_id, tweet_id, liked_by, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT DO NOTHING
    `, like.ID, nullable(like.VideoID), nullable(like.CommentID), nullable(like.TweetID), like.LikedBy, like.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("insert like: %w", err)
	}

	if tag.RowsAffected() == 1 {
		return true, nil
	}

	if _, err := conn.Exec(ctx, fmt.Sprintf(`DELETE FROM likes WHERE liked_by = $1 AND %s = $2`, column), like.LikedBy, target); err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}

	return false, nil
}

// LikedVideos returns the videos the user has liked, newest like first, each
// with its owner expanded.
func (r *PostgresLikeRepository) LikedVideos(ctx context.Context, userID string, page, limit int) ([]models.Video, int64, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT `+videoJoinColumns+`
        FROM likes l
        JOIN videos v ON v.id = l.video_id
        JOIN users u ON u.id = v.owner_id
        WHERE l.liked_by = $1 AND l.video_id IS NOT NULL
        ORDER BY l.created_at DESC
        LIMIT $2 OFFSET $3
    `, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("query liked videos: %w", err)
	}
	defer rows.Close()

	videos, err := scanVideos(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := conn.QueryRow(ctx, `
        SELECT COUNT(*) FROM likes WHERE liked_by = $1 AND video_id IS NOT NULL
    `, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count liked videos: %w", err)
	}

	return videos, total, nil
}

func likeTargetColumn(like models.Like) (string, string, error) {
	switch {
	case like.VideoID != "" && like.CommentID == "" && like.TweetID == "":
		return "video_id", like.VideoID, nil
	case like.CommentID != "" && like.VideoID == "" && like.TweetID == "":
		return "comment_id", like.CommentID, nil
	case like.TweetID != "" && like.VideoID == "" && like.CommentID == "":
		return "tweet_id", like.TweetID, nil
	default:
		return "", "", errors.New("like must reference exactly one target")
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
