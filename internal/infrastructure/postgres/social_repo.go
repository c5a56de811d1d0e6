package postgres

import (
	"context"
	"fmt"

	"github.com/ErlanBelekov/rich-pastebin/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// toggle deletes the row matched by del; if there was none it runs ins.
// It reports whether the row exists afterwards.
func toggle(ctx context.Context, pool *pgxpool.Pool, del, ins string, args ...any) (bool, error) {
	tag, err := pool.Exec(ctx, del, args...)
	if err != nil {
		return false, fmt.Errorf("toggle delete: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}
	if _, err := pool.Exec(ctx, ins, args...); err != nil {
		return false, fmt.Errorf("toggle insert: %w", err)
	}
	return true, nil
}

func count(ctx context.Context, pool *pgxpool.Pool, query string, args ...any) (int, error) {
	var n int
	if err := pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

func exists(ctx context.Context, pool *pgxpool.Pool, query string, args ...any) (bool, error) {
	var ok bool
	if err := pool.QueryRow(ctx, `SELECT EXISTS (`+query+`)`, args...).Scan(&ok); err != nil {
		return false, fmt.Errorf("exists: %w", err)
	}
	return ok, nil
}

type LikeRepository struct {
	pool *pgxpool.Pool
}

func NewLikeRepository(pool *pgxpool.Pool) *LikeRepository {
	return &LikeRepository{pool: pool}
}

// likeColumn picks the target column; callers validate that exactly one id is set.
func likeColumn(t domain.LikeTarget) (string, string) {
	if t.CommentID != "" {
		return "comment_id", t.CommentID
	}
	return "paste_id", t.PasteID
}

func (r *LikeRepository) Toggle(ctx context.Context, userID string, target domain.LikeTarget) (bool, error) {
	col, id := likeColumn(target)
	return toggle(ctx, r.pool,
		fmt.Sprintf(`DELETE FROM likes WHERE user_id = $1 AND %s = $2`, col),
		fmt.Sprintf(`INSERT INTO likes (user_id, %s) VALUES ($1, $2) ON CONFLICT DO NOTHING`, col),
		userID, id,
	)
}

func (r *LikeRepository) Count(ctx context.Context, target domain.LikeTarget) (int, error) {
	col, id := likeColumn(target)
	return count(ctx, r.pool, fmt.Sprintf(`SELECT COUNT(*) FROM likes WHERE %s = $1`, col), id)
}

func (r *LikeRepository) IsLiked(ctx context.Context, userID string, target domain.LikeTarget) (bool, error) {
	col, id := likeColumn(target)
	return exists(ctx, r.pool, fmt.Sprintf(`SELECT 1 FROM likes WHERE user_id = $1 AND %s = $2`, col), userID, id)
}

type FavoriteRepository struct {
	pool *pgxpool.Pool
}

func NewFavoriteRepository(pool *pgxpool.Pool) *FavoriteRepository {
	return &FavoriteRepository{pool: pool}
}

func (r *FavoriteRepository) Toggle(ctx context.Context, userID, pasteID string) (bool, error) {
	return toggle(ctx, r.pool,
		`DELETE FROM favorites WHERE user_id = $1 AND paste_id = $2`,
		`INSERT INTO favorites (user_id, paste_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, pasteID,
	)
}

func (r *FavoriteRepository) Count(ctx context.Context, pasteID string) (int, error) {
	return count(ctx, r.pool, `SELECT COUNT(*) FROM favorites WHERE paste_id = $1`, pasteID)
}

func (r *FavoriteRepository) IsFavorited(ctx context.Context, userID, pasteID string) (bool, error) {
	return exists(ctx, r.pool, `SELECT 1 FROM favorites WHERE user_id = $1 AND paste_id = $2`, userID, pasteID)
}

func (r *FavoriteRepository) ListByUser(ctx context.Context, userID string) ([]*domain.FavoritePaste, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.title, p.created_at, f.created_at
		FROM favorites f
		JOIN pastes p ON p.id = f.paste_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	var favs []*domain.FavoritePaste
	for rows.Next() {
		var f domain.FavoritePaste
		if err := rows.Scan(&f.PasteID, &f.Title, &f.CreatedAt, &f.FavoritedAt); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		favs = append(favs, &f)
	}
	return favs, rows.Err()
}

type FollowRepository struct {
	pool *pgxpool.Pool
}

func NewFollowRepository(pool *pgxpool.Pool) *FollowRepository {
	return &FollowRepository{pool: pool}
}

func (r *FollowRepository) Toggle(ctx context.Context, followerID, followingID string) (bool, error) {
	return toggle(ctx, r.pool,
		`DELETE FROM follows WHERE follower_id = $1 AND following_id = $2`,
		`INSERT INTO follows (follower_id, following_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		followerID, followingID,
	)
}

func (r *FollowRepository) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	return exists(ctx, r.pool,
		`SELECT 1 FROM follows WHERE follower_id = $1 AND following_id = $2`, followerID, followingID)
}

func (r *FollowRepository) Counts(ctx context.Context, userID string) (followers, following int, err error) {
	err = r.pool.QueryRow(ctx, `
		SELECT (SELECT COUNT(*) FROM follows WHERE following_id = $1),
		       (SELECT COUNT(*) FROM follows WHERE follower_id = $1)`, userID,
	).Scan(&followers, &following)
	if err != nil {
		return 0, 0, fmt.Errorf("count follows: %w", err)
	}
	return followers, following, nil
}
