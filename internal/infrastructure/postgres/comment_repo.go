package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ErlanBelekov/rich-pastebin/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CommentRepository struct {
	pool *pgxpool.Pool
}

func NewCommentRepository(pool *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{pool: pool}
}

const commentSelect = `
	SELECT c.id, c.paste_id, c.user_id, COALESCE(p.username, ''), p.avatar_url, c.content, c.created_at
	FROM comments c
	LEFT JOIN profiles p ON p.user_id = c.user_id`

func (r *CommentRepository) ListByPaste(ctx context.Context, pasteID string) ([]*domain.Comment, error) {
	rows, err := r.pool.Query(ctx, commentSelect+` WHERE c.paste_id = $1 ORDER BY c.created_at ASC`, pasteID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []*domain.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *CommentRepository) Create(ctx context.Context, pasteID, userID, content string) (*domain.Comment, error) {
	var id string
	err := r.pool.QueryRow(ctx,
		`INSERT INTO comments (paste_id, user_id, content) VALUES ($1, $2, $3) RETURNING id`,
		pasteID, userID, content,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *CommentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	return scanComment(r.pool.QueryRow(ctx, commentSelect+` WHERE c.id = $1`, id))
}

func (r *CommentRepository) Delete(ctx context.Context, id, userID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCommentNotFound
	}
	return nil
}

func scanComment(row rowScanner) (*domain.Comment, error) {
	var c domain.Comment
	err := row.Scan(&c.ID, &c.PasteID, &c.UserID, &c.Username, &c.AvatarURL, &c.Content, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCommentNotFound
		}
		return nil, fmt.Errorf("scan comment: %w", err)
	}
	return &c, nil
}
