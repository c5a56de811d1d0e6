package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ErlanBelekov/rich-pastebin/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const draftColumns = `id, user_id, title, content, is_public, folder_id, created_at, updated_at`

type DraftRepository struct {
	pool *pgxpool.Pool
}

func NewDraftRepository(pool *pgxpool.Pool) *DraftRepository {
	return &DraftRepository{pool: pool}
}

func (r *DraftRepository) Upsert(ctx context.Context, d *domain.Draft) (*domain.Draft, error) {
	if d.ID == "" {
		row := r.pool.QueryRow(ctx, `
			INSERT INTO drafts (user_id, title, content, is_public, folder_id)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+draftColumns,
			d.UserID, d.Title, d.Content, d.IsPublic, d.FolderID,
		)
		return scanDraft(row)
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE drafts
		SET    title      = $3,
		       content    = $4,
		       is_public  = $5,
		       folder_id  = $6,
		       updated_at = NOW()
		WHERE  id = $1 AND user_id = $2
		RETURNING `+draftColumns,
		d.ID, d.UserID, d.Title, d.Content, d.IsPublic, d.FolderID,
	)
	return scanDraft(row)
}

func (r *DraftRepository) List(ctx context.Context, userID string) ([]*domain.Draft, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+draftColumns+` FROM drafts WHERE user_id = $1 ORDER BY updated_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	defer rows.Close()

	var drafts []*domain.Draft
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, d)
	}
	return drafts, rows.Err()
}

func (r *DraftRepository) Delete(ctx context.Context, id, userID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM drafts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDraftNotFound
	}
	return nil
}

func scanDraft(row rowScanner) (*domain.Draft, error) {
	var d domain.Draft
	err := row.Scan(&d.ID, &d.UserID, &d.Title, &d.Content, &d.IsPublic, &d.FolderID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDraftNotFound
		}
		return nil, fmt.Errorf("scan draft: %w", err)
	}
	return &d, nil
}
