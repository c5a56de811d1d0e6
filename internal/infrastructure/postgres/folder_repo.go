package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ErlanBelekov/rich-pastebin/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FolderRepository struct {
	pool *pgxpool.Pool
}

func NewFolderRepository(pool *pgxpool.Pool) *FolderRepository {
	return &FolderRepository{pool: pool}
}

func (r *FolderRepository) Create(ctx context.Context, userID, name string) (*domain.Folder, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO folders (user_id, name) VALUES ($1, $2) RETURNING id, user_id, name, created_at`,
		userID, name,
	)
	f, err := scanFolder(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrFolderNameConflict
		}
		return nil, err
	}
	return f, nil
}

func (r *FolderRepository) GetByID(ctx context.Context, id, userID string) (*domain.Folder, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, user_id, name, created_at FROM folders WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	return scanFolder(row)
}

func (r *FolderRepository) List(ctx context.Context, userID string) ([]*domain.Folder, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, name, created_at FROM folders WHERE user_id = $1 ORDER BY name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	var folders []*domain.Folder
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, err
		}
		folders = append(folders, f)
	}
	return folders, rows.Err()
}

func (r *FolderRepository) Rename(ctx context.Context, id, userID, name string) (*domain.Folder, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE folders SET name = $3 WHERE id = $1 AND user_id = $2 RETURNING id, user_id, name, created_at`,
		id, userID, name,
	)
	f, err := scanFolder(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrFolderNameConflict
		}
		return nil, err
	}
	return f, nil
}

func (r *FolderRepository) Delete(ctx context.Context, id, userID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	// Rollback after Commit is a no-op.
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`UPDATE pastes SET folder_id = NULL, updated_at = NOW() WHERE folder_id = $1 AND user_id = $2`,
		id, userID); err != nil {
		return fmt.Errorf("detach pastes: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE drafts SET folder_id = NULL WHERE folder_id = $1 AND user_id = $2`,
		id, userID); err != nil {
		return fmt.Errorf("detach drafts: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM folders WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrFolderNotFound
	}

	return tx.Commit(ctx)
}

func scanFolder(row rowScanner) (*domain.Folder, error) {
	var f domain.Folder
	if err := row.Scan(&f.ID, &f.UserID, &f.Name, &f.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFolderNotFound
		}
		return nil, fmt.Errorf("scan folder: %w", err)
	}
	return &f, nil
}
