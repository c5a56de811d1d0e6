package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ErlanBelekov/rich-pastebin/internal/domain"
	"github.com/ErlanBelekov/rich-pastebin/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pasteColumns = `id, user_id, title, content, folder_id, is_public,
	password_hash, expires_at, views, created_at, updated_at`

type PasteRepository struct {
	pool *pgxpool.Pool
}

func NewPasteRepository(pool *pgxpool.Pool) *PasteRepository {
	return &PasteRepository{pool: pool}
}

func (r *PasteRepository) Create(ctx context.Context, p *domain.Paste) (*domain.Paste, error) {
	query := `
		INSERT INTO pastes (user_id, title, content, folder_id, is_public, password_hash, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + pasteColumns

	row := r.pool.QueryRow(ctx, query,
		p.UserID,
		p.Title,
		p.Content,
		p.FolderID,
		p.IsPublic,
		p.PasswordHash,
		p.ExpiresAt,
	)
	return scanPaste(row)
}

func (r *PasteRepository) GetByID(ctx context.Context, id string) (*domain.Paste, error) {
	query := `SELECT ` + pasteColumns + ` FROM pastes WHERE id = $1`
	return scanPaste(r.pool.QueryRow(ctx, query, id))
}

func (r *PasteRepository) Update(ctx context.Context, id, userID string, input repository.UpdatePasteInput) (*domain.Paste, error) {
	args := []any{id, userID}
	set := []string{"updated_at = NOW()"}

	if input.Title != nil {
		args = append(args, *input.Title)
		set = append(set, fmt.Sprintf("title = $%d", len(args)))
	}
	if input.Content != nil {
		args = append(args, *input.Content)
		set = append(set, fmt.Sprintf("content = $%d", len(args)))
	}
	if input.IsPublic != nil {
		args = append(args, *input.IsPublic)
		n := len(args)
		set = append(set,
			fmt.Sprintf("is_public = $%d", n),
			fmt.Sprintf("password_hash = CASE WHEN $%d THEN NULL ELSE password_hash END", n),
		)
	}
	switch {
	case input.ClearFolder:
		set = append(set, "folder_id = NULL")
	case input.FolderID != nil:
		args = append(args, *input.FolderID)
		set = append(set, fmt.Sprintf("folder_id = $%d", len(args)))
	}

	query := fmt.Sprintf(`UPDATE pastes SET %s WHERE id = $1 AND user_id = $2 RETURNING %s`,
		strings.Join(set, ", "), pasteColumns)

	return scanPaste(r.pool.QueryRow(ctx, query, args...))
}

func (r *PasteRepository) Delete(ctx context.Context, id, userID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM pastes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete paste: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPasteNotFound
	}
	return nil
}

func (r *PasteRepository) ListByUser(ctx context.Context, input repository.ListPastesInput) ([]*domain.Paste, error) {
	args := []any{input.UserID}
	where := []string{"user_id = $1"}

	if input.FolderID != nil {
		args = append(args, *input.FolderID)
		where = append(where, fmt.Sprintf("folder_id = $%d", len(args)))
	}
	if input.CursorTime != nil {
		args = append(args, *input.CursorTime, input.CursorID)
		where = append(where, fmt.Sprintf("(created_at, id) < ($%d, $%d)", len(args)-1, len(args)))
	}
	args = append(args, input.Limit)

	query := fmt.Sprintf(`
		SELECT %s
		FROM pastes
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d`,
		pasteColumns, strings.Join(where, " AND "), len(args))

	return r.query(ctx, "list pastes", query, args...)
}

func (r *PasteRepository) SearchByTitle(ctx context.Context, userID, q string, limit int) ([]*domain.Paste, error) {
	query := `
		SELECT ` + pasteColumns + `
		FROM pastes
		WHERE user_id = $1 AND title ILIKE '%' || $2 || '%'
		ORDER BY created_at DESC
		LIMIT $3`

	return r.query(ctx, "search pastes", query, userID, escapeLike(q), limit)
}

func (r *PasteRepository) ListPublicByUser(ctx context.Context, input repository.ListPublicPastesInput) ([]*domain.Paste, int, error) {
	const where = `user_id = $1 AND is_public AND (expires_at IS NULL OR expires_at > NOW())`

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM pastes WHERE `+where, input.UserID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count public pastes: %w", err)
	}

	column := "created_at"
	if input.SortBy == repository.SortByViews {
		column = "views"
	}
	dir := "DESC"
	if input.Ascending {
		dir = "ASC"
	}

	// column and dir come from the fixed sets above, never from input.
	query := fmt.Sprintf(`
		SELECT %s
		FROM pastes
		WHERE %s
		ORDER BY %s %s, id %s
		LIMIT $2 OFFSET $3`,
		pasteColumns, where, column, dir, dir)

	pastes, err := r.query(ctx, "list public pastes", query, input.UserID, input.Limit, input.Offset)
	if err != nil {
		return nil, 0, err
	}
	return pastes, total, nil
}

func (r *PasteRepository) IncrementViews(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE pastes SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPasteNotFound
	}
	return nil
}

func (r *PasteRepository) CountCreatedSince(ctx context.Context, userID string, since time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM pastes WHERE user_id = $1 AND created_at >= $2`,
		userID, since,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count pastes: %w", err)
	}
	return n, nil
}

func (r *PasteRepository) TotalContentBytes(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(OCTET_LENGTH(content)), 0)::BIGINT FROM pastes WHERE user_id = $1`,
		userID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("sum paste bytes: %w", err)
	}
	return n, nil
}

func (r *PasteRepository) query(ctx context.Context, op, query string, args ...any) ([]*domain.Paste, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var pastes []*domain.Paste
	for rows.Next() {
		p, err := scanPaste(rows)
		if err != nil {
			return nil, err
		}
		pastes = append(pastes, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return pastes, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func scanPaste(row rowScanner) (*domain.Paste, error) {
	var p domain.Paste
	err := row.Scan(
		&p.ID, &p.UserID, &p.Title, &p.Content, &p.FolderID, &p.IsPublic,
		&p.PasswordHash, &p.ExpiresAt, &p.Views, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPasteNotFound
		}
		return nil, fmt.Errorf("scan paste: %w", err)
	}
	return &p, nil
}
