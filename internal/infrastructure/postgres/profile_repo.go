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

const profileColumns = `user_id, username, bio, avatar_url, subscription_tier,
	subscription_expires_at, stripe_customer_id, stripe_subscription_id,
	created_at, updated_at`

type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

func (r *ProfileRepository) Ensure(ctx context.Context, userID, username string) (*domain.Profile, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO profiles (user_id, username) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, username,
	)
	if err != nil {
		return nil, fmt.Errorf("ensure profile: %w", err)
	}
	return r.FindByUserID(ctx, userID)
}

func (r *ProfileRepository) FindByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`
	return scanProfile(r.pool.QueryRow(ctx, query, userID))
}

func (r *ProfileRepository) FindByUsername(ctx context.Context, username string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE LOWER(username) = LOWER($1)`
	return scanProfile(r.pool.QueryRow(ctx, query, username))
}

func (r *ProfileRepository) UpdateSettings(ctx context.Context, userID string, input repository.UpdateProfileInput) (*domain.Profile, error) {
	args := []any{userID}
	set := []string{"updated_at = NOW()"}

	if input.Username != nil {
		args = append(args, *input.Username)
		set = append(set, fmt.Sprintf("username = $%d", len(args)))
	}
	if input.Bio != nil {
		args = append(args, *input.Bio)
		set = append(set, fmt.Sprintf("bio = $%d", len(args)))
	}

	query := fmt.Sprintf(`UPDATE profiles SET %s WHERE user_id = $1 RETURNING %s`,
		strings.Join(set, ", "), profileColumns)

	p, err := scanProfile(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrUsernameTaken
		}
		return nil, err
	}
	return p, nil
}

func (r *ProfileRepository) SetAvatarURL(ctx context.Context, userID, url string) error {
	return r.exec(ctx, "set avatar url",
		`UPDATE profiles SET avatar_url = $2, updated_at = NOW() WHERE user_id = $1`, userID, url)
}

func (r *ProfileRepository) SetStripeCustomerID(ctx context.Context, userID, customerID string) error {
	return r.exec(ctx, "set stripe customer",
		`UPDATE profiles SET stripe_customer_id = $2, updated_at = NOW() WHERE user_id = $1`, userID, customerID)
}

func (r *ProfileRepository) UpdateSubscription(ctx context.Context, userID string, update domain.SubscriptionUpdate) error {
	return r.exec(ctx, "update subscription", `
		UPDATE profiles
		SET    subscription_tier       = $2,
		       subscription_expires_at = $3,
		       stripe_subscription_id  = COALESCE($4, stripe_subscription_id),
		       updated_at              = NOW()
		WHERE  user_id = $1`,
		userID, update.Tier, update.ExpiresAt, update.SubscriptionID)
}

func (r *ProfileRepository) DowngradeExpired(ctx context.Context, now time.Time) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE profiles
		SET    subscription_tier = 'FREE',
		       updated_at        = NOW()
		WHERE  subscription_tier = 'SUPPORTER'
		  AND  subscription_expires_at IS NOT NULL
		  AND  subscription_expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("downgrade expired: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *ProfileRepository) exec(ctx context.Context, op, query string, args ...any) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

func scanProfile(row rowScanner) (*domain.Profile, error) {
	var p domain.Profile
	err := row.Scan(
		&p.UserID, &p.Username, &p.Bio, &p.AvatarURL, &p.SubscriptionTier,
		&p.SubscriptionExpiresAt, &p.StripeCustomerID, &p.StripeSubscriptionID,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}
	return &p, nil
}
