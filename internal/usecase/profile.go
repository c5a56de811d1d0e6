package usecase

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/ErlanBelekov/rich-pastebin/internal/domain"
	"github.com/ErlanBelekov/rich-pastebin/internal/quota"
	"github.com/ErlanBelekov/rich-pastebin/internal/repository"
	"github.com/ErlanBelekov/rich-pastebin/internal/storage"
	"github.com/ErlanBelekov/rich-pastebin/internal/subscription"
	"github.com/google/uuid"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,30}$`)

var avatarExtensions = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

type ProfileUsecase struct {
	profiles repository.ProfileRepository
	follows  repository.FollowRepository
	users    repository.UserRepository
	avatars  storage.ObjectStore // nil disables uploads
	policy   *quota.Policy
	usage    *quota.Aggregator
	now      func() time.Time
}

func NewProfileUsecase(
	profiles repository.ProfileRepository,
	follows repository.FollowRepository,
	users repository.UserRepository,
	avatars storage.ObjectStore,
	policy *quota.Policy,
	usage *quota.Aggregator,
) *ProfileUsecase {
	return &ProfileUsecase{
		profiles: profiles,
		follows:  follows,
		users:    users,
		avatars:  avatars,
		policy:   policy,
		usage:    usage,
		now:      time.Now,
	}
}

// DefaultUsername derives the initial username from the user id.
func DefaultUsername(userID string) string {
	id := strings.ReplaceAll(userID, "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	return "user_" + id
}

// EnsureProfile creates a FREE profile on first sight of userID.
func (u *ProfileUsecase) EnsureProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	p, err := u.profiles.Ensure(ctx, userID, DefaultUsername(userID))
	if err != nil {
		return nil, fmt.Errorf("ensure profile: %w", err)
	}
	return p, nil
}

func (u *ProfileUsecase) GetPublicProfile(ctx context.Context, username string) (*domain.PublicProfile, error) {
	p, err := u.profiles.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}

	followers, following, err := u.follows.Counts(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("count follows: %w", err)
	}

	return &domain.PublicProfile{
		Profile:     *p,
		Followers:   followers,
		Following:   following,
		IsSupporter: subscription.IsEffectiveSupporter(subscription.StatusOf(p), u.now()),
	}, nil
}

func (u *ProfileUsecase) GetSettings(ctx context.Context, userID string) (*domain.Profile, error) {
	p, err := u.profiles.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

type UpdateProfileInput struct {
	UserID   string
	Username *string
	Bio      *string
}

func (u *ProfileUsecase) UpdateSettings(ctx context.Context, input UpdateProfileInput) (*domain.Profile, error) {
	repoInput := repository.UpdateProfileInput{Bio: input.Bio}

	if input.Username != nil {
		name := strings.TrimSpace(*input.Username)
		if !usernamePattern.MatchString(name) {
			return nil, domain.ErrInvalidUsername
		}
		repoInput.Username = &name
	}

	p, err := u.profiles.UpdateSettings(ctx, input.UserID, repoInput)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return p, nil
}

// UploadAvatar stores the image and points the profile at its public URL.
func (u *ProfileUsecase) UploadAvatar(ctx context.Context, userID string, r io.Reader, size int64, contentType string) (string, error) {
	if u.avatars == nil {
		return "", domain.ErrAvatarsDisabled
	}
	ext, ok := avatarExtensions[contentType]
	if !ok {
		return "", domain.ErrInvalidAvatar
	}

	key := fmt.Sprintf("%s/%s.%s", userID, uuid.NewString(), ext)
	url, err := u.avatars.Put(ctx, key, r, size, contentType)
	if err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}

	if err := u.profiles.SetAvatarURL(ctx, userID, url); err != nil {
		return "", fmt.Errorf("save avatar url: %w", err)
	}
	return url, nil
}

func (u *ProfileUsecase) DeleteAccount(ctx context.Context, userID string) error {
	if err := u.users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}

type UsageReport struct {
	Tier   domain.Tier
	Limits quota.Limits
	Usage  quota.Snapshot
}

// Usage is for display. An unreadable snapshot is reported with Known=false
// rather than as an error.
func (u *ProfileUsecase) Usage(ctx context.Context, userID string) UsageReport {
	tier, limits := u.policy.EffectiveLimits(ctx, userID)
	return UsageReport{
		Tier:   tier,
		Limits: limits,
		Usage:  u.usage.DailyUsageStats(ctx, userID),
	}
}
