package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ErlanBelekov/rich-pastebin/internal/domain"
	"github.com/ErlanBelekov/rich-pastebin/internal/events"
	"github.com/ErlanBelekov/rich-pastebin/internal/repository"
)

const maxCommentLength = 5000

type SocialUsecase struct {
	comments  repository.CommentRepository
	likes     repository.LikeRepository
	favorites repository.FavoriteRepository
	follows   repository.FollowRepository
	pastes    repository.PasteRepository
	profiles  repository.ProfileRepository
	events    events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

type SocialRepos struct {
	Comments  repository.CommentRepository
	Likes     repository.LikeRepository
	Favorites repository.FavoriteRepository
	Follows   repository.FollowRepository
	Pastes    repository.PasteRepository
	Profiles  repository.ProfileRepository
}

func NewSocialUsecase(repos SocialRepos, publisher events.Publisher, logger *slog.Logger) *SocialUsecase {
	return &SocialUsecase{
		comments:  repos.Comments,
		likes:     repos.Likes,
		favorites: repos.Favorites,
		follows:   repos.Follows,
		pastes:    repos.Pastes,
		profiles:  repos.Profiles,
		events:    publisher,
		logger:    logger.With("component", "social_usecase"),
		now:       time.Now,
	}
}

// publish is best effort: the social action has already been stored.
func (u *SocialUsecase) publish(ctx context.Context, event domain.SocialEvent) {
	if event.RecipientID == "" || event.RecipientID == event.ActorID {
		return
	}
	event.OccurredAt = u.now()
	if err := u.events.Publish(ctx, event); err != nil {
		u.logger.WarnContext(ctx, "publish social event", "type", event.Type, "error", err)
	}
}

func ownerOf(p *domain.Paste) string {
	if p.UserID == nil {
		return ""
	}
	return *p.UserID
}

// ---- comments ----

func (u *SocialUsecase) ListComments(ctx context.Context, pasteID string) ([]*domain.Comment, error) {
	comments, err := u.comments.ListByPaste(ctx, pasteID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

func (u *SocialUsecase) AddComment(ctx context.Context, pasteID, userID, content string) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" || len(content) > maxCommentLength {
		return nil, domain.ErrInvalidComment
	}

	paste, err := u.pastes.GetByID(ctx, pasteID)
	if err != nil {
		return nil, fmt.Errorf("get paste: %w", err)
	}

	c, err := u.comments.Create(ctx, pasteID, userID, content)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	u.publish(ctx, domain.SocialEvent{
		Type:        domain.NotificationComment,
		ActorID:     userID,
		RecipientID: ownerOf(paste),
		PasteID:     &paste.ID,
		CommentID:   &c.ID,
	})
	return c, nil
}

func (u *SocialUsecase) DeleteComment(ctx context.Context, id, userID string) error {
	if err := u.comments.Delete(ctx, id, userID); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

// ---- likes ----

type LikeState struct {
	Liked bool
	Count int
}

func validTarget(t domain.LikeTarget) bool {
	return (t.PasteID == "") != (t.CommentID == "")
}

func (u *SocialUsecase) ToggleLike(ctx context.Context, userID string, target domain.LikeTarget) (LikeState, error) {
	if !validTarget(target) {
		return LikeState{}, domain.ErrLikeTarget
	}

	event := domain.SocialEvent{Type: domain.NotificationLike, ActorID: userID}
	if target.CommentID != "" {
		c, err := u.comments.GetByID(ctx, target.CommentID)
		if err != nil {
			return LikeState{}, fmt.Errorf("get comment: %w", err)
		}
		event.RecipientID = c.UserID
		event.PasteID = &c.PasteID
		event.CommentID = &c.ID
	} else {
		p, err := u.pastes.GetByID(ctx, target.PasteID)
		if err != nil {
			return LikeState{}, fmt.Errorf("get paste: %w", err)
		}
		event.RecipientID = ownerOf(p)
		event.PasteID = &p.ID
	}

	liked, err := u.likes.Toggle(ctx, userID, target)
	if err != nil {
		return LikeState{}, fmt.Errorf("toggle like: %w", err)
	}
	n, err := u.likes.Count(ctx, target)
	if err != nil {
		return LikeState{}, fmt.Errorf("count likes: %w", err)
	}

	if liked {
		u.publish(ctx, event)
	}
	return LikeState{Liked: liked, Count: n}, nil
}

// LikeStatus reports the count and, for a signed-in viewer, whether they liked it.
func (u *SocialUsecase) LikeStatus(ctx context.Context, viewerID string, target domain.LikeTarget) (LikeState, error) {
	if !validTarget(target) {
		return LikeState{}, domain.ErrLikeTarget
	}
	n, err := u.likes.Count(ctx, target)
	if err != nil {
		return LikeState{}, fmt.Errorf("count likes: %w", err)
	}
	state := LikeState{Count: n}
	if viewerID != "" {
		if state.Liked, err = u.likes.IsLiked(ctx, viewerID, target); err != nil {
			return LikeState{}, fmt.Errorf("check like: %w", err)
		}
	}
	return state, nil
}

// ---- favorites ----

type FavoriteState struct {
	Favorited bool
	Count     int
}

func (u *SocialUsecase) ToggleFavorite(ctx context.Context, userID, pasteID string) (FavoriteState, error) {
	p, err := u.pastes.GetByID(ctx, pasteID)
	if err != nil {
		return FavoriteState{}, fmt.Errorf("get paste: %w", err)
	}

	on, err := u.favorites.Toggle(ctx, userID, pasteID)
	if err != nil {
		return FavoriteState{}, fmt.Errorf("toggle favorite: %w", err)
	}
	n, err := u.favorites.Count(ctx, pasteID)
	if err != nil {
		return FavoriteState{}, fmt.Errorf("count favorites: %w", err)
	}

	if on {
		u.publish(ctx, domain.SocialEvent{
			Type:        domain.NotificationFavorite,
			ActorID:     userID,
			RecipientID: ownerOf(p),
			PasteID:     &p.ID,
		})
	}
	return FavoriteState{Favorited: on, Count: n}, nil
}

func (u *SocialUsecase) FavoriteStatus(ctx context.Context, viewerID, pasteID string) (FavoriteState, error) {
	n, err := u.favorites.Count(ctx, pasteID)
	if err != nil {
		return FavoriteState{}, fmt.Errorf("count favorites: %w", err)
	}
	state := FavoriteState{Count: n}
	if viewerID != "" {
		if state.Favorited, err = u.favorites.IsFavorited(ctx, viewerID, pasteID); err != nil {
			return FavoriteState{}, fmt.Errorf("check favorite: %w", err)
		}
	}
	return state, nil
}

func (u *SocialUsecase) ListFavorites(ctx context.Context, userID string) ([]*domain.FavoritePaste, error) {
	favs, err := u.favorites.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return favs, nil
}

// ---- follows ----

type FollowState struct {
	Following      bool
	Followers      int
	FollowingCount int
}

func (u *SocialUsecase) ToggleFollow(ctx context.Context, followerID, username string) (FollowState, error) {
	target, err := u.profiles.FindByUsername(ctx, username)
	if err != nil {
		return FollowState{}, fmt.Errorf("find profile: %w", err)
	}
	if target.UserID == followerID {
		return FollowState{}, domain.ErrCannotFollowSelf
	}

	on, err := u.follows.Toggle(ctx, followerID, target.UserID)
	if err != nil {
		return FollowState{}, fmt.Errorf("toggle follow: %w", err)
	}
	followers, following, err := u.follows.Counts(ctx, target.UserID)
	if err != nil {
		return FollowState{}, fmt.Errorf("count follows: %w", err)
	}

	if on {
		u.publish(ctx, domain.SocialEvent{
			Type:        domain.NotificationFollow,
			ActorID:     followerID,
			RecipientID: target.UserID,
		})
	}
	return FollowState{Following: on, Followers: followers, FollowingCount: following}, nil
}

func (u *SocialUsecase) FollowStatus(ctx context.Context, viewerID, username string) (FollowState, error) {
	target, err := u.profiles.FindByUsername(ctx, username)
	if err != nil {
		return FollowState{}, fmt.Errorf("find profile: %w", err)
	}
	followers, following, err := u.follows.Counts(ctx, target.UserID)
	if err != nil {
		return FollowState{}, fmt.Errorf("count follows: %w", err)
	}

	state := FollowState{Followers: followers, FollowingCount: following}
	if viewerID != "" && viewerID != target.UserID {
		if state.Following, err = u.follows.IsFollowing(ctx, viewerID, target.UserID); err != nil {
			return FollowState{}, fmt.Errorf("check follow: %w", err)
		}
	}
	return state, nil
}
