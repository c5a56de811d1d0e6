package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ErlanBelekov/rich-pastebin/internal/domain"
	"github.com/ErlanBelekov/rich-pastebin/internal/usecase"
	"github.com/gin-gonic/gin"
)

type SocialHandler struct {
	uc     *usecase.SocialUsecase
	logger *slog.Logger
}

func NewSocialHandler(uc *usecase.SocialUsecase, logger *slog.Logger) *SocialHandler {
	return &SocialHandler{uc: uc, logger: logger.With("component", "social_handler")}
}

type commentRequest struct {
	Content string `json:"content" binding:"required"`
}

type commentResponse struct {
	ID        string    `json:"id"`
	PasteID   string    `json:"paste_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	AvatarURL *string   `json:"avatar_url"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func toCommentResponse(c *domain.Comment) commentResponse {
	return commentResponse{
		ID:        c.ID,
		PasteID:   c.PasteID,
		UserID:    c.UserID,
		Username:  c.Username,
		AvatarURL: c.AvatarURL,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
	}
}

// GET /pastes/:id/comments
func (h *SocialHandler) ListComments(ctx *gin.Context) {
	comments, err := h.uc.ListComments(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, h.logger, "list comments", err)
		return
	}
	items := make([]commentResponse, len(comments))
	for i, c := range comments {
		items[i] = toCommentResponse(c)
	}
	ctx.JSON(http.StatusOK, gin.H{"comments": items})
}

// POST /pastes/:id/comments
func (h *SocialHandler) AddComment(ctx *gin.Context) {
	var req commentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	c, err := h.uc.AddComment(ctx.Request.Context(), ctx.Param("id"), ctx.GetString("userID"), req.Content)
	if err != nil {
		respondError(ctx, h.logger, "add comment", err)
		return
	}
	ctx.JSON(http.StatusCreated, toCommentResponse(c))
}

// DELETE /comments/:id
func (h *SocialHandler) DeleteComment(ctx *gin.Context) {
	if err := h.uc.DeleteComment(ctx.Request.Context(), ctx.Param("id"), ctx.GetString("userID")); err != nil {
		respondError(ctx, h.logger, "delete comment", err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

type likeRequest struct {
	PasteID   string `json:"paste_id"   form:"paste_id"   binding:"omitempty,uuid"`
	CommentID string `json:"comment_id" form:"comment_id" binding:"omitempty,uuid"`
}

func (r likeRequest) target() domain.LikeTarget {
	return domain.LikeTarget{PasteID: r.PasteID, CommentID: r.CommentID}
}

// POST /likes toggles the caller's like on a paste or a comment.
func (h *SocialHandler) ToggleLike(ctx *gin.Context) {
	var req likeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	state, err := h.uc.ToggleLike(ctx.Request.Context(), ctx.GetString("userID"), req.target())
	if err != nil {
		respondError(ctx, h.logger, "toggle like", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"liked": state.Liked, "count": state.Count})
}

// GET /likes?paste_id=|comment_id=
func (h *SocialHandler) LikeStatus(ctx *gin.Context) {
	var req likeRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	state, err := h.uc.LikeStatus(ctx.Request.Context(), ctx.GetString("userID"), req.target())
	if err != nil {
		respondError(ctx, h.logger, "like status", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"liked": state.Liked, "count": state.Count})
}

// POST /pastes/:id/favorite
func (h *SocialHandler) ToggleFavorite(ctx *gin.Context) {
	state, err := h.uc.ToggleFavorite(ctx.Request.Context(), ctx.GetString("userID"), ctx.Param("id"))
	if err != nil {
		respondError(ctx, h.logger, "toggle favorite", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"favorited": state.Favorited, "count": state.Count})
}

// GET /pastes/:id/favorite
func (h *SocialHandler) FavoriteStatus(ctx *gin.Context) {
	state, err := h.uc.FavoriteStatus(ctx.Request.Context(), ctx.GetString("userID"), ctx.Param("id"))
	if err != nil {
		respondError(ctx, h.logger, "favorite status", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"favorited": state.Favorited, "count": state.Count})
}

type favoriteResponse struct {
	PasteID     string    `json:"paste_id"`
	Title       string    `json:"title"`
	CreatedAt   time.Time `json:"created_at"`
	FavoritedAt time.Time `json:"favorited_at"`
}

// GET /me/favorites
func (h *SocialHandler) ListFavorites(ctx *gin.Context) {
	favs, err := h.uc.ListFavorites(ctx.Request.Context(), ctx.GetString("userID"))
	if err != nil {
		respondError(ctx, h.logger, "list favorites", err)
		return
	}
	items := make([]favoriteResponse, len(favs))
	for i, f := range favs {
		items[i] = favoriteResponse{PasteID: f.PasteID, Title: f.Title, CreatedAt: f.CreatedAt, FavoritedAt: f.FavoritedAt}
	}
	ctx.JSON(http.StatusOK, gin.H{"favorites": items})
}

func followJSON(s usecase.FollowState) gin.H {
	return gin.H{"following": s.Following, "followers": s.Followers, "following_count": s.FollowingCount}
}

// POST /users/:username/follow
func (h *SocialHandler) ToggleFollow(ctx *gin.Context) {
	state, err := h.uc.ToggleFollow(ctx.Request.Context(), ctx.GetString("userID"), ctx.Param("username"))
	if err != nil {
		respondError(ctx, h.logger, "toggle follow", err)
		return
	}
	ctx.JSON(http.StatusOK, followJSON(state))
}

// GET /users/:username/follow
func (h *SocialHandler) FollowStatus(ctx *gin.Context) {
	state, err := h.uc.FollowStatus(ctx.Request.Context(), ctx.GetString("userID"), ctx.Param("username"))
	if err != nil {
		respondError(ctx, h.logger, "follow status", err)
		return
	}
	ctx.JSON(http.StatusOK, followJSON(state))
}
