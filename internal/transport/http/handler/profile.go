package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ErlanBelekov/rich-pastebin/internal/domain"
	"github.com/ErlanBelekov/rich-pastebin/internal/usecase"
	"github.com/gin-gonic/gin"
)

const maxAvatarBytes = 2 << 20

type ProfileHandler struct {
	uc     *usecase.ProfileUsecase
	logger *slog.Logger
}

func NewProfileHandler(uc *usecase.ProfileUsecase, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{uc: uc, logger: logger.With("component", "profile_handler")}
}

type updateProfileRequest struct {
	Username *string `json:"username"`
	Bio      *string `json:"bio" binding:"omitempty,max=500"`
}

type profileResponse struct {
	UserID                string      `json:"user_id"`
	Username              string      `json:"username"`
	Bio                   string      `json:"bio"`
	AvatarURL             *string     `json:"avatar_url"`
	SubscriptionTier      domain.Tier `json:"subscription_tier"`
	SubscriptionExpiresAt *time.Time  `json:"subscription_expires_at"`
	CreatedAt             time.Time   `json:"created_at"`
}

func toProfileResponse(p *domain.Profile) profileResponse {
	return profileResponse{
		UserID:                p.UserID,
		Username:              p.Username,
		Bio:                   p.Bio,
		AvatarURL:             p.AvatarURL,
		SubscriptionTier:      p.SubscriptionTier,
		SubscriptionExpiresAt: p.SubscriptionExpiresAt,
		CreatedAt:             p.CreatedAt,
	}
}

// GET /users/:username
func (h *ProfileHandler) GetPublic(ctx *gin.Context) {
	p, err := h.uc.GetPublicProfile(ctx.Request.Context(), ctx.Param("username"))
	if err != nil {
		respondError(ctx, h.logger, "get public profile", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"user_id":      p.UserID,
		"username":     p.Username,
		"bio":          p.Bio,
		"avatar_url":   p.AvatarURL,
		"followers":    p.Followers,
		"following":    p.Following,
		"is_supporter": p.IsSupporter,
		"created_at":   p.CreatedAt,
	})
}

// GET /me/profile
func (h *ProfileHandler) GetSettings(ctx *gin.Context) {
	p, err := h.uc.GetSettings(ctx.Request.Context(), ctx.GetString("userID"))
	if err != nil {
		respondError(ctx, h.logger, "get profile settings", err)
		return
	}
	ctx.JSON(http.StatusOK, toProfileResponse(p))
}

// PATCH /me/profile
func (h *ProfileHandler) UpdateSettings(ctx *gin.Context) {
	var req updateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	p, err := h.uc.UpdateSettings(ctx.Request.Context(), usecase.UpdateProfileInput{
		UserID:   ctx.GetString("userID"),
		Username: req.Username,
		Bio:      req.Bio,
	})
	if err != nil {
		respondError(ctx, h.logger, "update profile settings", err)
		return
	}
	ctx.JSON(http.StatusOK, toProfileResponse(p))
}

// POST /me/avatar (multipart form field "avatar")
func (h *ProfileHandler) UploadAvatar(ctx *gin.Context) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxAvatarBytes+4096)

	fh, err := ctx.FormFile("avatar")
	if err != nil {
		badRequest(ctx, err)
		return
	}
	if fh.Size > maxAvatarBytes {
		ctx.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Avatar must be at most 2MB"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		respondError(ctx, h.logger, "open avatar upload", err)
		return
	}
	defer f.Close()

	url, err := h.uc.UploadAvatar(ctx.Request.Context(), ctx.GetString("userID"), f, fh.Size, fh.Header.Get("Content-Type"))
	if err != nil {
		respondError(ctx, h.logger, "upload avatar", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"avatar_url": url})
}

// DELETE /me
func (h *ProfileHandler) DeleteAccount(ctx *gin.Context) {
	if err := h.uc.DeleteAccount(ctx.Request.Context(), ctx.GetString("userID")); err != nil {
		respondError(ctx, h.logger, "delete account", err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// GET /me/usage
// "known" is false when usage could not be read; the zero counts are then
// placeholders, not real values.
func (h *ProfileHandler) Usage(ctx *gin.Context) {
	r := h.uc.Usage(ctx.Request.Context(), ctx.GetString("userID"))
	ctx.JSON(http.StatusOK, gin.H{
		"tier":                r.Tier,
		"known":               r.Usage.Known,
		"daily_paste_count":   r.Usage.DailyPasteCount,
		"total_storage_bytes": r.Usage.TotalStorageBytes,
		"max_paste_kb":        r.Limits.MaxPasteKB(),
		"max_daily_pastes":    r.Limits.MaxDailyPastes,
		"max_total_storage":   r.Limits.MaxTotalStorage(),
	})
}
