package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ErlanBelekov/rich-pastebin/internal/domain"
	"github.com/ErlanBelekov/rich-pastebin/internal/usecase"
	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	uc     *usecase.NotificationUsecase
	logger *slog.Logger
}

func NewNotificationHandler(uc *usecase.NotificationUsecase, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{uc: uc, logger: logger.With("component", "notification_handler")}
}

type notificationResponse struct {
	ID            string                  `json:"id"`
	Type          domain.NotificationType `json:"type"`
	ActorID       string                  `json:"actor_id"`
	ActorUsername string                  `json:"actor_username"`
	PasteID       *string                 `json:"paste_id"`
	CommentID     *string                 `json:"comment_id"`
	IsRead        bool                    `json:"is_read"`
	CreatedAt     time.Time               `json:"created_at"`
}

// GET /notifications?limit=
func (h *NotificationHandler) List(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.Query("limit"))

	items, err := h.uc.ListNotifications(ctx.Request.Context(), ctx.GetString("userID"), limit)
	if err != nil {
		respondError(ctx, h.logger, "list notifications", err)
		return
	}

	out := make([]notificationResponse, len(items))
	for i, n := range items {
		out[i] = notificationResponse{
			ID:            n.ID,
			Type:          n.Type,
			ActorID:       n.ActorID,
			ActorUsername: n.ActorUsername,
			PasteID:       n.PasteID,
			CommentID:     n.CommentID,
			IsRead:        n.IsRead,
			CreatedAt:     n.CreatedAt,
		}
	}
	ctx.JSON(http.StatusOK, gin.H{"notifications": out})
}

// GET /notifications/unread-count
func (h *NotificationHandler) UnreadCount(ctx *gin.Context) {
	n, err := h.uc.UnreadCount(ctx.Request.Context(), ctx.GetString("userID"))
	if err != nil {
		respondError(ctx, h.logger, "unread count", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"unread": n})
}

// POST /notifications/:id/read
func (h *NotificationHandler) MarkRead(ctx *gin.Context) {
	if err := h.uc.MarkRead(ctx.Request.Context(), ctx.Param("id"), ctx.GetString("userID")); err != nil {
		respondError(ctx, h.logger, "mark notification read", err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// POST /notifications/read-all
func (h *NotificationHandler) MarkAllRead(ctx *gin.Context) {
	n, err := h.uc.MarkAllRead(ctx.Request.Context(), ctx.GetString("userID"))
	if err != nil {
		respondError(ctx, h.logger, "mark all notifications read", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"updated": n})
}
