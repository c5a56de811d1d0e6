package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ErlanBelekov/rich-pastebin/internal/usecase"
	"github.com/gin-gonic/gin"
)

// Stripe event payloads are well under this.
const maxWebhookBytes = 64 << 10

type billingUsecaser interface {
	Checkout(ctx context.Context, userID, interval string) (string, error)
	Cancel(ctx context.Context, userID string) (time.Time, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
	Subscription(ctx context.Context, userID string) (usecase.SubscriptionInfo, error)
	Confirm(ctx context.Context, userID, sessionID string) (usecase.SubscriptionInfo, error)
}

type BillingHandler struct {
	uc     billingUsecaser
	logger *slog.Logger
}

func NewBillingHandler(uc billingUsecaser, logger *slog.Logger) *BillingHandler {
	return &BillingHandler{uc: uc, logger: logger.With("component", "billing_handler")}
}

type checkoutRequest struct {
	Plan     string `json:"plan"     binding:"required"`
	Interval string `json:"interval" binding:"required,oneof=monthly yearly"`
}

type confirmRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

func subscriptionJSON(info usecase.SubscriptionInfo) gin.H {
	return gin.H{
		"tier":         info.Tier,
		"expires_at":   info.ExpiresAt,
		"is_supporter": info.IsSupporter,
	}
}

// POST /billing/checkout
func (h *BillingHandler) Checkout(ctx *gin.Context) {
	var req checkoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errInvalidPlan})
		return
	}

	url, err := h.uc.Checkout(ctx.Request.Context(), ctx.GetString("userID"), req.Interval)
	if err != nil {
		respondError(ctx, h.logger, "create checkout", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"url": url})
}

// POST /billing/cancel
func (h *BillingHandler) Cancel(ctx *gin.Context) {
	periodEnd, err := h.uc.Cancel(ctx.Request.Context(), ctx.GetString("userID"))
	if err != nil {
		respondError(ctx, h.logger, "cancel subscription", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true, "expires_at": periodEnd})
}

// POST /billing/webhook
// The signature is checked over the raw body, so the body must not be bound
// or re-encoded before it reaches the usecase.
func (h *BillingHandler) Webhook(ctx *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxWebhookBytes))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable webhook body"})
		return
	}

	if err := h.uc.HandleWebhook(ctx.Request.Context(), payload, ctx.GetHeader("Stripe-Signature")); err != nil {
		respondError(ctx, h.logger, "handle webhook", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"received": true})
}

// GET /billing/subscription
func (h *BillingHandler) Subscription(ctx *gin.Context) {
	info, err := h.uc.Subscription(ctx.Request.Context(), ctx.GetString("userID"))
	if err != nil {
		respondError(ctx, h.logger, "get subscription", err)
		return
	}
	ctx.JSON(http.StatusOK, subscriptionJSON(info))
}

// POST /billing/confirm
func (h *BillingHandler) Confirm(ctx *gin.Context) {
	var req confirmRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	info, err := h.uc.Confirm(ctx.Request.Context(), ctx.GetString("userID"), req.SessionID)
	if err != nil {
		respondError(ctx, h.logger, "confirm checkout", err)
		return
	}
	ctx.JSON(http.StatusOK, subscriptionJSON(info))
}
