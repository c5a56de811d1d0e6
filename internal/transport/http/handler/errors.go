package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/rich-pastebin/internal/domain"
	"github.com/ErlanBelekov/rich-pastebin/internal/payment"
	"github.com/gin-gonic/gin"
)

const (
	errInternalServer     = "Internal server error"
	errTokenInvalid       = "Token is invalid or expired"
	errTooManyAttempts    = "Too many sign-in attempts, try again later"
	errPasteNotFound      = "Paste not found"
	errPasteExpired       = "This paste has expired"
	errPasteForbidden     = "This paste is private"
	errPasswordRequired   = "This paste is password protected"
	errIncorrectPassword  = "Incorrect password"
	errEmptyContent       = "Please enter some content"
	errPasswordForPublic  = "Only private pastes can be password protected"
	errInvalidExpiry      = "expires_in_hours must be one of 1, 24, 168, 720"
	errInvalidCursor      = "Invalid cursor"
	errFolderNotFound     = "Folder not found"
	errFolderNameConflict = "A folder with this name already exists"
	errEmptyFolderName    = "Folder name is required"
	errDraftNotFound      = "Draft not found"
	errCommentNotFound    = "Comment not found"
	errInvalidComment     = "Comment must be between 1 and 5000 characters"
	errLikeTarget         = "Exactly one of paste_id or comment_id is required"
	errCannotFollowSelf   = "You cannot follow yourself"
	errNotificationGone   = "Notification not found"
	errProfileNotFound    = "Profile not found"
	errUsernameTaken      = "Username is already taken"
	errInvalidUsername    = "Username must be 3-30 letters, digits or underscores"
	errAvatarsDisabled    = "Avatar uploads are not available"
	errInvalidAvatar      = "Avatar must be a png, jpeg, gif or webp image"
	errNoSubscription     = "User does not have an active subscription"
	errCheckoutDisabled   = "Payments are not available"
	errInvalidPlan        = "Plan and interval are required; interval must be monthly or yearly"
	errSessionMismatch    = "Checkout session does not belong to this user"
	errInvalidSignature   = "Webhook signature verification failed"
)

// errorMappings is checked in order with errors.Is.
var errorMappings = []struct {
	err     error
	status  int
	message string
}{
	{domain.ErrPasteNotFound, http.StatusNotFound, errPasteNotFound},
	{domain.ErrPasteExpired, http.StatusGone, errPasteExpired},
	{domain.ErrPasswordRequired, http.StatusForbidden, errPasswordRequired},
	{domain.ErrPasteForbidden, http.StatusForbidden, errPasteForbidden},
	{domain.ErrIncorrectPassword, http.StatusForbidden, errIncorrectPassword},
	{domain.ErrEmptyContent, http.StatusBadRequest, errEmptyContent},
	{domain.ErrPasswordForPublic, http.StatusBadRequest, errPasswordForPublic},
	{domain.ErrInvalidExpiry, http.StatusBadRequest, errInvalidExpiry},
	{domain.ErrInvalidCursor, http.StatusBadRequest, errInvalidCursor},
	{domain.ErrFolderNotFound, http.StatusNotFound, errFolderNotFound},
	{domain.ErrFolderNameConflict, http.StatusConflict, errFolderNameConflict},
	{domain.ErrEmptyFolderName, http.StatusBadRequest, errEmptyFolderName},
	{domain.ErrDraftNotFound, http.StatusNotFound, errDraftNotFound},
	{domain.ErrCommentNotFound, http.StatusNotFound, errCommentNotFound},
	{domain.ErrInvalidComment, http.StatusBadRequest, errInvalidComment},
	{domain.ErrLikeTarget, http.StatusBadRequest, errLikeTarget},
	{domain.ErrCannotFollowSelf, http.StatusBadRequest, errCannotFollowSelf},
	{domain.ErrNotificationNotFound, http.StatusNotFound, errNotificationGone},
	{domain.ErrProfileNotFound, http.StatusNotFound, errProfileNotFound},
	{domain.ErrUsernameTaken, http.StatusConflict, errUsernameTaken},
	{domain.ErrInvalidUsername, http.StatusBadRequest, errInvalidUsername},
	{domain.ErrAvatarsDisabled, http.StatusServiceUnavailable, errAvatarsDisabled},
	{domain.ErrInvalidAvatar, http.StatusBadRequest, errInvalidAvatar},
	{domain.ErrNoSubscription, http.StatusBadRequest, errNoSubscription},
	{domain.ErrCheckoutDisabled, http.StatusServiceUnavailable, errCheckoutDisabled},
	{domain.ErrInvalidPlan, http.StatusBadRequest, errInvalidPlan},
	{domain.ErrSessionMismatch, http.StatusForbidden, errSessionMismatch},
	{domain.ErrTooManyAttempts, http.StatusTooManyRequests, errTooManyAttempts},
	{domain.ErrTokenInvalid, http.StatusUnauthorized, errTokenInvalid},
	{payment.ErrInvalidSignature, http.StatusBadRequest, errInvalidSignature},
}

// respondError writes the status and message for a known error. Quota
// refusals carry their limit in the message. Anything else is logged and
// reported as a 500.
func respondError(ctx *gin.Context, logger *slog.Logger, op string, err error) {
	var size *domain.SizeExceededError
	if errors.As(err, &size) {
		ctx.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": size.Error()})
		return
	}
	var daily *domain.DailyLimitExceededError
	if errors.As(err, &daily) {
		ctx.JSON(http.StatusTooManyRequests, gin.H{"error": daily.Error()})
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			ctx.JSON(m.status, gin.H{"error": m.message})
			return
		}
	}

	logger.ErrorContext(ctx.Request.Context(), op, "error", err)
	ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
}

func isPasswordRequired(err error) bool {
	return errors.Is(err, domain.ErrPasswordRequired)
}

func badRequest(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
