package httptransport

import (
	"context"
	"log/slog"

	"github.com/ErlanBelekov/rich-pastebin/internal/domain"
	"github.com/ErlanBelekov/rich-pastebin/internal/transport/http/handler"
	"github.com/ErlanBelekov/rich-pastebin/internal/transport/http/middleware"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

type Handlers struct {
	Auth         *handler.AuthHandler
	Paste        *handler.PasteHandler
	Folder       *handler.FolderHandler
	Social       *handler.SocialHandler
	Notification *handler.NotificationHandler
	Profile      *handler.ProfileHandler
	Billing      *handler.BillingHandler
}

type profileEnsurer interface {
	EnsureProfile(ctx context.Context, userID string) (*domain.Profile, error)
}

type RouterConfig struct {
	JWTKey    []byte
	ClientURL string
	Profiles  profileEnsurer
}

func NewRouter(logger *slog.Logger, h Handlers, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(middleware.CORS(cfg.ClientURL))
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	ensureProfile := middleware.EnsureProfile(cfg.Profiles, logger)
	authMW := []gin.HandlerFunc{middleware.Auth(cfg.JWTKey), ensureProfile}
	optionalMW := []gin.HandlerFunc{middleware.OptionalAuth(cfg.JWTKey), ensureProfile}

	// Public auth routes
	auth := r.Group("/auth")
	auth.POST("/magic-link", h.Auth.RequestMagicLink)
	auth.GET("/verify", h.Auth.Verify)

	// Pastes: reads and creation work anonymously. Anonymous creates are never limited.
	pastes := r.Group("/pastes")
	pastes.POST("", append(optionalMW, h.Paste.Create)...)
	pastes.GET("/:id", append(optionalMW, h.Paste.GetByID)...)
	pastes.POST("/:id/unlock", append(optionalMW, h.Paste.Unlock)...)
	pastes.PATCH("/:id", append(authMW, h.Paste.Update)...)
	pastes.DELETE("/:id", append(authMW, h.Paste.Delete)...)
	pastes.GET("/:id/comments", h.Social.ListComments)
	pastes.POST("/:id/comments", append(authMW, h.Social.AddComment)...)
	pastes.GET("/:id/favorite", append(optionalMW, h.Social.FavoriteStatus)...)
	pastes.POST("/:id/favorite", append(authMW, h.Social.ToggleFavorite)...)

	r.DELETE("/comments/:id", append(authMW, h.Social.DeleteComment)...)
	r.GET("/likes", append(optionalMW, h.Social.LikeStatus)...)
	r.POST("/likes", append(authMW, h.Social.ToggleLike)...)

	// Public profiles
	users := r.Group("/users/:username")
	users.GET("", h.Profile.GetPublic)
	users.GET("/pastes", h.Paste.ListPublic)
	users.GET("/follow", append(optionalMW, h.Social.FollowStatus)...)
	users.POST("/follow", append(authMW, h.Social.ToggleFollow)...)

	// Signed-in user
	me := r.Group("/me", authMW...)
	me.GET("/profile", h.Profile.GetSettings)
	me.PATCH("/profile", h.Profile.UpdateSettings)
	me.POST("/avatar", h.Profile.UploadAvatar)
	me.DELETE("", h.Profile.DeleteAccount)
	me.GET("/usage", h.Profile.Usage)
	me.GET("/pastes", h.Paste.ListMine)
	me.GET("/pastes/search", h.Paste.SearchMine)
	me.GET("/favorites", h.Social.ListFavorites)

	folders := r.Group("/folders", authMW...)
	folders.GET("", h.Folder.List)
	folders.POST("", h.Folder.Create)
	folders.PATCH("/:id", h.Folder.Rename)
	folders.DELETE("/:id", h.Folder.Delete)

	drafts := r.Group("/drafts", authMW...)
	drafts.GET("", h.Folder.ListDrafts)
	drafts.POST("", h.Folder.SaveDraft)
	drafts.PUT("/:id", h.Folder.SaveDraft)
	drafts.DELETE("/:id", h.Folder.DeleteDraft)

	notifications := r.Group("/notifications", authMW...)
	notifications.GET("", h.Notification.List)
	notifications.GET("/unread-count", h.Notification.UnreadCount)
	notifications.POST("/read-all", h.Notification.MarkAllRead)
	notifications.POST("/:id/read", h.Notification.MarkRead)

	// Billing. The webhook authenticates by signature, not by JWT.
	r.POST("/billing/webhook", h.Billing.Webhook)
	billing := r.Group("/billing", authMW...)
	billing.POST("/checkout", h.Billing.Checkout)
	billing.POST("/cancel", h.Billing.Cancel)
	billing.POST("/confirm", h.Billing.Confirm)
	billing.GET("/subscription", h.Billing.Subscription)

	return r
}
