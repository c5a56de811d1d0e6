package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ErlanBelekov/rich-pastebin/internal/domain"
	"github.com/ErlanBelekov/rich-pastebin/internal/repository"
	"github.com/ErlanBelekov/rich-pastebin/internal/usecase"
	"github.com/gin-gonic/gin"
)

type pasteUsecaser interface {
	CreatePaste(ctx context.Context, input usecase.CreatePasteInput) (*domain.Paste, error)
	GetPaste(ctx context.Context, id, viewerID string) (*domain.Paste, error)
	UnlockPaste(ctx context.Context, id, viewerID, password string) (*domain.Paste, error)
	UpdatePaste(ctx context.Context, input usecase.UpdatePasteInput) (*domain.Paste, error)
	DeletePaste(ctx context.Context, id, userID string) error
	ListMyPastes(ctx context.Context, input usecase.ListPastesInput) (usecase.ListPastesResult, error)
	SearchMyPastes(ctx context.Context, userID, query string) ([]*domain.Paste, error)
	ListPublicPastes(ctx context.Context, input usecase.ListPublicPastesInput) (usecase.ListPublicPastesResult, error)
}

type PasteHandler struct {
	uc     pasteUsecaser
	logger *slog.Logger
}

func NewPasteHandler(uc pasteUsecaser, logger *slog.Logger) *PasteHandler {
	return &PasteHandler{uc: uc, logger: logger.With("component", "paste_handler")}
}

type createPasteRequest struct {
	Title          string  `json:"title"            binding:"max=256"`
	Content        string  `json:"content"`
	FolderID       *string `json:"folder_id"        binding:"omitempty,uuid"`
	IsPublic       *bool   `json:"is_public"`
	Password       string  `json:"password"         binding:"max=128"`
	ExpiresInHours int     `json:"expires_in_hours" binding:"omitempty,oneof=1 24 168 720"`
	DraftID        string  `json:"draft_id"         binding:"omitempty,uuid"`
}

type updatePasteRequest struct {
	Title       *string `json:"title"        binding:"omitempty,max=256"`
	Content     *string `json:"content"`
	IsPublic    *bool   `json:"is_public"`
	FolderID    *string `json:"folder_id"    binding:"omitempty,uuid"`
	ClearFolder bool    `json:"clear_folder"`
}

type unlockRequest struct {
	Password string `json:"password" binding:"required"`
}

type pasteResponse struct {
	ID          string     `json:"id"`
	UserID      *string    `json:"user_id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	FolderID    *string    `json:"folder_id"`
	IsPublic    bool       `json:"is_public"`
	HasPassword bool       `json:"has_password"`
	ExpiresAt   *time.Time `json:"expires_at"`
	Views       int64      `json:"views"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toPasteResponse(p *domain.Paste) pasteResponse {
	return pasteResponse{
		ID:          p.ID,
		UserID:      p.UserID,
		Title:       p.Title,
		Content:     p.Content,
		FolderID:    p.FolderID,
		IsPublic:    p.IsPublic,
		HasPassword: p.PasswordHash != nil,
		ExpiresAt:   p.ExpiresAt,
		Views:       p.Views,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toPasteResponses(pastes []*domain.Paste) []pasteResponse {
	items := make([]pasteResponse, len(pastes))
	for i, p := range pastes {
		items[i] = toPasteResponse(p)
	}
	return items
}

// POST /pastes
// Works signed in or anonymously; quota limits apply to signed-in users only.
func (h *PasteHandler) Create(ctx *gin.Context) {
	var req createPasteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	p, err := h.uc.CreatePaste(ctx.Request.Context(), usecase.CreatePasteInput{
		UserID:         ctx.GetString("userID"),
		Title:          req.Title,
		Content:        req.Content,
		FolderID:       req.FolderID,
		IsPublic:       isPublic,
		Password:       req.Password,
		ExpiresInHours: req.ExpiresInHours,
		DraftID:        req.DraftID,
	})
	if err != nil {
		respondError(ctx, h.logger, "create paste", err)
		return
	}

	ctx.JSON(http.StatusCreated, toPasteResponse(p))
}

// GET /pastes/:id
func (h *PasteHandler) GetByID(ctx *gin.Context) {
	p, err := h.uc.GetPaste(ctx.Request.Context(), ctx.Param("id"), ctx.GetString("userID"))
	if err != nil {
		if isPasswordRequired(err) {
			ctx.JSON(http.StatusForbidden, gin.H{"error": errPasswordRequired, "password_required": true})
			return
		}
		respondError(ctx, h.logger, "get paste", err)
		return
	}
	ctx.JSON(http.StatusOK, toPasteResponse(p))
}

// POST /pastes/:id/unlock
func (h *PasteHandler) Unlock(ctx *gin.Context) {
	var req unlockRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	p, err := h.uc.UnlockPaste(ctx.Request.Context(), ctx.Param("id"), ctx.GetString("userID"), req.Password)
	if err != nil {
		respondError(ctx, h.logger, "unlock paste", err)
		return
	}
	ctx.JSON(http.StatusOK, toPasteResponse(p))
}

// PATCH /pastes/:id
func (h *PasteHandler) Update(ctx *gin.Context) {
	var req updatePasteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	p, err := h.uc.UpdatePaste(ctx.Request.Context(), usecase.UpdatePasteInput{
		ID:          ctx.Param("id"),
		UserID:      ctx.GetString("userID"),
		Title:       req.Title,
		Content:     req.Content,
		IsPublic:    req.IsPublic,
		FolderID:    req.FolderID,
		ClearFolder: req.ClearFolder,
	})
	if err != nil {
		respondError(ctx, h.logger, "update paste", err)
		return
	}
	ctx.JSON(http.StatusOK, toPasteResponse(p))
}

// DELETE /pastes/:id
func (h *PasteHandler) Delete(ctx *gin.Context) {
	if err := h.uc.DeletePaste(ctx.Request.Context(), ctx.Param("id"), ctx.GetString("userID")); err != nil {
		respondError(ctx, h.logger, "delete paste", err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// GET /me/pastes?folder_id=&cursor=&limit=
func (h *PasteHandler) ListMine(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.Query("limit"))

	var folderID *string
	if f := ctx.Query("folder_id"); f != "" {
		folderID = &f
	}

	result, err := h.uc.ListMyPastes(ctx.Request.Context(), usecase.ListPastesInput{
		UserID:   ctx.GetString("userID"),
		FolderID: folderID,
		Cursor:   ctx.Query("cursor"),
		Limit:    limit,
	})
	if err != nil {
		respondError(ctx, h.logger, "list pastes", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"pastes":      toPasteResponses(result.Pastes),
		"next_cursor": result.NextCursor,
	})
}

// GET /me/pastes/search?q=
func (h *PasteHandler) SearchMine(ctx *gin.Context) {
	pastes, err := h.uc.SearchMyPastes(ctx.Request.Context(), ctx.GetString("userID"), ctx.Query("q"))
	if err != nil {
		respondError(ctx, h.logger, "search pastes", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"pastes": toPasteResponses(pastes)})
}

// GET /users/:username/pastes?sort=created_at|views&order=asc|desc&page=&per_page=
func (h *PasteHandler) ListPublic(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.Query("page"))
	perPage, _ := strconv.Atoi(ctx.Query("per_page"))

	result, err := h.uc.ListPublicPastes(ctx.Request.Context(), usecase.ListPublicPastesInput{
		Username:  ctx.Param("username"),
		SortBy:    repository.PublicSort(ctx.DefaultQuery("sort", string(repository.SortByCreatedAt))),
		Ascending: ctx.Query("order") == "asc",
		Page:      page,
		PerPage:   perPage,
	})
	if err != nil {
		respondError(ctx, h.logger, "list public pastes", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"pastes":   toPasteResponses(result.Pastes),
		"total":    result.Total,
		"page":     result.Page,
		"per_page": result.PerPage,
	})
}
