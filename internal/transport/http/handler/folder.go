package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ErlanBelekov/rich-pastebin/internal/domain"
	"github.com/ErlanBelekov/rich-pastebin/internal/usecase"
	"github.com/gin-gonic/gin"
)

type FolderHandler struct {
	folders *usecase.FolderUsecase
	drafts  *usecase.DraftUsecase
	logger  *slog.Logger
}

func NewFolderHandler(folders *usecase.FolderUsecase, drafts *usecase.DraftUsecase, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{folders: folders, drafts: drafts, logger: logger.With("component", "folder_handler")}
}

type folderRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

type folderResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func toFolderResponse(f *domain.Folder) folderResponse {
	return folderResponse{ID: f.ID, Name: f.Name, CreatedAt: f.CreatedAt}
}

// GET /folders
func (h *FolderHandler) List(ctx *gin.Context) {
	folders, err := h.folders.ListFolders(ctx.Request.Context(), ctx.GetString("userID"))
	if err != nil {
		respondError(ctx, h.logger, "list folders", err)
		return
	}
	items := make([]folderResponse, len(folders))
	for i, f := range folders {
		items[i] = toFolderResponse(f)
	}
	ctx.JSON(http.StatusOK, gin.H{"folders": items})
}

// POST /folders
func (h *FolderHandler) Create(ctx *gin.Context) {
	var req folderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	f, err := h.folders.CreateFolder(ctx.Request.Context(), ctx.GetString("userID"), req.Name)
	if err != nil {
		respondError(ctx, h.logger, "create folder", err)
		return
	}
	ctx.JSON(http.StatusCreated, toFolderResponse(f))
}

// PATCH /folders/:id
func (h *FolderHandler) Rename(ctx *gin.Context) {
	var req folderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}
	f, err := h.folders.RenameFolder(ctx.Request.Context(), ctx.Param("id"), ctx.GetString("userID"), req.Name)
	if err != nil {
		respondError(ctx, h.logger, "rename folder", err)
		return
	}
	ctx.JSON(http.StatusOK, toFolderResponse(f))
}

// DELETE /folders/:id
// Pastes in the folder are kept and moved to no folder.
func (h *FolderHandler) Delete(ctx *gin.Context) {
	if err := h.folders.DeleteFolder(ctx.Request.Context(), ctx.Param("id"), ctx.GetString("userID")); err != nil {
		respondError(ctx, h.logger, "delete folder", err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

type draftRequest struct {
	Title    string  `json:"title"     binding:"max=256"`
	Content  string  `json:"content"`
	IsPublic bool    `json:"is_public"`
	FolderID *string `json:"folder_id" binding:"omitempty,uuid"`
}

type draftResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	IsPublic  bool      `json:"is_public"`
	FolderID  *string   `json:"folder_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toDraftResponse(d *domain.Draft) draftResponse {
	return draftResponse{
		ID:        d.ID,
		Title:     d.Title,
		Content:   d.Content,
		IsPublic:  d.IsPublic,
		FolderID:  d.FolderID,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// GET /drafts
func (h *FolderHandler) ListDrafts(ctx *gin.Context) {
	drafts, err := h.drafts.ListDrafts(ctx.Request.Context(), ctx.GetString("userID"))
	if err != nil {
		respondError(ctx, h.logger, "list drafts", err)
		return
	}
	items := make([]draftResponse, len(drafts))
	for i, d := range drafts {
		items[i] = toDraftResponse(d)
	}
	ctx.JSON(http.StatusOK, gin.H{"drafts": items})
}

// POST /drafts creates a draft; PUT /drafts/:id saves over an existing one.
func (h *FolderHandler) SaveDraft(ctx *gin.Context) {
	var req draftRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		badRequest(ctx, err)
		return
	}

	d, err := h.drafts.SaveDraft(ctx.Request.Context(), usecase.SaveDraftInput{
		ID:       ctx.Param("id"),
		UserID:   ctx.GetString("userID"),
		Title:    req.Title,
		Content:  req.Content,
		IsPublic: req.IsPublic,
		FolderID: req.FolderID,
	})
	if err != nil {
		respondError(ctx, h.logger, "save draft", err)
		return
	}

	status := http.StatusOK
	if ctx.Param("id") == "" {
		status = http.StatusCreated
	}
	ctx.JSON(status, toDraftResponse(d))
}

// DELETE /drafts/:id
func (h *FolderHandler) DeleteDraft(ctx *gin.Context) {
	if err := h.drafts.DeleteDraft(ctx.Request.Context(), ctx.Param("id"), ctx.GetString("userID")); err != nil {
		respondError(ctx, h.logger, "delete draft", err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
